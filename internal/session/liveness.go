package session

import "time"

// startLiveness arms the idle-kick timer (§4.3 "Liveness"): if no
// ping has refreshed lastPong within cfg.IdleKickAfter, the dispatcher
// force-logs-out the player. Re-arms itself after every check that
// neither kicks nor finds the session outside Playing/AccountManager.
func (s *Session) startLiveness() {
	if s.cfg.IdleKickAfter <= 0 {
		return
	}
	s.lastPong.Store(time.Now().Unix())
	s.armIdleCheck()
}

func (s *Session) armIdleCheck() {
	s.world.Dispatcher.ScheduleAfter(s.cfg.IdleKickAfter, func() {
		if s.State() != StatePlaying && s.State() != StateAccountManager {
			return
		}
		last := time.Unix(s.lastPong.Load(), 0)
		if time.Since(last) >= s.cfg.IdleKickAfter {
			if p := s.Player(); p != nil {
				s.log.Debug("idle-kicking session")
			}
			s.Close()
			return
		}
		s.armIdleCheck()
	})
}
