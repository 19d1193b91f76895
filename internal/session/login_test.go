package session

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/udisondev/gameworld/internal/admission"
	"github.com/udisondev/gameworld/internal/model"
	"github.com/udisondev/gameworld/internal/wire"
	"github.com/udisondev/gameworld/internal/world"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestWorld(t *testing.T, capacity int) (*world.World, context.CancelFunc) {
	t.Helper()
	d := world.NewDispatcher(testLogger(), 64)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return world.New(d, capacity), cancel
}

func newTestSession(t *testing.T, w *world.World, cfg Config) (*Session, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close(); server.Close() })
	s := New(1, server, w, nil, nil, nil, nil, cfg, testLogger())
	return s, client
}

func TestSendQueueStatusIncludesSlotNumber(t *testing.T) {
	w, _ := newTestWorld(t, 10)
	s, client := newTestSession(t, w, Config{})
	clientCodec := wire.NewCodec(client)

	reads := make(chan []byte, 1)
	go func() {
		payload, err := clientCodec.ReadFrame()
		if err == nil {
			reads <- payload
		}
	}()

	s.sendQueueStatus(7)

	select {
	case payload := <-reads:
		r := wire.NewReader(payload[1:])
		text, err := r.String()
		if err != nil {
			t.Fatalf("reading queue text: %v", err)
		}
		want := "Too many players online.\nYou are at place 7 on the waiting list."
		if text != want {
			t.Fatalf("queue text = %q, want %q", text, want)
		}
	case <-time.After(time.Second):
		t.Fatal("did not observe queue status frame")
	}
}

func TestReplaceLoginRebindsSamePlayerPreservingState(t *testing.T) {
	w, _ := newTestWorld(t, 10)
	cfg := Config{ReplaceKickOnLogin: true}

	oldSession, _ := newTestSession(t, w, cfg)
	newSession, _ := newTestSession(t, w, cfg)

	existing := model.NewPlayer(w.NextObjectID(), 42, 99, "Gandalf", model.Position{X: 100, Y: 100, Z: 7})
	existing.SetHealth(55, 100)
	existing.SetPosition(model.Position{X: 105, Y: 108, Z: 7})
	existing.BindSession(oldSession)
	w.AddPlayer(existing)

	before := existing.TakeSnapshot()

	ok := newSession.replaceLogin(context.Background(), existing, existing.AccountID(), existing.CharacterID())
	if !ok {
		t.Fatal("replaceLogin reported failure")
	}

	after := existing.TakeSnapshot()
	if after.Health != before.Health || after.MaxHealth != before.MaxHealth || after.Position != before.Position {
		t.Fatalf("player state mutated across replacement login: before=%+v after=%+v", before, after)
	}

	if newSession.Player() != existing {
		t.Fatal("new session is not bound to the existing player")
	}
	if existing.BoundSession() != any(newSession) {
		t.Fatal("player is not bound back to the new session")
	}
	if existing.IsConnecting() {
		t.Fatal("player left isConnecting=true after a completed takeover")
	}
	if newSession.State() != StatePlaying {
		t.Fatalf("new session state = %v, want Playing", newSession.State())
	}
}

func TestReplaceLoginCancelsReconnectOnEarlyTeardown(t *testing.T) {
	w, _ := newTestWorld(t, 10)
	cfg := Config{ReplaceKickOnLogin: true}

	newSession, _ := newTestSession(t, w, cfg)
	existing := model.NewPlayer(w.NextObjectID(), 42, 99, "Gandalf", model.Position{})

	// Close the new session immediately so its replaceLogin call hits
	// the <-s.done branch before the one-second reconnect fires, and
	// must cancel the scheduled task rather than leave it pending.
	newSession.Close()

	ok := newSession.replaceLogin(context.Background(), existing, existing.AccountID(), existing.CharacterID())
	if ok {
		t.Fatal("replaceLogin should report failure when torn down early")
	}

	// The reconnect task, if it had fired, would bind existing to
	// newSession and set isConnecting back to false a second later.
	// Give it more than that window and confirm it never ran.
	existing.SetConnecting(true)
	time.Sleep(1200 * time.Millisecond)
	if !existing.IsConnecting() {
		t.Fatal("canceled reconnect task rebound the player anyway")
	}
	if newSession.Player() != nil {
		t.Fatal("canceled reconnect task bound the player to the disposed session")
	}
}

func TestReplaceLoginRefusedWhenKickDisabled(t *testing.T) {
	w, _ := newTestWorld(t, 10)
	cfg := Config{ReplaceKickOnLogin: false}

	newSession, client := newTestSession(t, w, cfg)
	existing := model.NewPlayer(w.NextObjectID(), 42, 99, "Gandalf", model.Position{})

	clientCodec := wire.NewCodec(client)
	go func() { _, _ = clientCodec.ReadFrame() }()

	ok := newSession.replaceLogin(context.Background(), existing, existing.AccountID(), existing.CharacterID())
	if ok {
		t.Fatal("replaceLogin should refuse when ReplaceKickOnLogin is disabled")
	}
}

func TestAdmissionAlwaysAdmitBypassesQueue(t *testing.T) {
	q := admission.New(0, func() int { return 0 })
	slot := q.Admit(admission.Candidate{PlayerGUID: 1, AlwaysAdmit: true})
	if slot != 0 {
		t.Fatalf("slot = %d, want 0 for an always-admit candidate", slot)
	}
}
