package main

import "github.com/udisondev/gameworld/internal/model"

// noopScriptHost is the default session.ScriptHost until an embedded
// scripting engine is wired in (§9 "Script callbacks" — out of scope
// for the session core itself).
type noopScriptHost struct{}

func (noopScriptHost) OnLogin(p *model.Player) bool                             { return false }
func (noopScriptHost) OnLogout(p *model.Player)                                 {}
func (noopScriptHost) OnSay(p *model.Player, text string) bool                  { return false }
func (noopScriptHost) OnExtendedOpcode(p *model.Player, subOp byte, data string) bool { return false }
