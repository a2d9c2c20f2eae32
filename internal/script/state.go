// Package script runs the Lua scripts bound to keys with a script action.
//
// Each run gets a fresh sandboxed Lua state with only the base, table,
// string and math libraries. Scripts talk to the keyboard through the osk
// module:
//
//	osk.type("hello")   -- inject text
//	osk.key("Return")   -- press and release a named key
//	osk.log("done")     -- write to the osk log
//
// Scripts never touch the keyboard directly. They record commands, which
// are applied on the event loop once the script has finished.
package script

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/osk/internal/logging"
)

// DefaultTimeout bounds a single script run.
const DefaultTimeout = 2 * time.Second

// CommandKind tells what a Command asks for.
type CommandKind int

const (
	// CommandType injects Text.
	CommandType CommandKind = iota
	// CommandKey presses and releases the key named Text.
	CommandKey
)

// String returns the osk module function name of the kind.
func (k CommandKind) String() string {
	switch k {
	case CommandType:
		return "type"
	case CommandKey:
		return "key"
	default:
		return "unknown"
	}
}

// Command is one effect requested by a script.
type Command struct {
	Kind CommandKind
	Text string
}

// state is a sandboxed Lua state for a single run.
type state struct {
	L        *lua.LState
	log      *logging.Logger
	commands []Command
}

func newState(log *logging.Logger) *state {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	s := &state{L: L, log: log}
	s.installSandbox()
	s.installModule()
	return s
}

func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// installSandbox removes the base functions that load code or modules.
func (s *state) installSandbox() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		s.L.SetGlobal(name, lua.LNil)
	}
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		s.log.Info(joinArgs(L), "source", "print")
		return 0
	}))
}

func (s *state) installModule() {
	mod := s.L.NewTable()
	s.L.SetField(mod, "type", s.L.NewFunction(func(L *lua.LState) int {
		s.commands = append(s.commands, Command{Kind: CommandType, Text: L.CheckString(1)})
		return 0
	}))
	s.L.SetField(mod, "key", s.L.NewFunction(func(L *lua.LState) int {
		s.commands = append(s.commands, Command{Kind: CommandKey, Text: L.CheckString(1)})
		return 0
	}))
	s.L.SetField(mod, "log", s.L.NewFunction(func(L *lua.LState) int {
		s.log.Info(joinArgs(L))
		return 0
	}))
	s.L.SetGlobal("osk", mod)
}

func joinArgs(L *lua.LState) string {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	return strings.Join(parts, " ")
}

// doFile runs path with a deadline and returns the recorded commands.
func (s *state) doFile(ctx context.Context, path string, timeout time.Duration) (cmds []Command, err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	if err := s.L.DoFile(path); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return s.commands, ErrTimeout
		}
		return s.commands, err
	}
	return s.commands, nil
}

func (s *state) close() {
	s.L.Close()
}
