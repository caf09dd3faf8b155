// Package scripting lets an operator attach an optional Lua script to a
// protocol's initialization stage — extra mode-setting writes or
// vendor-specific quirks handled without a Go rebuild, the same role
// the teacher's rule engine played for condition/action pairs, adapted
// here to a single init(address) -> writes hook.
package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Write is one hardware write an init script asked for, decoded back out
// of the Lua table it returned.
type Write struct {
	Endpoint string
	Data     []byte
}

// InitScript wraps a single loaded Lua chunk exposing a global
// `init(address)` function that returns an array of {endpoint, data}
// tables.
type InitScript struct {
	source string
}

// Load parses source without executing it, failing fast on a syntax
// error so a bad script is rejected at config-load time rather than the
// first time a device matches it.
func Load(source string) (*InitScript, error) {
	state := lua.NewState()
	defer state.Close()
	if _, err := state.LoadString(source); err != nil {
		return nil, fmt.Errorf("scripting: parse error: %w", err)
	}
	return &InitScript{source: source}, nil
}

// Run executes init(address) in a fresh, short-lived VM and decodes its
// returned write list. A fresh state per call keeps scripts from
// accumulating global state across unrelated devices.
func (s *InitScript) Run(address string) ([]Write, error) {
	state := lua.NewState()
	defer state.Close()

	if err := state.DoString(s.source); err != nil {
		return nil, fmt.Errorf("scripting: execution error: %w", err)
	}

	fn := state.GetGlobal("init")
	if fn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("scripting: script does not define an init function")
	}

	if err := state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(address)); err != nil {
		return nil, fmt.Errorf("scripting: init(%q) failed: %w", address, err)
	}

	ret := state.Get(-1)
	state.Pop(1)

	table, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("scripting: init must return a table of writes")
	}

	var writes []Write
	var decodeErr error
	table.ForEach(func(_, entry lua.LValue) {
		if decodeErr != nil {
			return
		}
		writeTable, ok := entry.(*lua.LTable)
		if !ok {
			decodeErr = fmt.Errorf("scripting: each write entry must be a table")
			return
		}
		endpoint := lua.LVAsString(writeTable.RawGetString("endpoint"))
		dataStr := lua.LVAsString(writeTable.RawGetString("data"))
		writes = append(writes, Write{Endpoint: endpoint, Data: []byte(dataStr)})
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return writes, nil
}
