// Package lua provides scripted text transformations backed by gopher-lua.
//
// This package wraps the gopher-lua library to provide:
//   - Sandboxed Lua state management
//   - Execution timeouts
//   - A "textdesk" helper module sharing the engine's tokenizer and matching
//
// # State
//
// The State type manages a Lua runtime with sandboxing:
//
//	state := lua.NewState(lua.WithExecutionTimeout(time.Second))
//	defer state.Close()
//
//	if err := state.DoString(`function transform(t) return t end`); err != nil {
//	    return err
//	}
//	out, err := state.CallString("transform", "text")
//
// # Sandbox
//
// Only the base, table, string and math libraries are opened. File loading
// functions (dofile, loadfile, load, require) are removed, and the io, os
// and debug libraries are never available.
//
// # Scripts
//
// A script is a Lua file defining a global transform(text) function and an
// optional name. LoadDir registers every script in a directory with a
// transform.Registry so the session can apply it by name.
package lua
