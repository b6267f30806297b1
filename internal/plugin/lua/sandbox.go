package lua

import (
	"iter"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/textdesk/internal/engine/match"
	"github.com/dshills/textdesk/internal/engine/stats"
	"github.com/dshills/textdesk/internal/engine/token"
	"github.com/dshills/textdesk/internal/engine/transform"
)

// ModuleName is the global table scripts use to reach textdesk helpers.
const ModuleName = "textdesk"

// Sandbox restricts Lua execution to safe operations and exposes the
// textdesk helper module.
type Sandbox struct {
	L *lua.LState
}

// NewSandbox creates a new sandbox for the Lua state.
func NewSandbox(L *lua.LState) *Sandbox {
	return &Sandbox{L: L}
}

// Install removes file loading functions and installs the helper module.
func (s *Sandbox) Install() {
	// Remove dangerous functions that could be used to bypass sandbox
	dangerousFuncs := []string{
		"dofile",     // Load and execute file
		"loadfile",   // Load file as function
		"load",       // Load string as function
		"loadstring", // Load string as function (deprecated but may exist)
		"require",
		"module",
	}

	for _, name := range dangerousFuncs {
		s.L.SetGlobal(name, lua.LNil)
	}

	s.installModule()
}

// installModule exposes the engine's tokenizer and match semantics so
// scripts split words and match patterns the same way the editor does.
//
//	textdesk.words(text)                 -> { "w1", "w2", ... }
//	textdesk.sentences(text)             -> { "s1", ... }
//	textdesk.paragraphs(text)            -> { "p1", ... }
//	textdesk.normalize(word)             -> frequency key
//	textdesk.replace(text, pat, repl)    -> text | nil, err
//	textdesk.count(text, pat)            -> n | nil, err
//	textdesk.upper(text) / lower / title -> text
func (s *Sandbox) installModule() {
	mod := s.L.SetFuncs(s.L.NewTable(), map[string]lua.LGFunction{
		"words":      tokens(token.Words),
		"sentences":  tokens(token.Sentences),
		"paragraphs": tokens(token.Paragraphs),
		"normalize":  stringFunc(stats.Normalize),
		"upper":      stringFunc(transform.ToUpper),
		"lower":      stringFunc(transform.ToLower),
		"title":      stringFunc(transform.ToTitle),
		"replace":    luaReplace,
		"count":      luaCount,
	})
	s.L.SetGlobal(ModuleName, mod)
}

func tokens(split func(string) iter.Seq[string]) lua.LGFunction {
	return func(L *lua.LState) int {
		tbl := L.NewTable()
		for tok := range split(L.CheckString(1)) {
			tbl.Append(lua.LString(tok))
		}
		L.Push(tbl)
		return 1
	}
}

func stringFunc(fn func(string) string) lua.LGFunction {
	return func(L *lua.LState) int {
		L.Push(lua.LString(fn(L.CheckString(1))))
		return 1
	}
}

func luaReplace(L *lua.LState) int {
	out, err := match.Replace(L.CheckString(1), L.CheckString(2), L.OptString(3, ""))
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LString(out))
	return 1
}

func luaCount(L *lua.LState) int {
	n, err := match.Count(L.CheckString(1), L.CheckString(2))
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LNumber(n))
	return 1
}
