package lua

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/textdesk/internal/engine/transform"
)

// TransformFunc is the global function a script must define.
const TransformFunc = "transform"

// Script is a loaded transformation script. A script defines
//
//	name = "shout"            -- optional, defaults to the file name
//	function transform(text)
//	    return textdesk.upper(text) .. "!"
//	end
//
// Each Script owns its own Lua state.
type Script struct {
	name  string
	path  string
	state *State
}

// LoadScript executes the script at path and checks that it defines a
// transform function.
func LoadScript(path string, opts ...StateOption) (*Script, error) {
	st := NewState(opts...)
	if err := st.DoFile(path); err != nil {
		st.Close()
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return newScript(st, path, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

// LoadString loads a script from source with a fallback name.
func LoadString(name, code string, opts ...StateOption) (*Script, error) {
	st := NewState(opts...)
	if err := st.DoString(code); err != nil {
		st.Close()
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}
	return newScript(st, "", name)
}

func newScript(st *State, path, fallback string) (*Script, error) {
	if !st.HasFunction(TransformFunc) {
		st.Close()
		return nil, fmt.Errorf("%s: %w", fallback, ErrNoTransform)
	}
	name := st.GetGlobalString("name")
	if name == "" {
		name = fallback
	}
	return &Script{name: name, path: path, state: st}, nil
}

// Name returns the transformation name.
func (s *Script) Name() string {
	return s.name
}

// Path returns the file the script was loaded from, if any.
func (s *Script) Path() string {
	return s.path
}

// Apply runs the script's transform function on text.
func (s *Script) Apply(text string) (string, error) {
	return s.state.CallString(TransformFunc, text)
}

// Func adapts the script to a transform.Func.
func (s *Script) Func() transform.Func {
	return s.Apply
}

// Close releases the script's Lua state.
func (s *Script) Close() error {
	return s.state.Close()
}

// LoadDir loads every *.lua file in dir, in name order, and registers each
// script in reg. Scripts that fail to load are skipped and their errors
// returned together; successfully loaded scripts stay registered.
func LoadDir(dir string, reg *transform.Registry, opts ...StateOption) ([]*Script, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.lua"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var (
		scripts []*Script
		errs    []string
	)
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		sc, err := LoadScript(p, opts...)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		reg.Register(sc.Name(), sc.Func())
		scripts = append(scripts, sc)
	}

	if len(errs) > 0 {
		return scripts, fmt.Errorf("loading scripts: %s", strings.Join(errs, "; "))
	}
	return scripts, nil
}
