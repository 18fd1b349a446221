// Package luahook runs an optional user-supplied Lua expression against each
// file that survived the rule cascade, allowing configs to veto entries that
// declarative rules cannot express. Scripts run in a sandbox with only the
// base, string, table, and math libraries and a hard timeout.
package luahook

import (
	"context"
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// Hook is a compiled veto predicate. Safe for concurrent use; each evaluation
// runs in a fresh sandboxed state.
type Hook struct {
	code    string
	timeout time.Duration
}

// Compile validates the inline expression and returns a reusable hook.
// Expressions without an explicit return are wrapped, so both
// "path ~= 'a.txt'" and "return path ~= 'a.txt'" work.
func Compile(inline string, timeout time.Duration) (*Hook, error) {
	inline = strings.TrimSpace(inline)
	if inline == "" {
		return nil, nil
	}
	code := inline
	if !strings.Contains(code, "return") {
		code = "return (" + code + ")"
	}

	L := newSandboxState()
	defer L.Close()
	if _, err := L.LoadString(code); err != nil {
		return nil, fmt.Errorf("invalid lua_filter script: %v", err)
	}

	if timeout <= 0 {
		timeout = time.Second
	}
	return &Hook{code: code, timeout: timeout}, nil
}

// Keep evaluates the predicate for one entry. The globals exposed to the
// script are path (rel POSIX path), name (final segment), and action
// ("copy" or "sample"). A falsy result vetoes the entry.
func (h *Hook) Keep(relPath, name, action string) (bool, error) {
	L := newSandboxState()
	defer L.Close()

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	L.SetContext(ctx)

	L.SetGlobal("path", lua.LString(relPath))
	L.SetGlobal("name", lua.LString(name))
	L.SetGlobal("action", lua.LString(action))

	fn, err := L.LoadString(h.code)
	if err != nil {
		return false, fmt.Errorf("lua_filter: %v", err)
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		if ctx.Err() != nil {
			return false, fmt.Errorf("lua_filter: timeout after %s", h.timeout)
		}
		return false, fmt.Errorf("lua_filter: %v", err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	return lua.LVAsBool(ret), nil
}

// newSandboxState opens only the safe libraries: no io, os, or package.
func newSandboxState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openLib := func(name string, f lua.LGFunction) {
		L.Push(L.NewFunction(f))
		L.Push(lua.LString(name))
		L.Call(1, 0)
	}
	openLib("base", lua.OpenBase)
	openLib("string", lua.OpenString)
	openLib("table", lua.OpenTable)
	openLib("math", lua.OpenMath)
	return L
}
