// Package scripting evaluates content-declared Lua prerequisites in a
// sandboxed GopherLua VM. It has no dependency on game domain packages; the
// record is exposed through a read-only Facts value.
package scripting

import (
	"context"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the opcode budget of one prerequisite when no
// override is configured. Prerequisites are single expressions, so the
// budget only has to stop runaway recursion.
const DefaultInstructionLimit = 10_000

// removedGlobals are base-library functions a predicate has no use for.
var removedGlobals = []string{
	"dofile", "loadfile", "load", "loadstring", "collectgarbage",
	"require", "print", "module", "setfenv", "getfenv", "rawset",
}

// budget is a context that cancels itself once Done has been called limit
// times. GopherLua polls Done once per opcode, so this is an opcode budget.
type budget struct {
	context.Context
	cancel    context.CancelFunc
	remaining int
}

func (b *budget) Done() <-chan struct{} {
	b.remaining--
	if b.remaining <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// Sandbox is a GopherLua state for evaluating one prerequisite: only the
// base, string and math libraries are loaded. Globals are read-only once
// Seal is called and execution stops after a fixed number of opcodes.
//
// A Sandbox is used by one goroutine and discarded after one evaluation.
type Sandbox struct {
	L      *lua.LState
	cancel context.CancelFunc
}

// NewSandbox returns a sandbox with an opcode budget of instLimit.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: the caller must call Close.
func NewSandbox(instLimit int) *Sandbox {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range removedGlobals {
		L.SetGlobal(name, lua.LNil)
	}

	base, cancel := context.WithCancel(context.Background())
	L.SetContext(&budget{Context: base, cancel: cancel, remaining: instLimit})
	return &Sandbox{L: L, cancel: cancel}
}

// Seal makes the global table read-only. Every global moves to a backing
// table reached through __index, and assigning any global raises an error.
// Facts must be registered before Seal.
func (s *Sandbox) Seal() {
	L := s.L
	g := L.G.Global
	backing := L.NewTable()
	var keys []lua.LValue
	g.ForEach(func(k, v lua.LValue) {
		backing.RawSet(k, v)
		keys = append(keys, k)
	})
	for _, k := range keys {
		g.RawSet(k, lua.LNil)
	}
	mt := L.NewTable()
	L.SetField(mt, "__index", backing)
	L.SetField(mt, "__metatable", lua.LString("sealed"))
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("prerequisites may not assign global %s", L.CheckAny(2).String())
		return 0
	}))
	L.SetMetatable(g, mt)
}

// Close releases the VM.
func (s *Sandbox) Close() {
	s.cancel()
	s.L.Close()
}
