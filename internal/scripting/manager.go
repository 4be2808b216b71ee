package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Manager owns the sandboxed rule-script VM and exposes hook dispatch.
//
// A single LState is not goroutine safe, so every call holds the manager's
// mutex for its duration.
type Manager struct {
	mu     sync.Mutex
	state  *lua.LState
	cancel context.CancelFunc
	limit  int
	logger *zap.Logger
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a non-nil Manager; CallHook is a no-op until Load succeeds.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{logger: logger, limit: DefaultInstructionLimit}
}

// Load creates a sandboxed VM, registers the engine.* modules, and executes
// every *.lua file in scriptDir in lexicographic order. A successful Load
// replaces any previously loaded VM.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: returns an error on read or Lua load failure and leaves the
// previous VM in place.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
	m.state = L
	m.cancel = cancel
	m.limit = normalizeLimit(instLimit)
	m.logger.Debug("scripting: scripts loaded",
		zap.String("dir", scriptDir),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// Loaded reports whether a VM is loaded.
func (m *Manager) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state != nil
}

// HasHook reports whether hook is a global function in the loaded VM.
func (m *Manager) HasHook(hook string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return false
	}
	return m.state.GetGlobal(hook).Type() == lua.LTFunction
}

// ArgsFunc builds hook arguments on the VM that will run the hook. Tables
// must be created through L.
type ArgsFunc func(L *lua.LState) []lua.LValue

// Args returns an ArgsFunc passing values unchanged.
func Args(values ...lua.LValue) ArgsFunc {
	return func(*lua.LState) []lua.LValue { return values }
}

// CallHook calls the named Lua global function with a fresh instruction
// budget. Returns (LNil, nil) if no VM is loaded or the hook is not defined.
// Lua runtime errors, including an exhausted budget, are logged at Warn level
// and never propagated.
//
// Precondition: args must be non-nil.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(ctx context.Context, hook string, args ArgsFunc) (lua.LValue, error) {
	if err := ctx.Err(); err != nil {
		return lua.LNil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callLocked(ctx, hook, args)
}

// callLocked runs hook with the arguments built by mkArgs.
//
// Precondition: m.mu is held.
func (m *Manager) callLocked(ctx context.Context, hook string, mkArgs ArgsFunc) (lua.LValue, error) {
	L := m.state
	if L == nil {
		m.logger.Info("scripting: no VM loaded", zap.String("hook", hook))
		return lua.LNil, nil
	}

	fn := L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, nil
	}

	callCtx, cancel := newCountingContext(ctx, m.limit)
	defer cancel()
	L.SetContext(callCtx)
	defer L.RemoveContext()

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, mkArgs(L)...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// Close releases the VM. CallHook becomes a no-op.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

func (m *Manager) closeLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}
