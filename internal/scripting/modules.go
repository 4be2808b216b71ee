package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers all engine.* Lua tables into L:
//
//	engine.log.debug(msg) / info(msg) / warn(msg)
//	engine.has_trait(list, trait) -> bool
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()

	log := L.NewTable()
	logAt := func(fn func(string, ...zap.Field)) lua.LGFunction {
		return func(L *lua.LState) int {
			fn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}
	}
	L.SetField(log, "debug", L.NewFunction(logAt(m.logger.Debug)))
	L.SetField(log, "info", L.NewFunction(logAt(m.logger.Info)))
	L.SetField(log, "warn", L.NewFunction(logAt(m.logger.Warn)))
	L.SetField(engine, "log", log)

	L.SetField(engine, "has_trait", L.NewFunction(func(L *lua.LState) int {
		list := L.CheckTable(1)
		trait := L.CheckString(2)
		found := false
		list.ForEach(func(_, v lua.LValue) {
			if v.String() == trait {
				found = true
			}
		})
		L.Push(lua.LBool(found))
		return 1
	}))

	L.SetGlobal("engine", engine)
}
