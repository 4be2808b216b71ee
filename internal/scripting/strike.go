package scripting

import (
	"context"

	lua "github.com/yuin/gopher-lua"
)

// WeaponInfo is a snapshot of a weapon passed to strike-adjustment hooks.
type WeaponInfo struct {
	ID             string
	Slug           string
	Type           string
	Group          string
	Category       string
	Traits         []string
	RangeIncrement int // 0 when the weapon has no range
	Melee          bool
}

// StrikeAdjustment is what a strike-adjustment hook asked for.
type StrikeAdjustment struct {
	AddTraits          []string
	RemoveTraits       []string
	AddWeaponTraits    []string
	RemoveWeaponTraits []string
	// RangeIncrement overrides the weapon's range increment when positive.
	RangeIncrement int
}

// AdjustStrike calls hook(weapon, traits). The hook returns nil to leave the
// strike alone, or a table shaped like
//
//	{ traits = { add = {...}, remove = {...} },
//	  weapon_traits = { add = {...}, remove = {...} },
//	  range_increment = n }
//
// Postcondition: ok is false when the hook is missing, fails, or returns nil.
func (m *Manager) AdjustStrike(ctx context.Context, hook string, w WeaponInfo, traits []string) (StrikeAdjustment, bool) {
	if !m.Loaded() {
		return StrikeAdjustment{}, false
	}

	ret, err := m.CallHook(ctx, hook, func(L *lua.LState) []lua.LValue {
		weapon := L.NewTable()
		L.SetField(weapon, "id", lua.LString(w.ID))
		L.SetField(weapon, "slug", lua.LString(w.Slug))
		L.SetField(weapon, "type", lua.LString(w.Type))
		L.SetField(weapon, "group", lua.LString(w.Group))
		L.SetField(weapon, "category", lua.LString(w.Category))
		L.SetField(weapon, "traits", stringList(L, w.Traits))
		L.SetField(weapon, "melee", lua.LBool(w.Melee))
		if w.RangeIncrement > 0 {
			L.SetField(weapon, "range_increment", lua.LNumber(w.RangeIncrement))
		}
		return []lua.LValue{weapon, stringList(L, traits)}
	})
	if err != nil {
		return StrikeAdjustment{}, false
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return StrikeAdjustment{}, false
	}

	var adj StrikeAdjustment
	adj.AddTraits, adj.RemoveTraits = addRemove(tbl.RawGetString("traits"))
	adj.AddWeaponTraits, adj.RemoveWeaponTraits = addRemove(tbl.RawGetString("weapon_traits"))
	if n, ok := tbl.RawGetString("range_increment").(lua.LNumber); ok && n > 0 {
		adj.RangeIncrement = int(n)
	}
	return adj, true
}

func stringList(L *lua.LState, values []string) *lua.LTable {
	t := L.NewTable()
	for _, v := range values {
		t.Append(lua.LString(v))
	}
	return t
}

func addRemove(v lua.LValue) (add, remove []string) {
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil, nil
	}
	return stringsOf(t.RawGetString("add")), stringsOf(t.RawGetString("remove"))
}

func stringsOf(v lua.LValue) []string {
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil
	}
	var out []string
	t.ForEach(func(_, e lua.LValue) {
		if s, ok := e.(lua.LString); ok {
			out = append(out, string(s))
		}
	})
	return out
}
