package ledger

// Parent-pointer hierarchies (groups and accounts) are validated as arenas
// keyed by id, with parent references as ids rather than pointers. Every
// parent reassignment re-walks the chain with a bounded depth so malformed
// input can never loop the engine.

// maxDepth bounds hierarchy walks. Real charts of accounts are a handful of
// levels deep; anything past this is treated as a cycle.
const maxDepth = 64

// GroupArena indexes account groups by id for hierarchy checks.
type GroupArena map[string]AccountGroup

// NewGroupArena builds an arena from a slice of groups.
func NewGroupArena(groups []AccountGroup) GroupArena {
	arena := make(GroupArena, len(groups))
	for _, g := range groups {
		arena[g.ID] = g
	}
	return arena
}

// CheckParent validates assigning parentID to the group with the given id.
// It fails with ErrUnknownParent if the parent does not exist and with
// ErrParentCycle if the assignment would make the group its own ancestor.
func (a GroupArena) CheckParent(id, parentID string) error {
	if parentID == "" {
		return nil
	}
	if _, ok := a[parentID]; !ok {
		return ErrUnknownParent
	}
	current := parentID
	for depth := 0; depth < maxDepth; depth++ {
		if current == id {
			return ErrParentCycle
		}
		g, ok := a[current]
		if !ok || g.ParentID == "" {
			return nil
		}
		current = g.ParentID
	}
	return ErrParentCycle
}

// Depth returns the number of ancestors above the group, capped at maxDepth.
func (a GroupArena) Depth(id string) int {
	depth := 0
	current := a[id].ParentID
	for current != "" && depth < maxDepth {
		depth++
		current = a[current].ParentID
	}
	return depth
}

// AccountArena indexes accounts by id for sub-ledger hierarchy checks.
type AccountArena map[string]Account

// NewAccountArena builds an arena from a slice of accounts.
func NewAccountArena(accounts []Account) AccountArena {
	arena := make(AccountArena, len(accounts))
	for _, acc := range accounts {
		arena[acc.ID] = acc
	}
	return arena
}

// CheckParent validates assigning parentID to the account with the given id,
// mirroring GroupArena.CheckParent.
func (a AccountArena) CheckParent(id, parentID string) error {
	if parentID == "" {
		return nil
	}
	if _, ok := a[parentID]; !ok {
		return ErrUnknownParent
	}
	current := parentID
	for depth := 0; depth < maxDepth; depth++ {
		if current == id {
			return ErrParentCycle
		}
		acc, ok := a[current]
		if !ok || acc.ParentID == "" {
			return nil
		}
		current = acc.ParentID
	}
	return ErrParentCycle
}

// GroupPath renders the display path of a group from the root down, joined
// with " : " (e.g. "Assets : Current Assets").
func (a GroupArena) GroupPath(id string) string {
	var parts []string
	current := id
	for depth := 0; depth < maxDepth; depth++ {
		g, ok := a[current]
		if !ok {
			break
		}
		parts = append(parts, g.Name)
		if g.ParentID == "" {
			break
		}
		current = g.ParentID
	}
	// reverse in place
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	path := ""
	for i, p := range parts {
		if i > 0 {
			path += " : "
		}
		path += p
	}
	return path
}

// typeDisplay names each account type for path rendering.
var typeDisplay = map[AccountType]string{
	Asset:     "Assets",
	Liability: "Liabilities",
	Equity:    "Equity",
	Income:    "Income",
	Expense:   "Expenses",
}

// AccountPath renders "Type : Group : Account" for autocomplete and ledger
// offset display.
func AccountPath(acc Account, group AccountGroup) string {
	typeName := typeDisplay[group.AccountType]
	if typeName == "" {
		typeName = string(group.AccountType)
	}
	return typeName + " : " + group.Name + " : " + acc.Name
}
