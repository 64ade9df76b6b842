package gnucash

import "sort"

// walkDepth bounds parent-chain walks so a corrupt chain can never loop.
const walkDepth = 64

// Classification buckets the imported chart of accounts for the group-vs-leaf
// mapping decision. Explicit placeholders are flagged in the source file;
// implicit ones carry no transactions but have at least one child. Both are
// candidates to become account groups rather than leaf accounts — the actual
// mapping is a reviewed import step, never automatic.
type Classification struct {
	Explicit      []Account
	Implicit      []Account
	Transactional []Account
	UnusedLeaves  []Account
}

// Placeholders returns the explicit and implicit placeholders together.
func (c Classification) Placeholders() []Account {
	out := make([]Account, 0, len(c.Explicit)+len(c.Implicit))
	out = append(out, c.Explicit...)
	return append(out, c.Implicit...)
}

// Classify assigns every account to exactly one bucket.
func Classify(b *Books) Classification {
	splitCount := make(map[string]int)
	for _, t := range b.Transactions {
		for _, e := range t.Entries {
			splitCount[e.AccountGUID]++
		}
	}
	hasChild := make(map[string]bool)
	for _, a := range b.Accounts {
		if a.ParentGUID != "" {
			hasChild[a.ParentGUID] = true
		}
	}

	var c Classification
	for _, a := range b.Accounts {
		switch {
		case a.Placeholder:
			c.Explicit = append(c.Explicit, a)
		case splitCount[a.GUID] == 0 && hasChild[a.GUID]:
			c.Implicit = append(c.Implicit, a)
		case splitCount[a.GUID] > 0:
			c.Transactional = append(c.Transactional, a)
		default:
			c.UnusedLeaves = append(c.UnusedLeaves, a)
		}
	}
	return c
}

// AccountPath renders the account's colon-joined path from the root down.
// The walk is depth-bounded, so a cyclic parent chain truncates instead of
// looping.
func (b *Books) AccountPath(guid string) string {
	byGUID := b.accountIndex()
	var parts []string
	current := guid
	for depth := 0; depth < walkDepth; depth++ {
		a, ok := byGUID[current]
		if !ok {
			break
		}
		parts = append(parts, a.Name)
		if a.ParentGUID == "" {
			break
		}
		current = a.ParentGUID
	}
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

// CheckHierarchy reports accounts whose parent chain is broken: a parent
// GUID that resolves to no account, or a chain that revisits an account
// (a cycle). The findings are warnings for review; the parsed data is left
// as-is.
func (b *Books) CheckHierarchy() []string {
	byGUID := b.accountIndex()
	var findings []string
	for _, a := range b.Accounts {
		if a.ParentGUID == "" {
			continue
		}
		if _, ok := byGUID[a.ParentGUID]; !ok {
			findings = append(findings, "account "+a.GUID+" ("+a.Name+") references unknown parent "+a.ParentGUID)
			continue
		}
		seen := map[string]bool{a.GUID: true}
		current := a.ParentGUID
		for depth := 0; depth < walkDepth; depth++ {
			if seen[current] {
				findings = append(findings, "account "+a.GUID+" ("+a.Name+") has a cyclic parent chain")
				break
			}
			seen[current] = true
			parent, ok := byGUID[current]
			if !ok || parent.ParentGUID == "" {
				break
			}
			current = parent.ParentGUID
		}
	}
	sort.Strings(findings)
	return findings
}

func (b *Books) accountIndex() map[string]Account {
	byGUID := make(map[string]Account, len(b.Accounts))
	for _, a := range b.Accounts {
		byGUID[a.GUID] = a
	}
	return byGUID
}
