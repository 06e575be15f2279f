package ident

import (
	"strconv"
	"strings"
)

// Namer hands out unique identifiers within one scope (the members of one
// interface, or the type names of one file).
//
// The first claimant of a name keeps it. Later claimants get the lowest free
// numeric suffix starting at 2: name, name2, name3. Results depend only on the
// order of Claim calls.
type Namer struct {
	used map[string]bool
	fold bool // compare names case-insensitively
}

// NewNamer returns a Namer with the given names already taken.
func NewNamer(taken ...string) *Namer {
	n := &Namer{used: make(map[string]bool, len(taken))}
	for _, name := range taken {
		n.used[name] = true
	}
	return n
}

// NewFoldingNamer returns a Namer that treats names differing only in case as
// equal, for file names on case-insensitive filesystems. Claimed names keep
// their original case.
func NewFoldingNamer(taken ...string) *Namer {
	n := &Namer{used: make(map[string]bool, len(taken)), fold: true}
	for _, name := range taken {
		n.used[n.key(name)] = true
	}
	return n
}

func (n *Namer) key(name string) string {
	if n.fold {
		return strings.ToLower(name)
	}
	return name
}

// NewFieldNamer returns a Namer for interface members; "id" is always taken
// by the fixed record id member.
func NewFieldNamer() *Namer {
	return NewNamer("id")
}

// Claim reserves name, or the first free suffixed variant of it.
func (n *Namer) Claim(name string) string {
	if !n.used[n.key(name)] {
		n.used[n.key(name)] = true
		return name
	}
	for i := 2; ; i++ {
		candidate := name + strconv.Itoa(i)
		if !n.used[n.key(candidate)] {
			n.used[n.key(candidate)] = true
			return candidate
		}
	}
}

// Taken reports whether name has been claimed.
func (n *Namer) Taken(name string) bool {
	return n.used[n.key(name)]
}
