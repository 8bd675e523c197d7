// Package index provides secondary index primitives for the entity store.
package index

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Ref formats a type-qualified entity reference (e.g., "post#12").
func Ref(kind string, id int64) string {
	return fmt.Sprintf("%s#%d", kind, id)
}

// ParseRef splits an entity reference produced by Ref.
func ParseRef(ref string) (kind string, id int64, err error) {
	i := strings.LastIndexByte(ref, '#')
	if i <= 0 || i == len(ref)-1 {
		return "", 0, fmt.Errorf("malformed entity ref %q", ref)
	}
	id, err = strconv.ParseInt(ref[i+1:], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed entity ref %q: %w", ref, err)
	}
	return ref[:i], id, nil
}

// Pair identifies a relationship row by its two foreign keys,
// e.g. (userID, postID) for a like or (followerID, followingID) for a follow.
type Pair struct {
	A, B int64
}

// Unique maps a key to the single row id that owns it.
type Unique[K comparable] map[K]int64

// Lookup returns the row id stored under k.
func (u Unique[K]) Lookup(k K) (int64, bool) {
	id, ok := u[k]
	return id, ok
}

// Children maps a parent id to the set of child row ids that reference it.
type Children map[int64]map[int64]struct{}

// Add records child under parent.
func (c Children) Add(parent, child int64) {
	set, ok := c[parent]
	if !ok {
		set = make(map[int64]struct{})
		c[parent] = set
	}
	set[child] = struct{}{}
}

// Remove forgets child under parent. Empty sets are dropped.
func (c Children) Remove(parent, child int64) {
	set, ok := c[parent]
	if !ok {
		return
	}
	delete(set, child)
	if len(set) == 0 {
		delete(c, parent)
	}
}

// IDs returns the child ids of parent in ascending order.
func (c Children) IDs(parent int64) []int64 {
	set := c[parent]
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Count returns the number of children recorded under parent.
func (c Children) Count(parent int64) int {
	return len(c[parent])
}

// Detach removes parent and returns its child ids in ascending order.
func (c Children) Detach(parent int64) []int64 {
	ids := c.IDs(parent)
	delete(c, parent)
	return ids
}
