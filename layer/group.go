package layer

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// CreateGroup groups layers that occupy a contiguous run of the stack.
// Member order is taken from the stack, bottom to top.
func (s *Stack) CreateGroup(name string, ids ...string) (Group, error) {
	if len(ids) == 0 {
		return Group{}, errEmptyGroupMember
	}
	idx := make([]int, 0, len(ids))
	for _, id := range ids {
		i := s.Index(id)
		if i < 0 {
			return Group{}, fmt.Errorf("%w: %s", ErrLayerNotFound, id)
		}
		if g := s.groupOf(id); g != "" {
			return Group{}, fmt.Errorf("%w: %s in %s", ErrAlreadyGrouped, id, g)
		}
		idx = append(idx, i)
	}
	slices.Sort(idx)
	idx = slices.Compact(idx)
	for k := 1; k < len(idx); k++ {
		if idx[k] != idx[k-1]+1 {
			return Group{}, ErrNotContiguous
		}
	}
	g := Group{ID: uuid.NewString(), Name: name}
	for _, i := range idx {
		g.Members = append(g.Members, s.layers[i].id)
	}
	if g.Name == "" {
		g.Name = fmt.Sprintf("Group %d", len(s.groups)+1)
	}
	s.groups = append(s.groups, g)
	return g.clone(), nil
}

// Ungroup removes a group. Its layers stay where they are.
func (s *Stack) Ungroup(id string) error {
	for i, g := range s.groups {
		if g.ID == id {
			s.groups = slices.Delete(s.groups, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrGroupNotFound, id)
}

// Groups returns copies of all groups.
func (s *Stack) Groups() []Group {
	out := make([]Group, len(s.groups))
	for i, g := range s.groups {
		out[i] = g.clone()
	}
	return out
}

func (s *Stack) groupOf(layerID string) string {
	for _, g := range s.groups {
		if slices.Contains(g.Members, layerID) {
			return g.ID
		}
	}
	return ""
}

// normalizeGroups restores group invariants after a structural edit:
// members that no longer exist are dropped, and a group whose members are
// no longer contiguous keeps its longest contiguous run (the lowest one
// on ties). Empty groups are removed.
func (s *Stack) normalizeGroups() {
	kept := s.groups[:0]
	for _, g := range s.groups {
		var idx []int
		for _, m := range g.Members {
			if i := s.Index(m); i >= 0 {
				idx = append(idx, i)
			}
		}
		if len(idx) == 0 {
			continue
		}
		slices.Sort(idx)
		bestStart, bestLen := 0, 1
		start := 0
		for k := 1; k <= len(idx); k++ {
			if k < len(idx) && idx[k] == idx[k-1]+1 {
				continue
			}
			if n := k - start; n > bestLen {
				bestStart, bestLen = start, n
			}
			start = k
		}
		g.Members = g.Members[:0]
		for _, i := range idx[bestStart : bestStart+bestLen] {
			g.Members = append(g.Members, s.layers[i].id)
		}
		kept = append(kept, g)
	}
	s.groups = kept
}
