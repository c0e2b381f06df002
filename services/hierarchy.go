package services

import "strings"

// GroupNode is one classification value with its ordered children. L1 nodes
// carry L2 children; L2 nodes carry the items themselves. Amount is the sum of
// all descendant item amounts.
type GroupNode struct {
	Label    string
	Amount   float64
	Children []*GroupNode
	Items    []LineItem
}

// Last reports whether child index i is the final child of n.
func (n *GroupNode) Last(i int) bool {
	return i == len(n.Children)-1
}

// BuildHierarchy groups items by L1 then L2 in first-seen order. Items without
// an L1 key or a name are incomplete spreadsheet rows and are dropped. L3/L4
// are left to the block sequencer because they group by adjacency.
func BuildHierarchy(items []LineItem) []*GroupNode {
	var roots []*GroupNode
	byL1 := make(map[string]*GroupNode)
	byL2 := make(map[*GroupNode]map[string]*GroupNode)

	for _, it := range items {
		it.L1 = strings.TrimSpace(it.L1)
		it.L2 = strings.TrimSpace(it.L2)
		it.L3 = strings.TrimSpace(it.L3)
		it.L4 = strings.TrimSpace(it.L4)
		if it.L1 == "" || strings.TrimSpace(it.Name) == "" {
			continue
		}

		l1, ok := byL1[it.L1]
		if !ok {
			l1 = &GroupNode{Label: it.L1}
			byL1[it.L1] = l1
			byL2[l1] = make(map[string]*GroupNode)
			roots = append(roots, l1)
		}

		l2, ok := byL2[l1][it.L2]
		if !ok {
			l2 = &GroupNode{Label: it.L2}
			byL2[l1][it.L2] = l2
			l1.Children = append(l1.Children, l2)
		}

		l2.Items = append(l2.Items, it)
		l2.Amount += it.Amount
		l1.Amount += it.Amount
	}

	return roots
}

// HierarchyItems flattens the tree back into the kept items, in tree order.
func HierarchyItems(roots []*GroupNode) []LineItem {
	var out []LineItem
	for _, l1 := range roots {
		for _, l2 := range l1.Children {
			out = append(out, l2.Items...)
		}
	}
	return out
}
