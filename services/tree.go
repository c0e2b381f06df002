package services

import "fmt"

// TreeNode is one folder of the L1..L4 classification tree. Unlike the block
// stream, equal L3/L4 keys are merged regardless of adjacency.
type TreeNode struct {
	Name     string      `json:"name"`
	Label    string      `json:"label"`
	Level    int         `json:"level"`
	Amount   float64     `json:"amount"`
	Items    int         `json:"items"`
	Children []*TreeNode `json:"children,omitempty"`
}

// BuildTree converts the hierarchy into a folder tree. Items with empty L3 or
// L4 keys stay at the deepest non-empty level.
func BuildTree(roots []*GroupNode) []*TreeNode {
	out := make([]*TreeNode, 0, len(roots))
	for _, l1 := range roots {
		n1 := &TreeNode{Name: l1.Label, Level: 1}
		for _, l2 := range l1.Children {
			n2 := &TreeNode{Name: l2.Label, Level: 2}
			for _, it := range l2.Items {
				n := n2
				for level, key := range []string{it.L3, it.L4} {
					if key == "" {
						break
					}
					n = n.child(key, level+3)
				}
				n.Items++
				n.addAmount(it.Amount)
				if n != n2 {
					n2.addAmount(it.Amount)
				}
				if n.Level == 4 {
					n2.child(it.L3, 3).addAmount(it.Amount)
				}
			}
			n1.Children = append(n1.Children, n2)
			n1.addAmount(n2.Amount)
		}
		out = append(out, n1)
	}
	labelTree(out)
	return out
}

func (n *TreeNode) child(name string, level int) *TreeNode {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	c := &TreeNode{Name: name, Level: level}
	n.Children = append(n.Children, c)
	return c
}

func (n *TreeNode) addAmount(v float64) { n.Amount += v }

func labelTree(nodes []*TreeNode) {
	for _, n := range nodes {
		n.Label = fmt.Sprintf("%s (¥%s)", n.Name, FormatYen(n.Amount))
		labelTree(n.Children)
	}
}
