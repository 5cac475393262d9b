package trie

import (
	"fmt"

	"github.com/emicklei/dot"
)

// Dot renders the in-memory portion of the trie as a Graphviz graph, one
// graph node per trie node, labeled with its nibble path fragment. Subtrees
// still behind unresolved hash references show up as a single hash node.
func (self *Trie) Dot() *dot.Graph {
	g := dot.NewGraph(dot.Directed)
	var next int
	var draw func(n node) dot.Node
	draw = func(n node) (ret dot.Node) {
		next++
		ret = g.Node(fmt.Sprintf("n%d", next))
		switch n := n.(type) {
		case nil:
			ret.Label("empty")
		case *leafNode:
			ret.Label(fmt.Sprintf("leaf %x: %q", n.Key, n.Value))
			g.AddToSameRank("leaves", ret)
		case *extensionNode:
			ret.Label(fmt.Sprintf("ext %x", n.Key))
			g.Edge(ret, draw(n.Child))
		case *branchNode:
			if len(n.Value) != 0 {
				ret.Label(fmt.Sprintf("branch: %q", n.Value))
			} else {
				ret.Label("branch")
			}
			for i, c := range &n.Children {
				if c != nil {
					g.Edge(ret, draw(c)).Label(indices[i])
				}
			}
		case hashNode:
			ret.Label(fmt.Sprintf("hash %x", []byte(n)[:4]))
		}
		return
	}
	draw(self.root)
	return g
}
