package graph

import "slices"

// Graph holds the node set and link list for one build generation.
// It is not safe for concurrent use without external synchronization;
// the cooperative rebuild/tick model never shares a graph across rebuilds.
type Graph struct {
	nodes  []*Node // insertion order, kept for deterministic iteration
	byID   map[string]*Node
	links  []Link
	adjacn map[string][]string // nodeID -> connected node IDs (both directions)
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		byID:   make(map[string]*Node),
		adjacn: make(map[string][]string),
	}
}

// AddNode adds a node to the graph.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID
// if a node with the same ID already exists.
func (g *Graph) AddNode(n *Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.byID[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = n
	return nil
}

// AddLink adds a link between two existing nodes.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode if an endpoint is
// missing, keeping the no-dangling-links invariant at construction time.
func (g *Graph) AddLink(l Link) error {
	if _, ok := g.byID[l.Source]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.byID[l.Target]; !ok {
		return ErrUnknownTargetNode
	}
	g.links = append(g.links, l)
	g.adjacn[l.Source] = append(g.adjacn[l.Source], l.Target)
	g.adjacn[l.Target] = append(g.adjacn[l.Target], l.Source)
	return nil
}

// HasLink reports whether a link between the two ids exists in either
// direction.
func (g *Graph) HasLink(a, b string) bool {
	return slices.Contains(g.adjacn[a], b)
}

// Node returns the node with the given ID and true, or nil and false.
// The returned pointer refers to the live simulation entity.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Nodes returns all nodes in insertion order. The slice must not be
// modified; the node pointers are live.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Links returns a copy of all links in insertion order.
func (g *Graph) Links() []Link { return slices.Clone(g.links) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// LinkCount returns the number of links in the graph.
func (g *Graph) LinkCount() int { return len(g.links) }

// Connected returns the ids of nodes linked to id in either direction.
// The returned slice is a read-only view and may contain duplicates when
// parallel links exist.
func (g *Graph) Connected(id string) []string { return g.adjacn[id] }

// Degree returns the number of incident links on the node.
func (g *Graph) Degree(id string) int { return len(g.adjacn[id]) }

// IsEmpty reports whether the graph has no nodes - the explicit
// "nothing to render" state.
func (g *Graph) IsEmpty() bool { return len(g.nodes) == 0 }

// Filter returns a new graph containing only nodes for which keep returns
// true, with incident links of removed nodes dropped. Node pointers are
// shared with the receiver so simulation state carries over.
func (g *Graph) Filter(keep func(*Node) bool) *Graph {
	out := New()
	for _, n := range g.nodes {
		if keep(n) {
			out.nodes = append(out.nodes, n)
			out.byID[n.ID] = n
		}
	}
	for _, l := range g.links {
		_, okS := out.byID[l.Source]
		_, okT := out.byID[l.Target]
		if okS && okT {
			out.links = append(out.links, l)
			out.adjacn[l.Source] = append(out.adjacn[l.Source], l.Target)
			out.adjacn[l.Target] = append(out.adjacn[l.Target], l.Source)
		}
	}
	return out
}

// Validate checks graph integrity and returns nil if valid.
// It verifies that every link's endpoints resolve to nodes in this graph.
// Returns ErrDanglingLink if a link references a missing node.
func (g *Graph) Validate() error {
	for _, l := range g.links {
		if _, ok := g.byID[l.Source]; !ok {
			return ErrDanglingLink
		}
		if _, ok := g.byID[l.Target]; !ok {
			return ErrDanglingLink
		}
	}
	return nil
}
