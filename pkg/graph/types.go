// Package graph defines the node-link model produced by the Starmap builders
// and consumed by the layout engine and rendering collaborators.
//
// A Graph is rebuilt wholesale on every change - it is never partially
// mutated except for the position carry-over step performed by pkg/session.
// Nodes are mutable simulation entities; Links are immutable once added.
package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists. Every record id maps to exactly one node.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddLink] when the Source
	// node does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddLink] when the Target
	// node does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrDanglingLink is returned by [Graph.Validate] when a link references
	// a node that doesn't exist. This indicates graph corruption.
	ErrDanglingLink = errors.New("dangling link endpoint")
)

// AnchorKind distinguishes the two synthetic anchor families.
type AnchorKind string

// Anchor kinds.
const (
	AnchorTag    AnchorKind = "tag"
	AnchorPerson AnchorKind = "person"
)

// ConnType classifies a link for rendering and spring-length selection.
type ConnType string

// Connection types.
const (
	ConnHierarchy  ConnType = "hierarchy"
	ConnSignedBy   ConnType = "signed-by"
	ConnReferenced ConnType = "referenced"
)

// AnchorLevel is the Level assigned to every anchor node. Anchors sit outside
// the record hierarchy.
const AnchorLevel = -1

// Node is a mutable simulated point representing one record or one synthetic
// anchor. Position and velocity are mutated in place by the layout engine;
// identity fields never change after construction.
type Node struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind,omitempty"`
	Level       int        `json:"level"`
	IsContainer bool       `json:"is_container,omitempty"`
	IsAnchor    bool       `json:"is_anchor,omitempty"`
	AnchorKind  AnchorKind `json:"anchor_kind,omitempty"`
	Title       string     `json:"title,omitempty"`

	// Simulation state.
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx,omitempty"`
	VY float64 `json:"vy,omitempty"`

	// FX/FY pin the node to a fixed coordinate, overriding physics.
	// Set during drag, or permanently for centers and anchors.
	FX *float64 `json:"fx,omitempty"`
	FY *float64 `json:"fy,omitempty"`
}

// Pinned reports whether the node has a fixed coordinate.
func (n *Node) Pinned() bool { return n.FX != nil && n.FY != nil }

// Pin fixes the node at (x, y). The layout engine keeps pinned nodes in
// place while still letting them influence neighbors.
func (n *Node) Pin(x, y float64) {
	n.X, n.Y = x, y
	n.FX, n.FY = &x, &y
	n.VX, n.VY = 0, 0
}

// Unpin releases a pinned node back to the simulation.
func (n *Node) Unpin() {
	n.FX, n.FY = nil, nil
}

// Link is a connection between two nodes, identified by node id.
type Link struct {
	Source       string   `json:"source"`
	Target       string   `json:"target"`
	IsSequential bool     `json:"is_sequential,omitempty"`
	ConnType     ConnType `json:"conn_type,omitempty"`
}

// Viewport holds the drawing-surface dimensions used for placement and
// centering math.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CenterX returns the horizontal center of the viewport.
func (v Viewport) CenterX() float64 { return v.Width / 2 }

// CenterY returns the vertical center of the viewport.
func (v Viewport) CenterY() float64 { return v.Height / 2 }

// AnchorInfo is a read-only projection of one anchor for legend and
// toggle collaborators.
type AnchorInfo struct {
	Kind           AnchorKind `json:"kind"`
	Value          string     `json:"value"`
	Label          string     `json:"label"`
	ConnectedCount int        `json:"connected_count"`
	Color          string     `json:"color"`
}

// =============================================================================
// Node ID Scheme
// =============================================================================

// Record ids pass through unchanged as node ids. Anchor ids are a pure
// function of (kind, value) so repeat builds are idempotent and renderers can
// use node ids as stable keys.

// TagAnchorID returns the node id for the tag anchor of attribute key/value.
func TagAnchorID(key, value string) string {
	return fmt.Sprintf("anchor:%s:%s", key, value)
}

// PersonAnchorID returns the node id for the person anchor of an identity.
func PersonAnchorID(identity string) string {
	return "person:" + identity
}
