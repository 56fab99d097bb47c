package view

import (
	"errors"
	"fmt"
)

// ErrNodeNotFound is returned when a command names a node that is not registered.
var ErrNodeNotFound = errors.New("node not found")

// ErrDuplicateNode is returned when two nodes share an ID.
var ErrDuplicateNode = errors.New("duplicate node id")

// Document indexes the nodes of one or more reports by their stable IDs.
// Registration order is document order.
type Document struct {
	nodes map[string]Node
	order []string
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{nodes: make(map[string]Node)}
}

// Add registers nodes in document order.
func (d *Document) Add(nodes ...Node) error {
	for _, n := range nodes {
		id := n.NodeID()
		if id == "" {
			return fmt.Errorf("cannot register %T without an id", n)
		}
		if _, exists := d.nodes[id]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
		}
		d.nodes[id] = n
		d.order = append(d.order, id)
	}
	return nil
}

// Node returns the node registered under id.
func (d *Document) Node(id string) (Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Len returns the number of registered nodes.
func (d *Document) Len() int {
	return len(d.order)
}

// IDs returns every node ID in document order.
func (d *Document) IDs() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Lookup returns the node registered under id if it has type *T.
func Lookup[T any](d *Document, id string) (*T, bool) {
	n, ok := d.nodes[id]
	if !ok {
		return nil, false
	}
	t, ok := any(n).(*T)
	return t, ok
}

// Nodes returns the nodes of type *T accepted by keep, in document order.
// A nil keep accepts everything.
func Nodes[T any](d *Document, keep func(*T) bool) []*T {
	var out []*T
	for _, id := range d.order {
		t, ok := any(d.nodes[id]).(*T)
		if !ok {
			continue
		}
		if keep == nil || keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNodeNotFound)
}

func (d *Document) cards(reportID string) []*ColumnCard {
	return Nodes(d, func(c *ColumnCard) bool { return c.ReportID == reportID })
}

func (d *Document) bars(reportID string) []*Bar {
	return Nodes(d, func(b *Bar) bool { return b.ReportID == reportID })
}

func (d *Document) texts(reportID string, role TextRole) []*Text {
	return Nodes(d, func(t *Text) bool { return t.ReportID == reportID && t.Role == role })
}
