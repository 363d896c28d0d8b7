// Package field simulates the drifting "network" backdrop: a fixed set of
// point masses bouncing inside the viewport, linked whenever two of them come
// within the connection radius.
package field

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"
)

// Node is one animated point.
type Node struct {
	Pos r2.Vec `json:"pos"`
	Vel r2.Vec `json:"vel"`
	// Links holds the indices of the nodes connected to this one in the
	// last computed frame.
	Links []int `json:"links,omitempty"`
}

// Degree is the number of nodes this node is connected to.
func (n Node) Degree() int { return len(n.Links) }

// Edge is a connection between two nodes, A < B.
type Edge struct {
	A, B     int
	Distance float64
}

// Field is a particle field. It is not safe for concurrent use; a Session
// serializes access to it.
type Field struct {
	cfg   Config
	w, h  float64
	nodes []Node
	edges []Edge
}

// New scatters cfg.NodeCount nodes uniformly over [0,w)x[0,h) with velocity
// components drawn from [-MaxSpeed, MaxSpeed].
func New(w, h float64, cfg Config, rng *rand.Rand) (*Field, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	nodes := make([]Node, cfg.NodeCount)
	for i := range nodes {
		nodes[i] = Node{
			Pos: r2.Vec{X: rng.Float64() * w, Y: rng.Float64() * h},
			Vel: r2.Vec{
				X: (rng.Float64()*2 - 1) * cfg.MaxSpeed,
				Y: (rng.Float64()*2 - 1) * cfg.MaxSpeed,
			},
		}
	}

	f := &Field{cfg: cfg, w: w, h: h, nodes: nodes}
	f.link()
	return f, nil
}

// FromNodes builds a field from explicit node state. cfg.NodeCount is
// overridden by len(nodes).
func FromNodes(w, h float64, cfg Config, nodes []Node) (*Field, error) {
	cfg.NodeCount = len(nodes)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	own := make([]Node, len(nodes))
	for i, n := range nodes {
		own[i] = Node{Pos: n.Pos, Vel: n.Vel}
	}
	f := &Field{cfg: cfg, w: w, h: h, nodes: own}
	f.link()
	return f, nil
}

// Config returns the configuration the field was built with.
func (f *Field) Config() Config { return f.cfg }

// Len returns the node count, which never changes.
func (f *Field) Len() int { return len(f.nodes) }

// Bounds returns the extent used by the last Step.
func (f *Field) Bounds() (w, h float64) { return f.w, f.h }

// Nodes returns the live node slice. Callers must not retain it across
// steps.
func (f *Field) Nodes() []Node { return f.nodes }

// Edges returns the connections computed by the last Step.
func (f *Field) Edges() []Edge { return f.edges }

// Connected reports whether i and j were linked in the last frame.
func (f *Field) Connected(i, j int) bool {
	if i == j {
		return false
	}
	for _, k := range f.nodes[i].Links {
		if k == j {
			return true
		}
	}
	return false
}

// Step advances every node by its velocity within a w x h viewport and
// recomputes adjacency. A coordinate that leaves [0,w] or [0,h] flips that
// axis of the velocity and is then clamped back inside.
func (f *Field) Step(w, h float64) {
	f.w, f.h = w, h
	for i := range f.nodes {
		n := &f.nodes[i]
		n.Pos = r2.Add(n.Pos, n.Vel)

		if n.Pos.X < 0 || n.Pos.X > w {
			n.Vel.X = -n.Vel.X
		}
		if n.Pos.Y < 0 || n.Pos.Y > h {
			n.Vel.Y = -n.Vel.Y
		}
		n.Pos.X = clamp(n.Pos.X, 0, w)
		n.Pos.Y = clamp(n.Pos.Y, 0, h)
	}
	f.link()
}

// link rebuilds edges and per-node links, visiting each unordered pair once.
// Pairs exactly at the connection radius are not connected.
func (f *Field) link() {
	f.edges = f.edges[:0]
	for i := range f.nodes {
		f.nodes[i].Links = f.nodes[i].Links[:0]
	}

	r := f.cfg.ConnectionRadius
	for i := 0; i < len(f.nodes); i++ {
		for j := i + 1; j < len(f.nodes); j++ {
			d := r2.Norm(r2.Sub(f.nodes[j].Pos, f.nodes[i].Pos))
			if d >= r {
				continue
			}
			f.edges = append(f.edges, Edge{A: i, B: j, Distance: d})
			f.nodes[i].Links = append(f.nodes[i].Links, j)
			f.nodes[j].Links = append(f.nodes[j].Links, i)
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
