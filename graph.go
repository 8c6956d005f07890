package strobe

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"go.uber.org/multierr"
)

// Graph is an acyclic composition of nodes connected by typed buffers. It
// owns every node and buffer for the duration of one run. Assembly happens
// through Add and Connect; Finalize freezes and validates the topology;
// Run drives it to completion.
type Graph struct {
	nodes     map[string]Node
	nodeOrder []string // insertion order, for deterministic validation
	edges     []edge

	// adjacency by node name, built as connections are made
	children map[string][]string

	topo []Node // set by Finalize

	log       *slog.Logger
	finalized bool
}

// NewGraph creates an empty graph.
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{
		nodes:    map[string]Node{},
		children: map[string][]string{},
		log:      NullLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GraphOption configures a Graph.
type GraphOption func(*Graph)

// WithGraphLog sets the logger used during execution.
func WithGraphLog(log *slog.Logger) GraphOption {
	return func(g *Graph) {
		g.log = log
	}
}

// Add registers a node with the graph. Node names must be unique.
func (g *Graph) Add(n Node) error {
	if g.finalized {
		return fmt.Errorf("graph is finalized")
	}
	name := n.Name()
	if _, found := g.nodes[name]; found {
		return fmt.Errorf("%w: %q", ErrNodeAlreadyExists, name)
	}
	g.nodes[name] = n
	g.nodeOrder = append(g.nodeOrder, name)
	for _, in := range n.Inputs() {
		in.owner = n
	}
	for _, out := range n.Outputs() {
		out.owner = n
	}
	return nil
}

// MustAdd registers a node, panicking on error.
func (g *Graph) MustAdd(n Node) {
	if err := g.Add(n); err != nil {
		panic(err)
	}
}

// ConnectOption configures a single connection.
type ConnectOption func(*connectConfig)

type connectConfig struct {
	capacity int
}

// WithCapacity bounds the buffer created for a connection. Unset or <= 0
// means unbounded.
func WithCapacity(n int) ConnectOption {
	return func(c *connectConfig) {
		c.capacity = n
	}
}

// Connect wires an output port to an input port through a fresh buffer.
// Element types must match; each input accepts exactly one producer; an
// output may fan out to several inputs.
func (g *Graph) Connect(out *OutPort, in *InPort, opts ...ConnectOption) error {
	if g.finalized {
		return fmt.Errorf("graph is finalized")
	}
	if out.owner == nil || in.owner == nil {
		return fmt.Errorf("%w: ports must belong to added nodes", ErrNodeNotFound)
	}
	if _, found := g.nodes[out.owner.Name()]; !found {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, out.owner.Name())
	}
	if _, found := g.nodes[in.owner.Name()]; !found {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, in.owner.Name())
	}
	if out.elem != in.elem {
		return fmt.Errorf("%w: %s.%s emits %s, %s.%s expects %s",
			ErrTypeMismatch,
			out.owner.Name(), out.name, out.elem,
			in.owner.Name(), in.name, in.elem)
	}
	if in.buf != nil {
		return fmt.Errorf("input %s.%s already connected", in.owner.Name(), in.name)
	}

	var cfg connectConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	buf := out.newEdge(cfg.capacity)
	out.bufs = append(out.bufs, buf)
	in.buf = buf
	g.edges = append(g.edges, buf)
	g.children[out.owner.Name()] = append(g.children[out.owner.Name()], in.owner.Name())

	// An edge added now may close a loop; refuse and unwind it immediately.
	if err := g.detectCycles(); err != nil {
		out.bufs = out.bufs[:len(out.bufs)-1]
		in.buf = nil
		g.edges = g.edges[:len(g.edges)-1]
		kids := g.children[out.owner.Name()]
		g.children[out.owner.Name()] = kids[:len(kids)-1]
		return err
	}
	return nil
}

// MustConnect wires two ports, panicking on error.
func (g *Graph) MustConnect(out *OutPort, in *InPort, opts ...ConnectOption) {
	if err := g.Connect(out, in, opts...); err != nil {
		panic(err)
	}
}

// Finalize validates the topology and freezes it. After Finalize no nodes
// or connections can be added.
func (g *Graph) Finalize() error {
	if g.finalized {
		return nil
	}

	if err := g.validateNoDanglingPorts(); err != nil {
		return err
	}
	if err := g.detectCycles(); err != nil {
		return err
	}

	topo, err := g.topologicalOrder()
	if err != nil {
		return err
	}
	g.topo = topo
	g.finalized = true
	return nil
}

// Run drives the graph to completion. The context is checked between node
// invocations; cancellation is surfaced as ctx.Err(). Finalize is applied
// first if the caller has not done so.
func (g *Graph) Run(ctx context.Context) error {
	if err := g.Finalize(); err != nil {
		return err
	}
	s := newScheduler(g, g.log)
	return s.run(ctx)
}

// Close releases node resources. Nodes that implement io.Closer get
// closed; failures are aggregated.
func (g *Graph) Close() error {
	var err error
	for _, name := range g.nodeOrder {
		if c, ok := g.nodes[name].(interface{ Close() error }); ok {
			err = multierr.Append(err, c.Close())
		}
	}
	return err
}

// Nodes returns the graph's nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodeOrder))
	for _, name := range g.nodeOrder {
		out = append(out, g.nodes[name])
	}
	return out
}

func (g *Graph) validateNoDanglingPorts() error {
	for _, name := range g.nodeOrder {
		n := g.nodes[name]
		for _, in := range n.Inputs() {
			if !in.Connected() {
				return fmt.Errorf("%w: input %s.%s", ErrDanglingPort, name, in.name)
			}
		}
		for _, out := range n.Outputs() {
			if !out.Connected() {
				return fmt.Errorf("%w: output %s.%s", ErrDanglingPort, name, out.name)
			}
		}
	}
	return nil
}

// detectCycles uses DFS to find cycles, reporting the offending path.
func (g *Graph) detectCycles() error {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	var dfs func(string, []string) error
	dfs = func(name string, path []string) error {
		visited[name] = true
		recStack[name] = true
		path = append(path, name)

		children := slices.Clone(g.children[name])
		slices.Sort(children)
		for _, child := range children {
			if !visited[child] {
				if err := dfs(child, path); err != nil {
					return err
				}
			} else if recStack[child] {
				return fmt.Errorf("%w: %v", ErrCycleDetected, append(path, child))
			}
		}

		recStack[name] = false
		return nil
	}

	for _, name := range g.nodeOrder {
		if !visited[name] {
			if err := dfs(name, nil); err != nil {
				return err
			}
		}
	}

	return nil
}

// topologicalOrder produces a deterministic ordering via Kahn's
// algorithm, breaking ties by insertion order so identical graphs always
// run identically.
func (g *Graph) topologicalOrder() ([]Node, error) {
	insertionRank := make(map[string]int, len(g.nodeOrder))
	for i, name := range g.nodeOrder {
		insertionRank[name] = i
	}

	inDegree := make(map[string]int)
	for _, name := range g.nodeOrder {
		inDegree[name] = 0
	}
	for _, children := range g.children {
		for _, child := range children {
			inDegree[child]++
		}
	}

	var queue []string
	for _, name := range g.nodeOrder {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	byInsertion := func(a, b string) int {
		return insertionRank[a] - insertionRank[b]
	}
	slices.SortFunc(queue, byInsertion)

	var result []Node
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		result = append(result, g.nodes[name])

		children := slices.Clone(g.children[name])
		slices.SortFunc(children, byInsertion)

		for _, child := range children {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
				slices.SortFunc(queue, byInsertion)
			}
		}
	}

	if len(result) != len(g.nodes) {
		return nil, fmt.Errorf("%w: topological sort left %d nodes unplaced",
			ErrCycleDetected, len(g.nodes)-len(result))
	}

	return result, nil
}
