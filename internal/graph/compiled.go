package graph

import (
	"fmt"

	"github.com/lbarasti/graphsynth/internal/dsp"
)

// Compilation errors.
var (
	ErrEmptyGraph              = fmt.Errorf("graph has no nodes")
	ErrCycleWithoutPostponable = fmt.Errorf("cycle without a postponable node")
)

type edgeRef struct {
	from     int
	fromPort int
	toPort   int
}

// Compiled is the executable adjacency-list form of a Patch. Node indices
// are temporary; they are regenerated on every compilation. The struct is
// built by the command stage and handed to the render stage by move.
//
// Each node owns a single output slot vector. During a step, a consumer
// reads whatever its producer's slot holds at push time: the value from
// this step if the producer already ran (it is in an earlier layer), or
// the value from the previous step if it has not (the producer is
// postponable and the edge closes a cycle). That slot discipline is what
// makes feedback loops read the one-sample-delayed value.
type Compiled struct {
	nodes   []dsp.Node
	ids     []uint64
	edgesIn [][]edgeRef
	layers  [][]int
	slots   [][]float32

	sources []int
	sinks   []int
	primary int // index into nodes of the primary sink, -1 if none
}

// Compile materializes the patch: instantiate every node, install edges,
// then layer the graph. Nodes are instantiated in ascending ID order so
// compiled indices are deterministic.
func Compile(p *Patch, sampleRate int) (*Compiled, error) {
	ids := p.IDs()
	if len(ids) == 0 {
		return nil, ErrEmptyGraph
	}

	c := &Compiled{primary: -1}
	indexOf := make(map[uint64]int, len(ids))
	for i, id := range ids {
		rec, _ := p.Node(id)
		desc, ok := Lookup(rec.Type)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, rec.Type)
		}
		node := desc.build(sampleRate)
		for name, value := range rec.Params {
			node.SetParameter(name, value)
		}
		indexOf[id] = i
		c.nodes = append(c.nodes, node)
		c.ids = append(c.ids, id)
		c.slots = append(c.slots, make([]float32, node.Outputs()))
		switch {
		case node.Inputs() == 0:
			c.sources = append(c.sources, i)
		case node.Outputs() == 0:
			c.sinks = append(c.sinks, i)
			if c.primary == -1 {
				// ids are ascending, so the first sink seen is the
				// lowest-ID sink: the primary.
				c.primary = i
			}
		}
	}

	c.edgesIn = make([][]edgeRef, len(c.nodes))
	seen := make(map[Connection]bool)
	for _, conn := range p.Connections() {
		from, ok := indexOf[conn.From]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrInvalidNode, conn.From)
		}
		to, ok := indexOf[conn.To]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrInvalidNode, conn.To)
		}
		if conn.FromPort < 0 || conn.FromPort >= c.nodes[from].Outputs() {
			return nil, fmt.Errorf("%w: node %d output %d", ErrInvalidPort, conn.From, conn.FromPort)
		}
		if conn.ToPort < 0 || conn.ToPort >= c.nodes[to].Inputs() {
			return nil, fmt.Errorf("%w: node %d input %d", ErrInvalidPort, conn.To, conn.ToPort)
		}
		if seen[conn] {
			return nil, ErrDuplicateConnection
		}
		seen[conn] = true
		c.edgesIn[to] = append(c.edgesIn[to], edgeRef{from: from, fromPort: conn.FromPort, toPort: conn.ToPort})
	}

	if err := c.layer(); err != nil {
		return nil, err
	}
	return c, nil
}

// layer computes the execution schedule by repeated scanning: a node is
// placeable once every one of its non-postponable predecessors is
// already layered. Postponable predecessors never gate placement; their
// consumers read the previous step's slot. A pass with no progress means
// a cycle with no postponable node in it.
func (c *Compiled) layer() error {
	layerOf := make([]int, len(c.nodes))
	for i := range layerOf {
		layerOf[i] = -1
	}
	placed := 0
	for placed < len(c.nodes) {
		var next []int
		for i := range c.nodes {
			if layerOf[i] != -1 {
				continue
			}
			ready := true
			for _, e := range c.edgesIn[i] {
				if !c.nodes[e.from].Postponable() && layerOf[e.from] == -1 {
					ready = false
					break
				}
			}
			if ready {
				next = append(next, i)
			}
		}
		if len(next) == 0 {
			return ErrCycleWithoutPostponable
		}
		k := len(c.layers)
		for _, i := range next {
			layerOf[i] = k
		}
		c.layers = append(c.layers, next)
		placed += len(next)
	}
	return nil
}

// Step runs every node once, layer by layer. Allocation-free.
func (c *Compiled) Step() {
	for _, layer := range c.layers {
		for _, i := range layer {
			node := c.nodes[i]
			for _, e := range c.edgesIn[i] {
				node.Push(c.slots[e.from][e.fromPort], e.toPort)
			}
			out := node.Transform()
			copy(c.slots[i], out)
		}
	}
}

// ConsumePrimary drains one sample from the primary sink. It returns
// (0, false) when the graph has no sink or the sink holds nothing.
func (c *Compiled) ConsumePrimary() (float32, bool) {
	if c.primary < 0 {
		return 0, false
	}
	sink, ok := c.nodes[c.primary].(dsp.SampleSink)
	if !ok {
		return 0, false
	}
	var one [1]float32
	if sink.Consume(one[:]) == 0 {
		return 0, false
	}
	return one[0], true
}

// SetParameter forwards a live parameter update to a node by compiled
// index. Updates for vanished indices are dropped silently.
func (c *Compiled) SetParameter(index int, name string, value float32) {
	if index < 0 || index >= len(c.nodes) {
		return
	}
	c.nodes[index].SetParameter(name, value)
}

// StartNode activates a generator by compiled index.
func (c *Compiled) StartNode(index int) {
	if index < 0 || index >= len(c.nodes) {
		return
	}
	if s, ok := c.nodes[index].(dsp.Starter); ok {
		s.Start()
	}
}

// StopNode deactivates a generator by compiled index.
func (c *Compiled) StopNode(index int) {
	if index < 0 || index >= len(c.nodes) {
		return
	}
	if s, ok := c.nodes[index].(dsp.Starter); ok {
		s.Stop()
	}
}

// IndexByID translates a canonical node ID to this compilation's index,
// for the command stage's message translation.
func (c *Compiled) IndexByID(id uint64) (int, bool) {
	for i, nid := range c.ids {
		if nid == id {
			return i, true
		}
	}
	return 0, false
}

// Layers exposes the schedule for tests and diagnostics.
func (c *Compiled) Layers() [][]int { return c.layers }

// LayerOf returns the layer index of a compiled node.
func (c *Compiled) LayerOf(index int) int {
	for k, layer := range c.layers {
		for _, i := range layer {
			if i == index {
				return k
			}
		}
	}
	return -1
}

// NodeCount returns the number of compiled nodes.
func (c *Compiled) NodeCount() int { return len(c.nodes) }

// Node exposes a compiled node for inspection in tests.
func (c *Compiled) Node(index int) dsp.Node { return c.nodes[index] }

// Sources and Sinks return the back-maps from role to compiled index.
func (c *Compiled) Sources() []int { return c.sources }
func (c *Compiled) Sinks() []int   { return c.sinks }

// HasSink reports whether the graph can deliver samples.
func (c *Compiled) HasSink() bool { return c.primary >= 0 }
