// Package graph holds the audio-processing graph in its two forms: the
// canonical Patch edited by the command stage, and the Compiled graph the
// render stage executes. Stable 64-bit IDs live in the Patch; compiled
// node indices are regenerated on every compilation.
package graph

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Position is the editor placement of a node; the core stores it
// verbatim for the UI.
type Position struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// NodeRecord is the canonical description of one node.
type NodeRecord struct {
	Type     string             `json:"type"`
	Kind     Kind               `json:"kind"`
	Params   map[string]float32 `json:"params,omitempty"`
	Position Position           `json:"position"`
}

// Connection is a directed, port-labelled edge between two nodes.
type Connection struct {
	From     uint64 `json:"from"`
	FromPort int    `json:"from_port"`
	To       uint64 `json:"to"`
	ToPort   int    `json:"to_port"`
}

// Patch is the canonical graph. It is owned exclusively by the command
// stage and is never shared across goroutines.
type Patch struct {
	nodes  map[uint64]*NodeRecord
	conns  []Connection
	nextID uint64
}

// NewPatch returns an empty patch.
func NewPatch() *Patch {
	return &Patch{nodes: make(map[uint64]*NodeRecord)}
}

// Errors reported by patch mutations.
var (
	ErrUnknownNodeType     = fmt.Errorf("unknown node type")
	ErrInvalidNode         = fmt.Errorf("node does not exist")
	ErrInvalidPort         = fmt.Errorf("port out of range")
	ErrDuplicateConnection = fmt.Errorf("duplicate connection")
	ErrUnknownParameter    = fmt.Errorf("unknown parameter")
)

// AddNode appends a node of the given registered type and returns its
// newly assigned ID. IDs are unique and strictly increasing.
func (p *Patch) AddNode(typeName string, pos Position) (uint64, error) {
	desc, ok := Lookup(typeName)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNodeType, typeName)
	}
	p.nextID++
	id := p.nextID
	params := make(map[string]float32, len(desc.Params))
	for _, spec := range desc.Params {
		params[spec.Name] = spec.Default
	}
	p.nodes[id] = &NodeRecord{
		Type:     typeName,
		Kind:     desc.Kind,
		Params:   params,
		Position: pos,
	}
	return id, nil
}

// RemoveNode deletes a node and every connection touching it.
func (p *Patch) RemoveNode(id uint64) error {
	if _, ok := p.nodes[id]; !ok {
		return fmt.Errorf("%w: %d", ErrInvalidNode, id)
	}
	delete(p.nodes, id)
	kept := p.conns[:0]
	for _, c := range p.conns {
		if c.From != id && c.To != id {
			kept = append(kept, c)
		}
	}
	p.conns = kept
	return nil
}

// Connect installs a directed edge. Both endpoints must exist, both ports
// must be in range, and the exact connection must not already exist.
func (p *Patch) Connect(from uint64, fromPort int, to uint64, toPort int) error {
	src, ok := p.nodes[from]
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidNode, from)
	}
	dst, ok := p.nodes[to]
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidNode, to)
	}
	srcDesc, _ := Lookup(src.Type)
	dstDesc, _ := Lookup(dst.Type)
	if fromPort < 0 || fromPort >= srcDesc.Outputs {
		return fmt.Errorf("%w: node %d output %d", ErrInvalidPort, from, fromPort)
	}
	if toPort < 0 || toPort >= dstDesc.Inputs {
		return fmt.Errorf("%w: node %d input %d", ErrInvalidPort, to, toPort)
	}
	for _, c := range p.conns {
		if c.From == from && c.To == to && c.FromPort == fromPort && c.ToPort == toPort {
			return ErrDuplicateConnection
		}
	}
	p.conns = append(p.conns, Connection{From: from, FromPort: fromPort, To: to, ToPort: toPort})
	return nil
}

// Disconnect removes every edge from one node to another.
func (p *Patch) Disconnect(from, to uint64) error {
	found := false
	kept := p.conns[:0]
	for _, c := range p.conns {
		if c.From == from && c.To == to {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	p.conns = kept
	if !found {
		return fmt.Errorf("%w: no connection %d -> %d", ErrInvalidNode, from, to)
	}
	return nil
}

// SetParam stores a parameter value, clamped to the declared range.
// It returns the applied value.
func (p *Patch) SetParam(id uint64, name string, value float32) (float32, error) {
	node, ok := p.nodes[id]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrInvalidNode, id)
	}
	desc, _ := Lookup(node.Type)
	for _, spec := range desc.Params {
		if spec.Name == name {
			applied := spec.Clamp(value)
			node.Params[name] = applied
			return applied, nil
		}
	}
	return 0, fmt.Errorf("%w: %s.%s", ErrUnknownParameter, node.Type, name)
}

// Node returns a copy of the record for id.
func (p *Patch) Node(id uint64) (NodeRecord, bool) {
	n, ok := p.nodes[id]
	if !ok {
		return NodeRecord{}, false
	}
	return *n, true
}

// Len returns the node count.
func (p *Patch) Len() int { return len(p.nodes) }

// IDs returns every node ID in ascending order.
func (p *Patch) IDs() []uint64 {
	ids := make([]uint64, 0, len(p.nodes))
	for id := range p.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Connections returns a copy of the edge list.
func (p *Patch) Connections() []Connection {
	out := make([]Connection, len(p.conns))
	copy(out, p.conns)
	return out
}

type patchJSON struct {
	Nodes       map[uint64]*NodeRecord `json:"nodes"`
	Connections []Connection           `json:"connections"`
	NextID      uint64                 `json:"next_id"`
}

// MarshalJSON serializes the patch for persistence by the editor.
func (p *Patch) MarshalJSON() ([]byte, error) {
	return json.Marshal(patchJSON{Nodes: p.nodes, Connections: p.conns, NextID: p.nextID})
}

// UnmarshalJSON restores a serialized patch, validating node types,
// connections and parameter ranges.
func (p *Patch) UnmarshalJSON(data []byte) error {
	var raw patchJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	restored := NewPatch()
	var maxID uint64
	for id, rec := range raw.Nodes {
		desc, ok := Lookup(rec.Type)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownNodeType, rec.Type)
		}
		node := &NodeRecord{Type: rec.Type, Kind: desc.Kind, Position: rec.Position,
			Params: make(map[string]float32, len(desc.Params))}
		for _, spec := range desc.Params {
			node.Params[spec.Name] = spec.Default
			if v, ok := rec.Params[spec.Name]; ok {
				node.Params[spec.Name] = spec.Clamp(v)
			}
		}
		restored.nodes[id] = node
		if id > maxID {
			maxID = id
		}
	}
	restored.nextID = raw.NextID
	if restored.nextID < maxID {
		restored.nextID = maxID
	}
	for _, c := range raw.Connections {
		if err := restored.Connect(c.From, c.FromPort, c.To, c.ToPort); err != nil {
			return err
		}
	}
	*p = *restored
	return nil
}
