package protocol

import "github.com/lbarasti/graphsynth/internal/graph"

// Message is an internal instruction from the command stage to the
// render stage, carried on the SPSC message ring. Messages are applied
// strictly in emission order.
type Message interface{ isMessage() }

type MsgNoteStart struct {
	Instrument int
	Note       int
	Velocity   float32
}

type MsgNoteStop struct {
	Instrument int
	Note       int
}

// MsgSwapGraph transfers ownership of a freshly compiled graph to the
// render stage. The command stage must not touch the graph after
// emitting this.
type MsgSwapGraph struct {
	Graph *graph.Compiled
}

// MsgClearGraph makes the render stage drop its graph reference.
type MsgClearGraph struct{}

type MsgSetRenderMode struct {
	Mode RenderMode
}

type MsgGraphSetParameter struct {
	NodeIndex int
	ParamName string
	Value     float32
}

type MsgGraphStartNode struct {
	NodeIndex int
}

type MsgGraphStopNode struct {
	NodeIndex int
}

type MsgShutdown struct{}

func (MsgNoteStart) isMessage()         {}
func (MsgNoteStop) isMessage()          {}
func (MsgSwapGraph) isMessage()         {}
func (MsgClearGraph) isMessage()        {}
func (MsgSetRenderMode) isMessage()     {}
func (MsgGraphSetParameter) isMessage() {}
func (MsgGraphStartNode) isMessage()    {}
func (MsgGraphStopNode) isMessage()     {}
func (MsgShutdown) isMessage()          {}
