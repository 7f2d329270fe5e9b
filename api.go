package graphsynth

import "github.com/lbarasti/graphsynth/internal/protocol"

// The command, event and mode types are defined in the protocol package;
// they are aliased here so callers only ever import graphsynth.

// Command is a request submitted to the engine.
type Command = protocol.Command

// Event is an observable fact emitted by the engine.
type Event = protocol.Event

// RenderMode selects which render path feeds the output.
type RenderMode = protocol.RenderMode

const (
	ModeInstruments = protocol.ModeInstruments
	ModeGraph       = protocol.ModeGraph
)

// Audio commands.
type (
	NoteStart     = protocol.NoteStart
	NoteStop      = protocol.NoteStop
	SetRenderMode = protocol.SetRenderMode
	Shutdown      = protocol.Shutdown
)

// Graph commands.
type (
	AddNode      = protocol.AddNode
	RemoveNode   = protocol.RemoveNode
	Connect      = protocol.Connect
	Disconnect   = protocol.Disconnect
	SetParameter = protocol.SetParameter
	Play         = protocol.Play
	Pause        = protocol.Pause
	Stop         = protocol.Stop
	StartNode    = protocol.StartNode
	StopNode     = protocol.StopNode
)

// App commands.
type (
	OctaveUp           = protocol.OctaveUp
	OctaveDown         = protocol.OctaveDown
	SetOctave          = protocol.SetOctave
	LinkOctaves        = protocol.LinkOctaves
	UnlinkOctaves      = protocol.UnlinkOctaves
	SelectInstrument   = protocol.SelectInstrument
	NextInstrument     = protocol.NextInstrument
	PreviousInstrument = protocol.PreviousInstrument
	LinkInstruments    = protocol.LinkInstruments
	UnlinkInstruments  = protocol.UnlinkInstruments
)

// Events.
type (
	AudioStarted        = protocol.AudioStarted
	AudioStopped        = protocol.AudioStopped
	NodeAdded           = protocol.NodeAdded
	CommandError        = protocol.CommandError
	GraphError          = protocol.GraphError
	ParameterClamped    = protocol.ParameterClamped
	UnderrunReport      = protocol.UnderrunReport
	OutputDeviceList    = protocol.OutputDeviceList
	OutputDeviceChanged = protocol.OutputDeviceChanged
)

// EncodeCommand and DecodeCommand implement the JSON wire form used by
// out-of-process UIs: tagged objects like {"NoteStart":{...}}.
var (
	EncodeCommand = protocol.EncodeCommand
	DecodeCommand = protocol.DecodeCommand
	EncodeEvent   = protocol.EncodeEvent
	DecodeEvent   = protocol.DecodeEvent
)
