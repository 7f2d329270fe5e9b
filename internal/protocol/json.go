package protocol

import (
	"encoding/json"
	"fmt"
)

// Wire form: every command and event is a tagged object with a single
// key naming the variant, e.g. {"NoteStart":{"note":60,"row":0,
// "velocity":1}}. Ports are 0-based; floats arrive as IEEE-754 doubles
// and are truncated to single precision by the field types.

// MarshalJSON encodes the render mode as its variant name.
func (m RenderMode) MarshalJSON() ([]byte, error) {
	if m == ModeGraph {
		return []byte(`"Graph"`), nil
	}
	return []byte(`"Instruments"`), nil
}

// UnmarshalJSON accepts the variant name.
func (m *RenderMode) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "Instruments":
		*m = ModeInstruments
	case "Graph":
		*m = ModeGraph
	default:
		return fmt.Errorf("unknown render mode %q", name)
	}
	return nil
}

func commandTag(c Command) string {
	switch c.(type) {
	case NoteStart:
		return "NoteStart"
	case NoteStop:
		return "NoteStop"
	case SetRenderMode:
		return "SetRenderMode"
	case Shutdown:
		return "Shutdown"
	case AddNode:
		return "AddNode"
	case RemoveNode:
		return "RemoveNode"
	case Connect:
		return "Connect"
	case Disconnect:
		return "Disconnect"
	case SetParameter:
		return "SetParameter"
	case Play:
		return "Play"
	case Pause:
		return "Pause"
	case Stop:
		return "Stop"
	case StartNode:
		return "StartNode"
	case StopNode:
		return "StopNode"
	case OctaveUp:
		return "OctaveUp"
	case OctaveDown:
		return "OctaveDown"
	case SetOctave:
		return "SetOctave"
	case LinkOctaves:
		return "LinkOctaves"
	case UnlinkOctaves:
		return "UnlinkOctaves"
	case SelectInstrument:
		return "SelectInstrument"
	case NextInstrument:
		return "NextInstrument"
	case PreviousInstrument:
		return "PreviousInstrument"
	case LinkInstruments:
		return "LinkInstruments"
	case UnlinkInstruments:
		return "UnlinkInstruments"
	default:
		return ""
	}
}

// EncodeCommand serializes a command to its tagged wire form.
func EncodeCommand(c Command) ([]byte, error) {
	tag := commandTag(c)
	if tag == "" {
		return nil, fmt.Errorf("unencodable command %T", c)
	}
	return json.Marshal(map[string]Command{tag: c})
}

// DecodeCommand parses a tagged wire form back into a command.
func DecodeCommand(data []byte) (Command, error) {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return nil, err
	}
	if len(tagged) != 1 {
		return nil, fmt.Errorf("expected exactly one variant tag, got %d", len(tagged))
	}
	for tag, raw := range tagged {
		return decodeCommandVariant(tag, raw)
	}
	return nil, fmt.Errorf("empty command")
}

func decodeCommandVariant(tag string, raw json.RawMessage) (Command, error) {
	switch tag {
	case "NoteStart":
		var v NoteStart
		return unmarshalInto(raw, tag, &v)
	case "NoteStop":
		var v NoteStop
		return unmarshalInto(raw, tag, &v)
	case "SetRenderMode":
		var v SetRenderMode
		return unmarshalInto(raw, tag, &v)
	case "Shutdown":
		return Shutdown{}, nil
	case "AddNode":
		var v AddNode
		return unmarshalInto(raw, tag, &v)
	case "RemoveNode":
		var v RemoveNode
		return unmarshalInto(raw, tag, &v)
	case "Connect":
		var v Connect
		return unmarshalInto(raw, tag, &v)
	case "Disconnect":
		var v Disconnect
		return unmarshalInto(raw, tag, &v)
	case "SetParameter":
		var v SetParameter
		return unmarshalInto(raw, tag, &v)
	case "Play":
		return Play{}, nil
	case "Pause":
		return Pause{}, nil
	case "Stop":
		return Stop{}, nil
	case "StartNode":
		var v StartNode
		return unmarshalInto(raw, tag, &v)
	case "StopNode":
		var v StopNode
		return unmarshalInto(raw, tag, &v)
	case "OctaveUp":
		var v OctaveUp
		return unmarshalInto(raw, tag, &v)
	case "OctaveDown":
		var v OctaveDown
		return unmarshalInto(raw, tag, &v)
	case "SetOctave":
		var v SetOctave
		return unmarshalInto(raw, tag, &v)
	case "LinkOctaves":
		return LinkOctaves{}, nil
	case "UnlinkOctaves":
		return UnlinkOctaves{}, nil
	case "SelectInstrument":
		var v SelectInstrument
		return unmarshalInto(raw, tag, &v)
	case "NextInstrument":
		var v NextInstrument
		return unmarshalInto(raw, tag, &v)
	case "PreviousInstrument":
		var v PreviousInstrument
		return unmarshalInto(raw, tag, &v)
	case "LinkInstruments":
		return LinkInstruments{}, nil
	case "UnlinkInstruments":
		return UnlinkInstruments{}, nil
	default:
		return nil, fmt.Errorf("unknown command variant %q", tag)
	}
}

func unmarshalInto[T Command](raw json.RawMessage, tag string, v *T) (Command, error) {
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", tag, err)
	}
	return *v, nil
}

func eventTag(e Event) string {
	switch e.(type) {
	case AudioStarted:
		return "AudioStarted"
	case AudioStopped:
		return "AudioStopped"
	case NodeAdded:
		return "NodeAdded"
	case CommandError:
		return "CommandError"
	case GraphError:
		return "GraphError"
	case ParameterClamped:
		return "ParameterClamped"
	case UnderrunReport:
		return "UnderrunReport"
	case OutputDeviceList:
		return "OutputDeviceList"
	case OutputDeviceChanged:
		return "OutputDeviceChanged"
	default:
		return ""
	}
}

// EncodeEvent serializes an event to its tagged wire form.
func EncodeEvent(e Event) ([]byte, error) {
	tag := eventTag(e)
	if tag == "" {
		return nil, fmt.Errorf("unencodable event %T", e)
	}
	return json.Marshal(map[string]Event{tag: e})
}

// DecodeEvent parses a tagged wire form back into an event.
func DecodeEvent(data []byte) (Event, error) {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return nil, err
	}
	if len(tagged) != 1 {
		return nil, fmt.Errorf("expected exactly one variant tag, got %d", len(tagged))
	}
	for tag, raw := range tagged {
		switch tag {
		case "AudioStarted":
			return AudioStarted{}, nil
		case "AudioStopped":
			return AudioStopped{}, nil
		case "NodeAdded":
			var v NodeAdded
			return unmarshalEvent(raw, tag, &v)
		case "CommandError":
			var v CommandError
			return unmarshalEvent(raw, tag, &v)
		case "GraphError":
			var v GraphError
			return unmarshalEvent(raw, tag, &v)
		case "ParameterClamped":
			var v ParameterClamped
			return unmarshalEvent(raw, tag, &v)
		case "UnderrunReport":
			var v UnderrunReport
			return unmarshalEvent(raw, tag, &v)
		case "OutputDeviceList":
			var v OutputDeviceList
			return unmarshalEvent(raw, tag, &v)
		case "OutputDeviceChanged":
			var v OutputDeviceChanged
			return unmarshalEvent(raw, tag, &v)
		default:
			return nil, fmt.Errorf("unknown event variant %q", tag)
		}
	}
	return nil, fmt.Errorf("empty event")
}

func unmarshalEvent[T Event](raw json.RawMessage, tag string, v *T) (Event, error) {
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", tag, err)
	}
	return *v, nil
}
