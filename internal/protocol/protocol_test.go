package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandWireRoundTrip(t *testing.T) {
	cases := []Command{
		NoteStart{Note: 60, Row: 0, Velocity: 1},
		NoteStop{Note: 60, Row: 1},
		SetRenderMode{Mode: ModeGraph},
		Shutdown{},
		AddNode{NodeType: "sine", X: 10, Y: 20},
		RemoveNode{ID: 3},
		Connect{From: 1, FromPort: 0, To: 2, ToPort: 0},
		Disconnect{From: 1, To: 2},
		SetParameter{NodeID: 2, ParamName: "cutoff_hz", Value: 500},
		Play{},
		Pause{},
		Stop{},
		StartNode{ID: 1},
		StopNode{ID: 1},
		OctaveUp{Row: 0},
		OctaveDown{Row: 1},
		SetOctave{Octave: 5, Row: 0},
		LinkOctaves{},
		UnlinkOctaves{},
		SelectInstrument{Index: 2, Row: 0},
		NextInstrument{Row: 1},
		PreviousInstrument{Row: 0},
	}
	for _, c := range cases {
		raw, err := EncodeCommand(c)
		require.NoError(t, err, "%T", c)
		back, err := DecodeCommand(raw)
		require.NoError(t, err, "%T: %s", c, raw)
		assert.Equal(t, c, back)
	}
}

func TestCommandWireFormat(t *testing.T) {
	raw, err := EncodeCommand(NoteStart{Note: 60, Row: 0, Velocity: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"NoteStart":{"note":60,"row":0,"velocity":1}}`, string(raw))
}

func TestDecodeCommandExternalForm(t *testing.T) {
	c, err := DecodeCommand([]byte(`{"SetRenderMode":{"mode":"Instruments"}}`))
	require.NoError(t, err)
	assert.Equal(t, SetRenderMode{Mode: ModeInstruments}, c)
}

func TestDecodeRejectsUnknownVariant(t *testing.T) {
	_, err := DecodeCommand([]byte(`{"Teleport":{}}`))
	assert.Error(t, err)
	_, err = DecodeCommand([]byte(`{"Play":{},"Stop":{}}`))
	assert.Error(t, err)
}

func TestEventWireRoundTrip(t *testing.T) {
	cases := []Event{
		AudioStarted{},
		AudioStopped{},
		NodeAdded{ID: 7, NodeType: "delay"},
		CommandError{Reason: "row out of bounds: 9"},
		GraphError{Reason: "cycle without a postponable node"},
		ParameterClamped{NodeID: 1, ParamName: "q", Requested: 1e6, Applied: 100},
		UnderrunReport{Count: 12},
		OutputDeviceList{Devices: []string{"default", "HDMI"}},
		OutputDeviceChanged{Device: "default"},
	}
	for _, e := range cases {
		raw, err := EncodeEvent(e)
		require.NoError(t, err, "%T", e)
		back, err := DecodeEvent(raw)
		require.NoError(t, err, "%T: %s", e, raw)
		assert.Equal(t, e, back)
	}
}

func TestRenderModeJSON(t *testing.T) {
	raw, err := ModeGraph.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"Graph"`, string(raw))

	var m RenderMode
	require.NoError(t, m.UnmarshalJSON([]byte(`"Instruments"`)))
	assert.Equal(t, ModeInstruments, m)
	assert.Error(t, m.UnmarshalJSON([]byte(`"Vinyl"`)))
}
