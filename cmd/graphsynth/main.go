package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/lbarasti/graphsynth"
)

func main() {
	var (
		configPath  = pflag.String("config", "graphsynth.yaml", "path to the YAML configuration")
		listDevices = pflag.Bool("list-devices", false, "print output devices and exit")
		mode        = pflag.String("mode", "graph", "demo mode: graph|keys")
		volume      = pflag.Float64("volume", 1.0, "master volume scalar")
		duration    = pflag.Duration("duration", 10*time.Second, "how long to play before exiting")
	)
	pflag.Parse()

	cfg, err := graphsynth.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	engine, err := graphsynth.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := engine.Start(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer engine.Close()
	engine.SetMasterVolume(float32(*volume))

	// Single consumer for the backend event queue. Node IDs are
	// forwarded to whoever is building a patch.
	ids := make(chan uint64, 8)
	go func() {
		for ev := range engine.Events() {
			switch e := ev.(type) {
			case graphsynth.NodeAdded:
				ids <- e.ID
			case graphsynth.OutputDeviceList:
				if *listDevices {
					for _, name := range e.Devices {
						fmt.Println(name)
					}
					os.Exit(0)
				}
			case graphsynth.CommandError:
				fmt.Fprintln(os.Stderr, "command error:", e.Reason)
			case graphsynth.GraphError:
				fmt.Fprintln(os.Stderr, "graph error:", e.Reason)
			case graphsynth.UnderrunReport:
				fmt.Fprintln(os.Stderr, "underruns:", e.Count)
			}
		}
	}()

	switch *mode {
	case "keys":
		playKeysDemo(engine)
	default:
		playGraphDemo(engine, ids)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	select {
	case <-interrupt:
	case <-time.After(*duration):
	}
}

// playGraphDemo patches a sawtooth through a resonant band-pass swept by
// the command loop.
func playGraphDemo(engine *graphsynth.Engine, ids <-chan uint64) {
	add := func(nodeType string) uint64 {
		_ = engine.Submit(graphsynth.AddNode{NodeType: nodeType})
		select {
		case id := <-ids:
			return id
		case <-time.After(time.Second):
			fmt.Fprintln(os.Stderr, "no node ID for", nodeType)
			os.Exit(1)
			return 0
		}
	}

	osc := add("sawtooth")
	flt := add("resonator")
	out := add("audio-out")
	_ = engine.Submit(graphsynth.SetParameter{NodeID: osc, ParamName: "frequency_hz", Value: 110})
	_ = engine.Submit(graphsynth.SetParameter{NodeID: osc, ParamName: "amplitude", Value: 0.4})
	_ = engine.Submit(graphsynth.SetParameter{NodeID: flt, ParamName: "q", Value: 8})
	_ = engine.Submit(graphsynth.Connect{From: osc, FromPort: 0, To: flt, ToPort: 0})
	_ = engine.Submit(graphsynth.Connect{From: flt, FromPort: 0, To: out, ToPort: 0})
	_ = engine.Submit(graphsynth.Play{})

	// Sweep the resonator while playing.
	go func() {
		center := float32(200)
		dir := float32(1)
		for range time.Tick(50 * time.Millisecond) {
			center += dir * 60
			if center > 4000 || center < 200 {
				dir = -dir
			}
			_ = engine.Submit(graphsynth.SetParameter{
				NodeID: flt, ParamName: "center_hz", Value: center,
			})
		}
	}()
}

// playKeysDemo walks a small melody on the default instrument bank.
func playKeysDemo(engine *graphsynth.Engine) {
	go func() {
		notes := []uint8{60, 64, 67, 72, 67, 64}
		for i := 0; ; i++ {
			note := notes[i%len(notes)]
			_ = engine.Submit(graphsynth.NoteStart{Note: note, Row: 0, Velocity: 0.9})
			time.Sleep(250 * time.Millisecond)
			_ = engine.Submit(graphsynth.NoteStop{Note: note, Row: 0})
		}
	}()
}
