package graphsynth

// RenderOffline drives the render stage synchronously and returns the
// next n samples, without an audio device. Valid on an engine that has
// not been started: submitted commands apply immediately, so a test or
// an analysis tool can build a patch, Play it, and inspect the exact
// sample stream the device callback would have received.
func (e *Engine) RenderOffline(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = e.renderer.Step()
	}
	return out
}
