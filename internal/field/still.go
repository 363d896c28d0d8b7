package field

import "math/rand/v2"

// RenderStill steps a fresh field ticks times on a w x h raster without a
// clock and returns the last frame. The trail effect builds up over the
// ticks exactly as it does in a live session.
func RenderStill(w, h int, cfg Config, ticks int, rng *rand.Rand, st Style) (*Raster, error) {
	f, err := New(float64(w), float64(h), cfg, rng)
	if err != nil {
		return nil, err
	}
	r := NewRaster(w, h)
	if ticks < 1 {
		ticks = 1
	}
	for i := 0; i < ticks; i++ {
		f.Step(float64(w), float64(h))
		f.Draw(r, st)
	}
	return r, nil
}
