package field

import (
	"bytes"
	"encoding/json"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

type call struct {
	kind  string
	width float64
	c     color.NRGBA
	at    r2.Vec
}

// fakeSurface records draw calls for assertions.
type fakeSurface struct {
	w, h     int
	calls    []call
	presents int
}

func (s *fakeSurface) Size() (int, int) { return s.w, s.h }
func (s *fakeSurface) Resize(w, h int) { s.w, s.h = w, h }
func (s *fakeSurface) Fade(c color.NRGBA) {
	s.calls = append(s.calls, call{kind: "fade", c: c})
}
func (s *fakeSurface) Line(a, b r2.Vec, width float64, c color.NRGBA) {
	s.calls = append(s.calls, call{kind: "line", width: width, c: c, at: a})
}
func (s *fakeSurface) Disc(center r2.Vec, radius float64, c color.NRGBA) {
	s.calls = append(s.calls, call{kind: "disc", width: radius, c: c, at: center})
}
func (s *fakeSurface) Present() { s.presents++ }

func (s *fakeSurface) count(kind string) int {
	n := 0
	for _, c := range s.calls {
		if c.kind == kind {
			n++
		}
	}
	return n
}

func TestDrawFadesBeforeAnythingElse(t *testing.T) {
	f, err := New(200, 200, DefaultConfig(), seeded())
	require.NoError(t, err)

	s := &fakeSurface{w: 200, h: 200}
	f.Draw(s, DefaultStyle())

	require.NotEmpty(t, s.calls)
	assert.Equal(t, "fade", s.calls[0].kind)
	assert.Equal(t, 1, s.count("fade"))
	assert.Less(t, s.calls[0].c.A, uint8(255), "trail must not hard-clear")
}

func TestDrawEdgesAndGlow(t *testing.T) {
	f, err := FromNodes(400, 400, DefaultConfig(), []Node{
		{Pos: r2.Vec{X: 0, Y: 0}},
		{Pos: r2.Vec{X: 30, Y: 0}},
		{Pos: r2.Vec{X: 0, Y: 120}},
		{Pos: r2.Vec{X: 390, Y: 390}},
	})
	require.NoError(t, err)

	s := &fakeSurface{w: 400, h: 400}
	f.Draw(s, DefaultStyle())

	// (0,1) glow, (0,2) plain, (1,2) at ~123.7 plain.
	assert.Equal(t, 4, s.count("line"))
	assert.Equal(t, 2*4, s.count("disc"))

	var widths []float64
	for _, c := range s.calls {
		if c.kind == "line" {
			widths = append(widths, c.width)
		}
	}
	strength := 1 - 30.0/150
	assert.InDelta(t, strength*2, widths[0], 1e-9)
	assert.InDelta(t, strength*6, widths[1], 1e-9)
}

func TestDrawNodeRadiusGrowsWithDegree(t *testing.T) {
	f, err := FromNodes(400, 400, DefaultConfig(), []Node{
		{Pos: r2.Vec{X: 100, Y: 100}},
		{Pos: r2.Vec{X: 110, Y: 100}},
		{Pos: r2.Vec{X: 100, Y: 110}},
		{Pos: r2.Vec{X: 390, Y: 390}},
	})
	require.NoError(t, err)

	s := &fakeSurface{w: 400, h: 400}
	f.Draw(s, DefaultStyle())

	var cores []float64
	for _, c := range s.calls {
		if c.kind == "disc" && c.c == DefaultStyle().Core {
			cores = append(cores, c.width)
		}
	}
	require.Len(t, cores, 4)
	assert.Equal(t, NodeRadius(2), cores[0])
	assert.Equal(t, NodeRadius(0), cores[3])
	assert.Greater(t, cores[0], cores[3])
}

func TestRasterDrawsShapes(t *testing.T) {
	r := NewRaster(40, 20)
	w, h := r.Size()
	require.Equal(t, 40, w)
	require.Equal(t, 20, h)
	assert.Equal(t, color.RGBA{A: 255}, r.Image().RGBAAt(5, 5))

	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	r.Disc(r2.Vec{X: 10, Y: 10}, 4, white)
	assert.Greater(t, r.Image().RGBAAt(10, 10).R, uint8(250))

	r.Line(r2.Vec{X: 20, Y: 10}, r2.Vec{X: 39, Y: 10}, 3, white)
	assert.Greater(t, r.Image().RGBAAt(30, 10).R, uint8(200))
	assert.Equal(t, uint8(0), r.Image().RGBAAt(30, 2).R)

	r.Fade(color.NRGBA{A: 128})
	assert.Less(t, r.Image().RGBAAt(10, 10).R, uint8(200))

	var buf bytes.Buffer
	require.NoError(t, r.EncodePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
}

func TestRasterResizeClears(t *testing.T) {
	r := NewRaster(10, 10)
	r.Disc(r2.Vec{X: 5, Y: 5}, 3, color.NRGBA{R: 255, A: 255})
	r.Resize(8, 6)

	w, h := r.Size()
	assert.Equal(t, 8, w)
	assert.Equal(t, 6, h)
	assert.Equal(t, uint8(0), r.Image().RGBAAt(5, 5).R)

	r.Resize(0, 0)
	assert.NotPanics(t, func() {
		r.Disc(r2.Vec{}, 3, color.NRGBA{A: 255})
		r.Line(r2.Vec{}, r2.Vec{X: 1}, 1, color.NRGBA{A: 255})
	})
}

func TestRecorderCapturesFrame(t *testing.T) {
	var frames []Frame
	rec := NewRecorder(300, 300, func(f Frame) { frames = append(frames, f) })

	f, err := FromNodes(300, 300, DefaultConfig(), []Node{
		{Pos: r2.Vec{X: 0, Y: 0}},
		{Pos: r2.Vec{X: 10, Y: 0}},
		{Pos: r2.Vec{X: 200, Y: 200}},
	})
	require.NoError(t, err)

	f.Step(300, 300)
	f.Draw(rec, DefaultStyle())
	rec.Present()
	rec.Present()

	require.Len(t, frames, 2)
	first := frames[0]
	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, 300, first.Width)
	assert.Equal(t, "rgba(0,0,0,0.051)", first.Fade)
	// one edge with glow, two discs per node
	require.Len(t, first.Ops, 2+6)
	assert.Equal(t, OpLine, first.Ops[0].Kind)
	assert.Equal(t, 10.0, first.Ops[0].X2)
	assert.Equal(t, OpDisc, first.Ops[len(first.Ops)-1].Kind)

	assert.Equal(t, uint64(2), frames[1].Seq)
	assert.Empty(t, frames[1].Ops)

	raw, err := json.Marshal(first)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"k":"line"`)
}

func TestRenderStill(t *testing.T) {
	r, err := RenderStill(64, 48, DefaultConfig(), 5, seeded(), DefaultStyle())
	require.NoError(t, err)

	w, h := r.Size()
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)

	lit := 0
	b := r.Image().Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r.Image().RGBAAt(x, y).B > 0 {
				lit++
			}
		}
	}
	assert.Positive(t, lit, "nodes should have been drawn")

	cfg := DefaultConfig()
	cfg.NodeCount = 0
	_, err = RenderStill(64, 48, cfg, 5, nil, DefaultStyle())
	assert.Error(t, err)
}
