package field

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Op kinds in a recorded Frame.
const (
	OpLine = "line"
	OpDisc = "disc"
)

// Op is a single recorded draw call. For lines W is the stroke width, for
// discs it is the radius and X2/Y2 are unused.
type Op struct {
	Kind  string  `json:"k"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	X2    float64 `json:"x2,omitempty"`
	Y2    float64 `json:"y2,omitempty"`
	W     float64 `json:"w"`
	Color string  `json:"c"`
}

// Frame is everything drawn during one tick, in order.
type Frame struct {
	Seq    uint64 `json:"seq"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Fade   string `json:"fade,omitempty"`
	Ops    []Op   `json:"ops"`
}

// Recorder is a Surface that captures draw calls instead of rasterizing
// them, for replay on a browser canvas. Each Present hands the frame to the
// sink and starts a new one.
type Recorder struct {
	w, h  int
	seq   uint64
	frame Frame
	sink  func(Frame)
}

// NewRecorder returns a recorder of the given size. sink may be nil.
func NewRecorder(w, h int, sink func(Frame)) *Recorder {
	return &Recorder{w: w, h: h, sink: sink}
}

func (r *Recorder) Size() (int, int) { return r.w, r.h }

func (r *Recorder) Resize(w, h int) {
	r.w, r.h = w, h
}

func (r *Recorder) Fade(c color.NRGBA) {
	r.frame.Fade = cssColor(c)
}

func (r *Recorder) Line(a, b r2.Vec, width float64, c color.NRGBA) {
	r.frame.Ops = append(r.frame.Ops, Op{
		Kind:  OpLine,
		X:     round1(a.X),
		Y:     round1(a.Y),
		X2:    round1(b.X),
		Y2:    round1(b.Y),
		W:     round2(width),
		Color: cssColor(c),
	})
}

func (r *Recorder) Disc(center r2.Vec, radius float64, c color.NRGBA) {
	r.frame.Ops = append(r.frame.Ops, Op{
		Kind:  OpDisc,
		X:     round1(center.X),
		Y:     round1(center.Y),
		W:     round2(radius),
		Color: cssColor(c),
	})
}

// Present finishes the current frame.
func (r *Recorder) Present() {
	r.seq++
	f := r.frame
	f.Seq = r.seq
	f.Width, f.Height = r.w, r.h
	if f.Ops == nil {
		f.Ops = []Op{}
	}
	r.frame = Frame{Ops: make([]Op, 0, len(f.Ops))}
	if r.sink != nil {
		r.sink(f)
	}
}

func cssColor(c color.NRGBA) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.3g)", c.R, c.G, c.B, float64(c.A)/255)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
