package field

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/cockroachdb/errors"
	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r2"
)

// Raster is an in-memory RGBA surface. Shapes are anti-aliased by the
// x/image vector rasterizer.
type Raster struct {
	img *image.RGBA
	z   vector.Rasterizer
}

// NewRaster allocates a w x h raster cleared to opaque black.
func NewRaster(w, h int) *Raster {
	r := &Raster{}
	r.Resize(w, h)
	return r
}

func (r *Raster) Size() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize reallocates the pixel buffer. The previous contents are dropped.
func (r *Raster) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	r.img = image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
}

func (r *Raster) Fade(c color.NRGBA) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Over)
}

func (r *Raster) Line(a, b r2.Vec, width float64, c color.NRGBA) {
	d := r2.Sub(b, a)
	l := r2.Norm(d)
	if width <= 0 || l == 0 || r.empty() {
		return
	}
	n := r2.Scale(width/2/l, r2.Vec{X: -d.Y, Y: d.X})

	r.begin()
	r.moveTo(r2.Add(a, n))
	r.lineTo(r2.Add(b, n))
	r.lineTo(r2.Sub(b, n))
	r.lineTo(r2.Sub(a, n))
	r.fill(c)
}

func (r *Raster) Disc(center r2.Vec, radius float64, c color.NRGBA) {
	if radius <= 0 || r.empty() {
		return
	}
	segs := int(math.Min(64, math.Max(12, radius*4)))

	r.begin()
	for i := 0; i < segs; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segs)
		p := r2.Vec{X: center.X + radius*math.Cos(theta), Y: center.Y + radius*math.Sin(theta)}
		if i == 0 {
			r.moveTo(p)
		} else {
			r.lineTo(p)
		}
	}
	r.fill(c)
}

// Image exposes the backing image.
func (r *Raster) Image() *image.RGBA { return r.img }

// EncodePNG writes the current frame as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, r.img); err != nil {
		return errors.Wrap(err, "encode png")
	}
	return nil
}

func (r *Raster) empty() bool {
	w, h := r.Size()
	return w == 0 || h == 0
}

func (r *Raster) begin() {
	w, h := r.Size()
	r.z.Reset(w, h)
}

func (r *Raster) moveTo(p r2.Vec) { r.z.MoveTo(float32(p.X), float32(p.Y)) }
func (r *Raster) lineTo(p r2.Vec) { r.z.LineTo(float32(p.X), float32(p.Y)) }

func (r *Raster) fill(c color.NRGBA) {
	r.z.ClosePath()
	r.z.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{})
}
