package field

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r2"
)

// Surface is anything the field can be drawn on.
type Surface interface {
	// Size reports the current drawable extent in pixels.
	Size() (w, h int)
	// Resize changes the extent. Like a canvas, resizing may discard the
	// current contents.
	Resize(w, h int)
	// Fade overlays the whole frame with a translucent fill so earlier
	// frames linger as trails.
	Fade(c color.NRGBA)
	Line(a, b r2.Vec, width float64, c color.NRGBA)
	Disc(center r2.Vec, radius float64, c color.NRGBA)
}

// Presenter is implemented by surfaces that publish a finished frame.
type Presenter interface {
	Present()
}

// Style is the palette used by Draw. Alpha values in the colors are the
// maximum; Draw scales them by connection strength.
type Style struct {
	Trail    color.NRGBA
	Edge     color.NRGBA
	EdgeGlow color.NRGBA
	Core     color.NRGBA
	Halo     color.NRGBA
}

// DefaultStyle is the cyan and blue look of the site.
func DefaultStyle() Style {
	return Style{
		Trail:    color.NRGBA{R: 0, G: 0, B: 0, A: 13},
		Edge:     color.NRGBA{R: 59, G: 130, B: 246, A: 204},
		EdgeGlow: color.NRGBA{R: 6, G: 182, B: 212, A: 77},
		Core:     color.NRGBA{R: 6, G: 182, B: 212, A: 255},
		Halo:     color.NRGBA{R: 59, G: 130, B: 246, A: 64},
	}
}

const (
	baseNodeRadius = 3.0
	radiusPerLink  = 0.5
	haloScale      = 3.0
	edgeWidthScale = 2.0
	glowWidthScale = 6.0
)

// NodeRadius is the core radius of a node with the given degree.
func NodeRadius(degree int) float64 {
	return baseNodeRadius + float64(degree)*radiusPerLink
}

// Draw renders the last computed frame: fade, edges, then nodes with their
// halos underneath.
func (f *Field) Draw(s Surface, st Style) {
	s.Fade(st.Trail)

	r := f.cfg.ConnectionRadius
	for _, e := range f.edges {
		strength := 1 - e.Distance/r
		if strength <= 0 {
			continue
		}
		a, b := f.nodes[e.A].Pos, f.nodes[e.B].Pos
		s.Line(a, b, strength*edgeWidthScale, withAlpha(st.Edge, strength))
		if e.Distance < f.cfg.GlowRadius {
			s.Line(a, b, strength*glowWidthScale, withAlpha(st.EdgeGlow, strength))
		}
	}

	for _, n := range f.nodes {
		radius := NodeRadius(n.Degree())
		s.Disc(n.Pos, radius*haloScale, st.Halo)
		s.Disc(n.Pos, radius, st.Core)
	}
}

func withAlpha(c color.NRGBA, k float64) color.NRGBA {
	c.A = uint8(float64(c.A)*k + 0.5)
	return c
}
