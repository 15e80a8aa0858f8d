package glrender

import (
	"image/color"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/glgl/math/ms3"
)

// ColorConversionInigoQuilez paints distance bands in the style of Inigo
// Quilez's 2D distance function articles: orange outside, blue inside and a
// white isoline at zero. A good characteristic distance is a third of the
// bounding box diagonal. NaN distances are red.
func ColorConversionInigoQuilez(characteristicDistance float32) func(float32) color.Color {
	inv := 1 / characteristicDistance
	outside := ms3.Vec{X: 0.9, Y: 0.6, Z: 0.3}
	inside := ms3.Vec{X: 0.65, Y: 0.85, Z: 1.0}
	white := ms3.Vec{X: 1, Y: 1, Z: 1}
	return func(d float32) color.Color {
		if math32.IsNaN(d) {
			return red
		}
		d *= inv
		c := inside
		if d > 0 {
			c = outside
		}
		ad := math32.Abs(d)
		c = ms3.Scale(1-math32.Exp(-6*ad), c)
		c = ms3.Scale(0.8+0.2*math32.Cos(150*d), c)
		edge := 1 - ms1.SmoothStep(0, 0.01, ad)
		c = ms3.InterpElem(c, white, ms3.Vec{X: edge, Y: edge, Z: edge})
		return rgba(c)
	}
}

// ColorConversionOutline paints the interior with fill over a transparent
// background, antialiasing the edge over width.
func ColorConversionOutline(width float32, fill color.RGBA) func(float32) color.Color {
	return func(d float32) color.Color {
		if math32.IsNaN(d) {
			return red
		}
		a := 1 - ms1.Clamp(d/width+0.5, 0, 1)
		if width <= 0 {
			a = 0
			if d <= 0 {
				a = 1
			}
		}
		// Premultiplied alpha.
		return color.RGBA{
			R: uint8(float32(fill.R) * a),
			G: uint8(float32(fill.G) * a),
			B: uint8(float32(fill.B) * a),
			A: uint8(float32(fill.A) * a),
		}
	}
}

func rgba(c ms3.Vec) color.RGBA {
	return color.RGBA{R: unorm8(c.X), G: unorm8(c.Y), B: unorm8(c.Z), A: 255}
}

func unorm8(v float32) uint8 {
	return uint8(ms1.Clamp(v, 0, 1) * 255)
}
