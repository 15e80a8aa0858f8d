package glrender

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/orbitext/gleval"
)

type setImage = interface {
	image.Image
	Set(x, y int, c color.Color)
}

// ImageRendererSDF2 rasterizes 2D SDFs such as text outlines.
type ImageRendererSDF2 struct {
	conv func(f float32) color.Color
	pos  []ms2.Vec
	dist []float32
}

// NewImageRendererSDF2 returns a renderer that evaluates at most evalBufferSize
// positions per call. A nil conversion paints the interior (negative distance)
// black and the exterior white.
func NewImageRendererSDF2(evalBufferSize int, conversion func(float32) color.Color) (*ImageRendererSDF2, error) {
	if evalBufferSize < 64 {
		return nil, errors.New("too small evaluation buffer size")
	}
	if conversion == nil {
		conversion = blackAndWhite
	}
	ir := &ImageRendererSDF2{
		conv: conversion,
		pos:  make([]ms2.Vec, evalBufferSize),
		dist: make([]float32, evalBufferSize),
	}
	return ir, nil
}

// Render stretches the bounds of sdf over img and paints every pixel from its
// pixel-centre distance. Image rows run top to bottom, so +Y in the SDF is up.
func (ir *ImageRendererSDF2) Render(sdf gleval.SDF2, img setImage, userData any) error {
	imgBB := img.Bounds()
	w, h := imgBB.Dx(), imgBB.Dy()
	if w == 0 || h == 0 {
		return errors.New("empty image")
	} else if len(ir.dist) < w {
		return fmt.Errorf("evaluation buffer (%d) shorter than image width (%d)", len(ir.dist), w)
	}
	bb := sdf.Bounds()
	sz := bb.Size()
	dx := sz.X / float32(w)
	dy := sz.Y / float32(h)
	for j := 0; j < h; j++ {
		y := bb.Max.Y - (float32(j)+0.5)*dy
		for i := 0; i < w; i++ {
			ir.pos[i] = ms2.Vec{X: bb.Min.X + (float32(i)+0.5)*dx, Y: y}
		}
		err := sdf.Evaluate(ir.pos[:w], ir.dist[:w], userData)
		if err != nil {
			return fmt.Errorf("row %d: %w", j, err)
		}
		for i, d := range ir.dist[:w] {
			img.Set(imgBB.Min.X+i, imgBB.Min.Y+j, ir.conv(d))
		}
	}
	return nil
}

var red = color.RGBA{R: 255, A: 255}

func blackAndWhite(d float32) color.Color {
	switch {
	case math32.IsNaN(d) || math32.IsInf(d, 0):
		return red
	case d > 0:
		return color.White
	default:
		return color.Black
	}
}
