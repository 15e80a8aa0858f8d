package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/soypat/orbitext/frame"
)

// headlessDisplay tracks a virtual framebuffer size and cannot go fullscreen.
type headlessDisplay struct {
	w, h int
}

func (d *headlessDisplay) Size() (int, int)          { return d.w, d.h }
func (d *headlessDisplay) Resize(w, h int)           { d.w, d.h = w, h }
func (d *headlessDisplay) Fullscreen() bool          { return false }
func (d *headlessDisplay) FullscreenSupported() bool { return false }
func (d *headlessDisplay) SetFullscreen(bool) error {
	return errors.New("headless display has no fullscreen")
}

// frameLimit stops a scheduler after a number of frames.
type frameLimit struct {
	frame.Scheduler
	left uint64
}

func (fl *frameLimit) NextFrame(ctx context.Context) error {
	if fl.left == 0 {
		return frame.ErrClosed
	}
	fl.left--
	return fl.Scheduler.NextFrame(ctx)
}

func limitFrames(s frame.Scheduler, frames uint64) frame.Scheduler {
	if frames == 0 {
		return s
	}
	return &frameLimit{Scheduler: s, left: frames}
}

func writeFile(name string, write func(w io.Writer) error) error {
	fp, err := os.Create(name)
	if err != nil {
		return err
	}
	err = write(fp)
	if err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}
