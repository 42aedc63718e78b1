package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/san-kum/sway/internal/physics"
	"github.com/san-kum/sway/internal/sim"
)

const (
	width       = 70
	height      = 16
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer redraws the rig on a plain terminal while a batch run is in
// progress. It is a sim.Observer and throttles itself to frameRate.
type LiveRenderer struct {
	name      string
	rig       *physics.Rig
	track     []string
	frameRate int
	lastFrame time.Time
	started   time.Time
	realtime  bool
	canvas    *canvas
	out       io.Writer
}

func NewLiveRenderer(name string, rig *physics.Rig, track []string, frameRate int) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &LiveRenderer{
		name:      name,
		rig:       rig,
		track:     track,
		frameRate: frameRate,
		canvas:    newCanvas(width, height),
		out:       os.Stdout,
	}
}

// SetOutput redirects rendering, mostly for tests.
func (r *LiveRenderer) SetOutput(w io.Writer) { r.out = w }

// SetRealtime makes OnFrame block until wall time catches up with the
// frame time, so a batch run plays back at its own speed.
func (r *LiveRenderer) SetRealtime(on bool) { r.realtime = on }

func (r *LiveRenderer) OnFrame(f sim.Frame, x sim.Sample) {
	if r.realtime {
		if r.started.IsZero() {
			r.started = time.Now()
		}
		if wait := time.Duration(f.Time*float64(time.Second)) - time.Since(r.started); wait > 0 {
			time.Sleep(wait)
		}
	}

	elapsed := time.Since(r.lastFrame)
	if elapsed < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	r.canvas.clear()
	r.canvas.drawRig(r.rig)
	r.render(f, x)
}

func (r *LiveRenderer) render(f sim.Frame, x sim.Sample) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  t=%.2fs  frame %d\n", r.name, f.Time, f.Index))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, row := range r.canvas.rows() {
		b.WriteString("  ")
		b.WriteString(row)
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for i, id := range r.track {
		if i >= len(x) {
			break
		}
		b.WriteString(fmt.Sprintf("  %-20s %8.3f\n", id, x[i]))
	}

	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
