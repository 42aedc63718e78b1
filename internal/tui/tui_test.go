package tui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/sway/internal/config"
	"github.com/san-kum/sway/internal/experiment"
	"github.com/san-kum/sway/internal/physics"
	"github.com/san-kum/sway/internal/rigs"
	"github.com/san-kum/sway/internal/sim"
)

func TestSparkline(t *testing.T) {
	tests := []struct {
		name  string
		data  []float64
		width int
		want  string
	}{
		{"empty", nil, 10, ""},
		{"flat", []float64{2, 2, 2}, 10, "▁▁▁"},
		{"rising", []float64{0, 3.5, 7}, 8, "▁▄█"},
		{"downsampled", []float64{0, 0, 7, 7}, 2, "▁█"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sparkline(tt.data, tt.width); got != tt.want {
				t.Errorf("sparkline(%v, %d) = %q, want %q", tt.data, tt.width, got, tt.want)
			}
		})
	}
}

func TestGauge(t *testing.T) {
	tests := []struct {
		value, lo, hi float64
		left, right   int
	}{
		{0, -1, 1, 5, 5},
		{-1, -1, 1, 0, 10},
		{1, -1, 1, 10, 0},
		{5, -1, 1, 10, 0},
		{0, 1, 1, 5, 5},
	}
	for _, tt := range tests {
		left, right := gauge(tt.value, tt.lo, tt.hi, 11)
		if left != tt.left || right != tt.right {
			t.Errorf("gauge(%v, %v, %v) = %d,%d want %d,%d", tt.value, tt.lo, tt.hi, left, right, tt.left, tt.right)
		}
	}
}

func TestCanvasLine(t *testing.T) {
	c := newCanvas(5, 5)
	c.line(0, 0, 4, 4, '#')
	for i := 0; i < 5; i++ {
		if c.at(i, i) != '#' {
			t.Errorf("expected diagonal cell %d set", i)
		}
	}
	c.set(10, 10, '#')
	if c.at(10, 10) != 0 {
		t.Error("out of bounds cells should be ignored")
	}
}

func TestDrawRigHangsDown(t *testing.T) {
	data, err := rigs.Get("pendulum")
	if err != nil {
		t.Fatal(err)
	}
	eng, err := physics.New(data)
	if err != nil {
		t.Fatal(err)
	}

	c := newCanvas(20, 10)
	c.drawRig(eng.Rig())

	if c.at(10, 0) != '+' {
		t.Errorf("expected anchor at the top center, got %q", c.at(10, 0))
	}
	if c.at(10, 8) != 'O' {
		t.Errorf("expected the chain tip straight below the anchor, rows:\n%s", strings.Join(c.rows(), "\n"))
	}
}

func pendulumBuilder(t *testing.T) Builder {
	t.Helper()
	return func(preset string) (*experiment.Experiment, error) {
		cfg := config.GetPreset("pendulum", preset)
		if cfg == nil {
			return nil, errors.New("unknown preset " + preset)
		}
		cfg.Duration = 0.1
		return experiment.New(cfg, experiment.NewRegistry(), nil)
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInteractiveApp(t *testing.T) {
	app := NewInteractiveApp("builtin:pendulum", config.ListPresets("pendulum"), pendulumBuilder(t))

	var m tea.Model = *app
	if !strings.Contains(m.View(), "release") {
		t.Fatalf("menu should list presets:\n%s", m.View())
	}

	m, _ = m.Update(key("down"))
	m, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatal("starting a preset should schedule a tick")
	}
	got := m.(appModel)
	if got.state != stateSim || got.selected != "swing" {
		t.Fatalf("expected swing running, got state %d preset %q", got.state, got.selected)
	}

	for i := 0; i < 3; i++ {
		m, _ = m.Update(tickMsg(time.Now()))
	}
	got = m.(appModel)
	if got.frame != 3 {
		t.Errorf("expected 3 frames, got %d", got.frame)
	}
	if len(got.history[0]) != 4 {
		t.Errorf("expected initial sample plus 3 frames, got %d", len(got.history[0]))
	}

	view := m.View()
	for _, want := range []string{"swing", "ParamAngleZ", "ParamSwing"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, _ = m.Update(key(" "))
	m, _ = m.Update(tickMsg(time.Now()))
	if f := m.(appModel).frame; f != 3 {
		t.Errorf("paused app advanced to frame %d", f)
	}

	m, _ = m.Update(key(" "))
	for i := 0; i < 20; i++ {
		m, _ = m.Update(tickMsg(time.Now()))
	}
	got = m.(appModel)
	if got.frame != got.cfg.Frames() || !got.paused {
		t.Errorf("expected the run to stop at frame %d, got %d paused=%v", got.cfg.Frames(), got.frame, got.paused)
	}

	m, _ = m.Update(key("q"))
	if m.(appModel).state != stateMenu {
		t.Error("q should return to the menu")
	}
}

func TestInteractiveAppBuildError(t *testing.T) {
	app := NewInteractiveApp("builtin:pendulum", []string{"missing"}, pendulumBuilder(t))
	m, _ := tea.Model(*app).Update(key("enter"))
	if m.(appModel).state != stateMenu {
		t.Error("failed build should stay on the menu")
	}
	if !strings.Contains(m.View(), "unknown preset missing") {
		t.Errorf("menu should show the error:\n%s", m.View())
	}
}

func TestLiveRenderer(t *testing.T) {
	data, err := rigs.Get("hair")
	if err != nil {
		t.Fatal(err)
	}
	eng, err := physics.New(data)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	r := NewLiveRenderer("hair", eng.Rig(), []string{"ParamHairFront"}, 1000)
	r.SetOutput(&buf)
	r.OnFrame(sim.Frame{Index: 7, Time: 0.25}, sim.Sample{0.5})

	out := buf.String()
	if !strings.HasPrefix(out, clearScreen) {
		t.Error("expected the frame to clear the screen first")
	}
	if !strings.Contains(out, "frame 7") || !strings.Contains(out, "ParamHairFront") {
		t.Errorf("unexpected frame:\n%s", out)
	}
}

func TestLiveRendererThrottles(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer("empty", nil, nil, 1)
	r.SetOutput(&buf)

	r.OnFrame(sim.Frame{Index: 1}, nil)
	first := buf.Len()
	if first == 0 {
		t.Fatal("expected the first frame to render")
	}
	r.OnFrame(sim.Frame{Index: 2}, nil)
	if buf.Len() != first {
		t.Error("second frame inside the interval should be skipped")
	}
}
