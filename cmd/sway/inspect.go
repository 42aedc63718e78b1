package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/sway/internal/physics"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

func field(label string, value any) string {
	return labelStyle.Render(fmt.Sprintf("%-14s", label)) + valueStyle.Render(fmt.Sprint(value))
}

func reflectMark(r bool) string {
	if r {
		return " reflect"
	}
	return ""
}

// renderRig draws one box per sub-rig under a header with the rig-wide
// settings.
func renderRig(source string, eng *physics.Engine) string {
	rig := eng.Rig()
	names := eng.SubRigNames()
	opts := eng.Options()

	var b strings.Builder
	b.WriteString(titleStyle.Render(source) + "\n")
	b.WriteString(field("sub-rigs", rig.SubRigCount) + "\n")
	b.WriteString(field("inputs", len(rig.Inputs)) + "\n")
	b.WriteString(field("outputs", len(rig.Outputs)) + "\n")
	b.WriteString(field("particles", len(rig.Particles)) + "\n")
	b.WriteString(field("fps", rig.Fps) + "\n")
	b.WriteString(field("gravity", fmt.Sprintf("(%.2f, %.2f)", opts.Gravity.X, opts.Gravity.Y)) + "\n")
	b.WriteString(field("wind", fmt.Sprintf("(%.2f, %.2f)", opts.Wind.X, opts.Wind.Y)) + "\n\n")

	for i := range rig.Settings {
		s := &rig.Settings[i]

		var body strings.Builder
		name := names[i]
		if name == "" {
			name = fmt.Sprintf("sub-rig %d", i)
		}
		body.WriteString(titleStyle.Render(name) + "\n")

		for _, in := range rig.Inputs[s.BaseInputIndex : s.BaseInputIndex+s.InputCount] {
			body.WriteString(field("in", fmt.Sprintf("%s %s w=%.0f%s", in.Source.ID, in.Type, in.Weight, reflectMark(in.Reflect))) + "\n")
		}
		for _, out := range rig.Outputs[s.BaseOutputIndex : s.BaseOutputIndex+s.OutputCount] {
			body.WriteString(field("out", fmt.Sprintf("%s %s v=%d scale=%.3f w=%.0f%s",
				out.Destination.ID, out.Type, out.VertexIndex, out.AngleScale, out.Weight, reflectMark(out.Reflect))) + "\n")
		}

		length := 0.0
		for _, p := range rig.Chain(i)[1:] {
			length += p.Radius
		}
		body.WriteString(field("chain", fmt.Sprintf("%d particles, length %.1f", s.ParticleCount, length)) + "\n")
		body.WriteString(field("position", fmt.Sprintf("[%.1f, %.1f] default %.1f",
			s.NormalizationPosition.Minimum, s.NormalizationPosition.Maximum, s.NormalizationPosition.Default)) + "\n")
		body.WriteString(field("angle", fmt.Sprintf("[%.1f, %.1f] default %.1f",
			s.NormalizationAngle.Minimum, s.NormalizationAngle.Maximum, s.NormalizationAngle.Default)))

		b.WriteString(boxStyle.Render(body.String()) + "\n")
	}

	return b.String()
}
