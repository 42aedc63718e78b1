package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/sway/internal/physics"
	"github.com/san-kum/sway/internal/storage"
)

var palette = []string{"#00d7af", "#ffd700", "#ff87ff", "#5fafff", "#87ff5f", "#ff5f5f"}

func header(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))
}

// TraceToSVG plots every column of a trace against time, one colored path
// per column sharing a y scale padded by 10%.
func TraceToSVG(trace *storage.Trace, width, height int) string {
	if trace == nil || len(trace.Times) < 2 {
		return ""
	}

	minT, maxT := trace.Times[0], trace.Times[len(trace.Times)-1]
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, row := range trace.Samples {
		for _, v := range row {
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
	}

	rangeT := maxT - minT
	rangeY := maxY - minY
	if rangeT == 0 {
		rangeT = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder
	header(&sb, width, height)

	for c, name := range trace.Columns {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" data-column="%s" d="M`,
			palette[c%len(palette)], name))
		for i, t := range trace.Times {
			if i >= len(trace.Samples) || c >= len(trace.Samples[i]) {
				break
			}
			x := (t - minT) / rangeT * float64(width)
			y := float64(height) - (trace.Samples[i][c]-minY)/rangeY*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
		sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16+14*c, palette[c%len(palette)], name))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// RigToSVG draws each sub-rig chain in its current pose, side by side,
// with a dot per particle.
func RigToSVG(rig *physics.Rig, size int) string {
	if rig == nil || rig.SubRigCount == 0 {
		return ""
	}

	width := size * rig.SubRigCount
	var sb strings.Builder
	header(&sb, width, size)

	for i := 0; i < rig.SubRigCount; i++ {
		chain := rig.Chain(i)
		length := 0.0
		for _, p := range chain[1:] {
			length += p.Radius
		}
		scale := 1.0
		if length > 0 {
			scale = float64(size) * 0.8 / length
		}
		ax := float64(i*size) + float64(size)/2
		ay := float64(size) * 0.1
		color := palette[i%len(palette)]

		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="2" d="M`, color))
		for j, p := range chain {
			x := ax + p.Position.X*scale
			y := ay + p.Position.Y*scale
			if j == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")

		dotRadius := math.Max(2, float64(size)*0.015)
		for _, p := range chain {
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, ax+p.Position.X*scale, ay+p.Position.Y*scale, dotRadius, color))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}
