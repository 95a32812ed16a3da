package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Guliveer/devicescope/internal/models"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Performance prints the current and average metrics and a sparkline of each
// series in the window.
func (r *Renderer) Performance(samples []models.Sample, m models.Metrics) {
	label := r.r.NewStyle().Foreground(r.palette.TextSecondary)
	value := r.r.NewStyle().Bold(true).Foreground(r.palette.Primary)
	box := r.r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(r.palette.Border).
		Padding(0, 1)

	memory := lipgloss.JoinVertical(lipgloss.Left,
		label.Render("Memory"),
		value.Render(fmt.Sprintf("%g MB", m.CurrentMemory)),
		label.Render(fmt.Sprintf("Avg: %g MB", m.AvgMemory)),
	)
	fps := lipgloss.JoinVertical(lipgloss.Left,
		label.Render("FPS"),
		value.Render(fmt.Sprintf("%g", m.CurrentFPS)),
		label.Render(fmt.Sprintf("Avg: %g", m.AvgFPS)),
	)
	fmt.Fprintln(r.out, lipgloss.JoinHorizontal(lipgloss.Top, box.Render(memory), " ", box.Render(fps)))

	if len(samples) == 0 {
		fmt.Fprintln(r.out, label.Render("No samples yet"))
		return
	}
	mem := make([]float64, len(samples))
	rate := make([]float64, len(samples))
	for i, s := range samples {
		mem[i] = s.MemoryMB
		rate[i] = s.FPS
	}
	chart := r.r.NewStyle().Foreground(r.palette.Info)
	fmt.Fprintf(r.out, "%s %s\n", label.Render("Memory Usage (MB)"), chart.Render(Sparkline(mem)))
	fmt.Fprintf(r.out, "%s %s\n", label.Render("Frame Rate (FPS)  "), chart.Render(Sparkline(rate)))
}

// Sparkline maps values onto eight block heights between their minimum and
// maximum. A flat series renders at mid height.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	var b strings.Builder
	top := len(sparkBlocks) - 1
	for _, v := range values {
		idx := top / 2
		if hi > lo {
			idx = int(math.Round((v - lo) / (hi - lo) * float64(top)))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}
