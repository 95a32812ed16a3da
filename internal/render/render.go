// Package render formats snapshots, filter results and performance windows
// for the terminal using lipgloss. Colors come from the active theme
// palette; on writers that are not terminals the output is plain text.
package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/Guliveer/devicescope/internal/category"
	"github.com/Guliveer/devicescope/internal/models"
	"github.com/Guliveer/devicescope/internal/theme"
)

// Renderer writes styled blocks to an output.
type Renderer struct {
	out     io.Writer
	r       *lipgloss.Renderer
	palette theme.Palette
}

// New creates a renderer for w using palette.
func New(w io.Writer, palette theme.Palette) *Renderer {
	return &Renderer{out: w, r: lipgloss.NewRenderer(w), palette: palette}
}

// Status prints the live-mode indicator and the snapshot timestamp.
func (r *Renderer) Status(snap *models.Snapshot, live bool) {
	dot := r.r.NewStyle().Foreground(r.palette.TextSecondary)
	label := "Static view"
	if live {
		dot = dot.Foreground(r.palette.Success)
		label = "Real-time monitoring active"
	}
	faint := r.r.NewStyle().Foreground(r.palette.TextSecondary)
	updated, _ := snap.Get(models.LastUpdatedKey)
	fmt.Fprintf(r.out, "%s %s  %s\n", dot.Render("●"), faint.Render(label),
		faint.Render("Last updated: "+updated.String()))
}

// Summary prints the result count for a non-empty search.
func (r *Renderer) Summary(text string, count int) {
	if text == "" {
		return
	}
	style := r.r.NewStyle().Foreground(r.palette.TextSecondary)
	fmt.Fprintln(r.out, style.Render(fmt.Sprintf("Found %d results for “%s”", count, text)))
}

// Results prints every matched category as a titled key/value table.
// Occurrences of highlight in keys and values are emphasised.
func (r *Renderer) Results(snap *models.Snapshot, matches []category.Match, highlight string) {
	if len(matches) == 0 {
		r.NoResults(highlight)
		return
	}
	for i, m := range matches {
		if i > 0 {
			fmt.Fprintln(r.out)
		}
		r.section(snap, m, highlight)
	}
}

// NoResults prints the empty-result message.
func (r *Renderer) NoResults(text string) {
	title := r.r.NewStyle().Bold(true).Foreground(r.palette.Text)
	faint := r.r.NewStyle().Foreground(r.palette.TextSecondary)
	fmt.Fprintln(r.out, title.Render("No results found"))
	if text != "" {
		fmt.Fprintln(r.out, faint.Render(fmt.Sprintf("No device information matches “%s”. Try a different search term.", text)))
	}
}

func (r *Renderer) section(snap *models.Snapshot, m category.Match, highlight string) {
	header := r.r.NewStyle().Bold(true).Foreground(lipgloss.Color(m.Category.Color))
	badge := r.r.NewStyle().Foreground(r.palette.TextSecondary)
	fmt.Fprintf(r.out, "%s %s\n", header.Render(m.Category.Icon+" "+m.Category.Name),
		badge.Render(fmt.Sprintf("(%d items)", len(m.Keys))))

	width := 0
	for _, k := range m.Keys {
		width = max(width, lipgloss.Width(k))
	}
	keyStyle := r.r.NewStyle().Foreground(r.palette.TextSecondary).Width(width + 2)
	valueStyle := r.r.NewStyle().Foreground(r.palette.Text)
	for _, k := range m.Keys {
		v, _ := snap.Get(k)
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			keyStyle.Render(r.highlight(k, highlight, keyStyle)),
			r.highlight(v.String(), highlight, valueStyle),
		)
		fmt.Fprintln(r.out, "  "+row)
	}
}

// highlight renders s with base, marking case-insensitive occurrences of
// needle with the warning color.
func (r *Renderer) highlight(s, needle string, base lipgloss.Style) string {
	spans := matchSpans(s, needle)
	if len(spans) == 0 {
		return base.UnsetWidth().Render(s)
	}
	mark := base.UnsetWidth().Bold(true).Foreground(r.palette.Warning)
	plain := base.UnsetWidth()
	var b strings.Builder
	last := 0
	for _, sp := range spans {
		if sp[0] > last {
			b.WriteString(plain.Render(s[last:sp[0]]))
		}
		b.WriteString(mark.Render(s[sp[0]:sp[1]]))
		last = sp[1]
	}
	if last < len(s) {
		b.WriteString(plain.Render(s[last:]))
	}
	return b.String()
}

// matchSpans returns the byte ranges of non-overlapping case-insensitive
// occurrences of needle in s, comparing rune windows of the needle's length.
func matchSpans(s, needle string) [][2]int {
	n := utf8.RuneCountInString(needle)
	if n == 0 {
		return nil
	}
	var spans [][2]int
	for i := 0; i < len(s); {
		end := i
		for k := 0; k < n && end < len(s); k++ {
			_, size := utf8.DecodeRuneInString(s[end:])
			end += size
		}
		if utf8.RuneCountInString(s[i:end]) == n && strings.EqualFold(s[i:end], needle) {
			spans = append(spans, [2]int{i, end})
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return spans
}
