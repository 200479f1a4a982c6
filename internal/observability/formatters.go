// Package observability provides formatted terminal output for CLI runs.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/claimhound/internal/analytics"
	"github.com/jonathan/claimhound/internal/pipeline"
	"github.com/jonathan/claimhound/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer renders run summaries and statistics as bordered boxes.
// Colour is only emitted when out is a terminal.
type Printer struct {
	out   io.Writer
	title lipgloss.Style
	box   lipgloss.Style
	warn  lipgloss.Style
	muted lipgloss.Style
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:   out,
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3")),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#8BC34A")).
			Padding(0, 1).
			Width(boxWidth),
		warn:  r.NewStyle().Foreground(lipgloss.Color("#e53935")),
		muted: r.NewStyle().Faint(true),
	}
}

// printBox prints a bordered box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for i, line := range lines {
		lines[i] = truncate(line, boxWidth-4)
	}
	body := p.title.Render(title) + "\n\n" + strings.Join(lines, "\n")
	fmt.Fprintln(p.out, p.box.Render(body))
}

// RunSummary is what the extract command reports when a run ends.
type RunSummary struct {
	Total     int
	Processed int
	Errors    int
	Duration  time.Duration
	Claims    []types.Claim
	Output    string
	RunID     string
}

// PrintRunSummary outputs the counters of a finished run and its top classes and locations.
func (p *Printer) PrintRunSummary(s RunSummary) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Posts:      %d/%d processed\n", s.Processed, s.Total))
	if s.Errors > 0 {
		sb.WriteString(p.warn.Render(fmt.Sprintf("Errors:     %d", s.Errors)) + "\n")
	} else {
		sb.WriteString("Errors:     0\n")
	}
	sb.WriteString(fmt.Sprintf("Claims:     %d\n", len(s.Claims)))
	sb.WriteString(fmt.Sprintf("Duration:   %s\n", s.Duration.Round(time.Millisecond)))
	if s.Output != "" {
		sb.WriteString(fmt.Sprintf("Output:     %s\n", s.Output))
	}
	if s.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run ID:     %s\n", s.RunID))
	}

	writeCounts(&sb, "Top classes", analytics.CountByCategory(s.Claims))
	writeCounts(&sb, "Top locations", analytics.CountByLocation(s.Claims))

	p.printBox("EXTRACTION SUMMARY", sb.String())
}

// PrintStats outputs review statistics and the class and location breakdown.
func (p *Printer) PrintStats(claims []types.Claim) {
	stats := analytics.ComputeStats(claims)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total:       %d\n", stats.Total))
	sb.WriteString(fmt.Sprintf("Validated:   %d\n", stats.Validated))
	sb.WriteString(fmt.Sprintf("Correct:     %d\n", stats.Correct))
	sb.WriteString(fmt.Sprintf("Incorrect:   %d\n", stats.Incorrect))
	sb.WriteString(fmt.Sprintf("Accuracy:    %.1f%%\n", stats.Accuracy))

	writeCounts(&sb, "Classes", analytics.CountByCategory(claims))
	writeCounts(&sb, "Locations", analytics.CountByLocation(claims))

	p.printBox("RUN STATISTICS", sb.String())
}

// PrintClaims outputs the first few claims with their alignment status.
func (p *Printer) PrintClaims(claims []types.Claim) {
	if len(claims) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(claims), maxItemsToShow)
	for i := 0; i < count; i++ {
		c := claims[i]
		sb.WriteString(fmt.Sprintf("• [%s] %s\n", c.Class, c.Text))
		status := string(c.AlignmentStatus)
		if c.AlignmentStatus == types.AlignmentUnmatched {
			status = p.warn.Render(status)
		}
		sb.WriteString(fmt.Sprintf("  %s", status))
		if c.Post.Author != "" {
			sb.WriteString(p.muted.Render(" · " + c.Post.Author))
		}
		sb.WriteString("\n")
	}
	if len(claims) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more claims", len(claims)-maxItemsToShow))
	}

	p.printBox("EXTRACTED CLAIMS", sb.String())
}

// PrintProgress writes one line per progress event.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(e pipeline.ProgressEvent) {
	switch e.Step {
	case pipeline.StepPostError:
		fmt.Fprintln(p.out, p.warn.Render(fmt.Sprintf("✗ post %s: %s", e.PostID, e.Message)))
	case pipeline.StepPost:
		fmt.Fprintf(p.out, "  %s\n", e.Message)
	default:
		fmt.Fprintln(p.out, p.title.Render(e.Message))
	}
}

func writeCounts(sb *strings.Builder, heading string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("\n%s:\n", heading))
	for _, c := range analytics.TopN(counts, maxItemsToShow) {
		sb.WriteString(fmt.Sprintf("  %-30s %d\n", truncate(c.Key, 30), c.Count))
	}
	if len(counts) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(counts)-maxItemsToShow))
	}
}

// truncate shortens s to n characters, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
