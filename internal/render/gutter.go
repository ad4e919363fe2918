package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/juparave/workbench/internal/annotate"
	"github.com/juparave/workbench/internal/domain"
)

// notCommitted replaces the author of lines that only exist in the working tree
const notCommitted = "Not Committed Yet"

// authorWidth bounds the author column
const authorWidth = 18

// agePalette colors revisions from newest to oldest
var agePalette = []lipgloss.Color{
	lipgloss.Color("#A8E6A3"),
	lipgloss.Color("#7FC8A9"),
	lipgloss.Color("#6BA3BE"),
	lipgloss.Color("#6272A4"),
	lipgloss.Color("#586E75"),
	lipgloss.Color("#666666"),
}

// Options controls gutter formatting
type Options struct {
	DateLayout    string
	RelativeDates bool
	Now           func() time.Time
}

// Printer writes annotations and line details to a terminal
type Printer struct {
	w    io.Writer
	opts Options

	lineNumber lipgloss.Style
	header     lipgloss.Style
	uncommitted lipgloss.Style
	ages       []lipgloss.Style
	inserted   lipgloss.Style
	modified   lipgloss.Style
}

// NewPrinter creates a Printer writing to w. Colors are only emitted when w
// is a terminal that supports them.
func NewPrinter(w io.Writer, opts Options) *Printer {
	if opts.DateLayout == "" {
		opts.DateLayout = "2006-01-02"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	r := lipgloss.NewRenderer(w)
	p := &Printer{
		w:          w,
		opts:       opts,
		lineNumber: r.NewStyle().Foreground(lipgloss.Color("#666666")),
		header:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#5F5FAF")),
		uncommitted: r.NewStyle().Foreground(lipgloss.Color("#FF79C6")),
		inserted:   r.NewStyle().Foreground(lipgloss.Color("#50FA7B")),
		modified:   r.NewStyle().Foreground(lipgloss.Color("#F1FA8C")),
	}
	for _, c := range agePalette {
		p.ages = append(p.ages, r.NewStyle().Foreground(c))
	}
	return p
}

// Annotation prints content with a blame gutter. content is the annotated
// file text; annotated lines beyond it are printed with an empty body.
func (p *Printer) Annotation(a *annotate.FileAnnotation, content string) error {
	ages := p.ageIndex(a)
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	numberWidth := len(strconv.Itoa(a.LineCount()))

	for n := 0; n < a.LineCount(); n++ {
		info, _ := a.LineInfo(n)

		var text string
		if n < len(lines) {
			text = lines[n]
		}

		gutter := p.gutter(a, n, info)
		style := p.ages[min(ages[info.Hash()], len(p.ages)-1)]
		if domain.IsUncommitted(info.Hash()) {
			style = p.uncommitted
		}

		_, err := fmt.Fprintf(p.w, "%s %s %s\n",
			style.Render(gutter),
			p.lineNumber.Render(fmt.Sprintf("%*d", numberWidth, info.LineNumber())),
			text)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) gutter(a *annotate.FileAnnotation, n int, info *annotate.LineInfo) string {
	var revision string
	for _, aspect := range a.Aspects() {
		if aspect.ID == annotate.AspectRevision {
			revision = aspect.Value(n)
		}
	}

	author := info.Author().Name
	if domain.IsUncommitted(info.Hash()) {
		author = notCommitted
	}

	return fmt.Sprintf("%-*s %-*s %-*s",
		domain.ShortHashLength, revision,
		p.dateWidth(), p.formatDate(a.DateOf(n)),
		authorWidth, truncate(author, authorWidth))
}

func (p *Printer) formatDate(t time.Time) string {
	if p.opts.RelativeDates {
		return humanize.RelTime(t, p.opts.Now(), "ago", "from now")
	}
	return t.Format(p.opts.DateLayout)
}

func (p *Printer) dateWidth() int {
	if p.opts.RelativeDates {
		return len("11 months ago")
	}
	return len(p.opts.DateLayout)
}

// ageIndex maps each revision to its group position, newest first
func (p *Printer) ageIndex(a *annotate.FileAnnotation) map[string]int {
	index := make(map[string]int)
	for i, group := range a.RevisionsOrderedByDate() {
		for _, hash := range group {
			index[hash] = i
		}
	}
	return index
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
