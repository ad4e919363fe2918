package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/juparave/workbench/internal/annotate"
	"github.com/juparave/workbench/internal/diff"
	"github.com/juparave/workbench/internal/domain"
)

// AuthorStat summarizes one author's share of an annotation
type AuthorStat struct {
	Name      string
	Lines     int
	Revisions int
}

// AuthorStats counts lines and revisions per author, most lines first
func AuthorStats(a *annotate.FileAnnotation) []AuthorStat {
	stats := make(map[string]*AuthorStat)
	get := func(name string) *AuthorStat {
		s, ok := stats[name]
		if !ok {
			s = &AuthorStat{Name: name}
			stats[name] = s
		}
		return s
	}

	for _, name := range a.AuthorsByRevision() {
		get(name).Revisions++
	}
	for n := 0; n < a.LineCount(); n++ {
		get(a.AuthorOf(n).Name).Lines++
	}

	result := make([]AuthorStat, 0, len(stats))
	for _, s := range stats {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Lines != result[j].Lines {
			return result[i].Lines > result[j].Lines
		}
		return result[i].Name < result[j].Name
	})
	return result
}

// Authors prints the per-author summary of an annotation
func (p *Printer) Authors(a *annotate.FileAnnotation) error {
	if _, err := fmt.Fprintln(p.w, p.header.Render(" Authors ")); err != nil {
		return err
	}
	for _, s := range AuthorStats(a) {
		if _, err := fmt.Fprintf(p.w, "%-*s %5d lines %4d revisions\n", authorWidth, truncate(s.Name, authorWidth), s.Lines, s.Revisions); err != nil {
			return err
		}
	}
	return nil
}

// Text prints a block of text followed by a newline
func (p *Printer) Text(text string) error {
	_, err := fmt.Fprintln(p.w, strings.TrimRight(text, "\n"))
	return err
}

// ChangeList prints the files of a commit, marking path
func (p *Printer) ChangeList(cl *domain.ChangeList, path string) error {
	var sb strings.Builder
	sb.WriteString(p.header.Render(" Commit "+domain.ShortHash(cl.Hash)+" ") + "\n")
	sb.WriteString(fmt.Sprintf("Author: %s\n", cl.Author))
	if !cl.Date.IsZero() {
		sb.WriteString(fmt.Sprintf("Date: %s\n", cl.Date.Format(annotate.DefaultDateLayout)))
	}
	if subject, _, _ := strings.Cut(cl.Message, "\n"); subject != "" {
		sb.WriteString("\n    " + strings.TrimSpace(subject) + "\n")
	}
	sb.WriteString("\n")

	for i := range cl.Changes {
		c := &cl.Changes[i]
		marker := " "
		if c.Path == path || c.OldPath == path {
			marker = "*"
		}
		if c.OldPath != "" && c.OldPath != c.Path {
			sb.WriteString(fmt.Sprintf("%s %s %s -> %s\n", marker, c.Status, c.OldPath, c.Path))
			continue
		}
		sb.WriteString(fmt.Sprintf("%s %s %s\n", marker, c.Status, c.Path))
	}

	_, err := fmt.Fprint(p.w, sb.String())
	return err
}

// Details prints a line with the changed ranges underlined: '+' for
// inserted, '~' for modified and '^' at deletion points
func (p *Printer) Details(d *diff.Details) error {
	if d == nil {
		return p.Text("line was not changed by its revision")
	}

	line := []rune(d.Line)
	marks := []rune(strings.Repeat(" ", len(line)+1))
	for _, c := range d.Changes {
		switch c.Type {
		case diff.Inserted:
			fill(marks, c.Start, c.End, '+')
		case diff.Modified:
			fill(marks, c.Start, c.End, '~')
		case diff.Deleted:
			fill(marks, c.Start, c.Start+1, '^')
		}
	}

	var highlighted strings.Builder
	for i, r := range line {
		switch marks[i] {
		case '+':
			highlighted.WriteString(p.inserted.Render(string(r)))
		case '~':
			highlighted.WriteString(p.modified.Render(string(r)))
		default:
			highlighted.WriteRune(r)
		}
	}

	_, err := fmt.Fprintf(p.w, "%s\n%s\n", highlighted.String(), strings.TrimRight(string(marks), " "))
	return err
}

func fill(marks []rune, start, end int, mark rune) {
	for i := max(start, 0); i < end && i < len(marks); i++ {
		marks[i] = mark
	}
}
