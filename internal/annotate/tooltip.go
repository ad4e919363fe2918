package annotate

import (
	"html"
	"strings"
)

// commitLinkScheme prefixes revision links in HTML tooltips
const commitLinkScheme = "git-commit:"

type tooltipBuilder struct {
	asHTML bool
	lines  []string
}

func newTooltipBuilder(asHTML bool) *tooltipBuilder {
	return &tooltipBuilder{asHTML: asHTML}
}

func (b *tooltipBuilder) appendRevisionLine(hash string) {
	if !b.asHTML {
		b.lines = append(b.lines, "Commit "+hash)
		return
	}
	escaped := html.EscapeString(hash)
	b.lines = append(b.lines, `Commit <a href="`+commitLinkScheme+escaped+`">`+escaped+`</a>`)
}

func (b *tooltipBuilder) appendLine(line string) {
	b.lines = append(b.lines, b.escape(line))
}

func (b *tooltipBuilder) appendCommitMessageBlock(message string) {
	message = strings.TrimRight(message, "\n")
	b.lines = append(b.lines, "")
	if b.asHTML {
		b.lines = append(b.lines, strings.ReplaceAll(b.escape(message), "\n", "<br/>"))
		return
	}
	b.lines = append(b.lines, message)
}

func (b *tooltipBuilder) escape(s string) string {
	if b.asHTML {
		return html.EscapeString(s)
	}
	return s
}

func (b *tooltipBuilder) String() string {
	if b.asHTML {
		return strings.Join(b.lines, "<br/>")
	}
	return strings.Join(b.lines, "\n")
}
