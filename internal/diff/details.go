package diff

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// ChangeType classifies an inner change within a line
type ChangeType int

const (
	Inserted ChangeType = iota
	Modified
	Deleted
)

func (t ChangeType) String() string {
	switch t {
	case Inserted:
		return "inserted"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// InnerChange is a character range of the line that the commit touched.
// Offsets are rune offsets into Details.Line; deletions have Start == End.
type InnerChange struct {
	Start int
	End   int
	Type  ChangeType
}

// Details describes how a commit modified a single line
type Details struct {
	Line    string
	Changes []InnerChange
}

// IsNewLine returns true if the whole line was introduced by the commit
func (d *Details) IsNewLine() bool {
	lineLen := len([]rune(d.Line))
	return len(d.Changes) == 1 && d.Changes[0].Type == Inserted &&
		d.Changes[0].Start == 0 && d.Changes[0].End == lineLen
}

// DetailsFor compares the content before and after a commit and reports
// what happened to the 0-based line afterLine of the after content.
// It returns nil when the line is out of range or was not changed.
// When hasBefore is false the file did not exist before the commit.
func DetailsFor(before string, hasBefore bool, after string, afterLine int) *Details {
	afterLines := SplitLines(after)
	if afterLine < 0 || afterLine >= len(afterLines) {
		return nil
	}
	line := afterLines[afterLine]

	if !hasBefore {
		return wholeLine(line)
	}

	beforeLines := SplitLines(before)
	for _, op := range generateOpCodes(beforeLines, afterLines) {
		if afterLine < op.J1 || afterLine >= op.J2 {
			continue
		}
		switch op.Tag {
		case 'e':
			return nil
		case 'i':
			return wholeLine(line)
		case 'r':
			return &Details{
				Line:    line,
				Changes: innerChanges(strings.Join(beforeLines[op.I1:op.I2], "\n"), line),
			}
		}
	}
	return nil
}

func wholeLine(line string) *Details {
	return &Details{
		Line:    line,
		Changes: []InnerChange{{Start: 0, End: len([]rune(line)), Type: Inserted}},
	}
}

// innerChanges runs a character level match between the replaced block and
// the line, keeping only ranges on the line side
func innerChanges(before, line string) []InnerChange {
	var changes []InnerChange
	for _, op := range generateOpCodes(runeStrings(before), runeStrings(line)) {
		switch op.Tag {
		case 'i':
			changes = append(changes, InnerChange{Start: op.J1, End: op.J2, Type: Inserted})
		case 'r':
			changes = append(changes, InnerChange{Start: op.J1, End: op.J2, Type: Modified})
		case 'd':
			changes = append(changes, InnerChange{Start: op.J1, End: op.J1, Type: Deleted})
		}
	}
	return changes
}

func generateOpCodes(a, b []string) []difflib.OpCode {
	return difflib.NewMatcher(a, b).GetOpCodes()
}

func runeStrings(s string) []string {
	runes := []rune(s)
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}

// SplitLines splits content into lines without their terminators. A trailing
// newline does not produce an empty last line.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}
