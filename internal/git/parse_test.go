package git

import (
	"bytes"
	"log"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/juparave/workbench/internal/domain"
	"github.com/stretchr/testify/require"
)

const shaA = "1111111111111111111111111111111111111111"
const shaB = "2222222222222222222222222222222222222222"

func porcelainEntry(sha string, orig, final int, extra ...string) string {
	lines := []string{
		sha + " " + strconv.Itoa(orig) + " " + strconv.Itoa(final) + " 1",
	}
	lines = append(lines, extra...)
	return strings.Join(lines, "\n") + "\n"
}

func commitHeader(name, mail, tz string, at int64, summary, filename string, previous string) []string {
	h := []string{
		"author " + name,
		"author-mail <" + mail + ">",
		"author-time " + strconv.FormatInt(at, 10),
		"author-tz " + tz,
		"committer " + name,
		"committer-mail <" + mail + ">",
		"committer-time " + strconv.FormatInt(at+60, 10),
		"committer-tz " + tz,
		"summary " + summary,
	}
	if previous != "" {
		h = append(h, "previous "+previous)
	}
	return append(h, "filename "+filename)
}

func TestParseBlame(t *testing.T) {
	headerA := commitHeader("Alice", "alice@example.com", "+0200", 1700000000, "Add handler", "web/handler.go", shaB+" web/old_handler.go")
	headerB := commitHeader("Bob", "bob@example.com", "-0500", 1600000000, "Initial import", "web/old_handler.go", "")

	var out strings.Builder
	out.WriteString(porcelainEntry(shaA, 1, 1, headerA...))
	out.WriteString("\tpackage web\n")
	out.WriteString(porcelainEntry(shaB, 3, 2, headerB...))
	out.WriteString("\t\n")
	out.WriteString(porcelainEntry(shaA, 2, 3, headerA...))
	out.WriteString("\tfunc Handle() {}\n")

	lines, err := ParseBlame([]byte(out.String()))
	require.NoError(t, err)
	require.Len(t, lines, 3)

	require.Same(t, lines[0].Commit(), lines[2].Commit())
	require.NotSame(t, lines[0].Commit(), lines[1].Commit())

	a := lines[0].Commit()
	require.Equal(t, shaA, a.Hash)
	require.Equal(t, domain.User{Name: "Alice", Email: "alice@example.com"}, a.Author)
	require.Equal(t, "Add handler", a.Subject)
	require.Equal(t, "web/handler.go", a.Path)
	require.Equal(t, shaB, a.PreviousHash)
	require.Equal(t, "web/old_handler.go", a.PreviousPath)
	require.True(t, a.AuthorDate.Equal(time.Unix(1700000000, 0)))
	require.True(t, a.CommitterDate.Equal(time.Unix(1700000060, 0)))
	_, offset := a.AuthorDate.Zone()
	require.Equal(t, 2*3600, offset)

	b := lines[1].Commit()
	require.Empty(t, b.PreviousHash)
	_, offset = b.CommitterDate.Zone()
	require.Equal(t, -5*3600, offset)

	require.Equal(t, 2, lines[1].LineNumber())
	require.Equal(t, 3, lines[1].OriginalLineNumber())
	require.Equal(t, 3, lines[2].LineNumber())
	require.Equal(t, 2, lines[2].OriginalLineNumber())
}

func TestParseBlameMalformed(t *testing.T) {
	_, err := ParseBlame([]byte("\tcontent without header\n"))
	require.Error(t, err)

	_, err = ParseBlame([]byte("deadbeef x 1\n"))
	require.Error(t, err)

	_, err = ParseBlame([]byte(porcelainEntry(shaA, 1, 1, "author Alice")))
	require.Error(t, err, "header without content line")

	lines, err := ParseBlame(nil)
	require.NoError(t, err)
	require.Empty(t, lines)
}

func TestParseHistory(t *testing.T) {
	out := "\x1e" + shaA + "\x1fAlice\x1falice@example.com\x1f2024-05-09T16:30:00+02:00\x1f2024-05-09T17:00:00+02:00\x1fRename handler\n\nMoves the file.\n\x1d\n\nweb/handler.go\n" +
		"\x1e" + shaB + "\x1fBob\x1fbob@example.com\x1f2023-01-02T03:04:05Z\x1fnot-a-date\x1fInitial import\n\x1d\n\nweb/old_handler.go\n"

	var logs bytes.Buffer
	c := NewClient(log.New(&logs, "", 0))
	revs, err := c.parseHistory([]byte(out))
	require.NoError(t, err)
	require.Len(t, revs, 2)

	require.Equal(t, shaA, revs[0].Hash)
	require.Equal(t, "web/handler.go", revs[0].Path)
	require.Equal(t, "Rename handler\n\nMoves the file.", revs[0].Message)
	require.Equal(t, "Rename handler", revs[0].Subject())
	require.Equal(t, "11111111", revs[0].ShortHash())

	require.Equal(t, "web/old_handler.go", revs[1].Path)
	require.True(t, revs[1].Committed.Equal(revs[1].Date), "bad committer date falls back to author date")
}

func TestParseChangeList(t *testing.T) {
	out := shaA + "\x1fAlice\x1falice@example.com\x1f2024-05-09T16:30:00+02:00\x1fRename handler\n\x1d\n\n" +
		"R086\tweb/old_handler.go\tweb/handler.go\n" +
		"M\tgo.mod\n" +
		"A\tweb/handler_test.go\n" +
		"D\tweb/legacy.go\n"

	cl, err := ParseChangeList([]byte(out))
	require.NoError(t, err)
	require.Equal(t, shaA, cl.Hash)
	require.Equal(t, "Rename handler", cl.Message)
	require.Equal(t, []domain.Change{
		{Status: domain.StatusRenamed, Path: "web/handler.go", OldPath: "web/old_handler.go"},
		{Status: domain.StatusModified, Path: "go.mod"},
		{Status: domain.StatusAdded, Path: "web/handler_test.go"},
		{Status: domain.StatusDeleted, Path: "web/legacy.go"},
	}, cl.Changes)
	require.True(t, cl.Touches("web/old_handler.go"))
	require.False(t, cl.Touches("README.md"))

	_, err = ParseChangeList([]byte("garbage"))
	require.Error(t, err)
}

func TestParseZone(t *testing.T) {
	_, off := time.Unix(0, 0).In(parseZone("+0530")).Zone()
	require.Equal(t, 5*3600+30*60, off)
	require.Equal(t, time.UTC, parseZone("bogus"))
}
