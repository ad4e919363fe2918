package git

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/juparave/workbench/internal/annotate"
	"github.com/juparave/workbench/internal/domain"
)

// Record and field separators keep multi-line commit messages intact.
// historyFormat: hash|author|email|author date|committer date|body, then
// --name-only output after the group separator.
const (
	historyFormat    = "%x1e%H%x1f%an%x1f%ae%x1f%aI%x1f%cI%x1f%B%x1d"
	changeListFormat = "%H%x1f%an%x1f%ae%x1f%aI%x1f%B%x1d"
)

// ParseBlame parses `git blame --line-porcelain` output. Lines attributed to
// the same commit share one CommitInfo.
func ParseBlame(output []byte) ([]annotate.LineInfo, error) {
	commits := make(map[string]*annotate.CommitInfo)
	var lines []annotate.LineInfo

	var (
		current  *annotate.CommitInfo
		fresh    bool // current was created by this header
		origLine int
		lineNo   int
	)

	s := bufio.NewScanner(bytes.NewReader(output))
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for s.Scan() {
		line := s.Text()

		if strings.HasPrefix(line, "\t") {
			if current == nil {
				return nil, fmt.Errorf("blame content before header at line %d", lineNo)
			}
			lines = append(lines, annotate.NewLineInfo(current, lineNo, origLine))
			current = nil
			continue
		}

		if current == nil {
			fields := strings.Fields(line)
			if len(fields) < 3 {
				return nil, fmt.Errorf("malformed blame header %q", line)
			}
			var err error
			if origLine, err = strconv.Atoi(fields[1]); err != nil {
				return nil, fmt.Errorf("malformed blame header %q: %w", line, err)
			}
			if lineNo, err = strconv.Atoi(fields[2]); err != nil {
				return nil, fmt.Errorf("malformed blame header %q: %w", line, err)
			}

			hash := fields[0]
			if c, ok := commits[hash]; ok {
				current, fresh = c, false
			} else {
				current, fresh = &annotate.CommitInfo{Hash: hash}, true
				commits[hash] = current
			}
			continue
		}

		if !fresh {
			continue
		}

		key, value, _ := strings.Cut(line, " ")
		switch key {
		case "author":
			current.Author.Name = value
		case "author-mail":
			current.Author.Email = strings.Trim(value, "<>")
		case "author-time":
			current.AuthorDate = parseUnix(value)
		case "author-tz":
			current.AuthorDate = current.AuthorDate.In(parseZone(value))
		case "committer-time":
			current.CommitterDate = parseUnix(value)
		case "committer-tz":
			current.CommitterDate = current.CommitterDate.In(parseZone(value))
		case "summary":
			current.Subject = value
		case "previous":
			prevHash, prevPath, _ := strings.Cut(value, " ")
			current.PreviousHash = prevHash
			current.PreviousPath = prevPath
		case "filename":
			current.Path = value
		}
	}

	if err := s.Err(); err != nil {
		return nil, err
	}
	if current != nil {
		return nil, fmt.Errorf("blame output truncated after header of line %d", lineNo)
	}
	return lines, nil
}

func parseUnix(value string) time.Time {
	sec, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// parseZone converts a git "+hhmm" offset into a fixed zone
func parseZone(value string) *time.Location {
	if len(value) != 5 {
		return time.UTC
	}
	hours, err1 := strconv.Atoi(value[1:3])
	minutes, err2 := strconv.Atoi(value[3:5])
	if err1 != nil || err2 != nil {
		return time.UTC
	}
	offset := hours*3600 + minutes*60
	if value[0] == '-' {
		offset = -offset
	}
	return time.FixedZone(value, offset)
}

func (c *Client) parseHistory(output []byte) ([]domain.FileRevision, error) {
	var revisions []domain.FileRevision

	for _, record := range strings.Split(string(output), "\x1e") {
		if strings.TrimSpace(record) == "" {
			continue
		}

		head, tail, _ := strings.Cut(record, "\x1d")
		parts := strings.SplitN(head, "\x1f", 6)
		if len(parts) < 6 {
			continue
		}

		authored, err := time.Parse(time.RFC3339, parts[3])
		if err != nil {
			c.logger.Printf("Warning: failed to parse timestamp %s: %v", parts[3], err)
			continue
		}
		committed, err := time.Parse(time.RFC3339, parts[4])
		if err != nil {
			committed = authored
		}

		revisions = append(revisions, domain.FileRevision{
			Hash:      parts[0],
			Path:      lastPath(tail),
			Author:    domain.User{Name: parts[1], Email: parts[2]},
			Date:      authored,
			Committed: committed,
			Message:   strings.TrimRight(parts[5], "\n"),
		})
	}

	return revisions, nil
}

func lastPath(names string) string {
	var path string
	for _, line := range strings.Split(names, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			path = line
		}
	}
	return path
}

// ParseChangeList parses `git show --name-status` output produced with
// changeListFormat
func ParseChangeList(output []byte) (*domain.ChangeList, error) {
	head, tail, ok := strings.Cut(string(output), "\x1d")
	if !ok {
		return nil, fmt.Errorf("unexpected git show output")
	}
	parts := strings.SplitN(head, "\x1f", 5)
	if len(parts) < 5 {
		return nil, fmt.Errorf("unexpected git show header %q", head)
	}

	date, err := time.Parse(time.RFC3339, parts[3])
	if err != nil {
		return nil, fmt.Errorf("parsing commit date: %w", err)
	}

	cl := &domain.ChangeList{
		Hash:    strings.TrimSpace(parts[0]),
		Author:  domain.User{Name: parts[1], Email: parts[2]},
		Date:    date,
		Message: strings.TrimRight(parts[4], "\n"),
	}

	s := bufio.NewScanner(strings.NewReader(tail))
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}

		// Format: "M\tfile", "R086\told\tnew"
		fields := strings.Split(line, "\t")
		if len(fields) < 2 || fields[0] == "" {
			continue
		}

		change := domain.Change{Status: domain.ChangeStatus(fields[0][:1]), Path: fields[len(fields)-1]}
		if len(fields) >= 3 {
			change.OldPath = fields[1]
		}
		cl.Changes = append(cl.Changes, change)
	}

	return cl, s.Err()
}
