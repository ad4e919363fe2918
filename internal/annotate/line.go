package annotate

import (
	"time"

	"github.com/juparave/workbench/internal/domain"
)

// CommitInfo holds the attribution of one commit. A single CommitInfo is
// shared by every line the commit last touched.
type CommitInfo struct {
	Hash          string
	Path          string // Repository-relative path in this commit
	PreviousHash  string // Empty when git reported no previous revision
	PreviousPath  string
	Author        domain.User
	AuthorDate    time.Time
	CommitterDate time.Time
	Subject       string
}

// FileRevision returns the file revision this commit produced
func (c *CommitInfo) FileRevision() *domain.FileRevision {
	return &domain.FileRevision{
		Hash:      c.Hash,
		Path:      c.Path,
		Author:    c.Author,
		Date:      c.AuthorDate,
		Committed: c.CommitterDate,
		Message:   c.Subject,
	}
}

// PreviousFileRevision returns the revision the line came from, or nil when
// git did not report one
func (c *CommitInfo) PreviousFileRevision() *domain.FileRevision {
	if c.PreviousHash == "" || c.PreviousPath == "" {
		return nil
	}
	return &domain.FileRevision{Hash: c.PreviousHash, Path: c.PreviousPath}
}

// LineInfo attributes one line of the annotated snapshot. Line numbers are
// 1-based, as git reports them.
type LineInfo struct {
	commit         *CommitInfo
	lineNumber     int
	originalNumber int
}

// NewLineInfo creates a LineInfo referencing a shared commit
func NewLineInfo(commit *CommitInfo, lineNumber, originalLineNumber int) LineInfo {
	return LineInfo{commit: commit, lineNumber: lineNumber, originalNumber: originalLineNumber}
}

func (l *LineInfo) LineNumber() int          { return l.lineNumber }
func (l *LineInfo) OriginalLineNumber() int  { return l.originalNumber }
func (l *LineInfo) Commit() *CommitInfo      { return l.commit }
func (l *LineInfo) Hash() string             { return l.commit.Hash }
func (l *LineInfo) Path() string             { return l.commit.Path }
func (l *LineInfo) Author() domain.User      { return l.commit.Author }
func (l *LineInfo) AuthorDate() time.Time    { return l.commit.AuthorDate }
func (l *LineInfo) CommitterDate() time.Time { return l.commit.CommitterDate }
func (l *LineInfo) Subject() string          { return l.commit.Subject }
