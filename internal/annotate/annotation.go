package annotate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/juparave/workbench/internal/diff"
	"github.com/juparave/workbench/internal/domain"
)

// ErrLineOutOfBounds is returned by explicit, user-triggered lookups for a
// line outside the annotation. Passive accessors never return it.
var ErrLineOutOfBounds = errors.New("annotated line out of bounds")

// ErrContentNotFound is returned by a ContentLoader when the file does not
// exist at the requested revision
var ErrContentNotFound = errors.New("content not found at revision")

// DefaultDateLayout is used for tooltip and date column formatting
const DefaultDateLayout = "2006-01-02 15:04"

// ContentLoader fetches file content at a revision
type ContentLoader interface {
	Content(ctx context.Context, root, hash, path string) (string, error)
}

// RootResolver finds the repository root containing a path
type RootResolver interface {
	RootFor(path string) (string, error)
}

// ChangeListLoader loads the change set of a commit
type ChangeListLoader interface {
	CommittedChangeList(ctx context.Context, root, hash string) (*domain.ChangeList, error)
}

// Providers bundles the collaborators used by explicit lookups
type Providers struct {
	Content ContentLoader
	Roots   RootResolver
	Changes ChangeListLoader
}

// Options configures a FileAnnotation
type Options struct {
	File             string // Path of the annotated file on disk
	Path             string // Repository-relative path of the annotated file
	BaseRevision     string // Revision that was annotated; empty for the working tree
	PreferCommitDate bool
	DateLayout       string
	Providers        Providers
}

// FileAnnotation is the blame of one file snapshot. The line sequence is
// fixed at construction; re-annotating produces a new FileAnnotation.
//
// SetRevisions and SetCommitMessage are expected to run before concurrent
// readers start. Everything else is safe for concurrent reads.
type FileAnnotation struct {
	opts  Options
	lines []LineInfo

	revisions     []domain.FileRevision
	revisionIndex map[string]int
	messages      map[string]string

	authorsOnce sync.Once
	authors     map[string]string

	orderOnce sync.Once
	ordered   [][]string
}

// New creates an annotation over lines. lines[i] describes line i+1.
func New(lines []LineInfo, opts Options) *FileAnnotation {
	if opts.DateLayout == "" {
		opts.DateLayout = DefaultDateLayout
	}
	return &FileAnnotation{
		opts:     opts,
		lines:    lines,
		messages: make(map[string]string),
	}
}

// File returns the annotated file path on disk
func (a *FileAnnotation) File() string { return a.opts.File }

// Path returns the repository-relative path of the annotated file
func (a *FileAnnotation) Path() string { return a.opts.Path }

// BaseRevision returns the annotated revision, empty for the working tree
func (a *FileAnnotation) BaseRevision() string { return a.opts.BaseRevision }

// SetRevisions attaches the file history, newest first, and builds the
// revision index used by previous-revision and message lookups
func (a *FileAnnotation) SetRevisions(revisions []domain.FileRevision) {
	index := make(map[string]int, len(revisions))
	for i, r := range revisions {
		if _, ok := index[r.Hash]; !ok {
			index[r.Hash] = i
		}
	}
	a.revisions = revisions
	a.revisionIndex = index
}

// Revisions returns the attached history, or nil before SetRevisions
func (a *FileAnnotation) Revisions() []domain.FileRevision {
	return a.revisions
}

// SetCommitMessage caches the full message of a revision
func (a *FileAnnotation) SetCommitMessage(hash, message string) {
	a.messages[hash] = message
}

// LineCount returns the number of annotated lines
func (a *FileAnnotation) LineCount() int {
	return len(a.lines)
}

// Lines returns the annotated lines
func (a *FileAnnotation) Lines() []LineInfo {
	return a.lines
}

// LineInfo returns the attribution of 0-based line n
func (a *FileAnnotation) LineInfo(n int) (*LineInfo, bool) {
	if a.outOfBounds(n) {
		return nil, false
	}
	return &a.lines[n], true
}

func (a *FileAnnotation) outOfBounds(n int) bool {
	return n < 0 || n >= len(a.lines)
}

// AuthorOf returns the author of line n, or the zero User
func (a *FileAnnotation) AuthorOf(n int) domain.User {
	info, ok := a.LineInfo(n)
	if !ok {
		return domain.User{}
	}
	return info.Author()
}

// DateOf returns the date shown for line n, or the zero time
func (a *FileAnnotation) DateOf(n int) time.Time {
	info, ok := a.LineInfo(n)
	if !ok {
		return time.Time{}
	}
	return a.dateOf(info)
}

func (a *FileAnnotation) dateOf(info *LineInfo) time.Time {
	if a.opts.PreferCommitDate {
		return info.CommitterDate()
	}
	return info.AuthorDate()
}

// RevisionOf returns the revision that last touched line n
func (a *FileAnnotation) RevisionOf(n int) (string, bool) {
	info, ok := a.LineInfo(n)
	if !ok {
		return "", false
	}
	return info.Hash(), true
}

// CommitMessage returns the full message of a revision if known, preferring
// the attached history over the message cache
func (a *FileAnnotation) CommitMessage(hash string) (string, bool) {
	if a.revisions != nil && a.revisionIndex != nil {
		if i, ok := a.revisionIndex[hash]; ok {
			return a.revisions[i].Message, true
		}
	}
	msg, ok := a.messages[hash]
	return msg, ok
}

// ToolTip describes line n as plain text or HTML
func (a *FileAnnotation) ToolTip(n int, asHTML bool) (string, bool) {
	info, ok := a.LineInfo(n)
	if !ok {
		return "", false
	}

	tb := newTooltipBuilder(asHTML)
	tb.appendRevisionLine(info.Hash())
	tb.appendLine("Author: " + info.Author().String())
	tb.appendLine("Date: " + a.dateOf(info).Format(a.opts.DateLayout))

	if info.Path() != a.opts.Path {
		tb.appendLine("Path: " + info.Path())
	}

	message, ok := a.CommitMessage(info.Hash())
	if !ok {
		message = info.Subject() + "\n..."
	}
	tb.appendCommitMessageBlock(message)

	return tb.String(), true
}

// CurrentRevisionFor returns the file revision line n belongs to
func (a *FileAnnotation) CurrentRevisionFor(n int) (*domain.FileRevision, bool) {
	info, ok := a.LineInfo(n)
	if !ok {
		return nil, false
	}
	return info.Commit().FileRevision(), true
}

// PreviousRevisionFor returns the revision before the one that touched line
// n. An explicit previous revision from blame wins; otherwise the next older
// entry of the attached history is used.
func (a *FileAnnotation) PreviousRevisionFor(n int) (*domain.FileRevision, bool) {
	info, ok := a.LineInfo(n)
	if !ok {
		return nil, false
	}

	if prev := info.Commit().PreviousFileRevision(); prev != nil {
		return prev, true
	}

	if a.revisions != nil && a.revisionIndex != nil {
		if i, ok := a.revisionIndex[info.Hash()]; ok && i+1 < len(a.revisions) {
			rev := a.revisions[i+1]
			return &rev, true
		}
	}
	return nil, false
}

// LastRevision returns the annotated revision, or the newest revision of the
// attached history when the working tree was annotated
func (a *FileAnnotation) LastRevision() (*domain.FileRevision, bool) {
	if a.opts.BaseRevision != "" {
		return &domain.FileRevision{Hash: a.opts.BaseRevision, Path: a.opts.Path}, true
	}
	if len(a.revisions) > 0 {
		rev := a.revisions[0]
		return &rev, true
	}
	return nil, false
}

// IsBaseRevisionChanged reports whether current differs from the annotated
// revision. It is always false for working tree annotations.
func (a *FileAnnotation) IsBaseRevisionChanged(current string) bool {
	return a.opts.BaseRevision != "" && a.opts.BaseRevision != current
}

// AuthorsByRevision maps each revision to the name of the author of its
// first annotated line
func (a *FileAnnotation) AuthorsByRevision() map[string]string {
	a.authorsOnce.Do(func() {
		a.authors = make(map[string]string)
		for i := range a.lines {
			info := &a.lines[i]
			if _, ok := a.authors[info.Hash()]; !ok {
				a.authors[info.Hash()] = info.Author().Name
			}
		}
	})
	return a.authors
}

// RevisionsOrderedByDate groups revisions by committer date, newest group
// first. Revisions committed at the same instant share a group.
func (a *FileAnnotation) RevisionsOrderedByDate() [][]string {
	a.orderOnce.Do(func() {
		groups := make(map[int64][]string)
		seen := make(map[string]bool)
		for i := range a.lines {
			info := &a.lines[i]
			if seen[info.Hash()] {
				continue
			}
			seen[info.Hash()] = true
			key := info.CommitterDate().UnixNano()
			groups[key] = append(groups[key], info.Hash())
		}

		dates := make([]int64, 0, len(groups))
		for d := range groups {
			dates = append(dates, d)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i] > dates[j] })

		a.ordered = make([][]string, 0, len(dates))
		for _, d := range dates {
			a.ordered = append(a.ordered, groups[d])
		}
	})
	return a.ordered
}

// ChangesIn loads the change list of the commit that touched line n and
// returns it along with the line's path in that commit
func (a *FileAnnotation) ChangesIn(ctx context.Context, n int) (*domain.ChangeList, string, error) {
	info, ok := a.LineInfo(n)
	if !ok {
		return nil, "", a.boundsError(n)
	}
	if a.opts.Providers.Changes == nil {
		return nil, "", fmt.Errorf("no change list loader configured")
	}

	root, err := a.root()
	if err != nil {
		return nil, "", err
	}

	changes, err := a.opts.Providers.Changes.CommittedChangeList(ctx, root, info.Hash())
	if err != nil {
		return nil, "", fmt.Errorf("loading changes of %s: %w", domain.ShortHash(info.Hash()), err)
	}
	return changes, info.Path(), nil
}

// ModificationDetails compares the revision that touched line n with its
// previous revision and reports the changed ranges of the line. It returns
// nil when the content at the line's revision cannot be found.
func (a *FileAnnotation) ModificationDetails(ctx context.Context, n int) (*diff.Details, error) {
	info, ok := a.LineInfo(n)
	if !ok {
		return nil, a.boundsError(n)
	}
	if a.opts.Providers.Content == nil {
		return nil, fmt.Errorf("no content loader configured")
	}

	root, err := a.root()
	if err != nil {
		return nil, err
	}

	after, err := a.opts.Providers.Content.Content(ctx, root, info.Hash(), info.Path())
	if errors.Is(err, ErrContentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s at %s: %w", info.Path(), domain.ShortHash(info.Hash()), err)
	}

	var before string
	hasBefore := false
	if prev := info.Commit().PreviousFileRevision(); prev != nil {
		before, err = a.opts.Providers.Content.Content(ctx, root, prev.Hash, prev.Path)
		switch {
		case err == nil:
			hasBefore = true
		case !errors.Is(err, ErrContentNotFound):
			return nil, fmt.Errorf("loading %s at %s: %w", prev.Path, prev.ShortHash(), err)
		}
	}

	return diff.DetailsFor(before, hasBefore, after, info.OriginalLineNumber()-1), nil
}

// AnnotatedContent returns the file content at the annotated revision
func (a *FileAnnotation) AnnotatedContent(ctx context.Context) (string, error) {
	if a.opts.Providers.Content == nil {
		return "", fmt.Errorf("no content loader configured")
	}
	root, err := a.root()
	if err != nil {
		return "", err
	}
	return a.opts.Providers.Content.Content(ctx, root, a.opts.BaseRevision, a.opts.Path)
}

func (a *FileAnnotation) root() (string, error) {
	if a.opts.Providers.Roots == nil {
		return "", fmt.Errorf("no repository root resolver configured")
	}
	root, err := a.opts.Providers.Roots.RootFor(a.opts.File)
	if err != nil {
		return "", fmt.Errorf("resolving repository root for %s: %w", a.opts.File, err)
	}
	return root, nil
}

func (a *FileAnnotation) boundsError(n int) error {
	return fmt.Errorf("%w: line %d not in [0, %d)", ErrLineOutOfBounds, n, len(a.lines))
}
