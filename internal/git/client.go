package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/juparave/workbench/internal/annotate"
	"github.com/juparave/workbench/internal/domain"
	"github.com/juparave/workbench/internal/scanner"
)

// changeListCacheSize bounds the number of committed change lists kept in memory
const changeListCacheSize = 256

// Client interacts with Git repositories through the git binary
type Client struct {
	logger *log.Logger

	mu      sync.Mutex
	changes *lru.Cache
}

// NewClient creates a new Git client
func NewClient(logger *log.Logger) *Client {
	return &Client{
		logger:  logger,
		changes: lru.New(changeListCacheSize),
	}
}

// RootFor returns the repository root containing path
func (c *Client) RootFor(path string) (string, error) {
	return scanner.FindRoot(path)
}

// Blame annotates path (repository-relative) at revision, or the working
// tree when revision is empty
func (c *Client) Blame(ctx context.Context, root, revision, path string) ([]annotate.LineInfo, error) {
	args := []string{"blame", "--line-porcelain", "-w"}
	if revision != "" {
		args = append(args, revision)
	}
	args = append(args, "--", path)

	output, err := c.run(ctx, root, args...)
	if err != nil {
		return nil, fmt.Errorf("git blame failed: %w", err)
	}
	return ParseBlame(output)
}

// History returns the revisions of path, newest first, following renames.
// maxCount <= 0 means no limit.
func (c *Client) History(ctx context.Context, root, path string, maxCount int) ([]domain.FileRevision, error) {
	args := []string{"log", "--follow", "--name-only", "--format=" + historyFormat}
	if maxCount > 0 {
		args = append(args, "--max-count="+strconv.Itoa(maxCount))
	}
	args = append(args, "--", path)

	output, err := c.run(ctx, root, args...)
	if err != nil {
		return nil, fmt.Errorf("git log failed: %w", err)
	}
	return c.parseHistory(output)
}

// CurrentRevision returns the newest commit touching path
func (c *Client) CurrentRevision(ctx context.Context, root, path string) (string, error) {
	output, err := c.run(ctx, root, "log", "-1", "--format=%H", "--", path)
	if err != nil {
		return "", fmt.Errorf("git log failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// Content returns path at revision. An empty or uncommitted revision reads
// the working tree.
func (c *Client) Content(ctx context.Context, root, hash, path string) (string, error) {
	if hash == "" || domain.IsUncommitted(hash) {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
		if os.IsNotExist(err) {
			return "", annotate.ErrContentNotFound
		}
		if err != nil {
			return "", fmt.Errorf("reading working tree file: %w", err)
		}
		return string(data), nil
	}

	output, err := c.run(ctx, root, "show", hash+":"+path)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && isMissingPath(string(exitErr.Stderr)) {
			return "", annotate.ErrContentNotFound
		}
		return "", fmt.Errorf("git show failed: %w", err)
	}
	return string(output), nil
}

// CommittedChangeList returns the files changed by a commit. Results are
// cached per repository and revision.
func (c *Client) CommittedChangeList(ctx context.Context, root, hash string) (*domain.ChangeList, error) {
	key := root + "@" + hash

	c.mu.Lock()
	cached, ok := c.changes.Get(key)
	c.mu.Unlock()
	if ok {
		return cached.(*domain.ChangeList), nil
	}

	output, err := c.run(ctx, root, "show", "-M", "--name-status", "--format="+changeListFormat, hash)
	if err != nil {
		return nil, fmt.Errorf("git show failed: %w", err)
	}

	cl, err := ParseChangeList(output)
	if err != nil {
		return nil, err
	}
	cl.RepoPath = root

	c.mu.Lock()
	c.changes.Add(key, cl)
	c.mu.Unlock()

	return cl, nil
}

func (c *Client) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitErr.Stderr = stderr.Bytes()
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return nil, fmt.Errorf("%w: %s", err, msg)
			}
		}
		return nil, err
	}
	return output, nil
}

func isMissingPath(stderr string) bool {
	return strings.Contains(stderr, "does not exist in") ||
		strings.Contains(stderr, "exists on disk, but not in")
}

