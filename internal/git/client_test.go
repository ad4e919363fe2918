package git

import (
	"context"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/juparave/workbench/internal/annotate"
	"github.com/juparave/workbench/internal/domain"
	"github.com/stretchr/testify/require"
)

// testRepo creates a repository with two commits to app/main.go
func testRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	dir := t.TempDir()
	gitCmd := func(date string, args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Alice", "GIT_AUTHOR_EMAIL=alice@example.com",
			"GIT_COMMITTER_NAME=Alice", "GIT_COMMITTER_EMAIL=alice@example.com",
			"GIT_AUTHOR_DATE="+date, "GIT_COMMITTER_DATE="+date,
			"GIT_CONFIG_NOSYSTEM=1", "HOME="+dir,
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	write := func(content string) {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "app"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "app", "main.go"), []byte(content), 0644))
	}

	gitCmd("2024-01-01T10:00:00Z", "init", "-q")
	write("package main\n\nfunc main() {}\n")
	gitCmd("2024-01-01T10:00:00Z", "add", ".")
	gitCmd("2024-01-01T10:00:00Z", "commit", "-q", "-m", "Initial commit")

	write("package main\n\nfunc main() { run() }\n")
	gitCmd("2024-02-01T10:00:00Z", "commit", "-q", "-am", "Call run\n\nWire the runner.")

	return dir
}

func TestClientAgainstRepository(t *testing.T) {
	root := testRepo(t)
	ctx := context.Background()
	c := NewClient(log.New(io.Discard, "", 0))

	gotRoot, err := c.RootFor(filepath.Join(root, "app", "main.go"))
	require.NoError(t, err)
	require.Equal(t, root, gotRoot)

	lines, err := c.Blame(ctx, root, "", "app/main.go")
	require.NoError(t, err)
	require.Len(t, lines, 3)
	require.Same(t, lines[0].Commit(), lines[1].Commit())
	require.Equal(t, "Call run", lines[2].Subject())
	require.Equal(t, lines[0].Hash(), lines[2].Commit().PreviousHash)

	history, err := c.History(ctx, root, "app/main.go", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, lines[2].Hash(), history[0].Hash)
	require.Equal(t, "Call run\n\nWire the runner.", history[0].Message)
	require.Equal(t, "app/main.go", history[1].Path)

	current, err := c.CurrentRevision(ctx, root, "app/main.go")
	require.NoError(t, err)
	require.Equal(t, history[0].Hash, current)

	content, err := c.Content(ctx, root, history[1].Hash, "app/main.go")
	require.NoError(t, err)
	require.Equal(t, "package main\n\nfunc main() {}\n", content)

	_, err = c.Content(ctx, root, history[1].Hash, "app/missing.go")
	require.ErrorIs(t, err, annotate.ErrContentNotFound)

	working, err := c.Content(ctx, root, domain.UncommittedHash, "app/main.go")
	require.NoError(t, err)
	require.Contains(t, working, "run()")

	cl, err := c.CommittedChangeList(ctx, root, history[0].Hash)
	require.NoError(t, err)
	require.Equal(t, []domain.Change{{Status: domain.StatusModified, Path: "app/main.go"}}, cl.Changes)
	require.Equal(t, root, cl.RepoPath)

	cached, err := c.CommittedChangeList(ctx, root, history[0].Hash)
	require.NoError(t, err)
	require.Same(t, cl, cached)
}

func TestBlameFailure(t *testing.T) {
	root := testRepo(t)
	c := NewClient(log.New(io.Discard, "", 0))
	_, err := c.Blame(context.Background(), root, "", "does/not/exist.go")
	require.Error(t, err)
}
