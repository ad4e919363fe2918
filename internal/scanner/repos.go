package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotInRepository is returned when no enclosing Git repository exists
var ErrNotInRepository = errors.New("not inside a git repository")

// IsRepoRoot checks if path contains a .git directory, or a .git file as
// used by worktrees and submodules
func IsRepoRoot(path string) bool {
	_, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil
}

// FindRoot walks up from path to the nearest repository root. path may name
// a file that no longer exists; the search starts at its closest existing
// parent.
func FindRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}

	dir := abs
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		if IsRepoRoot(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: %s", ErrNotInRepository, path)
		}
		dir = parent
	}
}

// GetRepoName extracts the repository name from its path
func GetRepoName(repoPath string) string {
	return filepath.Base(repoPath)
}
