package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0755))
	nested := filepath.Join(root, "pkg", "server")
	require.NoError(t, os.MkdirAll(nested, 0755))
	file := filepath.Join(nested, "main.go")
	require.NoError(t, os.WriteFile(file, []byte("package main\n"), 0644))

	for _, p := range []string{root, nested, file, filepath.Join(nested, "deleted.go")} {
		got, err := FindRoot(p)
		require.NoError(t, err, p)
		require.Equal(t, root, got)
	}
	require.Equal(t, filepath.Base(root), GetRepoName(root))
}

func TestFindRootWorktreeFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git"), []byte("gitdir: /elsewhere\n"), 0644))
	got, err := FindRoot(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, root, got)
}
