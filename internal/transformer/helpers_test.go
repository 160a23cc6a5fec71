package transformer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testDir struct {
	path string
	t    *testing.T
}

func newTestDir(t *testing.T) *testDir {
	t.Helper()

	// resolve symlinks so paths compare equal on macOS
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	return &testDir{
		path: dir,
		t:    t,
	}
}

func (td *testDir) createFile(name, content string) string {
	td.t.Helper()

	path := filepath.Join(td.path, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		td.t.Fatalf("failed to create test dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		td.t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func (td *testDir) read(name string) string {
	td.t.Helper()

	content, err := os.ReadFile(filepath.Join(td.path, name))
	require.NoError(td.t, err)
	return string(content)
}

func (td *testDir) exists(name string) bool {
	td.t.Helper()

	_, err := os.Stat(filepath.Join(td.path, name))
	return err == nil
}

// files lists every regular file below the test dir, relative and slash separated
func (td *testDir) files() []string {
	td.t.Helper()

	var files []string
	err := filepath.WalkDir(td.path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, err := filepath.Rel(td.path, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(td.t, err)
	return files
}
