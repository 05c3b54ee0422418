package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// CreateShellDir is a helper function that lays out an on-disk application
// shell in a temp directory. Keys are paths relative to the root, e.g.
// "index.html" or "dist/css/app.css".
func CreateShellDir(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		WriteShellFile(t, root, name, content)
	}
	return root
}

// WriteShellFile creates or overwrites one file below root.
func WriteShellFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for '%s': %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write shell file '%s': %v", name, err)
	}
}
