package collect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()

	root := t.TempDir()

	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o600))
	}

	return root
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()

	out := make([]string, 0, len(paths))

	for _, p := range paths {
		r, err := filepath.Rel(root, p)
		require.NoError(t, err)

		out = append(out, filepath.ToSlash(r))
	}

	return out
}

func TestCollect_FiltersAndSorts(t *testing.T) {
	t.Parallel()

	root := writeTree(t,
		"zeta.py",
		"alpha.py",
		"pkg/mod.py",
		"pkg/UPPER.PY",
		"pkg/notes.txt",
		".git/hooks/hook.py",
		"node_modules/lib/x.py",
	)

	files := NewCollector(Config{}).Files(root)

	assert.Equal(t, []string{"alpha.py", "node_modules/lib/x.py", "pkg/mod.py", "zeta.py"}, rel(t, root, files))
}

func TestCollect_SkipVendor(t *testing.T) {
	t.Parallel()

	root := writeTree(t, "app.py", "node_modules/lib/x.py")

	files := NewCollector(Config{SkipVendor: true}).Files(root)

	assert.Equal(t, []string{"app.py"}, rel(t, root, files))
}

func TestCollect_CustomExtensions(t *testing.T) {
	t.Parallel()

	root := writeTree(t, "a.py", "b.pyi", "c.txt")

	files := NewCollector(Config{Extensions: []string{".pyi", ".txt"}}).Files(root)

	assert.Equal(t, []string{"b.pyi", "c.txt"}, rel(t, root, files))
}

func TestCollect_Restartable(t *testing.T) {
	t.Parallel()

	root := writeTree(t, "a.py", "b.py")
	seq := NewCollector(Config{}).Collect(root)

	var first, second []string

	for p := range seq {
		first = append(first, p)
	}

	for p := range seq {
		second = append(second, p)
	}

	assert.Len(t, first, 2)
	assert.Equal(t, first, second)
}

func TestCollect_EarlyBreak(t *testing.T) {
	t.Parallel()

	root := writeTree(t, "a.py", "b.py", "c.py")

	var got []string

	for p := range NewCollector(Config{}).Collect(root) {
		got = append(got, p)

		break
	}

	assert.Equal(t, []string{"a.py"}, rel(t, root, got))
}

func TestCollect_MissingRoot(t *testing.T) {
	t.Parallel()

	files := NewCollector(Config{}).Files(filepath.Join(t.TempDir(), "missing"))

	assert.Empty(t, files)
}

func TestCollect_EmptyTree(t *testing.T) {
	t.Parallel()

	root := writeTree(t, "README.md", "setup.cfg")

	assert.Empty(t, NewCollector(Config{}).Files(root))
}
