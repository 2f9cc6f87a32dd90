package fsguard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteAndRead(t *testing.T) {
	dir, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, dir.WriteFile("game/player.py", []byte("class Player: pass")))
	content, err := dir.ReadFile("game/player.py")
	require.NoError(t, err)
	require.Equal(t, "class Player: pass", string(content))
}

func TestResolve_RejectsTraversal(t *testing.T) {
	dir, err := New(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{
		"../outside.py",
		"../../etc/passwd",
		"a/../../outside.py",
	} {
		_, err := dir.Resolve(name)
		require.Error(t, err, name)
	}
}

func TestResolve_RejectsAbsolute(t *testing.T) {
	dir, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = dir.Resolve(string(os.PathSeparator) + "tmp" + string(os.PathSeparator) + "x.py")
	require.Error(t, err)
}

func TestResolve_AllowsNested(t *testing.T) {
	root := t.TempDir()
	dir, err := New(root)
	require.NoError(t, err)

	p, err := dir.Resolve("scenes/ui/hud.tscn")
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(p))
	require.Contains(t, p, "scenes")
}

func TestNew_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out", "nested")
	dir, err := New(root)
	require.NoError(t, err)

	info, statErr := os.Stat(dir.Root())
	require.NoError(t, statErr)
	require.True(t, info.IsDir())
}

func TestReadFile_Missing(t *testing.T) {
	dir, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = dir.ReadFile("nope.py")
	require.Error(t, err)
}
