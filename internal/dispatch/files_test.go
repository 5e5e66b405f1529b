package dispatch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/ashwch/jarvis/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileRoot(t *testing.T) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return root
}

func TestFileHandlerCopyFile(t *testing.T) {
	root := newFileRoot(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "laporan.txt"), []byte("isi"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "arsip"), 0o755))
	h := FileHandler{Root: root}

	outcome, err := h.Handle(context.Background(), parser.Parse("copy file 'laporan.txt' ke 'arsip'"), session.Session{})
	require.NoError(t, err)
	copied := filepath.Join(root, "arsip", "laporan.txt")
	assert.Equal(t, copied, outcome.Data["destination"])
	data, err := os.ReadFile(copied)
	require.NoError(t, err)
	assert.Equal(t, "isi", string(data))

	_, err = h.Handle(context.Background(), parser.Parse("copy file 'laporan.txt' ke 'arsip'"), session.Session{})
	assert.ErrorIs(t, err, fs.ErrExist)
}

func TestFileHandlerUsesWorkingDir(t *testing.T) {
	root := newFileRoot(t)
	require.NoError(t, os.Mkdir(filepath.Join(root, "proyek"), 0o755))
	h := FileHandler{Root: root}

	_, err := h.Handle(context.Background(), parser.Parse("buat folder 'Q3'"), session.Session{WorkingDir: filepath.Join(root, "proyek")})
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(root, "proyek", "Q3"))

	_, err = h.Handle(context.Background(), parser.Parse("buat folder 'Q4'"), session.Session{WorkingDir: "/"})
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(root, "Q4"), "a working dir outside the root falls back to the root")
}

func TestFileHandlerDeleteFile(t *testing.T) {
	root := newFileRoot(t)
	target := filepath.Join(root, "lama.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "folder"), 0o755))
	h := FileHandler{Root: root}

	_, err := h.Handle(context.Background(), parser.Parse("hapus file 'lama.txt'"), session.Session{})
	require.NoError(t, err)
	assert.NoFileExists(t, target)

	_, err = h.Handle(context.Background(), parser.Parse("hapus file 'folder'"), session.Session{})
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.DirExists(t, filepath.Join(root, "folder"))

	_, err = h.Handle(context.Background(), parser.Parse("hapus file 'tidak-ada.txt'"), session.Session{})
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFileHandlerCreateFolderOverFile(t *testing.T) {
	root := newFileRoot(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "data"), []byte("x"), 0o644))

	_, err := FileHandler{Root: root}.Handle(context.Background(), parser.Parse("buat folder 'data'"), session.Session{})
	assert.ErrorIs(t, err, fs.ErrExist)
}

func TestFileHandlerRefusesEscapes(t *testing.T) {
	root := newFileRoot(t)
	outside := newFileRoot(t)
	require.NoError(t, os.WriteFile(filepath.Join(outside, "rahasia.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "link")))
	h := FileHandler{Root: root}

	for _, text := range []string{
		"hapus file '../rahasia.txt'",
		"hapus file '" + filepath.Join(outside, "rahasia.txt") + "'",
		"hapus file 'link/rahasia.txt'",
		"hapus file '~/rahasia.txt'",
		"buat folder 'link/baru'",
	} {
		_, err := h.Handle(context.Background(), parser.Parse(text), session.Session{})
		assert.ErrorIs(t, err, ErrNotAllowed, text)
	}
	assert.FileExists(t, filepath.Join(outside, "rahasia.txt"))
	assert.NoDirExists(t, filepath.Join(outside, "baru"))
}

func TestFileHandlerOpenDelegates(t *testing.T) {
	root := newFileRoot(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "catatan.docx"), []byte("x"), 0o644))
	dry := &DryRun{}
	h := FileHandler{Root: root, Automation: dry}

	_, err := h.Handle(context.Background(), parser.Parse("buka file 'catatan.docx'"), session.Session{})
	require.NoError(t, err)
	require.Len(t, dry.Calls(), 1)
	assert.Equal(t, Call{Action: "file.open_file", Args: []Arg{{Key: "path", Value: filepath.Join(root, "catatan.docx")}}}, dry.Calls()[0])

	_, err = h.Handle(context.Background(), parser.Parse("buka file 'hilang.docx'"), session.Session{})
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFileHandlerNeedsRoot(t *testing.T) {
	_, err := FileHandler{}.Handle(context.Background(), parser.Parse("buat folder 'x'"), session.Session{})
	assert.ErrorIs(t, err, ErrNotAllowed)
}
