package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ashwch/jarvis/internal/intent"
	"github.com/ashwch/jarvis/internal/session"
)

type FileHandler struct {
	Root       string
	Automation Automation
}

func (h FileHandler) Handle(ctx context.Context, cmd intent.ParsedCommand, s session.Session) (Outcome, error) {
	root, err := h.root()
	if err != nil {
		return Outcome{}, err
	}
	base := root
	if s.WorkingDir != "" {
		if wd, err := confine(root, root, s.WorkingDir); err == nil {
			base = wd
		}
	}

	switch cmd.ActionName() {
	case intent.ActionOpenFile:
		return h.open(ctx, cmd, root, base)
	case intent.ActionCopyFile:
		return copyFile(cmd, root, base)
	case intent.ActionDeleteFile:
		return deleteFile(cmd, root, base)
	case intent.ActionCreateFolder:
		return createFolder(cmd, root, base)
	default:
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownAction, cmd.ActionName())
	}
}

func (h FileHandler) root() (string, error) {
	if strings.TrimSpace(h.Root) == "" {
		return "", fmt.Errorf("%w: files.root is not set", ErrNotAllowed)
	}
	abs, err := filepath.Abs(h.Root)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return abs, nil
}

func (h FileHandler) open(ctx context.Context, cmd intent.ParsedCommand, root, base string) (Outcome, error) {
	path, err := paramPath(cmd, "filename", root, base)
	if err != nil {
		return Outcome{}, err
	}
	if _, err := os.Stat(path); err != nil {
		return Outcome{}, err
	}
	if h.Automation == nil {
		return Outcome{}, ErrNoAutomation
	}
	call := Call{Action: "file." + intent.ActionOpenFile, Args: []Arg{{Key: "path", Value: path}}}
	out, err := h.Automation.Run(ctx, call)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Summary: firstNonEmpty(out, "opened "+path), Data: map[string]string{"path": path}}, nil
}

func copyFile(cmd intent.ParsedCommand, root, base string) (Outcome, error) {
	src, err := paramPath(cmd, "source", root, base)
	if err != nil {
		return Outcome{}, err
	}
	dst, err := paramPath(cmd, "destination", root, base)
	if err != nil {
		return Outcome{}, err
	}

	info, err := os.Stat(src)
	if err != nil {
		return Outcome{}, err
	}
	if !info.Mode().IsRegular() {
		return Outcome{}, fmt.Errorf("%s is not a regular file", src)
	}
	if target, err := os.Stat(dst); err == nil && target.IsDir() {
		dst = filepath.Join(dst, filepath.Base(src))
	}
	if _, err := os.Stat(dst); err == nil {
		return Outcome{}, fmt.Errorf("%s already exists: %w", dst, fs.ErrExist)
	}

	in, err := os.Open(src)
	if err != nil {
		return Outcome{}, err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return Outcome{}, err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return Outcome{}, err
	}
	if err := out.Close(); err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Summary: fmt.Sprintf("copied %s to %s", src, dst),
		Data:    map[string]string{"source": src, "destination": dst},
	}, nil
}

func deleteFile(cmd intent.ParsedCommand, root, base string) (Outcome, error) {
	path, err := paramPath(cmd, "filename", root, base)
	if err != nil {
		return Outcome{}, err
	}
	info, err := os.Lstat(path)
	if err != nil {
		return Outcome{}, err
	}
	if info.IsDir() {
		return Outcome{}, fmt.Errorf("%w: %s is a directory", ErrNotAllowed, path)
	}
	if err := os.Remove(path); err != nil {
		return Outcome{}, err
	}
	return Outcome{Summary: "deleted " + path, Data: map[string]string{"path": path}}, nil
}

func createFolder(cmd intent.ParsedCommand, root, base string) (Outcome, error) {
	path, err := paramPath(cmd, "folder_name", root, base)
	if err != nil {
		return Outcome{}, err
	}
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return Outcome{}, fmt.Errorf("%s exists and is not a folder: %w", path, fs.ErrExist)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return Outcome{}, err
	}
	return Outcome{Summary: "created " + path, Data: map[string]string{"path": path}}, nil
}

func paramPath(cmd intent.ParsedCommand, name, root, base string) (string, error) {
	value, err := requireParam(cmd, name)
	if err != nil {
		return "", err
	}
	return confine(root, base, value)
}

// confine resolves p against base and refuses anything outside root,
// following symlinks of the part of the path that exists.
func confine(root, base, p string) (string, error) {
	p = strings.TrimSpace(p)
	if strings.HasPrefix(p, "~") {
		return "", fmt.Errorf("%w: %q must be relative to files.root", ErrNotAllowed, p)
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	p = filepath.Clean(p)

	resolved, err := resolveExisting(p)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q is outside %s", ErrNotAllowed, p, root)
	}
	return resolved, nil
}

func resolveExisting(p string) (string, error) {
	var missing []string
	current := p
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			parts := append([]string{resolved}, missing...)
			return filepath.Join(parts...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return p, nil
		}
		missing = append([]string{filepath.Base(current)}, missing...)
		current = parent
	}
}
