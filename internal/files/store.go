// Package files implements platform.FileSystem as a per-user directory tree
// on local disk.
package files

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/ziadkadry99/puter-gallery/internal/platform"
)

// Store roots every user's files at <root>/<user id>.
type Store struct {
	root     string
	hidden   []string
	maxBytes int64
	logger   *zap.Logger
}

// NewStore creates a file store under root. Entries matching any of the
// hidden doublestar patterns are omitted from ReadDir.
func NewStore(root string, hidden []string, maxBytes int64, logger *zap.Logger) (*Store, error) {
	for _, p := range hidden {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid hidden pattern %q", p)
		}
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating files root: %w", err)
	}
	return &Store{root: root, hidden: hidden, maxBytes: maxBytes, logger: logger}, nil
}

// Clean normalises a user path to slash form rooted at "/". Relative paths
// are resolved against the user's root; ".." cannot climb above it.
func Clean(p string) (string, error) {
	if strings.ContainsRune(p, 0) {
		return "", fmt.Errorf("%w: %q", platform.ErrInvalidPath, p)
	}
	return path.Clean("/" + filepath.ToSlash(p)), nil
}

// UserRoot returns the on-disk root directory of a user.
func (s *Store) UserRoot(userID string) string {
	return filepath.Join(s.root, userID)
}

// Resolve maps a user path to its on-disk location.
func (s *Store) Resolve(userID, p string) (string, error) {
	clean, err := Clean(p)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.UserRoot(userID), filepath.FromSlash(clean)), nil
}

func (s *Store) resolve(ctx context.Context, p string) (clean, abs string, err error) {
	u, err := platform.UserFrom(ctx)
	if err != nil {
		return "", "", err
	}
	clean, err = Clean(p)
	if err != nil {
		return "", "", err
	}
	return clean, filepath.Join(s.UserRoot(u.ID), filepath.FromSlash(clean)), nil
}

// Write creates or replaces a file, creating parent directories as needed.
func (s *Store) Write(ctx context.Context, p string, content []byte) (*platform.FileInfo, error) {
	clean, abs, err := s.resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if clean == "/" {
		return nil, fmt.Errorf("%w: cannot write to the root directory", platform.ErrInvalidPath)
	}
	if int64(len(content)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds the %d byte limit", platform.ErrTooLarge, len(content), s.maxBytes)
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("creating parent directory for %s: %w", clean, err)
	}
	if err := os.WriteFile(abs, content, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", clean, err)
	}

	s.logger.Debug("file written", zap.String("path", clean), zap.Int("bytes", len(content)))
	return stat(abs, clean)
}

// Read returns the content of a file.
func (s *Store) Read(ctx context.Context, p string) (platform.Blob, error) {
	clean, abs, err := s.resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, translate(clean, err)
	}
	return platform.Blob(data), nil
}

// ReadDir lists a directory, directories first then by name.
func (s *Store) ReadDir(ctx context.Context, p string) ([]platform.FileInfo, error) {
	clean, abs, err := s.resolve(ctx, p)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		// A fresh user's root does not exist until the first write.
		if clean == "/" && errors.Is(err, fs.ErrNotExist) {
			return []platform.FileInfo{}, nil
		}
		return nil, translate(clean, err)
	}

	infos := make([]platform.FileInfo, 0, len(entries))
	for _, e := range entries {
		child := path.Join(clean, e.Name())
		if s.isHidden(child) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		infos = append(infos, platform.FileInfo{
			Name:     e.Name(),
			Path:     child,
			IsDir:    e.IsDir(),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].IsDir != infos[j].IsDir {
			return infos[i].IsDir
		}
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
}

// Mkdir creates a directory and any missing parents. Creating an existing
// directory is not an error.
func (s *Store) Mkdir(ctx context.Context, p string) (*platform.FileInfo, error) {
	clean, abs, err := s.resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, translate(clean, err)
	}
	return stat(abs, clean)
}

// isHidden matches the path without its leading slash against the hidden patterns.
func (s *Store) isHidden(p string) bool {
	rel := strings.TrimPrefix(p, "/")
	for _, pattern := range s.hidden {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func stat(abs, clean string) (*platform.FileInfo, error) {
	info, err := os.Stat(abs)
	if err != nil {
		return nil, translate(clean, err)
	}
	return &platform.FileInfo{
		Name:     path.Base(clean),
		Path:     clean,
		IsDir:    info.IsDir(),
		Size:     info.Size(),
		Modified: info.ModTime(),
	}, nil
}

func translate(clean string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s: %w", clean, platform.ErrNotFound)
	case errors.Is(err, fs.ErrExist):
		return fmt.Errorf("%s: %w", clean, platform.ErrConflict)
	default:
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return fmt.Errorf("%s: %s", clean, pathErr.Err)
		}
		return fmt.Errorf("%s: %w", clean, err)
	}
}
