package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/suPer8Hu/chat-dashboard/internal/common"
	"github.com/suPer8Hu/chat-dashboard/internal/metrics"
	"github.com/suPer8Hu/chat-dashboard/internal/settings"
)

// PublicPrefix is the URL path logos are served under.
const PublicPrefix = "/uploads/"

var (
	ErrNotImage    = errors.New("logo must be an image")
	ErrForeignRef  = errors.New("logo reference is not managed by this store")
	ErrEmptyUpload = errors.New("logo upload is empty")
)

// LocalLogoStore keeps logos as files in Dir and hands out /uploads/ refs.
type LocalLogoStore struct {
	Dir string
}

func NewLocalLogoStore(dir string) (*LocalLogoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &LocalLogoStore{Dir: dir}, nil
}

// Save writes the logo under a fresh ULID name. The extension comes from
// the sniffed content type, not the client file name.
func (s *LocalLogoStore) Save(ctx context.Context, logo settings.LogoUpload) (string, error) {
	if len(logo.Data) == 0 {
		return "", ErrEmptyUpload
	}
	mt := mimetype.Detect(logo.Data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", ErrNotImage
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id, err := common.NewULID()
	if err != nil {
		return "", err
	}
	name := "logo-" + strings.ToLower(id) + mt.Extension()

	tmp, err := os.CreateTemp(s.Dir, ".upload-*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(logo.Data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", err
	}
	if err := os.Rename(tmpName, filepath.Join(s.Dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return "", err
	}
	return PublicPrefix + name, nil
}

// Remove deletes the file behind ref. Refs outside /uploads/ are rejected
// and a missing file is not an error.
func (s *LocalLogoStore) Remove(_ context.Context, ref string) error {
	path, err := s.pathFor(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalLogoStore) pathFor(ref string) (string, error) {
	if !strings.HasPrefix(ref, PublicPrefix) {
		return "", ErrForeignRef
	}
	name := strings.TrimPrefix(ref, PublicPrefix)
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrForeignRef
	}
	return filepath.Join(s.Dir, name), nil
}

// AsyncJanitor removes discarded logos on a detached goroutine.
type AsyncJanitor struct {
	store  settings.LogoStore
	logger *slog.Logger
	done   func()
}

func NewAsyncJanitor(store settings.LogoStore) *AsyncJanitor {
	return &AsyncJanitor{
		store:  store,
		logger: slog.Default().With("component", "logo-janitor"),
	}
}

func (j *AsyncJanitor) Discard(ref string) {
	go func() {
		if j.done != nil {
			defer j.done()
		}
		err := j.store.Remove(context.Background(), ref)
		metrics.LogoCleanup(err)
		if err != nil {
			j.logger.Warn("removing old logo failed", "ref", ref, "error", err)
			return
		}
		j.logger.Debug("old logo removed", "ref", ref)
	}()
}
