// Package storage keeps uploaded performance images on the local disk.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/metinatakli/theatre-reservation-system/internal/domain"
)

const DefaultMaxImageSize = 5 << 20

var (
	ErrUnsupportedType = errors.New("only jpeg, png and webp images are accepted")
	ErrTooLarge        = errors.New("image is too large")
	ErrInvalidPath     = errors.New("invalid path")
	ErrFileNotFound    = errors.New("file not found")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type LocalStorage struct {
	basePath string
	maxSize  int64
	clock    domain.Clock
}

func NewLocalStorage(basePath string, maxSize int64, clock domain.Clock) (*LocalStorage, error) {
	err := os.MkdirAll(basePath, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}

	return &LocalStorage{
		basePath: basePath,
		maxSize:  maxSize,
		clock:    clock,
	}, nil
}

func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// SaveImage stores the image under prefix/YYYY/MM/DD with a random name and
// returns its relative path. The content type is sniffed from the bytes,
// never taken from the client.
func (s *LocalStorage) SaveImage(prefix string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	if int64(len(data)) > s.maxSize {
		return "", ErrTooLarge
	}

	mtype := mimetype.Detect(data)

	var ext string
	for m, e := range allowedTypes {
		if mtype.Is(m) {
			ext = e
			break
		}
	}
	if ext == "" {
		return "", ErrUnsupportedType
	}

	rel := path.Join(prefix, s.clock.Now().Format("2006/01/02"), uuid.NewString()+ext)

	full, err := s.resolve(rel)
	if err != nil {
		return "", err
	}

	err = os.MkdirAll(filepath.Dir(full), 0o755)
	if err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	_, err = io.Copy(f, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return rel, nil
}

func (s *LocalStorage) Delete(rel string) error {
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}

	err = os.Remove(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrFileNotFound
		}

		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// resolve maps a relative path inside the storage to an absolute one and
// rejects anything that would escape the base directory.
func (s *LocalStorage) resolve(rel string) (string, error) {
	cleaned := path.Clean("/" + rel)
	if cleaned == "/" || strings.Contains(rel, "..") {
		return "", ErrInvalidPath
	}

	return filepath.Join(s.basePath, filepath.FromSlash(cleaned)), nil
}
