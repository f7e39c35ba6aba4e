// Package files stores uploaded assets (logos, banners, product images)
// on disk under random names and serves them by URL.
package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxUploadSize caps a single asset at 5 MB.
const MaxUploadSize = 5 << 20

// allowedExts is the closed set of accepted image extensions.
var allowedExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".svg":  true,
}

// Store saves assets and hands back URLs.
type Store interface {
	Store(name string, r io.Reader) (string, error)
	Remove(url string) error
}

// DiskStore keeps assets in a local directory served under baseURL.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore creates the upload directory if needed. baseURL is the
// public path prefix, "/uploads" in the default config.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Dir returns the backing directory, for mounting a file server on it.
func (s *DiskStore) Dir() string { return s.dir }

// Store writes the asset under a random name, keeping only the original
// extension. Oversized or non-image uploads are rejected.
func (s *DiskStore) Store(name string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExts[ext] {
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}

	fileName := uuid.NewString() + ext
	path := filepath.Join(s.dir, fileName)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, MaxUploadSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if n > MaxUploadSize {
		os.Remove(path)
		return "", fmt.Errorf("upload exceeds %d bytes", MaxUploadSize)
	}

	return s.baseURL + "/" + fileName, nil
}

// Remove deletes the asset behind a URL previously returned by Store.
// URLs outside the store's prefix are rejected.
func (s *DiskStore) Remove(url string) error {
	name, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		return fmt.Errorf("not a managed asset url: %s", url)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}
