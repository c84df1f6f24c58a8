// Package storage keeps uploaded images on local disk under the directory
// served at /uploads/.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dcode-github/realestate_console/imageset"
)

// URLPrefix is the first segment of every stored image URL.
const URLPrefix = "uploads"

const (
	CategoryProperties = "properties"
	CategoryCities     = "cities"
	CategorySelling    = "selling"
)

var (
	ErrNotImage   = errors.New("uploaded file is not an image")
	ErrInvalidURL = errors.New("image url outside the uploads directory")
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

type Uploads struct {
	root   string
	logger logrus.FieldLogger
}

func NewUploads(root string, logger logrus.FieldLogger) *Uploads {
	return &Uploads{root: root, logger: logger}
}

func (u *Uploads) Root() string {
	return u.root
}

// Save writes an image into the category directory and returns its stored
// URL, e.g. "uploads/properties/front-<uuid>.jpg".
func (u *Uploads) Save(category string, img imageset.Upload) (string, error) {
	mt := mimetype.Detect(img.Data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: %s is %s", ErrNotImage, img.Name, mt.String())
	}

	ext := strings.ToLower(filepath.Ext(img.Name))
	if ext == "" {
		ext = mt.Extension()
	}
	base := strings.TrimSuffix(filepath.Base(img.Name), filepath.Ext(img.Name))
	base = strings.Trim(unsafeNameChars.ReplaceAllString(base, "-"), "-")
	if len(base) > 40 {
		base = base[:40]
	}
	if base == "" {
		base = "image"
	}
	fileName := base + "-" + uuid.NewString() + ext

	dir := filepath.Join(u.root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, fileName), img.Data, 0o644); err != nil {
		return "", fmt.Errorf("write upload %s: %w", fileName, err)
	}
	return path.Join(URLPrefix, category, fileName), nil
}

// SaveAll stores a batch, removing what it already wrote if one fails.
func (u *Uploads) SaveAll(category string, imgs []imageset.Upload) ([]string, error) {
	urls := make([]string, 0, len(imgs))
	for _, img := range imgs {
		url, err := u.Save(category, img)
		if err != nil {
			u.RemoveAll(urls)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// FilePath resolves a stored URL to its location on disk.
func (u *Uploads) FilePath(storedURL string) (string, error) {
	p := imageset.NormalizePath(storedURL)
	rel, ok := strings.CutPrefix(p, URLPrefix+"/")
	if !ok || rel == "" || strings.HasPrefix(rel, "../") || rel == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, storedURL)
	}
	return filepath.Join(u.root, filepath.FromSlash(rel)), nil
}

// Remove deletes the file behind a stored URL.
func (u *Uploads) Remove(storedURL string) error {
	fp, err := u.FilePath(storedURL)
	if err != nil {
		return err
	}
	return os.Remove(fp)
}

// RemoveAll deletes files one after another, logging and skipping failures.
// It returns how many files were removed.
func (u *Uploads) RemoveAll(storedURLs []string) int {
	removed := 0
	for _, url := range storedURLs {
		if strings.TrimSpace(url) == "" {
			continue
		}
		if err := u.Remove(url); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				u.logger.WithField("url", url).Warn("Image file not found, skipping")
			} else {
				u.logger.WithError(err).WithField("url", url).Error("Error deleting image file")
			}
			continue
		}
		removed++
		u.logger.WithField("url", url).Debug("Image file deleted")
	}
	return removed
}
