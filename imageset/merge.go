// Package imageset reconciles the images of a property being edited: the
// URLs it already has, the ones the editor removed, and newly uploaded files.
package imageset

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// MaxImages is the largest image set a property may carry.
const MaxImages = 6

var ErrQuotaExceeded = errors.New("quota_exceeded")

// NormalizePath brings a stored image URL to its canonical form: forward
// slashes, no leading slash or "./", no host when a full URL was given.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if u, err := url.Parse(p); err == nil && u.Scheme != "" && u.Host != "" {
		p = u.Path
	}
	p = strings.ReplaceAll(p, `\`, "/")
	p = path.Clean(p)
	p = strings.TrimLeft(p, "/")
	if p == "." {
		return ""
	}
	return p
}

// Kept returns the existing URLs that survive removal, normalized and
// deduplicated in their original order.
func Kept(existing, removed []string) []string {
	drop := make(map[string]struct{}, len(removed))
	for _, r := range removed {
		if n := NormalizePath(r); n != "" {
			drop[n] = struct{}{}
		}
	}
	return appendUnique(nil, existing, drop)
}

// CheckQuota fails with ErrQuotaExceeded when the surviving existing images
// plus newCount uploads exceed MaxImages.
func CheckQuota(existing, removed []string, newCount int) error {
	kept := len(Kept(existing, removed))
	if kept+newCount > MaxImages {
		return fmt.Errorf("%w: %d existing and %d new images exceed the limit of %d",
			ErrQuotaExceeded, kept, newCount, MaxImages)
	}
	return nil
}

// Merge produces the final ordered image list: existing minus removed, then
// the storage paths of new uploads, deduplicated by normalized path.
func Merge(existing, removed, uploaded []string) []string {
	kept := Kept(existing, removed)
	return appendUnique(kept, uploaded, nil)
}

func appendUnique(dst, src []string, skip map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(dst)+len(src))
	for _, p := range dst {
		seen[p] = struct{}{}
	}
	for _, p := range src {
		n := NormalizePath(p)
		if n == "" {
			continue
		}
		if _, ok := skip[n]; ok {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		dst = append(dst, n)
	}
	if dst == nil {
		dst = []string{}
	}
	return dst
}
