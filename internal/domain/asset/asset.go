package asset

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "annotation-service/pkg/errors"
)

// Kind discriminates the two asset types sharing one storage shape.
type Kind string

const (
	KindImage Kind = "image"
	KindMask  Kind = "mask"
)

// Asset is an uploaded binary under a project. Images hang directly off
// the project (ParentID nil); masks hang off their parent image.
type Asset struct {
	ID            uuid.UUID  `json:"-"`
	ProjectID     uuid.UUID  `json:"-"`
	ParentID      *uuid.UUID `json:"-"`
	Kind          Kind       `json:"-"`
	Name          string     `json:"name"`
	BlobKey       string     `json:"-"`
	FileExtension string     `json:"fileExtension,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	LastModified  time.Time  `json:"utc"`
}

var (
	imageExtensions = []string{
		"png", "jpg", "jpeg", "jfif", "pjpeg", "pjp",
		"gif", "bmp", "ico", "cur", "svg", "webp",
	}
	imageMimeTypes = []string{
		"image/png", "image/jpeg", "image/pjpeg", "image/gif",
		"image/bmp", "image/x-icon", "image/svg+xml", "image/webp",
	}
	maskExtensions = []string{"png"}
	maskMimeTypes  = []string{"image/png"}
)

// CheckUploadType validates a filename/MIME pair against the allow-list
// for the given kind and returns the normalized file extension. Masks are
// single-channel annotation layers and must be PNG.
func CheckUploadType(kind Kind, filename, mimeType string) (string, error) {
	parts := strings.Split(filename, ".")
	ext := strings.ToLower(parts[len(parts)-1])
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))

	extensions, mimeTypes := imageExtensions, imageMimeTypes
	if kind == KindMask {
		extensions, mimeTypes = maskExtensions, maskMimeTypes
	}

	if !contains(extensions, ext) && !contains(mimeTypes, mimeType) {
		return "", apperrors.InvalidArgument(fmt.Sprintf(
			"file not supported; extension: %s; MIME type: %s", ext, mimeType))
	}
	return ext, nil
}

// ParseTags splits a comma-separated tag list, lowercasing and
// deduplicating while preserving first-seen order.
func ParseTags(csv string) []string {
	if csv == "" {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(strings.ToLower(csv), ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
