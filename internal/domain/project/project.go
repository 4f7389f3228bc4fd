package project

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Visibility controls who may read a project beyond its owners and editors.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

// ParseVisibility normalizes a raw parameter. ok is false for anything
// other than "private" or "public" (case-insensitive).
func ParseVisibility(raw string) (Visibility, bool) {
	switch Visibility(strings.ToLower(raw)) {
	case VisibilityPrivate:
		return VisibilityPrivate, true
	case VisibilityPublic:
		return VisibilityPublic, true
	default:
		return "", false
	}
}

// Project is the top-level container for images and masks. ProjID is the
// externally visible form of the store key, stamped onto the record after
// the initial insert.
type Project struct {
	ID           uuid.UUID  `json:"-"`
	ProjID       string     `json:"projId"`
	Name         string     `json:"name"`
	Visibility   Visibility `json:"visibility"`
	Owners       []string   `json:"owners"`
	Editors      []string   `json:"editors,omitempty"`
	LastModified time.Time  `json:"utc"`
}

// IsOwner reports whether the identity is one of the project owners.
func (p *Project) IsOwner(email string) bool {
	for _, o := range p.Owners {
		if o == email {
			return true
		}
	}
	return false
}

// IsEditor reports whether the identity is one of the project editors.
func (p *Project) IsEditor(email string) bool {
	for _, e := range p.Editors {
		if e == email {
			return true
		}
	}
	return false
}

type CreateInput struct {
	Name       string
	Visibility string
	Owners     []string
	Editors    []string
}

// UpdateInput is a targeted patch: empty string / nil slice means "leave
// unchanged". Delete overrides every other field.
type UpdateInput struct {
	Delete     bool
	Name       string
	Visibility string
	Owners     []string
	Editors    []string
}

// ParseEmails splits a comma-separated list of user identifiers,
// lowercasing and deduplicating while preserving first-seen order.
func ParseEmails(csv string) []string {
	if csv == "" {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(strings.ToLower(csv), ",") {
		email := strings.TrimSpace(part)
		if email == "" {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out
}
