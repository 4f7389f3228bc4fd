package validator

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	minEmailLength    = 3
	maxEmailLength    = 255
	maxProjectNameLen = 255
	maxAssetNameLen   = 255
	maxTagLen         = 64
	asciiControlStart = 32
	asciiDelete       = 127

	errEmailEmptyFmt            = "email cannot be empty"
	errEmailLengthFmt           = "email must be between %d and %d characters"
	errEmailInvalidFmt          = "invalid email format"
	errProjectNameMaxLengthFmt  = "project name must not exceed %d characters"
	errProjectNameControlFmt    = "project name cannot contain control characters"
	errAssetNameMaxLengthFmt    = "name must not exceed %d characters"
	errAssetNamePathSepFmt      = "name cannot contain path separators"
	errAssetNameControlCharsFmt = "name cannot contain control characters"
	errTagMaxLengthFmt          = "tag must not exceed %d characters"
	errTagControlCharsFmt       = "tag cannot contain control characters"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func Email(email string) error {
	if email == "" {
		return fmt.Errorf(errEmailEmptyFmt)
	}

	if len(email) < minEmailLength || len(email) > maxEmailLength {
		return fmt.Errorf(errEmailLengthFmt, minEmailLength, maxEmailLength)
	}

	if !emailRegex.MatchString(email) {
		return fmt.Errorf(errEmailInvalidFmt)
	}

	return nil
}

// ProjectName accepts the empty string; a missing name is defaulted by
// the service, not rejected.
func ProjectName(name string) error {
	if len(name) > maxProjectNameLen {
		return fmt.Errorf(errProjectNameMaxLengthFmt, maxProjectNameLen)
	}

	for _, char := range name {
		if char < asciiControlStart || char == asciiDelete {
			return fmt.Errorf(errProjectNameControlFmt)
		}
	}

	return nil
}

// AssetName accepts the empty string for the same reason.
func AssetName(name string) error {
	if len(name) > maxAssetNameLen {
		return fmt.Errorf(errAssetNameMaxLengthFmt, maxAssetNameLen)
	}

	if strings.Contains(name, "..") || strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return fmt.Errorf(errAssetNamePathSepFmt)
	}

	for _, char := range name {
		if char < asciiControlStart || char == asciiDelete {
			return fmt.Errorf(errAssetNameControlCharsFmt)
		}
	}

	return nil
}

func Tag(tag string) error {
	if len(tag) > maxTagLen {
		return fmt.Errorf(errTagMaxLengthFmt, maxTagLen)
	}

	for _, char := range tag {
		if char < asciiControlStart || char == asciiDelete {
			return fmt.Errorf(errTagControlCharsFmt)
		}
	}

	return nil
}
