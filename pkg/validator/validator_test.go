package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("user@example.com"))
	assert.Error(t, Email(""))
	assert.Error(t, Email("not-an-email"))
	assert.Error(t, Email("user@"+strings.Repeat("a", 260)+".com"))
}

func TestProjectName(t *testing.T) {
	assert.NoError(t, ProjectName(""))
	assert.NoError(t, ProjectName("Wildlife Survey 2026"))
	assert.Error(t, ProjectName(strings.Repeat("x", 300)))
	assert.Error(t, ProjectName("bad\nname"))
}

func TestAssetName(t *testing.T) {
	assert.NoError(t, AssetName(""))
	assert.NoError(t, AssetName("robin-01"))
	assert.Error(t, AssetName("../escape"))
	assert.Error(t, AssetName("a/b"))
	assert.Error(t, AssetName("bad\tname"))
	assert.Error(t, AssetName(strings.Repeat("x", 300)))
}

func TestTag(t *testing.T) {
	assert.NoError(t, Tag("bird"))
	assert.Error(t, Tag(strings.Repeat("x", 100)))
	assert.Error(t, Tag("bad\x01tag"))
}
