package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVisibility(t *testing.T) {
	v, ok := ParseVisibility("Public")
	assert.True(t, ok)
	assert.Equal(t, VisibilityPublic, v)

	v, ok = ParseVisibility("private")
	assert.True(t, ok)
	assert.Equal(t, VisibilityPrivate, v)

	_, ok = ParseVisibility("")
	assert.False(t, ok)

	_, ok = ParseVisibility("shared")
	assert.False(t, ok)
}

func TestParseEmails(t *testing.T) {
	assert.Nil(t, ParseEmails(""))
	assert.Equal(t,
		[]string{"a@example.com", "b@example.com"},
		ParseEmails("A@example.com, b@example.com ,a@example.com"))
	assert.Equal(t, []string{"a@example.com"}, ParseEmails(",a@example.com,"))
}

func TestOwnerEditorChecks(t *testing.T) {
	p := &Project{
		Owners:  []string{"owner@example.com"},
		Editors: []string{"editor@example.com"},
	}

	assert.True(t, p.IsOwner("owner@example.com"))
	assert.False(t, p.IsOwner("editor@example.com"))
	assert.True(t, p.IsEditor("editor@example.com"))
	assert.False(t, p.IsEditor("owner@example.com"))
}
