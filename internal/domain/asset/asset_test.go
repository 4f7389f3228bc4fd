package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "annotation-service/pkg/errors"
)

func TestCheckUploadTypeImage(t *testing.T) {
	ext, err := CheckUploadType(KindImage, "photo.JPG", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "jpg", ext)

	// Extension alone is enough when the MIME type is unknown.
	ext, err = CheckUploadType(KindImage, "photo.webp", "application/octet-stream")
	require.NoError(t, err)
	assert.Equal(t, "webp", ext)

	// MIME type alone is enough when the filename has no usable extension.
	_, err = CheckUploadType(KindImage, "photo", "image/png")
	assert.NoError(t, err)

	_, err = CheckUploadType(KindImage, "archive.zip", "application/zip")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestCheckUploadTypeMaskIsPNGOnly(t *testing.T) {
	ext, err := CheckUploadType(KindMask, "layer.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "png", ext)

	_, err = CheckUploadType(KindMask, "layer.jpg", "image/jpeg")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = CheckUploadType(KindMask, "layer.gif", "image/gif")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestParseTags(t *testing.T) {
	assert.Nil(t, ParseTags(""))
	assert.Equal(t, []string{"bird", "small"}, ParseTags("Bird, small , BIRD"))
	assert.Equal(t, []string{"one"}, ParseTags(",one,,"))
}
