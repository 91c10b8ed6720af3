package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"archivedoc/internal/model"
)

func testImage(t *testing.T) image.Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(t)))
	return buf.Bytes()
}

func TestConvertPassThrough(t *testing.T) {
	c := NewConverter()
	data := encodePNG(t)

	tests := []struct {
		name string
		mime string
		want string
	}{
		{"png", "image/png", "image/png"},
		{"jpeg", "image/jpeg", "image/jpeg"},
		{"jpg alias", "image/jpg", "image/jpeg"},
		{"mime with params", "image/png; charset=binary", "image/png"},
		{"webp", "image/webp", "image/webp"},
		{"pdf", "application/pdf", "application/pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Convert(data, tt.mime)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.MIME)
			assert.Equal(t, data, got.Data, "pass-through keeps bytes untouched")
			assert.False(t, got.Transcoded)
		})
	}
}

func TestConvertTranscodesToPNG(t *testing.T) {
	c := NewConverter()

	var tiffBuf bytes.Buffer
	require.NoError(t, tiff.Encode(&tiffBuf, testImage(t), nil))
	var bmpBuf bytes.Buffer
	require.NoError(t, bmp.Encode(&bmpBuf, testImage(t)))
	var gifBuf bytes.Buffer
	require.NoError(t, gif.Encode(&gifBuf, testImage(t), nil))

	tests := []struct {
		name string
		mime string
		data []byte
	}{
		{"tiff", "image/tiff", tiffBuf.Bytes()},
		{"bmp", "image/bmp", bmpBuf.Bytes()},
		{"gif", "image/gif", gifBuf.Bytes()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Convert(tt.data, tt.mime)
			require.NoError(t, err)
			assert.Equal(t, "image/png", got.MIME)
			assert.True(t, got.Transcoded)

			decoded, err := png.Decode(bytes.NewReader(got.Data))
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 4, 4), decoded.Bounds())
		})
	}
}

func TestConvertUnsupportedType(t *testing.T) {
	c := NewConverter()

	_, err := c.Convert([]byte("PK\x03\x04"), "application/zip")
	var convErr *model.ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, "application/zip", convErr.MIME)
}

func TestConvertCorruptImage(t *testing.T) {
	c := NewConverter()

	_, err := c.Convert([]byte("definitely not a tiff"), "image/tiff")
	var convErr *model.ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, "image/tiff", convErr.MIME)
	assert.Error(t, convErr.Err)
}

func TestConvertEmptyContent(t *testing.T) {
	c := NewConverter()

	_, err := c.Convert(nil, "image/png")
	var convErr *model.ConversionError
	require.True(t, errors.As(err, &convErr))
}
