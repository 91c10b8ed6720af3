package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/png"
	"mime"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"archivedoc/internal/model"
)

// Image is an analyzable rendition of a stored file. Transcoded reports
// whether the bytes were re-encoded rather than passed through.
type Image struct {
	MIME       string
	Data       []byte
	Transcoded bool
}

// Converter turns stored file content into a rendition the classifier
// accepts. Implementations are pure and safe for concurrent use.
type Converter interface {
	Convert(content []byte, mimeType string) (Image, error)
}

type converter struct{}

// NewConverter returns the default converter. PNG, JPEG, WebP and PDF pass
// through untouched; TIFF, BMP and GIF re-encode as PNG; anything else is
// rejected with a model.ConversionError.
func NewConverter() Converter { return converter{} }

func (converter) Convert(content []byte, mimeType string) (Image, error) {
	mt := normalizeMIME(mimeType)

	if len(content) == 0 {
		return Image{}, &model.ConversionError{MIME: mt, Err: errors.New("empty content")}
	}

	switch mt {
	case "image/png", "image/jpeg", "image/webp", "application/pdf":
		return Image{MIME: mt, Data: content}, nil
	case "image/tiff", "image/bmp", "image/gif":
		img, err := decode(content, mt)
		if err != nil {
			return Image{}, &model.ConversionError{MIME: mt, Err: err}
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return Image{}, &model.ConversionError{MIME: mt, Err: fmt.Errorf("encode png: %w", err)}
		}
		return Image{MIME: "image/png", Data: buf.Bytes(), Transcoded: true}, nil
	default:
		return Image{}, &model.ConversionError{MIME: mimeType}
	}
}

func decode(content []byte, mt string) (image.Image, error) {
	r := bytes.NewReader(content)
	switch mt {
	case "image/tiff":
		return tiff.Decode(r)
	case "image/bmp":
		return bmp.Decode(r)
	case "image/gif":
		return gif.Decode(r)
	}
	return nil, fmt.Errorf("no decoder for %s", mt)
}

// normalizeMIME strips parameters like "; charset=binary" and folds the
// common jpg alias.
func normalizeMIME(mimeType string) string {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(mimeType))
	}
	if mt == "image/jpg" {
		return "image/jpeg"
	}
	return mt
}
