package ai

import (
	"context"

	"archivedoc/internal/imaging"
)

// Classifier sends an analyzable image to a vision model and returns the
// model's raw textual answer. Parsing happens separately (ParseClassification)
// so model backends stay interchangeable.
type Classifier interface {
	Classify(ctx context.Context, img imaging.Image) (string, error)
}
