package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sony/gobreaker"
	"google.golang.org/api/option"

	"archivedoc/internal/config"
	"archivedoc/internal/imaging"
)

// ErrCircuitOpen is returned while the circuit breaker rejects classifier
// calls to keep a failing upstream from cascading.
var ErrCircuitOpen = errors.New("classifier circuit breaker is open")

// GeminiClassifier implements Classifier using the official Gemini SDK.
// All calls pass through a circuit breaker: after three consecutive upstream
// failures the breaker opens for 30 seconds, then lets two probe requests
// through before closing again.
type GeminiClassifier struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	breaker *gobreaker.CircuitBreaker
}

// NewGemini creates a Gemini-backed classifier.
func NewGemini(ctx context.Context, cfg config.GeminiConfig) (*GeminiClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = "gemini-3-flash-preview"
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 2,
		Interval:    0, // don't clear counts periodically
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &GeminiClassifier{
		client:  client,
		model:   client.GenerativeModel(modelName),
		breaker: breaker,
	}, nil
}

// Close closes the underlying client connection.
func (c *GeminiClassifier) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Classify sends the image and the extraction prompt to Gemini and returns
// the raw response text.
func (c *GeminiClassifier) Classify(ctx context.Context, img imaging.Image) (string, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := c.model.GenerateContent(ctx,
			genai.Blob{MIMEType: img.MIME, Data: img.Data},
			genai.Text(classificationPrompt()),
		)
		if err != nil {
			return nil, fmt.Errorf("gemini generation error: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return nil, fmt.Errorf("empty response from gemini")
		}

		var fullText string
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				fullText += string(txt)
			}
		}
		return fullText, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", ErrCircuitOpen
		}
		return "", err
	}
	return out.(string), nil
}

var _ Classifier = (*GeminiClassifier)(nil)
