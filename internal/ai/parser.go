package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"archivedoc/internal/model"
)

// Classification is the parsed form of a classifier response.
type Classification struct {
	DocumentType model.DocumentType
	Title        string
	Content      string
	Entities     []model.ExtractedEntity
}

// classificationResponse mirrors the JSON the model is instructed to return.
type classificationResponse struct {
	DocumentType string `json:"document_type"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Entities     []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"entities"`
}

// ParseClassification turns a raw model response into a Classification.
// Malformed JSON, a missing or unknown document type, and empty content fail
// with model.ParseError. A missing title falls back to fallbackTitle.
// Extracted entities with empty names or unknown types are skipped rather
// than failing the batch.
func ParseClassification(raw, fallbackTitle string) (*Classification, error) {
	clean := extractJSON(raw)

	var resp classificationResponse
	if err := json.Unmarshal([]byte(clean), &resp); err != nil {
		return nil, &model.ParseError{Err: fmt.Errorf("malformed classification JSON: %w", err)}
	}

	docType := model.DocumentType(strings.ToLower(strings.TrimSpace(resp.DocumentType)))
	if !docType.Valid() {
		return nil, &model.ParseError{Err: fmt.Errorf("invalid document type %q", resp.DocumentType)}
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return nil, &model.ParseError{Err: errors.New("empty content")}
	}

	title := strings.TrimSpace(resp.Title)
	if title == "" {
		title = fallbackTitle
	}

	entities := make([]model.ExtractedEntity, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		name := strings.TrimSpace(e.Name)
		typ := model.EntityType(strings.ToLower(strings.TrimSpace(e.Type)))
		if name == "" || !typ.Valid() {
			log.Printf("ai: skipping extracted entity %q with unknown type %q", e.Name, e.Type)
			continue
		}
		entities = append(entities, model.ExtractedEntity{Name: name, Type: typ})
	}

	return &Classification{
		DocumentType: docType,
		Title:        title,
		Content:      content,
		Entities:     entities,
	}, nil
}

// extractJSON extracts the first complete JSON object from a string that may
// contain extra text. This handles models that add markdown fences or
// explanations around the JSON despite instructions.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return text // no JSON found, let the parser fail
	}

	braceCount := 0
	inString := false
	escape := false

	for i := start; i < len(text); i++ {
		char := text[i]

		if escape {
			escape = false
			continue
		}
		if char == '\\' {
			escape = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}

		// Only count braces outside of strings.
		if !inString {
			switch char {
			case '{':
				braceCount++
			case '}':
				braceCount--
				if braceCount == 0 {
					return text[start : i+1]
				}
			}
		}
	}

	return text // no complete JSON found, return as-is
}
