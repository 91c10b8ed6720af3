package ai

import (
	"fmt"
	"strings"

	"archivedoc/internal/model"
)

// classificationPrompt instructs the model to classify an archival scan and
// extract named entities as strict JSON. The type lists are generated from
// the domain enums so prompt and validation cannot drift apart.
func classificationPrompt() string {
	docTypes := make([]string, 0, len(model.DocumentTypes()))
	for _, t := range model.DocumentTypes() {
		docTypes = append(docTypes, string(t))
	}
	entityTypes := make([]string, 0, len(model.EntityTypes()))
	for _, t := range model.EntityTypes() {
		entityTypes = append(entityTypes, string(t))
	}

	return fmt.Sprintf(`You are an archivist analyzing a scan of a historical document.

Respond with a single JSON object and nothing else, matching this schema exactly:
{
  "document_type": "<one of: %s>",
  "title": "<short descriptive title>",
  "content": "<full transcription, or a detailed description if the document is an image>",
  "entities": [
    {"name": "<entity name>", "type": "<one of: %s>"}
  ]
}

Rules:
- document_type and every entity type must come from the lists above.
- Transcribe text in its original language; do not translate.
- Name date entities in a form like "1943-02-11", "11 February 1943" or "February 1943".
- Include military units (regiments, divisions, squadrons) as type "unit".
- Do not wrap the JSON in markdown fences and do not add commentary.`,
		strings.Join(docTypes, ", "), strings.Join(entityTypes, ", "))
}
