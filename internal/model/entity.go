package model

import "time"

// Entity is a named thing mentioned by documents: a person, a place, an
// organization, an event, a calendar date or a military unit. Entities are
// shared across documents and deduplicated case-insensitively by
// (name, entity_type). DateValue is populated only for date entities whose
// name parses as a date.
type Entity struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	EntityType EntityType `json:"entity_type"`
	DateValue  *time.Time `json:"date_value,omitempty"`
	Documents  []Document `json:"documents,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
