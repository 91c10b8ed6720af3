package repository

import "errors"

// Package repository contains data access layer abstractions.
// Implementations can live in subpackages (e.g., postgres) inside this directory.

// ErrDuplicateEntity reports that an insert hit the case-insensitive
// (name, entity_type) uniqueness constraint, meaning a concurrent writer
// created the row first. The caller's transaction stays usable.
var ErrDuplicateEntity = errors.New("entity already exists")

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
