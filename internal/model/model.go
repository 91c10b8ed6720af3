package model

// Package model contains domain models/data structures.
// Pure data types shared across layers (HTTP, service, repository);
// no business logic and no persistence coupling here.

// DocumentType classifies an archival document.
type DocumentType string

const (
	DocTypeLetter    DocumentType = "letter"
	DocTypeReport    DocumentType = "report"
	DocTypePhoto     DocumentType = "photo"
	DocTypeNewspaper DocumentType = "newspaper"
	DocTypeList      DocumentType = "list"
	DocTypeDiary     DocumentType = "diary_entry"
	DocTypeBook      DocumentType = "book"
	DocTypeMap       DocumentType = "map"
	DocTypeBiography DocumentType = "biography"
)

// DocumentTypes lists every accepted document type.
func DocumentTypes() []DocumentType {
	return []DocumentType{
		DocTypeLetter, DocTypeReport, DocTypePhoto, DocTypeNewspaper,
		DocTypeList, DocTypeDiary, DocTypeBook, DocTypeMap, DocTypeBiography,
	}
}

// Valid reports whether t is one of the accepted document types.
func (t DocumentType) Valid() bool {
	switch t {
	case DocTypeLetter, DocTypeReport, DocTypePhoto, DocTypeNewspaper,
		DocTypeList, DocTypeDiary, DocTypeBook, DocTypeMap, DocTypeBiography:
		return true
	}
	return false
}

// EntityType classifies a named entity extracted from a document.
type EntityType string

const (
	EntityPerson       EntityType = "person"
	EntityLocation     EntityType = "location"
	EntityOrganization EntityType = "organization"
	EntityEvent        EntityType = "event"
	EntityDate         EntityType = "date"
	EntityUnit         EntityType = "unit"
)

// EntityTypes lists every accepted entity type.
func EntityTypes() []EntityType {
	return []EntityType{
		EntityPerson, EntityLocation, EntityOrganization,
		EntityEvent, EntityDate, EntityUnit,
	}
}

// Valid reports whether t is one of the accepted entity types.
func (t EntityType) Valid() bool {
	switch t {
	case EntityPerson, EntityLocation, EntityOrganization,
		EntityEvent, EntityDate, EntityUnit:
		return true
	}
	return false
}

// JobStatus is the lifecycle state of a background processing job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
	JobCancelled  JobStatus = "cancelled"
)

// Terminal reports whether a job in this state can change state again.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobCancelled:
		return true
	}
	return false
}
