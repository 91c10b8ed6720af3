package model

import "time"

// ProcessingJob tracks one background analysis through its lifecycle.
// Jobs are held in memory only; they disappear on restart and are removed
// by the retention sweep. Progress only ever moves forward.
type ProcessingJob struct {
	ID        string          `json:"id"`
	FileID    string          `json:"file_id"`
	Status    JobStatus       `json:"status"`
	Progress  int             `json:"progress"`
	Result    *AnalysisResult `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
