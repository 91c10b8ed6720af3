package cache

import "fmt"

// Key builders for the families used by the analysis pipeline. Analysis
// results and converted images live in separate Cache instances, but the
// prefixes keep the families distinct even in a shared namespace.

// AnalysisKey is the cache key for a file's analysis result.
func AnalysisKey(fileID string) string {
	return fmt.Sprintf("analysis_%s", fileID)
}

// ImageKey is the cache key for one converted rendition of a file. Distinct
// source MIME types yield distinct keys.
func ImageKey(fileID, mimeType string) string {
	return fmt.Sprintf("image_%s_%s", fileID, mimeType)
}
