package models

// Placeholder strings served in place of the task list when storage cannot be
// read. They are returned as ordinary list elements, not as errors.
const (
	NotFoundPlaceholder  = "Dosya Bulunamadı."
	CorruptedPlaceholder = "Dosya Hatası Mevcut."
)

// Sentinel records why a LoadResult carries a placeholder instead of stored data.
type Sentinel string

const (
	SentinelNone      Sentinel = ""
	SentinelNotFound  Sentinel = "not_found"
	SentinelCorrupted Sentinel = "corrupted"
)

// TaskList is the ordered task collection. Elements are whatever the storage
// decoded; tasks written through the API are always strings.
type TaskList []any

// LoadResult is either the stored task list or a one-element placeholder list.
type LoadResult struct {
	Tasks    TaskList
	Sentinel Sentinel
}

// IsPlaceholder reports whether Tasks holds a sentinel placeholder.
func (r *LoadResult) IsPlaceholder() bool {
	return r.Sentinel != SentinelNone
}

// NotFoundResult is the load result for storage that does not exist.
func NotFoundResult() *LoadResult {
	return &LoadResult{Tasks: TaskList{NotFoundPlaceholder}, Sentinel: SentinelNotFound}
}

// CorruptedResult is the load result for storage that does not hold a JSON array.
func CorruptedResult() *LoadResult {
	return &LoadResult{Tasks: TaskList{CorruptedPlaceholder}, Sentinel: SentinelCorrupted}
}

// TaskRequest is the payload for POST /tasks and PUT /tasks/{id}.
type TaskRequest struct {
	Task string `json:"task"`
}

// TaskResponse echoes the stored, replaced, or removed task.
type TaskResponse struct {
	Task any `json:"task"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServiceCheck is the status of a single dependency.
type ServiceCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the payload for GET /health.
type HealthResponse struct {
	Status  string       `json:"status"`
	Backend string       `json:"backend"`
	Store   ServiceCheck `json:"store"`
}
