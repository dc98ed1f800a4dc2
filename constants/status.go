package constants

// JobStatus is the outcome of one render job in a batch.
type JobStatus string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRendered JobStatus = "RENDERED"
	JobStatusNotFound JobStatus = "NOT_FOUND" // template, background or record missing
	JobStatusFailed   JobStatus = "FAILED"
)
