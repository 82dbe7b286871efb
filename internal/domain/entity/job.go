package entity

import "time"

// JobStatus asset job lifecycle
type JobStatus string

const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobSuccess JobStatus = "success"
	JobFailed  JobStatus = "failed"
)

// Active reports whether the job still holds its product
func (s JobStatus) Active() bool {
	return s == JobQueued || s == JobRunning
}

// AssetJob queued or inline enrichment run for one product
type AssetJob struct {
	ID         string
	ProductID  int64
	Assets     []AssetType
	Force      []AssetType
	Status     JobStatus
	Message    string
	Log        []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	FinishedAt *time.Time
}

// Request rebuilds the enrichment request stored in the job
func (j AssetJob) Request() EnrichmentRequest {
	force := make(map[AssetType]bool, len(j.Force))
	for _, a := range j.Force {
		force[a] = true
	}
	return EnrichmentRequest{Assets: append([]AssetType(nil), j.Assets...), Force: force}
}

// Finish marks the job done
func (j *AssetJob) Finish(status JobStatus, message string, at time.Time) {
	j.Status = status
	j.Message = message
	j.UpdatedAt = at
	j.FinishedAt = &at
}
