package runstore

import "time"

// Status tracks the lifecycle of a run or a per-file item inside it.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run is one invocation of the enrichment pipeline over a set of input files.
type Run struct {
	ID            string
	Status        Status
	ChunkSize     int
	Workers       int
	ContentFields []string
	ErrorMessage  string
	StartedAt     time.Time
	FinishedAt    *time.Time
}

// Item is one input file inside a run.
type Item struct {
	ID           int64
	RunID        string
	InputPath    string
	OutputPath   string
	Status       Status
	Records      int
	Chunks       int
	Skipped      int
	ErrorMessage string
	StartedAt    *time.Time
	FinishedAt   *time.Time
}

// Duration reports how long the item was in flight, or zero when it never
// started or never finished.
func (i *Item) Duration() time.Duration {
	if i.StartedAt == nil || i.FinishedAt == nil {
		return 0
	}
	return i.FinishedAt.Sub(*i.StartedAt)
}

// Summary aggregates item counts for a run.
type Summary struct {
	Total     int
	Pending   int
	Running   int
	Completed int
	Failed    int
}
