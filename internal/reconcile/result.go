package reconcile

import (
	"time"
)

// State is the last step an entity sync reached.
type State string

const (
	StateStart        State = "START"
	StateIDsResolved  State = "IDS_RESOLVED"
	StateDiffComputed State = "DIFF_COMPUTED"
	StateFetched      State = "FETCHED"
	StateInserted     State = "INSERTED"
	StateCommitted    State = "COMMITTED"
	StateVerified     State = "VERIFIED"
)

// Status is the outcome of an entity sync.
type Status string

const (
	StatusConverged Status = "CONVERGED"
	StatusMismatch  Status = "MISMATCH"
	StatusFailed    Status = "FAILED"
	StatusDryRun    Status = "DRY_RUN"
)

// Result reports one entity sync. Counts stay zero for steps that never ran.
type Result struct {
	Entity            string
	SourceCount       int
	TargetCountBefore int
	MissingCount      int
	FetchedCount      int
	InsertedCount     int
	TargetCountAfter  int
	State             State
	Status            Status
	Err               error
	Elapsed           time.Duration
}

// Converged reports whether the post-commit target count equals the source count.
func (r Result) Converged() bool { return r.Status == StatusConverged }

// OK reports whether the result counts as success for the process exit status.
func (r Result) OK() bool {
	return r.Status == StatusConverged || r.Status == StatusDryRun
}

// Report aggregates the results of one run.
type Report struct {
	Results  []Result
	Started  time.Time
	Finished time.Time
}

// Succeeded is true when every entity converged (or was only inspected in dry-run mode).
func (r Report) Succeeded() bool {
	for _, res := range r.Results {
		if !res.OK() {
			return false
		}
	}
	return true
}
