package checker

import "fmt"

// Status is the outcome kind of a check.
type Status int

const (
	StatusNotFound Status = iota
	StatusMigrated
	StatusPendingReview
)

func (s Status) String() string {
	switch s {
	case StatusMigrated:
		return "migrated"
	case StatusPendingReview:
		return "pending_review"
	default:
		return "not_found"
	}
}

// Result is the outcome of checking one add-on.
type Result struct {
	Status    Status
	Branch    string // set for StatusMigrated
	ReviewURL string // set for StatusPendingReview
	// Cause explains a StatusNotFound that came from a failure rather than a
	// clean miss. It is logged, never rendered.
	Cause error
}

// Migrated returns a result for an add-on present on branch.
func Migrated(branch string) Result {
	return Result{Status: StatusMigrated, Branch: branch}
}

// PendingReview returns a result for an add-on found in an open pull request.
func PendingReview(url string) Result {
	return Result{Status: StatusPendingReview, ReviewURL: url}
}

// NotFound returns a result for an add-on found nowhere. cause may be nil.
func NotFound(cause error) Result {
	return Result{Status: StatusNotFound, Cause: cause}
}

// Message renders the status text written to the output spreadsheet.
func (r Result) Message() string {
	switch r.Status {
	case StatusMigrated:
		return fmt.Sprintf("Add-on migrated on %s.", r.Branch)
	case StatusPendingReview:
		return "PR: " + r.ReviewURL
	default:
		return "Repository or add-on not found, review manually."
	}
}
