// Package qjob submits jobs to the Tripal job queue and follows them to a
// terminal state.
package qjob

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/quatton/qtripal/pkg/qargs"
)

// Status is the state string reported by the Tripal job queue.
type Status string

const (
	StatusWaiting   Status = "Waiting"
	StatusRunning   Status = "Running"
	StatusCompleted Status = "Completed"
	StatusError     Status = "Error"
	StatusCancelled Status = "Cancelled"
)

// Terminal reports whether no further transitions are expected.
// Comparison is case-insensitive because Tripal 2 and 3 disagree on casing.
func (s Status) Terminal() bool {
	switch Status(strings.ToLower(string(s))) {
	case "completed", "error", "cancelled":
		return true
	}
	return false
}

// ID is a job identifier. The site may encode it as a JSON string or number.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("job id must be a string or number: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("job id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Request describes a job to be queued.
type Request struct {
	Name      string          `json:"job"`
	Module    string          `json:"module"`
	Callback  string          `json:"callback"`
	Arguments qargs.Arguments `json:"arguments"`
}

// Submission is the reply to a job/add call. Raw keeps every field the site
// returned so callers that asked not to wait can see the full response.
// Body holds the reply verbatim when it was not a JSON object.
type Submission struct {
	JobID ID
	Raw   map[string]json.RawMessage
	Body  json.RawMessage
}

// UnmarshalJSON never fails on well-formed JSON. A reply that is not an
// object, or whose job_id is false, 0, "", null or not a scalar, leaves
// JobID empty so the caller can report the submission as failed.
func (s *Submission) UnmarshalJSON(data []byte) error {
	*s = Submission{}
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		if !json.Valid(data) {
			return err
		}
		s.Body = append(json.RawMessage(nil), data...)
		return nil
	}
	s.Raw = raw
	s.JobID = usableID(raw["job_id"])
	return nil
}

// usableID decodes a job id, mapping anything the site would not accept as
// a job reference to "".
func usableID(data json.RawMessage) ID {
	var id ID
	if len(data) == 0 || json.Unmarshal(data, &id) != nil {
		return ""
	}
	if data[0] != '"' {
		if f, err := strconv.ParseFloat(string(id), 64); err == nil && f == 0 {
			return ""
		}
	}
	return id
}

func (s Submission) MarshalJSON() ([]byte, error) {
	switch {
	case s.Raw != nil:
		return json.Marshal(s.Raw)
	case s.Body != nil:
		return s.Body, nil
	}
	return json.Marshal(map[string]ID{"job_id": s.JobID})
}

// Job is a queued or finished job as reported by job/view.
type Job struct {
	ID         ID              `json:"job_id"`
	Name       string          `json:"job_name"`
	Module     string          `json:"modulename"`
	Callback   string          `json:"callback"`
	Arguments  json.RawMessage `json:"arguments,omitempty"`
	Status     Status          `json:"status"`
	SubmitDate string          `json:"submit_date,omitempty"`
	StartTime  string          `json:"start_time,omitempty"`
	EndTime    string          `json:"end_time,omitempty"`
	Progress   json.RawMessage `json:"progress,omitempty"`
	ErrorMsg   string          `json:"error_msg,omitempty"`
}

// Service is the job collaborator used by the submission facade.
type Service interface {
	// Add queues a new job.
	Add(ctx context.Context, req Request) (*Submission, error)

	// Get retrieves the current state of a job.
	Get(ctx context.Context, id ID) (*Job, error)

	// Run asks the site to launch queued jobs.
	Run(ctx context.Context) error

	// Wait blocks until the job reaches a terminal status.
	Wait(ctx context.Context, id ID) (*Job, error)
}

// RunAndWait optionally triggers the queue and then waits for the job.
func RunAndWait(ctx context.Context, svc Service, id ID, runQueue bool) (*Job, error) {
	if runQueue {
		if err := svc.Run(ctx); err != nil {
			return nil, fmt.Errorf("running job queue: %w", err)
		}
	}
	return svc.Wait(ctx, id)
}
