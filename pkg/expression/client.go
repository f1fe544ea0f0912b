// Package expression submits expression-loading and biomaterial jobs to a
// Tripal site. Each operation validates its parameters, builds the argument
// list expected by the remote PHP callback, queues the job and, unless told
// not to, blocks until the job queue reports a terminal status.
package expression

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/quatton/qtripal/pkg/kv"
	"github.com/quatton/qtripal/pkg/qjob"
	"github.com/quatton/qtripal/pkg/qsdk"
	"github.com/quatton/qtripal/pkg/qsdk/qerr"
)

// Remote job modules and callbacks.
const (
	ModuleAnalysisExpression = "tripal_analysis_expression"
	ModuleBiomaterial        = "tripal_biomaterial"
	ModuleChadoBiomaterial   = "chado_biomaterial"

	CallbackExpressionLoader   = "tripal_expression_loader"
	CallbackXMLBiomaterial     = "xml_biomaterial_parser"
	CallbackFlatBiomaterial    = "flat_biomaterial_parser"
	CallbackDeleteBiomaterials = "tripal_biomaterial_delete_biomaterials"
	CallbackSyncRecords        = "chado_node_sync_records"
)

// Client is the submission facade for expression and biomaterial jobs.
type Client struct {
	requester qsdk.Requester
	jobs      qjob.Service
	version   int
	runJobs   bool
	cache     kv.Store
	cacheTTL  time.Duration
	validate  *validator.Validate
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithVersion sets the major Tripal version of the site (2 or 3).
func WithVersion(version int) Option {
	return func(c *Client) {
		c.version = version
	}
}

// WithRunJobs controls whether waiting operations trigger the job queue
// before polling.
func WithRunJobs(run bool) Option {
	return func(c *Client) {
		c.runJobs = run
	}
}

// WithCache caches the unfiltered biomaterial list in store for ttl.
func WithCache(store kv.Store, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a Client bound to a request collaborator and a job service.
func New(requester qsdk.Requester, jobs qjob.Service, opts ...Option) *Client {
	c := &Client{
		requester: requester,
		jobs:      jobs,
		version:   3,
		runJobs:   true,
		validate:  newValidator(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is what every submitting operation returns. Job is nil when the
// caller asked not to wait.
type Result struct {
	Submission *qjob.Submission `json:"submission"`
	Job        *qjob.Job        `json:"job,omitempty"`
}

func (c *Client) submit(ctx context.Context, req qjob.Request, noWait bool) (*Result, error) {
	res, err := c.queue(ctx, req, noWait)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// queue adds req to the job queue and, unless noWait, waits for it. When the
// job was queued but waiting failed, the partial Result is returned with the
// error so callers can still act on the queued job.
func (c *Client) queue(ctx context.Context, req qjob.Request, noWait bool) (*Result, error) {
	sub, err := c.jobs.Add(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("submitting %q: %w", req.Name, err)
	}
	if sub == nil || sub.JobID == "" {
		received := "null"
		if sub != nil {
			if raw, err := json.Marshal(sub); err == nil {
				received = string(raw)
			}
		}
		return nil, qerr.Errorf(qerr.CodeSubmissionFailed, "failed to create job %q, received %s", req.Name, received)
	}

	c.logger.Info("job submitted", "job", req.Name, "job_id", sub.JobID)

	res := &Result{Submission: sub}
	if noWait {
		return res, nil
	}

	job, err := qjob.RunAndWait(ctx, c.jobs, sub.JobID, c.runJobs)
	if err != nil {
		return res, fmt.Errorf("job %s: %w", sub.JobID, err)
	}
	res.Job = job
	return res, nil
}
