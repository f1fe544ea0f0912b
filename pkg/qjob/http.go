package qjob

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quatton/qtripal/pkg/qsdk"
	"github.com/quatton/qtripal/pkg/qsdk/qerr"
)

const (
	addPath  = "job/add"
	viewPath = "job/view"
	runPath  = "job/run"

	DefaultPollInterval = time.Second
)

// HTTPService implements Service over the tripal_api job endpoints.
type HTTPService struct {
	requester    qsdk.Requester
	pollInterval time.Duration
	logger       *slog.Logger
}

// HTTPServiceOption configures an HTTPService
type HTTPServiceOption func(*HTTPService)

// WithPollInterval sets how often Wait polls job/view.
func WithPollInterval(d time.Duration) HTTPServiceOption {
	return func(s *HTTPService) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithLogger sets the logger used for job progress.
func WithLogger(logger *slog.Logger) HTTPServiceOption {
	return func(s *HTTPService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewHTTPService(requester qsdk.Requester, opts ...HTTPServiceOption) *HTTPService {
	s := &HTTPService{
		requester:    requester,
		pollInterval: DefaultPollInterval,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *HTTPService) Add(ctx context.Context, req Request) (*Submission, error) {
	var sub Submission
	if err := s.requester.Request(ctx, addPath, req, &sub); err != nil {
		return nil, err
	}
	s.logger.Debug("job added", "job", req.Name, "callback", req.Callback, "job_id", sub.JobID)
	return &sub, nil
}

func (s *HTTPService) Get(ctx context.Context, id ID) (*Job, error) {
	var job Job
	if err := s.requester.Request(ctx, viewPath, map[string]ID{"job_id": id}, &job); err != nil {
		return nil, err
	}
	if job.ID == "" {
		return nil, qerr.Errorf(qerr.CodeRemote, "job %s not found", id)
	}
	return &job, nil
}

func (s *HTTPService) Run(ctx context.Context) error {
	return s.requester.Request(ctx, runPath, map[string]string{}, nil)
}

func (s *HTTPService) Wait(ctx context.Context, id ID) (*Job, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// If already finished, return immediately
	if job.Status.Terminal() {
		return job, nil
	}

	// Poll for completion
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	last := job.Status
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for job %s: %w", id, ctx.Err())
		case <-ticker.C:
			job, err := s.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			if job.Status != last {
				s.logger.Info("job status", "job_id", id, "status", job.Status)
				last = job.Status
			}
			if job.Status.Terminal() {
				return job, nil
			}
		}
	}
}

// Ensure HTTPService implements Service.
var _ Service = (*HTTPService)(nil)
