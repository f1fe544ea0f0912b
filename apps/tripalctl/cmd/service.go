package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quatton/qtripal/pkg/expression"
	"github.com/quatton/qtripal/pkg/kv"
	"github.com/quatton/qtripal/pkg/qjob"
	"github.com/quatton/qtripal/pkg/qsdk"
	"github.com/spf13/cobra"
)

// Service bundles everything a command needs to talk to the site.
type Service struct {
	Config     *qsdk.Config
	Sdk        *qsdk.Sdk
	Jobs       *qjob.HTTPService
	Expression *expression.Client
	Cache      kv.Store
	Logger     *slog.Logger
}

// NewService wires the SDK, the job service and the expression facade from
// cfg. A Valkey cache is attached when cache.addr is configured.
func NewService(ctx context.Context, cfg *qsdk.Config, logger *slog.Logger) (*Service, error) {
	sdk, err := qsdk.NewSdk(cfg, logger)
	if err != nil {
		return nil, err
	}

	jobs := qjob.NewHTTPService(sdk.Client,
		qjob.WithPollInterval(cfg.PollInterval),
		qjob.WithLogger(logger),
	)

	svc := &Service{
		Config: cfg,
		Sdk:    sdk,
		Jobs:   jobs,
		Logger: logger,
	}

	opts := []expression.Option{
		expression.WithVersion(cfg.Version),
		expression.WithRunJobs(cfg.RunJobs),
		expression.WithLogger(logger),
	}
	if cfg.Cache.Addr != "" {
		store, err := kv.NewValkeyStore(ctx, kv.ValkeyConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			Prefix:   fmt.Sprintf("qtripal:%s:%s:", cfg.BaseURL, cfg.User),
		})
		if err != nil {
			// Listing still works without the cache, just slower.
			logger.Warn("biomaterial cache disabled", "addr", cfg.Cache.Addr, "error", err)
		} else {
			svc.Cache = store
			opts = append(opts, expression.WithCache(store, cfg.Cache.TTL))
		}
	}

	svc.Expression = expression.New(sdk.Client, jobs, opts...)
	return svc, nil
}

// Close releases the cache connection, if any.
func (s *Service) Close() error {
	if s == nil || s.Cache == nil {
		return nil
	}
	return s.Cache.Close()
}

// commandContext bounds a command by the --timeout flag.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), timeout)
}
