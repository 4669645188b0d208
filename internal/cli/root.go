// Package cli holds the rehearse command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/rehearse/internal/adapters/scorer"
	service "github.com/okian/rehearse/internal/app"
	"github.com/okian/rehearse/internal/config"
	"github.com/okian/rehearse/pkg/logger"
)

// globals are the persistent flags plus the loaded configuration.
type globals struct {
	logLevel  string
	logFormat string
	cfg       *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "rehearse",
		Short:         "Answer evaluation and grading engine for mock interviews",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "log format: text or json (overrides config)")

	root.AddCommand(newServeCmd(g), newGradeCmd(g), newDrillCmd(g))
	return root
}

// init loads configuration and initializes logging. Logs go to stderr so
// command output on stdout stays machine readable.
func (g *globals) init(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if g.logFormat != "" {
		cfg.LogFormat = g.logFormat
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	g.cfg = cfg
	return nil
}

// newService builds a Service from configuration. The remote scorer is
// wired only when an endpoint is configured.
func newService(cfg *config.Config) (*service.Service, error) {
	opts := []service.Option{
		service.WithLogger(logger.Get().Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithDefaultQuestionCount(cfg.DefaultQuestionCount),
		service.WithSessionTTL(cfg.SessionTTL()),
		service.WithJanitorInterval(cfg.JanitorInterval()),
		service.WithFinishTimeout(cfg.FinishTimeout()),
	}
	if cfg.RemoteScorerURL != "" {
		remote, err := scorer.New(cfg.RemoteScorerURL, scorer.WithTimeout(cfg.RemoteScorerTimeout()))
		if err != nil {
			return nil, fmt.Errorf("remote scorer: %w", err)
		}
		opts = append(opts, service.WithRemoteScorer(remote))
	}
	return service.New(opts...), nil
}
