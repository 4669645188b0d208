package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/okian/rehearse/internal/drill"
)

func newDrillCmd(_ *globals) *cobra.Command {
	cfg := drill.DefaultConfig()
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Replay synthetic interviews against a running service",
		Example: `  rehearse drill --url http://localhost:9080 --sessions 500 --workers 32
  rehearse drill --role security --questions 3 --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := drill.NewRunner(cfg)
			if err != nil {
				return err
			}
			stats, err := r.Run(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(stats)
			}
			return drill.Report(cmd.OutOrStdout(), stats)
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "base URL of the service")
	f.IntVar(&cfg.Sessions, "sessions", cfg.Sessions, "number of interviews")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent interviews")
	f.IntVar(&cfg.Questions, "questions", cfg.Questions, "questions per interview, 0 for the server default")
	f.StringVar(&cfg.Role, "role", cfg.Role, "role to drill, empty rotates through all roles")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	f.IntVar(&cfg.DuplicateEvery, "duplicate-every", cfg.DuplicateEvery, "resubmit every Nth answer id, 0 disables")
	f.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "seed for answer selection")
	f.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "log every interview")
	f.BoolVar(&asJSON, "json", false, "print statistics as JSON")
	return cmd
}
