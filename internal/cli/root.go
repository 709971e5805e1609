package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ysh4me/bibliotheque-interactif/internal/config"
	"github.com/ysh4me/bibliotheque-interactif/internal/entrypoint"
	"github.com/ysh4me/bibliotheque-interactif/internal/logging"
)

// runtime is filled by the root command before any subcommand runs.
type runtime struct {
	version string
	cfg     *config.Config
	logger  *zap.Logger
}

func (r *runtime) open() (*entrypoint.App, error) {
	return entrypoint.Open(r.cfg, r.version, r.logger)
}

// NewRootCommand builds the bibliotheque command tree. Without a
// subcommand it serves the HTTP API.
func NewRootCommand(version string) *cobra.Command {
	rt := &runtime{version: version}

	root := &cobra.Command{
		Use:           "bibliotheque",
		Short:         "Personal reading library organised in four collections",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			rt.cfg = config.NewConfig()
			logger, err := logging.New(rt.cfg.Log.Level, rt.cfg.Log.Development)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			rt.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(rt.cfg, rt.version, rt.logger)
		},
	}

	root.AddCommand(
		newServeCommand(rt),
		newExportCommand(rt),
		newImportCommand(rt),
		newStatsCommand(rt),
		newResetCommand(rt),
	)
	return root
}

func newServeCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(rt.cfg, rt.version, rt.logger)
		},
	}
}
