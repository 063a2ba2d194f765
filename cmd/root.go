package cmd

import (
	"errors"
	"fmt"

	"github.com/compozy/git-version-header/internal/config"
	"github.com/compozy/git-version-header/internal/domain"
	"github.com/compozy/git-version-header/internal/usecase"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
	backend    string
	logLevel   string
	quiet      bool
}

var rootCmd *cobra.Command

// newRootCmd builds the command tree. The container is created once flags
// are parsed and handed to subcommands through deps.
func newRootCmd() *cobra.Command {
	var (
		opts rootOptions
		app  *container
	)
	deps := func() *container { return app }
	cmd := &cobra.Command{
		Use:   "git-version-header FILENAME",
		Short: "Generate a C header with the current git version",
		Long: `git-version-header runs "git describe --dirty --tags --long", parses the nearest
MAJOR.MINOR.MICRO tag, the commits past it and the short hash, and writes them
as GIT_* macros into a C header guarded by #ifndef/#define/#endif.

Any commit past the tag marks the build dirty and appends "+dirty" to the hash.`,
		Args:          validateHeaderArgs,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newContainer(cmd, opts)
			if err != nil {
				return err
			}
			app = c
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			gitRepo, err := app.gitRepository()
			if err != nil {
				return err
			}
			uc := &usecase.GenerateHeaderUseCase{
				GitRepo:    gitRepo,
				HeaderRepo: app.headerRepo,
				Logger:     app.logger,
			}
			rec, err := uc.Execute(cmd.Context(), args[0])
			if errors.Is(err, domain.ErrDescribeParse) {
				return fmt.Errorf("failed to get git description: %w", err)
			}
			if rec != nil && !opts.quiet {
				if printErr := printRecord(cmd.OutOrStdout(), rec, outputText); printErr != nil && err == nil {
					err = printErr
				}
			}
			return err
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "config file (default .git-version-header.yaml)")
	pf.StringVar(&opts.backend, "backend", config.BackendExec, "describe backend: exec or native")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the version record")

	cmd.AddCommand(newDescribeCmd(deps))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// validateHeaderArgs requires exactly one output path.
func validateHeaderArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("invalid number of arguments. Usage: %s FILENAME", cmd.Root().Name())
	}
	return nil
}

// InitCommands initializes all commands with their flags
func InitCommands() error {
	rootCmd = newRootCmd()
	return nil
}

func Execute() error {
	return rootCmd.Execute()
}
