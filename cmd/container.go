package cmd

import (
	"fmt"
	"os"

	"github.com/compozy/git-version-header/internal/config"
	"github.com/compozy/git-version-header/internal/logging"
	"github.com/compozy/git-version-header/internal/repository"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// container holds all the dependencies for the application.
type container struct {
	cfg *config.Config

	logger     *zap.Logger
	headerRepo repository.HeaderRepository
}

// newContainer loads configuration, applies flag overrides and wires the
// repositories.
func newContainer(cmd *cobra.Command, o rootOptions) (*container, error) {
	cfg, err := config.LoadConfig(o.configFile)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = o.backend
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	// Every log line of one invocation carries the same run id.
	logger = logger.With(zap.String("run_id", uuid.New().String()))

	headerRepo := repository.NewFileHeaderRepository(
		repository.FileSystemRepository(afero.NewOsFs()),
		repository.WithLockDir(os.TempDir()),
		repository.WithLockTimeout(cfg.LockTimeout),
	)

	return &container{
		cfg:        cfg,
		logger:     logger,
		headerRepo: headerRepo,
	}, nil
}

// gitRepository builds the describe source for the configured backend.
func (c *container) gitRepository() (repository.GitRepository, error) {
	c.logger.Debug("Using describe backend",
		zap.String("backend", c.cfg.Backend),
		zap.String("repo_dir", c.cfg.RepoDir))
	switch c.cfg.Backend {
	case config.BackendNative:
		return repository.NewGitRepository(c.cfg.RepoDir)
	default:
		return repository.NewExecGitRepository(c.cfg.GitBinary, c.cfg.RepoDir, c.cfg.DescribeTimeout), nil
	}
}
