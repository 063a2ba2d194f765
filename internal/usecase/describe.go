package usecase

import (
	"context"
	"fmt"

	"github.com/compozy/git-version-header/internal/domain"
	"github.com/compozy/git-version-header/internal/repository"
	"go.uber.org/zap"
)

// DescribeUseCase turns the working tree state into a VersionRecord.

type DescribeUseCase struct {
	GitRepo repository.GitRepository
	Logger  *zap.Logger
}

// Execute runs the use case. Describe output without a version yields an
// error matching domain.ErrDescribeParse.
func (uc *DescribeUseCase) Execute(ctx context.Context) (*domain.VersionRecord, error) {
	logger := uc.logger()
	output, err := uc.GitRepo.Describe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to describe working tree: %w", err)
	}
	logger.Debug("Describe output", zap.String("output", output))
	rec, err := domain.ParseDescribe(output)
	if err != nil {
		return nil, err
	}
	logger.Debug("Parsed version record",
		zap.Uint64("major", rec.Major),
		zap.Uint64("minor", rec.Minor),
		zap.Uint64("micro", rec.Micro),
		zap.Uint64("commits_past_head", rec.CommitsPastHead),
		zap.String("hash", rec.Hash),
		zap.Bool("dirty", rec.Dirty()))
	return rec, nil
}

func (uc *DescribeUseCase) logger() *zap.Logger {
	if uc.Logger == nil {
		return zap.NewNop()
	}
	return uc.Logger
}
