package usecase

import (
	"context"
	"fmt"

	"github.com/compozy/git-version-header/internal/domain"
	"github.com/compozy/git-version-header/internal/repository"
	"go.uber.org/zap"
)

// GenerateHeaderUseCase contains the logic for writing the version header.

type GenerateHeaderUseCase struct {
	GitRepo    repository.GitRepository
	HeaderRepo repository.HeaderRepository
	Logger     *zap.Logger
}

// Execute describes the working tree and writes the header to path. Nothing
// is written when describing or parsing fails. The record is returned so the
// caller can report it.
func (uc *GenerateHeaderUseCase) Execute(ctx context.Context, path string) (*domain.VersionRecord, error) {
	describe := &DescribeUseCase{GitRepo: uc.GitRepo, Logger: uc.Logger}
	rec, err := describe.Execute(ctx)
	if err != nil {
		return nil, err
	}
	guard := domain.HeaderGuard(path)
	if err := uc.HeaderRepo.Write(ctx, path, domain.RenderHeader(guard, rec)); err != nil {
		return rec, fmt.Errorf("failed to write version header: %w", err)
	}
	if uc.Logger != nil {
		uc.Logger.Info("Version header written",
			zap.String("path", path),
			zap.String("guard", guard),
			zap.String("hash", rec.Hash))
	}
	return rec, nil
}
