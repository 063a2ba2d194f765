package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/compozy/git-version-header/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDescribeUseCase_Execute(t *testing.T) {
	t.Run("Should parse the describe output", func(t *testing.T) {
		gitRepo := new(mockGitRepository)
		uc := &DescribeUseCase{GitRepo: gitRepo, Logger: zap.NewNop()}
		ctx := context.Background()
		gitRepo.On("Describe", ctx).Return("v2.0.0-5-deadbee-dirty\n", nil)
		rec, err := uc.Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), rec.Major)
		assert.Equal(t, uint64(5), rec.CommitsPastHead)
		assert.Equal(t, "deadbee+dirty", rec.Hash)
		assert.Equal(t, "dirty", rec.IsDirty)
		gitRepo.AssertExpectations(t)
	})
	t.Run("Should work without a logger", func(t *testing.T) {
		gitRepo := new(mockGitRepository)
		uc := &DescribeUseCase{GitRepo: gitRepo}
		ctx := context.Background()
		gitRepo.On("Describe", ctx).Return("1.2.3-0-abc1234", nil)
		rec, err := uc.Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, "abc1234", rec.Hash)
	})
	t.Run("Should report a parse error for unmatched output", func(t *testing.T) {
		gitRepo := new(mockGitRepository)
		uc := &DescribeUseCase{GitRepo: gitRepo}
		ctx := context.Background()
		gitRepo.On("Describe", ctx).Return("", nil)
		rec, err := uc.Execute(ctx)
		assert.Nil(t, rec)
		assert.ErrorIs(t, err, domain.ErrDescribeParse)
	})
	t.Run("Should wrap describe failures", func(t *testing.T) {
		gitRepo := new(mockGitRepository)
		uc := &DescribeUseCase{GitRepo: gitRepo}
		ctx := context.Background()
		expectedErr := errors.New("not a git repository")
		gitRepo.On("Describe", ctx).Return("", expectedErr)
		rec, err := uc.Execute(ctx)
		assert.Nil(t, rec)
		assert.ErrorIs(t, err, expectedErr)
		assert.NotErrorIs(t, err, domain.ErrDescribeParse)
		assert.Contains(t, err.Error(), "failed to describe working tree")
		gitRepo.AssertNumberOfCalls(t, "Describe", 1)
	})
}
