package cmd

import (
	"errors"
	"fmt"

	"github.com/compozy/git-version-header/internal/domain"
	"github.com/compozy/git-version-header/internal/usecase"
	"github.com/spf13/cobra"
)

func newDescribeCmd(deps func() *container) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print the parsed version record without writing a header",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !validOutputFormat(format) {
				return fmt.Errorf("invalid output format %q: expected text, json or yaml", format)
			}
			cmd.SilenceUsage = true
			app := deps()
			gitRepo, err := app.gitRepository()
			if err != nil {
				return err
			}
			uc := &usecase.DescribeUseCase{GitRepo: gitRepo, Logger: app.logger}
			rec, err := uc.Execute(cmd.Context())
			if errors.Is(err, domain.ErrDescribeParse) {
				return fmt.Errorf("failed to get git description: %w", err)
			}
			if err != nil {
				return err
			}
			return printRecord(cmd.OutOrStdout(), rec, format)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", outputText, "output format: text, json or yaml")
	return cmd
}
