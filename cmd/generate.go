package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Runs one generation and prints the report",
		Long: `Fetches every collection, renders and uploads all pages once, and prints
the run report as JSON. Page-level failures are part of the report; only a
fatal error exits non-zero.`,
		Args: cobra.NoArgs,
		RunE: runGenerateCommand,
	}
}

func runGenerateCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd.Context())
	if err != nil {
		return err
	}
	a, err := buildApp(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer func() { _ = a.Close(context.Background()) }()

	ctx := cmd.Context()
	if timeout := cfg.RunTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	report, err := a.Generator().Run(ctx)
	if err != nil {
		return fmt.Errorf("generate static pages: %w", err)
	}
	a.Logger().Info("generate command finished", zap.Int("generated", report.Generated), zap.Int("errors", report.Errors))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
