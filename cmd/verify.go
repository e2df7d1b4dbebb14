package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/seo-snapshot-generator/internal/app"
	"github.com/JakeFAU/seo-snapshot-generator/internal/logging"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [page...]",
		Short: "Checks published pages as a crawler sees them",
		Long: `Fetches published pages with a crawler user agent and checks their
meta tags, structured data and redirect script. With verify.headless set, each
page is also loaded in headless Chrome to confirm browsers are redirected.
Without arguments the singleton pages are checked.`,
		RunE: runVerifyCommand,
	}
}

func runVerifyCommand(cmd *cobra.Command, pages []string) error {
	cfg, err := resolveConfig(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("logger init failed: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	v, cleanup, err := app.NewVerifier(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := v.Verify(cmd.Context(), pages)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d pages failed verification", result.Failed, result.Checked)
	}
	return nil
}
