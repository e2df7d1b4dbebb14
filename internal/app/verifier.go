package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/seo-snapshot-generator/internal/config"
	"github.com/JakeFAU/seo-snapshot-generator/internal/verify"
)

// NewVerifier builds a snapshot verifier. The returned cleanup stops the
// browser when one was started.
func NewVerifier(cfg config.Config, logger *zap.Logger) (*verify.Verifier, func(), error) {
	bot := verify.NewBotFetcher(verify.BotConfig{
		UserAgent: cfg.Verify.UserAgent,
		Timeout:   cfg.VerifyTimeout(),
	})

	cleanup := func() {}
	var prober verify.RedirectProber
	if cfg.Verify.Headless {
		browser, err := verify.NewBrowser(verify.BrowserConfig{
			MaxParallel:       cfg.Verify.Parallelism,
			UserAgent:         cfg.Verify.BrowserUserAgent,
			NavigationTimeout: cfg.VerifyTimeout(),
			Settle:            cfg.RedirectDelay() + time.Second,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("browser init failed: %w", err)
		}
		prober = browser
		cleanup = browser.Close
		logger.Info("browser redirect probe enabled", zap.String("user_agent", cfg.Verify.BrowserUserAgent))
	}

	v, err := verify.New(verify.Config{
		BaseURL:     cfg.VerifyBaseURL(),
		Parallelism: cfg.Verify.Parallelism,
	}, bot, prober, logger.Named("verify"))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("verifier init failed: %w", err)
	}
	return v, cleanup, nil
}
