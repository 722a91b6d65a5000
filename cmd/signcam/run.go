package main

import (
	"fmt"

	"github.com/ayusman/signcam/internal/app"
	"github.com/ayusman/signcam/internal/config"
	"github.com/ayusman/signcam/internal/log"
	"github.com/spf13/cobra"
)

func runRecognizer(cmd *cobra.Command, cfg config.Config) error {
	a, err := app.New(app.Options{Config: cfg})
	if err != nil {
		return fmt.Errorf("startup failed: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("shutdown incomplete", "err", err)
		}
	}()

	if cfg.ServeAddr != "" {
		log.Info("preview server enabled", "addr", cfg.ServeAddr)
	}
	log.Info("press the quit key in the video window to stop", "key", string(cfg.QuitKey))

	return a.Run(cmd.Context())
}
