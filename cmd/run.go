// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/telekom/kestrel/internal/logger"
	"github.com/telekom/kestrel/pkg/config"
	"github.com/telekom/kestrel/pkg/kestrel"
)

// NewCmdRun creates the run command
func NewCmdRun() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run kestrel",
		RunE:  run,
	}
}

// run starts the kestrel engine and blocks until it is shut down
func run(cmd *cobra.Command, _ []string) error {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = logger.IntoContext(ctx, logger.NewLogger())

	k := kestrel.New(&cfg)
	if err := k.Run(ctx); err != nil && !errors.Is(err, kestrel.ErrFinalShutdown) {
		return fmt.Errorf("kestrel terminated: %w", err)
	}
	return nil
}
