// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/mwdumps/config"
	"github.com/cardinalhq/mwdumps/internal/logctx"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   config.ServiceName,
	Short: "Read MediaWiki SQL and XML dumps",
	Long: `Stream rows out of MediaWiki SQL table dumps and pages or revisions out of
XML export dumps. Dumps may be plain or compressed with gzip, bzip2, 7-zip,
xz or zstd; the container is detected from the file contents.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// runCommand sets up telemetry and configuration around fn and records how
// the invocation went.
func runCommand(name string, fn func(ctx context.Context, cfg *config.Config) error) error {
	servicename := config.ServiceName + "-" + name
	doneCtx, doneFx, err := setupTelemetry(servicename)
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	defer func() {
		if err := doneFx(); err != nil {
			slog.Error("Error shutting down telemetry", slog.Any("error", err))
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := logctx.WithLogger(doneCtx, slog.Default())
	start := time.Now()
	err = fn(ctx, cfg)
	recordCommand(ctx, name, start, err)
	return err
}

// canceled reports whether ctx is done, checked between records.
func canceled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
