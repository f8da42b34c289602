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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cardinalhq/mwdumps/config"
	"github.com/cardinalhq/mwdumps/internal/logctx"
	"github.com/cardinalhq/mwdumps/internal/sqldump"
)

func init() {
	cmd := &cobra.Command{
		Use:   "sql-tsv <dump>",
		Short: "Print the rows of an SQL table dump as tab separated values",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			token, err := c.Flags().GetString("token")
			if err != nil {
				return fmt.Errorf("failed to get token flag: %w", err)
			}
			return runCommand("sql-tsv", func(ctx context.Context, cfg *config.Config) error {
				if token != "" {
					cfg.SQL.Token = token
				}
				return runSQLTSV(ctx, cfg, args[0], c.OutOrStdout())
			})
		},
	}

	rootCmd.AddCommand(cmd)

	cmd.Flags().String("token", "", "Text after which tuples start (default from config, \"VALUES \")")
}

func runSQLTSV(ctx context.Context, cfg *config.Config, path string, out io.Writer) error {
	ctx, logger := logctx.With(ctx, slog.String("dump", path))

	p, err := sqldump.Open(path, sqldump.Options{
		Token:      cfg.SQL.Token,
		BufferSize: cfg.Source.BufferSize,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = p.Close() }()

	w := bufio.NewWriter(out)
	n, err := writeTSV(ctx, w, p)
	if flushErr := w.Flush(); err == nil {
		err = flushErr
	}

	logger.Debug("SQL dump processed",
		slog.Int64("rows", n),
		slog.String("decoded", humanize.Bytes(uint64(p.Offset()))))
	if err != nil {
		return fmt.Errorf("processed %s rows before error: %w", humanize.Comma(n), err)
	}
	return nil
}

type rowReader interface {
	GetRow() (sqldump.Row, error)
}

// writeTSV writes one line per row, fields separated by tabs.
func writeTSV(ctx context.Context, w io.Writer, r rowReader) (int64, error) {
	var n int64
	for {
		if err := canceled(ctx); err != nil {
			return n, err
		}
		row, err := r.GetRow()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if _, err := io.WriteString(w, strings.Join(row.Strings(), "\t")+"\n"); err != nil {
			return n, err
		}
		n++
	}
}
