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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cardinalhq/mwdumps/config"
	"github.com/cardinalhq/mwdumps/internal/logctx"
	"github.com/cardinalhq/mwdumps/internal/parquetexport"
	"github.com/cardinalhq/mwdumps/internal/xmldump"
)

type xmlParquetOptions struct {
	output   string
	withText bool
	maxRows  int64
}

func init() {
	var opts xmlParquetOptions

	cmd := &cobra.Command{
		Use:   "xml-parquet <dump>",
		Short: "Export the revisions of an XML dump to a parquet file",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runCommand("xml-parquet", func(ctx context.Context, cfg *config.Config) error {
				if opts.maxRows > 0 {
					cfg.Export.MaxRowsPerGroup = opts.maxRows
				}
				n, err := runXMLParquet(ctx, cfg, args[0], opts)
				if err != nil {
					return err
				}
				size := int64(0)
				if st, err := os.Stat(opts.output); err == nil {
					size = st.Size()
				}
				c.Printf("Wrote %s revisions to %s (%s)\n", humanize.Comma(n), opts.output, humanize.Bytes(uint64(size)))
				return nil
			})
		},
	}

	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Parquet file to write")
	cmd.Flags().BoolVar(&opts.withText, "with-text", false, "Include the full revision text")
	cmd.Flags().Int64Var(&opts.maxRows, "max-rows-per-group", 0, "Rows per parquet row group (default from config)")
	if err := cmd.MarkFlagRequired("output"); err != nil {
		panic(fmt.Errorf("failed to mark output flag as required: %w", err))
	}
}

type revisionReader interface {
	ReadRevision() (*xmldump.Revision, error)
}

func runXMLParquet(ctx context.Context, cfg *config.Config, path string, opts xmlParquetOptions) (int64, error) {
	ctx, logger := logctx.With(ctx, slog.String("dump", path), slog.String("output", opts.output))

	p, err := xmldump.Open(path, xmldump.PerRevision, xmldump.Options{
		ChunkSize:  cfg.XML.ChunkSize,
		BufferSize: cfg.Source.BufferSize,
		Logger:     logger,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = p.Close() }()

	w, err := parquetexport.Create(opts.output, parquetexport.Options{
		WithText:           opts.withText,
		MaxRowsPerRowGroup: cfg.Export.MaxRowsPerGroup,
		Logger:             logger,
	})
	if err != nil {
		return 0, err
	}

	err = exportRevisions(ctx, w, p)
	if closeErr := w.Close(ctx); err == nil {
		err = closeErr
	}
	if err != nil {
		return w.RowsWritten(), fmt.Errorf("export stopped after %d revisions: %w", w.RowsWritten(), err)
	}
	return w.RowsWritten(), nil
}

func exportRevisions(ctx context.Context, w *parquetexport.Writer, r revisionReader) error {
	for {
		if err := canceled(ctx); err != nil {
			return err
		}
		rev, err := r.ReadRevision()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := w.Write(ctx, rev); err != nil {
			return err
		}
	}
}
