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

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cardinalhq/mwdumps/config"
	"github.com/cardinalhq/mwdumps/internal/logctx"
	"github.com/cardinalhq/mwdumps/internal/xmldump"
)

func init() {
	cmd := &cobra.Command{
		Use:   "xml-info <dump>",
		Short: "Print every page and revision header of an XML dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runCommand("xml-info", func(ctx context.Context, cfg *config.Config) error {
				return runXMLInfo(ctx, cfg, args[0], c.OutOrStdout())
			})
		},
	}

	rootCmd.AddCommand(cmd)
}

type pageReader interface {
	ReadPage() (*xmldump.PageHistory, error)
}

type infoTotals struct {
	pages     int64
	revisions int64
	textBytes int64
}

func runXMLInfo(ctx context.Context, cfg *config.Config, path string, out io.Writer) error {
	ctx, logger := logctx.With(ctx, slog.String("dump", path))

	p, err := xmldump.Open(path, xmldump.PerPage, xmldump.Options{
		ChunkSize:  cfg.XML.ChunkSize,
		BufferSize: cfg.Source.BufferSize,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = p.Close() }()

	w := bufio.NewWriter(out)
	totals, err := writePageInfo(ctx, w, p)
	if flushErr := w.Flush(); err == nil {
		err = flushErr
	}
	if err != nil {
		return fmt.Errorf("handled %d pages, %d revisions before error: %w", totals.pages, totals.revisions, err)
	}
	logger.Debug("XML dump processed",
		slog.Int64("pages", totals.pages),
		slog.Int64("revisions", totals.revisions),
		slog.String("text", humanize.IBytes(uint64(totals.textBytes))))
	return nil
}

func writePageInfo(ctx context.Context, w io.Writer, r pageReader) (infoTotals, error) {
	var totals infoTotals
	for {
		if err := canceled(ctx); err != nil {
			return totals, err
		}
		ph, err := r.ReadPage()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return totals, err
		}

		fmt.Fprintf(w, "== %s ==\n", ph.Page.Title())
		fmt.Fprintf(w, "Page ID: %d\n", ph.Page.ID())
		fmt.Fprintf(w, "Namespace ID: %d\n", ph.Page.Namespace())
		fmt.Fprintf(w, "Revision count: %d\n\n", len(ph.Revisions))

		for _, rev := range ph.Revisions {
			writeRevisionInfo(w, rev)
			totals.textBytes += int64(rev.TextSize())
		}
		fmt.Fprintln(w)

		totals.pages++
		totals.revisions += int64(len(ph.Revisions))
	}

	_, err := fmt.Fprintf(w, "\nHandled %d pages, %d revisions\n", totals.pages, totals.revisions)
	return totals, err
}

func writeRevisionInfo(w io.Writer, rev *xmldump.Revision) {
	fmt.Fprintf(w, "=== Revision %d ===\n", rev.ID())
	fmt.Fprintf(w, "Timestamp: %s\n", rev.Timestamp())
	if author := rev.Author(); author.IsNamed() {
		fmt.Fprintf(w, "Author name: %s\n", author.Name())
		fmt.Fprintf(w, "Author ID: %d\n", author.ID())
	} else {
		fmt.Fprintf(w, "Author IP: %s\n", author.IP())
	}
	fmt.Fprintf(w, "Comment: %s\n", rev.Comment())
	fmt.Fprintf(w, "Size: %d bytes (%s)\n\n", rev.TextSize(), humanize.IBytes(uint64(rev.TextSize())))
}
