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

// Package parquetexport writes dump revisions as rows of a parquet file.
package parquetexport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/parquet-go/parquet-go"

	"github.com/cardinalhq/mwdumps/internal/xmldump"
)

// DefaultMaxRowsPerGroup bounds row groups when Options leaves it unset.
const DefaultMaxRowsPerGroup = 10_000

const batchSize = 512

// Column names.
const (
	ColPageID        = "page_id"
	ColPageTitle     = "page_title"
	ColPageNamespace = "page_namespace"
	ColRevisionID    = "revision_id"
	ColTimestamp     = "timestamp"
	ColTimestampMs   = "timestamp_ms"
	ColAuthorKind    = "author_kind"
	ColAuthorName    = "author_name"
	ColAuthorID      = "author_id"
	ColAuthorIP      = "author_ip"
	ColComment       = "comment"
	ColTextSize      = "text_size"
	ColText          = "text"
)

const (
	AuthorNamed     = "named"
	AuthorAnonymous = "anonymous"
)

type Options struct {
	// WithText adds the full revision text as a column.
	WithText           bool
	MaxRowsPerRowGroup int64
	Logger             *slog.Logger
}

// Schema returns the revision schema. The text column is only present
// when withText is set.
func Schema(withText bool) *parquet.Schema {
	group := parquet.Group{
		ColPageID:        parquet.Leaf(parquet.Int64Type),
		ColPageTitle:     parquet.String(),
		ColPageNamespace: parquet.Leaf(parquet.Int64Type),
		ColRevisionID:    parquet.Leaf(parquet.Int64Type),
		ColTimestamp:     parquet.String(),
		ColTimestampMs:   parquet.Leaf(parquet.Int64Type),
		ColAuthorKind:    parquet.Encoded(parquet.String(), &parquet.RLEDictionary),
		ColAuthorName:    parquet.String(),
		ColAuthorID:      parquet.Leaf(parquet.Int64Type),
		ColAuthorIP:      parquet.String(),
		ColComment:       parquet.String(),
		ColTextSize:      parquet.Leaf(parquet.Int64Type),
	}
	if withText {
		group[ColText] = parquet.String()
	}
	return parquet.NewSchema("revision", group)
}

// RevisionRow flattens rev into a row of Schema(withText). An unparseable
// timestamp gives timestamp_ms 0.
func RevisionRow(rev *xmldump.Revision, withText bool) map[string]any {
	page := rev.Page()
	author := rev.Author()

	kind := AuthorAnonymous
	if author.IsNamed() {
		kind = AuthorNamed
	}
	var tsMs int64
	if ts, err := time.Parse(time.RFC3339, rev.Timestamp()); err == nil {
		tsMs = ts.UnixMilli()
	}

	row := map[string]any{
		ColPageID:        page.ID(),
		ColPageTitle:     page.Title(),
		ColPageNamespace: int64(page.Namespace()),
		ColRevisionID:    rev.ID(),
		ColTimestamp:     rev.Timestamp(),
		ColTimestampMs:   tsMs,
		ColAuthorKind:    kind,
		ColAuthorName:    author.Name(),
		ColAuthorID:      author.ID(),
		ColAuthorIP:      author.IP(),
		ColComment:       rev.Comment(),
		ColTextSize:      int64(rev.TextSize()),
	}
	if withText {
		row[ColText] = rev.Text()
	}
	return row
}

// Writer buffers revisions and writes them to a parquet stream.
type Writer struct {
	pw       *parquet.GenericWriter[map[string]any]
	file     *os.File
	withText bool
	batch    []map[string]any
	rows     int64
	logger   *slog.Logger
	closed   bool
}

// Create writes a new parquet file at path.
func Create(path string, opts Options) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet file: %w", err)
	}
	w := NewWriter(f, opts)
	w.file = f
	return w, nil
}

// NewWriter writes parquet to out. The caller keeps ownership of out.
func NewWriter(out io.Writer, opts Options) *Writer {
	maxRows := opts.MaxRowsPerRowGroup
	if maxRows <= 0 {
		maxRows = DefaultMaxRowsPerGroup
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pw := parquet.NewGenericWriter[map[string]any](out,
		Schema(opts.WithText),
		parquet.Compression(&parquet.Zstd),
		parquet.MaxRowsPerRowGroup(maxRows),
	)
	return &Writer{
		pw:       pw,
		withText: opts.WithText,
		batch:    make([]map[string]any, 0, batchSize),
		logger:   logger,
	}
}

// Write appends one revision.
func (w *Writer) Write(ctx context.Context, rev *xmldump.Revision) error {
	if w.closed {
		return fmt.Errorf("parquet writer is closed")
	}
	w.batch = append(w.batch, RevisionRow(rev, w.withText))
	if len(w.batch) >= batchSize {
		return w.flush(ctx)
	}
	return nil
}

// WritePage appends every revision of ph.
func (w *Writer) WritePage(ctx context.Context, ph *xmldump.PageHistory) error {
	for _, rev := range ph.Revisions {
		if err := w.Write(ctx, rev); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) flush(ctx context.Context) error {
	if len(w.batch) == 0 {
		return nil
	}
	n, err := w.pw.Write(w.batch)
	w.rows += int64(n)
	rowsWrittenCounter.Add(ctx, int64(n))
	clear(w.batch)
	w.batch = w.batch[:0]
	if err != nil {
		return fmt.Errorf("failed to write revision rows: %w", err)
	}
	return nil
}

// RowsWritten is the number of rows handed to the parquet encoder.
func (w *Writer) RowsWritten() int64 {
	return w.rows
}

// Close flushes buffered rows, writes the footer and closes the file when
// the Writer created it.
func (w *Writer) Close(ctx context.Context) error {
	if w.closed {
		return nil
	}
	w.closed = true

	var result *multierror.Error
	if err := w.flush(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	if err := w.pw.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("failed to close parquet writer: %w", err))
	}
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to close parquet file: %w", err))
		}
	}
	w.logger.Debug("Closed parquet export", slog.Int64("rows", w.rows))
	return result.ErrorOrNil()
}
