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

package dumpsource

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/cardinalhq/mwdumps/internal/dumperr"
)

// DefaultBufferSize is used when Options.BufferSize is not set.
const DefaultBufferSize = 64 * 1024

// ByteReader is the read surface byte-oriented tokenizers consume.
type ByteReader interface {
	io.Reader
	io.ByteReader
}

// Source is a decoded dump byte stream.
type Source interface {
	ByteReader
	io.Closer

	// Format is the container the stream is decoded from.
	Format() Format
	// NativeByteReads reports whether ReadByte is served from a buffer
	// rather than synthesized from a one-byte bulk read.
	NativeByteReads() bool
	// BytesRead is the number of decoded bytes handed out so far.
	BytesRead() int64
}

// Options configures how a Source is opened.
type Options struct {
	// BufferSize sizes the read buffer of raw and gzip sources and of
	// Buffered wrappers. Zero means DefaultBufferSize.
	BufferSize int
	Logger     *slog.Logger
}

func (o Options) bufferSize() int {
	if o.BufferSize <= 0 {
		return DefaultBufferSize
	}
	return o.BufferSize
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// decodedSource is the common Source implementation. Each container only
// differs in how the decoded reader is built and what must be closed.
type decodedSource struct {
	format  Format
	r       io.Reader
	br      *bufio.Reader // non-nil when byte reads are native
	closers []io.Closer
	n       int64
	one     [1]byte
	closed  bool
}

var _ Source = (*decodedSource)(nil)

func newDecodedSource(format Format, r io.Reader, native bool, bufSize int, closers ...io.Closer) *decodedSource {
	s := &decodedSource{
		format:  format,
		r:       r,
		closers: closers,
	}
	if native {
		s.br = bufio.NewReaderSize(r, bufSize)
	}
	sourcesOpenedCounter.Add(context.Background(), 1, otelmetric.WithAttributes(
		attribute.String("format", format.String()),
	))
	return s
}

func (s *decodedSource) Format() Format        { return s.format }
func (s *decodedSource) NativeByteReads() bool { return s.br != nil }
func (s *decodedSource) BytesRead() int64      { return s.n }

func (s *decodedSource) Read(p []byte) (int, error) {
	if s.closed {
		return 0, dumperr.Wrap(dumperr.IOError, "read "+s.format.String(), s.n, errors.New("source is closed"))
	}
	var (
		n   int
		err error
	)
	if s.br != nil {
		n, err = s.br.Read(p)
	} else {
		n, err = s.r.Read(p)
	}
	s.n += int64(n)
	return n, s.classify(err)
}

func (s *decodedSource) ReadByte() (byte, error) {
	if s.br != nil && !s.closed {
		b, err := s.br.ReadByte()
		if err != nil {
			return 0, s.classify(err)
		}
		s.n++
		return b, nil
	}
	for {
		n, err := s.Read(s.one[:])
		if n == 1 {
			return s.one[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// classify keeps io.EOF as the end signal and turns everything else into an
// IOError positioned at the current decoded offset.
func (s *decodedSource) classify(err error) error {
	if err == nil || err == io.EOF {
		return err
	}
	var de *dumperr.Error
	if errors.As(err, &de) {
		return err
	}
	return dumperr.Wrap(dumperr.IOError, "read "+s.format.String(), s.n, err)
}

func (s *decodedSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	bytesReadCounter.Add(context.Background(), s.n, otelmetric.WithAttributes(
		attribute.String("format", s.format.String()),
	))

	var result *multierror.Error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	s.closers = nil
	return result.ErrorOrNil()
}

// closerFunc adapts decoders whose Close has no error result.
type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}

// Buffered returns src itself when its byte reads are native, otherwise a
// buffered reader over it. size zero means DefaultBufferSize.
func Buffered(src Source, size int) ByteReader {
	if src.NativeByteReads() {
		return src
	}
	if size <= 0 {
		size = DefaultBufferSize
	}
	return bufio.NewReaderSize(src, size)
}
