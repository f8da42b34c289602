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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cardinalhq/mwdumps/internal/dumperr"
)

// SniffFile reads the preamble of path on its own handle and returns the
// detected format.
func SniffFile(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, dumperr.Wrap(dumperr.IOError, "open", -1, err)
	}
	defer func() { _ = f.Close() }()

	preamble := make([]byte, PreambleSize)
	n, err := io.ReadFull(f, preamble)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return FormatUnknown, dumperr.Wrap(dumperr.IOError, "sniff", int64(n), err)
	}
	return Sniff(preamble[:n])
}

// Open sniffs path and returns a Source decoding it.
func Open(path string, opts Options) (Source, error) {
	format, err := SniffFile(path)
	if err != nil {
		return nil, err
	}

	var src Source
	if format == FormatSevenZip {
		src, err = openSevenZipFile(path, opts)
	} else {
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, dumperr.Wrap(dumperr.IOError, "open", -1, err)
		}
		src, err = openStream(format, f, opts, f)
		if err != nil {
			_ = f.Close()
		}
	}
	if err != nil {
		return nil, err
	}

	opts.logger().Debug("Opened dump source",
		slog.String("path", path),
		slog.String("format", format.String()),
		slog.Bool("nativeByteReads", src.NativeByteReads()))
	return src, nil
}

// FromReader sniffs an already open stream and returns a Source decoding it.
// The Source takes ownership of r when r is an io.Closer.
//
// 7-zip needs random access, so it is only supported when r also implements
// io.ReaderAt and has a Size method, as *bytes.Reader does.
func FromReader(r io.Reader, opts Options) (Source, error) {
	var closers []io.Closer
	if c, ok := r.(io.Closer); ok {
		closers = append(closers, c)
	}

	if sized, ok := r.(readerAtSizer); ok {
		preamble := make([]byte, PreambleSize)
		n, err := sized.ReadAt(preamble, 0)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, dumperr.Wrap(dumperr.IOError, "sniff", int64(n), err)
		}
		format, err := Sniff(preamble[:n])
		if err != nil {
			return nil, err
		}
		if format == FormatSevenZip {
			return openSevenZipReaderAt(sized, sized.Size(), opts, closers...)
		}
	}

	br := bufio.NewReaderSize(r, opts.bufferSize())
	preamble, err := br.Peek(PreambleSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, dumperr.Wrap(dumperr.IOError, "sniff", int64(len(preamble)), err)
	}
	format, err := Sniff(preamble)
	if err != nil {
		return nil, err
	}
	if format == FormatSevenZip {
		return nil, dumperr.New(dumperr.IOError, "open 7z", -1, "7-zip requires a seekable, sized reader")
	}
	return openStream(format, br, opts, closers...)
}

type readerAtSizer interface {
	io.ReaderAt
	Size() int64
}

// openStream builds the decoder for every format that can be read
// sequentially.
func openStream(format Format, r io.Reader, opts Options, closers ...io.Closer) (Source, error) {
	switch format {
	case FormatRawSQL, FormatRawXML:
		return newDecodedSource(format, r, true, opts.bufferSize(), closers...), nil
	case FormatGzip:
		return openGzip(r, opts, closers...)
	case FormatBzip2:
		return openBzip2(r, closers...)
	case FormatXz:
		return openXz(r, closers...)
	case FormatZstd:
		return openZstd(r, closers...)
	default:
		return nil, dumperr.New(dumperr.UnrecognizedFormat, "open", -1, "no stream decoder for %s", format)
	}
}

func openFailed(format Format, err error) error {
	return dumperr.Wrap(dumperr.IOError, fmt.Sprintf("open %s", format), -1, err)
}
