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
	"compress/bzip2"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// openGzip reads the gzip header eagerly so a truncated or corrupt header is
// reported at open time. Byte reads are native.
func openGzip(r io.Reader, opts Options, closers ...io.Closer) (Source, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, openFailed(FormatGzip, err)
	}
	// gzip.Reader must close before the file it reads from.
	closers = append([]io.Closer{gz}, closers...)
	return newDecodedSource(FormatGzip, gz, true, opts.bufferSize(), closers...), nil
}

// openBzip2 defers all validation to the first read; compress/bzip2 does not
// look at the stream until then.
func openBzip2(r io.Reader, closers ...io.Closer) (Source, error) {
	return newDecodedSource(FormatBzip2, bzip2.NewReader(r), false, 0, closers...), nil
}

func openXz(r io.Reader, closers ...io.Closer) (Source, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, openFailed(FormatXz, err)
	}
	return newDecodedSource(FormatXz, xr, false, 0, closers...), nil
}

func openZstd(r io.Reader, closers ...io.Closer) (Source, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, openFailed(FormatZstd, err)
	}
	closers = append([]io.Closer{closerFunc(dec.Close)}, closers...)
	return newDecodedSource(FormatZstd, dec, false, 0, closers...), nil
}
