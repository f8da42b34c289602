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
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/cardinalhq/mwdumps/internal/dumperr"
)

const testdataDir = "../../testdata/sql"

func loadSample(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(testdataDir, "sample.sql"))
	require.NoError(t, err)
	return data
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func xzBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// readAllBytes drains a source one byte at a time.
func readAllBytes(r io.ByteReader) ([]byte, error) {
	var out []byte
	for {
		b, err := r.ReadByte()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
}

func TestOpenDecodesIdenticalContent(t *testing.T) {
	raw := loadSample(t)
	bz2, err := os.ReadFile(filepath.Join(testdataDir, "sample.sql.bz2"))
	require.NoError(t, err)
	sevenZip, err := os.ReadFile(filepath.Join(testdataDir, "sample.sql.7z"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		data   []byte
		format Format
		native bool
	}{
		{"raw", raw, FormatRawSQL, true},
		{"gzip", gzipBytes(t, raw), FormatGzip, true},
		{"bzip2", bz2, FormatBzip2, false},
		{"7z", sevenZip, FormatSevenZip, false},
		{"xz", xzBytes(t, raw), FormatXz, false},
		{"zstd", zstdBytes(t, raw), FormatZstd, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "dump", tt.data)

			src, err := Open(path, Options{})
			require.NoError(t, err)
			defer func() { _ = src.Close() }()

			assert.Equal(t, tt.format, src.Format())
			assert.Equal(t, tt.native, src.NativeByteReads())

			got, err := io.ReadAll(src)
			require.NoError(t, err)
			assert.Equal(t, raw, got)
			assert.Equal(t, int64(len(raw)), src.BytesRead())
		})

		t.Run(tt.name+"/bytewise", func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "dump", tt.data)

			src, err := Open(path, Options{BufferSize: 16})
			require.NoError(t, err)
			defer func() { _ = src.Close() }()

			got, err := readAllBytes(src)
			require.NoError(t, err)
			assert.Equal(t, raw, got)
		})
	}
}

func TestOpenMixedReadPaths(t *testing.T) {
	raw := loadSample(t)
	path := writeFile(t, t.TempDir(), "dump.gz", gzipBytes(t, raw))

	src, err := Open(path, Options{})
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	first, err := src.ReadByte()
	require.NoError(t, err)
	buf := make([]byte, 9)
	_, err = io.ReadFull(src, buf)
	require.NoError(t, err)
	rest, err := io.ReadAll(src)
	require.NoError(t, err)

	got := append(append([]byte{first}, buf...), rest...)
	assert.Equal(t, raw, got)
}

func TestOpenExhaustedSourceKeepsReturningEOF(t *testing.T) {
	path := writeFile(t, t.TempDir(), "dump.sql", []byte("-- tiny dump\n"))

	src, err := Open(path, Options{})
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	_, err = io.ReadAll(src)
	require.NoError(t, err)

	for range 3 {
		n, err := src.Read(make([]byte, 8))
		assert.Equal(t, 0, n)
		assert.Equal(t, io.EOF, err)
		_, err = src.ReadByte()
		assert.Equal(t, io.EOF, err)
	}
}

func TestOpenUnrecognized(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"plain text", []byte("hello, world: not a dump")},
		{"short sql preamble", []byte("-- x")},
		{"empty", nil},
		{"zip", []byte("PK\x03\x04\x14\x00\x00\x00\x08\x00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "dump", tt.data)

			src, err := Open(path, Options{})
			assert.Nil(t, src)
			require.Error(t, err)
			assert.True(t, errors.Is(err, dumperr.UnrecognizedFormat), "got %v", err)
		})
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.sql"), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dumperr.IOError))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestOpenBrokenSevenZip(t *testing.T) {
	data := append([]byte{'7', 'z', 0xbc, 0xaf, 0x27, 0x1c, 0x00, 0x04}, bytes.Repeat([]byte{0xaa}, 40)...)
	path := writeFile(t, t.TempDir(), "dump.7z", data)

	src, err := Open(path, Options{})
	assert.Nil(t, src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dumperr.IOError), "got %v", err)
}

func TestTruncatedGzipIsAnErrorNotEOF(t *testing.T) {
	raw := loadSample(t)
	gz := gzipBytes(t, raw)
	path := writeFile(t, t.TempDir(), "dump.gz", gz[:len(gz)/2])

	src, err := Open(path, Options{})
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	_, err = io.ReadAll(src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dumperr.IOError), "got %v", err)
	assert.False(t, errors.Is(err, io.EOF))
}

func TestGzipHeaderOnlyFailsOnRead(t *testing.T) {
	header := []byte{0x1f, 0x8b, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x03}
	path := writeFile(t, t.TempDir(), "dump.gz", header)

	src, err := Open(path, Options{})
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	_, err = src.ReadByte()
	require.Error(t, err)
	assert.True(t, errors.Is(err, dumperr.IOError), "got %v", err)
}

func TestFromReader(t *testing.T) {
	raw := loadSample(t)

	src, err := FromReader(bytes.NewReader(gzipBytes(t, raw)), Options{})
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	assert.Equal(t, FormatGzip, src.Format())
	got, err := io.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestFromReaderSevenZip(t *testing.T) {
	raw := loadSample(t)
	data, err := os.ReadFile(filepath.Join(testdataDir, "sample.sql.7z"))
	require.NoError(t, err)

	src, err := FromReader(bytes.NewReader(data), Options{})
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	assert.Equal(t, FormatSevenZip, src.Format())
	assert.False(t, src.NativeByteReads())
	got, err := readAllBytes(Buffered(src, 32))
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestFromReaderNonSeekableSevenZip(t *testing.T) {
	data := append([]byte{'7', 'z', 0xbc, 0xaf, 0x27, 0x1c}, bytes.Repeat([]byte{0}, 26)...)

	_, err := FromReader(io.MultiReader(bytes.NewReader(data)), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dumperr.IOError))
}

func TestBuffered(t *testing.T) {
	raw := loadSample(t)
	dir := t.TempDir()

	rawSrc, err := Open(writeFile(t, dir, "dump.sql", raw), Options{})
	require.NoError(t, err)
	defer func() { _ = rawSrc.Close() }()
	assert.Same(t, rawSrc, Buffered(rawSrc, 0))

	xzSrc, err := Open(writeFile(t, dir, "dump.sql.xz", xzBytes(t, raw)), Options{})
	require.NoError(t, err)
	defer func() { _ = xzSrc.Close() }()

	br := Buffered(xzSrc, 0)
	_, ok := br.(*bufio.Reader)
	assert.True(t, ok)

	got, err := readAllBytes(br)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestCloseIsIdempotent(t *testing.T) {
	path := writeFile(t, t.TempDir(), "dump.gz", gzipBytes(t, loadSample(t)))

	src, err := Open(path, Options{})
	require.NoError(t, err)

	require.NoError(t, src.Close())
	require.NoError(t, src.Close())

	_, err = src.Read(make([]byte, 4))
	assert.True(t, errors.Is(err, dumperr.IOError))
	_, err = src.ReadByte()
	assert.True(t, errors.Is(err, dumperr.IOError))
}
