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
	"bytes"

	"github.com/cardinalhq/mwdumps/internal/dumperr"
)

// PreambleSize is the number of leading bytes inspected when sniffing.
const PreambleSize = 10

// Format identifies the container a dump is stored in.
type Format int

const (
	FormatUnknown Format = iota
	FormatRawSQL
	FormatRawXML
	FormatGzip
	FormatBzip2
	FormatSevenZip
	FormatXz
	FormatZstd
)

func (f Format) String() string {
	switch f {
	case FormatRawSQL:
		return "sql"
	case FormatRawXML:
		return "xml"
	case FormatGzip:
		return "gzip"
	case FormatBzip2:
		return "bzip2"
	case FormatSevenZip:
		return "7z"
	case FormatXz:
		return "xz"
	case FormatZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Compressed reports whether the format needs a decoder.
func (f Format) Compressed() bool {
	return f != FormatRawSQL && f != FormatRawXML && f != FormatUnknown
}

type magic struct {
	prefix []byte
	format Format
}

// Checked in order; the raw text prefixes come first.
var magics = []magic{
	{[]byte("-- "), FormatRawSQL},
	{[]byte("<mediawiki"), FormatRawXML},
	{[]byte("<?xml"), FormatRawXML}, // declaration before the mediawiki root
	{[]byte{0x1f, 0x8b, 0x08}, FormatGzip},
	{[]byte("BZh"), FormatBzip2},
	{[]byte{'7', 'z', 0xbc, 0xaf, 0x27, 0x1c}, FormatSevenZip},
	{[]byte{0xfd, '7', 'z', 'X', 'Z', 0x00}, FormatXz},
	{[]byte{0x28, 0xb5, 0x2f, 0xfd}, FormatZstd},
}

// Sniff determines the container format from the first bytes of a file.
// Fewer than PreambleSize bytes is always an UnrecognizedFormat error, even if
// a shorter magic number would match.
func Sniff(preamble []byte) (Format, error) {
	if len(preamble) < PreambleSize {
		return FormatUnknown, dumperr.New(dumperr.UnrecognizedFormat, "sniff", 0,
			"preamble is %d bytes, need %d", len(preamble), PreambleSize)
	}
	for _, m := range magics {
		if bytes.HasPrefix(preamble, m.prefix) {
			return m.format, nil
		}
	}
	return FormatUnknown, dumperr.New(dumperr.UnrecognizedFormat, "sniff", 0,
		"preamble %q", preamble[:PreambleSize])
}
