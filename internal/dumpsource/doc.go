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

// Package dumpsource presents raw and compressed MediaWiki dump files as a
// uniform decoded byte stream.
//
// # Overview
//
// Open sniffs the first PreambleSize bytes of a file and picks a decoder:
//
//   - "-- "          raw SQL dump
//   - "<mediawiki"   raw XML dump
//   - "<?xml"        raw XML dump with a declaration
//   - 1f 8b 08       gzip (klauspost/compress/gzip)
//   - "BZh"          bzip2 (compress/bzip2)
//   - 7z bc af 27 1c 7-zip archive, first regular file (bodgit/sevenzip)
//   - fd "7zXZ" 00   xz (ulikunitz/xz)
//   - 28 b5 2f fd    zstd (klauspost/compress/zstd)
//
// Anything else fails with dumperr.UnrecognizedFormat.
//
// # Reading
//
// Every Source is an io.Reader and an io.ByteReader. End of stream is io.EOF;
// any other error is a *dumperr.Error of kind dumperr.IOError and is fatal.
//
// Raw and gzip sources serve ReadByte from a buffer. Bzip2, 7-zip, xz and zstd
// sources only decompress in bulk, so ReadByte costs a one-byte bulk read;
// NativeByteReads reports which case applies and byte-oriented consumers
// should wrap slow sources with Buffered:
//
//	src, err := dumpsource.Open(path, dumpsource.Options{})
//	if err != nil {
//	    return err
//	}
//	defer src.Close()
//
//	br := dumpsource.Buffered(src, 0)
//	for {
//	    b, err := br.ReadByte()
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // use b
//	}
//
// # Resource Management
//
// A Source owns its file handle and decoder; Close releases both and is safe
// to call more than once.
package dumpsource
