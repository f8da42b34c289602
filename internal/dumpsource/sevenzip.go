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
	"errors"
	"io"

	"github.com/bodgit/sevenzip"
)

var errNoArchiveEntry = errors.New("archive contains no regular file")

func openSevenZipFile(path string, opts Options) (Source, error) {
	archive, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, openFailed(FormatSevenZip, err)
	}
	src, err := openFirstEntry(archive.File, archive)
	if err != nil {
		_ = archive.Close()
		return nil, err
	}
	return src, nil
}

func openSevenZipReaderAt(r io.ReaderAt, size int64, opts Options, closers ...io.Closer) (Source, error) {
	archive, err := sevenzip.NewReader(r, size)
	if err != nil {
		return nil, openFailed(FormatSevenZip, err)
	}
	return openFirstEntry(archive.File, closers...)
}

// openFirstEntry decodes the first regular file of the archive. Dumps are
// published one per archive, so later entries are ignored.
func openFirstEntry(files []*sevenzip.File, closers ...io.Closer) (Source, error) {
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, openFailed(FormatSevenZip, err)
		}
		closers = append([]io.Closer{rc}, closers...)
		return newDecodedSource(FormatSevenZip, rc, false, 0, closers...), nil
	}
	return nil, openFailed(FormatSevenZip, errNoArchiveEntry)
}
