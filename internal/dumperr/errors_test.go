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

package dumperr

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsKind(t *testing.T) {
	err := New(MalformedNumber, "sql", 42, "bad literal %q", "1.2.3")

	assert.True(t, errors.Is(err, MalformedNumber))
	assert.False(t, errors.Is(err, UnexpectedToken))
	assert.Equal(t, MalformedNumber, KindOf(err))
}

func TestErrorIsKindThroughWrapping(t *testing.T) {
	inner := New(UnexpectedElement, "xml", 7, "<id> in Root")
	err := fmt.Errorf("reading page: %w", inner)

	assert.True(t, errors.Is(err, UnexpectedElement))
	assert.Equal(t, UnexpectedElement, KindOf(err))

	var de *Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, int64(7), de.Offset)
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(IOError, "gzip", -1, io.ErrUnexpectedEOF)

	assert.True(t, errors.Is(err, IOError))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Nil(t, Wrap(IOError, "gzip", 0, nil))
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "with offset and detail",
			err:  New(MalformedStatement, "sql", 10, "got %q", 'x'),
			want: "sql: malformed statement at offset 10: got 'x'",
		},
		{
			name: "unknown offset",
			err:  Wrap(IOError, "open", -1, errors.New("boom")),
			want: "open: i/o error: boom",
		},
		{
			name: "no op",
			err:  &Error{Kind: TruncatedDocument, Offset: -1},
			want: "truncated document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(0), KindOf(io.EOF))
	assert.Equal(t, "kind(99)", Kind(99).String())
}
