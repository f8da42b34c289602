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

package xmldump

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordQueueOrder(t *testing.T) {
	var q recordQueue[int]
	_, ok := q.pop()
	assert.False(t, ok)

	for i := range 200 {
		q.push(i)
	}
	for i := range 150 {
		v, ok := q.pop()
		assert.True(t, ok)
		assert.Equal(t, i, v)
	}
	q.push(200)
	assert.Equal(t, 51, q.len())

	head, ok := q.peek()
	assert.True(t, ok)
	assert.Equal(t, 150, head)

	for want := 150; want <= 200; want++ {
		v, ok := q.pop()
		assert.True(t, ok)
		assert.Equal(t, want, v)
	}
	assert.Equal(t, 0, q.len())
	_, ok = q.peek()
	assert.False(t, ok)
}
