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

// recordQueue is a FIFO of finished records waiting for the caller.
type recordQueue[T any] struct {
	items []T
	head  int
}

func (q *recordQueue[T]) push(v T) {
	q.items = append(q.items, v)
}

func (q *recordQueue[T]) len() int {
	return len(q.items) - q.head
}

func (q *recordQueue[T]) peek() (T, bool) {
	var zero T
	if q.len() == 0 {
		return zero, false
	}
	return q.items[q.head], true
}

func (q *recordQueue[T]) pop() (T, bool) {
	var zero T
	if q.len() == 0 {
		return zero, false
	}
	v := q.items[q.head]
	q.items[q.head] = zero
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 64 && q.head*2 > len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return v, true
}
