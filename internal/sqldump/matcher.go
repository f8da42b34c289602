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

package sqldump

// matcher finds a fixed token in a byte stream fed one byte at a time,
// using the Knuth-Morris-Pratt failure table so tokens with repeated
// characters never miss an overlapping match.
type matcher struct {
	token []byte
	fail  []int
	pos   int
}

func newMatcher(token string) *matcher {
	t := []byte(token)
	fail := make([]int, len(t))
	k := 0
	for i := 1; i < len(t); i++ {
		for k > 0 && t[i] != t[k] {
			k = fail[k-1]
		}
		if t[i] == t[k] {
			k++
		}
		fail[i] = k
	}
	return &matcher{token: t, fail: fail}
}

// feed advances the match by one byte and reports whether the token just
// completed. The matcher restarts from scratch after a full match.
func (m *matcher) feed(b byte) bool {
	for m.pos > 0 && m.token[m.pos] != b {
		m.pos = m.fail[m.pos-1]
	}
	if m.token[m.pos] == b {
		m.pos++
	}
	if m.pos == len(m.token) {
		m.pos = 0
		return true
	}
	return false
}

func (m *matcher) reset() {
	m.pos = 0
}
