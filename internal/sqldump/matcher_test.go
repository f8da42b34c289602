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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// matchEnds returns the offsets just past every completed match.
func matchEnds(token, input string) []int {
	m := newMatcher(token)
	var ends []int
	for i := 0; i < len(input); i++ {
		if m.feed(input[i]) {
			ends = append(ends, i+1)
		}
	}
	return ends
}

func TestMatcher(t *testing.T) {
	tests := []struct {
		name  string
		token string
		input string
		want  []int
	}{
		{"values clause", "VALUES ", "INSERT INTO `t` VALUES (1);", []int{23}},
		{"no match", "VALUES ", "INSERT INTO `t` VALUES(1);", nil},
		{"case sensitive", "VALUES ", "insert into t values (1);", nil},
		{"partial then full", "VALUES ", "VALUEVALUES (", []int{12}},
		{"repeated prefix", "aab", "aaab", []int{4}},
		{"self overlapping", "abab", "abababab", []int{4, 8}},
		{"restart inside mismatch", "abac", "ababac", []int{6}},
		{"two statements", "VALUES ", "VALUES (1);VALUES (2);", []int{7, 18}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchEnds(tt.token, tt.input))
		})
	}
}

func TestMatcherReset(t *testing.T) {
	m := newMatcher("VALUES ")
	for _, b := range []byte("VALU") {
		assert.False(t, m.feed(b))
	}
	m.reset()
	for _, b := range []byte("ES ") {
		assert.False(t, m.feed(b))
	}
}
