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
	"bytes"
	"strconv"
	"strings"

	"github.com/cardinalhq/mwdumps/internal/dumperr"
)

// builder applies transition effects to the records under construction.
type builder struct {
	page *Page
	rev  *Revision

	authorName  strings.Builder
	authorIP    strings.Builder
	authorID    int64
	hasAuthorID bool

	title     strings.Builder
	timestamp strings.Builder
	comment   strings.Builder
	text      strings.Builder
	number    []byte
}

// apply performs eff. It returns the revision or page finished by it, if any.
func (b *builder) apply(eff Effect, text []byte) (*Revision, *Page, error) {
	switch eff {
	case EffectNone, EffectSkip:
	case EffectBeginPage:
		b.page = &Page{}
		b.title.Reset()
	case EffectBeginRevision:
		b.rev = &Revision{page: b.page}
		b.authorName.Reset()
		b.authorIP.Reset()
		b.authorID = 0
		b.hasAuthorID = false
		b.timestamp.Reset()
		b.comment.Reset()
		b.text.Reset()
	case EffectBeginNumber:
		b.number = b.number[:0]
	case EffectAppendNumber:
		b.number = append(b.number, text...)
	case EffectAppendTitle:
		b.title.Write(text)
	case EffectAppendTimestamp:
		b.timestamp.Write(text)
	case EffectAppendAuthorName:
		b.authorName.Write(text)
	case EffectAppendAuthorIP:
		b.authorIP.Write(text)
	case EffectAppendComment:
		b.comment.Write(text)
	case EffectAppendText:
		b.text.Write(text)
	case EffectSetTitle:
		b.page.title = b.title.String()
	case EffectSetNamespace:
		ns, err := b.parseNumber("ns", 32)
		if err != nil {
			return nil, nil, err
		}
		b.page.namespace = int32(ns)
	case EffectSetPageID:
		id, err := b.parseNumber("page id", 64)
		if err != nil {
			return nil, nil, err
		}
		b.page.id = id
	case EffectSetRevisionID:
		id, err := b.parseNumber("revision id", 64)
		if err != nil {
			return nil, nil, err
		}
		b.rev.id = id
	case EffectSetAuthorID:
		id, err := b.parseNumber("contributor id", 64)
		if err != nil {
			return nil, nil, err
		}
		b.authorID = id
		b.hasAuthorID = true
	case EffectEndRevision:
		rev := b.rev
		rev.timestamp = b.timestamp.String()
		rev.comment = b.comment.String()
		rev.text = b.text.String()
		if b.hasAuthorID {
			rev.author = NamedAuthor(b.authorName.String(), b.authorID)
		} else {
			rev.author = AnonymousAuthor(b.authorIP.String())
		}
		b.rev = nil
		b.text.Reset()
		return rev, nil, nil
	case EffectEndPage:
		page := b.page
		b.page = nil
		return nil, page, nil
	default:
		return nil, nil, dumperr.New(dumperr.MalformedDocument, "xml", -1, "unknown effect %d", eff)
	}
	return nil, nil, nil
}

func (b *builder) parseNumber(field string, bits int) (int64, error) {
	digits := string(bytes.TrimSpace(b.number))
	n, err := strconv.ParseInt(digits, 10, bits)
	if err != nil {
		return 0, dumperr.New(dumperr.MalformedNumber, "xml", -1, "%s %q", field, digits)
	}
	return n, nil
}
