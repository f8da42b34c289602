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

// Page is the identity of a wiki page. A Page is shared by every Revision
// read from it and is not modified once its closing tag was processed.
type Page struct {
	title     string
	namespace int32
	id        int64
}

// NewPage returns a finished Page.
func NewPage(title string, namespace int32, id int64) *Page {
	return &Page{title: title, namespace: namespace, id: id}
}

func (p *Page) Title() string    { return p.title }
func (p *Page) Namespace() int32 { return p.namespace }
func (p *Page) ID() int64        { return p.id }

// Author is either a registered user (name and id) or an anonymous editor
// identified by IP address.
type Author struct {
	named bool
	name  string
	id    int64
	ip    string
}

func NamedAuthor(name string, id int64) Author { return Author{named: true, name: name, id: id} }
func AnonymousAuthor(ip string) Author         { return Author{ip: ip} }

// IsNamed reports whether the contributor carried a user id.
func (a Author) IsNamed() bool { return a.named }

// Name is empty for anonymous authors.
func (a Author) Name() string { return a.name }

// ID is -1 for anonymous authors.
func (a Author) ID() int64 {
	if !a.named {
		return -1
	}
	return a.id
}

// IP is empty for named authors.
func (a Author) IP() string { return a.ip }

// Revision is one saved version of a page.
type Revision struct {
	id        int64
	timestamp string
	author    Author
	comment   string
	text      string
	page      *Page
}

// NewRevision returns a finished Revision of page.
func NewRevision(page *Page, id int64, timestamp string, author Author, comment, text string) *Revision {
	return &Revision{
		id:        id,
		timestamp: timestamp,
		author:    author,
		comment:   comment,
		text:      text,
		page:      page,
	}
}

func (r *Revision) ID() int64         { return r.id }
func (r *Revision) Timestamp() string { return r.timestamp }
func (r *Revision) Author() Author    { return r.author }
func (r *Revision) Comment() string   { return r.comment }
func (r *Revision) Text() string      { return r.text }
func (r *Revision) Page() *Page       { return r.page }

// TextSize is the length of the revision text in bytes.
func (r *Revision) TextSize() int { return len(r.text) }

// PageHistory is a page with all of its revisions in dump order.
type PageHistory struct {
	Page      *Page
	Revisions []*Revision
}
