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

// Package xmldump reads MediaWiki XML export dumps as a stream of revisions
// or of pages with their full history.
//
// Element events from encoding/xml drive a pure state machine (Transition).
// A builder applies the resulting effects to the page and revision under
// construction, and finished records are queued until the caller pulls them.
// Elements the machine does not know, such as siteinfo, redirect or sha1,
// are skipped together with everything they contain.
package xmldump

import (
	"bufio"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/cardinalhq/mwdumps/internal/dumperr"
	"github.com/cardinalhq/mwdumps/internal/dumpsource"
)

// DefaultChunkSize is the read buffer in front of the XML tokenizer. It is
// larger than the biggest revision text the platform allows.
const DefaultChunkSize = 4 * 1024 * 1024

// Mode selects how records are grouped. It is fixed for the life of a Parser.
type Mode int

const (
	// PerRevision yields revisions one at a time through ReadRevision.
	PerRevision Mode = iota
	// PerPage yields a page with its revisions through ReadPage.
	PerPage
)

func (m Mode) String() string {
	switch m {
	case PerRevision:
		return "revision"
	case PerPage:
		return "page"
	default:
		return "unknown"
	}
}

// ErrWrongMode is returned by the reader method that does not match the
// Parser's Mode.
var ErrWrongMode = errors.New("xmldump: read method does not match parser mode")

type Options struct {
	// ChunkSize is the tokenizer read buffer. Zero means DefaultChunkSize.
	ChunkSize int
	// BufferSize sizes the read buffer of raw and gzip sources opened by
	// Open. Zero means dumpsource.DefaultBufferSize.
	BufferSize int
	Logger     *slog.Logger
}

func (o Options) sourceOptions() dumpsource.Options {
	return dumpsource.Options{
		BufferSize: o.BufferSize,
		Logger:     o.Logger,
	}
}

// Parser pulls records out of an XML dump.
type Parser struct {
	src    dumpsource.Source
	dec    *xml.Decoder
	mode   Mode
	logger *slog.Logger

	state State
	skip  int
	b     builder

	revisions recordQueue[*Revision]
	pages     recordQueue[*Page]

	pagesRead     int64
	revisionsRead int64
	finished      bool
	err           error
	closed        bool
}

// Open opens and sniffs path and returns a Parser reading it in mode.
func Open(path string, mode Mode, opts Options) (*Parser, error) {
	src, err := dumpsource.Open(path, opts.sourceOptions())
	if err != nil {
		return nil, err
	}
	return New(src, mode, opts), nil
}

// New returns a Parser reading src in mode. The parser takes ownership of
// src and closes it on Close.
func New(src dumpsource.Source, mode Mode, opts Options) *Parser {
	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		src:    src,
		dec:    xml.NewDecoder(bufio.NewReaderSize(src, chunk)),
		mode:   mode,
		logger: logger,
	}
}

func (p *Parser) Mode() Mode { return p.mode }

// ReadRevision returns the next revision in dump order, or io.EOF once the
// dump is exhausted. Only valid in PerRevision mode.
func (p *Parser) ReadRevision() (*Revision, error) {
	if p.mode != PerRevision {
		return nil, ErrWrongMode
	}
	if err := p.fill(); err != nil {
		return nil, err
	}
	rev, ok := p.revisions.pop()
	if !ok {
		return nil, io.EOF
	}
	return rev, nil
}

// ReadPage returns the next page together with all of its revisions, or
// io.EOF once the dump is exhausted. Only valid in PerPage mode.
func (p *Parser) ReadPage() (*PageHistory, error) {
	if p.mode != PerPage {
		return nil, ErrWrongMode
	}
	if err := p.fill(); err != nil {
		return nil, err
	}
	page, ok := p.pages.pop()
	if !ok {
		return nil, io.EOF
	}

	history := &PageHistory{Page: page}
	for {
		rev, ok := p.revisions.peek()
		if !ok || rev.page != page {
			break
		}
		p.revisions.pop()
		history.Revisions = append(history.Revisions, rev)
	}
	return history, nil
}

// PagesRead is the number of pages whose closing tag has been processed.
func (p *Parser) PagesRead() int64 { return p.pagesRead }

// RevisionsRead is the number of revisions whose closing tag has been
// processed.
func (p *Parser) RevisionsRead() int64 { return p.revisionsRead }

// Offset is the tokenizer position in the decoded stream.
func (p *Parser) Offset() int64 { return p.dec.InputOffset() }

// Close releases the underlying source and drops queued records. Later
// reads return io.EOF.
func (p *Parser) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.revisions = recordQueue[*Revision]{}
	p.pages = recordQueue[*Page]{}
	return p.src.Close()
}

func (p *Parser) queued() int {
	if p.mode == PerPage {
		return p.pages.len()
	}
	return p.revisions.len()
}

// fill drives the tokenizer until a record is available or the input ends.
// A closed parser reports io.EOF unless it already failed.
func (p *Parser) fill() error {
	if p.err != nil {
		return p.err
	}
	if p.closed {
		return io.EOF
	}
	for p.queued() == 0 && !p.finished {
		if err := p.step(); err != nil {
			return p.fail(err)
		}
	}
	return nil
}

func (p *Parser) step() error {
	tok, err := p.dec.RawToken()
	if err == io.EOF {
		return p.finish()
	}
	if err != nil {
		return p.tokenizerError(err)
	}

	var ev Event
	switch t := tok.(type) {
	case xml.StartElement:
		ev = Event{Type: EventStart, Name: t.Name.Local}
	case xml.EndElement:
		ev = Event{Type: EventEnd, Name: t.Name.Local}
	case xml.CharData:
		ev = Event{Type: EventText, Text: t}
	default:
		// Comments, processing instructions and directives carry no data.
		return nil
	}
	return p.handle(ev)
}

func (p *Parser) handle(ev Event) error {
	if p.skip > 0 {
		switch ev.Type {
		case EventStart:
			p.skip++
		case EventEnd:
			p.skip--
		}
		return nil
	}

	next, eff, err := Transition(p.state, ev)
	if err != nil {
		return p.positioned(err)
	}
	if eff == EffectSkip {
		p.skip = 1
		return nil
	}

	rev, page, err := p.b.apply(eff, ev.Text)
	if err != nil {
		return p.positioned(err)
	}
	p.state = next

	if rev != nil {
		p.revisionsRead++
		revisionsCounter.Add(context.Background(), 1)
		p.revisions.push(rev)
	}
	if page != nil {
		p.pagesRead++
		pagesCounter.Add(context.Background(), 1)
		if p.mode == PerPage {
			p.pages.push(page)
		}
	}
	return nil
}

func (p *Parser) finish() error {
	if p.state != StateRoot || p.skip != 0 {
		return dumperr.New(dumperr.TruncatedDocument, "xml", p.dec.InputOffset(),
			"input ended in state %s", p.state)
	}
	p.finished = true
	p.logger.Debug("XML dump exhausted",
		slog.String("mode", p.mode.String()),
		slog.Int64("pages", p.pagesRead),
		slog.Int64("revisions", p.revisionsRead),
		slog.Int64("offset", p.dec.InputOffset()))
	return nil
}

// tokenizerError maps encoding/xml failures onto the error taxonomy. Source
// failures are already typed and pass through.
func (p *Parser) tokenizerError(err error) error {
	var de *dumperr.Error
	if errors.As(err, &de) {
		return err
	}
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		kind := dumperr.MalformedDocument
		if strings.HasPrefix(se.Msg, "unexpected EOF") {
			kind = dumperr.TruncatedDocument
		}
		return dumperr.Wrap(kind, "xml", p.dec.InputOffset(), err)
	}
	return dumperr.Wrap(dumperr.IOError, "xml", p.dec.InputOffset(), err)
}

// positioned stamps machine errors with the tokenizer offset.
func (p *Parser) positioned(err error) error {
	var de *dumperr.Error
	if errors.As(err, &de) && de.Offset < 0 {
		de.Offset = p.dec.InputOffset()
	}
	return err
}

func (p *Parser) fail(err error) error {
	p.err = err
	parseErrorsCounter.Add(context.Background(), 1, otelmetric.WithAttributes(
		attribute.String("parser", "xml"),
		attribute.String("kind", dumperr.KindOf(err).String()),
	))
	p.logger.Debug("XML dump parse failed",
		slog.String("state", p.state.String()),
		slog.Int64("pages", p.pagesRead),
		slog.Int64("revisions", p.revisionsRead),
		slog.Any("error", err))
	return err
}
