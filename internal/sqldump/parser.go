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

// Package sqldump streams the tuples of MediaWiki SQL table dumps as rows of
// typed values.
package sqldump

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/cardinalhq/mwdumps/internal/dumperr"
	"github.com/cardinalhq/mwdumps/internal/dumpsource"
)

// DefaultToken introduces the tuple list of an INSERT statement.
const DefaultToken = "VALUES "

// Options configures a Parser. The zero value is usable.
type Options struct {
	// Token is the byte sequence after which tuples start.
	// Empty means DefaultToken.
	Token string
	// BufferSize sizes the buffer placed in front of sources without native
	// byte reads. Zero means dumpsource.DefaultBufferSize.
	BufferSize int
	Logger     *slog.Logger
}

// Parser pulls rows out of the INSERT statements of an SQL dump. Everything
// outside a VALUES clause is skipped.
type Parser struct {
	src    dumpsource.Source
	r      dumpsource.ByteReader
	token  *matcher
	logger *slog.Logger

	inStatement bool
	offset      int64
	rows        int64
	statements  int64
	buf         []byte
	err         error
	closed      bool
}

// Open opens and sniffs path and returns a Parser reading it.
func Open(path string, opts Options) (*Parser, error) {
	src, err := dumpsource.Open(path, dumpsource.Options{
		BufferSize: opts.BufferSize,
		Logger:     opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return New(src, opts), nil
}

// New returns a Parser reading src. The parser takes ownership of src and
// closes it on Close.
func New(src dumpsource.Source, opts Options) *Parser {
	token := opts.Token
	if token == "" {
		token = DefaultToken
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		src:    src,
		r:      dumpsource.Buffered(src, opts.BufferSize),
		token:  newMatcher(token),
		logger: logger,
	}
}

// GetRow returns the next tuple, or io.EOF once no further VALUES clause
// exists. A failure is returned again by every later call.
func (p *Parser) GetRow() (Row, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.closed {
		return nil, io.EOF
	}

	if !p.inStatement {
		found, err := p.skipToValues()
		if err != nil {
			return nil, p.fail(err)
		}
		if !found {
			p.err = io.EOF
			p.logger.Debug("SQL dump exhausted",
				slog.Int64("rows", p.rows),
				slog.Int64("statements", p.statements),
				slog.Int64("offset", p.offset))
			return nil, io.EOF
		}
		p.inStatement = true
		p.statements++
		statementsCounter.Add(context.Background(), 1)
		p.logger.Debug("Entering VALUES clause",
			slog.Int64("statement", p.statements),
			slog.Int64("offset", p.offset))
	}

	row, err := p.readTuple()
	if err != nil {
		return nil, p.fail(err)
	}
	p.rows++
	rowsCounter.Add(context.Background(), 1)
	return row, nil
}

// TotalRowsReturned returns the number of rows handed out by GetRow.
func (p *Parser) TotalRowsReturned() int64 {
	return p.rows
}

// Statements returns the number of VALUES clauses entered so far.
func (p *Parser) Statements() int64 {
	return p.statements
}

// Offset is the number of decoded bytes consumed so far.
func (p *Parser) Offset() int64 {
	return p.offset
}

// Close releases the underlying source.
func (p *Parser) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.buf = nil
	return p.src.Close()
}

func (p *Parser) fail(err error) error {
	p.err = err
	parseErrorsCounter.Add(context.Background(), 1, otelmetric.WithAttributes(
		attribute.String("parser", "sql"),
		attribute.String("kind", dumperr.KindOf(err).String()),
	))
	p.logger.Debug("SQL dump parse failed",
		slog.Int64("rows", p.rows),
		slog.Any("error", err))
	return err
}

func (p *Parser) readByte() (byte, error) {
	b, err := p.r.ReadByte()
	if err != nil {
		return 0, err
	}
	p.offset++
	return b, nil
}

// need reads a byte that must exist because a tuple is still open.
func (p *Parser) need(what string) (byte, error) {
	b, err := p.readByte()
	if err == io.EOF {
		return 0, dumperr.New(dumperr.TruncatedStatement, "sql", p.offset,
			"end of input inside %s", what)
	}
	return b, err
}

func (p *Parser) skipToValues() (bool, error) {
	p.token.reset()
	for {
		b, err := p.readByte()
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if p.token.feed(b) {
			return true, nil
		}
	}
}

// readTuple reads one parenthesized tuple and the ',' or ';' after it.
func (p *Parser) readTuple() (Row, error) {
	b, err := p.need("statement")
	if err != nil {
		return nil, err
	}
	if b != '(' {
		return nil, p.unexpected(b, "'(' opening a tuple")
	}

	row := Row{}
	b, err = p.need("tuple")
	if err != nil {
		return nil, err
	}
	if b != ')' {
		for {
			var v Value
			v, b, err = p.readValue(b)
			if err != nil {
				return nil, err
			}
			row = append(row, v)

			if b == ')' {
				break
			}
			if b != ',' {
				return nil, dumperr.New(dumperr.MalformedStatement, "sql", p.offset-1,
					"expected ',' or ')' after value, got %q", b)
			}
			if b, err = p.need("tuple"); err != nil {
				return nil, err
			}
		}
	}

	b, err = p.need("statement")
	if err != nil {
		return nil, err
	}
	switch b {
	case ',':
	case ';':
		p.inStatement = false
	default:
		return nil, dumperr.New(dumperr.MalformedStatement, "sql", p.offset-1,
			"expected ',' or ';' after tuple, got %q", b)
	}
	return row, nil
}

// readValue parses the value starting with b and returns it together with
// the byte that follows it.
func (p *Parser) readValue(b byte) (Value, byte, error) {
	switch {
	case b == '\'':
		s, err := p.readString()
		if err != nil {
			return Value{}, 0, err
		}
		next, err := p.need("tuple")
		return StringValue(s), next, err
	case isDigit(b) || b == '-':
		return p.readNumber(b)
	case b == 'N':
		if err := p.expectRest("NULL"); err != nil {
			return Value{}, 0, err
		}
		next, err := p.need("tuple")
		return NullValue(), next, err
	default:
		return Value{}, 0, p.unexpected(b, "a value")
	}
}

// readString reads up to the closing quote. A backslash takes the next byte
// literally.
func (p *Parser) readString() (string, error) {
	p.buf = p.buf[:0]
	escaped := false
	for {
		b, err := p.need("string")
		if err != nil {
			return "", err
		}
		switch {
		case escaped:
			p.buf = append(p.buf, b)
			escaped = false
		case b == '\\':
			escaped = true
		case b == '\'':
			return string(p.buf), nil
		default:
			p.buf = append(p.buf, b)
		}
	}
}

func (p *Parser) readNumber(first byte) (Value, byte, error) {
	start := p.offset - 1
	p.buf = append(p.buf[:0], first)
	fraction := false
	for {
		b, err := p.need("number")
		if err != nil {
			return Value{}, 0, err
		}
		switch {
		case isDigit(b):
			p.buf = append(p.buf, b)
		case b == '.' && !fraction:
			fraction = true
			p.buf = append(p.buf, b)
		default:
			text := string(p.buf)
			if fraction {
				f, err := strconv.ParseFloat(text, 64)
				if err != nil {
					return Value{}, 0, dumperr.New(dumperr.MalformedNumber, "sql", start, "%q", text)
				}
				return FloatValue(f), b, nil
			}
			i, err := strconv.ParseInt(text, 10, 64)
			if err != nil {
				return Value{}, 0, dumperr.New(dumperr.MalformedNumber, "sql", start, "%q", text)
			}
			return IntegerValue(i), b, nil
		}
	}
}

// expectRest consumes the remainder of word, whose first byte was already
// read.
func (p *Parser) expectRest(word string) error {
	for i := 1; i < len(word); i++ {
		b, err := p.need("tuple")
		if err != nil {
			return err
		}
		if b != word[i] {
			return p.unexpected(b, strconv.Quote(word))
		}
	}
	return nil
}

func (p *Parser) unexpected(b byte, want string) error {
	return dumperr.New(dumperr.UnexpectedToken, "sql", p.offset-1, "expected %s, got %q", want, b)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
