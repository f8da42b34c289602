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

// Package dumperr defines the error taxonomy shared by the dump readers.
//
// Every failure surfaced by dumpsource, sqldump and xmldump is an *Error whose
// Kind can be matched with errors.Is:
//
//	if errors.Is(err, dumperr.MalformedNumber) { ... }
//
// End of input is never an *Error; readers return io.EOF for that.
package dumperr

import (
	"errors"
	"fmt"
)

// Kind classifies a dump reading failure. A Kind is itself an error so it can
// be used as the target of errors.Is.
type Kind int

const (
	// UnrecognizedFormat means the file preamble matched no known container.
	UnrecognizedFormat Kind = iota + 1
	// IOError is a read or decompression fault of the underlying source.
	IOError
	// MalformedNumber is a numeric literal or numeric element that does not parse.
	MalformedNumber
	// UnexpectedToken is a SQL tuple element with an unknown lead character.
	UnexpectedToken
	// MalformedStatement is a SQL tuple not followed by ',' or ';'.
	MalformedStatement
	// TruncatedStatement is a SQL stream ending inside a tuple.
	TruncatedStatement
	// UnexpectedElement is an XML element seen in a state that does not allow it.
	UnexpectedElement
	// TruncatedDocument is an XML stream ending with elements still open.
	TruncatedDocument
	// MalformedDocument is an XML syntax error reported by the tokenizer.
	MalformedDocument
)

var kindNames = map[Kind]string{
	UnrecognizedFormat: "unrecognized format",
	IOError:            "i/o error",
	MalformedNumber:    "malformed number",
	UnexpectedToken:    "unexpected token",
	MalformedStatement: "malformed statement",
	TruncatedStatement: "truncated statement",
	UnexpectedElement:  "unexpected element",
	TruncatedDocument:  "truncated document",
	MalformedDocument:  "malformed document",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) Error() string {
	return k.String()
}

// Error is a dump reading failure with enough context to report where it
// happened. Offset is the byte offset in the decoded stream, or -1 when unknown.
type Error struct {
	Kind   Kind
	Op     string
	Offset int64
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Offset >= 0 {
		msg = fmt.Sprintf("%s at offset %d", msg, e.Offset)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the Kind of this error.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// New returns an *Error of the given kind with a formatted detail message.
func New(kind Kind, op string, offset int64, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Op:     op,
		Offset: offset,
		Detail: fmt.Sprintf(format, args...),
	}
}

// Wrap returns an *Error of the given kind caused by err.
// A nil err yields nil.
func Wrap(kind Kind, op string, offset int64, err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind:   kind,
		Op:     op,
		Offset: offset,
		Err:    err,
	}
}

// KindOf returns the Kind carried by err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}
