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
	"strconv"

	"github.com/cardinalhq/mwdumps/internal/dumperr"
)

// EventType distinguishes the tokenizer events the machine consumes.
type EventType uint8

const (
	EventStart EventType = iota
	EventEnd
	EventText
)

// Event is one tokenizer callback. Name is set for element events, Text for
// character data. Text is only valid until the next event.
type Event struct {
	Type EventType
	Name string
	Text []byte
}

func StartEvent(name string) Event { return Event{Type: EventStart, Name: name} }
func EndEvent(name string) Event   { return Event{Type: EventEnd, Name: name} }
func TextEvent(text string) Event  { return Event{Type: EventText, Text: []byte(text)} }

// State is the element the machine is currently inside.
type State uint8

const (
	StateRoot State = iota
	StatePage
	StateRevision
	StateContributor
	StateTitle
	StateNamespace
	StatePageID
	StateRevisionID
	StateTimestamp
	StateAuthorName
	StateAuthorID
	StateAuthorIP
	StateComment
	StateText
)

var stateNames = [...]string{
	StateRoot:        "Root",
	StatePage:        "Page",
	StateRevision:    "Revision",
	StateContributor: "Contributor",
	StateTitle:       "Title",
	StateNamespace:   "Namespace",
	StatePageID:      "PageID",
	StateRevisionID:  "RevisionID",
	StateTimestamp:   "Timestamp",
	StateAuthorName:  "AuthorName",
	StateAuthorID:    "AuthorID",
	StateAuthorIP:    "AuthorIP",
	StateComment:     "Comment",
	StateText:        "Text",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// Effect is the side effect the builder applies for a transition.
type Effect uint8

const (
	EffectNone Effect = iota
	// EffectSkip starts ignoring the element just opened and its subtree.
	EffectSkip
	EffectBeginPage
	EffectBeginRevision
	EffectBeginNumber
	EffectAppendNumber
	EffectAppendTitle
	EffectAppendTimestamp
	EffectAppendAuthorName
	EffectAppendAuthorIP
	EffectAppendComment
	EffectAppendText
	EffectSetTitle
	EffectSetNamespace
	EffectSetPageID
	EffectSetRevisionID
	EffectSetAuthorID
	EffectEndRevision
	EffectEndPage
)

type edge struct {
	from, to State
	effect   Effect
}

// openings lists, for every recognized element, the states it may open in.
var openings = map[string][]edge{
	"mediawiki":   {{StateRoot, StateRoot, EffectNone}},
	"page":        {{StateRoot, StatePage, EffectBeginPage}},
	"title":       {{StatePage, StateTitle, EffectNone}},
	"ns":          {{StatePage, StateNamespace, EffectBeginNumber}},
	"revision":    {{StatePage, StateRevision, EffectBeginRevision}},
	"timestamp":   {{StateRevision, StateTimestamp, EffectNone}},
	"contributor": {{StateRevision, StateContributor, EffectNone}},
	"comment":     {{StateRevision, StateComment, EffectNone}},
	"text":        {{StateRevision, StateText, EffectNone}},
	"username":    {{StateContributor, StateAuthorName, EffectNone}},
	"ip":          {{StateContributor, StateAuthorIP, EffectNone}},
	"id": {
		{StatePage, StatePageID, EffectBeginNumber},
		{StateRevision, StateRevisionID, EffectBeginNumber},
		{StateContributor, StateAuthorID, EffectBeginNumber},
	},
}

// closeEffects is keyed by the state being left.
var closeEffects = map[State]Effect{
	StatePage:       EffectEndPage,
	StateRevision:   EffectEndRevision,
	StateTitle:      EffectSetTitle,
	StateNamespace:  EffectSetNamespace,
	StatePageID:     EffectSetPageID,
	StateRevisionID: EffectSetRevisionID,
	StateAuthorID:   EffectSetAuthorID,
}

var textEffects = map[State]Effect{
	StateNamespace:  EffectAppendNumber,
	StatePageID:     EffectAppendNumber,
	StateRevisionID: EffectAppendNumber,
	StateAuthorID:   EffectAppendNumber,
	StateTitle:      EffectAppendTitle,
	StateTimestamp:  EffectAppendTimestamp,
	StateAuthorName: EffectAppendAuthorName,
	StateAuthorIP:   EffectAppendAuthorIP,
	StateComment:    EffectAppendComment,
	StateText:       EffectAppendText,
}

// Transition computes the state after ev and the effect to apply. It has no
// side effects. Unrecognized start elements yield EffectSkip without a state
// change; the caller is responsible for ignoring their subtree.
func Transition(s State, ev Event) (State, Effect, error) {
	switch ev.Type {
	case EventStart:
		edges, ok := openings[ev.Name]
		if !ok {
			return s, EffectSkip, nil
		}
		for _, e := range edges {
			if e.from == s {
				return e.to, e.effect, nil
			}
		}
		return s, EffectNone, unexpected("<"+ev.Name+">", s)
	case EventEnd:
		for _, e := range openings[ev.Name] {
			if e.to == s {
				return e.from, closeEffects[s], nil
			}
		}
		return s, EffectNone, unexpected("</"+ev.Name+">", s)
	case EventText:
		return s, textEffects[s], nil
	default:
		return s, EffectNone, dumperr.New(dumperr.MalformedDocument, "xml", -1, "unknown event type %d", ev.Type)
	}
}

func unexpected(tag string, s State) error {
	return dumperr.New(dumperr.UnexpectedElement, "xml", -1, "%s in state %s", tag, s)
}
