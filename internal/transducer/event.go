package transducer

import (
	"fmt"

	"github.com/ahmadov/tabris-markdown/internal/token"
)

// EventKind distinguishes the three notifications of the emitter.
type EventKind int

const (
	Begin EventKind = iota
	Text
	End
)

func (k EventKind) String() string {
	switch k {
	case Begin:
		return "begin"
	case Text:
		return "text"
	case End:
		return "end"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is one notification of a walk. Depth is set on heading Begin events
// and Href on link Begin events. Value is set on Text events only.
type Event struct {
	Kind  EventKind  `json:"kind"`
	Type  token.Type `json:"type,omitempty"`
	Depth int        `json:"depth,omitempty"`
	Href  string     `json:"href,omitempty"`
	Value string     `json:"value,omitempty"`
}

// String formats begin and end events as "<BEGIN type>" and "<END type>";
// text events format as their value.
func (e Event) String() string {
	switch e.Kind {
	case Begin:
		return "<BEGIN " + string(e.Type) + ">"
	case End:
		return "<END " + string(e.Type) + ">"
	}
	return e.Value
}

// Observer receives events in document order.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// Listeners is an Observer that fans events out to per-kind callbacks.
// Callbacks of the same kind run in registration order.
type Listeners struct {
	begin []func(Event)
	text  []func(Event)
	end   []func(Event)
}

// OnBegin registers fn for Begin events.
func (l *Listeners) OnBegin(fn func(Event)) *Listeners {
	l.begin = append(l.begin, fn)
	return l
}

// OnText registers fn for Text events.
func (l *Listeners) OnText(fn func(Event)) *Listeners {
	l.text = append(l.text, fn)
	return l
}

// OnEnd registers fn for End events.
func (l *Listeners) OnEnd(fn func(Event)) *Listeners {
	l.end = append(l.end, fn)
	return l
}

func (l *Listeners) Observe(e Event) {
	var fns []func(Event)
	switch e.Kind {
	case Begin:
		fns = l.begin
	case Text:
		fns = l.text
	case End:
		fns = l.end
	}
	for _, fn := range fns {
		fn(e)
	}
}

// Emit walks the tree and notifies every observer of each event, in the
// order the observers are given.
func (t *Transducer) Emit(observers ...Observer) {
	t.walk(t.tokens, emitter(observers))
}

// Events walks the tree and returns the emitted events.
func (t *Transducer) Events() []Event {
	var events []Event
	t.Emit(ObserverFunc(func(e Event) {
		events = append(events, e)
	}))
	return events
}

type emitter []Observer

func (em emitter) notify(e Event) {
	for _, o := range em {
		o.Observe(e)
	}
}

func (em emitter) leaf(tok *token.Token) {
	em.notify(Event{Kind: Text, Type: token.Text, Value: tok.Raw})
}

func (em emitter) enter(tok *token.Token, h handler) {
	em.notify(h.begin(tok))
}

func (em emitter) leave(tok *token.Token, _ handler) {
	em.notify(Event{Kind: End, Type: tok.Type})
}

func (em emitter) lineBreak(*token.Token) {
	em.notify(Event{Kind: Text, Type: token.Text, Value: "\n"})
}
