package session

import (
	"fmt"
	"io"
	"sync"
)

// Message is one callback delivered by the running script: the D-Bus
// member name is the tag, the first string argument the payload.
type Message struct {
	Tag     string
	Payload string
}

// MessageLog is the append-only callback log. The callback handler is
// its only writer; the main flow reads it after the run/stop calls
// return, so readers never race an in-flight append.
type MessageLog struct {
	mu   sync.Mutex
	msgs []Message
}

// Append records one callback in arrival order.
func (l *MessageLog) Append(tag, payload string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, Message{Tag: tag, Payload: payload})
}

// Snapshot returns a copy of the log in arrival order.
func (l *MessageLog) Snapshot() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}

// WriteMessages prints callbacks in arrival order: result payloads to
// out, errors to errw prefixed "ERROR:", anything else as a labeled
// passthrough line.
func WriteMessages(out, errw io.Writer, msgs []Message) {
	for _, m := range msgs {
		switch m.Tag {
		case "result":
			fmt.Fprintln(out, m.Payload)
		case "error":
			fmt.Fprintf(errw, "ERROR: %s\n", m.Payload)
		default:
			fmt.Fprintf(out, "%s: %s\n", m.Tag, m.Payload)
		}
	}
}
