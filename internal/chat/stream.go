package chat

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"
)

// EventKind is the type of a stream event.
type EventKind int

const (
	EventProcessing EventKind = iota
	EventChunk
	EventError
	EventDone
)

func (k EventKind) String() string {
	switch k {
	case EventProcessing:
		return "processing"
	case EventChunk:
		return "chunk"
	case EventError:
		return "error"
	case EventDone:
		return "done"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one step of a streamed reply.
type Event struct {
	Kind EventKind
	Text string
}

// record is one newline-delimited JSON line of the stream. A single line
// may carry several fields.
type record struct {
	Status string `json:"status,omitempty"`
	Chunk  string `json:"chunk,omitempty"`
	Error  string `json:"error,omitempty"`
	Done   bool   `json:"done,omitempty"`
}

func (r record) events() []Event {
	var evs []Event
	if r.Status == "processing" {
		evs = append(evs, Event{Kind: EventProcessing})
	}
	if r.Chunk != "" {
		evs = append(evs, Event{Kind: EventChunk, Text: r.Chunk})
	}
	if r.Error != "" {
		evs = append(evs, Event{Kind: EventError, Text: r.Error})
	}
	if r.Done {
		evs = append(evs, Event{Kind: EventDone})
	}
	return evs
}

// EncodeEvent writes ev as one newline-delimited JSON record.
func EncodeEvent(w io.Writer, ev Event) error {
	var rec record
	switch ev.Kind {
	case EventProcessing:
		rec.Status = "processing"
	case EventChunk:
		rec.Chunk = ev.Text
	case EventError:
		rec.Error = ev.Text
	case EventDone:
		rec.Done = true
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = w.Write(append(line, '\n'))
	return err
}

const maxLineSize = 1 << 20

// DecodeStream reads newline-delimited JSON records from r and yields their
// events in arrival order. A "data:" prefix on a line is ignored. Lines
// that are not valid JSON are logged and skipped. A read error is yielded
// once and ends the sequence.
func DecodeStream(r io.Reader, logger *slog.Logger) iter.Seq2[Event, error] {
	if logger == nil {
		logger = slog.Default()
	}
	return func(yield func(Event, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			line = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if line == "" {
				continue
			}

			var rec record
			if err := json.Unmarshal([]byte(line), &rec); err != nil {
				logger.Warn("skip malformed stream line", "line", line, "error", err)
				continue
			}
			for _, ev := range rec.events() {
				if !yield(ev, nil) {
					return
				}
			}
		}
		if err := scanner.Err(); err != nil {
			yield(Event{}, fmt.Errorf("read stream: %w", err))
		}
	}
}

// Reply is the state of an assistant message built from stream events.
// Apply and the settle methods return a new value; a Reply is never
// modified in place.
type Reply struct {
	Text    string
	IsError bool
	Settled bool

	acc string
}

// Apply folds one event into the reply. Events after an error or done are
// ignored. A done without any chunk text settles as NoResponseText.
func (r Reply) Apply(ev Event) Reply {
	if r.Settled {
		return r
	}
	switch ev.Kind {
	case EventProcessing:
		if r.acc == "" {
			r.Text = ThinkingText
		}
	case EventChunk:
		r.acc += ev.Text
		r.Text = strings.TrimSpace(r.acc)
	case EventError:
		r.Text = ev.Text
		r.IsError = true
		r.Settled = true
	case EventDone:
		r.Settled = true
		if !r.Content() {
			r.Text = NoResponseText
			r.IsError = true
		}
	}
	return r
}

// Content reports whether any chunk text has been received.
func (r Reply) Content() bool {
	return strings.TrimSpace(r.acc) != ""
}

// Finish settles a reply whose stream ended without a done record.
func (r Reply) Finish() Reply {
	if r.Settled {
		return r
	}
	r.Settled = true
	if !r.Content() {
		r.Text = NoResponseText
		r.IsError = true
	}
	return r
}

// Interrupt settles a reply whose stream failed mid-read. Partial text is
// kept; without any the reply becomes an error.
func (r Reply) Interrupt() Reply {
	if r.Settled {
		return r
	}
	r.Settled = true
	if !r.Content() {
		r.Text = IncompleteText
		r.IsError = true
	}
	return r
}

// ApplyTo copies the reply state onto a transcript message.
func (r Reply) ApplyTo(m Message) Message {
	if r.Text != "" {
		m.Text = r.Text
	}
	m.IsError = r.IsError
	m.IsStreaming = !r.Settled
	return m
}
