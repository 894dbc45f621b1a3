package chat

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, r io.Reader) ([]Event, error) {
	t.Helper()
	var evs []Event
	for ev, err := range DecodeStream(r, nil) {
		if err != nil {
			return evs, err
		}
		evs = append(evs, ev)
	}
	return evs, nil
}

func TestDecodeStream(t *testing.T) {
	body := strings.Join([]string{
		`{"status":"processing"}`,
		`{"chunk":"Hello"}`,
		``,
		`data: {"chunk":" world"}`,
		`{"done":true}`,
	}, "\n")

	evs, err := collect(t, strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, []Event{
		{Kind: EventProcessing},
		{Kind: EventChunk, Text: "Hello"},
		{Kind: EventChunk, Text: " world"},
		{Kind: EventDone},
	}, evs)
}

func TestDecodeStreamSkipsMalformedLines(t *testing.T) {
	body := "{\"chunk\":\"a\"}\n{oops\n{\"chunk\":\"b\"}\n"

	evs, err := collect(t, strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, []Event{
		{Kind: EventChunk, Text: "a"},
		{Kind: EventChunk, Text: "b"},
	}, evs)
}

func TestDecodeStreamFieldOrder(t *testing.T) {
	evs, err := collect(t, strings.NewReader(`{"done":true,"error":"boom","chunk":"x","status":"processing"}`))
	require.NoError(t, err)

	var kinds []EventKind
	for _, ev := range evs {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []EventKind{EventProcessing, EventChunk, EventError, EventDone}, kinds)
}

type failingReader struct {
	data string
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, errors.New("connection reset")
	}
	r.done = true
	return copy(p, r.data), nil
}

func TestDecodeStreamReadError(t *testing.T) {
	evs, err := collect(t, &failingReader{data: "{\"chunk\":\"partial\"}\n"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, []Event{{Kind: EventChunk, Text: "partial"}}, evs)
}

func TestReplyReducer(t *testing.T) {
	var r Reply
	r = r.Apply(Event{Kind: EventProcessing})
	assert.Equal(t, ThinkingText, r.Text)

	r = r.Apply(Event{Kind: EventChunk, Text: " Hello"})
	r = r.Apply(Event{Kind: EventChunk, Text: " world "})
	assert.Equal(t, "Hello world", r.Text)
	assert.False(t, r.Settled)

	done := r.Apply(Event{Kind: EventDone})
	assert.True(t, done.Settled)
	assert.False(t, done.IsError)
	assert.Equal(t, "Hello world", done.Text)
	assert.False(t, r.Settled, "Apply must not modify the receiver")
}

func TestReplyDoneWithoutContent(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
	}{
		{"processing only", []Event{{Kind: EventProcessing}, {Kind: EventDone}}},
		{"blank chunk", []Event{{Kind: EventChunk, Text: "   "}, {Kind: EventDone}}},
		{"bare done", []Event{{Kind: EventDone}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Reply
			for _, ev := range tt.events {
				r = r.Apply(ev)
			}
			assert.True(t, r.Settled)
			assert.True(t, r.IsError)
			assert.Equal(t, NoResponseText, r.Text)

			m := r.ApplyTo(Message{Text: ThinkingText, IsStreaming: true})
			assert.Equal(t, NoResponseText, m.Text)
			assert.False(t, m.IsStreaming)
		})
	}
}

func TestReplyIgnoresEventsAfterError(t *testing.T) {
	r := Reply{}.
		Apply(Event{Kind: EventChunk, Text: "partial"}).
		Apply(Event{Kind: EventError, Text: "model unavailable"}).
		Apply(Event{Kind: EventChunk, Text: "late"}).
		Apply(Event{Kind: EventDone})

	assert.Equal(t, "model unavailable", r.Text)
	assert.True(t, r.IsError)
	assert.True(t, r.Settled)
}

func TestReplyFinishAndInterrupt(t *testing.T) {
	empty := Reply{}.Apply(Event{Kind: EventProcessing})

	f := empty.Finish()
	assert.True(t, f.Settled)
	assert.True(t, f.IsError)
	assert.Equal(t, NoResponseText, f.Text)

	i := empty.Interrupt()
	assert.True(t, i.IsError)
	assert.Equal(t, IncompleteText, i.Text)

	partial := Reply{}.Apply(Event{Kind: EventChunk, Text: "half"}).Interrupt()
	assert.False(t, partial.IsError)
	assert.Equal(t, "half", partial.Text)
	assert.True(t, partial.Settled)
}

func TestReplyApplyTo(t *testing.T) {
	m := Message{ID: "x", Text: ThinkingText, IsStreaming: true}

	m = Reply{}.Apply(Event{Kind: EventChunk, Text: "hi"}).ApplyTo(m)
	assert.Equal(t, "hi", m.Text)
	assert.True(t, m.IsStreaming)

	m = Reply{Text: "hi", Settled: true}.ApplyTo(m)
	assert.False(t, m.IsStreaming)
}

func TestEncodeEventRoundTrip(t *testing.T) {
	var buf strings.Builder
	in := []Event{
		{Kind: EventProcessing},
		{Kind: EventChunk, Text: "Newton's "},
		{Kind: EventChunk, Text: "second law"},
		{Kind: EventDone},
	}
	for _, ev := range in {
		require.NoError(t, EncodeEvent(&buf, ev))
	}
	assert.Equal(t, `{"status":"processing"}`+"\n", strings.SplitAfter(buf.String(), "\n")[0])

	out, err := collect(t, strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
