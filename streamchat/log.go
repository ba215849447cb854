package streamchat

// AuthorClass tells the renderer which side of the transcript an entry belongs to.
type AuthorClass string

const (
	AuthorSelf  AuthorClass = "self"
	AuthorOther AuthorClass = "other"
)

// Entry is one rendered message.
type Entry struct {
	Content     string      `json:"content"`
	Author      AuthorClass `json:"author_class"`
	IsStream    bool        `json:"is_stream"`    // produced by the streaming path
	IsStreaming bool        `json:"is_streaming"` // more deltas expected
}

// MessageLog is the ordered transcript. It only grows at the tail; the one
// in-place update allowed is replacing a last entry that is still streaming.
//
// MessageLog is not safe for concurrent use. The Client owns its log on the
// event loop goroutine.
type MessageLog struct {
	entries []Entry
}

// NewMessageLog returns an empty log.
func NewMessageLog() *MessageLog {
	return &MessageLog{}
}

// Append adds e at the tail.
func (l *MessageLog) Append(e Entry) {
	l.entries = append(l.entries, e)
}

// ReplaceLast swaps the last entry for e. It fails with ErrorPrecondition and
// leaves the log unchanged if the log is empty or the last entry is not streaming.
func (l *MessageLog) ReplaceLast(e Entry) error {
	n := len(l.entries)
	if n == 0 {
		return NewError(ErrorPrecondition, "replace last on empty log")
	}
	if !l.entries[n-1].IsStreaming {
		return NewError(ErrorPrecondition, "replace last on terminal entry")
	}
	l.entries[n-1] = e
	return nil
}

// Last returns the tail entry.
func (l *MessageLog) Last() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Len returns the number of entries.
func (l *MessageLog) Len() int { return len(l.entries) }

// Snapshot returns a copy of all entries in display order.
func (l *MessageLog) Snapshot() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
