package streamchat

// Outcome describes what Apply did to the log.
type Outcome int

const (
	// Unchanged means the frame was dropped.
	Unchanged Outcome = iota
	// Appended means a new entry was added at the tail.
	Appended
	// Updated means the streaming tail entry was replaced.
	Updated
)

// Assembler folds decoded frames into a MessageLog.
type Assembler struct {
	// SystemSender is the username that maps to AuthorOther.
	SystemSender string

	// OnOrphan is called with the entry that was still streaming when a new
	// stream started. The entry is terminated before the new one is appended.
	OnOrphan func(Entry)
}

// AuthorFor maps a username to its author class. Everything that is not the
// system sender, including an empty name, is AuthorSelf.
func (a *Assembler) AuthorFor(username string) AuthorClass {
	if username != "" && username == a.SystemSender {
		return AuthorOther
	}
	return AuthorSelf
}

// Apply folds f into log.
func (a *Assembler) Apply(log *MessageLog, f Frame) (Outcome, error) {
	switch f := f.(type) {
	case TerminalFrame:
		// Never merges, even into an open stream.
		log.Append(Entry{Content: f.Message, Author: a.AuthorFor(f.Username)})
		return Appended, nil
	case StreamStartFrame:
		if last, ok := log.Last(); ok && last.IsStream && last.IsStreaming {
			last.IsStreaming = false
			if err := log.ReplaceLast(last); err != nil {
				return Unchanged, err
			}
			if a.OnOrphan != nil {
				a.OnOrphan(last)
			}
		}
		log.Append(Entry{
			Content:     f.Message,
			Author:      a.AuthorFor(f.Username),
			IsStream:    true,
			IsStreaming: true,
		})
		return Appended, nil
	case StreamDeltaFrame:
		last, ok := log.Last()
		if !ok || !last.IsStream || !last.IsStreaming {
			return Unchanged, nil
		}
		if f.Message != "" {
			last.Content = f.Message
		}
		last.IsStreaming = !f.End
		if err := log.ReplaceLast(last); err != nil {
			return Unchanged, err
		}
		return Updated, nil
	default:
		return Unchanged, NewError(ErrorProtocolDecode, "unknown frame variant")
	}
}
