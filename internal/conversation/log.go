package conversation

import "sync"

// Log is the append-only ordered sequence of messages for one session and
// the single source of truth for everything the trajectory records. Entries
// are never mutated or removed once appended. The scheduler is the only
// writer; readers always go through Snapshot.
type Log struct {
	mu       sync.RWMutex
	messages []Message
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append assigns the next turn index to msg, stores it, and returns the
// assigned index. Indexes are contiguous starting at zero.
func (l *Log) Append(msg Message) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg.TurnIndex = len(l.messages)
	l.messages = append(l.messages, msg)
	return msg.TurnIndex
}

// Snapshot returns a defensive copy of the log. Callers never receive a
// mutable reference into the live slice, so a snapshot taken before later
// appends stays stable.
func (l *Log) Snapshot() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len returns the number of appended messages.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}
