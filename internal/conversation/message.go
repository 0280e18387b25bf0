// Package conversation defines the canonical message model, the append-only
// session log, and the per-participant visibility projection derived from it.
package conversation

import "encoding/json"

// Role classifies the wire-level origin of a message.
type Role string

const (
	RoleSystem      Role = "system"
	RoleUser        Role = "user"
	RoleParticipant Role = "participant"
)

// Author identifies which participant a message belongs to. System and user
// messages that address the whole session carry AuthorNone; system-notes that
// concern exactly one participant carry that participant's author so the
// projection can scope them.
type Author string

const (
	AuthorNone      Author = ""
	AuthorDriver    Author = "driver"
	AuthorNavigator Author = "navigator"
)

// Other returns the opposite participant.
func (a Author) Other() Author {
	if a == AuthorDriver {
		return AuthorNavigator
	}
	return AuthorDriver
}

// Valid reports whether a names one of the two participants.
func (a Author) Valid() bool {
	return a == AuthorDriver || a == AuthorNavigator
}

// Kind tags the payload variant of a message. The set is closed so redaction
// logic can be total rather than key-probing.
type Kind string

const (
	KindInstruction    Kind = "instruction"
	KindUtterance      Kind = "utterance"
	KindToolInvocation Kind = "tool-invocation"
	KindToolResult     Kind = "tool-result"
	KindSystemNote     Kind = "system-note"
)

// Message is a single immutable entry in the session log. TurnIndex is
// assigned by Log.Append and is strictly increasing and contiguous.
// Auxiliary is the one optional payload slot (model reasoning traces and the
// like); it is the unit of redaction and is opaque to the orchestrator.
type Message struct {
	TurnIndex int             `json:"turn_index"`
	Role      Role            `json:"role"`
	Author    Author          `json:"author,omitempty"`
	Kind      Kind            `json:"kind"`
	Content   string          `json:"content"`
	Auxiliary json.RawMessage `json:"auxiliary,omitempty"`
}

// NewInstruction builds the session-opening instruction message shown to both
// participants.
func NewInstruction(content string) Message {
	return Message{Role: RoleUser, Author: AuthorNone, Kind: KindInstruction, Content: content}
}

// NewUtterance builds a participant utterance, optionally carrying an
// auxiliary reasoning payload.
func NewUtterance(author Author, content string, auxiliary json.RawMessage) Message {
	return Message{Role: RoleParticipant, Author: author, Kind: KindUtterance, Content: content, Auxiliary: auxiliary}
}

// NewToolInvocation records the action text a participant asked to execute.
func NewToolInvocation(author Author, action string) Message {
	return Message{Role: RoleParticipant, Author: author, Kind: KindToolInvocation, Content: action}
}

// NewToolResult records the execution backend's observation for an invocation.
func NewToolResult(author Author, output string) Message {
	return Message{Role: RoleParticipant, Author: author, Kind: KindToolResult, Content: output}
}

// NewSystemNote builds a scheduler-authored note. A non-empty author scopes
// the note to that participant's view; AuthorNone makes it visible to both.
func NewSystemNote(author Author, content string) Message {
	return Message{Role: RoleSystem, Author: author, Kind: KindSystemNote, Content: content}
}
