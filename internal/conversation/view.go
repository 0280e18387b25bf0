package conversation

// Visibility controls what each participant may see of the other's messages.
// The zero value is the most restrictive setting.
type Visibility struct {
	// ShowReasoningToOther keeps the auxiliary payload on the other
	// participant's utterances instead of stripping it.
	ShowReasoningToOther bool
	// ShowToolActionToNavigator includes driver tool-invocation messages in
	// the navigator's view. When false they are omitted entirely, not
	// blanked: the action text itself is execution detail.
	ShowToolActionToNavigator bool
	// ShowToolResultToNavigator includes tool-result messages in the
	// navigator's view.
	ShowToolResultToNavigator bool
}

// Project derives viewer's redacted view of a log snapshot. It never mutates
// the input and is idempotent: projecting an already-projected view with the
// same viewer and visibility yields an identical result.
func Project(snapshot []Message, viewer Author, vis Visibility) []Message {
	out := make([]Message, 0, len(snapshot))
	for _, msg := range snapshot {
		projected, ok := projectOne(msg, viewer, vis)
		if !ok {
			continue
		}
		out = append(out, projected)
	}
	return out
}

func projectOne(msg Message, viewer Author, vis Visibility) (Message, bool) {
	// Scheduler-authored notes: scoped to one participant when tagged,
	// otherwise visible to both.
	if msg.Kind == KindSystemNote {
		if msg.Author != AuthorNone && msg.Author != viewer {
			return Message{}, false
		}
		return msg, true
	}

	// Instructions and other non-participant messages are visible to both.
	if msg.Author == AuthorNone {
		return msg, true
	}

	// A participant always sees its own messages in full.
	if msg.Author == viewer {
		return msg, true
	}

	// Remaining cases: the other participant's messages.
	switch msg.Kind {
	case KindToolInvocation:
		if viewer == AuthorNavigator && !vis.ShowToolActionToNavigator {
			return Message{}, false
		}
	case KindToolResult:
		if viewer == AuthorNavigator && !vis.ShowToolResultToNavigator {
			return Message{}, false
		}
	}

	if !vis.ShowReasoningToOther {
		msg.Auxiliary = nil
	}
	return msg, true
}
