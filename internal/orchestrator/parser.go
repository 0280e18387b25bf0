package orchestrator

import (
	"encoding/json"
	"regexp"
	"strings"

	"tandem/internal/orchestrator/ports"
)

// Directive is the structured intent extracted from a collaborator reply.
// All fields may be unset for a plain advisory utterance.
type Directive struct {
	// Action requests tool execution, subject to the execution gate.
	Action *ports.Action
	// Finish signals that the participant considers the task complete.
	Finish bool
	// Confirm carries the explicit choice on a pending finish request.
	Confirm *bool
}

// ReplyParser extracts directives from collaborator reply text. Directives
// are JSON objects embedded anywhere in the reply, e.g.
//
//	{"command": "go test ./..."}
//	{"finish": true}
//	{"confirm": false}
type ReplyParser struct {
	objectPattern *regexp.Regexp
	markerPattern *regexp.Regexp
}

// NewReplyParser creates a parser with the default directive patterns.
func NewReplyParser() *ReplyParser {
	return &ReplyParser{
		// Non-nested JSON objects; directive payloads are flat.
		objectPattern: regexp.MustCompile(`\{[^{}]*\}`),
		// A directive key mentioned anywhere means the reply intended a
		// directive; failing to parse one is then a format error.
		markerPattern: regexp.MustCompile(`"(command|finish|confirm)"\s*:`),
	}
}

type directivePayload struct {
	Command string `json:"command"`
	Finish  bool   `json:"finish"`
	Confirm *bool  `json:"confirm"`
}

// ParseReply extracts the directive from reply text. Text without directive
// markers parses as an empty directive (plain utterance). Text that carries
// markers but no decodable directive object yields a *FormatError.
func (p *ReplyParser) ParseReply(text string) (Directive, error) {
	var dir Directive
	found := false

	for _, candidate := range p.objectPattern.FindAllString(text, -1) {
		payload, ok := p.decode(candidate)
		if !ok {
			continue
		}
		if payload.Command == "" && !payload.Finish && payload.Confirm == nil {
			continue
		}
		found = true
		if payload.Command != "" && dir.Action == nil {
			dir.Action = &ports.Action{Command: payload.Command}
		}
		if payload.Finish {
			dir.Finish = true
		}
		if payload.Confirm != nil && dir.Confirm == nil {
			dir.Confirm = payload.Confirm
		}
	}

	if !found && p.markerPattern.MatchString(text) {
		return Directive{}, &FormatError{Reason: "directive marker present but no parsable directive object"}
	}
	return dir, nil
}

// ParseConfirmation extracts the explicit confirm/reject choice for a
// pending finish request. A reply without a decodable choice is a format
// error; the confirmation turn requires one.
func (p *ReplyParser) ParseConfirmation(text string) (bool, error) {
	dir, err := p.ParseReply(text)
	if err != nil {
		return false, err
	}
	if dir.Confirm == nil {
		return false, &FormatError{Reason: "confirmation turn requires a {\"confirm\": true|false} directive"}
	}
	return *dir.Confirm, nil
}

func (p *ReplyParser) decode(candidate string) (directivePayload, bool) {
	var payload directivePayload
	if err := json.Unmarshal([]byte(candidate), &payload); err == nil {
		return payload, true
	}
	fixed := fixJSON(candidate)
	if err := json.Unmarshal([]byte(fixed), &payload); err == nil {
		return payload, true
	}
	return directivePayload{}, false
}

// fixJSON repairs the common model-output JSON defects: trailing commas,
// unquoted keys, single quotes.
func fixJSON(jsonStr string) string {
	jsonStr = regexp.MustCompile(`,\s*([}\]])`).ReplaceAllString(jsonStr, "$1")
	jsonStr = regexp.MustCompile(`([{,]\s*)([a-zA-Z_][a-zA-Z0-9_]*)\s*:`).ReplaceAllString(jsonStr, `$1"$2":`)
	jsonStr = strings.ReplaceAll(jsonStr, "'", `"`)
	return jsonStr
}
