// Package transcript converts structured-or-unstructured conversation
// payloads into an ordered, role-tagged turn sequence. Tool and system
// traffic is filtered out, inline tool-call JSON fragments are stripped, and
// unlabeled lines get a best-effort heuristic role. Reconstruction never
// fails: unparseable input yields an empty sequence or one raw-text turn.
package transcript

import (
	"regexp"
	"strings"
	"time"

	"github.com/oakline/callbridge/internal/models"
)

// Bounds the iterative inline-fragment removal so adversarial nesting
// cannot loop forever.
const maxStripIterations = 4

var markerLine = regexp.MustCompile(`(?i)^\s*\[?\s*(user|customer|caller|human|bot|ai|assistant|agent|system)\s*\]?\s*:\s*(.*)$`)

var greeting = regexp.MustCompile(`(?i)\b(thank you for calling|thanks for calling|how (can|may) i (help|assist)|welcome to|is there anything|good (morning|afternoon|evening))\b`)

var toolRoles = map[string]bool{
	"tool":             true,
	"tool_calls":       true,
	"tool_call_result": true,
	"function":         true,
	"function_call":    true,
	"system":           true,
}

var callerRoles = map[string]bool{
	"user": true, "customer": true, "caller": true, "human": true,
}

var assistantRoles = map[string]bool{
	"assistant": true, "bot": true, "ai": true, "agent": true,
}

// Explicit role state for the line scanner: unknown until the first
// classification, then sticky per turn.
type roleState int

const (
	stateUnknown roleState = iota
	stateCaller
	stateAssistant
)

func (s roleState) role() string {
	if s == stateCaller {
		return models.RoleCaller
	}
	return models.RoleAssistant
}

// Reconstruct accepts either a turn-object array or a raw transcript string
// and returns the retained turns numbered sequentially from 1. Ordering is
// positional from the source; nothing is re-sorted.
func Reconstruct(raw any) []models.ConversationTurn {
	var turns []models.ConversationTurn
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		turns = fromText(v)
	case []map[string]any:
		turns = fromObjects(v)
	case []any:
		objs := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				objs = append(objs, m)
			}
		}
		turns = fromObjects(objs)
	default:
		return nil
	}

	for i := range turns {
		turns[i].TurnNumber = i + 1
	}
	return turns
}

func fromObjects(msgs []map[string]any) []models.ConversationTurn {
	var out []models.ConversationTurn
	for _, m := range msgs {
		if isToolCall(m) {
			continue
		}
		role, ok := objectRole(m)
		if !ok {
			continue
		}
		text := stripToolCallFragments(textOf(m))
		if strings.TrimSpace(text) == "" {
			continue
		}
		t := models.ConversationTurn{Role: role, Text: strings.TrimSpace(text)}
		if ms, ok := floatOf(m["time"]); ok && ms > 0 {
			ts := time.UnixMilli(int64(ms)).UTC()
			t.Timestamp = &ts
		}
		if s, ok := floatOf(m["secondsFromStart"]); ok {
			t.SecondsFromStart = s
		}
		if c, ok := floatOf(m["confidence"]); ok {
			t.Confidence = c
		}
		out = append(out, t)
	}
	return out
}

// isToolCall detects object-shaped tool calls in any of the platform's
// shapes: a tool role/type, an attached toolCalls list, or a bare function
// payload.
func isToolCall(m map[string]any) bool {
	if r, ok := m["role"].(string); ok && toolRoles[strings.ToLower(r)] {
		return true
	}
	if t, ok := m["type"].(string); ok && toolRoles[strings.ToLower(t)] {
		return true
	}
	if _, ok := m["toolCalls"]; ok {
		return true
	}
	if _, ok := m["toolCallId"]; ok {
		return true
	}
	if _, ok := m["function"]; ok {
		return true
	}
	return false
}

func objectRole(m map[string]any) (string, bool) {
	r, _ := m["role"].(string)
	r = strings.ToLower(strings.TrimSpace(r))
	switch {
	case callerRoles[r]:
		return models.RoleCaller, true
	case assistantRoles[r]:
		return models.RoleAssistant, true
	}
	return "", false
}

func textOf(m map[string]any) string {
	for _, k := range []string{"message", "content", "text"} {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func floatOf(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// fromText parses a single transcript string. Lines with explicit role
// markers start turns; unlabeled lines continue the previous turn, except
// in fully unlabeled input where each line is its own turn and roles
// alternate as a last resort after the greeting heuristic seeds the first.
func fromText(s string) []models.ConversationTurn {
	s = stripToolCallFragments(s)
	if strings.TrimSpace(s) == "" {
		return nil
	}

	lines := strings.Split(s, "\n")
	hasMarkers := false
	for _, line := range lines {
		if markerLine.MatchString(line) {
			hasMarkers = true
			break
		}
	}
	if hasMarkers {
		return fromMarkedLines(lines)
	}
	return fromUnmarkedLines(lines)
}

func fromMarkedLines(lines []string) []models.ConversationTurn {
	var out []models.ConversationTurn
	state := stateUnknown
	open := false // a turn is accumulating at out[len(out)-1]

	for _, line := range lines {
		if m := markerLine.FindStringSubmatch(line); m != nil {
			label := strings.ToLower(m[1])
			if toolRoles[label] {
				// system lines are dropped and break continuation
				open = false
				continue
			}
			if callerRoles[label] {
				state = stateCaller
			} else {
				state = stateAssistant
			}
			out = append(out, models.ConversationTurn{Role: state.role(), Text: strings.TrimSpace(m[2])})
			open = true
			continue
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		if open {
			// unlabeled continuation keeps the previous turn's role
			last := &out[len(out)-1]
			if last.Text == "" {
				last.Text = text
			} else {
				last.Text += " " + text
			}
			continue
		}
		// unlabeled line before any marker
		if state == stateUnknown {
			state = classifyFirst(text)
		}
		out = append(out, models.ConversationTurn{Role: state.role(), Text: text})
		open = true
	}

	return dropEmpty(out)
}

func fromUnmarkedLines(lines []string) []models.ConversationTurn {
	var out []models.ConversationTurn
	state := stateUnknown

	for _, line := range lines {
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		switch state {
		case stateUnknown:
			state = classifyFirst(text)
		case stateCaller:
			state = stateAssistant
		case stateAssistant:
			state = stateCaller
		}
		out = append(out, models.ConversationTurn{Role: state.role(), Text: text})
	}

	return dropEmpty(out)
}

// classifyFirst seeds the state machine: greeting or offer-of-help phrasing
// reads as the assistant answering the line, anything else as the caller.
func classifyFirst(text string) roleState {
	if greeting.MatchString(text) {
		return stateAssistant
	}
	return stateCaller
}

func dropEmpty(turns []models.ConversationTurn) []models.ConversationTurn {
	out := turns[:0]
	for _, t := range turns {
		if t.Text != "" {
			out = append(out, t)
		}
	}
	return out
}

// stripToolCallFragments removes tool-call JSON embedded inline in plain
// text, matching braces with a depth scan and re-running until no fragment
// remains or the iteration bound is hit.
func stripToolCallFragments(s string) string {
	for i := 0; i < maxStripIterations; i++ {
		frag, ok := findToolCallFragment(s)
		if !ok {
			break
		}
		s = strings.Replace(s, frag, "", 1)
	}
	return s
}

func findToolCallFragment(s string) (string, bool) {
	for start := strings.IndexByte(s, '{'); start >= 0; {
		end, ok := matchBrace(s, start)
		if ok {
			frag := s[start : end+1]
			if looksLikeToolCall(frag) {
				return frag, true
			}
		}
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start = start + 1 + next
	}
	return "", false
}

// matchBrace returns the index of the brace closing s[start], tracking
// nesting depth.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func looksLikeToolCall(frag string) bool {
	for _, needle := range []string{"toolCalls", "tool_calls", "toolCallId", "tool_call_id", `"function"`, "function_call"} {
		if strings.Contains(frag, needle) {
			return true
		}
	}
	return false
}
