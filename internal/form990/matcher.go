package form990

import (
	"strconv"
	"strings"
)

// State classifies an extraction outcome. Callers must distinguish Absent
// from a found zero; Malformed means a candidate tag was present but its
// text never parsed.
type State int

const (
	Absent State = iota
	Found
	Malformed
)

// TextResult is the outcome of a text field extraction.
type TextResult struct {
	State State
	Value string
}

// AmountResult is the outcome of a numeric field extraction.
type AmountResult struct {
	State State
	Value float64
}

// MatchText scans the scope's full descendant set for each candidate tag
// name in priority order and returns the first non-empty text value. The
// candidate order wins over document order: a later-listed tag earlier in
// the document never shadows an earlier-listed one.
func MatchText(scope *Node, candidates ...string) TextResult {
	if scope == nil {
		return TextResult{State: Absent}
	}
	for _, candidate := range candidates {
		var value string
		scope.walk(func(n *Node) bool {
			if n.Name == candidate && strings.TrimSpace(n.Text) != "" {
				value = strings.TrimSpace(n.Text)
				return false
			}
			return true
		})
		if value != "" {
			return TextResult{State: Found, Value: value}
		}
	}
	return TextResult{State: Absent}
}

// MatchAmount is MatchText for numeric fields. A candidate whose first
// textual match fails to parse is treated as not found and the next
// candidate is tried; the whole extraction is never failed by one bad value.
func MatchAmount(scope *Node, candidates ...string) AmountResult {
	if scope == nil {
		return AmountResult{State: Absent}
	}
	malformed := false
	for _, candidate := range candidates {
		var text string
		scope.walk(func(n *Node) bool {
			if n.Name == candidate && strings.TrimSpace(n.Text) != "" {
				text = strings.TrimSpace(n.Text)
				return false
			}
			return true
		})
		if text == "" {
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			malformed = true
			continue
		}
		return AmountResult{State: Found, Value: v}
	}
	if malformed {
		return AmountResult{State: Malformed}
	}
	return AmountResult{State: Absent}
}
