package moderation

import "strings"

// Checker is the appropriateness boundary. The real implementation is an
// external moderation-check service; ListChecker is a local stand-in.
type Checker interface {
	IsAppropriate(s string) bool
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(string) bool

func (f CheckerFunc) IsAppropriate(s string) bool { return f(s) }

// ListChecker rejects strings containing any denylisted substring,
// case-insensitively.
type ListChecker struct {
	deny []string
}

func NewListChecker(deny []string) *ListChecker {
	lowered := make([]string, len(deny))
	for i, w := range deny {
		lowered[i] = strings.ToLower(w)
	}
	return &ListChecker{deny: lowered}
}

func (c *ListChecker) IsAppropriate(s string) bool {
	lower := strings.ToLower(s)
	for _, w := range c.deny {
		if w != "" && strings.Contains(lower, w) {
			return false
		}
	}
	return true
}
