// Package answer adjudicates submitted answers against an answer line. It is
// the default judging policy injected into room engines; alternative
// question types can supply their own.
package answer

import (
	"regexp"
	"strings"
)

// Directive is the outcome of judging one submitted answer.
type Directive string

const (
	Accept Directive = "accept"
	Reject Directive = "reject"
	Prompt Directive = "prompt"
)

// Result carries the directive plus an optional directed prompt shown to the
// floor holder when more specificity is needed.
type Result struct {
	Directive      Directive
	DirectedPrompt string
}

// Checker judges answers. Strictness runs 1 (loose) to 10 (exact); at or
// below the default of 7 a bare surname or other single significant token of
// the answer line is accepted.
type Checker struct{}

func NewChecker() *Checker { return &Checker{} }

var tagPattern = regexp.MustCompile(`<[^>]*>`)
var punctPattern = regexp.MustCompile(`[^a-z0-9 ]+`)

var articles = map[string]bool{"a": true, "an": true, "the": true}

// Normalize lowercases, strips markup, punctuation and leading articles, and
// collapses whitespace.
func Normalize(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.ToLower(s)
	s = punctPattern.ReplaceAllString(s, " ")
	fields := strings.Fields(s)
	for len(fields) > 0 && articles[fields[0]] {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}

// Check matches given against line. The main answer precedes any bracketed
// clause; bracketed clauses carry alternates ("or ..."), extra acceptable
// answers ("accept ..."), prompts ("prompt on ...") and explicit rejections
// ("reject ...").
func (c *Checker) Check(line, given string, strictness int) Result {
	if strictness < 1 {
		strictness = 7
	}
	given = Normalize(given)
	if given == "" {
		return Result{Directive: Reject}
	}

	main, clauses := splitAnswerline(line)

	for _, clause := range clauses {
		directive, target := parseClause(clause)
		if target == "" {
			continue
		}
		if !matches(target, given, strictness) {
			continue
		}
		switch directive {
		case "reject":
			return Result{Directive: Reject}
		case "prompt":
			return Result{Directive: Prompt, DirectedPrompt: directedPrompt(clause)}
		default: // or / accept
			return Result{Directive: Accept}
		}
	}

	if matches(main, given, strictness) {
		return Result{Directive: Accept}
	}
	return Result{Directive: Reject}
}

// splitAnswerline separates the main answer from its bracketed clauses,
// splitting clause bodies on semicolons.
func splitAnswerline(line string) (string, []string) {
	var clauses []string
	open := strings.IndexByte(line, '[')
	main := line
	if open >= 0 {
		main = line[:open]
		body := line[open+1:]
		if close := strings.IndexByte(body, ']'); close >= 0 {
			body = body[:close]
		}
		for _, part := range strings.Split(body, ";") {
			part = strings.TrimSpace(part)
			if part != "" {
				clauses = append(clauses, part)
			}
		}
	}
	// parenthesized clarifications are not part of the required answer
	if p := strings.IndexByte(main, '('); p >= 0 {
		main = main[:p]
	}
	return Normalize(main), clauses
}

// parseClause extracts the directive word and its normalized target.
func parseClause(clause string) (string, string) {
	lower := strings.ToLower(clause)
	switch {
	case strings.HasPrefix(lower, "or "):
		return "or", Normalize(clause[3:])
	case strings.HasPrefix(lower, "accept "):
		return "accept", stripCondition(clause[7:])
	case strings.HasPrefix(lower, "prompt on "):
		return "prompt", stripCondition(clause[10:])
	case strings.HasPrefix(lower, "reject "):
		return "reject", Normalize(clause[7:])
	}
	return "", ""
}

// stripCondition removes trailing qualifiers like "after conquest is read"
// or "by asking ..." from a directive target.
func stripCondition(s string) string {
	lower := strings.ToLower(s)
	for _, sep := range []string{" after ", " before ", " until ", " by asking "} {
		if i := strings.Index(lower, sep); i >= 0 {
			s = s[:i]
			lower = lower[:i]
		}
	}
	return Normalize(s)
}

// directedPrompt pulls the "by asking ..." text out of a prompt clause.
func directedPrompt(clause string) string {
	lower := strings.ToLower(clause)
	i := strings.Index(lower, "by asking ")
	if i < 0 {
		return ""
	}
	text := strings.TrimSpace(clause[i+len("by asking "):])
	return strings.Trim(text, `"“”`)
}

// matches reports whether given satisfies target under the strictness level.
// Exact normalized equality always matches. Below maximum strictness a
// single significant token of the target (a surname, say) is enough.
func matches(target, given string, strictness int) bool {
	if target == "" {
		return false
	}
	if given == target {
		return true
	}
	if strictness > 7 {
		return false
	}
	tokens := strings.Fields(target)
	if len(tokens) < 2 {
		return false
	}
	for _, tok := range tokens {
		if len(tok) >= 3 && given == tok {
			return true
		}
	}
	// multi-token subsets match order-insensitively
	givenTokens := strings.Fields(given)
	if len(givenTokens) < 2 {
		return false
	}
	tokenSet := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		tokenSet[tok] = true
	}
	for _, tok := range givenTokens {
		if !tokenSet[tok] {
			return false
		}
	}
	return true
}
