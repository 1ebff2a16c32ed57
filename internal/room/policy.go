package room

import (
	"github.com/openqb/quizroom-backend/internal/answer"
	"github.com/openqb/quizroom-backend/internal/engine"
)

type checkerPolicy struct{ c *answer.Checker }

func (p checkerPolicy) Judge(line, given string, strictness int) engine.Judgement {
	res := p.c.Check(line, given, strictness)
	return engine.Judgement{
		Directive:      engine.Directive(res.Directive),
		DirectedPrompt: res.DirectedPrompt,
	}
}

// DefaultPolicy adjudicates with the standard answer checker. Other question
// types plug in their own engine.Policy instead.
func DefaultPolicy() engine.Policy {
	return checkerPolicy{c: answer.NewChecker()}
}

// finalPolicy demotes a prompt to a rejection. It wraps the room's policy
// for adjudications the floor holder can no longer follow up on, such as a
// disconnect or an expired answer countdown, so any policy resolves the
// buzz instead of leaving the floor held.
type finalPolicy struct{ p engine.Policy }

func (f finalPolicy) Judge(line, given string, strictness int) engine.Judgement {
	j := f.p.Judge(line, given, strictness)
	if j.Directive == engine.DirectivePrompt {
		return engine.Judgement{Directive: engine.DirectiveReject}
	}
	return j
}
