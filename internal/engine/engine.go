// Package engine is the question-lifecycle state machine. It is pure: the
// room coordinator owns a State value and funnels every mutation through
// Apply, which never blocks and never touches I/O. Timing and permission
// policy live in the coordinator; adjudication policy is injected.
package engine

import (
	"errors"
	"slices"
	"strings"

	"github.com/openqb/quizroom-backend/internal/questions"
)

var ErrWrongPhase = errors.New("invalid phase for command")
var ErrFloorHeld = errors.New("floor already held")
var ErrAlreadyBuzzed = errors.New("already buzzed this question")
var ErrNotFloorHolder = errors.New("not the floor holder")
var ErrTooEarlyToSkip = errors.New("too early to skip")
var ErrPaused = errors.New("reading is paused")
var ErrNoQuestion = errors.New("no question loaded")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseReading  Phase = "reading"
	PhaseBuzzed   Phase = "buzzed"
	PhaseRevealed Phase = "revealed"
)

// minimum emitted words before a skip is honored, to stop spam-skipping
const minWordsBeforeSkip = 5

const (
	powerScore = 15
	tenScore   = 10
	negScore   = -5
)

type Directive string

const (
	DirectiveAccept Directive = "accept"
	DirectiveReject Directive = "reject"
	DirectivePrompt Directive = "prompt"
)

// Judgement is the outcome of matching a submitted answer.
type Judgement struct {
	Directive      Directive
	DirectedPrompt string
}

// Policy supplies question-type-specific adjudication. Swapping the policy
// supports new question types without touching the state machine.
type Policy interface {
	Judge(answerline, given string, strictness int) Judgement
}

type State struct {
	Phase  Phase
	Tossup *questions.Tossup

	Words          []string // reveal tokens of the active question, power mark included
	WordIndex      int      // tokens consumed so far
	WordsEmitted   int      // tokens actually shown (power marks are consumed silently)
	EmittableWords int      // total tokens that will ever be shown
	PowerMarkIndex int      // token index of the power mark, -1 when absent

	BuzzedIn     string   // floor holder, "" when the floor is free
	Buzzes       []string // everyone who buzzed on this question
	BuzzInPower  bool     // floor holder buzzed before the power mark was consumed
	BuzzCelerity float64  // 1 - emitted/emittable at buzz time

	LiveAnswer string
	Paused     bool

	QuestionCount int // questions served over the room's lifetime
}

func NewState() State {
	return State{Phase: PhaseIdle, PowerMarkIndex: -1}
}

type CommandType string

const (
	CmdAdvance    CommandType = "Advance"
	CmdSkip       CommandType = "Skip"
	CmdEmitWord   CommandType = "EmitWord"
	CmdBuzz       CommandType = "Buzz"
	CmdAnswer     CommandType = "Answer"
	CmdAnswerLive CommandType = "AnswerLive"
	CmdSetPaused  CommandType = "SetPaused"
)

// Command carries the actor, any payload and the snapshot of room settings
// the transition depends on.
type Command struct {
	Type   CommandType
	UserID string

	Tossup *questions.Tossup // Advance: question preloaded outside the room loop
	Answer string
	Paused bool

	Rebuzz     bool
	Strictness int
}

type EventType string

const (
	EvtQuestionStarted EventType = "QuestionStarted"
	EvtWordRevealed    EventType = "WordRevealed"
	EvtAnswerRevealed  EventType = "AnswerRevealed"
	EvtBuzz            EventType = "Buzz"
	EvtAnswerJudged    EventType = "AnswerJudged"
	EvtLiveAnswer      EventType = "LiveAnswer"
	EvtPauseToggled    EventType = "PauseToggled"
)

type Event struct {
	Type           EventType
	UserID         string
	Word           string
	Answer         string // given answer on judged, answer line on revealed
	Directive      Directive
	DirectedPrompt string
	Score          int
	Celerity       float64
	Paused         bool
}

// Apply validates cmd against s and returns the resulting events and state.
// On error the returned state is s unchanged. Preconditions are checked
// before any mutation, so a failed command never partially applies.
func Apply(s State, cmd Command, pol Policy) ([]Event, State, error) {
	switch cmd.Type {
	case CmdAdvance:
		return applyAdvance(s, cmd)
	case CmdSkip:
		return applySkip(s)
	case CmdEmitWord:
		return applyEmitWord(s)
	case CmdBuzz:
		return applyBuzz(s, cmd)
	case CmdAnswer:
		return applyAnswer(s, cmd, pol)
	case CmdAnswerLive:
		return applyAnswerLive(s, cmd)
	case CmdSetPaused:
		return applySetPaused(s, cmd)
	default:
		return nil, s, ErrUnsupportedCommand
	}
}

func applyAdvance(s State, cmd Command) ([]Event, State, error) {
	if s.Phase != PhaseIdle && s.Phase != PhaseRevealed {
		return nil, s, ErrWrongPhase
	}
	if cmd.Tossup == nil {
		return nil, s, ErrNoQuestion
	}

	ns := s
	ns.Tossup = cmd.Tossup
	ns.Words = cmd.Tossup.Words()
	ns.WordIndex = 0
	ns.WordsEmitted = 0
	ns.PowerMarkIndex = slices.Index(ns.Words, questions.PowerMark)
	ns.EmittableWords = len(ns.Words)
	if ns.PowerMarkIndex >= 0 {
		ns.EmittableWords--
	}
	ns.BuzzedIn = ""
	ns.Buzzes = nil
	ns.BuzzInPower = false
	ns.BuzzCelerity = 0
	ns.LiveAnswer = ""
	ns.Paused = false
	ns.QuestionCount++
	ns.Phase = PhaseReading

	return []Event{{Type: EvtQuestionStarted}}, ns, nil
}

func applySkip(s State) ([]Event, State, error) {
	if s.Phase != PhaseReading || s.BuzzedIn != "" {
		return nil, s, ErrWrongPhase
	}
	if s.WordsEmitted < minWordsBeforeSkip {
		return nil, s, ErrTooEarlyToSkip
	}

	ns := s
	ns.Phase = PhaseRevealed
	return []Event{{Type: EvtAnswerRevealed, Answer: s.Tossup.Answer}}, ns, nil
}

func applyEmitWord(s State) ([]Event, State, error) {
	if s.Phase != PhaseReading || s.BuzzedIn != "" {
		return nil, s, ErrWrongPhase
	}
	if s.Paused {
		return nil, s, ErrPaused
	}
	if s.WordIndex >= len(s.Words) {
		return nil, s, ErrWrongPhase
	}

	ns := s
	tok := ns.Words[ns.WordIndex]
	ns.WordIndex++

	var events []Event
	if tok != questions.PowerMark {
		ns.WordsEmitted++
		events = append(events, Event{Type: EvtWordRevealed, Word: tok})
	}
	if ns.WordIndex >= len(ns.Words) {
		ns.Phase = PhaseRevealed
		events = append(events, Event{Type: EvtAnswerRevealed, Answer: ns.Tossup.Answer})
	}
	return events, ns, nil
}

func applyBuzz(s State, cmd Command) ([]Event, State, error) {
	if s.Phase != PhaseReading {
		return nil, s, ErrWrongPhase
	}
	if s.BuzzedIn != "" {
		return nil, s, ErrFloorHeld
	}
	if !cmd.Rebuzz && slices.Contains(s.Buzzes, cmd.UserID) {
		return nil, s, ErrAlreadyBuzzed
	}

	ns := s
	ns.BuzzedIn = cmd.UserID
	ns.Buzzes = append(slices.Clone(s.Buzzes), cmd.UserID)
	ns.BuzzInPower = ns.PowerMarkIndex >= 0 && ns.WordIndex <= ns.PowerMarkIndex
	ns.BuzzCelerity = 0
	if ns.EmittableWords > 0 {
		ns.BuzzCelerity = 1 - float64(ns.WordsEmitted)/float64(ns.EmittableWords)
	}
	ns.Phase = PhaseBuzzed

	return []Event{{Type: EvtBuzz, UserID: cmd.UserID}}, ns, nil
}

func applyAnswer(s State, cmd Command, pol Policy) ([]Event, State, error) {
	if s.Phase != PhaseBuzzed {
		return nil, s, ErrWrongPhase
	}
	if cmd.UserID != s.BuzzedIn {
		return nil, s, ErrNotFloorHolder
	}

	j := pol.Judge(s.Tossup.Answer, cmd.Answer, cmd.Strictness)

	if j.Directive == DirectivePrompt {
		ns := s
		ns.LiveAnswer = ""
		return []Event{{
			Type:           EvtAnswerJudged,
			UserID:         cmd.UserID,
			Answer:         cmd.Answer,
			Directive:      DirectivePrompt,
			DirectedPrompt: j.DirectedPrompt,
		}}, ns, nil
	}

	score := 0
	switch {
	case j.Directive == DirectiveAccept && s.BuzzInPower:
		score = powerScore
	case j.Directive == DirectiveAccept:
		score = tenScore
	case s.WordIndex < len(s.Words):
		score = negScore
	}

	ns := s
	ns.BuzzedIn = ""
	ns.LiveAnswer = ""

	events := []Event{{
		Type:      EvtAnswerJudged,
		UserID:    cmd.UserID,
		Answer:    cmd.Answer,
		Directive: j.Directive,
		Score:     score,
		Celerity:  s.BuzzCelerity,
	}}

	// An accepted answer resolves the question; a rejected one resumes
	// reading unless the content is exhausted.
	if j.Directive == DirectiveAccept || ns.WordIndex >= len(ns.Words) {
		ns.Phase = PhaseRevealed
		events = append(events, Event{Type: EvtAnswerRevealed, Answer: ns.Tossup.Answer})
	} else {
		ns.Phase = PhaseReading
	}
	return events, ns, nil
}

func applyAnswerLive(s State, cmd Command) ([]Event, State, error) {
	if s.Phase != PhaseBuzzed {
		return nil, s, ErrWrongPhase
	}
	if cmd.UserID != s.BuzzedIn {
		return nil, s, ErrNotFloorHolder
	}

	ns := s
	ns.LiveAnswer = cmd.Answer
	return []Event{{Type: EvtLiveAnswer, UserID: cmd.UserID, Answer: cmd.Answer}}, ns, nil
}

func applySetPaused(s State, cmd Command) ([]Event, State, error) {
	if s.Phase != PhaseReading || s.BuzzedIn != "" {
		return nil, s, ErrWrongPhase
	}

	ns := s
	ns.Paused = cmd.Paused
	return []Event{{Type: EvtPauseToggled, Paused: cmd.Paused}}, ns, nil
}

// CanBuzz reports whether userID could claim the floor right now, mirroring
// the buzz precondition for connection snapshots.
func CanBuzz(s State, userID string, rebuzz bool) bool {
	if s.Phase != PhaseReading || s.BuzzedIn != "" {
		return false
	}
	return rebuzz || !slices.Contains(s.Buzzes, userID)
}

// RevealedPrefix returns the words already shown, for late-join catch-up.
func RevealedPrefix(s State) string {
	var words []string
	for _, tok := range s.Words[:s.WordIndex] {
		if tok != questions.PowerMark {
			words = append(words, tok)
		}
	}
	return strings.Join(words, " ")
}
