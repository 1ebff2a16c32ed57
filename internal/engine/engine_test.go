package engine

import (
	"errors"
	"testing"

	"github.com/openqb/quizroom-backend/internal/questions"
)

// stubPolicy judges every answer with a fixed directive.
type stubPolicy struct {
	directive Directive
	prompt    string
}

func (p stubPolicy) Judge(answerline, given string, strictness int) Judgement {
	return Judgement{Directive: p.directive, DirectedPrompt: p.prompt}
}

func testTossup() *questions.Tossup {
	return &questions.Tossup{
		Question: "This physicist formulated the (*) laws of motion and universal gravitation.",
		Answer:   "Isaac Newton",
		SetName:  "Sample Set",
	}
}

func containsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

// readingState advances a fresh state into a question with n words emitted.
func readingState(t *testing.T, emit int) State {
	t.Helper()
	_, s, err := Apply(NewState(), Command{Type: CmdAdvance, Tossup: testTossup()}, nil)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	for i := 0; i < emit; {
		events, ns, err := Apply(s, Command{Type: CmdEmitWord}, nil)
		if err != nil {
			t.Fatalf("emit word: %v", err)
		}
		s = ns
		if containsEvent(events, EvtWordRevealed) {
			i++
		}
	}
	return s
}

func TestAdvanceStartsReading(t *testing.T) {
	events, s, err := Apply(NewState(), Command{Type: CmdAdvance, Tossup: testTossup()}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Phase != PhaseReading {
		t.Fatalf("phase = %v, want reading", s.Phase)
	}
	if !containsEvent(events, EvtQuestionStarted) {
		t.Fatalf("expected QuestionStarted event")
	}
	if s.QuestionCount != 1 {
		t.Fatalf("question count = %d, want 1", s.QuestionCount)
	}
	if s.PowerMarkIndex < 0 {
		t.Fatalf("power mark not found")
	}
	if s.EmittableWords != len(s.Words)-1 {
		t.Fatalf("emittable = %d, want %d", s.EmittableWords, len(s.Words)-1)
	}
}

func TestAdvancePreconditions(t *testing.T) {
	cases := []struct {
		name    string
		setup   State
		cmd     Command
		wantErr error
	}{
		{
			name:    "no question loaded",
			setup:   NewState(),
			cmd:     Command{Type: CmdAdvance},
			wantErr: ErrNoQuestion,
		},
		{
			name:    "reading blocks advance",
			setup:   State{Phase: PhaseReading},
			cmd:     Command{Type: CmdAdvance, Tossup: testTossup()},
			wantErr: ErrWrongPhase,
		},
		{
			name:    "buzzed blocks advance",
			setup:   State{Phase: PhaseBuzzed},
			cmd:     Command{Type: CmdAdvance, Tossup: testTossup()},
			wantErr: ErrWrongPhase,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Apply(tc.setup, tc.cmd, nil)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestEmitWordConsumesPowerMarkSilently(t *testing.T) {
	s := readingState(t, 0)
	total := 0
	for s.Phase == PhaseReading {
		events, ns, err := Apply(s, Command{Type: CmdEmitWord}, nil)
		if err != nil {
			t.Fatalf("emit word: %v", err)
		}
		for _, e := range events {
			if e.Type == EvtWordRevealed {
				if e.Word == questions.PowerMark {
					t.Fatalf("power mark was emitted")
				}
				total++
			}
		}
		s = ns
	}
	if total != s.EmittableWords {
		t.Fatalf("emitted %d words, want %d", total, s.EmittableWords)
	}
	if s.Phase != PhaseRevealed {
		t.Fatalf("phase = %v, want revealed after exhaustion", s.Phase)
	}
}

func TestEmitWordWhilePaused(t *testing.T) {
	s := readingState(t, 2)
	_, s, err := Apply(s, Command{Type: CmdSetPaused, Paused: true}, nil)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, _, err := Apply(s, Command{Type: CmdEmitWord}, nil); !errors.Is(err, ErrPaused) {
		t.Fatalf("err = %v, want ErrPaused", err)
	}
}

func TestSkipThreshold(t *testing.T) {
	s := readingState(t, minWordsBeforeSkip-1)
	if _, _, err := Apply(s, Command{Type: CmdSkip}, nil); !errors.Is(err, ErrTooEarlyToSkip) {
		t.Fatalf("err = %v, want ErrTooEarlyToSkip", err)
	}

	s = readingState(t, minWordsBeforeSkip)
	events, ns, err := Apply(s, Command{Type: CmdSkip}, nil)
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	if ns.Phase != PhaseRevealed {
		t.Fatalf("phase = %v, want revealed", ns.Phase)
	}
	if !containsEvent(events, EvtAnswerRevealed) {
		t.Fatalf("expected AnswerRevealed event")
	}
}

func TestBuzzClaimsFloor(t *testing.T) {
	s := readingState(t, 2)
	events, ns, err := Apply(s, Command{Type: CmdBuzz, UserID: "alice"}, nil)
	if err != nil {
		t.Fatalf("buzz: %v", err)
	}
	if ns.Phase != PhaseBuzzed || ns.BuzzedIn != "alice" {
		t.Fatalf("floor = %q phase = %v", ns.BuzzedIn, ns.Phase)
	}
	if !containsEvent(events, EvtBuzz) {
		t.Fatalf("expected Buzz event")
	}
	if !ns.BuzzInPower {
		t.Fatalf("buzz before power mark should be in power")
	}

	// second buzz loses the race
	if _, _, err := Apply(ns, Command{Type: CmdBuzz, UserID: "bob"}, nil); !errors.Is(err, ErrFloorHeld) {
		t.Fatalf("err = %v, want ErrFloorHeld", err)
	}
}

func TestRebuzzPolicy(t *testing.T) {
	s := readingState(t, 2)
	_, s, err := Apply(s, Command{Type: CmdBuzz, UserID: "alice"}, nil)
	if err != nil {
		t.Fatalf("buzz: %v", err)
	}
	_, s, err = Apply(s, Command{Type: CmdAnswer, UserID: "alice", Answer: "wrong"}, stubPolicy{directive: DirectiveReject})
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if s.Phase != PhaseReading {
		t.Fatalf("phase = %v, want reading after reject", s.Phase)
	}

	if _, _, err := Apply(s, Command{Type: CmdBuzz, UserID: "alice"}, nil); !errors.Is(err, ErrAlreadyBuzzed) {
		t.Fatalf("err = %v, want ErrAlreadyBuzzed", err)
	}
	if _, _, err := Apply(s, Command{Type: CmdBuzz, UserID: "alice", Rebuzz: true}, nil); err != nil {
		t.Fatalf("rebuzz: %v", err)
	}
	if _, _, err := Apply(s, Command{Type: CmdBuzz, UserID: "bob"}, nil); err != nil {
		t.Fatalf("fresh buzzer: %v", err)
	}
}

func TestAnswerScoring(t *testing.T) {
	cases := []struct {
		name      string
		emit      int
		directive Directive
		wantScore int
		wantPhase Phase
	}{
		{name: "power", emit: 2, directive: DirectiveAccept, wantScore: 15, wantPhase: PhaseRevealed},
		{name: "ten past power mark", emit: 6, directive: DirectiveAccept, wantScore: 10, wantPhase: PhaseRevealed},
		{name: "neg mid question", emit: 2, directive: DirectiveReject, wantScore: -5, wantPhase: PhaseReading},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := readingState(t, tc.emit)
			_, s, err := Apply(s, Command{Type: CmdBuzz, UserID: "alice"}, nil)
			if err != nil {
				t.Fatalf("buzz: %v", err)
			}
			events, ns, err := Apply(s, Command{Type: CmdAnswer, UserID: "alice", Answer: "newton"}, stubPolicy{directive: tc.directive})
			if err != nil {
				t.Fatalf("answer: %v", err)
			}
			if ns.Phase != tc.wantPhase {
				t.Fatalf("phase = %v, want %v", ns.Phase, tc.wantPhase)
			}
			var judged *Event
			for i := range events {
				if events[i].Type == EvtAnswerJudged {
					judged = &events[i]
				}
			}
			if judged == nil {
				t.Fatalf("expected AnswerJudged event")
			}
			if judged.Score != tc.wantScore {
				t.Fatalf("score = %d, want %d", judged.Score, tc.wantScore)
			}
		})
	}
}

func TestRejectAfterLastWord(t *testing.T) {
	s := readingState(t, 2)
	_, s, err := Apply(s, Command{Type: CmdBuzz, UserID: "alice"}, nil)
	if err != nil {
		t.Fatalf("buzz: %v", err)
	}
	s.WordIndex = len(s.Words) // simulate content exhausted while buzzed

	events, ns, err := Apply(s, Command{Type: CmdAnswer, UserID: "alice", Answer: "wrong"}, stubPolicy{directive: DirectiveReject})
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if ns.Phase != PhaseRevealed {
		t.Fatalf("phase = %v, want revealed", ns.Phase)
	}
	if events[0].Score != 0 {
		t.Fatalf("score = %d, want 0 for reject with nothing left", events[0].Score)
	}
	if !containsEvent(events, EvtAnswerRevealed) {
		t.Fatalf("expected AnswerRevealed event")
	}
}

func TestPromptKeepsFloor(t *testing.T) {
	s := readingState(t, 2)
	_, s, err := Apply(s, Command{Type: CmdBuzz, UserID: "alice"}, nil)
	if err != nil {
		t.Fatalf("buzz: %v", err)
	}
	events, ns, err := Apply(s, Command{Type: CmdAnswer, UserID: "alice", Answer: "close"}, stubPolicy{directive: DirectivePrompt, prompt: "more specific"})
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if ns.Phase != PhaseBuzzed || ns.BuzzedIn != "alice" {
		t.Fatalf("prompt should keep the floor, phase = %v holder = %q", ns.Phase, ns.BuzzedIn)
	}
	if events[0].DirectedPrompt != "more specific" {
		t.Fatalf("directed prompt = %q", events[0].DirectedPrompt)
	}
}

func TestAnswerOnlyFromFloorHolder(t *testing.T) {
	s := readingState(t, 2)
	_, s, err := Apply(s, Command{Type: CmdBuzz, UserID: "alice"}, nil)
	if err != nil {
		t.Fatalf("buzz: %v", err)
	}
	if _, _, err := Apply(s, Command{Type: CmdAnswer, UserID: "bob", Answer: "newton"}, stubPolicy{directive: DirectiveAccept}); !errors.Is(err, ErrNotFloorHolder) {
		t.Fatalf("err = %v, want ErrNotFloorHolder", err)
	}
	if _, _, err := Apply(s, Command{Type: CmdAnswerLive, UserID: "bob", Answer: "new"}, nil); !errors.Is(err, ErrNotFloorHolder) {
		t.Fatalf("live err = %v, want ErrNotFloorHolder", err)
	}
}

func TestBuzzCelerity(t *testing.T) {
	s := readingState(t, 0)
	_, ns, err := Apply(s, Command{Type: CmdBuzz, UserID: "alice"}, nil)
	if err != nil {
		t.Fatalf("buzz: %v", err)
	}
	if ns.BuzzCelerity != 1 {
		t.Fatalf("celerity at word zero = %v, want 1", ns.BuzzCelerity)
	}

	s = readingState(t, s.EmittableWords/2)
	_, ns, err = Apply(s, Command{Type: CmdBuzz, UserID: "alice"}, nil)
	if err != nil {
		t.Fatalf("buzz: %v", err)
	}
	want := 1 - float64(s.WordsEmitted)/float64(s.EmittableWords)
	if ns.BuzzCelerity != want {
		t.Fatalf("celerity = %v, want %v", ns.BuzzCelerity, want)
	}
}

func TestCanBuzz(t *testing.T) {
	s := readingState(t, 2)
	if !CanBuzz(s, "alice", false) {
		t.Fatalf("fresh player should be able to buzz")
	}
	s.Buzzes = []string{"alice"}
	if CanBuzz(s, "alice", false) {
		t.Fatalf("prior buzzer blocked without rebuzz")
	}
	if !CanBuzz(s, "alice", true) {
		t.Fatalf("rebuzz should allow a second buzz")
	}
	s.BuzzedIn = "bob"
	if CanBuzz(s, "alice", true) {
		t.Fatalf("held floor blocks everyone")
	}
}

func TestRevealedPrefixSkipsPowerMark(t *testing.T) {
	s := readingState(t, 4)
	prefix := RevealedPrefix(s)
	want := "This physicist formulated the"
	if prefix != want {
		t.Fatalf("prefix = %q, want %q", prefix, want)
	}
}
