// Package room implements the per-room coordinator. Each room runs one
// goroutine that owns every piece of mutable room state; all mutation flows
// through the inbox, so operations on a room are totally ordered while
// different rooms proceed in parallel. Buzz arbitration falls out of this
// for free: the first buzz the loop processes wins the floor.
package room

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/openqb/quizroom-backend/internal/engine"
	"github.com/openqb/quizroom-backend/internal/metrics"
	"github.com/openqb/quizroom-backend/internal/moderation"
	"github.com/openqb/quizroom-backend/internal/player"
	"github.com/openqb/quizroom-backend/internal/protocol"
	"github.com/openqb/quizroom-backend/internal/questions"
	"github.com/openqb/quizroom-backend/internal/ratelimit"
)

const (
	inboxSize  = 64
	outboxSize = 32

	// 50 messages per second per connection
	defaultRatePerSecond = 50
	defaultRateBurst     = 50

	answerSeconds = 10
)

type Msg interface{ isRoomMsg() }

// Connect registers (or reactivates) a participant and subscribes its
// outbox. The room replies on the outbox itself: either the snapshot triplet
// or an enforcing-removal refusal.
type Connect struct {
	UserID   string
	Username string
	Outbox   chan protocol.ServerMessage
}

type Disconnect struct{ UserID string }

// FromClient carries one parsed inbound message attributed to a connection.
type FromClient struct {
	UserID string
	Msg    protocol.ClientMessage
}

type GetView struct{ Reply chan View }

type Shutdown struct{}

// questionLoaded is the internal completion of an asynchronous question
// fetch; the fetch itself runs outside the loop so I/O never blocks it.
type questionLoaded struct {
	tossup *questions.Tossup
	err    error
	userID string
	mirror string
}

// setListLoaded delivers the question source's set list into the loop.
type setListLoaded struct{ list []string }

func (Connect) isRoomMsg()        {}
func (Disconnect) isRoomMsg()     {}
func (FromClient) isRoomMsg()     {}
func (GetView) isRoomMsg()        {}
func (Shutdown) isRoomMsg()       {}
func (questionLoaded) isRoomMsg() {}
func (setListLoaded) isRoomMsg()  {}

type client struct {
	userID  string
	outbox  chan protocol.ServerMessage
	limiter *ratelimit.Limiter
}

// Deps carries the room's collaborators. Zero fields get working defaults.
type Deps struct {
	Logger    *zap.Logger
	Clock     clockwork.Clock
	Source    questions.Source
	Judge     engine.Policy
	Checker   moderation.Checker
	Metrics   *metrics.Metrics
	RateLimit float64
	RateBurst int
}

type Room struct {
	name      string
	ownerID   string
	permanent bool

	inbox  chan Msg
	ctx    context.Context
	cancel context.CancelFunc

	log     *zap.Logger
	clock   clockwork.Clock
	source  questions.Source
	judge   engine.Policy
	checker moderation.Checker
	metrics *metrics.Metrics

	st       engine.State
	settings settings
	query    questions.Query
	players  map[string]*player.Participant
	clients  map[string]*client

	ledger       *moderation.Ledger
	votekicks    []*moderation.Votekick
	lastVotekick map[string]time.Time

	setList []string
	loading bool

	rateLimit float64
	rateBurst int

	revealTimer     clockwork.Timer
	answerTimer     clockwork.Timer
	answerRemaining int
	sweep           clockwork.Ticker
}

// settings is the coordinator-owned room configuration. Select-by-set and
// standard-only live on the query; everything is merged for the wire.
type settings struct {
	Lock          bool
	LoginRequired bool
	Public        bool
	Rebuzz        bool
	SkipEnabled   bool
	TimerEnabled  bool
	ReadingSpeed  int
	Strictness    int
}

func NewRoom(parent context.Context, name, ownerID string, permanent, public bool, deps Deps) *Room {
	ctx, cancel := context.WithCancel(parent)

	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Judge == nil {
		deps.Judge = DefaultPolicy()
	}
	if deps.Checker == nil {
		deps.Checker = moderation.CheckerFunc(func(string) bool { return true })
	}
	if deps.RateLimit <= 0 {
		deps.RateLimit = defaultRatePerSecond
	}
	if deps.RateBurst <= 0 {
		deps.RateBurst = defaultRateBurst
	}

	r := &Room{
		name:      name,
		ownerID:   ownerID,
		permanent: permanent,
		inbox:     make(chan Msg, inboxSize),
		ctx:       ctx,
		cancel:    cancel,
		log:       deps.Logger.With(zap.String("room", name)),
		clock:     deps.Clock,
		source:    deps.Source,
		judge:     deps.Judge,
		checker:   deps.Checker,
		metrics:   deps.Metrics,
		st:        engine.NewState(),
		settings: settings{
			Public:       public,
			SkipEnabled:  true,
			TimerEnabled: true,
			ReadingSpeed: 50,
			Strictness:   7,
		},
		players:      make(map[string]*player.Participant),
		clients:      make(map[string]*client),
		ledger:       moderation.NewLedger(deps.Clock),
		lastVotekick: make(map[string]time.Time),
		rateLimit:    deps.RateLimit,
		rateBurst:    deps.RateBurst,
		sweep:        deps.Clock.NewTicker(moderation.SweepInterval),
	}

	if r.source != nil {
		go func() {
			if list, err := r.source.SetList(ctx); err == nil {
				select {
				case r.inbox <- setListLoaded{list: list}:
				case <-ctx.Done():
				}
			}
		}()
	}

	r.metrics.RoomOpened()
	go r.loop()
	return r
}

// Inbox exposes the room's message channel to the transport layer and tests.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) Name() string { return r.name }

func (r *Room) loop() {
	defer r.sweep.Stop()
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case <-timerChan(r.revealTimer):
			r.revealTimer = nil
			r.handleRevealTick()

		case <-timerChan(r.answerTimer):
			r.answerTimer = nil
			r.handleAnswerTick()

		case <-r.sweep.Chan():
			r.ledger.Sweep()

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Connect:
				r.handleConnect(msg)
			case Disconnect:
				r.handleDisconnect(msg.UserID)
			case FromClient:
				r.handleFromClient(msg)
			case questionLoaded:
				r.handleQuestionLoaded(msg)
			case setListLoaded:
				r.setList = msg.list
			case GetView:
				msg.Reply <- r.view()
			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) shutdown() {
	for id, c := range r.clients {
		close(c.outbox)
		delete(r.clients, id)
		r.metrics.ConnClosed()
	}
	r.metrics.RoomClosed()
	r.cancel()
}

// timerChan makes a nil timer safe to select on: a nil channel never fires.
func timerChan(t clockwork.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.Chan()
}

// broadcast delivers m to every connected client in mutation order. A client
// whose outbox is full is dropped rather than allowed to stall the room.
func (r *Room) broadcast(m protocol.ServerMessage) {
	for id, c := range r.clients {
		select {
		case c.outbox <- m:
		default:
			close(c.outbox)
			delete(r.clients, id)
			r.metrics.ConnClosed()
			if p := r.players[id]; p != nil {
				p.Online = false
			}
		}
	}
}

// unicast delivers m to one connection only, with the same slow-client rule.
func (r *Room) unicast(userID string, m protocol.ServerMessage) {
	c, ok := r.clients[userID]
	if !ok {
		return
	}
	select {
	case c.outbox <- m:
	default:
		close(c.outbox)
		delete(r.clients, userID)
		r.metrics.ConnClosed()
		if p := r.players[userID]; p != nil {
			p.Online = false
		}
	}
}

func (r *Room) usernameOf(userID string) string {
	if p, ok := r.players[userID]; ok {
		return p.Username
	}
	return ""
}

func (r *Room) onlineCount() int {
	n := 0
	for _, p := range r.players {
		if p.Online {
			n++
		}
	}
	return n
}

// ownerGated reports whether question-control actions are restricted to the
// owner. Private rooms belong to their creator; public rooms are communal.
func (r *Room) ownerGated() bool { return !r.settings.Public }

func (r *Room) wireSettings() *protocol.Settings {
	return &protocol.Settings{
		Lock:            r.settings.Lock,
		LoginRequired:   r.settings.LoginRequired,
		Public:          r.settings.Public,
		Rebuzz:          r.settings.Rebuzz,
		SkipEnabled:     r.settings.SkipEnabled,
		TimerEnabled:    r.settings.TimerEnabled,
		SelectBySetName: r.query.SelectBySetName,
		StandardOnly:    r.query.StandardOnly,
		ReadingSpeed:    r.settings.ReadingSpeed,
		Strictness:      r.settings.Strictness,
	}
}

// snapshotPlayers copies participants so the websocket writer can marshal
// them outside the loop without racing later mutations.
func (r *Room) snapshotPlayers() map[string]*player.Participant {
	out := make(map[string]*player.Participant, len(r.players))
	for id, p := range r.players {
		cp := *p
		out[id] = &cp
	}
	return out
}

// visibleTossup redacts question content until the answer is revealed.
func (r *Room) visibleTossup() *questions.Tossup {
	if r.st.Tossup == nil {
		return nil
	}
	if r.st.Phase == engine.PhaseRevealed {
		return r.st.Tossup
	}
	return r.st.Tossup.Metadata()
}

// wordDelay converts the 0-100 reading speed into a per-word pause.
// Speed 0 halts emission entirely (handled by syncTimers).
func (r *Room) wordDelay() time.Duration {
	return time.Duration(5*(120-r.settings.ReadingSpeed)) * time.Millisecond
}

// syncTimers reconciles the pacing timers with the current state: word
// reveal ticks only while reading with a free floor, the answer countdown
// only while buzzed with the timer setting on.
func (r *Room) syncTimers() {
	reading := r.st.Phase == engine.PhaseReading && r.st.BuzzedIn == "" &&
		!r.st.Paused && r.settings.ReadingSpeed > 0
	if reading && r.revealTimer == nil {
		r.revealTimer = r.clock.NewTimer(r.wordDelay())
	} else if !reading && r.revealTimer != nil {
		r.revealTimer.Stop()
		r.revealTimer = nil
	}

	buzzed := r.st.Phase == engine.PhaseBuzzed && r.settings.TimerEnabled
	if buzzed && r.answerTimer == nil {
		r.answerRemaining = answerSeconds
		r.answerTimer = r.clock.NewTimer(time.Second)
	} else if !buzzed && r.answerTimer != nil {
		r.answerTimer.Stop()
		r.answerTimer = nil
	}
}

func (r *Room) handleRevealTick() {
	events, ns, err := engine.Apply(r.st, engine.Command{Type: engine.CmdEmitWord}, r.judge)
	if err != nil {
		r.syncTimers()
		return
	}
	r.st = ns
	r.publishEvents("", events)
	r.syncTimers()
}

func (r *Room) handleAnswerTick() {
	if r.st.Phase != engine.PhaseBuzzed {
		r.syncTimers()
		return
	}
	r.answerRemaining--
	r.broadcast(protocol.ServerMessage{
		Type:          protocol.EventTimerUpdate,
		TimeRemaining: r.answerRemaining,
	})
	if r.answerRemaining > 0 {
		r.answerTimer = r.clock.NewTimer(time.Second)
		return
	}
	// time expired: adjudicate an empty answer for the floor holder
	holder := r.st.BuzzedIn
	events, ns, err := engine.Apply(r.st, engine.Command{
		Type:       engine.CmdAnswer,
		UserID:     holder,
		Strictness: r.settings.Strictness,
	}, finalPolicy{p: r.judge})
	if err == nil {
		r.st = ns
		r.publishEvents(holder, events)
	}
	r.syncTimers()
}

// publishEvents turns engine events into outbound wire messages and applies
// their scoring side effects, in order.
func (r *Room) publishEvents(userID string, events []engine.Event) {
	for _, ev := range events {
		switch ev.Type {
		case engine.EvtQuestionStarted:
			// the triggering handler broadcasts its mirror kind

		case engine.EvtWordRevealed:
			r.broadcast(protocol.ServerMessage{
				Type: protocol.EventUpdateQuestion,
				Word: ev.Word,
			})

		case engine.EvtAnswerRevealed:
			for _, p := range r.players {
				if p.Online {
					p.RecordTossup()
				}
			}
			r.broadcast(protocol.ServerMessage{
				Type:     protocol.EventRevealAnswer,
				Question: r.st.Tossup.Question,
				Answer:   ev.Answer,
			})

		case engine.EvtBuzz:
			r.broadcast(protocol.ServerMessage{
				Type:     string(protocol.KindBuzz),
				UserID:   ev.UserID,
				Username: r.usernameOf(ev.UserID),
			})

		case engine.EvtAnswerJudged:
			if ev.Directive != engine.DirectivePrompt {
				if p := r.players[ev.UserID]; p != nil {
					p.RecordAnswer(ev.Score, ev.Celerity)
				}
			}
			r.broadcast(protocol.ServerMessage{
				Type:           string(protocol.KindGiveAnswer),
				UserID:         ev.UserID,
				Username:       r.usernameOf(ev.UserID),
				GivenAnswer:    ev.Answer,
				Directive:      string(ev.Directive),
				DirectedPrompt: ev.DirectedPrompt,
				Score:          ev.Score,
				Celerity:       ev.Celerity,
			})

		case engine.EvtLiveAnswer:
			r.broadcast(protocol.ServerMessage{
				Type:     string(protocol.KindGiveAnswerLive),
				Username: r.usernameOf(ev.UserID),
				Message:  ev.Answer,
			})

		case engine.EvtPauseToggled:
			r.broadcast(protocol.ServerMessage{
				Type:     string(protocol.KindPause),
				Paused:   ev.Paused,
				Username: r.usernameOf(userID),
			})
		}
	}
}
