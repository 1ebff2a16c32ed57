package room

import (
	"errors"

	"go.uber.org/zap"

	"github.com/openqb/quizroom-backend/internal/engine"
	"github.com/openqb/quizroom-backend/internal/moderation"
	"github.com/openqb/quizroom-backend/internal/player"
	"github.com/openqb/quizroom-backend/internal/protocol"
	"github.com/openqb/quizroom-backend/internal/questions"
	"github.com/openqb/quizroom-backend/internal/ratelimit"
)

const (
	maxReadingSpeed = 100
	minStrictness   = 1
	maxStrictness   = 10
)

func (r *Room) handleConnect(msg Connect) {
	r.ledger.Sweep()

	if kind, ok := r.ledger.Lookup(msg.UserID); ok {
		r.log.Info("removed user tried to join",
			zap.String("userId", msg.UserID), zap.String("kind", string(kind)))
		msg.Outbox <- protocol.ServerMessage{
			Type:        protocol.EventEnforcingRemoval,
			RemovalType: string(kind),
		}
		close(msg.Outbox)
		return
	}

	p, isNew := r.players[msg.UserID], false
	if p == nil {
		isNew = true
		p = player.New(msg.UserID)
		r.players[msg.UserID] = p
	}
	p.SetUsername(msg.Username)
	p.Online = true

	if old, ok := r.clients[msg.UserID]; ok {
		close(old.outbox)
		r.metrics.ConnClosed()
	}
	r.clients[msg.UserID] = &client{
		userID:  msg.UserID,
		outbox:  msg.Outbox,
		limiter: ratelimit.New(r.rateLimit, r.rateBurst),
	}
	r.metrics.ConnOpened()

	r.log.Info("connection", zap.String("userId", msg.UserID),
		zap.String("username", p.Username), zap.Bool("isNew", isNew))

	// snapshot triplet, then catch-up, then the join announcement; the
	// outbox is already subscribed so nothing broadcast after this point
	// can be missed or duplicated relative to the snapshot
	r.unicast(msg.UserID, protocol.ServerMessage{
		Type:             protocol.EventConnectionAcknowledged,
		UserID:           msg.UserID,
		OwnerID:          r.ownerID,
		IsPermanent:      r.permanent,
		Players:          r.snapshotPlayers(),
		BuzzedIn:         r.st.BuzzedIn,
		CanBuzz:          engine.CanBuzz(r.st, msg.UserID, r.settings.Rebuzz),
		QuestionProgress: string(r.st.Phase),
		Settings:         r.wireSettings(),
	})
	query := r.query
	r.unicast(msg.UserID, protocol.ServerMessage{
		Type:    protocol.EventConnectionQuery,
		Query:   &query,
		SetList: r.setList,
	})
	r.unicast(msg.UserID, protocol.ServerMessage{
		Type:   protocol.EventConnectionTossup,
		Tossup: r.visibleTossup(),
	})

	if r.st.Phase == engine.PhaseReading {
		r.unicast(msg.UserID, protocol.ServerMessage{
			Type: protocol.EventUpdateQuestion,
			Word: engine.RevealedPrefix(r.st),
		})
	}
	if r.st.Phase == engine.PhaseRevealed && r.st.Tossup != nil {
		r.unicast(msg.UserID, protocol.ServerMessage{
			Type:     protocol.EventRevealAnswer,
			Question: r.st.Tossup.Question,
			Answer:   r.st.Tossup.Answer,
		})
	}

	user := *p
	r.broadcast(protocol.ServerMessage{
		Type:     protocol.EventJoin,
		IsNew:    isNew,
		UserID:   msg.UserID,
		Username: p.Username,
		User:     &user,
	})
}

func (r *Room) handleDisconnect(userID string) {
	c, ok := r.clients[userID]
	if !ok {
		return
	}

	// a disconnecting floor holder gets an empty-answer adjudication first
	// so the question cannot stall on their absence
	if r.st.BuzzedIn == userID {
		events, ns, err := engine.Apply(r.st, engine.Command{
			Type:       engine.CmdAnswer,
			UserID:     userID,
			Strictness: r.settings.Strictness,
		}, finalPolicy{p: r.judge})
		if err == nil {
			r.st = ns
			r.publishEvents(userID, events)
		}
	}

	delete(r.clients, userID)
	close(c.outbox)
	r.metrics.ConnClosed()

	p := r.players[userID]
	if p == nil {
		return
	}
	p.Online = false
	r.broadcast(protocol.ServerMessage{
		Type:     protocol.EventLeave,
		UserID:   userID,
		Username: p.Username,
	})
	r.syncTimers()
}

// handleFromClient is the single dispatch point: rate-limit gate first, then
// an exhaustive switch over the closed kind set. Unknown kinds are dropped.
func (r *Room) handleFromClient(msg FromClient) {
	c, ok := r.clients[msg.UserID]
	if !ok {
		return
	}

	if allowed, first := c.limiter.Allow(); !allowed {
		if first {
			r.log.Warn("rate limit exceeded",
				zap.String("userId", msg.UserID),
				zap.String("username", r.usernameOf(msg.UserID)))
		}
		r.metrics.RateLimited()
		return
	}

	m := msg.Msg
	if !protocol.Known(m.Type) {
		return
	}
	r.metrics.Message(string(m.Type))

	userID := msg.UserID
	switch m.Type {
	case protocol.KindBan:
		r.handleBan(userID, m)
	case protocol.KindChat:
		r.handleChat(userID, m, protocol.KindChat)
	case protocol.KindChatLiveUpdate:
		r.handleChat(userID, m, protocol.KindChatLiveUpdate)
	case protocol.KindGiveAnswer:
		r.handleGiveAnswer(userID, m)
	case protocol.KindGiveAnswerLive:
		r.handleGiveAnswerLive(userID, m)
	case protocol.KindBuzz:
		r.handleBuzz(userID)
	case protocol.KindNext:
		r.handleAdvance(userID, string(protocol.KindNext))
	case protocol.KindStart:
		r.handleAdvance(userID, string(protocol.KindStart))
	case protocol.KindSkip:
		r.handleSkip(userID)
	case protocol.KindPause:
		r.handlePause(userID)
	case protocol.KindToggleLock:
		r.handleToggleLock(userID, m)
	case protocol.KindToggleLoginRequired:
		r.handleToggleLoginRequired(userID, m)
	case protocol.KindToggleMute:
		r.handleToggleMute(userID, m)
	case protocol.KindTogglePublic:
		r.handleTogglePublic(userID, m)
	case protocol.KindToggleRebuzz:
		r.handleToggleRebuzz(userID, m)
	case protocol.KindToggleSkip:
		r.handleToggleSkip(userID, m)
	case protocol.KindToggleSelectBySet:
		r.handleToggleSelectBySet(userID, m)
	case protocol.KindToggleStandardOnly:
		r.handleToggleStandardOnly(userID, m)
	case protocol.KindToggleTimer:
		r.handleToggleTimer(userID, m)
	case protocol.KindSetCategories:
		r.handleSetCategories(userID, m)
	case protocol.KindSetDifficulties:
		r.handleSetDifficulties(userID, m)
	case protocol.KindSetPacketNumbers:
		r.handleSetPacketNumbers(userID, m)
	case protocol.KindSetReadingSpeed:
		r.handleSetReadingSpeed(userID, m)
	case protocol.KindSetSetName:
		r.handleSetSetName(userID, m)
	case protocol.KindSetStrictness:
		r.handleSetStrictness(userID, m)
	case protocol.KindSetUsername:
		r.handleSetUsername(userID, m)
	case protocol.KindSetYearRange:
		r.handleSetYearRange(userID, m)
	case protocol.KindVotekickInit:
		r.handleVotekickInit(userID, m)
	case protocol.KindVotekickVote:
		r.handleVotekickVote(userID, m)
	}
}

func (r *Room) handleBan(userID string, m protocol.ClientMessage) {
	if userID != r.ownerID {
		return
	}
	target := r.players[m.TargetID]
	if target == nil {
		return
	}

	r.log.Info("ban", zap.String("targetId", m.TargetID),
		zap.String("targetUsername", target.Username))
	r.broadcast(protocol.ServerMessage{
		Type:           protocol.EventConfirmBan,
		TargetID:       m.TargetID,
		TargetUsername: target.Username,
	})
	r.ledger.Ban(m.TargetID)
	r.metrics.Removal(string(moderation.KindBan))
	r.enforceRemoval(m.TargetID, moderation.KindBan)
}

// enforceRemoval notifies the target connection and drops it.
func (r *Room) enforceRemoval(targetID string, kind moderation.Kind) {
	if _, ok := r.clients[targetID]; !ok {
		return
	}
	r.unicast(targetID, protocol.ServerMessage{
		Type:        protocol.EventEnforcingRemoval,
		RemovalType: string(kind),
	})
	r.handleDisconnect(targetID)
}

func (r *Room) handleChat(userID string, m protocol.ClientMessage, kind protocol.Kind) {
	// public rooms are reachable through the API as well, so free-text
	// channels stay off there
	if r.settings.Public {
		return
	}
	p := r.players[userID]
	if p == nil {
		return
	}
	r.broadcast(protocol.ServerMessage{
		Type:     string(kind),
		Message:  m.Message,
		Username: p.Username,
		UserID:   userID,
	})
}

func (r *Room) handleGiveAnswer(userID string, m protocol.ClientMessage) {
	events, ns, err := engine.Apply(r.st, engine.Command{
		Type:       engine.CmdAnswer,
		UserID:     userID,
		Answer:     m.Message,
		Strictness: r.settings.Strictness,
	}, r.judge)
	if err != nil {
		return
	}
	r.st = ns
	r.publishEvents(userID, events)

	// a prompt restarts the countdown for the revised answer
	for _, ev := range events {
		if ev.Type == engine.EvtAnswerJudged && ev.Directive == engine.DirectivePrompt {
			if r.answerTimer != nil {
				r.answerTimer.Stop()
				r.answerTimer = nil
			}
		}
	}
	r.syncTimers()
}

func (r *Room) handleGiveAnswerLive(userID string, m protocol.ClientMessage) {
	events, ns, err := engine.Apply(r.st, engine.Command{
		Type:   engine.CmdAnswerLive,
		UserID: userID,
		Answer: m.Message,
	}, r.judge)
	if err != nil {
		return
	}
	r.st = ns
	r.publishEvents(userID, events)
}

func (r *Room) handleBuzz(userID string) {
	events, ns, err := engine.Apply(r.st, engine.Command{
		Type:   engine.CmdBuzz,
		UserID: userID,
		Rebuzz: r.settings.Rebuzz,
	}, r.judge)
	if err != nil {
		// the loser of a buzz race learns who beat them; every other
		// failure is silent
		if errors.Is(err, engine.ErrFloorHeld) {
			r.unicast(userID, protocol.ServerMessage{
				Type:     protocol.EventLostBuzzerRace,
				UserID:   r.st.BuzzedIn,
				Username: r.usernameOf(r.st.BuzzedIn),
			})
		}
		return
	}
	r.st = ns
	r.publishEvents(userID, events)
	r.syncTimers()
}

func (r *Room) handleAdvance(userID, mirror string) {
	if r.ownerGated() && userID != r.ownerID {
		return
	}
	if r.st.Phase != engine.PhaseIdle && r.st.Phase != engine.PhaseRevealed {
		return
	}
	r.startQuestionLoad(userID, mirror)
}

// startQuestionLoad fetches the next question outside the loop and posts
// the result back as a questionLoaded message.
func (r *Room) startQuestionLoad(userID, mirror string) {
	if r.loading || r.source == nil {
		return
	}
	r.loading = true
	query := r.query
	go func() {
		t, err := r.source.NextTossup(r.ctx, query)
		select {
		case r.inbox <- questionLoaded{tossup: t, err: err, userID: userID, mirror: mirror}:
		case <-r.ctx.Done():
		}
	}()
}

func (r *Room) handleQuestionLoaded(msg questionLoaded) {
	r.loading = false

	if msg.err != nil {
		switch {
		case errors.Is(msg.err, questions.ErrEndOfSet):
			r.broadcast(protocol.ServerMessage{Type: protocol.EventEndOfSet})
		case errors.Is(msg.err, questions.ErrNoQuestionsFound):
			r.broadcast(protocol.ServerMessage{Type: protocol.EventNoQuestionsFound})
		default:
			r.log.Error("question load failed", zap.Error(msg.err))
		}
		return
	}

	events, ns, err := engine.Apply(r.st, engine.Command{
		Type:   engine.CmdAdvance,
		UserID: msg.userID,
		Tossup: msg.tossup,
	}, r.judge)
	if err != nil {
		return
	}
	r.st = ns
	r.broadcast(protocol.ServerMessage{
		Type:     msg.mirror,
		UserID:   msg.userID,
		Username: r.usernameOf(msg.userID),
	})
	r.publishEvents(msg.userID, events)
	r.syncTimers()
}

func (r *Room) handleSkip(userID string) {
	if !r.settings.SkipEnabled {
		return
	}
	events, ns, err := engine.Apply(r.st, engine.Command{Type: engine.CmdSkip, UserID: userID}, r.judge)
	if err != nil {
		return
	}
	r.st = ns
	r.broadcast(protocol.ServerMessage{
		Type:     string(protocol.KindSkip),
		UserID:   userID,
		Username: r.usernameOf(userID),
	})
	r.publishEvents(userID, events)
	// skipping flows straight into the next question
	r.startQuestionLoad(userID, string(protocol.KindNext))
	r.syncTimers()
}

func (r *Room) handlePause(userID string) {
	if r.ownerGated() && userID != r.ownerID {
		return
	}
	events, ns, err := engine.Apply(r.st, engine.Command{
		Type:   engine.CmdSetPaused,
		UserID: userID,
		Paused: !r.st.Paused,
	}, r.judge)
	if err != nil {
		return
	}
	r.st = ns
	r.publishEvents(userID, events)
	r.syncTimers()
}

func (r *Room) handleToggleLock(userID string, m protocol.ClientMessage) {
	if r.settings.Public {
		return
	}
	r.settings.Lock = m.Lock
	r.broadcast(protocol.ServerMessage{
		Type:     string(protocol.KindToggleLock),
		Lock:     m.Lock,
		Username: r.usernameOf(userID),
	})
}

func (r *Room) handleToggleLoginRequired(userID string, m protocol.ClientMessage) {
	if r.settings.Public {
		return
	}
	r.settings.LoginRequired = m.LoginRequired
	r.broadcast(protocol.ServerMessage{
		Type:          string(protocol.KindToggleLoginRequired),
		LoginRequired: m.LoginRequired,
		Username:      r.usernameOf(userID),
	})
}

// handleToggleMute is per-viewer state: an echo to the requester only, so
// each client maintains its own mute set.
func (r *Room) handleToggleMute(userID string, m protocol.ClientMessage) {
	r.unicast(userID, protocol.ServerMessage{
		Type:       string(protocol.KindToggleMute),
		TargetID:   m.TargetID,
		MuteStatus: m.MuteStatus,
	})
}

func (r *Room) handleTogglePublic(userID string, m protocol.ClientMessage) {
	if r.permanent {
		return
	}
	r.settings.Public = m.Public
	r.settings.TimerEnabled = true
	if m.Public {
		r.settings.Lock = false
		r.settings.LoginRequired = false
	}
	r.broadcast(protocol.ServerMessage{
		Type:     string(protocol.KindTogglePublic),
		Public:   m.Public,
		Username: r.usernameOf(userID),
	})
}

func (r *Room) handleToggleRebuzz(userID string, m protocol.ClientMessage) {
	r.settings.Rebuzz = m.Rebuzz
	r.broadcast(protocol.ServerMessage{
		Type:     string(protocol.KindToggleRebuzz),
		Rebuzz:   m.Rebuzz,
		Username: r.usernameOf(userID),
	})
}

func (r *Room) handleToggleSkip(userID string, m protocol.ClientMessage) {
	r.settings.SkipEnabled = m.Skip
	r.broadcast(protocol.ServerMessage{
		Type:     string(protocol.KindToggleSkip),
		Skip:     m.Skip,
		Username: r.usernameOf(userID),
	})
}

func (r *Room) handleToggleSelectBySet(userID string, m protocol.ClientMessage) {
	if r.permanent {
		return
	}
	// an unknown set name is rejected in either direction; disabling
	// without naming a set is fine
	if (m.SelectBySetName || m.SetName != "") && !r.knownSet(m.SetName) {
		return
	}
	r.query.SelectBySetName = m.SelectBySetName
	if m.SetName != "" {
		r.query.SetName = m.SetName
	}
	r.broadcast(protocol.ServerMessage{
		Type:            string(protocol.KindToggleSelectBySet),
		SelectBySetName: m.SelectBySetName,
		SetName:         r.query.SetName,
		Username:        r.usernameOf(userID),
	})
}

func (r *Room) handleToggleStandardOnly(userID string, m protocol.ClientMessage) {
	r.query.StandardOnly = m.StandardOnly
	r.broadcast(protocol.ServerMessage{
		Type:         string(protocol.KindToggleStandardOnly),
		StandardOnly: m.StandardOnly,
		Username:     r.usernameOf(userID),
	})
}

func (r *Room) handleToggleTimer(userID string, m protocol.ClientMessage) {
	if r.settings.Public {
		return
	}
	r.settings.TimerEnabled = m.Timer
	r.broadcast(protocol.ServerMessage{
		Type:     string(protocol.KindToggleTimer),
		Timer:    m.Timer,
		Username: r.usernameOf(userID),
	})
	r.syncTimers()
}

func (r *Room) handleSetCategories(userID string, m protocol.ClientMessage) {
	if r.permanent {
		return
	}
	r.query.Categories = m.Categories
	r.query.Subcategories = m.Subcategories
	r.broadcast(protocol.ServerMessage{
		Type:       string(protocol.KindSetCategories),
		Categories: m.Categories,
		Username:   r.usernameOf(userID),
	})
}

func (r *Room) handleSetDifficulties(userID string, m protocol.ClientMessage) {
	r.query.Difficulties = m.Difficulties
	r.broadcast(protocol.ServerMessage{
		Type:         string(protocol.KindSetDifficulties),
		Difficulties: m.Difficulties,
		Username:     r.usernameOf(userID),
	})
}

func (r *Room) handleSetPacketNumbers(userID string, m protocol.ClientMessage) {
	r.query.PacketNumbers = m.PacketNumbers
	r.broadcast(protocol.ServerMessage{
		Type:          string(protocol.KindSetPacketNumbers),
		PacketNumbers: m.PacketNumbers,
		Username:      r.usernameOf(userID),
	})
}

func (r *Room) handleSetReadingSpeed(userID string, m protocol.ClientMessage) {
	speed := m.ReadingSpeed
	if speed < 0 {
		speed = 0
	}
	if speed > maxReadingSpeed {
		speed = maxReadingSpeed
	}
	r.settings.ReadingSpeed = speed
	r.broadcast(protocol.ServerMessage{
		Type:         string(protocol.KindSetReadingSpeed),
		ReadingSpeed: speed,
		Username:     r.usernameOf(userID),
	})
	r.syncTimers()
}

func (r *Room) handleSetSetName(userID string, m protocol.ClientMessage) {
	if !r.knownSet(m.SetName) {
		return
	}
	r.query.SetName = m.SetName
	r.broadcast(protocol.ServerMessage{
		Type:     string(protocol.KindSetSetName),
		SetName:  m.SetName,
		Username: r.usernameOf(userID),
	})
}

func (r *Room) handleSetStrictness(userID string, m protocol.ClientMessage) {
	if r.permanent {
		return
	}
	s := m.Strictness
	if s < minStrictness || s > maxStrictness {
		return
	}
	r.settings.Strictness = s
	r.broadcast(protocol.ServerMessage{
		Type:       string(protocol.KindSetStrictness),
		Strictness: s,
		Username:   r.usernameOf(userID),
	})
}

func (r *Room) handleSetUsername(userID string, m protocol.ClientMessage) {
	p := r.players[userID]
	if p == nil {
		return
	}
	if !r.checker.IsAppropriate(m.Username) {
		r.unicast(userID, protocol.ServerMessage{
			Type:     protocol.EventForceUsername,
			Username: p.Username,
			Message:  "Your username contains an inappropriate word, so it has been reverted.",
		})
		return
	}
	old := p.Username
	updated := p.SetUsername(m.Username)
	r.broadcast(protocol.ServerMessage{
		Type:        string(protocol.KindSetUsername),
		UserID:      userID,
		OldUsername: old,
		NewUsername: updated,
	})
}

func (r *Room) handleSetYearRange(userID string, m protocol.ClientMessage) {
	if m.MinYear < 0 || m.MaxYear < 0 || (m.MaxYear > 0 && m.MinYear > m.MaxYear) {
		return
	}
	r.query.MinYear = m.MinYear
	r.query.MaxYear = m.MaxYear
	r.broadcast(protocol.ServerMessage{
		Type:     string(protocol.KindSetYearRange),
		MinYear:  m.MinYear,
		MaxYear:  m.MaxYear,
		Username: r.usernameOf(userID),
	})
}

func (r *Room) handleVotekickInit(userID string, m protocol.ClientMessage) {
	target := r.players[m.TargetID]
	if target == nil {
		return
	}

	// per-initiator cooldown, regardless of target
	if last, ok := r.lastVotekick[userID]; ok && r.clock.Since(last) < moderation.InitCooldown {
		return
	}
	r.lastVotekick[userID] = r.clock.Now()

	for _, vk := range r.votekicks {
		if vk.TargetID == m.TargetID {
			return
		}
	}

	vk := moderation.NewVotekick(m.TargetID, moderation.ThresholdFor(r.onlineCount()))
	vk.Vote(userID)
	r.votekicks = append(r.votekicks, vk)

	if vk.Passed() {
		r.finishVotekick(vk, target.Username)
		return
	}
	r.broadcast(protocol.ServerMessage{
		Type:           protocol.EventInitiatedVotekick,
		TargetUsername: target.Username,
		Threshold:      vk.Threshold,
	})
}

func (r *Room) handleVotekickVote(userID string, m protocol.ClientMessage) {
	for _, vk := range r.votekicks {
		if vk.TargetID != m.TargetID {
			continue
		}
		vk.Vote(userID)
		if vk.Passed() {
			r.finishVotekick(vk, r.usernameOf(vk.TargetID))
		}
		return
	}
}

// finishVotekick writes the kick record, announces it, drops the target and
// discards the tally.
func (r *Room) finishVotekick(vk *moderation.Votekick, targetUsername string) {
	r.broadcast(protocol.ServerMessage{
		Type:           protocol.EventSuccessfulVotekick,
		TargetID:       vk.TargetID,
		TargetUsername: targetUsername,
	})
	r.ledger.Kick(vk.TargetID)
	r.metrics.Removal(string(moderation.KindKick))
	r.enforceRemoval(vk.TargetID, moderation.KindKick)

	for i, open := range r.votekicks {
		if open == vk {
			r.votekicks = append(r.votekicks[:i], r.votekicks[i+1:]...)
			break
		}
	}
}

func (r *Room) knownSet(name string) bool {
	for _, s := range r.setList {
		if s == name {
			return true
		}
	}
	return false
}
