package room

import (
	"context"

	"github.com/openqb/quizroom-backend/internal/engine"
	"github.com/openqb/quizroom-backend/internal/player"
	"github.com/openqb/quizroom-backend/internal/protocol"
	"github.com/openqb/quizroom-backend/internal/questions"
)

// View reflects room state without data races, for tests and the rooms API.
type View struct {
	Name          string
	OwnerID       string
	Permanent     bool
	Phase         engine.Phase
	BuzzedIn      string
	WordsEmitted  int
	Paused        bool
	LiveAnswer    string
	QuestionCount int
	Tossup        *questions.Tossup
	Settings      protocol.Settings
	Query         questions.Query
	SetList       []string
	Players       map[string]player.Participant
	NumClients    int
	OnlineCount   int
	OpenVotekicks int
	LedgerLen     int
}

func (r *Room) view() View {
	players := make(map[string]player.Participant, len(r.players))
	for id, p := range r.players {
		players[id] = *p
	}
	return View{
		Name:          r.name,
		OwnerID:       r.ownerID,
		Permanent:     r.permanent,
		Phase:         r.st.Phase,
		BuzzedIn:      r.st.BuzzedIn,
		WordsEmitted:  r.st.WordsEmitted,
		Paused:        r.st.Paused,
		LiveAnswer:    r.st.LiveAnswer,
		QuestionCount: r.st.QuestionCount,
		Tossup:        r.st.Tossup,
		Settings:      *r.wireSettings(),
		Query:         r.query,
		SetList:       append([]string(nil), r.setList...),
		Players:       players,
		NumClients:    len(r.clients),
		OnlineCount:   r.onlineCount(),
		OpenVotekicks: len(r.votekicks),
		LedgerLen:     r.ledger.Len(),
	}
}

// View requests a consistent snapshot from the room loop.
func (r *Room) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	select {
	case r.inbox <- GetView{Reply: reply}:
	case <-ctx.Done():
		return View{}, ctx.Err()
	case <-r.ctx.Done():
		return View{}, r.ctx.Err()
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return View{}, ctx.Err()
	case <-r.ctx.Done():
		return View{}, r.ctx.Err()
	}
}
