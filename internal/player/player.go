// Package player holds per-user session state for a room. A participant is
// created on first connection and kept for the life of the room process so
// scores survive reconnects; only the Online flag toggles.
package player

import (
	"strings"
	"unicode/utf8"
)

const maxUsernameLength = 64

type Participant struct {
	UserID   string  `json:"userId"`
	Username string  `json:"username"`
	Points   int     `json:"points"`
	Powers   int     `json:"powers"`
	Tens     int     `json:"tens"`
	Negs     int     `json:"negs"`
	Zeroes   int     `json:"zeroes"`
	TUH      int     `json:"tuh"`
	Celerity float64 `json:"celerity"`
	Online   bool    `json:"online"`

	celerityTotal float64
	celerityCount int
}

func New(userID string) *Participant {
	return &Participant{UserID: userID, Username: RandomName()}
}

// SetUsername applies name after trimming and length-capping, keeping the
// current name when the result is empty. Returns the name now in effect.
func (p *Participant) SetUsername(name string) string {
	name = strings.TrimSpace(name)
	if len(name) > maxUsernameLength {
		// Cut on a rune boundary so the cap never leaves invalid UTF-8.
		cut := maxUsernameLength
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut]
	}
	if name != "" {
		p.Username = name
	}
	return p.Username
}

// RecordAnswer rolls one adjudicated buzz into the score accumulators.
// Scores above the base correct value count as powers, the base value as
// tens, negatives as negs and zero as a dead buzz. Celerity averages over
// correct answers only.
func (p *Participant) RecordAnswer(score int, celerity float64) {
	p.Points += score
	switch {
	case score > 10:
		p.Powers++
	case score == 10:
		p.Tens++
	case score < 0:
		p.Negs++
	default:
		p.Zeroes++
	}
	if score > 0 {
		p.celerityTotal += celerity
		p.celerityCount++
		p.Celerity = p.celerityTotal / float64(p.celerityCount)
	}
}

// RecordTossup counts one question seen through to adjudication or reveal.
func (p *Participant) RecordTossup() { p.TUH++ }
