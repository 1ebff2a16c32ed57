// Package moderation holds a room's time-bounded ban/kick records and the
// votekick tallies that produce kicks. Records are per room and never shared.
package moderation

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Retention is how long a ban or kick blocks reconnection.
const Retention = 30 * time.Minute

// SweepInterval is how often a room purges expired records.
const SweepInterval = 5 * time.Minute

type Kind string

const (
	KindBan  Kind = "ban"
	KindKick Kind = "kick"
)

type Record struct {
	UserID string
	Kind   Kind
	At     time.Time
}

// Ledger records bans and kicks with automatic expiry. It is owned by a
// single room loop and needs no locking.
type Ledger struct {
	clock     clockwork.Clock
	retention time.Duration
	records   map[string]Record
}

func NewLedger(clock clockwork.Clock) *Ledger {
	return &Ledger{
		clock:     clock,
		retention: Retention,
		records:   make(map[string]Record),
	}
}

func (l *Ledger) Ban(userID string) {
	l.records[userID] = Record{UserID: userID, Kind: KindBan, At: l.clock.Now()}
}

func (l *Ledger) Kick(userID string) {
	l.records[userID] = Record{UserID: userID, Kind: KindKick, At: l.clock.Now()}
}

// Lookup returns the active record kind for userID, expiring it on the spot
// if the retention window has passed.
func (l *Ledger) Lookup(userID string) (Kind, bool) {
	rec, ok := l.records[userID]
	if !ok {
		return "", false
	}
	if l.clock.Since(rec.At) > l.retention {
		delete(l.records, userID)
		return "", false
	}
	return rec.Kind, true
}

// Sweep purges every expired record.
func (l *Ledger) Sweep() {
	now := l.clock.Now()
	for id, rec := range l.records {
		if now.Sub(rec.At) > l.retention {
			delete(l.records, id)
		}
	}
}

// Len reports the number of live records, expired ones included until swept.
func (l *Ledger) Len() int { return len(l.records) }
