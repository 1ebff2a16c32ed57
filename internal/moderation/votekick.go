package moderation

import "time"

// InitCooldown is the per-initiator wait between votekick initiations.
const InitCooldown = 90 * time.Second

// MinThreshold is the floor on required votes regardless of room size.
const MinThreshold = 2

// Votekick tallies votes against one target. Votes are a set, so re-voting
// never double counts. At most one open Votekick per target per room.
type Votekick struct {
	TargetID  string
	Threshold int
	voters    map[string]struct{}
}

func NewVotekick(targetID string, threshold int) *Votekick {
	if threshold < MinThreshold {
		threshold = MinThreshold
	}
	return &Votekick{
		TargetID:  targetID,
		Threshold: threshold,
		voters:    make(map[string]struct{}),
	}
}

// ThresholdFor computes the votes required for a room with onlineCount
// participants: three quarters rounded down, never below MinThreshold.
func ThresholdFor(onlineCount int) int {
	t := onlineCount * 3 / 4
	if t < MinThreshold {
		t = MinThreshold
	}
	return t
}

func (v *Votekick) Vote(voterID string) {
	v.voters[voterID] = struct{}{}
}

func (v *Votekick) Votes() int { return len(v.voters) }

// Passed reports whether the tally has reached the threshold.
func (v *Votekick) Passed() bool { return len(v.voters) >= v.Threshold }
