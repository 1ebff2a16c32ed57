// Package questions is the boundary to the question bank. The bank itself is
// an external collaborator; rooms only depend on the Source interface and
// never call it while holding room state.
package questions

import (
	"context"
	"errors"
	"slices"
	"strings"
)

// PowerMark separates the power window from the base-scoring window inside a
// question's word sequence. It is consumed during reveal, never emitted.
const PowerMark = "(*)"

var ErrNoQuestionsFound = errors.New("no questions match the current filters")
var ErrEndOfSet = errors.New("end of set reached")

type Tossup struct {
	Question       string `json:"question"`
	Answer         string `json:"answer"`
	SetName        string `json:"setName"`
	Category       string `json:"category"`
	Subcategory    string `json:"subcategory"`
	Difficulty     int    `json:"difficulty"`
	PacketNumber   int    `json:"packetNumber"`
	QuestionNumber int    `json:"questionNumber"`
	Year           int    `json:"year"`
	Standard       bool   `json:"standard"`
}

// Words splits the question text into reveal tokens, power mark included.
func (t *Tossup) Words() []string { return strings.Fields(t.Question) }

// Metadata strips the content fields so a tossup can be shown to clients
// before its answer is revealed.
func (t *Tossup) Metadata() *Tossup {
	c := *t
	c.Question = ""
	c.Answer = ""
	return &c
}

// Query selects which questions a room wants to draw.
type Query struct {
	Categories      []string `json:"categories"`
	Subcategories   []string `json:"subcategories"`
	Difficulties    []int    `json:"difficulties"`
	SetName         string   `json:"setName"`
	PacketNumbers   []int    `json:"packetNumbers"`
	MinYear         int      `json:"minYear"`
	MaxYear         int      `json:"maxYear"`
	StandardOnly    bool     `json:"standardOnly"`
	SelectBySetName bool     `json:"selectBySetName"`
}

// Matches reports whether t satisfies every populated filter of q.
// Set-name and packet filters only apply in select-by-set mode.
func (q Query) Matches(t *Tossup) bool {
	if len(q.Categories) > 0 && !slices.Contains(q.Categories, t.Category) {
		return false
	}
	if len(q.Subcategories) > 0 && !slices.Contains(q.Subcategories, t.Subcategory) {
		return false
	}
	if len(q.Difficulties) > 0 && !slices.Contains(q.Difficulties, t.Difficulty) {
		return false
	}
	if q.MinYear > 0 && t.Year < q.MinYear {
		return false
	}
	if q.MaxYear > 0 && t.Year > q.MaxYear {
		return false
	}
	if q.StandardOnly && !t.Standard {
		return false
	}
	if q.SelectBySetName {
		if q.SetName != "" && t.SetName != q.SetName {
			return false
		}
		if len(q.PacketNumbers) > 0 && !slices.Contains(q.PacketNumbers, t.PacketNumber) {
			return false
		}
	}
	return true
}

// Source provides question content. Implementations must be safe for
// concurrent use; rooms call them outside their serialized loops.
type Source interface {
	// NextTossup returns the next question for q. Random selection outside
	// select-by-set mode, sequential within a set otherwise.
	NextTossup(ctx context.Context, q Query) (*Tossup, error)
	// SetList returns the names of all known sets.
	SetList(ctx context.Context) ([]string, error)
	// NumPackets returns how many packets a set contains.
	NumPackets(ctx context.Context, setName string) (int, error)
}
