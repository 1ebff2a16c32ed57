package protocol

import (
	"github.com/openqb/quizroom-backend/internal/player"
	"github.com/openqb/quizroom-backend/internal/questions"
)

// Outbound event types that do not mirror an inbound kind.
const (
	EventConnectionAcknowledged = "connection-acknowledged"
	EventConnectionQuery        = "connection-acknowledged-query"
	EventConnectionTossup       = "connection-acknowledged-tossup"
	EventJoin                   = "join"
	EventLeave                  = "leave"
	EventEnforcingRemoval       = "enforcing-removal"
	EventConfirmBan             = "confirm-ban"
	EventForceUsername          = "force-username"
	EventUpdateQuestion         = "update-question"
	EventRevealAnswer           = "reveal-answer"
	EventTimerUpdate            = "timer-update"
	EventLostBuzzerRace         = "lost-buzzer-race"
	EventInitiatedVotekick      = "initiated-vk"
	EventSuccessfulVotekick     = "successful-vk"
	EventError                  = "error"
	EventNoQuestionsFound       = "no-questions-found"
	EventEndOfSet               = "end-of-set"
)

// Settings is the wire shape of a room's shared configuration.
type Settings struct {
	Lock            bool `json:"lock"`
	LoginRequired   bool `json:"loginRequired"`
	Public          bool `json:"public"`
	Rebuzz          bool `json:"rebuzz"`
	SkipEnabled     bool `json:"skip"`
	TimerEnabled    bool `json:"timer"`
	SelectBySetName bool `json:"selectBySetName"`
	StandardOnly    bool `json:"standardOnly"`
	ReadingSpeed    int  `json:"readingSpeed"`
	Strictness      int  `json:"strictness"`
}

// ServerMessage is the single outbound envelope. Every event populates only
// the fields its type defines. String and slice payloads are elided when
// empty; numeric and boolean payloads are always serialized because zero is
// a meaningful value for them.
type ServerMessage struct {
	Type string `json:"type"`

	UserID         string `json:"userId,omitempty"`
	Username       string `json:"username,omitempty"`
	OldUsername    string `json:"oldUsername,omitempty"`
	NewUsername    string `json:"newUsername,omitempty"`
	TargetID       string `json:"targetId,omitempty"`
	TargetUsername string `json:"targetUsername,omitempty"`
	Message        string `json:"message,omitempty"`

	Word           string  `json:"word,omitempty"`
	Question       string  `json:"question,omitempty"`
	Answer         string  `json:"answer,omitempty"`
	GivenAnswer    string  `json:"givenAnswer,omitempty"`
	Directive      string  `json:"directive,omitempty"`
	DirectedPrompt string  `json:"directedPrompt,omitempty"`
	Score          int     `json:"score"`
	Celerity       float64 `json:"celerity"`

	RemovalType   string `json:"removalType,omitempty"`
	Threshold     int    `json:"threshold,omitempty"`
	TimeRemaining int    `json:"timeRemaining"`

	// connection-acknowledged snapshot
	OwnerID          string                         `json:"ownerId,omitempty"`
	IsNew            bool                           `json:"isNew"`
	IsPermanent      bool                           `json:"isPermanent"`
	Players          map[string]*player.Participant `json:"players,omitempty"`
	User             *player.Participant            `json:"user,omitempty"`
	BuzzedIn         string                         `json:"buzzedIn,omitempty"`
	CanBuzz          bool                           `json:"canBuzz"`
	QuestionProgress string                         `json:"questionProgress,omitempty"`
	Settings         *Settings                      `json:"settings,omitempty"`
	Query            *questions.Query               `json:"query,omitempty"`
	SetList          []string                       `json:"setList,omitempty"`
	Tossup           *questions.Tossup              `json:"tossup,omitempty"`

	// setting-change mirrors
	Lock            bool     `json:"lock"`
	LoginRequired   bool     `json:"loginRequired"`
	Public          bool     `json:"public"`
	Rebuzz          bool     `json:"rebuzz"`
	Skip            bool     `json:"skip"`
	SelectBySetName bool     `json:"selectBySetName"`
	StandardOnly    bool     `json:"standardOnly"`
	Timer           bool     `json:"timer"`
	MuteStatus      bool     `json:"muteStatus"`
	Paused          bool     `json:"paused"`
	ReadingSpeed    int      `json:"readingSpeed"`
	SetName         string   `json:"setName,omitempty"`
	Strictness      int      `json:"strictness,omitempty"`
	MinYear         int      `json:"minYear"`
	MaxYear         int      `json:"maxYear"`
	Categories      []string `json:"categories,omitempty"`
	Difficulties    []int    `json:"difficulties,omitempty"`
	PacketNumbers   []int    `json:"packetNumbers,omitempty"`
}
