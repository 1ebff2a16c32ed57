// Package protocol defines the wire messages exchanged between clients and a
// room coordinator. The inbound kind set is closed: anything outside it is
// dropped by the coordinator without a reply.
package protocol

// Kind is an inbound client message kind.
type Kind string

const (
	KindBan                 Kind = "ban"
	KindChat                Kind = "chat"
	KindChatLiveUpdate      Kind = "chat-live-update"
	KindGiveAnswer          Kind = "give-answer"
	KindGiveAnswerLive      Kind = "give-answer-live-update"
	KindBuzz                Kind = "buzz"
	KindNext                Kind = "next"
	KindSkip                Kind = "skip"
	KindStart               Kind = "start"
	KindPause               Kind = "pause"
	KindToggleLock          Kind = "toggle-lock"
	KindToggleLoginRequired Kind = "toggle-login-required"
	KindToggleMute          Kind = "toggle-mute"
	KindTogglePublic        Kind = "toggle-public"
	KindToggleRebuzz        Kind = "toggle-rebuzz"
	KindToggleSkip          Kind = "toggle-skip"
	KindToggleSelectBySet   Kind = "toggle-select-by-set-name"
	KindToggleStandardOnly  Kind = "toggle-standard-only"
	KindToggleTimer         Kind = "toggle-timer"
	KindSetCategories       Kind = "set-categories"
	KindSetDifficulties     Kind = "set-difficulties"
	KindSetPacketNumbers    Kind = "set-packet-numbers"
	KindSetReadingSpeed     Kind = "set-reading-speed"
	KindSetSetName          Kind = "set-set-name"
	KindSetStrictness       Kind = "set-strictness"
	KindSetUsername         Kind = "set-username"
	KindSetYearRange        Kind = "set-year-range"
	KindVotekickInit        Kind = "votekick-init"
	KindVotekickVote        Kind = "votekick-vote"
)

var inboundKinds = map[Kind]bool{
	KindBan: true, KindChat: true, KindChatLiveUpdate: true,
	KindGiveAnswer: true, KindGiveAnswerLive: true, KindBuzz: true,
	KindNext: true, KindSkip: true, KindStart: true, KindPause: true,
	KindToggleLock: true, KindToggleLoginRequired: true, KindToggleMute: true,
	KindTogglePublic: true, KindToggleRebuzz: true, KindToggleSkip: true,
	KindToggleSelectBySet: true, KindToggleStandardOnly: true,
	KindToggleTimer: true, KindSetCategories: true, KindSetDifficulties: true,
	KindSetPacketNumbers: true, KindSetReadingSpeed: true,
	KindSetSetName: true, KindSetStrictness: true, KindSetUsername: true,
	KindSetYearRange: true, KindVotekickInit: true, KindVotekickVote: true,
}

// Known reports whether k belongs to the closed inbound set.
func Known(k Kind) bool { return inboundKinds[k] }

// ClientMessage is the union of all inbound payload shapes. Handlers only
// read the fields their kind defines; everything else stays zero.
type ClientMessage struct {
	Type Kind `json:"type"`

	Message        string `json:"message,omitempty"`
	TargetID       string `json:"targetId,omitempty"`
	TargetUsername string `json:"targetUsername,omitempty"`
	Username       string `json:"username,omitempty"`

	Lock            bool `json:"lock,omitempty"`
	LoginRequired   bool `json:"loginRequired,omitempty"`
	Public          bool `json:"public,omitempty"`
	Rebuzz          bool `json:"rebuzz,omitempty"`
	Skip            bool `json:"skip,omitempty"`
	SelectBySetName bool `json:"selectBySetName,omitempty"`
	StandardOnly    bool `json:"standardOnly,omitempty"`
	Timer           bool `json:"timer,omitempty"`
	MuteStatus      bool `json:"muteStatus,omitempty"`
	Paused          bool `json:"paused,omitempty"`

	Categories    []string `json:"categories,omitempty"`
	Subcategories []string `json:"subcategories,omitempty"`
	Difficulties  []int    `json:"difficulties,omitempty"`
	PacketNumbers []int    `json:"packetNumbers,omitempty"`
	ReadingSpeed  int      `json:"readingSpeed,omitempty"`
	SetName       string   `json:"setName,omitempty"`
	Strictness    int      `json:"strictness,omitempty"`
	MinYear       int      `json:"minYear,omitempty"`
	MaxYear       int      `json:"maxYear,omitempty"`
}
