// Package ws upgrades connections and pumps messages between sockets and
// room coordinators. Admission policy (room name rules, locks, login
// requirements) lives here; everything after admission belongs to the room.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openqb/quizroom-backend/internal/auth"
	"github.com/openqb/quizroom-backend/internal/moderation"
	"github.com/openqb/quizroom-backend/internal/player"
	"github.com/openqb/quizroom-backend/internal/protocol"
	"github.com/openqb/quizroom-backend/internal/registry"
	"github.com/openqb/quizroom-backend/internal/room"
)

const (
	// RoomNameMaxLength caps registry keys; longer names are truncated.
	RoomNameMaxLength = 32

	maxPayloadBytes = 4096
	writeTimeout    = 3 * time.Second
)

var roomNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidRoomName reports whether name uses only the allow-listed characters.
func ValidRoomName(name string) bool {
	return name != "" && roomNamePattern.MatchString(name)
}

type Handler struct {
	reg      *registry.Registry
	checker  moderation.Checker
	verifier auth.Verifier
	log      *zap.Logger
}

func NewHandler(reg *registry.Registry, checker moderation.Checker, verifier auth.Verifier, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if checker == nil {
		checker = moderation.CheckerFunc(func(string) bool { return true })
	}
	return &Handler{reg: reg, checker: checker, verifier: verifier, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	roomName := q.Get("roomName")
	userID := q.Get("userId")
	username := q.Get("username")
	isPrivate := q.Get("private") == "true"

	if userID == "" {
		userID = uuid.NewString()
	}
	if username == "" {
		username = player.RandomName()
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	conn.SetReadLimit(maxPayloadBytes)

	if len(roomName) > RoomNameMaxLength {
		roomName = roomName[:RoomNameMaxLength]
	}
	if !ValidRoomName(roomName) {
		h.refuse(r.Context(), conn, "The room name contains an invalid character. Only A-Z, a-z, 0-9, - and _ are allowed.")
		return
	}
	if !h.checker.IsAppropriate(roomName) {
		h.refuse(r.Context(), conn, "The room name contains an inappropriate word.")
		return
	}

	rm, err := h.reg.Ensure(r.Context(), roomName, userID, isPrivate)
	if err != nil {
		conn.Close(websocket.StatusInternalError, "registry unavailable")
		return
	}

	view, err := rm.View(r.Context())
	if err != nil {
		conn.Close(websocket.StatusInternalError, "room unavailable")
		return
	}
	if view.Settings.Lock {
		h.refuse(r.Context(), conn, "The room is locked.")
		return
	}
	if view.Settings.LoginRequired && !h.verifySession(r) {
		h.refuse(r.Context(), conn, "You must be logged in with a verified email to join this room.")
		return
	}

	if !h.checker.IsAppropriate(username) {
		username = player.RandomName()
		h.send(r.Context(), conn, protocol.ServerMessage{
			Type:     protocol.EventForceUsername,
			Username: username,
			Message:  "Your username contains an inappropriate word, so it has been reset.",
		})
	}

	out := make(chan protocol.ServerMessage, 32)
	rm.Inbox() <- room.Connect{UserID: userID, Username: username, Outbox: out}
	defer func() { rm.Inbox() <- room.Disconnect{UserID: userID} }()

	// Writer: drains the room's outbox until the room closes it.
	writeCtx, writeCancel := context.WithCancel(r.Context())
	defer writeCancel()
	go func() {
		defer conn.Close(websocket.StatusNormalClosure, "bye")
		for msg := range out {
			payload, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
			err = conn.Write(ctx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				return
			}
		}
	}()

	// Reader loop. Malformed payloads are logged and dropped; oversized
	// payloads terminate the connection without touching the room.
	for {
		_, data, err := conn.Read(r.Context())
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusMessageTooBig {
				h.log.Warn("max payload exceeded", zap.String("userId", userID))
			}
			return
		}

		var cm protocol.ClientMessage
		if err := json.Unmarshal(data, &cm); err != nil {
			h.log.Debug("dropping malformed message",
				zap.String("room", roomName), zap.String("userId", userID))
			continue
		}

		rm.Inbox() <- room.FromClient{UserID: userID, Msg: cm}
	}
}

// verifySession checks the session cookie against the auth collaborator.
func (h *Handler) verifySession(r *http.Request) bool {
	if h.verifier == nil {
		return false
	}
	cookie, err := r.Cookie("session")
	if err != nil {
		return false
	}
	_, err = h.verifier.Verify(cookie.Value)
	return err == nil
}

// refuse sends a policy-rejection error to the offending connection only and
// closes it.
func (h *Handler) refuse(ctx context.Context, conn *websocket.Conn, message string) {
	h.send(ctx, conn, protocol.ServerMessage{Type: protocol.EventError, Message: message})
	conn.Close(websocket.StatusPolicyViolation, "refused")
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg protocol.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(ctx, websocket.MessageText, payload)
}
