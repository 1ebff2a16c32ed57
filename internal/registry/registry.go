// Package registry owns the process-wide room-name to room mapping. It is
// an actor like the rooms themselves, so create-if-absent is atomic under
// concurrent first-join races.
package registry

import (
	"context"

	"go.uber.org/zap"

	"github.com/openqb/quizroom-backend/internal/room"
)

type Msg interface{ isRegistryMsg() }

// EnsureRoom resolves a room, creating it when absent. The creator of a
// private room becomes its owner.
type EnsureRoom struct {
	Name    string
	OwnerID string
	Private bool
	Reply   chan *room.Room
}

type GetRoom struct {
	Name  string
	Reply chan *room.Room
}

type RemoveRoom struct{ Name string }

type ListRooms struct{ Reply chan []*room.Room }

type ShutdownRegistry struct{}

func (EnsureRoom) isRegistryMsg()       {}
func (GetRoom) isRegistryMsg()          {}
func (RemoveRoom) isRegistryMsg()       {}
func (ListRooms) isRegistryMsg()        {}
func (ShutdownRegistry) isRegistryMsg() {}

type Registry struct {
	inbox  chan Msg
	rooms  map[string]*room.Room
	deps   room.Deps
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New starts the registry loop, seeding the given permanent rooms. Permanent
// rooms are public, ownerless, and exempt from certain setting changes.
func New(parent context.Context, deps room.Deps, permanent []string) *Registry {
	ctx, cancel := context.WithCancel(parent)
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	r := &Registry{
		inbox:  make(chan Msg, 64),
		rooms:  make(map[string]*room.Room),
		deps:   deps,
		log:    deps.Logger,
		ctx:    ctx,
		cancel: cancel,
	}
	for _, name := range permanent {
		r.rooms[name] = room.NewRoom(ctx, name, "", true, true, deps)
	}

	go r.loop()
	return r
}

func (r *Registry) Inbox() chan<- Msg { return r.inbox }

func (r *Registry) loop() {
	for {
		select {
		case <-r.ctx.Done():
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case EnsureRoom:
				if rm := r.rooms[msg.Name]; rm != nil {
					msg.Reply <- rm
					break
				}
				r.log.Info("creating room",
					zap.String("name", msg.Name), zap.Bool("private", msg.Private))
				rm := room.NewRoom(r.ctx, msg.Name, msg.OwnerID, false, !msg.Private, r.deps)
				r.rooms[msg.Name] = rm
				msg.Reply <- rm

			case GetRoom:
				msg.Reply <- r.rooms[msg.Name] // may be nil

			case RemoveRoom:
				if rm := r.rooms[msg.Name]; rm != nil {
					rm.Inbox() <- room.Shutdown{}
					delete(r.rooms, msg.Name)
				}

			case ListRooms:
				list := make([]*room.Room, 0, len(r.rooms))
				for _, rm := range r.rooms {
					list = append(list, rm)
				}
				msg.Reply <- list

			case ShutdownRegistry:
				for _, rm := range r.rooms {
					rm.Inbox() <- room.Shutdown{}
				}
				clear(r.rooms)
				r.cancel()
			}
		}
	}
}

// Ensure is a convenience wrapper around EnsureRoom for callers outside the
// actor world.
func (r *Registry) Ensure(ctx context.Context, name, ownerID string, private bool) (*room.Room, error) {
	reply := make(chan *room.Room, 1)
	select {
	case r.inbox <- EnsureRoom{Name: name, OwnerID: ownerID, Private: private, Reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case rm := <-reply:
		return rm, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// List returns the current rooms for the public rooms API.
func (r *Registry) List(ctx context.Context) ([]*room.Room, error) {
	reply := make(chan []*room.Room, 1)
	select {
	case r.inbox <- ListRooms{Reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case list := <-reply:
		return list, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
