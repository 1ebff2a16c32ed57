package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openqb/quizroom-backend/internal/questions"
	"github.com/openqb/quizroom-backend/internal/registry"
	"github.com/openqb/quizroom-backend/internal/room"
)

func testRegistry(t *testing.T, permanent []string) *registry.Registry {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	deps := room.Deps{Source: questions.NewMemorySource(questions.SampleTossups(), 1)}
	return registry.New(ctx, deps, permanent)
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListRoomsShowsOnlyPublicRooms(t *testing.T) {
	reg := testRegistry(t, []string{"hq"})

	_, err := reg.Ensure(context.Background(), "secret", "alice", true)
	require.NoError(t, err)
	_, err = reg.Ensure(context.Background(), "open", "bob", false)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	ListRooms(reg)(rec, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []RoomSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	names := make(map[string]RoomSummary, len(got))
	for _, s := range got {
		names[s.Name] = s
	}
	require.Len(t, names, 2)
	assert.Contains(t, names, "hq")
	assert.Contains(t, names, "open")
	assert.NotContains(t, names, "secret")
	assert.True(t, names["hq"].Permanent)
	assert.False(t, names["open"].Permanent)
}

func TestListRoomsEmptyRegistry(t *testing.T) {
	reg := testRegistry(t, nil)

	rec := httptest.NewRecorder()
	ListRooms(reg)(rec, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
