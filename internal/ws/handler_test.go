package ws

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidRoomName(t *testing.T) {
	cases := []struct {
		name string
		ok   bool
	}{
		{name: "quiz-night", ok: true},
		{name: "Room_42", ok: true},
		{name: "hq", ok: true},
		{name: "", ok: false},
		{name: "has space", ok: false},
		{name: "sneaky/../path", ok: false},
		{name: "emoji🎉", ok: false},
		// length is handled by truncation, not the pattern
		{name: strings.Repeat("a", 100), ok: true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.ok, ValidRoomName(tc.name), "name %q", tc.name)
	}
}
