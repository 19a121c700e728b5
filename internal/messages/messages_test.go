package messages

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/roomrelay/internal/domain"
)

func TestGenerateMessage(t *testing.T) {
	before := time.Now()
	msg := GenerateMessage("alice", "hello")
	after := time.Now()

	assert.Equal(t, "alice", msg.SenderLabel)
	assert.Equal(t, "hello", msg.Text)
	assert.False(t, msg.SentAt.Before(before), "sentAt must not precede the call")
	assert.False(t, msg.SentAt.After(after), "sentAt must not follow the return")
}

func TestGenerateLocationMessage(t *testing.T) {
	before := time.Now()
	msg := GenerateLocationMessage("bob", "https://example.com/map")
	after := time.Now()

	assert.Equal(t, "bob", msg.SenderLabel)
	assert.Equal(t, "https://example.com/map", msg.URL)
	assert.False(t, msg.SentAt.Before(before))
	assert.False(t, msg.SentAt.After(after))
}

func TestLocationURL(t *testing.T) {
	assert.Equal(t, "https://www.google.com/maps?q=52.52,13.405", LocationURL(52.52, 13.405))
	assert.Equal(t, "https://www.google.com/maps?q=-33.8688,151.2093", LocationURL(-33.8688, 151.2093))
	assert.Equal(t, "https://www.google.com/maps?q=0,0", LocationURL(0, 0))
}

func TestEnvelopeJSON(t *testing.T) {
	data, err := json.Marshal(GenerateLocationMessage("bob", "u"))
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Contains(t, fields, "senderLabel")
	assert.Contains(t, fields, "url")
	assert.Contains(t, fields, "sentAt")
}

func TestGenerateRoomData(t *testing.T) {
	rd := GenerateRoomData("r1", nil)
	assert.Equal(t, "r1", rd.Room)
	assert.NotNil(t, rd.Users)

	rd = GenerateRoomData("r1", []domain.User{{ID: "1", Username: "a", Room: "r1"}})
	assert.Len(t, rd.Users, 1)
}
