// Package messages builds the envelopes emitted to clients.
package messages

import (
	"fmt"
	"strconv"
	"time"

	"github.com/nfrund/roomrelay/internal/domain"
)

// Message is a chat line.
type Message struct {
	SenderLabel string    `json:"senderLabel"`
	Text        string    `json:"text"`
	SentAt      time.Time `json:"sentAt"`
}

// LocationMessage carries a map link for a shared position.
type LocationMessage struct {
	SenderLabel string    `json:"senderLabel"`
	URL         string    `json:"url"`
	SentAt      time.Time `json:"sentAt"`
}

// RoomData lists the current members of a room.
type RoomData struct {
	Room  string        `json:"room"`
	Users []domain.User `json:"users"`
}

// GenerateMessage stamps text with the current time.
func GenerateMessage(senderLabel, text string) Message {
	return Message{
		SenderLabel: senderLabel,
		Text:        text,
		SentAt:      time.Now().UTC(),
	}
}

// GenerateLocationMessage stamps a location URL with the current time.
func GenerateLocationMessage(senderLabel, url string) LocationMessage {
	return LocationMessage{
		SenderLabel: senderLabel,
		URL:         url,
		SentAt:      time.Now().UTC(),
	}
}

// GenerateRoomData snapshots the members of room.
func GenerateRoomData(room string, users []domain.User) RoomData {
	if users == nil {
		users = []domain.User{}
	}
	return RoomData{Room: room, Users: users}
}

// LocationURL returns a Google Maps link for the coordinates.
func LocationURL(latitude, longitude float64) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%s,%s",
		strconv.FormatFloat(latitude, 'f', -1, 64),
		strconv.FormatFloat(longitude, 'f', -1, 64),
	)
}
