package chatfeed

import (
	"time"

	"gorm.io/datatypes"
)

// Message types carried by chat records.
const (
	TypeHuman = "human"
	TypeAI    = "ai"
)

type Message struct {
	Type             string            `json:"type"`
	Content          string            `json:"content"`
	AdditionalKwargs datatypes.JSONMap `json:"additional_kwargs"`
	ResponseMetadata datatypes.JSONMap `json:"response_metadata"`
}

// Record is one message of a conversation as served by the webhook.
type Record struct {
	SessionID string    `json:"session_id"`
	Message   Message   `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Sample returns the built-in records served when the webhook is not
// configured or cannot be reached. Timestamps are relative to now.
func Sample(now time.Time) []Record {
	at := func(ago time.Duration) time.Time { return now.Add(-ago).UTC() }
	msg := func(typ, content string) Message {
		return Message{
			Type:             typ,
			Content:          content,
			AdditionalKwargs: datatypes.JSONMap{},
			ResponseMetadata: datatypes.JSONMap{},
		}
	}
	return []Record{
		{SessionID: "sample-session-1", Message: msg(TypeHuman, "Hello, how can I help you today?"), CreatedAt: at(3600 * time.Second)},
		{SessionID: "sample-session-1", Message: msg(TypeAI, "Hi! I'm looking for information about your services."), CreatedAt: at(3500 * time.Second)},
		{SessionID: "sample-session-2", Message: msg(TypeHuman, "What are your business hours?"), CreatedAt: at(7200 * time.Second)},
		{SessionID: "sample-session-2", Message: msg(TypeAI, "We're open Monday to Friday, 9 AM to 5 PM."), CreatedAt: at(7100 * time.Second)},
	}
}
