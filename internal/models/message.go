package models

import "time"

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Result carries the structured answer attached to a bot message.
type Result struct {
	Rows  [][]string `json:"rows"`
	Query string     `json:"query,omitempty"`
}

// Message is a single immutable entry in a channel history. The id is
// encoded as a JSON string since snowflake values exceed 2^53.
type Message struct {
	ID        int64     `json:"id,string"`
	ChannelID string    `json:"channel_id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Result    *Result   `json:"result,omitempty"`
}

// Snapshot is the persisted form of every channel history.
type Snapshot map[string][]Message
