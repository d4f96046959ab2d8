package amqp

import (
	"encoding/json"
	"time"
)

// SMSReceivedMessage is the wire form of a raw SMS handed to the ingest
// worker. It carries the full message body; the worker owns parsing.
type SMSReceivedMessage struct {
	ID         string    `json:"id"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}

func NewSMSReceivedMessage(id, body string) *SMSReceivedMessage {
	return &SMSReceivedMessage{
		ID:         id,
		Body:       body,
		ReceivedAt: time.Now(),
	}
}

func (m *SMSReceivedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SMSReceivedMessageFromJSON(data []byte) (*SMSReceivedMessage, error) {
	var msg SMSReceivedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
