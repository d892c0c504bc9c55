// Package flash carries one-shot status messages across a redirect.
package flash

import (
	"encoding/base64"
	"encoding/json"

	"github.com/gin-gonic/gin"
)

// Flash message keys.
const (
	KeySuccess = "success"
	KeyError   = "error"
)

// Message is a flash message shown on the next rendered page.
type Message struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Store persists a flash message until the next page pops it.
type Store interface {
	Set(c *gin.Context, msg Message) error
	Pop(c *gin.Context) (Message, bool)
}

func encodeMessage(msg Message) (string, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeMessage(value string) (Message, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return Message{}, false
	}
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Key == "" {
		return Message{}, false
	}
	return msg, true
}
