package queue

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MessageVersion is bumped when Message changes incompatibly.
const MessageVersion = 1

// Message asks the provisioning worker to create resources for a service request.
type Message struct {
	ServiceRequestID string `json:"serviceRequestId"`
	RequestID        string `json:"requestId"`
	DomainName       string `json:"domainName,omitempty"`
	Region           string `json:"region,omitempty"`
	RetryFailed      bool   `json:"retryFailed"`
	// ItemIndexes limits the run to these items; empty means every item.
	ItemIndexes []int  `json:"itemIndexes,omitempty"`
	EnqueuedAt  string `json:"enqueuedAt"`
	Version     int    `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	if strings.TrimSpace(msg.ServiceRequestID) == "" {
		return nil, fmt.Errorf("serviceRequestId is required")
	}
	if msg.Version == 0 {
		msg.Version = MessageVersion
	}
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.Version > MessageVersion {
		return Message{}, fmt.Errorf("unsupported message version %d", msg.Version)
	}
	return msg, nil
}
