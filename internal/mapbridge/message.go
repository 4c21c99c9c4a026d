// Package mapbridge decodes the one-way text messages posted by the
// embedded map document. The channel is untyped and unauthenticated, so the
// message set is closed and decoding is strict: anything outside it is
// rejected at the boundary.
package mapbridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

type MessageType string

const (
	TypeEdit            MessageType = "edit"
	TypeDelete          MessageType = "delete"
	TypeCoordinates     MessageType = "coordinates"
	TypeInitialLocation MessageType = "initialLocation"
)

var (
	ErrMalformed      = errors.New("mapbridge: malformed message")
	ErrUnknownType    = errors.New("mapbridge: unknown message type")
	ErrMissingID      = errors.New("mapbridge: missing id")
	ErrBadCoordinates = errors.New("mapbridge: coordinates must be finite numbers")
)

// Message is one decoded bridge message. ID is set for edit/delete,
// Lat/Lng for coordinates/initialLocation.
type Message struct {
	Type MessageType `json:"type"`
	ID   string      `json:"id,omitempty"`
	Lat  *float64    `json:"lat,omitempty"`
	Lng  *float64    `json:"lng,omitempty"`
}

// Decode parses raw bridge input, rejecting unknown tags and incomplete
// messages. Callers log and drop decode failures; they never propagate to
// the user.
func Decode(raw []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch msg.Type {
	case TypeEdit, TypeDelete:
		if msg.ID == "" {
			return Message{}, fmt.Errorf("%w (type %s)", ErrMissingID, msg.Type)
		}
	case TypeCoordinates, TypeInitialLocation:
		if !finite(msg.Lat) || !finite(msg.Lng) {
			return Message{}, fmt.Errorf("%w (type %s)", ErrBadCoordinates, msg.Type)
		}
	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownType, string(msg.Type))
	}
	return msg, nil
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
