package pubsub

import (
	"fmt"
	"strings"
)

// Channel naming conventions for cross-instance board relay.
const (
	// ChannelBoardRelay carries accepted board messages between instances.
	ChannelBoardRelay = "canvas:board:%s:relay"

	// PatternBoardRelay matches every board relay channel.
	PatternBoardRelay = "canvas:board:*:relay"
)

// Event types carried on relay channels.
const (
	EventBoardMutation = "board_mutation"
	EventCursorMove    = "cursor_move"
)

// BoardRelayChannel returns the relay channel for a board.
func BoardRelayChannel(boardID string) string {
	return fmt.Sprintf(ChannelBoardRelay, boardID)
}

// BoardIDFromChannel extracts the board id from a relay channel name.
func BoardIDFromChannel(channel string) (string, error) {
	parts := strings.Split(channel, ":")
	if len(parts) != 4 || parts[0] != "canvas" || parts[1] != "board" || parts[3] != "relay" || parts[2] == "" {
		return "", fmt.Errorf("invalid channel format: %s", channel)
	}
	return parts[2], nil
}

// RelayPayload wraps an already-encoded realtime envelope so that a peer
// instance can forward it to its local members byte for byte.
type RelayPayload struct {
	Envelope []byte `json:"envelope"`
}
