package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned for input that is not a valid envelope or
	// whose payload does not match its type.
	ErrMalformed = errors.New("malformed message")
	// ErrUnknownType is returned for an envelope whose type is not part of
	// the protocol.
	ErrUnknownType = errors.New("unknown message type")
)

// Envelope is the wire framing of every message.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Encode frames msg in an envelope.
func Encode(msg Message) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", msg.Type(), err)
	}
	return json.Marshal(Envelope{Type: msg.Type(), Payload: payload})
}

// MustEncode is Encode for messages that cannot fail to marshal.
func MustEncode(msg Message) []byte {
	data, err := Encode(msg)
	if err != nil {
		panic(err)
	}
	return data
}

// Parse decodes and validates one envelope. Handlers only ever see values
// that passed validation.
func Parse(data []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}

	msg, err := newMessage(env.Type)
	if err != nil {
		return nil, err
	}

	payload := bytes.TrimSpace(env.Payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return nil, fmt.Errorf("%w: %s without payload", ErrMalformed, env.Type)
	}
	if err := json.Unmarshal(payload, msg); err != nil {
		return nil, fmt.Errorf("%w: %s payload: %v", ErrMalformed, env.Type, err)
	}
	if err := validate(msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, env.Type, err)
	}
	return msg, nil
}

func newMessage(t string) (Message, error) {
	switch t {
	case TypeJoinBoard:
		return &JoinBoard{}, nil
	case TypeElementUpdate:
		return &ElementUpdate{}, nil
	case TypeElementsUpdate:
		return &ElementsUpdate{}, nil
	case TypeElementsDelete:
		return &ElementsDelete{}, nil
	case TypeCursorMove:
		return &CursorMove{}, nil
	case TypeJoinAck:
		return &JoinAck{}, nil
	case TypeError:
		return &Error{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
}

func validate(msg Message) error {
	if b, ok := msg.(BoardScoped); ok && b.Board() == "" {
		return errors.New("missing boardId")
	}

	switch m := msg.(type) {
	case *ElementUpdate:
		return m.Element.Validate()
	case *ElementsUpdate:
		if len(m.Elements) == 0 {
			return errors.New("empty elements")
		}
		for _, el := range m.Elements {
			if err := el.Validate(); err != nil {
				return err
			}
		}
	case *ElementsDelete:
		if len(m.IDs) == 0 {
			return errors.New("empty ids")
		}
		for _, id := range m.IDs {
			if id == "" {
				return errors.New("empty id")
			}
		}
	case *JoinAck:
		if m.BoardID == "" {
			return errors.New("missing boardId")
		}
	}
	return nil
}
