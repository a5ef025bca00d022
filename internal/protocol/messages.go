package protocol

import "github.com/weiawesome/wes-io-canvas/internal/domain"

// Message types, client -> server.
const (
	TypeJoinBoard      = "joinBoard"
	TypeElementUpdate  = "elementUpdate"
	TypeElementsUpdate = "elementsUpdate"
	TypeElementsDelete = "elementsDelete"
	TypeCursorMove     = "cursorMove"
)

// Message types, server -> client. Mutations and cursor moves are relayed
// under their original type.
const (
	TypeJoinAck = "joinAck"
	TypeError   = "error"
)

// Error codes carried by Error messages.
const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeNotJoined     = "NOT_JOINED"
	CodeBoardMismatch = "BOARD_MISMATCH"
	CodeInternalError = "INTERNAL_ERROR"
)

// Message is the closed set of realtime messages. Only types in this
// package implement it.
type Message interface {
	Type() string
	sealed()
}

// BoardScoped is implemented by messages addressed to a board.
type BoardScoped interface {
	Message
	Board() string
}

// Mutation is implemented by messages that change elements.
type Mutation interface {
	BoardScoped
	mutation()
}

// JoinBoard asks the server to add the connection to a board's room.
type JoinBoard struct {
	BoardID string           `json:"boardId"`
	User    *domain.Identity `json:"user,omitempty"`
}

// ElementUpdate creates or replaces one element.
type ElementUpdate struct {
	BoardID string         `json:"boardId"`
	Element domain.Element `json:"element"`
}

// ElementsUpdate creates or replaces several elements.
type ElementsUpdate struct {
	BoardID  string           `json:"boardId"`
	Elements []domain.Element `json:"elements"`
}

// ElementsDelete removes elements by id.
type ElementsDelete struct {
	BoardID string   `json:"boardId"`
	IDs     []string `json:"ids"`
}

// CursorMove reports a pointer position in board space.
type CursorMove struct {
	BoardID string           `json:"boardId"`
	Point   domain.Point     `json:"point"`
	User    *domain.Identity `json:"user,omitempty"`
}

// JoinAck confirms a joinBoard.
type JoinAck struct {
	BoardID string `json:"boardId"`
	OK      bool   `json:"ok"`
}

// Error reports a rejected message. The connection stays open.
type Error struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// NewError creates an error message.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (*JoinBoard) Type() string      { return TypeJoinBoard }
func (*ElementUpdate) Type() string  { return TypeElementUpdate }
func (*ElementsUpdate) Type() string { return TypeElementsUpdate }
func (*ElementsDelete) Type() string { return TypeElementsDelete }
func (*CursorMove) Type() string     { return TypeCursorMove }
func (*JoinAck) Type() string        { return TypeJoinAck }
func (*Error) Type() string          { return TypeError }

func (*JoinBoard) sealed()      {}
func (*ElementUpdate) sealed()  {}
func (*ElementsUpdate) sealed() {}
func (*ElementsDelete) sealed() {}
func (*CursorMove) sealed()     {}
func (*JoinAck) sealed()        {}
func (*Error) sealed()          {}

func (m *JoinBoard) Board() string      { return m.BoardID }
func (m *ElementUpdate) Board() string  { return m.BoardID }
func (m *ElementsUpdate) Board() string { return m.BoardID }
func (m *ElementsDelete) Board() string { return m.BoardID }
func (m *CursorMove) Board() string     { return m.BoardID }

func (*ElementUpdate) mutation()  {}
func (*ElementsUpdate) mutation() {}
func (*ElementsDelete) mutation() {}
