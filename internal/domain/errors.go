package domain

import "errors"

var (
	ErrInvalidElement = errors.New("invalid element")
	ErrBoardNotFound  = errors.New("board not found")
	ErrInvalidBoardID = errors.New("invalid board id")
)
