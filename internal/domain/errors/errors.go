package errors

import "errors"

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrRoomNotFound   = errors.New("room not found")
	ErrConnNotFound   = errors.New("connection not found")
)
