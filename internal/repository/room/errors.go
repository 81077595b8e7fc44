package room

import "errors"

var (
	ErrMetadataNotFound = errors.New("room metadata not found")
)
