package core

import "errors"

// Structural failures. Stochastic pick/place failures are not errors.
var (
	ErrConfiguration         = errors.New("configuration error")
	ErrOutOfBounds           = errors.New("cell out of bounds")
	ErrCellOccupied          = errors.New("cell occupied")
	ErrInsufficientFreeSpace = errors.New("insufficient free space")
	ErrNoPathFound           = errors.New("no path found")
	ErrUnknownStation        = errors.New("unknown station")
	ErrInvalidPoints         = errors.New("invalid points")
)
