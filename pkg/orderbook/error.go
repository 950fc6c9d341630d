package orderbook

import "errors"

var (
	ErrInvalidQuantity  = errors.New("invalid order quantity")
	ErrInvalidPrice     = errors.New("invalid order price")
	ErrFOKUnsatisfiable = errors.New("fok order not fully satisfiable")
)
