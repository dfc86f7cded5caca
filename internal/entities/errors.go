package entities

import "errors"

var (
	ErrShowNotFound    = errors.New("show not found")
	ErrBookingNotFound = errors.New("booking not found")

	// ErrSeatsUnavailable means at least one requested seat is already
	// held on the show's seat ledger.
	ErrSeatsUnavailable = errors.New("selected seats are not available")

	ErrInvalidSeatSelection = errors.New("invalid seat selection")

	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	ErrBadSignature = errors.New("invalid notification signature")
)
