package errors

import "errors"

var (
	ErrNoFares               = errors.New("no fares observed")
	ErrFetchTimeout          = errors.New("fare fetch timed out")
	ErrSourceTemporary       = errors.New("temporary source failure")
	ErrPriceNotFound         = errors.New("price not found in markup")
	ErrStateNotFound         = errors.New("fare state not found")
	ErrUnknownProvider       = errors.New("unknown fare provider")
	ErrNotifierNotConfigured = errors.New("notifier not configured")
	ErrInvalidConfig         = errors.New("invalid config")
)
