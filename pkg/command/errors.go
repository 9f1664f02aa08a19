package command

import "errors"

var (
	// ErrUnknownDomain indicates the intent domain has no node predicate
	ErrUnknownDomain = errors.New("unknown intent domain")

	// ErrDeviceNotFound indicates no candidate node matched the intent name
	ErrDeviceNotFound = errors.New("no device found")

	// ErrInvalidIntent indicates an intent failed schema validation or could not be parsed
	ErrInvalidIntent = errors.New("invalid intent")
)
