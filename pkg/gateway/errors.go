package gateway

import "errors"

var (
	// ErrDiscovery indicates no usable gateway announcement was received
	ErrDiscovery = errors.New("gateway: discovery failed")

	// ErrConnection indicates the TCP session could not be opened or used
	ErrConnection = errors.New("gateway: connection failed")

	// ErrNotConnected indicates no gateway session is currently open
	ErrNotConnected = errors.New("gateway: no gateway connected")

	// ErrProtocolTimeout indicates no CRLF-terminated frame arrived before the response deadline
	ErrProtocolTimeout = errors.New("gateway: response timed out")

	// ErrProtocolDecode indicates a frame held no parseable JSON object
	ErrProtocolDecode = errors.New("gateway: no valid JSON in response")

	// ErrCorrelation indicates no response in a batch matched the request
	ErrCorrelation = errors.New("gateway: no matching response")
)
