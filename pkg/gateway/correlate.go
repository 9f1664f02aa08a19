package gateway

import "strings"

// verdict is the outcome of matching one decoded batch against a request.
type verdict int

const (
	verdictNone verdict = iota
	verdictMatch
	verdictResend
)

func (v verdict) String() string {
	switch v {
	case verdictMatch:
		return "match"
	case verdictResend:
		return "resend"
	default:
		return "none"
	}
}

// correlate scans the batch in order. The first value for which a rule fires
// decides the outcome; values for which no rule fires are skipped.
func correlate(req Request, batch []Response) (Response, verdict) {
	for _, resp := range batch {
		switch v := judge(req, resp); v {
		case verdictMatch:
			return resp, v
		case verdictResend:
			return nil, v
		}
	}
	return nil, verdictNone
}

func judge(req Request, resp Response) verdict {
	method := resp.Method()

	// Unsolicited state push; the real reply may follow a resend.
	if method == MethodPostProp {
		return verdictResend
	}

	switch req.RequestMethod() {
	case MethodGetTopology:
		if strings.HasSuffix(method, "topology") {
			return verdictMatch
		}
		if method != MethodPostTopology {
			return verdictResend
		}
	case MethodGetRoom:
		if !resp.Has("rooms") {
			return verdictResend
		}
	}

	if id, ok := resp.ID(); ok && id == req.RequestID() {
		return verdictMatch
	}
	return verdictNone
}
