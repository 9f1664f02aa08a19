package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Protocol framing constants
const (
	readChunkSize  = 4096
	maxFrameLogLen = 2000
)

var frameTerminator = []byte("\r\n")

// deadlineReader is the part of net.Conn the receive loop needs.
type deadlineReader interface {
	io.Reader
	SetReadDeadline(t time.Time) error
}

// Encode serializes a request as one JSON object followed by CRLF.
func Encode(req Request) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", req.RequestMethod(), err)
	}
	return append(payload, frameTerminator...), nil
}

// Send writes the framed request to w.
func Send(w io.Writer, req Request) error {
	frame, err := Encode(req)
	if err != nil {
		return err
	}

	log.Debug().
		Int64("id", req.RequestID()).
		Str("method", req.RequestMethod()).
		Int("len", len(frame)).
		Msg("Gateway TX")

	n, err := w.Write(frame)
	if err != nil {
		return err
	}
	if n != len(frame) {
		return io.ErrShortWrite
	}
	return nil
}

// Receive accumulates bytes until the buffer ends with CRLF. Each read waits at
// most readTimeout; a read timeout only re-checks the overall deadline, which
// is responseTimeout from the start of the call. EOF ends the loop early.
func Receive(ctx context.Context, r deadlineReader, readTimeout, responseTimeout time.Duration) ([]byte, error) {
	end := time.Now().Add(responseTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(end) {
		end = d
	}
	defer func() { _ = r.SetReadDeadline(time.Time{}) }()

	buf := make([]byte, 0, readChunkSize)
	chunk := make([]byte, readChunkSize)

	for time.Now().Before(end) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("receive: %w", err)
		}

		deadline := time.Now().Add(readTimeout)
		if deadline.After(end) {
			deadline = end
		}
		if err := r.SetReadDeadline(deadline); err != nil {
			return nil, fmt.Errorf("%w: set read deadline: %w", ErrConnection, err)
		}

		n, err := r.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if bytes.HasSuffix(buf, frameTerminator) {
			break
		}
		if err != nil {
			if isTimeout(err) {
				continue
			}
			if errors.Is(err, io.EOF) {
				log.Debug().Int("buffered", len(buf)).Msg("Gateway closed connection during receive")
				break
			}
			return nil, fmt.Errorf("%w: read: %w", ErrConnection, err)
		}
		if n == 0 {
			break
		}
	}

	if !bytes.HasSuffix(buf, frameTerminator) {
		return nil, fmt.Errorf("%w: %d bytes received without terminator", ErrProtocolTimeout, len(buf))
	}

	log.Debug().Int("len", len(buf)).Msg("Gateway RX frame")
	return buf, nil
}

// Decode strips the trailing CRLF and parses every JSON object found from the
// start of the frame, stopping at the first value that does not parse. Invalid
// UTF-8 is replaced rather than rejected and non-object values are skipped.
// A frame with no JSON object in it, including one that holds only arrays or
// scalars, is reported as ErrProtocolDecode.
func Decode(frame []byte) ([]Response, error) {
	text := strings.ToValidUTF8(string(bytes.TrimSuffix(frame, frameTerminator)), "�")

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var out []Response
	for {
		var v any
		if err := dec.Decode(&v); err != nil {
			break
		}
		if obj, ok := v.(map[string]any); ok {
			out = append(out, Response(obj))
		}
	}

	if len(out) == 0 {
		log.Debug().Str("raw", truncate(text, maxFrameLogLen)).Msg("Undecodable gateway frame")
		return nil, fmt.Errorf("%w: %q", ErrProtocolDecode, truncate(text, 120))
	}
	return out, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
