package gateway

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Discovery defaults
const (
	DefaultBroadcastAddress = "255.255.255.255"
	DefaultDiscoverTimeout  = 5 * time.Second

	maxDatagramSize = 1024
)

// DiscoverOptions controls a discovery probe.
type DiscoverOptions struct {
	BroadcastAddress string
	Port             int
	Timeout          time.Duration
}

func (o DiscoverOptions) withDefaults() DiscoverOptions {
	if o.BroadcastAddress == "" {
		o.BroadcastAddress = DefaultBroadcastAddress
	}
	if o.Port == 0 {
		o.Port = DiscoveryPort
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultDiscoverTimeout
	}
	return o
}

// Info is a gateway announcement. Fields holds every key the gateway sent,
// including "ip".
type Info struct {
	IP     string            `json:"ip"`
	Fields map[string]string `json:"fields"`
}

// Address returns the control channel address of the announced gateway.
func (i Info) Address() Address {
	return NewAddress(i.IP)
}

// ParseAnnouncement parses a discovery reply of newline separated
// "key: value" lines. Lines without a colon are ignored.
func ParseAnnouncement(data []byte) (*Info, error) {
	fields := make(map[string]string)

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		fields[key] = strings.TrimSpace(value)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDiscovery, err)
	}

	ip := fields["ip"]
	if ip == "" {
		return nil, fmt.Errorf("%w: announcement has no ip", ErrDiscovery)
	}
	return &Info{IP: ip, Fields: fields}, nil
}

// Discover broadcasts the discovery token and returns the first valid reply.
func Discover(ctx context.Context, opts DiscoverOptions) (*Info, error) {
	var found *Info
	err := probe(ctx, opts, func(info *Info) bool {
		found = info
		return false
	})
	if err != nil {
		discoveriesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if found == nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			discoveriesTotal.WithLabelValues("canceled").Inc()
			return nil, fmt.Errorf("%w: %w", ErrDiscovery, ctxErr)
		}
		discoveriesTotal.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("%w: no gateway answered within %s", ErrDiscovery, opts.withDefaults().Timeout)
	}
	discoveriesTotal.WithLabelValues("found").Inc()
	return found, nil
}

// DiscoverAll collects every distinct gateway that answers before the timeout.
// An empty result is not an error.
func DiscoverAll(ctx context.Context, opts DiscoverOptions) ([]Info, error) {
	seen := make(map[string]bool)
	var out []Info
	err := probe(ctx, opts, func(info *Info) bool {
		if !seen[info.IP] {
			seen[info.IP] = true
			out = append(out, *info)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// probe sends one discovery datagram and feeds valid replies to fn until fn
// returns false, the timeout elapses or ctx is done.
func probe(ctx context.Context, opts DiscoverOptions, fn func(*Info) bool) error {
	opts = opts.withDefaults()

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return fmt.Errorf("%w: open socket: %w", ErrDiscovery, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(opts.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return fmt.Errorf("%w: set deadline: %w", ErrDiscovery, err)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	target := net.JoinHostPort(opts.BroadcastAddress, strconv.Itoa(opts.Port))
	dst, err := net.ResolveUDPAddr("udp4", target)
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %w", ErrDiscovery, target, err)
	}

	log.Debug().Str("target", target).Msg("Sending gateway discovery probe")
	if _, err := conn.WriteToUDP([]byte(DiscoveryToken), dst); err != nil {
		return fmt.Errorf("%w: send probe: %w", ErrDiscovery, err)
	}

	buf := make([]byte, maxDatagramSize)
	for {
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			if isTimeout(err) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("%w: receive: %w", ErrDiscovery, err)
		}

		info, err := ParseAnnouncement(buf[:n])
		if err != nil {
			log.Debug().Err(err).Str("from", from.String()).Msg("Ignoring discovery reply")
			continue
		}
		log.Info().Str("ip", info.IP).Str("from", from.String()).Msg("Gateway announced")
		if !fn(info) {
			return nil
		}
	}
}
