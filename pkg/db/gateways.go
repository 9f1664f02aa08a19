package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrGatewayNotFound = errors.New("gateway not found")

// Gateway is a remembered gateway announcement.
type Gateway struct {
	IP       string
	Info     map[string]string
	LastSeen time.Time
}

// GatewayStore remembers gateways so a restart can reconnect without a scan.
type GatewayStore interface {
	Remember(ctx context.Context, ip string, info map[string]string) error
	Last(ctx context.Context) (*Gateway, error)
	List(ctx context.Context) ([]*Gateway, error)
	Forget(ctx context.Context, ip string) error
}

// Gateways returns a GatewayStore for this database.
func (db *DB) Gateways() GatewayStore {
	return &gatewayStore{db: db, now: time.Now}
}

type gatewayStore struct {
	db  *DB
	now func() time.Time
}

func (s *gatewayStore) Remember(ctx context.Context, ip string, info map[string]string) error {
	if info == nil {
		info = map[string]string{"ip": ip}
	}
	raw, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode gateway info: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO gateways (ip, info, last_seen) VALUES (?, ?, ?)
		ON CONFLICT(ip) DO UPDATE SET info = excluded.info, last_seen = excluded.last_seen
	`, ip, string(raw), s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to remember gateway: %w", err)
	}
	return nil
}

func (s *gatewayStore) Last(ctx context.Context) (*Gateway, error) {
	g, err := scanGateway(s.db.QueryRowContext(ctx, `
		SELECT ip, info, last_seen FROM gateways ORDER BY last_seen DESC LIMIT 1
	`))
	if err == sql.ErrNoRows {
		return nil, ErrGatewayNotFound
	}
	return g, err
}

func (s *gatewayStore) List(ctx context.Context) ([]*Gateway, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ip, info, last_seen FROM gateways ORDER BY last_seen DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var gateways []*Gateway
	for rows.Next() {
		g, err := scanGateway(rows)
		if err != nil {
			return nil, err
		}
		gateways = append(gateways, g)
	}
	return gateways, rows.Err()
}

func (s *gatewayStore) Forget(ctx context.Context, ip string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM gateways WHERE ip = ?`, ip)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrGatewayNotFound
	}
	return nil
}

func scanGateway(row rowScanner) (*Gateway, error) {
	g := &Gateway{}
	var info string
	var lastSeen int64
	if err := row.Scan(&g.IP, &info, &lastSeen); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(info), &g.Info); err != nil {
		return nil, fmt.Errorf("failed to decode gateway info for %s: %w", g.IP, err)
	}
	g.LastSeen = time.Unix(0, lastSeen)
	return g, nil
}
