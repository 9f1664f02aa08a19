package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/yeehome/pkg/topology"
)

var ErrNodeNotFound = errors.New("node not found")

// NodeStore caches the gateway topology.
type NodeStore interface {
	// SaveNodes upserts nodes by id; the latest write wins.
	SaveNodes(ctx context.Context, nodes []topology.NodeInfo) error
	// ReplaceNodes makes nodes the whole cache: ids missing from nodes are
	// dropped in the same transaction as the upsert.
	ReplaceNodes(ctx context.Context, nodes []topology.NodeInfo) error
	// ListNodes returns every cached node, most recently written batch
	// first, each batch in the order it was saved.
	ListNodes(ctx context.Context) ([]topology.NodeInfo, error)
	GetNode(ctx context.Context, id int64) (*topology.NodeInfo, error)
	ClearNodes(ctx context.Context) error
}

// Nodes returns a NodeStore for this database.
func (db *DB) Nodes() NodeStore {
	return &nodeStore{db: db}
}

type nodeStore struct {
	db *DB
}

func (s *nodeStore) SaveNodes(ctx context.Context, nodes []topology.NodeInfo) error {
	if len(nodes) == 0 {
		return nil
	}
	return s.db.Tx(ctx, func(tx *sql.Tx) error {
		_, err := upsertNodes(ctx, tx, nodes)
		return err
	})
}

func (s *nodeStore) ReplaceNodes(ctx context.Context, nodes []topology.NodeInfo) error {
	return s.db.Tx(ctx, func(tx *sql.Tx) error {
		prevSeq, err := upsertNodes(ctx, tx, nodes)
		if err != nil {
			return err
		}
		// Every id in this batch now has write_seq above prevSeq.
		res, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE write_seq <= ?`, prevSeq)
		if err != nil {
			return fmt.Errorf("failed to drop stale nodes: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			log.Debug().Int64("dropped", n).Msg("Dropped nodes missing from topology")
		}
		return nil
	})
}

// upsertNodes writes nodes with write_seq values above the previous maximum,
// which it returns.
func upsertNodes(ctx context.Context, tx *sql.Tx, nodes []topology.NodeInfo) (int64, error) {
	var maxSeq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(write_seq), 0) FROM nodes`).Scan(&maxSeq); err != nil {
		return 0, fmt.Errorf("failed to read write sequence: %w", err)
	}
	if len(nodes) == 0 {
		return maxSeq, nil
	}
	base := maxSeq + int64(len(nodes))

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (id, type, type_description, name, device_type, write_seq, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			type_description = excluded.type_description,
			name = excluded.name,
			device_type = excluded.device_type,
			write_seq = excluded.write_seq,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare node upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, n := range nodes {
		desc := n.TypeDescription
		if desc == "" {
			desc = n.Type.Description()
		}
		if _, err := stmt.ExecContext(ctx, n.ID, int(n.Type), desc, n.Name, n.DeviceType.String(), base-int64(i)); err != nil {
			return 0, fmt.Errorf("failed to save node %d: %w", n.ID, err)
		}
	}
	return maxSeq, nil
}

func (s *nodeStore) ListNodes(ctx context.Context) ([]topology.NodeInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, type_description, name, device_type
		FROM nodes ORDER BY write_seq DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var nodes []topology.NodeInfo
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *n)
	}
	return nodes, rows.Err()
}

func (s *nodeStore) GetNode(ctx context.Context, id int64) (*topology.NodeInfo, error) {
	n, err := scanNode(s.db.QueryRowContext(ctx, `
		SELECT id, type, type_description, name, device_type
		FROM nodes WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNodeNotFound
	}
	return n, err
}

func (s *nodeStore) ClearNodes(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM nodes`)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*topology.NodeInfo, error) {
	n := &topology.NodeInfo{}
	var nodeType int
	var deviceType string
	if err := row.Scan(&n.ID, &nodeType, &n.TypeDescription, &n.Name, &deviceType); err != nil {
		return nil, err
	}
	n.Type = topology.NodeType(nodeType)
	n.DeviceType = topology.ParseDeviceType(deviceType)
	return n, nil
}
