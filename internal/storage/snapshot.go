package storage

import (
	"encoding/json"
	"fmt"

	"sitebuilder/internal/domain"
)

// SnapshotStore implements domain.SnapshotStore on a SQL database.
type SnapshotStore struct {
	db *DB
}

func NewSnapshotStore(db *DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// SaveSnapshot atomically replaces every component and the selection of a
// page with the snapshot contents.
func (s *SnapshotStore) SaveSnapshot(pageID string, snap domain.Snapshot) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(s.db.rebind(`DELETE FROM components WHERE page_id = ?`), pageID); err != nil {
		return fmt.Errorf("delete components: %w", err)
	}
	if _, err := tx.Exec(s.db.rebind(`DELETE FROM selections WHERE page_id = ?`), pageID); err != nil {
		return fmt.Errorf("delete selection: %w", err)
	}

	insert := s.db.rebind(
		`INSERT INTO components (page_id, id, parent_id, type, sort_order, props_json) VALUES (?, ?, ?, ?, ?, ?)`)
	for _, c := range snap.Components {
		props, err := json.Marshal(c.Props)
		if err != nil {
			return fmt.Errorf("marshal props of %s: %w", c.ID, err)
		}
		if _, err := tx.Exec(insert, pageID, c.ID, c.ParentID, string(c.Type), c.Order, string(props)); err != nil {
			return fmt.Errorf("insert component %s: %w", c.ID, err)
		}
	}

	if _, err := tx.Exec(s.db.rebind(`INSERT INTO selections (page_id, selected_id) VALUES (?, ?)`), pageID, snap.SelectedID); err != nil {
		return fmt.Errorf("insert selection: %w", err)
	}

	return tx.Commit()
}

// LoadSnapshot returns the persisted state of a page. A page that was never
// saved yields an empty snapshot.
func (s *SnapshotStore) LoadSnapshot(pageID string) (domain.Snapshot, error) {
	snap := domain.Snapshot{Components: []domain.Component{}}

	rows, err := s.db.conn.Query(s.db.rebind(
		`SELECT id, parent_id, type, sort_order, props_json FROM components WHERE page_id = ? ORDER BY parent_id ASC, sort_order ASC`),
		pageID,
	)
	if err != nil {
		return snap, fmt.Errorf("load components: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c         domain.Component
			propsJSON string
		)
		if err := rows.Scan(&c.ID, &c.ParentID, &c.Type, &c.Order, &propsJSON); err != nil {
			return snap, fmt.Errorf("scan component: %w", err)
		}
		if err := json.Unmarshal([]byte(propsJSON), &c.Props); err != nil {
			return snap, fmt.Errorf("decode props of %s: %w", c.ID, err)
		}
		snap.Components = append(snap.Components, c)
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	var selected string
	err = s.db.conn.QueryRow(s.db.rebind(`SELECT selected_id FROM selections WHERE page_id = ?`), pageID).Scan(&selected)
	if err == nil {
		snap.SelectedID = selected
	}
	return snap, nil
}

// DeleteSnapshot removes a page's components and selection.
func (s *SnapshotStore) DeleteSnapshot(pageID string) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(s.db.rebind(`DELETE FROM components WHERE page_id = ?`), pageID); err != nil {
		return fmt.Errorf("delete components: %w", err)
	}
	if _, err := tx.Exec(s.db.rebind(`DELETE FROM selections WHERE page_id = ?`), pageID); err != nil {
		return fmt.Errorf("delete selection: %w", err)
	}
	return tx.Commit()
}
