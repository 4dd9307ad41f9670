package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sitebuilder/internal/domain"
)

// PageStore implements domain.PageStore on a SQL database.
type PageStore struct {
	db *DB
}

func NewPageStore(db *DB) *PageStore {
	return &PageStore{db: db}
}

// sqlNow is the current time at the precision postgres and mysql store, so
// a page's UpdatedAt compares equal to the value read back.
func sqlNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (s *PageStore) CreatePage(p *domain.Page) error {
	now := sqlNow()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := s.db.conn.Exec(s.db.rebind(
		`INSERT INTO pages (id, name, slug, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`),
		p.ID, p.Name, p.Slug, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert page: %w", err)
	}
	return nil
}

func (s *PageStore) GetPage(id string) (*domain.Page, error) {
	p := &domain.Page{}
	err := s.db.conn.QueryRow(s.db.rebind(
		`SELECT id, name, slug, created_at, updated_at FROM pages WHERE id = ?`), id,
	).Scan(&p.ID, &p.Name, &p.Slug, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get page %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	return p, nil
}

func (s *PageStore) ListPages() ([]domain.Page, error) {
	rows, err := s.db.conn.Query(`SELECT id, name, slug, created_at, updated_at FROM pages ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []domain.Page
	for rows.Next() {
		var p domain.Page
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (s *PageStore) UpdatePage(p *domain.Page) error {
	p.UpdatedAt = sqlNow()
	res, err := s.db.conn.Exec(s.db.rebind(
		`UPDATE pages SET name = ?, slug = ?, updated_at = ? WHERE id = ?`),
		p.Name, p.Slug, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update page %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

// DeletePage removes the page together with its components and selection.
func (s *PageStore) DeletePage(id string) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM components WHERE page_id = ?`,
		`DELETE FROM selections WHERE page_id = ?`,
		`DELETE FROM pages WHERE id = ?`,
	} {
		if _, err := tx.Exec(s.db.rebind(q), id); err != nil {
			return fmt.Errorf("delete page: %w", err)
		}
	}
	return tx.Commit()
}
