package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/mediasheet/internal/db"
	"github.com/alexanderramin/mediasheet/internal/domain"
)

// SQLiteShortcodeRepo implements ShortcodeReader using a SQLite database.
type SQLiteShortcodeRepo struct {
	db db.DBTX
}

// NewSQLiteShortcodeRepo creates a new SQLiteShortcodeRepo.
func NewSQLiteShortcodeRepo(conn db.DBTX) *SQLiteShortcodeRepo {
	return &SQLiteShortcodeRepo{db: conn}
}

// Upsert inserts a shortcode or replaces the labels of an existing one.
func (r *SQLiteShortcodeRepo) Upsert(ctx context.Context, s domain.Shortcode) error {
	query := `INSERT INTO shortcodes (id, code, display_name_fr, display_name_en)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			code = excluded.code,
			display_name_fr = excluded.display_name_fr,
			display_name_en = excluded.display_name_en`
	if _, err := r.db.ExecContext(ctx, query, s.ID, s.Code, s.DisplayNameFR, s.DisplayNameEN); err != nil {
		return fmt.Errorf("upserting shortcode %s: %w", s.ID, err)
	}
	return nil
}

func (r *SQLiteShortcodeRepo) ListShortcodes(ctx context.Context) ([]domain.Shortcode, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, code, display_name_fr, display_name_en FROM shortcodes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing shortcodes: %w", err)
	}
	defer rows.Close()

	var out []domain.Shortcode
	for rows.Next() {
		var s domain.Shortcode
		if err := rows.Scan(&s.ID, &s.Code, &s.DisplayNameFR, &s.DisplayNameEN); err != nil {
			return nil, fmt.Errorf("scanning shortcode: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
