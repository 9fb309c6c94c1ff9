package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/mediasheet/internal/db"
	"github.com/alexanderramin/mediasheet/internal/domain"
)

const documentColumns = `id, name, spreadsheet_id, template_id, status, status_message,
		last_data_sync_at, last_data_sync_by, updated_at`

// SQLiteDocumentRepo implements DocumentRepo using a SQLite database.
type SQLiteDocumentRepo struct {
	db db.DBTX
}

// NewSQLiteDocumentRepo creates a new SQLiteDocumentRepo.
func NewSQLiteDocumentRepo(conn db.DBTX) *SQLiteDocumentRepo {
	return &SQLiteDocumentRepo{db: conn}
}

func (r *SQLiteDocumentRepo) Create(ctx context.Context, versionID string, d *domain.Document) error {
	if d.Status == "" {
		d.Status = domain.DocumentCreating
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = time.Now().UTC()
	}
	var syncAt any
	if d.LastDataSyncAt != nil {
		syncAt = d.LastDataSyncAt.UTC().Format(time.RFC3339)
	}
	query := `INSERT INTO documents (id, version_id, name, spreadsheet_id, template_id, status,
		status_message, last_data_sync_at, last_data_sync_by, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		d.ID, versionID, d.Name, d.SpreadsheetID, d.TemplateID, string(d.Status),
		d.StatusMessage, syncAt, d.LastDataSyncBy, d.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

func (r *SQLiteDocumentRepo) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return d, nil
}

func (r *SQLiteDocumentRepo) ListByVersion(ctx context.Context, ref domain.VersionRef) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE version_id = ? ORDER BY updated_at`,
		ref.VersionID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *SQLiteDocumentRepo) UpdateStatus(ctx context.Context, ref domain.VersionRef, documentID string, status domain.DocumentStatus, message string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET status = ?, status_message = ?, updated_at = ? WHERE id = ? AND version_id = ?`,
		string(status), message, nowUTC(), documentID, ref.VersionID)
	if err != nil {
		return fmt.Errorf("updating document status: %w", err)
	}
	return requireAffected(res, "document "+documentID)
}

func (r *SQLiteDocumentRepo) RecordDataSync(ctx context.Context, ref domain.VersionRef, documentID string, at time.Time, actor string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET last_data_sync_at = ?, last_data_sync_by = ?, updated_at = ? WHERE id = ? AND version_id = ?`,
		at.UTC().Format(time.RFC3339), actor, nowUTC(), documentID, ref.VersionID)
	if err != nil {
		return fmt.Errorf("recording data sync: %w", err)
	}
	return requireAffected(res, "document "+documentID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var d domain.Document
	var status, updatedAt string
	var syncAt sql.NullString
	err := row.Scan(&d.ID, &d.Name, &d.SpreadsheetID, &d.TemplateID, &status, &d.StatusMessage,
		&syncAt, &d.LastDataSyncBy, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	d.Status = domain.DocumentStatus(status)
	d.LastDataSyncAt = parseNullableTime(syncAt, time.RFC3339)
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		d.UpdatedAt = t
	}
	return &d, nil
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
