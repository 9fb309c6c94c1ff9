package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/mediasheet/internal/db"
	"github.com/alexanderramin/mediasheet/internal/domain"
)

// SQLiteCampaignRepo serves campaign-level records: clients, campaigns,
// versions, breakdown definitions and templates.
type SQLiteCampaignRepo struct {
	db db.DBTX
}

// NewSQLiteCampaignRepo creates a new SQLiteCampaignRepo.
func NewSQLiteCampaignRepo(conn db.DBTX) *SQLiteCampaignRepo {
	return &SQLiteCampaignRepo{db: conn}
}

func (r *SQLiteCampaignRepo) CreateClient(ctx context.Context, c domain.ClientInfo) error {
	lang := domain.CoalesceLanguage(c.ExportLanguage)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (id, name, export_language) VALUES (?, ?, ?)`,
		c.ID, c.Name, string(lang))
	if err != nil {
		return fmt.Errorf("inserting client: %w", err)
	}
	return nil
}

func (r *SQLiteCampaignRepo) GetClientInfo(ctx context.Context, clientID string) (*domain.ClientInfo, error) {
	var c domain.ClientInfo
	var lang string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, export_language FROM clients WHERE id = ?`, clientID,
	).Scan(&c.ID, &c.Name, &lang)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("client %s: %w", clientID, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning client: %w", err)
	}
	c.ExportLanguage = domain.Language(lang)
	return &c, nil
}

func (r *SQLiteCampaignRepo) CreateCampaign(ctx context.Context, clientID string, c domain.Campaign) error {
	fields, err := encodeFields(c.Fields)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO campaigns (id, client_id, name, fields_json) VALUES (?, ?, ?, ?)`,
		c.ID, clientID, c.Name, fields)
	if err != nil {
		return fmt.Errorf("inserting campaign: %w", err)
	}
	return nil
}

func (r *SQLiteCampaignRepo) GetCampaign(ctx context.Context, clientID, campaignID string) (*domain.Campaign, error) {
	var c domain.Campaign
	var fieldsJSON string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, fields_json FROM campaigns WHERE id = ? AND client_id = ?`,
		campaignID, clientID,
	).Scan(&c.ID, &c.Name, &fieldsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("campaign %s: %w", campaignID, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning campaign: %w", err)
	}
	if c.Fields, err = decodeFields(fieldsJSON); err != nil {
		return nil, fmt.Errorf("campaign %s: %w", campaignID, err)
	}
	return &c, nil
}

func (r *SQLiteCampaignRepo) CreateVersion(ctx context.Context, campaignID, versionID, name string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO campaign_versions (id, campaign_id, name) VALUES (?, ?, ?)`,
		versionID, campaignID, name)
	if err != nil {
		return fmt.Errorf("inserting campaign version: %w", err)
	}
	return nil
}

func (r *SQLiteCampaignRepo) CreateBreakdownDefinition(ctx context.Context, campaignID string, b domain.BreakdownDefinition) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO breakdown_definitions (id, campaign_id, name, type, order_index) VALUES (?, ?, ?, ?, ?)`,
		b.ID, campaignID, b.Name, string(b.Type), b.Order)
	if err != nil {
		return fmt.Errorf("inserting breakdown definition: %w", err)
	}
	return nil
}

func (r *SQLiteCampaignRepo) ListBreakdownDefinitions(ctx context.Context, clientID, campaignID string) ([]domain.BreakdownDefinition, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.name, b.type, b.order_index FROM breakdown_definitions b
		JOIN campaigns c ON c.id = b.campaign_id
		WHERE b.campaign_id = ? AND c.client_id = ?
		ORDER BY b.order_index`,
		campaignID, clientID)
	if err != nil {
		return nil, fmt.Errorf("listing breakdown definitions: %w", err)
	}
	defer rows.Close()

	var out []domain.BreakdownDefinition
	for rows.Next() {
		var b domain.BreakdownDefinition
		var typ string
		if err := rows.Scan(&b.ID, &b.Name, &typ, &b.Order); err != nil {
			return nil, fmt.Errorf("scanning breakdown definition: %w", err)
		}
		b.Type = domain.BreakdownType(typ)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteCampaignRepo) CreateTemplate(ctx context.Context, clientID string, t domain.Template) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO templates (id, client_id, name, duplicate_tabs, language) VALUES (?, ?, ?, ?, ?)`,
		t.ID, clientID, t.Name, boolToInt(t.DuplicateTabs), string(t.Language))
	if err != nil {
		return fmt.Errorf("inserting template: %w", err)
	}
	return nil
}

func (r *SQLiteCampaignRepo) GetTemplate(ctx context.Context, clientID, templateID string) (*domain.Template, error) {
	var t domain.Template
	var dup int
	var lang string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, duplicate_tabs, language FROM templates WHERE id = ? AND client_id = ?`,
		templateID, clientID,
	).Scan(&t.ID, &t.Name, &dup, &lang)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("template %s: %w", templateID, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning template: %w", err)
	}
	t.DuplicateTabs = intToBool(dup)
	t.Language = domain.Language(lang)
	return &t, nil
}
