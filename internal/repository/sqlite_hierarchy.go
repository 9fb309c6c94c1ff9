package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/mediasheet/internal/db"
	"github.com/alexanderramin/mediasheet/internal/domain"
)

// entityColumns is the canonical SELECT column list shared by all five
// hierarchy tables.
const entityColumns = `id, name, order_index, fields_json`

// SQLiteHierarchyRepo implements HierarchyReader over the local store and
// provides the inserts used by the snapshot importer.
type SQLiteHierarchyRepo struct {
	db db.DBTX
}

// NewSQLiteHierarchyRepo creates a new SQLiteHierarchyRepo.
func NewSQLiteHierarchyRepo(conn db.DBTX) *SQLiteHierarchyRepo {
	return &SQLiteHierarchyRepo{db: conn}
}

func (r *SQLiteHierarchyRepo) ListTabs(ctx context.Context, ref domain.VersionRef) ([]domain.Tab, error) {
	query := `SELECT t.id, t.name, t.order_index, t.fields_json FROM tabs t
		JOIN campaign_versions v ON v.id = t.version_id
		JOIN campaigns c ON c.id = v.campaign_id
		WHERE t.version_id = ? AND v.campaign_id = ? AND c.client_id = ?`
	entities, err := r.listEntities(ctx, query, ref.VersionID, ref.CampaignID, ref.ClientID)
	if err != nil {
		return nil, fmt.Errorf("listing tabs: %w", err)
	}
	tabs := make([]domain.Tab, 0, len(entities))
	for _, e := range entities {
		tabs = append(tabs, domain.Tab{Entity: e})
	}
	return tabs, nil
}

func (r *SQLiteHierarchyRepo) ListSections(ctx context.Context, _ domain.VersionRef, tabID string) ([]domain.Section, error) {
	query := `SELECT ` + entityColumns + ` FROM sections WHERE tab_id = ?`
	entities, err := r.listEntities(ctx, query, tabID)
	if err != nil {
		return nil, fmt.Errorf("listing sections of tab %s: %w", tabID, err)
	}
	sections := make([]domain.Section, 0, len(entities))
	for _, e := range entities {
		sections = append(sections, domain.Section{Entity: e, TabID: tabID})
	}
	return sections, nil
}

func (r *SQLiteHierarchyRepo) ListTactics(ctx context.Context, _ domain.VersionRef, tabID, sectionID string) ([]domain.Tactic, error) {
	query := `SELECT ` + entityColumns + ` FROM tactics WHERE section_id = ?`
	entities, err := r.listEntities(ctx, query, sectionID)
	if err != nil {
		return nil, fmt.Errorf("listing tactics of section %s: %w", sectionID, err)
	}
	breakdowns, err := r.breakdownsBySection(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	tactics := make([]domain.Tactic, 0, len(entities))
	for _, e := range entities {
		tactics = append(tactics, domain.Tactic{
			Entity:     e,
			TabID:      tabID,
			SectionID:  sectionID,
			Breakdowns: breakdowns[e.ID],
		})
	}
	return tactics, nil
}

func (r *SQLiteHierarchyRepo) ListPlacements(ctx context.Context, _ domain.VersionRef, tabID, sectionID, tacticID string) ([]domain.Placement, error) {
	query := `SELECT ` + entityColumns + ` FROM placements WHERE tactic_id = ?`
	entities, err := r.listEntities(ctx, query, tacticID)
	if err != nil {
		return nil, fmt.Errorf("listing placements of tactic %s: %w", tacticID, err)
	}
	placements := make([]domain.Placement, 0, len(entities))
	for _, e := range entities {
		placements = append(placements, domain.Placement{Entity: e, TabID: tabID, SectionID: sectionID, TacticID: tacticID})
	}
	return placements, nil
}

func (r *SQLiteHierarchyRepo) ListCreatives(ctx context.Context, _ domain.VersionRef, tabID, sectionID, tacticID, placementID string) ([]domain.Creative, error) {
	query := `SELECT ` + entityColumns + ` FROM creatives WHERE placement_id = ?`
	entities, err := r.listEntities(ctx, query, placementID)
	if err != nil {
		return nil, fmt.Errorf("listing creatives of placement %s: %w", placementID, err)
	}
	creatives := make([]domain.Creative, 0, len(entities))
	for _, e := range entities {
		creatives = append(creatives, domain.Creative{
			Entity: e, TabID: tabID, SectionID: sectionID, TacticID: tacticID, PlacementID: placementID,
		})
	}
	return creatives, nil
}

// breakdownsBySection loads the stored periods of every tactic in a section,
// grouped by tactic id and then breakdown id.
func (r *SQLiteHierarchyRepo) breakdownsBySection(ctx context.Context, sectionID string) (map[string]map[string]domain.BreakdownData, error) {
	query := `SELECT p.tactic_id, p.breakdown_id, p.period_id, p.stored_date, p.custom_name,
		p.order_index, p.value, p.unit_cost, p.total, p.is_toggled
		FROM tactic_breakdown_periods p
		JOIN tactics t ON t.id = p.tactic_id
		WHERE t.section_id = ?
		ORDER BY p.tactic_id, p.breakdown_id, p.order_index, p.period_id`
	rows, err := r.db.QueryContext(ctx, query, sectionID)
	if err != nil {
		return nil, fmt.Errorf("listing breakdown periods of section %s: %w", sectionID, err)
	}
	defer rows.Close()

	out := make(map[string]map[string]domain.BreakdownData)
	for rows.Next() {
		var tacticID, breakdownID string
		var p domain.PeriodValue
		var toggled int
		if err := rows.Scan(&tacticID, &breakdownID, &p.ID, &p.StoredDate, &p.CustomName,
			&p.Order, &p.Value, &p.UnitCost, &p.Total, &toggled); err != nil {
			return nil, fmt.Errorf("scanning breakdown period: %w", err)
		}
		p.IsToggled = intToBool(toggled)
		byBreakdown, ok := out[tacticID]
		if !ok {
			byBreakdown = make(map[string]domain.BreakdownData)
			out[tacticID] = byBreakdown
		}
		data := byBreakdown[breakdownID]
		data.Periods = append(data.Periods, p)
		byBreakdown[breakdownID] = data
	}
	return out, rows.Err()
}

func (r *SQLiteHierarchyRepo) listEntities(ctx context.Context, query string, args ...any) ([]domain.Entity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Entity
	for rows.Next() {
		var e domain.Entity
		var fieldsJSON string
		if err := rows.Scan(&e.ID, &e.Name, &e.Order, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		fields, err := decodeFields(fieldsJSON)
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", e.ID, err)
		}
		e.Fields = fields
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteHierarchyRepo) CreateTab(ctx context.Context, versionID string, t domain.Tab) error {
	return r.insertEntity(ctx, "tabs", "version_id", versionID, t.Entity)
}

func (r *SQLiteHierarchyRepo) CreateSection(ctx context.Context, s domain.Section) error {
	return r.insertEntity(ctx, "sections", "tab_id", s.TabID, s.Entity)
}

// CreateTactic inserts the tactic and all of its stored breakdown periods.
func (r *SQLiteHierarchyRepo) CreateTactic(ctx context.Context, t domain.Tactic) error {
	if err := r.insertEntity(ctx, "tactics", "section_id", t.SectionID, t.Entity); err != nil {
		return err
	}
	query := `INSERT INTO tactic_breakdown_periods (tactic_id, breakdown_id, period_id,
		stored_date, custom_name, order_index, value, unit_cost, total, is_toggled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for breakdownID, data := range t.Breakdowns {
		for _, p := range data.Periods {
			_, err := r.db.ExecContext(ctx, query,
				t.ID, breakdownID, p.ID,
				p.StoredDate, p.CustomName, p.Order,
				p.Value, p.UnitCost, p.Total, boolToInt(p.IsToggled),
			)
			if err != nil {
				return fmt.Errorf("inserting period %s of breakdown %s: %w", p.ID, breakdownID, err)
			}
		}
	}
	return nil
}

func (r *SQLiteHierarchyRepo) CreatePlacement(ctx context.Context, p domain.Placement) error {
	return r.insertEntity(ctx, "placements", "tactic_id", p.TacticID, p.Entity)
}

func (r *SQLiteHierarchyRepo) CreateCreative(ctx context.Context, c domain.Creative) error {
	return r.insertEntity(ctx, "creatives", "placement_id", c.PlacementID, c.Entity)
}

// insertEntity writes one hierarchy row. table and parentColumn are always
// package constants, never user input.
func (r *SQLiteHierarchyRepo) insertEntity(ctx context.Context, table, parentColumn, parentID string, e domain.Entity) error {
	fields, err := encodeFields(e.Fields)
	if err != nil {
		return err
	}
	query := `INSERT INTO ` + table + ` (id, ` + parentColumn + `, name, order_index, fields_json)
		VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, e.ID, parentID, e.Name, e.Order, fields); err != nil {
		return fmt.Errorf("inserting into %s: %w", table, err)
	}
	return nil
}
