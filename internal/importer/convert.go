package importer

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/mediasheet/internal/domain"
)

// Snapshot is a converted campaign snapshot ready for persistence.
type Snapshot struct {
	Client      domain.ClientInfo
	Campaign    domain.Campaign
	Ref         domain.VersionRef
	VersionName string
	Hierarchy   *domain.Hierarchy
	Shortcodes  []domain.Shortcode
	Templates   []domain.Template
	Documents   []domain.Document
}

// Convert transforms a validated SnapshotSchema into domain objects ready for
// persistence. Call ValidateSnapshotSchema first; Convert assumes the schema
// is valid.
func Convert(schema *SnapshotSchema) (*Snapshot, error) {
	now := time.Now().UTC()

	lang := domain.LanguageFR
	if schema.Client.ExportLanguage != "" {
		l, err := domain.ParseLanguage(schema.Client.ExportLanguage)
		if err != nil {
			return nil, fmt.Errorf("parsing client language: %w", err)
		}
		lang = l
	}

	versionID := schema.Version.ID
	if versionID == "" {
		versionID = uuid.New().String()
	}

	snap := &Snapshot{
		Client: domain.ClientInfo{
			ID:             schema.Client.ID,
			Name:           schema.Client.Name,
			ExportLanguage: lang,
		},
		Campaign: domain.Campaign{
			ID:     schema.Campaign.ID,
			Name:   schema.Campaign.Name,
			Fields: cloneFields(schema.Campaign.Fields),
		},
		Ref: domain.VersionRef{
			ClientID:   schema.Client.ID,
			CampaignID: schema.Campaign.ID,
			VersionID:  versionID,
		},
		VersionName: schema.Version.Name,
		Hierarchy:   domain.NewHierarchy(),
	}

	for _, b := range schema.Breakdowns {
		bt, err := domain.ParseBreakdownType(b.Type)
		if err != nil {
			return nil, fmt.Errorf("breakdown %q: %w", b.ID, err)
		}
		snap.Hierarchy.BreakdownDefinitions[b.ID] = domain.BreakdownDefinition{
			ID: b.ID, Name: b.Name, Type: bt, Order: b.Order,
		}
	}

	convertTree(snap.Hierarchy, schema.Tabs)

	for _, s := range schema.Shortcodes {
		snap.Shortcodes = append(snap.Shortcodes, domain.Shortcode{
			ID:            s.ID,
			Code:          strings.TrimSpace(s.Code),
			DisplayNameFR: s.DisplayNameFR,
			DisplayNameEN: s.DisplayNameEN,
		})
	}

	for _, t := range schema.Templates {
		var tl domain.Language
		if t.Language != "" {
			l, err := domain.ParseLanguage(t.Language)
			if err != nil {
				return nil, fmt.Errorf("template %q: %w", t.ID, err)
			}
			tl = l
		}
		snap.Templates = append(snap.Templates, domain.Template{
			ID: t.ID, Name: t.Name, DuplicateTabs: t.DuplicateTabs, Language: tl,
		})
	}

	for _, d := range schema.Documents {
		id := d.ID
		if id == "" {
			id = uuid.New().String()
		}
		snap.Documents = append(snap.Documents, domain.Document{
			ID:            id,
			Name:          d.Name,
			SpreadsheetID: d.SpreadsheetID,
			TemplateID:    d.TemplateID,
			Status:        domain.DocumentCreating,
			UpdatedAt:     now,
		})
	}

	return snap, nil
}

func convertTree(h *domain.Hierarchy, tabs []TabImport) {
	for _, t := range tabs {
		h.Tabs = append(h.Tabs, domain.Tab{Entity: toEntity(t.EntityImport)})
		for _, s := range t.Sections {
			h.Sections[t.ID] = append(h.Sections[t.ID], domain.Section{
				Entity: toEntity(s.EntityImport), TabID: t.ID,
			})
			for _, tc := range s.Tactics {
				h.Tactics[s.ID] = append(h.Tactics[s.ID], domain.Tactic{
					Entity:     toEntity(tc.EntityImport),
					TabID:      t.ID,
					SectionID:  s.ID,
					Breakdowns: toBreakdowns(tc.Breakdowns),
				})
				for _, p := range tc.Placements {
					h.Placements[tc.ID] = append(h.Placements[tc.ID], domain.Placement{
						Entity: toEntity(p.EntityImport), TabID: t.ID, SectionID: s.ID, TacticID: tc.ID,
					})
					for _, c := range p.Creatives {
						h.Creatives[p.ID] = append(h.Creatives[p.ID], domain.Creative{
							Entity: toEntity(c), TabID: t.ID, SectionID: s.ID, TacticID: tc.ID, PlacementID: p.ID,
						})
					}
				}
			}
		}
	}
}

func toEntity(e EntityImport) domain.Entity {
	return domain.Entity{ID: e.ID, Name: e.Name, Order: e.Order, Fields: cloneFields(e.Fields)}
}

func toBreakdowns(raw map[string][]PeriodImport) map[string]domain.BreakdownData {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]domain.BreakdownData, len(raw))
	for id, periods := range raw {
		data := domain.BreakdownData{Periods: make([]domain.PeriodValue, 0, len(periods))}
		for _, p := range periods {
			data.Periods = append(data.Periods, domain.PeriodValue{
				ID:         p.ID,
				StoredDate: p.Date,
				CustomName: p.CustomName,
				Order:      p.Order,
				Value:      p.Value,
				UnitCost:   p.UnitCost,
				Total:      p.Total,
				IsToggled:  p.IsToggled,
			})
		}
		out[id] = data
	}
	return out
}

func cloneFields(f map[string]any) map[string]any {
	if f == nil {
		return map[string]any{}
	}
	return maps.Clone(f)
}
