package importer

import (
	"fmt"
	"time"

	"github.com/alexanderramin/mediasheet/internal/domain"
)

// ValidateSnapshotSchema checks the snapshot for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateSnapshotSchema(schema *SnapshotSchema) []error {
	var errs []error

	errs = append(errs, validateClient(&schema.Client)...)
	if schema.Campaign.ID == "" {
		errs = append(errs, fmt.Errorf("campaign.id is required"))
	}
	if schema.Campaign.Name == "" {
		errs = append(errs, fmt.Errorf("campaign.name is required"))
	}

	breakdowns := make(map[string]domain.BreakdownType)
	errs = append(errs, validateBreakdowns(schema.Breakdowns, breakdowns)...)

	v := &treeValidator{breakdowns: breakdowns, seen: make(map[string]map[string]bool)}
	for i, tab := range schema.Tabs {
		v.tab(fmt.Sprintf("tabs[%d]", i), tab)
	}
	errs = append(errs, v.errs...)

	templates := make(map[string]bool)
	errs = append(errs, validateTemplates(schema.Templates, templates)...)
	errs = append(errs, validateDocuments(schema.Documents, templates)...)
	errs = append(errs, validateShortcodes(schema.Shortcodes)...)

	return errs
}

func validateClient(c *ClientImport) []error {
	var errs []error
	if c.ID == "" {
		errs = append(errs, fmt.Errorf("client.id is required"))
	}
	if c.ExportLanguage != "" {
		if _, err := domain.ParseLanguage(c.ExportLanguage); err != nil {
			errs = append(errs, fmt.Errorf("client.export_language: %w", err))
		}
	}
	return errs
}

func validateBreakdowns(defs []BreakdownImport, types map[string]domain.BreakdownType) []error {
	var errs []error
	for i, b := range defs {
		prefix := fmt.Sprintf("breakdowns[%d]", i)
		bt, err := domain.ParseBreakdownType(b.Type)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s.type: %w", prefix, err))
		}
		if b.ID == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", prefix))
		} else if _, dup := types[b.ID]; dup {
			errs = append(errs, fmt.Errorf("%s.id: duplicate id %q", prefix, b.ID))
		} else {
			types[b.ID] = bt
		}
	}
	return errs
}

// treeValidator walks the nested tabs tree. Ids must be unique per level.
type treeValidator struct {
	breakdowns map[string]domain.BreakdownType
	seen       map[string]map[string]bool
	errs       []error
}

func (v *treeValidator) entity(level domain.Level, prefix string, e EntityImport) {
	if v.seen[string(level)] == nil {
		v.seen[string(level)] = make(map[string]bool)
	}
	if e.ID == "" {
		v.errs = append(v.errs, fmt.Errorf("%s.id is required", prefix))
	} else if v.seen[string(level)][e.ID] {
		v.errs = append(v.errs, fmt.Errorf("%s.id: duplicate %s id %q", prefix, level, e.ID))
	} else {
		v.seen[string(level)][e.ID] = true
	}
	if e.Name == "" {
		v.errs = append(v.errs, fmt.Errorf("%s.name is required", prefix))
	}
}

func (v *treeValidator) tab(prefix string, t TabImport) {
	v.entity(domain.LevelTab, prefix, t.EntityImport)
	for i, s := range t.Sections {
		sp := fmt.Sprintf("%s.sections[%d]", prefix, i)
		v.entity(domain.LevelSection, sp, s.EntityImport)
		for j, tc := range s.Tactics {
			v.tactic(fmt.Sprintf("%s.tactics[%d]", sp, j), tc)
		}
	}
}

func (v *treeValidator) tactic(prefix string, t TacticImport) {
	v.entity(domain.LevelTactic, prefix, t.EntityImport)
	for id, periods := range t.Breakdowns {
		bt, ok := v.breakdowns[id]
		if !ok {
			v.errs = append(v.errs, fmt.Errorf("%s.breakdowns: definition %q not found in breakdowns", prefix, id))
			continue
		}
		seen := make(map[string]bool)
		for k, p := range periods {
			pp := fmt.Sprintf("%s.breakdowns[%s][%d]", prefix, id, k)
			if p.ID == "" {
				v.errs = append(v.errs, fmt.Errorf("%s.id is required", pp))
			} else if seen[p.ID] {
				v.errs = append(v.errs, fmt.Errorf("%s.id: duplicate period %q", pp, p.ID))
			}
			seen[p.ID] = true
			if bt.IsAutomatic() {
				v.errs = append(v.errs, validatePeriodDate(pp+".date", p.Date)...)
			}
		}
	}
	for i, p := range t.Placements {
		pp := fmt.Sprintf("%s.placements[%d]", prefix, i)
		v.entity(domain.LevelPlacement, pp, p.EntityImport)
		for j, c := range p.Creatives {
			v.entity(domain.LevelCreative, fmt.Sprintf("%s.creatives[%d]", pp, j), c)
		}
	}
}

// validatePeriodDate accepts the stored date shapes the breakdown flattener
// parses. An empty date is allowed: the period exports without a start date.
func validatePeriodDate(field, s string) []error {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if _, err := time.Parse(layout, s); err == nil {
			return nil
		}
	}
	return []error{fmt.Errorf("%s: invalid date format %q (expected YYYY-MM-DD or RFC 3339)", field, s)}
}

func validateTemplates(templates []TemplateImport, ids map[string]bool) []error {
	var errs []error
	for i, t := range templates {
		prefix := fmt.Sprintf("templates[%d]", i)
		if t.ID == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", prefix))
		} else if ids[t.ID] {
			errs = append(errs, fmt.Errorf("%s.id: duplicate id %q", prefix, t.ID))
		}
		ids[t.ID] = true
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if t.Language != "" {
			if _, err := domain.ParseLanguage(t.Language); err != nil {
				errs = append(errs, fmt.Errorf("%s.language: %w", prefix, err))
			}
		}
	}
	return errs
}

func validateDocuments(docs []DocumentImport, templates map[string]bool) []error {
	var errs []error
	spreadsheets := make(map[string]bool)
	for i, d := range docs {
		prefix := fmt.Sprintf("documents[%d]", i)
		if d.SpreadsheetID == "" {
			errs = append(errs, fmt.Errorf("%s.spreadsheet_id is required", prefix))
		} else if spreadsheets[d.SpreadsheetID] {
			errs = append(errs, fmt.Errorf("%s.spreadsheet_id: %q is already attached to this version", prefix, d.SpreadsheetID))
		}
		spreadsheets[d.SpreadsheetID] = true
		if d.TemplateID != "" && !templates[d.TemplateID] {
			errs = append(errs, fmt.Errorf("%s.template_id: template %q not found in templates", prefix, d.TemplateID))
		}
	}
	return errs
}

func validateShortcodes(codes []ShortcodeImport) []error {
	var errs []error
	ids := make(map[string]bool)
	for i, s := range codes {
		prefix := fmt.Sprintf("shortcodes[%d]", i)
		if s.ID == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", prefix))
		} else if ids[s.ID] {
			errs = append(errs, fmt.Errorf("%s.id: duplicate id %q", prefix, s.ID))
		}
		ids[s.ID] = true
		if s.DisplayNameFR == "" {
			errs = append(errs, fmt.Errorf("%s.display_name_fr is required", prefix))
		}
	}
	return errs
}
