package export

import (
	"context"
	"fmt"

	"github.com/alexanderramin/mediasheet/internal/domain"
	"github.com/alexanderramin/mediasheet/internal/repository"
)

// Fetcher reads a complete hierarchy snapshot of one campaign version.
type Fetcher struct {
	hierarchy  repository.HierarchyReader
	breakdowns repository.BreakdownReader
}

func NewFetcher(hierarchy repository.HierarchyReader, breakdowns repository.BreakdownReader) *Fetcher {
	return &Fetcher{hierarchy: hierarchy, breakdowns: breakdowns}
}

// Fetch walks the version level by level, one read at a time. Ancestor ids
// are carried down the traversal and stamped on every child. Any read
// failure aborts the fetch; a partial hierarchy is never returned.
func (f *Fetcher) Fetch(ctx context.Context, ref domain.VersionRef) (*domain.Hierarchy, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	h := domain.NewHierarchy()
	seen := make(map[domain.Level]map[string]struct{}, len(domain.Levels))
	for _, lv := range domain.Levels {
		seen[lv] = map[string]struct{}{}
	}
	claim := func(level domain.Level, id, parentID string) error {
		if id == "" {
			return fmt.Errorf("%w: %s under %q has no id", ErrIntegrity, level, parentID)
		}
		if _, dup := seen[level][id]; dup {
			return fmt.Errorf("%w: %s %s appears more than once", ErrIntegrity, level, id)
		}
		seen[level][id] = struct{}{}
		return nil
	}

	tabs, err := f.hierarchy.ListTabs(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("listing tabs: %w", err)
	}
	for _, tab := range tabs {
		if err := claim(domain.LevelTab, tab.ID, ref.VersionID); err != nil {
			return nil, err
		}
		h.Tabs = append(h.Tabs, tab)
		if err := f.fetchSections(ctx, ref, h, tab.ID, claim); err != nil {
			return nil, err
		}
	}

	defs, err := f.breakdowns.ListBreakdownDefinitions(ctx, ref.ClientID, ref.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("listing breakdown definitions: %w", err)
	}
	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("%w: breakdown definition %q has no id", ErrIntegrity, d.Name)
		}
		h.BreakdownDefinitions[d.ID] = d
	}
	return h, nil
}

type claimFunc func(level domain.Level, id, parentID string) error

func (f *Fetcher) fetchSections(ctx context.Context, ref domain.VersionRef, h *domain.Hierarchy, tabID string, claim claimFunc) error {
	sections, err := f.hierarchy.ListSections(ctx, ref, tabID)
	if err != nil {
		return fmt.Errorf("listing sections of tab %s: %w", tabID, err)
	}
	for _, s := range sections {
		if err := claim(domain.LevelSection, s.ID, tabID); err != nil {
			return err
		}
		s.TabID = tabID
		h.Sections[tabID] = append(h.Sections[tabID], s)

		tactics, err := f.hierarchy.ListTactics(ctx, ref, tabID, s.ID)
		if err != nil {
			return fmt.Errorf("listing tactics of section %s: %w", s.ID, err)
		}
		for _, tc := range tactics {
			if err := claim(domain.LevelTactic, tc.ID, s.ID); err != nil {
				return err
			}
			tc.TabID, tc.SectionID = tabID, s.ID
			h.Tactics[s.ID] = append(h.Tactics[s.ID], tc)
			if err := f.fetchPlacements(ctx, ref, h, tc, claim); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *Fetcher) fetchPlacements(ctx context.Context, ref domain.VersionRef, h *domain.Hierarchy, tc domain.Tactic, claim claimFunc) error {
	placements, err := f.hierarchy.ListPlacements(ctx, ref, tc.TabID, tc.SectionID, tc.ID)
	if err != nil {
		return fmt.Errorf("listing placements of tactic %s: %w", tc.ID, err)
	}
	for _, p := range placements {
		if err := claim(domain.LevelPlacement, p.ID, tc.ID); err != nil {
			return err
		}
		p.TabID, p.SectionID, p.TacticID = tc.TabID, tc.SectionID, tc.ID
		h.Placements[tc.ID] = append(h.Placements[tc.ID], p)

		creatives, err := f.hierarchy.ListCreatives(ctx, ref, p.TabID, p.SectionID, p.TacticID, p.ID)
		if err != nil {
			return fmt.Errorf("listing creatives of placement %s: %w", p.ID, err)
		}
		for _, c := range creatives {
			if err := claim(domain.LevelCreative, c.ID, p.ID); err != nil {
				return err
			}
			c.TabID, c.SectionID, c.TacticID, c.PlacementID = p.TabID, p.SectionID, p.TacticID, p.ID
			h.Creatives[p.ID] = append(h.Creatives[p.ID], c)
		}
	}
	return nil
}
