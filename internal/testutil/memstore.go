package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/mediasheet/internal/domain"
	"github.com/alexanderramin/mediasheet/internal/repository"
)

// MemoryStore serves a fixed hierarchy snapshot through the repository
// interfaces. Errors can be injected per method name ("ListTactics", ...).
type MemoryStore struct {
	mu sync.Mutex

	Hierarchy  *domain.Hierarchy
	Campaign   domain.Campaign
	Client     domain.ClientInfo
	Templates  map[string]domain.Template
	Documents  []domain.Document
	Shortcodes []domain.Shortcode
	Errors     map[string]error

	StatusHistory []domain.DocumentStatus
	Calls         map[string]int
}

// NewMemoryStore returns a store serving h with one client and campaign.
func NewMemoryStore(h *domain.Hierarchy) *MemoryStore {
	return &MemoryStore{
		Hierarchy: h,
		Campaign:  domain.Campaign{ID: "campaign-1", Name: "Spring Launch", Fields: map[string]any{}},
		Client:    domain.ClientInfo{ID: "client-1", Name: "Client", ExportLanguage: domain.LanguageFR},
		Templates: map[string]domain.Template{},
		Errors:    map[string]error{},
		Calls:     map[string]int{},
	}
}

// Store exposes m as every reader of a repository.Store.
func (m *MemoryStore) Store() repository.Store {
	return repository.Store{
		Hierarchy:  m,
		Breakdowns: m,
		Campaigns:  m,
		Shortcodes: m,
		Clients:    m,
		Templates:  m,
		Documents:  m,
	}
}

func (m *MemoryStore) enter(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[method]++
	return m.Errors[method]
}

func (m *MemoryStore) ListTabs(_ context.Context, _ domain.VersionRef) ([]domain.Tab, error) {
	if err := m.enter("ListTabs"); err != nil {
		return nil, err
	}
	return append([]domain.Tab(nil), m.Hierarchy.Tabs...), nil
}

func (m *MemoryStore) ListSections(_ context.Context, _ domain.VersionRef, tabID string) ([]domain.Section, error) {
	if err := m.enter("ListSections"); err != nil {
		return nil, err
	}
	out := append([]domain.Section(nil), m.Hierarchy.Sections[tabID]...)
	for i := range out {
		out[i].TabID = ""
	}
	return out, nil
}

func (m *MemoryStore) ListTactics(_ context.Context, _ domain.VersionRef, _, sectionID string) ([]domain.Tactic, error) {
	if err := m.enter("ListTactics"); err != nil {
		return nil, err
	}
	out := append([]domain.Tactic(nil), m.Hierarchy.Tactics[sectionID]...)
	for i := range out {
		out[i].TabID, out[i].SectionID = "", ""
	}
	return out, nil
}

func (m *MemoryStore) ListPlacements(_ context.Context, _ domain.VersionRef, _, _, tacticID string) ([]domain.Placement, error) {
	if err := m.enter("ListPlacements"); err != nil {
		return nil, err
	}
	out := append([]domain.Placement(nil), m.Hierarchy.Placements[tacticID]...)
	for i := range out {
		out[i].TabID, out[i].SectionID, out[i].TacticID = "", "", ""
	}
	return out, nil
}

func (m *MemoryStore) ListCreatives(_ context.Context, _ domain.VersionRef, _, _, _, placementID string) ([]domain.Creative, error) {
	if err := m.enter("ListCreatives"); err != nil {
		return nil, err
	}
	out := append([]domain.Creative(nil), m.Hierarchy.Creatives[placementID]...)
	for i := range out {
		out[i].TabID, out[i].SectionID, out[i].TacticID, out[i].PlacementID = "", "", "", ""
	}
	return out, nil
}

func (m *MemoryStore) ListBreakdownDefinitions(_ context.Context, _, _ string) ([]domain.BreakdownDefinition, error) {
	if err := m.enter("ListBreakdownDefinitions"); err != nil {
		return nil, err
	}
	out := make([]domain.BreakdownDefinition, 0, len(m.Hierarchy.BreakdownDefinitions))
	for _, d := range m.Hierarchy.BreakdownDefinitions {
		out = append(out, d)
	}
	return out, nil
}

func (m *MemoryStore) GetCampaign(_ context.Context, _, _ string) (*domain.Campaign, error) {
	if err := m.enter("GetCampaign"); err != nil {
		return nil, err
	}
	c := m.Campaign
	return &c, nil
}

func (m *MemoryStore) ListShortcodes(_ context.Context) ([]domain.Shortcode, error) {
	if err := m.enter("ListShortcodes"); err != nil {
		return nil, err
	}
	return append([]domain.Shortcode(nil), m.Shortcodes...), nil
}

func (m *MemoryStore) GetClientInfo(_ context.Context, _ string) (*domain.ClientInfo, error) {
	if err := m.enter("GetClientInfo"); err != nil {
		return nil, err
	}
	c := m.Client
	return &c, nil
}

func (m *MemoryStore) GetTemplate(_ context.Context, _, templateID string) (*domain.Template, error) {
	if err := m.enter("GetTemplate"); err != nil {
		return nil, err
	}
	t, ok := m.Templates[templateID]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", templateID, repository.ErrNotFound)
	}
	return &t, nil
}

func (m *MemoryStore) ListByVersion(_ context.Context, _ domain.VersionRef) ([]domain.Document, error) {
	if err := m.enter("ListByVersion"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Document(nil), m.Documents...), nil
}

func (m *MemoryStore) UpdateStatus(_ context.Context, _ domain.VersionRef, documentID string, status domain.DocumentStatus, message string) error {
	if err := m.enter("UpdateStatus"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Documents {
		if m.Documents[i].ID == documentID {
			m.Documents[i].Status = status
			m.Documents[i].StatusMessage = message
			m.StatusHistory = append(m.StatusHistory, status)
			return nil
		}
	}
	return fmt.Errorf("document %s: %w", documentID, repository.ErrNotFound)
}

func (m *MemoryStore) RecordDataSync(_ context.Context, _ domain.VersionRef, documentID string, at time.Time, actor string) error {
	if err := m.enter("RecordDataSync"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Documents {
		if m.Documents[i].ID == documentID {
			m.Documents[i].LastDataSyncAt = &at
			m.Documents[i].LastDataSyncBy = actor
			return nil
		}
	}
	return fmt.Errorf("document %s: %w", documentID, repository.ErrNotFound)
}

// Document returns the current state of a stored document.
func (m *MemoryStore) Document(id string) domain.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.Documents {
		if d.ID == id {
			return d
		}
	}
	return domain.Document{}
}
