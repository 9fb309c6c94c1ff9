package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/alexanderramin/mediasheet/internal/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreRepo reads the campaign editor's collections:
//
//	clients/{client}/campaigns/{campaign}/versions/{version}/onglets/{tab}/
//	  sections/{section}/tactiques/{tactic}/placements/{placement}/creatifs/{creative}
//
// Breakdown definitions live under the campaign, documents under the version.
type FirestoreRepo struct {
	client *firestore.Client
}

// NewFirestoreRepo creates a new FirestoreRepo.
func NewFirestoreRepo(client *firestore.Client) *FirestoreRepo {
	return &FirestoreRepo{client: client}
}

// NewFirestoreStore wires every reader of the export pipeline to Firestore.
func NewFirestoreStore(client *firestore.Client) Store {
	r := NewFirestoreRepo(client)
	return Store{
		Hierarchy:  r,
		Breakdowns: r,
		Campaigns:  r,
		Shortcodes: r,
		Clients:    r,
		Templates:  r,
		Documents:  r,
	}
}

func (r *FirestoreRepo) clientDoc(clientID string) *firestore.DocumentRef {
	return r.client.Collection("clients").Doc(clientID)
}

func (r *FirestoreRepo) campaignDoc(clientID, campaignID string) *firestore.DocumentRef {
	return r.clientDoc(clientID).Collection("campaigns").Doc(campaignID)
}

func (r *FirestoreRepo) versionDoc(ref domain.VersionRef) *firestore.DocumentRef {
	return r.campaignDoc(ref.ClientID, ref.CampaignID).Collection("versions").Doc(ref.VersionID)
}

func (r *FirestoreRepo) tabsColl(ref domain.VersionRef) *firestore.CollectionRef {
	return r.versionDoc(ref).Collection("onglets")
}

func (r *FirestoreRepo) sectionsColl(ref domain.VersionRef, tabID string) *firestore.CollectionRef {
	return r.tabsColl(ref).Doc(tabID).Collection("sections")
}

func (r *FirestoreRepo) tacticsColl(ref domain.VersionRef, tabID, sectionID string) *firestore.CollectionRef {
	return r.sectionsColl(ref, tabID).Doc(sectionID).Collection("tactiques")
}

func (r *FirestoreRepo) placementsColl(ref domain.VersionRef, tabID, sectionID, tacticID string) *firestore.CollectionRef {
	return r.tacticsColl(ref, tabID, sectionID).Doc(tacticID).Collection("placements")
}

func (r *FirestoreRepo) creativesColl(ref domain.VersionRef, tabID, sectionID, tacticID, placementID string) *firestore.CollectionRef {
	return r.placementsColl(ref, tabID, sectionID, tacticID).Doc(placementID).Collection("creatifs")
}

func (r *FirestoreRepo) ListTabs(ctx context.Context, ref domain.VersionRef) ([]domain.Tab, error) {
	snaps, err := r.tabsColl(ref).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("listing tabs: %w", err)
	}
	tabs := make([]domain.Tab, 0, len(snaps))
	for _, s := range snaps {
		tabs = append(tabs, domain.Tab{Entity: entityFromData(s.Ref.ID, s.Data(), fieldTabName, fieldTabOrder)})
	}
	return tabs, nil
}

func (r *FirestoreRepo) ListSections(ctx context.Context, ref domain.VersionRef, tabID string) ([]domain.Section, error) {
	snaps, err := r.sectionsColl(ref, tabID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("listing sections of tab %s: %w", tabID, err)
	}
	sections := make([]domain.Section, 0, len(snaps))
	for _, s := range snaps {
		sections = append(sections, domain.Section{
			Entity: entityFromData(s.Ref.ID, s.Data(), fieldSectionName, fieldSectionOrder),
			TabID:  tabID,
		})
	}
	return sections, nil
}

func (r *FirestoreRepo) ListTactics(ctx context.Context, ref domain.VersionRef, tabID, sectionID string) ([]domain.Tactic, error) {
	snaps, err := r.tacticsColl(ref, tabID, sectionID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("listing tactics of section %s: %w", sectionID, err)
	}
	tactics := make([]domain.Tactic, 0, len(snaps))
	for _, s := range snaps {
		data := s.Data()
		tactics = append(tactics, domain.Tactic{
			Entity:     entityFromData(s.Ref.ID, data, fieldTacticName, fieldTacticOrder),
			TabID:      tabID,
			SectionID:  sectionID,
			Breakdowns: decodeBreakdowns(data[fieldBreakdowns]),
		})
	}
	return tactics, nil
}

func (r *FirestoreRepo) ListPlacements(ctx context.Context, ref domain.VersionRef, tabID, sectionID, tacticID string) ([]domain.Placement, error) {
	snaps, err := r.placementsColl(ref, tabID, sectionID, tacticID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("listing placements of tactic %s: %w", tacticID, err)
	}
	placements := make([]domain.Placement, 0, len(snaps))
	for _, s := range snaps {
		placements = append(placements, domain.Placement{
			Entity:    entityFromData(s.Ref.ID, s.Data(), fieldPlacementName, fieldPlacementOrd),
			TabID:     tabID,
			SectionID: sectionID,
			TacticID:  tacticID,
		})
	}
	return placements, nil
}

func (r *FirestoreRepo) ListCreatives(ctx context.Context, ref domain.VersionRef, tabID, sectionID, tacticID, placementID string) ([]domain.Creative, error) {
	snaps, err := r.creativesColl(ref, tabID, sectionID, tacticID, placementID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("listing creatives of placement %s: %w", placementID, err)
	}
	creatives := make([]domain.Creative, 0, len(snaps))
	for _, s := range snaps {
		creatives = append(creatives, domain.Creative{
			Entity:      entityFromData(s.Ref.ID, s.Data(), fieldCreativeName, fieldCreativeOrder),
			TabID:       tabID,
			SectionID:   sectionID,
			TacticID:    tacticID,
			PlacementID: placementID,
		})
	}
	return creatives, nil
}

func (r *FirestoreRepo) ListBreakdownDefinitions(ctx context.Context, clientID, campaignID string) ([]domain.BreakdownDefinition, error) {
	snaps, err := r.campaignDoc(clientID, campaignID).Collection("breakdowns").Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("listing breakdown definitions: %w", err)
	}
	out := make([]domain.BreakdownDefinition, 0, len(snaps))
	for _, s := range snaps {
		data := s.Data()
		out = append(out, domain.BreakdownDefinition{
			ID:    s.Ref.ID,
			Name:  asString(data["name"]),
			Type:  domain.BreakdownType(asString(data["type"])),
			Order: asInt(data["order"]),
		})
	}
	return out, nil
}

func (r *FirestoreRepo) GetCampaign(ctx context.Context, clientID, campaignID string) (*domain.Campaign, error) {
	snap, err := r.campaignDoc(clientID, campaignID).Get(ctx)
	if err != nil {
		return nil, notFoundOr(err, "campaign "+campaignID)
	}
	data := snap.Data()
	return &domain.Campaign{ID: snap.Ref.ID, Name: asString(data["CA_Name"]), Fields: data}, nil
}

func (r *FirestoreRepo) ListShortcodes(ctx context.Context) ([]domain.Shortcode, error) {
	snaps, err := r.client.Collection("shortcodes").Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("listing shortcodes: %w", err)
	}
	out := make([]domain.Shortcode, 0, len(snaps))
	for _, s := range snaps {
		data := s.Data()
		out = append(out, domain.Shortcode{
			ID:            s.Ref.ID,
			Code:          asString(data["SH_Code"]),
			DisplayNameFR: asString(data["SH_Display_Name_FR"]),
			DisplayNameEN: asString(data["SH_Display_Name_EN"]),
		})
	}
	return out, nil
}

func (r *FirestoreRepo) GetClientInfo(ctx context.Context, clientID string) (*domain.ClientInfo, error) {
	snap, err := r.clientDoc(clientID).Get(ctx)
	if err != nil {
		return nil, notFoundOr(err, "client "+clientID)
	}
	data := snap.Data()
	lang, _ := domain.ParseLanguage(asString(data["CL_Export_Language"]))
	return &domain.ClientInfo{ID: snap.Ref.ID, Name: asString(data["CL_Name"]), ExportLanguage: lang}, nil
}

func (r *FirestoreRepo) GetTemplate(ctx context.Context, clientID, templateID string) (*domain.Template, error) {
	snap, err := r.clientDoc(clientID).Collection("templates").Doc(templateID).Get(ctx)
	if err != nil {
		return nil, notFoundOr(err, "template "+templateID)
	}
	data := snap.Data()
	lang, _ := domain.ParseLanguage(asString(data["TE_Language"]))
	return &domain.Template{
		ID:            snap.Ref.ID,
		Name:          asString(data["TE_Name"]),
		DuplicateTabs: asBool(data["TE_Duplicate"]),
		Language:      lang,
	}, nil
}

func (r *FirestoreRepo) ListByVersion(ctx context.Context, ref domain.VersionRef) ([]domain.Document, error) {
	snaps, err := r.versionDoc(ref).Collection("documents").Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	out := make([]domain.Document, 0, len(snaps))
	for _, s := range snaps {
		data := s.Data()
		d := domain.Document{
			ID:             s.Ref.ID,
			Name:           asString(data["name"]),
			SpreadsheetID:  asString(data["spreadsheetId"]),
			TemplateID:     asString(data["templateId"]),
			Status:         domain.DocumentStatus(asString(data["status"])),
			StatusMessage:  asString(data["errorMessage"]),
			LastDataSyncBy: asString(data["lastDataSyncBy"]),
		}
		if t, ok := data["lastDataSyncAt"].(time.Time); ok {
			d.LastDataSyncAt = &t
		}
		if t, ok := data["updatedAt"].(time.Time); ok {
			d.UpdatedAt = t
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *FirestoreRepo) UpdateStatus(ctx context.Context, ref domain.VersionRef, documentID string, st domain.DocumentStatus, message string) error {
	_, err := r.versionDoc(ref).Collection("documents").Doc(documentID).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(st)},
		{Path: "errorMessage", Value: message},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return notFoundOr(err, "document "+documentID)
	}
	return nil
}

func (r *FirestoreRepo) RecordDataSync(ctx context.Context, ref domain.VersionRef, documentID string, at time.Time, actor string) error {
	_, err := r.versionDoc(ref).Collection("documents").Doc(documentID).Update(ctx, []firestore.Update{
		{Path: "lastDataSyncAt", Value: at.UTC()},
		{Path: "lastDataSyncBy", Value: actor},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return notFoundOr(err, "document "+documentID)
	}
	return nil
}

// notFoundOr maps gRPC NotFound to ErrNotFound and wraps everything else.
func notFoundOr(err error, what string) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("reading %s: %w", what, err)
}
