package domain

import (
	"errors"
	"time"
)

// VersionRef addresses one version of one campaign of one client.
type VersionRef struct {
	ClientID   string
	CampaignID string
	VersionID  string
}

func (r VersionRef) Validate() error {
	switch {
	case r.ClientID == "":
		return errors.New("client id is required")
	case r.CampaignID == "":
		return errors.New("campaign id is required")
	case r.VersionID == "":
		return errors.New("version id is required")
	}
	return nil
}

type Campaign struct {
	ID     string
	Name   string
	Fields map[string]any
}

type ClientInfo struct {
	ID             string
	Name           string
	ExportLanguage Language
}

// Template describes the spreadsheet template a document was created from.
type Template struct {
	ID            string
	Name          string
	DuplicateTabs bool
	Language      Language
}

// Document is an exported spreadsheet attached to a campaign version.
type Document struct {
	ID             string
	Name           string
	SpreadsheetID  string
	TemplateID     string
	Status         DocumentStatus
	StatusMessage  string
	LastDataSyncAt *time.Time
	LastDataSyncBy string
	UpdatedAt      time.Time
}

// StatusChange records one document status transition of an export run.
type StatusChange struct {
	Ref        VersionRef
	DocumentID string
	RunID      string
	Status     DocumentStatus
	Message    string
	At         time.Time
}
