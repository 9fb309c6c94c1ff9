package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/alexanderramin/mediasheet/internal/api"
	"github.com/alexanderramin/mediasheet/internal/auth"
	"github.com/alexanderramin/mediasheet/internal/cache"
	"github.com/alexanderramin/mediasheet/internal/cli"
	"github.com/alexanderramin/mediasheet/internal/config"
	"github.com/alexanderramin/mediasheet/internal/db"
	"github.com/alexanderramin/mediasheet/internal/events"
	"github.com/alexanderramin/mediasheet/internal/export"
	"github.com/alexanderramin/mediasheet/internal/firebase"
	"github.com/alexanderramin/mediasheet/internal/repository"
	"github.com/alexanderramin/mediasheet/internal/service"
	"github.com/alexanderramin/mediasheet/internal/shortcode"
)

// build wires the services for one command invocation. The local SQLite
// database always holds the token cache and import target; campaign reads
// come from it or from Firestore depending on store.backend.
func build(ctx context.Context, cfg config.Config, logger *zap.Logger, consent auth.Consent) (*cli.App, error) {
	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	database, err := db.OpenDB(cfg.Store.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	closers = append(closers, database.Close)

	store := repository.NewSQLiteStore(database)
	if cfg.Store.Backend == config.BackendFirestore {
		fsStore, client, err := firebase.OpenStore(ctx, firebase.Config{
			ProjectID:       cfg.Firebase.ProjectID,
			CredentialsFile: cfg.Firebase.CredentialsFile,
		})
		if err != nil {
			return nil, errors.Join(err, closeAll())
		}
		closers = append(closers, client.Close)
		store = fsStore
	}

	mapping := export.DefaultMapping()
	if cfg.Export.MappingFile != "" {
		if mapping, err = export.LoadMapping(cfg.Export.MappingFile); err != nil {
			return nil, errors.Join(err, closeAll())
		}
	}

	var notifier interface {
		export.StatusNotifier
		Close() error
	} = events.Nop{}
	if cfg.Events.Enabled() {
		notifier = events.NewPublisher(cfg.Events.Brokers, cfg.Events.Topic, logger)
	}
	closers = append(closers, notifier.Close)

	tokens := cache.NewSQLiteStore(database)
	interactive := newTokenProvider(cfg, tokens, consent, logger)
	headless := newTokenProvider(cfg, tokens, auth.NoConsent, logger)

	shortcodes := shortcode.NewCache(store.Shortcodes, cfg.Export.ShortcodeTTL, logger)
	observer := service.NewLogUseCaseObserver(logger)
	exportsFor := func(tp service.TokenProvider) service.ExportService {
		return service.NewExportService(export.NewOrchestrator(store, shortcodes, service.NewSheetsAuthorizer(tp), export.Options{
			Ranges:       cfg.Export.Ranges,
			Mapping:      mapping,
			CodeFallback: cfg.Export.ShortcodeCodeFallback,
			Logger:       logger,
			Notifier:     notifier,
		}), observer)
	}

	return &cli.App{
		Exports: exportsFor(interactive),
		TabSync: service.NewTabSyncService(store.Hierarchy, service.NewSheetsAuthorizer(interactive), logger, observer),
		Previews: service.NewPreviewService(store, shortcodes, service.PreviewOptions{
			Mapping:      mapping,
			CodeFallback: cfg.Export.ShortcodeCodeFallback,
			Logger:       logger,
		}, observer),
		Imports: service.NewImportService(db.NewSQLiteUnitOfWork(database), observer),
		Auth:    interactive,
		API: api.NewServer(
			exportsFor(headless),
			service.NewTabSyncService(store.Hierarchy, service.NewSheetsAuthorizer(headless), logger, observer),
			logger,
		),
		Close: closeAll,
	}, nil
}

type tokenProvider interface {
	cli.AuthSession
	service.TokenProvider
}

// newTokenProvider returns the OAuth authorizer, or a stand-in that fails
// every request when the client file cannot be read. Commands that never
// reach Google Sheets keep working without one.
func newTokenProvider(cfg config.Config, tokens cache.Store, consent auth.Consent, logger *zap.Logger) tokenProvider {
	oauthCfg, err := auth.LoadOAuthConfig(cfg.Auth.ClientFile)
	if err != nil {
		return oauthUnavailable{err: fmt.Errorf("%w: %w", auth.ErrAuthorization, err)}
	}
	return auth.NewAuthorizer(oauthCfg, tokens, consent, auth.Options{TTL: cfg.Auth.TokenTTL, Logger: logger})
}

type oauthUnavailable struct{ err error }

func (o oauthUnavailable) Login(context.Context) (*oauth2.Token, error) {
	return nil, o.err
}

func (o oauthUnavailable) Logout(context.Context) error {
	return o.err
}

func (o oauthUnavailable) HasCachedToken(context.Context) bool {
	return false
}

func (o oauthUnavailable) TokenSource(context.Context) (oauth2.TokenSource, error) {
	return nil, o.err
}
