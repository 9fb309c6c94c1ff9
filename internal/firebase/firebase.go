// Package firebase opens the production campaign store.
package firebase

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/alexanderramin/mediasheet/internal/repository"
)

// ServiceAccountEnv holds raw service-account JSON. It wins over a
// credentials file.
const ServiceAccountEnv = "FIREBASE_SERVICE_ACCOUNT_JSON"

type Config struct {
	ProjectID       string
	CredentialsFile string
}

// clientOptions picks explicit credentials when configured. With none,
// application default credentials (or the Firestore emulator) are used.
func clientOptions(cfg Config, getenv func(string) string) []option.ClientOption {
	if raw := getenv(ServiceAccountEnv); raw != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(raw))}
	}
	if cfg.CredentialsFile != "" {
		return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}
	}
	return nil
}

func NewApp(ctx context.Context, cfg Config) (*firebase.App, error) {
	appCfg := &firebase.Config{ProjectID: cfg.ProjectID}
	app, err := firebase.NewApp(ctx, appCfg, clientOptions(cfg, os.Getenv)...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	return app, nil
}

// OpenStore connects to Firestore and returns the repository readers backed
// by it. The caller closes the returned client.
func OpenStore(ctx context.Context, cfg Config) (repository.Store, *firestore.Client, error) {
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return repository.Store{}, nil, err
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return repository.Store{}, nil, fmt.Errorf("opening firestore: %w", err)
	}
	return repository.NewFirestoreStore(client), client, nil
}
