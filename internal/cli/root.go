package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/alexanderramin/mediasheet/internal/api"
	"github.com/alexanderramin/mediasheet/internal/auth"
	"github.com/alexanderramin/mediasheet/internal/config"
	"github.com/alexanderramin/mediasheet/internal/service"
)

// AuthSession manages the cached spreadsheet grant. *auth.Authorizer
// implements it.
type AuthSession interface {
	Login(ctx context.Context) (*oauth2.Token, error)
	Logout(ctx context.Context) error
	HasCachedToken(ctx context.Context) bool
}

// App holds the services used by CLI commands.
type App struct {
	Exports  service.ExportService
	TabSync  service.TabSyncService
	Previews service.PreviewService
	Imports  service.ImportService
	Auth     AuthSession
	// API serves exports over HTTP. It is wired with a non-interactive
	// authorizer.
	API *api.Server
	// Close releases the store and the event publisher.
	Close func() error
}

// Builder wires an App from the loaded configuration. Consent is the
// interactive authorization step for CLI commands.
type Builder func(ctx context.Context, cfg config.Config, logger *zap.Logger, consent auth.Consent) (*App, error)

// session is the per-invocation state shared by every command.
type session struct {
	build       Builder
	interactive func() bool

	cfgFile string
	verbose bool
	lang    config.LanguageValue

	cfg    config.Config
	logger *zap.Logger
	app    *App
}

// Execute runs the top-level "mediasheet" command. Services are built the
// first time a command needs them and released when it returns.
func Execute(ctx context.Context, build Builder) error {
	s := &session{build: build, interactive: stdinIsTerminal}
	err := newRootCmd(s).ExecuteContext(ctx)
	return errors.Join(err, s.close())
}

func newRootCmd(s *session) *cobra.Command {
	root := &cobra.Command{
		Use:           "mediasheet",
		Short:         "Export media plan versions to Google Sheets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&s.cfgFile, "config", "", "config file (default .mediasheet/config.yaml)")
	root.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().Var(&s.lang, "lang", "export language override (FR or EN)")

	root.AddCommand(
		newExportCmd(s),
		newSyncTabsCmd(s),
		newPreviewCmd(s),
		newImportCmd(s),
		newServeCmd(s),
		newAuthCmd(s),
	)
	return root
}

func (s *session) load(cmd *cobra.Command) error {
	cfg, err := config.Load(viper.New(), s.cfgFile)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.Log, s.verbose)
	if err != nil {
		return err
	}
	s.cfg = cfg
	s.logger = logger.With(zap.String("command", cmd.Name()))
	return nil
}

// App builds the services on first use.
func (s *session) App(cmd *cobra.Command) (*App, error) {
	if s.app != nil {
		return s.app, nil
	}
	consent := newPromptConsent(s.interactive, cmd.InOrStdin(), cmd.ErrOrStderr())
	app, err := s.build(cmd.Context(), s.cfg, s.logger, consent)
	if err != nil {
		return nil, fmt.Errorf("initializing: %w", err)
	}
	s.app = app
	return app, nil
}

func (s *session) close() error {
	var errs []error
	if s.app != nil && s.app.Close != nil {
		errs = append(errs, s.app.Close())
		s.app = nil
	}
	if s.logger != nil {
		// Sync fails on terminals; the error carries no information.
		_ = s.logger.Sync()
	}
	return errors.Join(errs...)
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
