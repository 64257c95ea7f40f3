package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/blogdesk/pkg/api"
	"github.com/vanderheijden86/blogdesk/pkg/auth"
	"github.com/vanderheijden86/blogdesk/pkg/config"
	"github.com/vanderheijden86/blogdesk/pkg/logging"
	"github.com/vanderheijden86/blogdesk/pkg/ui"
)

// Set via -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
)

// isTerminal reports whether stdout can host the interactive view.
var isTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("command failed")
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app holds what PersistentPreRunE resolves for the subcommands.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	client  *api.Client
	closers []io.Closer
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	a := &app{logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "blogdesk",
		Short: "Browse and manage a tree of blogs from the terminal",
		Long: `blogdesk is an admin console for a hierarchical blog backend.

Run it without a subcommand to open the interactive tree. Children are
loaded lazily the first time a blog is expanded.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, cfgFile)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd.Context())
		},
	}
	root.SetVersionTemplate("blogdesk {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default "+config.DefaultPath()+")")
	pf.String("api-url", "", "backend API base URL")
	pf.Duration("timeout", 0, "per-request timeout")
	pf.String("token-file", "", "file holding the bearer token; reloaded when it changes")
	pf.String("site-url", "", "public site URL used for blog links")
	pf.String("log-file", "", "log file path")
	pf.String("log-level", "", "log level (trace, debug, info, warn, error, disabled)")

	root.AddCommand(
		newListCmd(a),
		newExportCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, cfgFile string) error {
	switch {
	case cmd.Name() == "version", cmd.Name() == "help":
		return nil
	case cmd.HasParent() && cmd.Parent().Name() == "completion":
		return nil
	}

	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, closer, err := logging.Setup(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, closer)
	a.logger = logger.With().Str("cmd", cmd.Name()).Logger()
	log.Logger = a.logger

	tokens, err := a.tokenSource(cfg.Auth)
	if err != nil {
		return err
	}

	client, err := api.New(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithTokenSource(tokens),
		api.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}
	a.client = client

	a.logger.Debug().
		Str("api", cfg.API.BaseURL).
		Dur("timeout", cfg.API.Timeout).
		Str("version", Version).
		Msg("configured")
	return nil
}

func (a *app) tokenSource(ac config.AuthConfig) (auth.TokenSource, error) {
	switch {
	case ac.Token != "":
		return auth.StaticToken(ac.Token), nil
	case ac.TokenFile != "":
		src, err := auth.NewFileTokenSource(ac.TokenFile, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, src)
		return src, nil
	default:
		return auth.NoToken{}, nil
	}
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) runTUI(ctx context.Context) error {
	if !isTerminal() {
		return errors.New("the interactive view needs a terminal; use 'blogdesk list' or 'blogdesk export' instead")
	}

	m := ui.NewModel(ui.Options{
		Service:    a.client,
		Logger:     a.logger,
		SiteURL:    a.cfg.Site.BaseURL,
		DateFormat: a.cfg.UI.DateFormat,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running blogdesk: %w", err)
	}
	return nil
}
