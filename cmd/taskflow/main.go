// Command taskflow runs the task board in the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/nhle/taskflow/internal/app"
	"github.com/nhle/taskflow/internal/credential"
	"github.com/nhle/taskflow/internal/fixture"
	"github.com/nhle/taskflow/internal/logging"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/session"
	"github.com/nhle/taskflow/internal/store"
	"github.com/nhle/taskflow/internal/ui/dashboard"
	"github.com/nhle/taskflow/internal/ui/tasklist"
	"github.com/nhle/taskflow/internal/view"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	email      string
	password   string
	view       string
	print      bool
	write      bool
}

func run(args []string, stdout, stderr io.Writer) error {
	var opts options
	fs := pflag.NewFlagSet("taskflow", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", model.DefaultConfigPath(), "path to the YAML config file")
	fs.StringVar(&opts.email, "email", "", "sign in with this email on start")
	fs.StringVar(&opts.password, "password", "", "password for --email")
	fs.StringVar(&opts.view, "view", "dashboard", "screen to open first")
	fs.BoolVar(&opts.print, "print", false, "print the dashboard once and exit")
	fs.BoolVar(&opts.write, "write-config", false, "save the merged config to --config and exit")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("log-file", "", "write logs to a rotated file instead of stderr")
	fs.String("fixtures", "", "YAML fixture file to seed from")
	fs.String("verifier", "", "credential verifier (mock or bcrypt)")
	fs.Duration("load-delay", 0, "simulated task fetch delay")
	fs.Bool("persist", false, "keep the session in the system keyring")
	if err := fs.Parse(args); err != nil {
		return err
	}

	v := model.NewConfigViper(opts.configPath)
	for key, flag := range map[string]string{
		"log.level":        "log-level",
		"log.file":         "log-file",
		"fixtures.path":    "fixtures",
		"auth.verifier":    "verifier",
		"tasks.load_delay": "load-delay",
		"session.persist":  "persist",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	cfg, err := model.DecodeConfig(v)
	if err != nil {
		return err
	}
	if opts.write {
		if err := model.SaveConfig(opts.configPath, cfg); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Wrote %s\n", opts.configPath)
		return nil
	}

	log, closer := logging.Open(cfg.Log, stderr)
	defer closer.Close()

	o, err := build(cfg, log)
	if err != nil {
		return err
	}

	if !o.Restore() && opts.email != "" {
		if err := o.Login(opts.email, opts.password); err != nil {
			return fmt.Errorf("signing in as %s: %w", opts.email, err)
		}
	}
	o.Navigate(app.ParseView(opts.view))

	ctx := context.Background()
	if opts.print {
		return printDashboard(ctx, o, stdout)
	}

	p := tea.NewProgram(app.NewModel(ctx, o), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

// build wires the stores, the session manager and the orchestrator from cfg.
func build(cfg *model.AppConfig, log *logrus.Logger) (*app.Orchestrator, error) {
	fx := fixture.Default(time.Now())
	if cfg.Fixtures.Path != "" {
		loaded, err := fixture.Load(cfg.Fixtures.Path)
		if err != nil {
			return nil, err
		}
		fx = loaded
	}

	users := store.NewUserDirectory(fx.Users)
	tasks := store.NewTaskRepository(fx.Tasks, users, store.WithLoadDelay(cfg.Tasks.LoadDelay))

	verifier, err := newVerifier(cfg.Auth, users)
	if err != nil {
		return nil, err
	}
	tokens := session.NewJWTIssuer(session.JWTConfig{
		Secret: cfg.Auth.TokenSecret,
		TTL:    cfg.Auth.TokenTTL,
		Issuer: cfg.Auth.Issuer,
	}, nil)
	sess := session.NewManager(users, verifier, tokens)

	appOpts := []app.Option{app.WithLogger(log)}
	if cfg.Session.Persist {
		vault, err := credential.Open(cfg.Session.KeyringDir)
		if err != nil {
			log.WithError(err).Warn("session persistence disabled")
		} else {
			appOpts = append(appOpts, app.WithVault(vault))
		}
	}

	log.WithFields(logrus.Fields{
		"users":    users.Len(),
		"verifier": cfg.Auth.Verifier,
		"fixtures": cfg.Fixtures.Path,
	}).Debug("workspace ready")

	return app.New(users, tasks, sess, fx.Notifications, appOpts...), nil
}

// newVerifier returns the configured verifier. The bcrypt verifier enrolls
// every seed user with the demo password so the fixture accounts can sign in.
func newVerifier(cfg model.AuthConfig, users *store.UserDirectory) (session.CredentialVerifier, error) {
	if cfg.Verifier != model.VerifierBcrypt {
		return session.NewMockVerifier(users, cfg.MockPassword), nil
	}

	v := session.NewBcryptVerifier(users, 0)
	for _, u := range users.All() {
		if err := v.Enroll(u, cfg.MockPassword); err != nil {
			return nil, fmt.Errorf("enrolling %s: %w", u.Email, err)
		}
	}
	return v, nil
}

// printDashboard writes the opening screen once, as plain rows for the task
// list and the summary panels otherwise.
func printDashboard(ctx context.Context, o *app.Orchestrator, w io.Writer) error {
	s := o.Session()
	if s.Anonymous() {
		return fmt.Errorf("--print needs a signed-in user: %w", app.ErrNotAuthenticated)
	}
	if err := o.Load(ctx); err != nil {
		return err
	}

	now := time.Now()
	tasks := o.Tasks()
	if o.View() == app.ViewTasks {
		for _, t := range tasks {
			if _, err := fmt.Fprintln(w, tasklist.RenderRow(t, now)); err != nil {
				return err
			}
		}
		return nil
	}

	_, err := fmt.Fprintln(w, dashboard.Render(view.Dashboard(tasks, *s.User, now), *s.User, now, 100))
	return err
}
