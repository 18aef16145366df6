// Package runtime wires the aircare components together for one command.
package runtime

import (
	"os"
	"time"

	"github.com/manav03panchal/aircare/internal/config"
	"github.com/manav03panchal/aircare/internal/gateway"
	"github.com/manav03panchal/aircare/internal/notify"
	"github.com/manav03panchal/aircare/internal/output"
	"github.com/manav03panchal/aircare/internal/scheduler"
	"github.com/manav03panchal/aircare/internal/session"
	"github.com/manav03panchal/aircare/internal/storage"
	"github.com/manav03panchal/aircare/internal/store"
)

// Context holds the application runtime context.
type Context struct {
	DB        *storage.DB
	Formatter *output.Formatter

	Gateway *gateway.Client
	Session *session.Manager
	Roles   *session.RoleGate
	Store   *store.Store

	// Repositories
	WebhookRepo  *storage.WebhookRepo
	NotifiedRepo *storage.NotifiedRepo
	HandoffRepo  *storage.HandoffRepo

	Dispatcher *notify.Dispatcher
	Metrics    *scheduler.Metrics

	Now   func() time.Time
	Debug bool
}

// Options configures the runtime context.
type Options struct {
	DBPath    string
	InMemory  bool
	BaseURL   string
	Format    output.Format
	ColorMode output.ColorMode
	Debug     bool
	// Now overrides the wall clock. Nil means time.Now.
	Now func() time.Time
}

// DefaultOptions returns default runtime options.
func DefaultOptions() Options {
	return Options{
		DBPath:    storage.DefaultPath(),
		BaseURL:   config.Global.Gateway.BaseURL,
		Format:    output.FormatCLI,
		ColorMode: output.ColorAuto,
	}
}

// New creates a new runtime context.
func New(opts Options) (*Context, error) {
	if envPath := config.Global.Storage.Path; envPath != "" {
		if envPath == ":memory:" {
			opts.InMemory = true
		} else {
			opts.DBPath = envPath
		}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = config.Global.Gateway.BaseURL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	db, err := storage.Open(storage.Options{
		Path:     opts.DBPath,
		InMemory: opts.InMemory,
	})
	if err != nil {
		return nil, WrapOpenError(err, opts.DBPath)
	}

	sessions, err := session.NewManager(storage.NewSessionRepo(db))
	if err != nil {
		db.Close()
		return nil, err
	}

	routes := config.Global.Gateway.Routes
	client := gateway.New(gateway.Options{
		BaseURL: opts.BaseURL,
		Routes: gateway.Routes{
			Maintenance: routes.Maintenance,
			ACUnits:     routes.ACUnits,
			Users:       routes.Users,
			Login:       routes.Login,
			Statistics:  routes.Statistics,
		},
		Timeout:     config.Global.HTTP.Timeout,
		MaxRetries:  config.Global.HTTP.MaxRetries,
		RetryDelays: config.Global.HTTP.RetryDelays,
		Token:       sessions.Token,
	})

	formatter := output.NewFormatter()
	formatter.Format = opts.Format
	formatter.ColorMode = opts.ColorMode

	webhookRepo := storage.NewWebhookRepo(db)

	return &Context{
		DB:           db,
		Formatter:    formatter,
		Gateway:      client,
		Session:      sessions,
		Roles:        session.NewRoleGate(sessions.Token),
		Store:        store.New(client, store.Options{Now: opts.Now}),
		WebhookRepo:  webhookRepo,
		NotifiedRepo: storage.NewNotifiedRepo(db),
		HandoffRepo:  storage.NewHandoffRepo(db),
		Dispatcher:   notify.NewDispatcher(webhookRepo),
		Metrics:      scheduler.NewMetrics(),
		Now:          opts.Now,
		Debug:        opts.Debug,
	}, nil
}

// Close closes the runtime context.
func (c *Context) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// NewNotifier builds the event notifier over the store. Raised
// notifications go to sink and to every enabled webhook.
func (c *Context) NewNotifier(sink notify.Notifier) *scheduler.EventNotifier {
	return scheduler.NewEventNotifier(scheduler.NotifierOptions{
		Source:  c.Store,
		Fetch:   c.Gateway,
		Fired:   c.NotifiedRepo,
		Handoff: c.HandoffRepo,
		Sink:    sink,
		Remote:  c.Dispatcher,
		Now:     c.Now,
		Metrics: c.Metrics,
	})
}

// CLIFormatter returns a CLI formatter.
func (c *Context) CLIFormatter() *output.CLIFormatter {
	return output.NewCLIFormatter(c.Formatter)
}

// JSONFormatter returns a JSON formatter.
func (c *Context) JSONFormatter() *output.JSONFormatter {
	return output.NewJSONFormatter(c.Formatter)
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.Format == output.FormatJSON
}

// Debugf prints debug output to stderr if debug mode is enabled.
func (c *Context) Debugf(format string, args ...any) {
	if c.Debug {
		f := &output.Formatter{Writer: os.Stderr}
		f.Printf("[DEBUG] "+format+"\n", args...)
	}
}
