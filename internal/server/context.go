package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/api/option"

	"github.com/teemow/schedulr/internal/calendar"
	"github.com/teemow/schedulr/internal/contacts"
	"github.com/teemow/schedulr/internal/gmail"
	"github.com/teemow/schedulr/internal/google"
	"github.com/teemow/schedulr/internal/ical"
	"github.com/teemow/schedulr/internal/instrumentation"
	"github.com/teemow/schedulr/internal/interval"
	"github.com/teemow/schedulr/internal/logging"
	"github.com/teemow/schedulr/internal/scheduling"
)

// Settings are the scheduling defaults the tools fall back to.
type Settings struct {
	DefaultAccount string
	SenderName     string
	SenderEmail    string
	DaysAhead      int
	DailyHours     []int
	MinSlot        time.Duration
}

// Options configure a ServerContext. Only TokenProvider is required.
type Options struct {
	TokenProvider google.TokenProvider
	Credentials   google.Credentials
	Settings      Settings

	Logger      *slog.Logger
	Metrics     *instrumentation.Metrics
	AuditLogger *instrumentation.AuditLogger

	// Store defaults to a new empty store.
	Store *scheduling.Store
	// Clock defaults to time.Now.
	Clock func() time.Time

	// ClientOptions are appended to the options of every Google client,
	// after the authenticated HTTP client.
	ClientOptions []option.ClientOption
}

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	tokenProvider google.TokenProvider
	credentials   google.Credentials
	settings      Settings
	clientOptions []option.ClientOption

	logger      *slog.Logger
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	store       *scheduling.Store
	encoder     *ical.Encoder
	clock       func() time.Time

	calendarClients map[string]*calendar.Client // Maps account name to Calendar client
	contactsClients map[string]*contacts.Client
	gmailSenders    map[string]*gmail.Sender

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context. Clients are created
// lazily on first use of an account.
func NewServerContext(ctx context.Context, opts Options) (*ServerContext, error) {
	if opts.TokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	settings := opts.Settings
	if settings.DefaultAccount == "" {
		settings.DefaultAccount = google.DefaultAccount
	}
	if settings.DaysAhead <= 0 {
		settings.DaysAhead = 7
	}
	if len(settings.DailyHours) == 0 {
		settings.DailyHours = []int{10, 14, 16}
	}
	if settings.MinSlot <= 0 {
		settings.MinSlot = interval.DefaultMinGap
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	store := opts.Store
	if store == nil {
		store = scheduling.NewStore(scheduling.WithClock(clock))
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:             shutdownCtx,
		cancel:          cancel,
		tokenProvider:   opts.TokenProvider,
		credentials:     opts.Credentials,
		settings:        settings,
		clientOptions:   opts.ClientOptions,
		logger:          logger,
		metrics:         opts.Metrics,
		auditLogger:     opts.AuditLogger,
		store:           store,
		encoder:         ical.NewEncoder(ical.DefaultProductID),
		clock:           clock,
		calendarClients: make(map[string]*calendar.Client),
		contactsClients: make(map[string]*contacts.Client),
		gmailSenders:    make(map[string]*gmail.Sender),
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder. It may be nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger. It may be nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// Settings returns the scheduling defaults.
func (sc *ServerContext) Settings() Settings {
	s := sc.settings
	s.DailyHours = append([]int(nil), s.DailyHours...)
	return s
}

// Store returns the scheduling request store.
func (sc *ServerContext) Store() *scheduling.Store {
	return sc.store
}

// Now returns the current time of the server clock.
func (sc *ServerContext) Now() time.Time {
	return sc.clock()
}

// HasTokenForAccount reports whether a Google token is available for account.
func (sc *ServerContext) HasTokenForAccount(account string) bool {
	return sc.tokenProvider.HasTokenForAccount(account)
}

func (sc *ServerContext) googleOptions(account string) ([]option.ClientOption, error) {
	if !sc.tokenProvider.HasTokenForAccount(account) {
		return nil, fmt.Errorf("%w: %s", scheduling.ErrNotConfigured, google.AuthenticationErrorMessage(account))
	}
	httpClient, err := google.HTTPClient(sc.ctx, sc.tokenProvider, sc.credentials, account)
	if err != nil {
		return nil, err
	}
	opts := make([]option.ClientOption, 0, len(sc.clientOptions)+1)
	opts = append(opts, option.WithHTTPClient(httpClient))
	return append(opts, sc.clientOptions...), nil
}

// CalendarClientForAccount returns the Calendar client for account,
// creating and caching it on first use.
func (sc *ServerContext) CalendarClientForAccount(account string) (*calendar.Client, error) {
	sc.mu.RLock()
	client, ok := sc.calendarClients[account]
	sc.mu.RUnlock()
	if ok {
		return client, nil
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if client, ok := sc.calendarClients[account]; ok {
		return client, nil
	}

	opts, err := sc.googleOptions(account)
	if err != nil {
		return nil, err
	}
	client, err = calendar.NewClient(sc.ctx, account, sc.metrics, opts...)
	if err != nil {
		return nil, err
	}
	sc.calendarClients[account] = client
	return client, nil
}

// ContactsClientForAccount returns the People client for account,
// creating and caching it on first use.
func (sc *ServerContext) ContactsClientForAccount(account string) (*contacts.Client, error) {
	sc.mu.RLock()
	client, ok := sc.contactsClients[account]
	sc.mu.RUnlock()
	if ok {
		return client, nil
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if client, ok := sc.contactsClients[account]; ok {
		return client, nil
	}

	opts, err := sc.googleOptions(account)
	if err != nil {
		return nil, err
	}
	client, err = contacts.NewClient(sc.ctx, account, sc.metrics, opts...)
	if err != nil {
		return nil, err
	}
	sc.contactsClients[account] = client
	return client, nil
}

// GmailSenderForAccount returns the Gmail sender for account,
// creating and caching it on first use.
func (sc *ServerContext) GmailSenderForAccount(account string) (*gmail.Sender, error) {
	sc.mu.RLock()
	sender, ok := sc.gmailSenders[account]
	sc.mu.RUnlock()
	if ok {
		return sender, nil
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sender, ok := sc.gmailSenders[account]; ok {
		return sender, nil
	}

	opts, err := sc.googleOptions(account)
	if err != nil {
		return nil, err
	}
	sender, err = gmail.NewSender(sc.ctx, account, sc.settings.SenderEmail, sc.metrics, opts...)
	if err != nil {
		return nil, err
	}
	sc.gmailSenders[account] = sender
	return sender, nil
}

// WorkflowForAccount returns a scheduling workflow that mails through the
// Gmail account and records meetings in its calendar. All workflows share
// the server's request store.
func (sc *ServerContext) WorkflowForAccount(account string) (*scheduling.Workflow, error) {
	sender, err := sc.GmailSenderForAccount(account)
	if err != nil {
		return nil, err
	}

	cfg := scheduling.WorkflowConfig{
		Store:     sc.store,
		Notifier:  sender,
		Encoder:   sc.encoder,
		Organizer: sc.settings.SenderEmail,
		MinSlot:   sc.settings.MinSlot,
		Logger:    logging.NewSlogAdapter(logging.WithService(logging.WithAccount(sc.logger, account), "scheduling")),
		Clock:     sc.clock,
	}
	if cal, err := sc.CalendarClientForAccount(account); err == nil {
		cfg.Recorder = calendar.NewRecorder(cal)
	} else {
		sc.logger.Warn("meetings will not be saved to a calendar", logging.Account(account), logging.Err(err))
	}

	return scheduling.NewWorkflow(cfg)
}

// SlotSourceForAccount returns the candidate slots of account over the next
// days. With useCalendar the free slots of the account's calendar are
// offered, otherwise the fixed daily hours.
func (sc *ServerContext) SlotSourceForAccount(account string, days int, useCalendar bool) (scheduling.SlotSource, error) {
	if days <= 0 {
		days = sc.settings.DaysAhead
	}
	if !useCalendar {
		return scheduling.StaticSlots(scheduling.DailySlots(sc.clock(), days, sc.settings.DailyHours, scheduling.MeetingDuration)), nil
	}

	client, err := sc.CalendarClientForAccount(account)
	if err != nil {
		return nil, err
	}
	return calendar.SlotSource(client, sc.clock, time.Duration(days)*24*time.Hour, sc.settings.MinSlot), nil
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
