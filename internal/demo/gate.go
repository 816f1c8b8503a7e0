// Package demo drives a visitor from the access gate through a timed
// voice demo.
package demo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tolutally/matchbox-web/internal/cache"
	"github.com/tolutally/matchbox-web/internal/client"
	"github.com/tolutally/matchbox-web/internal/core"
	"github.com/tolutally/matchbox-web/internal/models"
	"github.com/tolutally/matchbox-web/internal/usage"
	"github.com/tolutally/matchbox-web/internal/validation"
	"github.com/tolutally/matchbox-web/internal/voice"
)

// State of a Gate.
type State string

const (
	StateGate   State = "gate"
	StateReady  State = "ready"
	StateInDemo State = "in-demo"
	StateEnded  State = "ended"
)

// Entry is how the visitor got past the gate.
type Entry string

const (
	EntryToken Entry = "token"
	EntryLead  Entry = "lead"
)

const (
	DefaultDuration = 120 * time.Second
	DefaultTick     = time.Second

	leadDedupTTL = 24 * time.Hour
)

// API is the part of the server the gate talks to.
type API interface {
	ValidateToken(ctx context.Context, token string) error
	SubmitLead(ctx context.Context, form client.LeadForm) (*client.LeadReceipt, error)
}

// Options configures a Gate. Zero durations fall back to the defaults.
type Options struct {
	Catalog *Catalog
	Usage   usage.Store
	Quota   usage.Quota
	// BypassEmails skip the device quota on lead entry.
	BypassEmails []string
	// FallbackPassword unlocks the gate when the validate endpoint is
	// missing or unreachable. Empty disables the fallback.
	FallbackPassword string
	// Submitted remembers sent lead forms so the same contact is not sent
	// twice. Nil gives each gate its own memory cache.
	Submitted core.Cache[bool]
	Duration  time.Duration
	Tick      time.Duration
}

// Line is one finished transcript line.
type Line struct {
	Role string
	Text string
}

// String renders the line the way the live line is shown.
func (l Line) String() string {
	return speaker(l.Role) + ": " + l.Text
}

// Snapshot is a copy of the gate's visible state.
type Snapshot struct {
	State      State
	Entry      Entry
	Email      string
	Scenario   models.Scenario
	Remaining  time.Duration
	CallActive bool
	Transcript []Line
	Live       string
	Error      string
}

// Gate is the demo state machine: gate → ready → in-demo → ended, and
// ended → ready on restart. It owns the voice client passed to NewGate.
type Gate struct {
	api      API
	voice    voice.Client
	catalog  *Catalog
	trackers map[Entry]*usage.Tracker
	quota    usage.Quota
	duration time.Duration
	tick     time.Duration
	fallback string
	sent     core.Cache[bool]

	mu         sync.Mutex
	state      State
	entry      Entry
	email      string
	scenario   models.Scenario
	remaining  time.Duration
	callActive bool
	transcript []Line
	live       string
	errMsg     string
	session    uint64
	stopTimer  chan struct{}
	closed     bool

	pumpOnce  sync.Once
	closeOnce sync.Once
	quit      chan struct{}
	changes   chan struct{}
	now       func() time.Time
}

// NewGate creates a gate in the gate state.
func NewGate(api API, vc voice.Client, opts Options) *Gate {
	if opts.Catalog == nil {
		opts.Catalog = DefaultCatalog(nil)
	}
	if opts.Quota.Limit <= 0 || opts.Quota.Window <= 0 {
		opts.Quota = usage.DefaultQuota()
	}
	if opts.Usage == nil {
		opts.Usage = usage.NewMemoryStore(opts.Quota.Window)
	}
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.Submitted == nil {
		opts.Submitted = cache.NewMemoryCache[bool]()
	}

	return &Gate{
		api:     api,
		voice:   vc,
		catalog: opts.Catalog,
		trackers: map[Entry]*usage.Tracker{
			EntryToken: usage.NewTracker(opts.Usage, opts.Quota, usage.BucketPrivateDemo, nil),
			EntryLead:  usage.NewTracker(opts.Usage, opts.Quota, usage.BucketCallMe, opts.BypassEmails),
		},
		quota:     opts.Quota,
		duration:  opts.Duration,
		tick:      opts.Tick,
		fallback:  opts.FallbackPassword,
		sent:      opts.Submitted,
		state:     StateGate,
		remaining: opts.Duration,
		quit:      make(chan struct{}),
		changes:   make(chan struct{}, 1),
		now:       time.Now,
	}
}

// Changes signals after every visible state change. Signals coalesce;
// read Snapshot for the current state.
func (g *Gate) Changes() <-chan struct{} { return g.changes }

// Snapshot returns a copy of the current state.
func (g *Gate) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Snapshot{
		State:      g.state,
		Entry:      g.entry,
		Email:      g.email,
		Scenario:   g.scenario,
		Remaining:  g.remaining,
		CallActive: g.callActive,
		Transcript: append([]Line(nil), g.transcript...),
		Live:       g.live,
		Error:      g.errMsg,
	}
}

// EnterToken validates token with the server and, on success, unlocks the
// demo with the healthcare track selected. When the validate endpoint is
// missing or unreachable the token is compared with the fallback password.
func (g *Gate) EnterToken(ctx context.Context, token string) error {
	if err := g.requireState(StateGate); err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		g.fail(MsgTokenRequired)
		return ErrTokenRequired
	}

	err := g.api.ValidateToken(ctx, token)
	switch {
	case err == nil:
	case errors.Is(err, client.ErrEndpointNotFound):
		if !g.fallbackMatches(token) {
			g.fail(MsgInvalidPassword)
			return ErrTokenRejected
		}
		slog.Info("Validate endpoint missing, accepted fallback password")
	case errors.Is(err, client.ErrNetwork):
		if !g.fallbackMatches(token) {
			g.fail(MsgInvalidToken)
			return fmt.Errorf("%w: %v", ErrTokenRejected, err)
		}
		slog.Warn("Server unreachable, accepted fallback password", "error", err)
	default:
		msg := MsgInvalidToken
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		g.fail(msg)
		return fmt.Errorf("%w: %v", ErrTokenRejected, err)
	}

	return g.unlock(EntryToken, "", models.ScenarioHealthcare)
}

func (g *Gate) fallbackMatches(token string) bool {
	return g.fallback != "" && token == g.fallback
}

// EnterLead checks the contact form locally, submits it, and unlocks the
// demo with the lead's chosen track.
func (g *Gate) EnterLead(ctx context.Context, form client.LeadForm) error {
	if err := g.requireState(StateGate); err != nil {
		return err
	}

	sc := models.Scenario(form.Scenario)
	if !sc.Valid() {
		g.fail("Please choose a demo scenario.")
		return fmt.Errorf("%w: %q", ErrUnknownScenario, form.Scenario)
	}
	if !form.StartedAt.IsZero() && validation.IsBot(form.StartedAt, g.now()) {
		g.fail(validation.MsgTooFast)
		return fmt.Errorf("%w: submitted too fast", ErrLeadRejected)
	}
	if err := validation.Email(form.Email); err != nil {
		g.fail(validation.Message(err))
		return fmt.Errorf("%w: %v", ErrLeadRejected, err)
	}
	lead := models.Lead{Email: form.Email, Phone: form.Phone, CountryCode: form.CountryCode}
	if err := validation.Phone(lead.FullPhone()); err != nil {
		g.fail(validation.Message(err))
		return fmt.Errorf("%w: %v", ErrLeadRejected, err)
	}

	key := lead.DedupKey()
	if _, err := g.sent.Get(ctx, key); err == nil {
		g.fail(MsgAlreadySent)
		return fmt.Errorf("%w: duplicate submission", ErrLeadRejected)
	}

	if _, err := g.api.SubmitLead(ctx, form); err != nil {
		msg := MsgLeadFailed
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		g.fail(msg)
		return fmt.Errorf("%w: %v", ErrLeadRejected, err)
	}
	if err := g.sent.Set(ctx, key, true, leadDedupTTL); err != nil {
		slog.Warn("Failed to remember submitted lead", "error", err)
	}

	return g.unlock(EntryLead, strings.TrimSpace(form.Email), sc)
}

func (g *Gate) unlock(entry Entry, email string, sc models.Scenario) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrGateClosed
	}
	if g.state != StateGate {
		g.mu.Unlock()
		return ErrInvalidTransition
	}
	g.state = StateReady
	g.entry = entry
	g.email = email
	g.scenario = sc
	g.remaining = g.duration
	g.errMsg = ""
	g.mu.Unlock()

	g.notify()
	return nil
}

// SelectScenario picks the track for the next start.
func (g *Gate) SelectScenario(sc models.Scenario) error {
	if _, ok := g.catalog.Lookup(sc); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownScenario, sc)
	}

	g.mu.Lock()
	if g.state != StateReady {
		g.mu.Unlock()
		return ErrInvalidTransition
	}
	g.scenario = sc
	g.mu.Unlock()

	g.notify()
	return nil
}

// Start begins a demo for the selected track. It stays in ready when the
// track has no assistant or the device quota is used up.
func (g *Gate) Start(ctx context.Context) error {
	id, cfg, err := g.beginSession()
	if err != nil {
		return err
	}

	g.pumpOnce.Do(func() { go g.pump() })

	if err := g.voice.Start(ctx, cfg); err != nil {
		slog.Error("Failed to start voice session", "scenario", cfg.Scenario, "error", err)
		g.endSession(id, MsgStartFailed)
		return fmt.Errorf("%w: %v", ErrVoiceStart, err)
	}

	// The demo may have ended while the call was being set up.
	g.mu.Lock()
	stale := g.state != StateInDemo || g.session != id
	g.mu.Unlock()
	if stale {
		_ = g.voice.Stop()
	}
	return nil
}

func (g *Gate) beginSession() (uint64, voice.StartConfig, error) {
	g.mu.Lock()
	defer g.notify()
	defer g.mu.Unlock()

	if g.closed {
		return 0, voice.StartConfig{}, ErrGateClosed
	}
	if g.state != StateReady {
		return 0, voice.StartConfig{}, ErrInvalidTransition
	}

	info, ok := g.catalog.Lookup(g.scenario)
	if !ok || info.AssistantID == "" {
		g.errMsg = MsgConfigError
		return 0, voice.StartConfig{}, fmt.Errorf("%w: %s", ErrDemoNotConfigured, g.scenario)
	}

	if err := g.trackers[g.entry].Begin(g.email); err != nil {
		if errors.Is(err, usage.ErrLimitReached) {
			g.errMsg = limitMessage(g.quota)
			return 0, voice.StartConfig{}, ErrQuotaExceeded
		}
		slog.Warn("Device usage unavailable, starting anyway", "error", err)
	}

	g.session++
	g.state = StateInDemo
	g.remaining = g.duration
	g.callActive = false
	g.transcript = nil
	g.live = ""
	g.errMsg = ""
	stop := make(chan struct{})
	g.stopTimer = stop
	go g.countdown(g.session, stop)

	return g.session, voice.StartConfig{AssistantID: info.AssistantID, Scenario: string(info.ID)}, nil
}

// End stops a running demo.
func (g *Gate) End() error {
	g.mu.Lock()
	if g.state != StateInDemo {
		g.mu.Unlock()
		return ErrInvalidTransition
	}
	id := g.session
	g.mu.Unlock()

	g.endSession(id, "")
	return nil
}

// Restart returns from ended to ready with a fresh countdown.
func (g *Gate) Restart() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrGateClosed
	}
	if g.state != StateEnded {
		g.mu.Unlock()
		return ErrInvalidTransition
	}
	g.state = StateReady
	g.remaining = g.duration
	g.transcript = nil
	g.live = ""
	g.errMsg = ""
	g.mu.Unlock()

	g.notify()
	return nil
}

// Close ends any running demo and releases the voice client.
func (g *Gate) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	if g.state == StateInDemo {
		g.state = StateEnded
		g.live = ""
		g.callActive = false
	}
	if g.stopTimer != nil {
		close(g.stopTimer)
		g.stopTimer = nil
	}
	g.mu.Unlock()

	var err error
	g.closeOnce.Do(func() {
		close(g.quit)
		err = g.voice.Close()
	})
	g.notify()
	return err
}

// endSession moves session id to ended. Only the first caller for a
// session wins; it stops the countdown and the voice call.
func (g *Gate) endSession(id uint64, errMsg string) bool {
	g.mu.Lock()
	if g.state != StateInDemo || g.session != id {
		g.mu.Unlock()
		return false
	}
	g.state = StateEnded
	g.live = ""
	g.callActive = false
	if errMsg != "" {
		g.errMsg = errMsg
	}
	if g.stopTimer != nil {
		close(g.stopTimer)
		g.stopTimer = nil
	}
	g.mu.Unlock()

	if err := g.voice.Stop(); err != nil {
		slog.Warn("Failed to stop voice session", "error", err)
	}
	g.notify()
	return true
}

func (g *Gate) countdown(id uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(g.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			g.mu.Lock()
			if g.state != StateInDemo || g.session != id {
				g.mu.Unlock()
				return
			}
			g.remaining -= g.tick
			expired := g.remaining <= 0
			if expired {
				g.remaining = 0
			}
			g.mu.Unlock()

			if expired {
				g.endSession(id, "")
				return
			}
			g.notify()
		}
	}
}

// pump forwards voice events into the state machine until Close.
func (g *Gate) pump() {
	events := g.voice.CallEvents()
	transcripts := g.voice.Transcripts()
	for {
		select {
		case <-g.quit:
			return
		case ev := <-events:
			g.handleCallEvent(ev)
		case tr := <-transcripts:
			g.handleTranscript(tr)
		}
	}
}

func (g *Gate) handleCallEvent(ev voice.CallEvent) {
	g.mu.Lock()
	if g.state != StateInDemo {
		g.mu.Unlock()
		return
	}
	id := g.session
	if ev.Type == voice.EventCallStart {
		g.callActive = true
		g.mu.Unlock()
		g.notify()
		return
	}
	g.mu.Unlock()

	switch ev.Type {
	case voice.EventCallEnd:
		g.endSession(id, "")
	case voice.EventError:
		msg := MsgStartFailed
		if ev.Err != nil && ev.Err.Error() != "" {
			msg = ev.Err.Error()
		}
		slog.Warn("Voice session error", "error", ev.Err)
		g.endSession(id, msg)
	}
}

func (g *Gate) handleTranscript(tr voice.Transcript) {
	g.mu.Lock()
	if g.state != StateInDemo {
		g.mu.Unlock()
		return
	}
	if tr.Final {
		g.live = ""
		g.transcript = append(g.transcript, Line{Role: tr.Role, Text: tr.Text})
	} else {
		g.live = speaker(tr.Role) + ": " + tr.Text
	}
	g.mu.Unlock()
	g.notify()
}

func (g *Gate) requireState(want State) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrGateClosed
	}
	if g.state != want {
		return ErrInvalidTransition
	}
	return nil
}

func (g *Gate) fail(msg string) {
	g.mu.Lock()
	g.errMsg = msg
	g.mu.Unlock()
	g.notify()
}

func (g *Gate) notify() {
	select {
	case g.changes <- struct{}{}:
	default:
	}
}

func speaker(role string) string {
	if role == voice.RoleAssistant {
		return "Assistant"
	}
	return "You"
}

func limitMessage(q usage.Quota) string {
	days := int(q.Window / (24 * time.Hour))
	if days < 1 {
		return fmt.Sprintf("Demo limit reached. You can start up to %d demos per %s on this device.", q.Limit, q.Window)
	}
	return fmt.Sprintf("Demo limit reached. You can start up to %d demos every %d days on this device.", q.Limit, days)
}
