package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tolutally/matchbox-web/internal/client"
	"github.com/tolutally/matchbox-web/internal/demo"
	"github.com/tolutally/matchbox-web/internal/models"
	"github.com/tolutally/matchbox-web/internal/usage"
	"github.com/tolutally/matchbox-web/internal/voice"
)

type demoFlags struct {
	token       string
	lead        bool
	name        string
	email       string
	phone       string
	countryCode string
	scenario    string
	catalog     string
	usageFile   string
	gateway     string
	publicKey   string
	fallback    string
	duration    time.Duration
	yes         bool
}

func newDemoCmd(g *globalFlags) *cobra.Command {
	var f demoFlags
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Unlock and run a timed voice demo",
		Long: "Unlock the demo with an access token (or the contact form with --lead),\n" +
			"then talk to the assistant for up to two minutes. Type q and Enter to hang up.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd, g, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.token, "token", "", "Access token (prompted when empty)")
	fl.BoolVar(&f.lead, "lead", false, "Enter through the contact form instead of a token")
	fl.StringVar(&f.name, "name", "", "Contact name")
	fl.StringVar(&f.email, "email", "", "Contact email")
	fl.StringVar(&f.phone, "phone", "", "Contact phone number")
	fl.StringVar(&f.countryCode, "country-code", "+1", "Phone country code")
	fl.StringVar(&f.scenario, "scenario", "", "Demo track: healthcare, financial or trades")
	fl.StringVar(&f.catalog, "catalog", os.Getenv("DEMOGATE_SCENARIOS"), "YAML file overriding the demo tracks")
	fl.StringVar(&f.usageFile, "usage-file", "", "Device usage file (default in the user config dir)")
	fl.StringVar(&f.gateway, "voice-gateway", os.Getenv("VAPI_GATEWAY_URL"), "Realtime voice gateway URL")
	fl.StringVar(&f.publicKey, "voice-key", os.Getenv("VAPI_PUBLIC_KEY"), "Voice gateway public key")
	fl.StringVar(&f.fallback, "fallback-password", os.Getenv("PRIVATE_DEMO_PASSWORD"), "Password accepted when the server is unreachable")
	fl.DurationVar(&f.duration, "duration", demo.DefaultDuration, "Demo length")
	fl.BoolVarP(&f.yes, "yes", "y", false, "Start without asking")
	_ = fl.MarkHidden("duration")
	return cmd
}

func runDemo(cmd *cobra.Command, g *globalFlags, f demoFlags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog := demo.DefaultCatalog(os.Getenv)
	if f.catalog != "" {
		var err error
		if catalog, err = demo.LoadCatalog(f.catalog, catalog); err != nil {
			return codeError(exitConfig, "%s", err)
		}
	}

	store, err := openUsageStore(f.usageFile)
	if err != nil {
		return err
	}

	api, err := g.apiClient()
	if err != nil {
		return err
	}

	gate := demo.NewGate(api, voice.NewWSClient(f.gateway, f.publicKey), demo.Options{
		Catalog:          catalog,
		Usage:            store,
		BypassEmails:     envList("VAPI_BYPASS_EMAILS"),
		FallbackPassword: f.fallback,
		Duration:         f.duration,
	})
	defer gate.Close()

	out := cmd.OutOrStdout()
	lines := readLines(cmd.InOrStdin())
	s := &session{ctx: ctx, gate: gate, out: out, lines: lines, ui: newRenderer(out)}

	if err := s.enter(f); err != nil {
		return err
	}
	if f.scenario != "" {
		if err := gate.SelectScenario(models.Scenario(f.scenario)); err != nil {
			return codeError(exitConfig, "%s", err)
		}
	}
	return s.loop(f.yes, catalog)
}

func openUsageStore(path string) (*usage.FileStore, error) {
	if path == "" {
		var err error
		if path, err = usage.DefaultPath(); err != nil {
			return nil, codeError(exitConfig, "%s", err)
		}
	}
	return usage.NewFileStore(path, usage.DefaultWindow), nil
}

// session is one interactive run of the demo command.
type session struct {
	ctx   context.Context
	gate  *demo.Gate
	out   io.Writer
	lines <-chan string
	ui    *renderer
}

func (s *session) enter(f demoFlags) error {
	if f.lead {
		return s.enterLead(f)
	}

	token := f.token
	for {
		if token == "" {
			var ok bool
			if token, ok = s.prompt("Access token: "); !ok {
				return codeError(exitFailure, "no token given")
			}
		}
		err := s.gate.EnterToken(s.ctx, token)
		if err == nil {
			fmt.Fprintln(s.out, "Access granted.")
			return nil
		}
		fmt.Fprintln(s.out, errorColor(s.gate.Snapshot().Error))
		if f.token != "" {
			return codeError(exitRejected, "%s", s.gate.Snapshot().Error)
		}
		token = ""
	}
}

// enterLead asks for missing contact fields. The form counts as opened
// here, so the fill-time check rejects answers given faster than a person
// could type them.
func (s *session) enterLead(f demoFlags) error {
	form := client.LeadForm{
		Name:        f.name,
		Email:       f.email,
		Phone:       f.phone,
		CountryCode: f.countryCode,
		Scenario:    f.scenario,
		Source:      "cli",
		StartedAt:   time.Now(),
	}

	fields := []struct {
		label    string
		value    *string
		optional bool
	}{
		{"Name (optional): ", &form.Name, true},
		{"Email: ", &form.Email, false},
		{"Phone: ", &form.Phone, false},
		{"Scenario [healthcare/financial/trades]: ", &form.Scenario, false},
	}
	for _, fd := range fields {
		if *fd.value != "" || (fd.optional && f.email != "") {
			continue
		}
		answer, ok := s.prompt(fd.label)
		if !ok {
			return codeError(exitFailure, "contact form not completed")
		}
		*fd.value = answer
	}
	if form.Scenario == "" {
		form.Scenario = string(models.ScenarioHealthcare)
	}

	if err := s.gate.EnterLead(s.ctx, form); err != nil {
		return codeError(exitRejected, "%s", s.gate.Snapshot().Error)
	}
	fmt.Fprintln(s.out, "Thanks! Your demo is unlocked.")
	return nil
}

func (s *session) loop(autoStart bool, catalog *demo.Catalog) error {
	for {
		snap := s.gate.Snapshot()
		info, _ := catalog.Lookup(snap.Scenario)
		fmt.Fprintf(s.out, "\nScenario: %s (%s)\n", info.Label, info.Description)

		if !autoStart {
			answer, ok := s.prompt("Press Enter to start, or q to quit: ")
			if !ok || isQuit(answer) {
				return nil
			}
		}

		if err := s.gate.Start(s.ctx); err != nil {
			msg := s.gate.Snapshot().Error
			if msg == "" {
				msg = err.Error()
			}
			switch {
			case errors.Is(err, demo.ErrQuotaExceeded):
				return codeError(exitRejected, "%s", msg)
			case errors.Is(err, demo.ErrDemoNotConfigured):
				return codeError(exitConfig, "%s", msg)
			}
			fmt.Fprintln(s.out, errorColor(msg))
		} else {
			fmt.Fprintln(s.out, faintColor("Connecting... type q and Enter to hang up."))
			s.watch()
		}

		snap = s.gate.Snapshot()
		if snap.Error != "" {
			fmt.Fprintln(s.out, errorColor(snap.Error))
		}
		fmt.Fprintln(s.out, "Demo ended.")

		if s.ctx.Err() != nil || autoStart {
			return nil
		}
		answer, ok := s.prompt("Run it again? [y/N] ")
		if !ok || !strings.EqualFold(strings.TrimSpace(answer), "y") {
			return nil
		}
		if err := s.gate.Restart(); err != nil {
			return codeError(exitFailure, "%s", err)
		}
		s.ui.reset()
	}
}

// watch renders the running demo until it ends.
func (s *session) watch() {
	lines := s.lines
	for {
		select {
		case <-s.ctx.Done():
			_ = s.gate.End()
			s.ui.render(s.gate.Snapshot())
			return
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			if isQuit(line) {
				_ = s.gate.End()
			}
		case <-s.gate.Changes():
			snap := s.gate.Snapshot()
			s.ui.render(snap)
			if snap.State != demo.StateInDemo {
				return
			}
		}
	}
}

func (s *session) prompt(msg string) (string, bool) {
	fmt.Fprint(s.out, msg)
	select {
	case <-s.ctx.Done():
		fmt.Fprintln(s.out)
		return "", false
	case line, ok := <-s.lines:
		return strings.TrimSpace(line), ok
	}
}

func isQuit(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "q", "quit", "end", "exit":
		return true
	}
	return false
}

// readLines feeds r line by line until EOF.
func readLines(r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			ch <- sc.Text()
		}
	}()
	return ch
}
