package demo

import (
	"context"
	"sync"

	"github.com/tolutally/matchbox-web/internal/client"
	"github.com/tolutally/matchbox-web/internal/voice"
)

type fakeVoice struct {
	mu       sync.Mutex
	startErr error
	starts   []voice.StartConfig
	stops    int
	closed   int

	events      chan voice.CallEvent
	transcripts chan voice.Transcript
}

func newFakeVoice() *fakeVoice {
	return &fakeVoice{
		events:      make(chan voice.CallEvent),
		transcripts: make(chan voice.Transcript),
	}
}

func (f *fakeVoice) Start(_ context.Context, cfg voice.StartConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, cfg)
	return f.startErr
}

func (f *fakeVoice) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func (f *fakeVoice) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeVoice) CallEvents() <-chan voice.CallEvent    { return f.events }
func (f *fakeVoice) Transcripts() <-chan voice.Transcript { return f.transcripts }

func (f *fakeVoice) counts() (starts, stops, closed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.starts), f.stops, f.closed
}

type fakeAPI struct {
	mu          sync.Mutex
	validateErr error
	submitErr   error
	validated   []string
	submitted   []client.LeadForm
}

func (f *fakeAPI) ValidateToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validated = append(f.validated, token)
	return f.validateErr
}

func (f *fakeAPI) SubmitLead(_ context.Context, form client.LeadForm) (*client.LeadReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = append(f.submitted, form)
	return &client.LeadReceipt{Success: true, ID: "lead-1", Scenario: form.Scenario}, nil
}
