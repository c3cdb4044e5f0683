package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/perf-review-api/pkg/config"
)

type recordingSender struct {
	mu   sync.Mutex
	name string
	sent []Intent
	err  error
}

func (s *recordingSender) Name() string { return s.name }

func (s *recordingSender) Send(ctx context.Context, intent Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, intent)
	return nil
}

func (s *recordingSender) delivered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestDispatcherDeliversToAllSenders(t *testing.T) {
	email := &recordingSender{name: "email"}
	slack := &recordingSender{name: "slack"}
	d := NewDispatcher(config.NotificationsConfig{Workers: 1}, []Sender{email, slack}, nil)
	d.Start(context.Background())
	defer d.Stop()

	d.Enqueue(Intent{Type: IntentPhaseStarted, OrganisationID: "org-1", Recipients: []string{"a@acme.test"}})

	waitFor(t, func() bool { return email.delivered() == 1 && slack.delivered() == 1 })
	email.mu.Lock()
	defer email.mu.Unlock()
	assert.Equal(t, IntentPhaseStarted, email.sent[0].Type)
	assert.Equal(t, "org-1", email.sent[0].OrganisationID)
}

func TestDispatcherToleratesSingleSenderFailure(t *testing.T) {
	broken := &recordingSender{name: "email", err: errors.New("smtp down")}
	slack := &recordingSender{name: "slack"}
	d := NewDispatcher(config.NotificationsConfig{Workers: 1}, []Sender{broken, slack}, nil)
	d.Start(context.Background())
	defer d.Stop()

	d.Enqueue(Intent{Type: IntentSubmissionComplete, OrganisationID: "org-1"})

	waitFor(t, func() bool { return slack.delivered() == 1 })
	assert.Zero(t, broken.delivered())
}

func TestNopOutboxDiscards(t *testing.T) {
	var outbox Outbox = NopOutbox{}
	require.NotPanics(t, func() {
		outbox.Enqueue(Intent{Type: IntentAllReviewsComplete})
	})
}
