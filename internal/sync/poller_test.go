package sync

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/ssukssuk/planterm/internal/model"
)

func newTestPoller() *Poller {
	return New(nil, nil, model.PollConfig{HomeIntervalSec: 10, NotifIntervalSec: 30}, zap.NewNop())
}

// arm puts the poller into the running state without launching the
// fetch loops, which would need a live client.
func arm(p *Poller) {
	p.mu.Lock()
	p.running = true
	p.stopCh = make(chan struct{})
	p.mu.Unlock()
}

func TestStopUnblocksOutstandingReader(t *testing.T) {
	p := newTestPoller()
	arm(p)

	cmd := p.WaitForNextResult()
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	p.Stop()

	select {
	case msg := <-done:
		assert.Nil(t, msg)
	case <-time.After(time.Second):
		t.Fatal("reader still blocked after Stop")
	}
}

func TestNotificationSignalsCoalesce(t *testing.T) {
	p := newTestPoller()
	arm(p)
	defer p.Stop()

	p.signalNotif()
	p.signalNotif()
	p.signalNotif()

	msg := p.WaitForNextResult()()
	assert.IsType(t, NotifUpdatedMsg{}, msg)

	// The collapsed signals must not replay as further messages.
	second := make(chan tea.Msg, 1)
	go func() { second <- p.WaitForNextResult()() }()
	select {
	case msg := <-second:
		t.Fatalf("unexpected second message %T", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotificationSignalSurvivesFullResultChannel(t *testing.T) {
	p := newTestPoller()
	arm(p)
	defer p.Stop()

	for i := 0; i < cap(p.resultCh); i++ {
		p.sendResult(HomeResultMsg{})
	}
	p.signalNotif()

	// Drain the backlog; the notification update must still arrive.
	sawNotif := false
	for i := 0; i < cap(p.resultCh)+1; i++ {
		if _, ok := p.WaitForNextResult()().(NotifUpdatedMsg); ok {
			sawNotif = true
		}
	}
	assert.True(t, sawNotif)
}

func TestReaderBeforeStartReturnsNothing(t *testing.T) {
	p := newTestPoller()
	assert.Nil(t, p.WaitForNextResult()())
}
