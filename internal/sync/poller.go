package sync

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/ssukssuk/planterm/internal/api"
	"github.com/ssukssuk/planterm/internal/model"
	"github.com/ssukssuk/planterm/internal/notify"
)

// fetchTimeout is the maximum time allowed for a single fetch operation.
const fetchTimeout = 30 * time.Second

// HomeResultMsg is a tea.Msg sent when a home-dashboard poll completes.
type HomeResultMsg struct {
	Snapshot *model.HomeSnapshot
	Err      error
}

// NotifUpdatedMsg is a tea.Msg sent after the notification reconciler
// has processed a fresh batch. The receiver should re-read the
// reconciler's unread count and balloon candidate.
type NotifUpdatedMsg struct{}

// SessionExpiredMsg is a tea.Msg sent when a poll fails with an
// irrecoverable authorization error. The app should route to login.
type SessionExpiredMsg struct{}

// Poller runs background loops for the home dashboard and the
// notification feed, delivering results to the Bubble Tea runtime as
// messages. It can be stopped and restarted across login sessions.
type Poller struct {
	client       *api.Client
	reconciler   *notify.Reconciler
	logger       *zap.Logger
	homeEvery    time.Duration
	notifEvery   time.Duration
	resultCh     chan tea.Msg
	notifCh      chan struct{}
	triggerHome  chan struct{}
	triggerNotif chan struct{}

	mu      gosync.Mutex
	stopCh  chan struct{}
	running bool
}

// New creates a Poller over the given client and reconciler.
func New(client *api.Client, reconciler *notify.Reconciler, cfg model.PollConfig, logger *zap.Logger) *Poller {
	return &Poller{
		client:       client,
		reconciler:   reconciler,
		logger:       logger,
		homeEvery:    time.Duration(cfg.HomeIntervalSec) * time.Second,
		notifEvery:   time.Duration(cfg.NotifIntervalSec) * time.Second,
		resultCh:     make(chan tea.Msg, 16),
		notifCh:      make(chan struct{}, 1),
		triggerHome:  make(chan struct{}, 1),
		triggerNotif: make(chan struct{}, 1),
	}
}

// Start launches the polling goroutines and returns a subscription
// command that waits for results. Calling Start on a running poller is
// a no-op.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopCh = make(chan struct{})
	stop := p.stopCh
	p.mu.Unlock()

	go p.pollHome(stop)
	go p.pollNotifications(stop)

	return p.waitForResult()
}

// Stop halts the polling goroutines. The poller may be started again
// later, after a re-login for example.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	close(p.stopCh)
	p.running = false
}

// RefreshHome triggers an immediate home poll without waiting for the
// next tick.
func (p *Poller) RefreshHome() tea.Cmd {
	select {
	case p.triggerHome <- struct{}{}:
	default:
	}
	return nil
}

// RefreshNotifications triggers an immediate notification poll.
func (p *Poller) RefreshNotifications() tea.Cmd {
	select {
	case p.triggerNotif <- struct{}{}:
	default:
	}
	return nil
}

// WaitForNextResult returns a tea.Cmd that waits for the next poll
// result. Call it after processing a poll message to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}

func (p *Poller) pollHome(stop <-chan struct{}) {
	interval := p.homeEvery
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.fetchHome()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.fetchHome()
		case <-p.triggerHome:
			p.fetchHome()
		}
	}
}

func (p *Poller) pollNotifications(stop <-chan struct{}) {
	interval := p.notifEvery
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.fetchNotifications()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.fetchNotifications()
		case <-p.triggerNotif:
			p.fetchNotifications()
		}
	}
}

func (p *Poller) fetchHome() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	snapshot, err := p.client.Home(ctx)
	if err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			p.sendResult(SessionExpiredMsg{})
			return
		}
		p.logger.Warn("home poll failed", zap.Error(err))
		p.sendResult(HomeResultMsg{Err: err})
		return
	}
	p.sendResult(HomeResultMsg{Snapshot: snapshot})
}

func (p *Poller) fetchNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	batch, err := p.client.TodayNotifications(ctx)
	if err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			p.sendResult(SessionExpiredMsg{})
			return
		}
		p.logger.Warn("notification poll failed", zap.Error(err))
		return
	}
	p.reconciler.Reconcile(batch)
	p.signalNotif()
}

// sendResult delivers a message without blocking the poll loop.
func (p *Poller) sendResult(msg tea.Msg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

// signalNotif coalesces notification updates into a single pending
// signal. The receiver re-reads the reconciler, so one signal is as
// good as many and a full result channel cannot leave the badge stale.
func (p *Poller) signalNotif() {
	select {
	case p.notifCh <- struct{}{}:
	default:
	}
}

func (p *Poller) waitForResult() tea.Cmd {
	p.mu.Lock()
	stop := p.stopCh
	p.mu.Unlock()

	return func() tea.Msg {
		if stop == nil {
			return nil
		}
		select {
		case msg := <-p.resultCh:
			return msg
		case <-p.notifCh:
			return NotifUpdatedMsg{}
		case <-stop:
			// Stopping unblocks any outstanding reader so restarts do
			// not accumulate goroutines.
			return nil
		}
	}
}
