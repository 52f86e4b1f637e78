package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/ssukssuk/planterm/internal/api"
	"github.com/ssukssuk/planterm/internal/keys"
	"github.com/ssukssuk/planterm/internal/model"
	"github.com/ssukssuk/planterm/internal/notify"
	"github.com/ssukssuk/planterm/internal/storage"
	appsync "github.com/ssukssuk/planterm/internal/sync"
	"github.com/ssukssuk/planterm/internal/ui"
	"github.com/ssukssuk/planterm/internal/ui/dashboard"
	helpview "github.com/ssukssuk/planterm/internal/ui/help"
	historyview "github.com/ssukssuk/planterm/internal/ui/history"
	loginview "github.com/ssukssuk/planterm/internal/ui/login"
	"github.com/ssukssuk/planterm/internal/ui/pairing"
	"github.com/ssukssuk/planterm/internal/ui/plantform"
	plantsview "github.com/ssukssuk/planterm/internal/ui/plants"
	settingsview "github.com/ssukssuk/planterm/internal/ui/settings"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewPairing
	ViewPlantForm
	ViewDashboard
	ViewHistory
	ViewSettings
	ViewPlants
	ViewHelp
)

// Model is the root Bubble Tea model that manages view routing, layout,
// and the background pollers.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	logger       *zap.Logger

	client     *api.Client
	prefs      storage.Storage
	reconciler *notify.Reconciler
	poller     *appsync.Poller

	loginView     loginview.Model
	pairingView   pairing.Model
	plantFormView plantform.Model
	dashView      dashboard.Model
	historyView   historyview.Model
	settingsView  settingsview.Model
	plantsView    plantsview.Model
	helpView      helpview.Model

	mainPlant     *model.Plant
	claimedDevice string
	initCmd       tea.Cmd
	ready         bool
}

// New creates the root application model.
func New(client *api.Client, prefs storage.Storage, reconciler *notify.Reconciler, poller *appsync.Poller, logger *zap.Logger) Model {
	k := keys.DefaultKeyMap()

	m := Model{
		currentView:   ViewLogin,
		keys:          k,
		logger:        logger,
		client:        client,
		prefs:         prefs,
		reconciler:    reconciler,
		poller:        poller,
		loginView:     loginview.New(80, 24),
		pairingView:   pairing.New(80, 24),
		plantFormView: plantform.New(80, 24),
		dashView:      dashboard.New(k, 80, 24),
		historyView:   historyview.New(k, 80, 24),
		settingsView:  settingsview.New(k, 80, 24),
		plantsView:    plantsview.New(k, 80, 24),
		helpView:      helpview.New(k, 80, 24),
	}

	// Decide the opening view here: Init runs on a copy, so state has
	// to be settled before the program starts.
	if client.LoggedIn() {
		m.initCmd = m.enterSession()
	} else {
		m.initCmd = m.loginView.StartLogin(client.SavedEmail())
	}

	return m
}

// Init returns the startup command chosen in New: the dashboard
// bootstrap when a credential is already stored, the login form
// otherwise.
func (m Model) Init() tea.Cmd {
	return m.initCmd
}

// enterSession starts polling and loads the data the dashboard needs.
func (m *Model) enterSession() tea.Cmd {
	m.currentView = ViewDashboard
	m.settingsView.SetMode(m.cachedMode())
	m.settingsView.SetPushEnabled(m.cachedPushEnabled())
	return tea.Batch(
		m.poller.Start(),
		m.loadPlants(),
		m.loadProfile(),
	)
}

// leaveSession stops polling and returns to the login form.
func (m *Model) leaveSession(errText string) tea.Cmd {
	m.poller.Stop()
	m.currentView = ViewLogin
	cmd := m.loginView.StartLogin(m.client.SavedEmail())
	if errText != "" {
		m.loginView.SetError(errText)
	}
	return cmd
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w := m.layout.ContentWidth()
		h := m.layout.ContentHeight()
		m.loginView.SetSize(w, h)
		m.pairingView.SetSize(w, h)
		m.plantFormView.SetSize(w, h)
		m.dashView.SetSize(w, h)
		m.historyView.SetSize(w, h)
		m.settingsView.SetSize(w, h)
		m.plantsView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	// Poller results.

	case appsync.HomeResultMsg:
		if msg.Err != nil {
			m.dashView.SetError("planter unreachable")
		} else {
			m.dashView.SetSnapshot(msg.Snapshot)
		}
		return m, m.poller.WaitForNextResult()

	case appsync.NotifUpdatedMsg:
		m.syncNotificationState()
		return m, m.poller.WaitForNextResult()

	case appsync.SessionExpiredMsg:
		return m, m.leaveSession("Session expired. Please sign in again.")

	// Login and signup.

	case loginview.SubmittedMsg:
		return m, m.doLogin(msg.Email, msg.Password, msg.Remember)

	case loginview.SignupSubmittedMsg:
		return m, m.doSignup(msg.Email, msg.Password, msg.Nickname)

	case loginview.SwitchToSignupMsg:
		return m, m.loginView.StartSignup()

	case loginview.SwitchToLoginMsg:
		return m, m.loginView.StartLogin(m.client.SavedEmail())

	case loginResultMsg:
		if msg.err != nil {
			m.loginView.SetError("Sign in failed. Check your email and password.")
			m.logger.Warn("login failed", zap.Error(msg.err))
			return m, nil
		}
		return m, m.enterSession()

	case signupResultMsg:
		if msg.err != nil {
			m.loginView.SetError("Signup failed. The email may already be in use.")
			return m, nil
		}
		cmd := m.loginView.StartLogin(msg.email)
		m.loginView.SetError("Account created. Sign in to continue.")
		return m, cmd

	// Device pairing and plant registration.

	case pairing.SerialSubmittedMsg:
		return m, m.claimDevice(msg.Serial)

	case pairing.CancelMsg:
		m.currentView = ViewDashboard
		return m, nil

	case deviceClaimedMsg:
		if msg.err != nil {
			m.pairingView.SetError("Pairing failed. Check the serial and try again.")
			return m, nil
		}
		m.claimedDevice = msg.claim.DeviceID
		return m, m.loadSpecies()

	case speciesLoadedMsg:
		if msg.err != nil {
			m.pairingView.SetError("Could not load species list.")
			return m, nil
		}
		m.plantFormView.SetSpecies(msg.species)
		m.currentView = ViewPlantForm
		return m, m.plantFormView.StartCreate()

	case plantform.PlantCreatedMsg:
		return m, m.createPlant(msg.Name, msg.SpeciesID, m.claimedDevice)

	case plantform.PlantRenamedMsg:
		return m, m.renamePlant(msg.PlantID, msg.Name)

	case plantform.CancelMsg:
		m.currentView = ViewDashboard
		return m, nil

	case plantSavedMsg:
		if msg.err != nil {
			m.dashView.SetError("saving plant failed")
		}
		m.currentView = ViewDashboard
		m.poller.RefreshHome()
		return m, m.loadPlants()

	case devicesLoadedMsg:
		if msg.err == nil {
			m.plantsView.SetDevices(msg.devices)
		}
		return m, nil

	case plantsLoadedMsg:
		if msg.err != nil {
			return m, nil
		}
		m.plantsView.SetPlants(msg.plants)
		m.mainPlant = mainPlantOf(msg.plants)
		if m.mainPlant != nil {
			m.cachePlant(m.mainPlant)
		} else if m.currentView == ViewDashboard {
			// Nothing registered yet; walk the user through pairing.
			m.currentView = ViewPairing
			return m, m.pairingView.Start()
		}
		return m, nil

	// Dashboard notification surfaces.

	case dashboard.BellOpenedMsg:
		m.reconciler.AcknowledgeList()
		m.syncNotificationState()
		return m, nil

	case dashboard.BalloonDismissedMsg:
		return m, m.ackBalloon()

	case balloonAckedMsg:
		m.syncNotificationState()
		return m, nil

	case dashboard.SensorRequestedMsg:
		if m.mainPlant != nil {
			return m, m.loadSensorCard(msg.Kind, m.mainPlant.PlantID)
		}
		return m, nil

	case sensorCardMsg:
		if msg.err == nil {
			m.dashView.SetSensorCard(msg.card)
		}
		return m, nil

	// History.

	case historyview.PeriodChangedMsg:
		if m.mainPlant != nil {
			return m, m.loadHistory(m.mainPlant.PlantID, msg.Days)
		}
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			m.historyView.SetError("history unavailable")
		} else {
			m.historyView.SetHistory(msg.history)
		}
		return m, nil

	// Settings.

	case settingsview.ModeToggledMsg:
		return m, m.changeMode(msg.Mode)

	case modeChangedMsg:
		if msg.err != nil {
			m.settingsView.SetError("changing mode failed")
			return m, nil
		}
		m.settingsView.SetMode(msg.mode)
		m.cacheSet(storage.KeyPlantMode, msg.mode)
		return m, nil

	case settingsview.PushToggledMsg:
		return m, m.updatePush(msg.Enabled)

	case pushChangedMsg:
		if msg.err != nil {
			m.settingsView.SetError("changing push setting failed")
			return m, nil
		}
		m.settingsView.SetPushEnabled(msg.enabled)
		if msg.enabled {
			m.cacheSet(storage.KeyPushEnabled, "true")
		} else {
			m.cacheSet(storage.KeyPushEnabled, "false")
		}
		return m, nil

	case settingsview.NicknameSubmittedMsg:
		return m, m.updateNickname(msg.Nickname)

	case nicknameChangedMsg:
		if msg.err != nil {
			m.settingsView.SetError("changing nickname failed")
			return m, nil
		}
		return m, m.loadProfile()

	case profileLoadedMsg:
		if msg.err == nil {
			m.settingsView.SetUser(msg.user)
			if msg.user.Mode != "" {
				m.cacheSet(storage.KeyPlantMode, msg.user.Mode)
			}
		}
		return m, nil

	case settingsview.PasswordSubmittedMsg:
		return m, m.changePassword(msg.Current, msg.Next)

	case passwordChangedMsg:
		if msg.err != nil {
			m.settingsView.SetError("changing password failed")
		}
		return m, nil

	case settingsview.LogoutRequestedMsg:
		return m, m.doLogout()

	case settingsview.WithdrawRequestedMsg:
		return m, m.doWithdraw()

	case loggedOutMsg:
		return m, m.leaveSession("")

	case tea.KeyMsg:
		if handled, mdl, cmd := m.handleGlobalKey(msg); handled {
			return mdl, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that switch views or quit, returning
// handled=false when the key should fall through to the active view.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	// Form views own the keyboard except for ctrl+c.
	formActive := m.currentView == ViewLogin ||
		m.currentView == ViewPairing ||
		m.currentView == ViewPlantForm

	switch msg.String() {
	case "ctrl+c":
		m.poller.Stop()
		return true, m, tea.Quit

	case "q":
		if m.currentView == ViewDashboard && !m.dashView.ListOpen() {
			m.poller.Stop()
			return true, m, tea.Quit
		}

	case "esc":
		if m.currentView == ViewHistory || m.currentView == ViewSettings ||
			m.currentView == ViewPlants || m.currentView == ViewHelp {
			m.currentView = ViewDashboard
			return true, m, nil
		}

	case "?":
		if formActive {
			break
		}
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return true, m, nil

	case "h":
		if m.currentView == ViewDashboard && !m.dashView.ListOpen() && m.mainPlant != nil {
			m.currentView = ViewHistory
			return true, m, m.loadHistory(m.mainPlant.PlantID, m.historyView.Period())
		}

	case "s":
		if m.currentView == ViewDashboard && !m.dashView.ListOpen() {
			m.currentView = ViewSettings
			return true, m, m.loadProfile()
		}

	case "p":
		if m.currentView == ViewDashboard && !m.dashView.ListOpen() {
			m.currentView = ViewPlants
			return true, m, tea.Batch(m.loadPlants(), m.loadDevices())
		}

	case "r":
		if m.currentView == ViewDashboard {
			m.poller.RefreshHome()
			m.poller.RefreshNotifications()
			return true, m, nil
		}
	}

	return false, m, nil
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewPairing:
		m.pairingView, cmd = m.pairingView.Update(msg)
	case ViewPlantForm:
		m.plantFormView, cmd = m.plantFormView.Update(msg)
	case ViewDashboard:
		m.dashView, cmd = m.dashView.Update(msg)
	case ViewHistory:
		m.historyView, cmd = m.historyView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	case ViewPlants:
		m.plantsView, cmd = m.plantsView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	bell := ""
	if m.currentView != ViewLogin {
		bell = m.dashView.BellIndicator()
	}
	header := m.layout.RenderHeader("ssukssuk", bell)
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewPairing:
		return m.pairingView.View()
	case ViewPlantForm:
		return m.plantFormView.View()
	case ViewDashboard:
		return m.dashView.View()
	case ViewHistory:
		return m.historyView.View()
	case ViewSettings:
		return m.settingsView.View()
	case ViewPlants:
		return m.plantsView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewLogin:
		return "enter submit | ctrl+s switch form | ctrl+c quit"
	case ViewPairing, ViewPlantForm:
		return "enter submit | esc cancel"
	case ViewHistory:
		return "tab period | esc back"
	case ViewSettings:
		return "j/k move | enter select | esc back"
	case ViewPlants:
		return "a add | enter rename | esc back"
	case ViewHelp:
		return "? close help | esc back"
	default:
		if m.dashView.ListOpen() {
			return "j/k move | esc close"
		}
		return "q quit | ? help | n bell | b balloon | h history | s settings | p plants | r refresh"
	}
}

// syncNotificationState pushes the reconciler's current surfaces into
// the dashboard.
func (m *Model) syncNotificationState() {
	m.dashView.SetNotificationState(
		m.reconciler.UnreadCount(),
		m.reconciler.BalloonCandidate(),
		m.reconciler.Notifications(),
	)
}

// cachedMode returns the locally cached care mode, defaulting to AUTO.
func (m Model) cachedMode() string {
	mode, err := m.prefs.Get(storage.KeyPlantMode)
	if err != nil || mode == "" {
		return model.ModeAuto
	}
	return mode
}

// cachedPushEnabled returns the locally cached push setting.
func (m Model) cachedPushEnabled() bool {
	v, err := m.prefs.Get(storage.KeyPushEnabled)
	return err == nil && v == "true"
}

func (m Model) cacheSet(key, value string) {
	if err := m.prefs.Set(key, value); err != nil {
		m.logger.Warn("caching preference failed",
			zap.String("key", key), zap.Error(err))
	}
}

// cachePlant remembers the main plant for the next cold start.
func (m Model) cachePlant(p *model.Plant) {
	m.cacheSet(storage.KeyPlantID, itoa(p.PlantID))
	m.cacheSet(storage.KeyPlantName, p.Name)
}

func mainPlantOf(plants []model.Plant) *model.Plant {
	if len(plants) == 0 {
		return nil
	}
	for i := range plants {
		if plants[i].IsMain {
			return &plants[i]
		}
	}
	return &plants[0]
}
