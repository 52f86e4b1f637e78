package app

import (
	"context"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/ssukssuk/planterm/internal/model"
	"github.com/ssukssuk/planterm/internal/storage"
)

// requestTimeout bounds every user-initiated API call.
const requestTimeout = 15 * time.Second

type loginResultMsg struct {
	err error
}

type signupResultMsg struct {
	email string
	err   error
}

type deviceClaimedMsg struct {
	claim *model.DeviceClaim
	err   error
}

type speciesLoadedMsg struct {
	species []model.Species
	err     error
}

type plantSavedMsg struct {
	err error
}

type plantsLoadedMsg struct {
	plants []model.Plant
	err    error
}

type devicesLoadedMsg struct {
	devices []model.Device
	err     error
}

type sensorCardMsg struct {
	card *model.SensorCard
	err  error
}

type historyLoadedMsg struct {
	history *model.History
	err     error
}

type modeChangedMsg struct {
	mode string
	err  error
}

type pushChangedMsg struct {
	enabled bool
	err     error
}

type nicknameChangedMsg struct {
	err error
}

type passwordChangedMsg struct {
	err error
}

type profileLoadedMsg struct {
	user *model.User
	err  error
}

type balloonAckedMsg struct{}

type loggedOutMsg struct{}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func (m Model) doLogin(email, password string, remember bool) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return loginResultMsg{err: client.Login(ctx, email, password, remember)}
	}
}

func (m Model) doSignup(email, password, nickname string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return signupResultMsg{
			email: email,
			err:   client.Signup(ctx, email, password, nickname),
		}
	}
}

func (m Model) claimDevice(serial string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		claim, err := client.ClaimDevice(ctx, serial)
		return deviceClaimedMsg{claim: claim, err: err}
	}
}

func (m Model) loadSpecies() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		species, err := client.ListSpecies(ctx)
		return speciesLoadedMsg{species: species, err: err}
	}
}

func (m Model) createPlant(name string, speciesID int, deviceID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		_, err := client.CreatePlant(ctx, name, speciesID, deviceID)
		return plantSavedMsg{err: err}
	}
}

func (m Model) renamePlant(plantID int, name string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return plantSavedMsg{err: client.UpdatePlant(ctx, plantID, name)}
	}
}

func (m Model) loadPlants() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		plants, err := client.ListPlants(ctx)
		return plantsLoadedMsg{plants: plants, err: err}
	}
}

func (m Model) loadDevices() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		devices, err := client.ListDevices(ctx)
		return devicesLoadedMsg{devices: devices, err: err}
	}
}

func (m Model) loadProfile() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		user, err := client.Me(ctx)
		return profileLoadedMsg{user: user, err: err}
	}
}

func (m Model) loadSensorCard(kind model.SensorKind, plantID int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		var card *model.SensorCard
		var err error
		if kind == model.SensorWater {
			card, err = client.WaterSensorCard(ctx, plantID)
		} else {
			card, err = client.NutrientSensorCard(ctx, plantID)
		}
		return sensorCardMsg{card: card, err: err}
	}
}

func (m Model) loadHistory(plantID, periodDays int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		history, err := client.PlantHistory(ctx, plantID, periodDays)
		return historyLoadedMsg{history: history, err: err}
	}
}

func (m Model) changeMode(mode string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return modeChangedMsg{mode: mode, err: client.ChangeMode(ctx, mode)}
	}
}

func (m Model) updatePush(enabled bool) tea.Cmd {
	client := m.client
	prefs := m.prefs
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()

		if enabled {
			// The service routes alerts by registered device; make sure
			// this installation is known before turning delivery on.
			deviceID, err := storage.DeviceID(prefs)
			if err != nil {
				return pushChangedMsg{enabled: enabled, err: err}
			}
			if err := client.RegisterPushToken(ctx, deviceID, "terminal", deviceID); err != nil {
				return pushChangedMsg{enabled: enabled, err: err}
			}
		}

		return pushChangedMsg{enabled: enabled, err: client.UpdatePushSetting(ctx, enabled)}
	}
}

func (m Model) updateNickname(nickname string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return nicknameChangedMsg{err: client.UpdateNickname(ctx, nickname)}
	}
}

func (m Model) changePassword(current, next string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return passwordChangedMsg{err: client.UpdatePassword(ctx, current, next)}
	}
}

func (m Model) ackBalloon() tea.Cmd {
	reconciler := m.reconciler
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		reconciler.AcknowledgeBalloon(ctx)
		return balloonAckedMsg{}
	}
}

func (m Model) doLogout() tea.Cmd {
	client := m.client
	logger := m.logger
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		if err := client.Logout(ctx); err != nil {
			// Server-side invalidation failed; local credentials are
			// already gone or will be rejected, so proceed to login.
			logger.Warn("logout failed", zap.Error(err))
		}
		return loggedOutMsg{}
	}
}

func (m Model) doWithdraw() tea.Cmd {
	client := m.client
	logger := m.logger
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		if err := client.Withdraw(ctx); err != nil {
			logger.Warn("account deletion failed", zap.Error(err))
		}
		return loggedOutMsg{}
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
