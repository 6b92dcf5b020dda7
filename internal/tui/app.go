// Package tui is the jamdeck terminal UI: a single bubbletea loop that owns
// the steering and session state. All state mutation happens in Update, so
// backend status reports (delivered as messages from the polling command) are
// serialized with user edits.
package tui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/jamdeck/internal/backend"
	"github.com/jask/jamdeck/internal/config"
	"github.com/jask/jamdeck/internal/database/repository"
	"github.com/jask/jamdeck/internal/service"
	"github.com/jask/jamdeck/internal/session"
	"github.com/jask/jamdeck/internal/steering"
)

type viewState string

const (
	viewMixer    viewState = "mixer"
	viewSession  viewState = "session"
	viewHistory  viewState = "history"
	viewSettings viewState = "settings"
)

type modalState string

const (
	modalNone       modalState = ""
	modalEditPrompt modalState = "editPrompt"
	modalEditURL    modalState = "editURL"
)

// Services bundles what the app needs injected.
type Services struct {
	Backend   backend.Service
	Conductor *service.Conductor
	Recall    *service.Recall
	History   *repository.SessionRepo
}

type globalKeyMap struct {
	Quit     key.Binding
	Mixer    key.Binding
	Session  key.Binding
	History  key.Binding
	Settings key.Binding
}

var globalKeys = globalKeyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Mixer:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mixer")),
	Session:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "session")),
	History:  key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
	Settings: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "settings")),
}

// App is the bubbletea model.
type App struct {
	ctx      context.Context
	cfg      config.Config
	services Services

	params *session.Parameters
	steer  *steering.State

	view   viewState
	modal  modalState
	status string
	width  int

	bpm     int
	playing bool

	// session view: cursor over style rows, then knob rows
	sessionCursor int

	// prompt edit modal
	promptInput    textinput.Model
	editingStyleID string
	suggestions    []service.Suggestion

	// base-url edit modal
	urlInput textinput.Model

	history       []repository.SessionRecord
	historyCursor int

	settingsCursor int
}

// New builds the app around fresh parameter and steering state.
func New(ctx context.Context, cfg config.Config, services Services) *App {
	bpm := cfg.Session.DefaultBPM
	if bpm <= 0 {
		bpm = 120
	}
	return &App{
		ctx:      ctx,
		cfg:      cfg,
		services: services,
		params:   session.NewParameters(),
		steer:    steering.NewState(),
		view:     viewMixer,
		bpm:      bpm,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.fetchStatusCmd(), a.tickCmd(), a.loadHistoryCmd())
}

// messages
type tickMsg time.Time

type assetsStatusMsg steering.AssetsStatus

type sessionStartedMsg repository.SessionRecord

type historyMsg []repository.SessionRecord

type suggestionsMsg []service.Suggestion

type statusMsg string

type errMsg struct{ error }

// commands
func (a *App) tickCmd() tea.Cmd {
	return tea.Tick(a.cfg.Backend.PollInterval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a *App) fetchStatusCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.ctx, a.cfg.Backend.PollInterval())
		defer cancel()
		st, err := a.services.Backend.FetchAssetsStatus(ctx)
		if err != nil {
			return errMsg{err}
		}
		return assetsStatusMsg(st)
	}
}

func (a *App) startSessionCmd() tea.Cmd {
	// Snapshot on the loop; only the send runs in the background.
	snap := service.BuildSnapshot(a.params, a.steer, a.bpm)
	return func() tea.Msg {
		rec, err := a.services.Conductor.Start(a.ctx, snap)
		if err != nil {
			return errMsg{err}
		}
		return sessionStartedMsg(rec)
	}
}

func (a *App) loadHistoryCmd() tea.Cmd {
	return func() tea.Msg {
		recs, err := a.services.History.Recent(a.ctx, 50)
		if err != nil {
			return errMsg{err}
		}
		return historyMsg(recs)
	}
}

func (a *App) suggestCmd(input string) tea.Cmd {
	return func() tea.Msg {
		sugg, err := a.services.Recall.Suggest(a.ctx, input, 5)
		if err != nil {
			return errMsg{err}
		}
		return suggestionsMsg(sugg)
	}
}

func (a *App) saveConfigCmd() tea.Cmd {
	cfg := a.cfg
	return func() tea.Msg {
		if err := config.Save(cfg); err != nil {
			return errMsg{err}
		}
		return statusMsg("config saved")
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		return a.handleKey(m)
	case tickMsg:
		return a, tea.Batch(a.fetchStatusCmd(), a.tickCmd())
	case assetsStatusMsg:
		a.applyAssetsStatus(steering.AssetsStatus(m))
	case sessionStartedMsg:
		a.playing = true
		a.status = "session started @ " + strconv.Itoa(m.BPM) + " bpm"
		return a, a.loadHistoryCmd()
	case historyMsg:
		a.history = []repository.SessionRecord(m)
		if a.historyCursor >= len(a.history) {
			a.historyCursor = 0
		}
	case suggestionsMsg:
		a.suggestions = []service.Suggestion(m)
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

// applyAssetsStatus folds a backend report into the steering state. A count
// change zeroes the weight vector without refreshing the compact intensity,
// so re-pull the compact view whenever the count moved.
func (a *App) applyAssetsStatus(st steering.AssetsStatus) {
	before, _ := a.steer.CentroidCount()
	a.steer.ApplyAssetsStatus(st)
	if after, _ := a.steer.CentroidCount(); after != before {
		a.steer.SelectCompactCentroid(a.steer.CompactIndex)
	}
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, globalKeys.Quit):
		return a, tea.Quit
	case key.Matches(m, globalKeys.Mixer):
		a.view = viewMixer
		return a, nil
	case key.Matches(m, globalKeys.Session):
		a.view = viewSession
		return a, nil
	case key.Matches(m, globalKeys.History):
		a.view = viewHistory
		return a, a.loadHistoryCmd()
	case key.Matches(m, globalKeys.Settings):
		a.view = viewSettings
		return a, nil
	}

	switch a.view {
	case viewMixer:
		return a.handleMixerKey(m)
	case viewSession:
		return a.handleSessionKey(m)
	case viewHistory:
		return a.handleHistoryKey(m)
	case viewSettings:
		return a.handleSettingsKey(m)
	}
	return a, nil
}

func (a *App) handleMixerKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "enter":
		a.status = "starting session..."
		return a, a.startSessionCmd()
	case "left":
		a.steer.SelectCompactCentroid(a.steer.CompactIndex - 1)
	case "right":
		a.steer.SelectCompactCentroid(a.steer.CompactIndex + 1)
	case "up", "k":
		a.steer.CompactIntensity = clampF(a.steer.CompactIntensity+0.05, 0, 2)
		a.steer.ApplyCompactMixer()
	case "down", "j":
		a.steer.CompactIntensity = clampF(a.steer.CompactIntensity-0.05, 0, 2)
		a.steer.ApplyCompactMixer()
	case "[":
		a.steer.Mean = clampF(a.steer.Mean-0.05, 0, 2)
	case "]":
		a.steer.Mean = clampF(a.steer.Mean+0.05, 0, 2)
	case "a":
		a.steer.ShowAdvancedCentroids = !a.steer.ShowAdvancedCentroids
	case "0":
		if k, _ := a.steer.CentroidCount(); k > 0 {
			a.steer.CompactIntensity = 0
			a.steer.ApplyCompactMixer()
		}
	}
	return a, nil
}

// knob rows below the style rows in the session view, in render order.
const (
	knobBPM = iota
	knobLoopWeight
	knobBars
	knobTemperature
	knobTopK
	knobGuidance
	knobCount
)

func (a *App) sessionRows() int { return len(a.params.Styles) + knobCount }

func (a *App) handleSessionKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	styles := len(a.params.Styles)
	switch m.String() {
	case "enter":
		if a.sessionCursor < styles {
			a.openPromptEditor(a.params.Styles[a.sessionCursor])
			return a, a.suggestCmd(a.promptInput.Value())
		}
		a.status = "starting session..."
		return a, a.startSessionCmd()
	case "up", "k":
		if a.sessionCursor > 0 {
			a.sessionCursor--
		}
	case "down", "j":
		if a.sessionCursor < a.sessionRows()-1 {
			a.sessionCursor++
		}
	case "left":
		a.adjust(-1)
	case "right":
		a.adjust(1)
	case "n":
		a.params.AddStyle("", 1.0)
		a.sessionCursor = len(a.params.Styles) - 1
	case "x", "backspace", "delete":
		if a.sessionCursor < styles {
			a.params.RemoveStyle(a.params.Styles[a.sessionCursor].ID)
			if a.sessionCursor >= a.sessionRows() {
				a.sessionCursor = a.sessionRows() - 1
			}
		}
	}
	return a, nil
}

// adjust nudges whatever the session cursor is on. The state cores do not
// clamp scalar assignment; the documented domains are enforced here.
func (a *App) adjust(dir float64) {
	styles := len(a.params.Styles)
	if a.sessionCursor < styles {
		e := a.params.Styles[a.sessionCursor]
		e.Weight = clampF(e.Weight+dir*0.05, 0, 2)
		return
	}
	switch a.sessionCursor - styles {
	case knobBPM:
		a.bpm = clampI(a.bpm+int(dir)*2, 60, 200)
	case knobLoopWeight:
		a.params.LoopWeight = clampF(a.params.LoopWeight+dir*0.05, 0, 1)
	case knobBars:
		if a.params.Bars == 4 {
			a.params.Bars = 8
		} else {
			a.params.Bars = 4
		}
	case knobTemperature:
		a.params.Temperature = clampF(a.params.Temperature+dir*0.1, 0, 4)
	case knobTopK:
		a.params.TopK = clampI(a.params.TopK+int(dir)*8, 0, 1024)
	case knobGuidance:
		a.params.GuidanceWeight = clampF(a.params.GuidanceWeight+dir*0.5, 0, 10)
	}
}

func (a *App) handleHistoryKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "up", "k":
		if a.historyCursor > 0 {
			a.historyCursor--
		}
	case "down", "j":
		if a.historyCursor < len(a.history)-1 {
			a.historyCursor++
		}
	case "r":
		return a, a.loadHistoryCmd()
	case "enter":
		if len(a.history) == 0 {
			return a, nil
		}
		a.recallRecord(a.history[a.historyCursor])
		a.view = viewSession
		a.sessionCursor = 0
		a.status = "session recalled (press enter to start)"
	}
	return a, nil
}

// recallRecord rebuilds the session parameters from a history row. Steering
// weights are not restored: centroid identity belongs to the currently
// loaded assets, not to the past session.
func (a *App) recallRecord(rec repository.SessionRecord) {
	a.params.FromPendingRequest(session.PendingRequest{
		BarsPerChunk:   rec.BarsPerChunk,
		Styles:         splitCSV(rec.Styles),
		StyleWeights:   parseWeights(rec.StyleWeights),
		LoopWeight:     rec.LoopWeight,
		Temperature:    rec.Temperature,
		TopK:           rec.TopK,
		GuidanceWeight: rec.GuidanceWeight,
	})
	a.bpm = rec.BPM
}

func (a *App) handleSettingsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "u":
		a.urlInput = textinput.New()
		a.urlInput.SetValue(a.cfg.Backend.BaseURL)
		a.urlInput.Focus()
		a.modal = modalEditURL
	case "w":
		return a, a.saveConfigCmd()
	case "up", "k":
		if a.settingsCursor > 0 {
			a.settingsCursor--
		}
	case "down", "j":
		if a.settingsCursor < 2 {
			a.settingsCursor++
		}
	case "left", "right":
		dir := 1
		if m.String() == "left" {
			dir = -1
		}
		switch a.settingsCursor {
		case 1:
			a.cfg.Backend.PollIntervalMS = clampI(a.cfg.Backend.PollIntervalMS+dir*250, 250, 30000)
		case 2:
			a.cfg.Session.DefaultBPM = clampI(a.cfg.Session.DefaultBPM+dir*2, 60, 200)
		}
	}
	return a, nil
}

func (a *App) openPromptEditor(e *session.StyleEntry) {
	a.editingStyleID = e.ID
	a.promptInput = textinput.New()
	a.promptInput.Placeholder = "style prompt, e.g. warehouse techno"
	a.promptInput.CharLimit = 120
	a.promptInput.SetValue(e.Text)
	a.promptInput.CursorEnd()
	a.promptInput.Focus()
	a.suggestions = nil
	a.modal = modalEditPrompt
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalEditPrompt:
		switch m.Type {
		case tea.KeyEsc:
			a.modal = modalNone
			return a, nil
		case tea.KeyEnter:
			text := strings.TrimSpace(a.promptInput.Value())
			for _, e := range a.params.Styles {
				if e.ID == a.editingStyleID {
					e.Text = text
					break
				}
			}
			a.modal = modalNone
			return a, nil
		case tea.KeyTab:
			if len(a.suggestions) > 0 {
				a.promptInput.SetValue(a.suggestions[0].Text)
				a.promptInput.CursorEnd()
			}
			return a, nil
		}
		before := a.promptInput.Value()
		var cmd tea.Cmd
		a.promptInput, cmd = a.promptInput.Update(m)
		if v := a.promptInput.Value(); v != before {
			return a, tea.Batch(cmd, a.suggestCmd(v))
		}
		return a, cmd
	case modalEditURL:
		switch m.Type {
		case tea.KeyEsc:
			a.modal = modalNone
			return a, nil
		case tea.KeyEnter:
			if v := strings.TrimSpace(a.urlInput.Value()); v != "" {
				a.cfg.Backend.BaseURL = v
				a.status = "base URL updated (restart to apply, [w] to persist)"
			}
			a.modal = modalNone
			return a, nil
		}
		var cmd tea.Cmd
		a.urlInput, cmd = a.urlInput.Update(m)
		return a, cmd
	}
	return a, nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func parseWeights(s string) []float64 {
	parts := splitCSV(s)
	out := make([]float64, len(parts))
	for i, p := range parts {
		w, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err == nil {
			out[i] = w
		}
	}
	return out
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampI(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
