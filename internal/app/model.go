// Package app wires the operator console together: the telemetry feed, the
// command console, the campaign engine, and the advisory notifier, all driven
// by a single Bubble Tea update loop. Every state transition happens inside
// Update; background goroutines only ferry stream frames into the loop.
package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JulienEnigma/instacommand/internal/advisory"
	"github.com/JulienEnigma/instacommand/internal/api"
	"github.com/JulienEnigma/instacommand/internal/campaign"
	"github.com/JulienEnigma/instacommand/internal/console"
	"github.com/JulienEnigma/instacommand/internal/export"
	"github.com/JulienEnigma/instacommand/internal/telemetry"
)

const (
	backlogTimeout  = 8 * time.Second
	commandTimeout  = 20 * time.Second
	streamChanSize  = 128
	streamBatchSize = 64
)

// filterCycle is the order ctrl+f walks through the telemetry categories.
// The empty category means "show everything".
var filterCycle = []telemetry.Category{
	"",
	telemetry.CategoryFollow,
	telemetry.CategoryStory,
	telemetry.CategoryDM,
	telemetry.CategoryEngage,
	telemetry.CategoryScan,
	telemetry.CategorySystem,
	telemetry.CategoryAdvisory,
}

// Config carries the handful of knobs the command layer resolves before the
// program starts.
type Config struct {
	BackendURL string
	ExportDir  string
}

type backlogLoadedMsg struct {
	result telemetry.BacklogResult
}

// streamStartMsg asks the update loop to dial the live stream.
type streamStartMsg struct{}

// streamEventMsg delivers a drained batch of live frames. gen ties the batch
// to the stream generation that produced it so events from a torn-down
// stream are discarded instead of corrupting the feed.
type streamEventMsg struct {
	gen     int64
	entries []telemetry.LogEntry
	ok      bool
}

type streamErrMsg struct {
	gen int64
	err error
}

type reconnectTickMsg struct{}

// commandResultMsg carries the finished dispatch for one operator command.
type commandResultMsg struct {
	gen int64
	cmd console.Command
}

type campaignTickMsg struct {
	at time.Time
}

type advisoryTickMsg struct {
	at time.Time
}

type exportDoneMsg struct {
	path string
	err  error
}

// Model is the root Bubble Tea model. All fields are owned by the update
// loop; nothing outside Update mutates them.
type Model struct {
	client     *api.Client
	feed       *telemetry.Feed
	console    *console.Console
	dispatcher *console.Dispatcher
	engine     *campaign.Engine
	notifier   *advisory.Notifier
	exports    *export.Store

	input        textinput.Model
	feedView     viewport.Model
	historyView  viewport.Model
	campaignView viewport.Model
	spin         spinner.Model

	ready  bool
	width  int
	height int

	statusText string

	filterIndex    int
	showArchived   bool
	showAdvisory   bool
	campaignCursor int

	// streamGen increments on every (re)subscription; stale stream
	// messages carry an older generation and are ignored.
	streamGen    int64
	streamCancel context.CancelFunc
	streamChan   chan telemetry.LogEntry
	streamErrs   chan error

	// dispatchGen plays the same role for in-flight commands.
	dispatchGen int64
}

// New builds the model with live collaborators. The stream is not dialed
// until Init runs.
func New(cfg Config) (Model, error) {
	exports, err := export.NewStore(cfg.ExportDir)
	if err != nil {
		return Model{}, err
	}

	client := api.New(cfg.BackendURL)

	input := textinput.New()
	input.Placeholder = "scan #hashtag, follow @user, status all..."
	input.Prompt = "> "
	input.CharLimit = 256
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	engine := campaign.NewEngine()
	engine.SeedDefaults()

	cons := console.New()
	cons.SeedDefaults()

	return Model{
		client:       client,
		feed:         telemetry.NewFeed(),
		console:      cons,
		dispatcher:   console.NewDispatcher(client),
		engine:       engine,
		notifier:     advisory.NewNotifier(),
		exports:      exports,
		input:        input,
		spin:         spin,
		showAdvisory: true,
		statusText:   "Connecting to backend...",
	}, nil
}

// Init fetches the backlog, opens the live stream, and arms the periodic
// timers. The stream dial goes through a message so the generation counter
// is bumped inside Update, the only place allowed to mutate the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		fetchBacklogCmd(m.client),
		func() tea.Msg { return streamStartMsg{} },
		campaignTickCmd(),
		advisoryTickCmd(m.notifier.NextInterval()),
		textinput.Blink,
	)
}

func fetchBacklogCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backlogTimeout)
		defer cancel()

		entries, err := client.GetLogs(ctx, telemetry.BacklogLimit)
		if err != nil {
			return backlogLoadedMsg{result: telemetry.DegradedBacklog(err, time.Now())}
		}
		return backlogLoadedMsg{result: telemetry.BacklogResult{
			Variant: telemetry.BacklogOK,
			Entries: entries,
		}}
	}
}

// startStream tears down any previous subscription and dials a fresh one
// under a new generation.
func (m *Model) startStream() tea.Cmd {
	if m.streamCancel != nil {
		m.streamCancel()
	}
	m.streamGen++
	gen := m.streamGen

	ctx, cancel := context.WithCancel(context.Background())
	m.streamCancel = cancel
	m.streamChan = make(chan telemetry.LogEntry, streamChanSize)
	m.streamErrs = make(chan error, 1)

	client := m.client
	sink := m.streamChan
	errs := m.streamErrs
	go func() {
		err := client.StreamLogs(ctx, sink)
		errs <- err
	}()

	m.feed.ApplyConnect()
	return tea.Batch(
		waitForStreamEventCmd(gen, m.streamChan),
		waitForStreamErrCmd(gen, m.streamErrs),
	)
}

// waitForStreamEventCmd blocks on the stream channel and drains whatever
// else is already buffered, so a burst of frames costs one Update pass
// instead of one per frame.
func waitForStreamEventCmd(gen int64, ch <-chan telemetry.LogEntry) tea.Cmd {
	return func() tea.Msg {
		first, ok := <-ch
		if !ok {
			return streamEventMsg{gen: gen, ok: false}
		}
		entries := []telemetry.LogEntry{first}
		for len(entries) < streamBatchSize {
			select {
			case next, more := <-ch:
				if !more {
					return streamEventMsg{gen: gen, entries: entries, ok: true}
				}
				entries = append(entries, next)
			default:
				return streamEventMsg{gen: gen, entries: entries, ok: true}
			}
		}
		return streamEventMsg{gen: gen, entries: entries, ok: true}
	}
}

func waitForStreamErrCmd(gen int64, errs <-chan error) tea.Cmd {
	return func() tea.Msg {
		return streamErrMsg{gen: gen, err: <-errs}
	}
}

func reconnectTickCmd() tea.Cmd {
	return tea.Tick(telemetry.ReconnectDelay, func(time.Time) tea.Msg {
		return reconnectTickMsg{}
	})
}

func campaignTickCmd() tea.Cmd {
	return tea.Tick(campaign.TickInterval, func(at time.Time) tea.Msg {
		return campaignTickMsg{at: at}
	})
}

func advisoryTickCmd(after time.Duration) tea.Cmd {
	return tea.Tick(after, func(at time.Time) tea.Msg {
		return advisoryTickMsg{at: at}
	})
}

func executeCmd(gen int64, dispatcher *console.Dispatcher, raw string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return commandResultMsg{gen: gen, cmd: dispatcher.Execute(ctx, raw)}
	}
}

func exportCmd(store *export.Store, entries []telemetry.LogEntry, asCSV bool) tea.Cmd {
	return func() tea.Msg {
		var (
			path string
			err  error
		)
		if asCSV {
			path, err = store.WriteCSV(entries)
		} else {
			path, err = store.WriteJSON(entries)
		}
		return exportDoneMsg{path: path, err: err}
	}
}

// Update is the single writer for all console state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizePanels()
		m.ready = true
		m.refreshFeedView()
		m.refreshHistoryView()
		m.refreshCampaignView()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case streamStartMsg:
		return m, m.startStream()

	case backlogLoadedMsg:
		m.feed.ApplyBacklog(msg.result)
		if msg.result.Variant == telemetry.BacklogDegraded {
			m.statusText = "Backend unreachable; running on local telemetry"
		} else {
			m.statusText = "Telemetry backlog loaded"
		}
		m.refreshFeedView()
		return m, nil

	case streamEventMsg:
		if msg.gen != m.streamGen {
			return m, nil
		}
		if !msg.ok {
			return m.streamLost(nil)
		}
		for _, entry := range msg.entries {
			m.feed.ApplyEvent(entry)
		}
		m.refreshFeedView()
		return m, waitForStreamEventCmd(msg.gen, m.streamChan)

	case streamErrMsg:
		if msg.gen != m.streamGen {
			return m, nil
		}
		return m.streamLost(msg.err)

	case reconnectTickMsg:
		if m.feed.Connected() {
			return m, nil
		}
		m.statusText = "Reconnecting to telemetry stream..."
		return m, m.startStream()

	case commandResultMsg:
		if msg.gen != m.dispatchGen {
			return m, nil
		}
		m.console.Finish(msg.cmd)
		m.input.SetValue("")
		if msg.cmd.Success {
			m.statusText = "Command completed"
		} else {
			m.statusText = msg.cmd.Output
		}
		m.refreshHistoryView()
		return m, nil

	case campaignTickMsg:
		m.engine.Tick()
		m.refreshCampaignView()
		return m, campaignTickCmd()

	case advisoryTickMsg:
		m.notifier.Fire(msg.at)
		return m, advisoryTickCmd(m.notifier.NextInterval())

	case exportDoneMsg:
		if msg.err != nil {
			m.statusText = "Export failed: " + msg.err.Error()
		} else {
			m.statusText = "Exported " + msg.path
		}
		return m, nil

	case spinner.TickMsg:
		if !m.console.Executing() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// streamLost marks the feed disconnected and arms a single reconnect timer.
// The buffer survives untouched.
func (m Model) streamLost(err error) (tea.Model, tea.Cmd) {
	if m.streamCancel != nil {
		m.streamCancel()
		m.streamCancel = nil
	}
	m.feed.ApplyDisconnect()
	if err != nil {
		m.statusText = "Stream lost: " + err.Error()
	} else {
		m.statusText = "Stream closed by backend"
	}
	m.refreshFeedView()
	return m, reconnectTickCmd()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.streamCancel != nil {
			m.streamCancel()
		}
		return m, tea.Quit

	case "enter":
		raw := m.input.Value()
		if !m.console.Begin(raw) {
			return m, nil
		}
		m.dispatchGen++
		m.statusText = "Executing..."
		return m, tea.Batch(
			executeCmd(m.dispatchGen, m.dispatcher, raw),
			m.spin.Tick,
		)

	case "up":
		m.console.Prev()
		m.setInput(m.console.Input())
		return m, nil

	case "down":
		m.console.Next()
		m.setInput(m.console.Input())
		return m, nil

	case "tab":
		if m.console.Complete() {
			m.setInput(m.console.Input())
		}
		return m, nil

	case "ctrl+f":
		m.filterIndex = (m.filterIndex + 1) % len(filterCycle)
		m.refreshFeedView()
		return m, nil

	case "ctrl+v":
		m.showArchived = !m.showArchived
		m.campaignCursor = 0
		m.refreshCampaignView()
		return m, nil

	case "ctrl+n":
		if n := len(m.visibleCampaigns()); n > 0 {
			m.campaignCursor = (m.campaignCursor + 1) % n
		}
		m.refreshCampaignView()
		return m, nil

	case "ctrl+b":
		if n := len(m.visibleCampaigns()); n > 0 {
			m.campaignCursor = (m.campaignCursor + n - 1) % n
		}
		m.refreshCampaignView()
		return m, nil

	case "ctrl+p":
		if c, ok := m.campaignUnderCursor(); ok {
			if m.engine.PauseToggle(c.ID) {
				m.statusText = "Toggled " + c.Codename
			} else {
				m.statusText = c.Codename + " cannot be paused or resumed"
			}
		}
		m.refreshCampaignView()
		return m, nil

	case "ctrl+a":
		if c, ok := m.campaignUnderCursor(); ok {
			if m.engine.Activate(c.ID) {
				m.statusText = "Activated " + c.Codename
			} else {
				m.statusText = c.Codename + " is not scheduled"
			}
		}
		m.refreshCampaignView()
		return m, nil

	case "ctrl+g":
		if c, ok := m.campaignUnderCursor(); ok {
			m.engine.Archive(c.ID)
			m.statusText = "Archived " + c.Codename
			m.campaignCursor = 0
		}
		m.refreshCampaignView()
		return m, nil

	case "ctrl+d":
		if c, ok := m.campaignUnderCursor(); ok {
			if _, dup := m.engine.Duplicate(c.ID); dup {
				m.statusText = "Duplicated " + c.Codename
			}
		}
		m.refreshCampaignView()
		return m, nil

	case "ctrl+y":
		if s, ok := m.notifier.Latest(); ok && !m.console.Executing() {
			m.setInput(s.Text)
			m.console.SetInput(s.Text)
		}
		return m, nil

	case "ctrl+k":
		m.notifier.Clear()
		return m, nil

	case "ctrl+s":
		m.showAdvisory = !m.showAdvisory
		return m, nil

	case "ctrl+e":
		m.statusText = "Exporting CSV..."
		return m, exportCmd(m.exports, m.feed.Snapshot(), true)

	case "ctrl+j":
		m.statusText = "Exporting JSON..."
		return m, exportCmd(m.exports, m.feed.Snapshot(), false)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.console.SetInput(m.input.Value())
	return m, cmd
}

func (m *Model) setInput(text string) {
	m.input.SetValue(text)
	m.input.CursorEnd()
}

func (m Model) currentFilter() telemetry.Category {
	return filterCycle[m.filterIndex]
}

func (m Model) visibleCampaigns() []campaign.Campaign {
	if m.showArchived {
		return m.engine.Archived()
	}
	return m.engine.Active()
}

func (m Model) campaignUnderCursor() (campaign.Campaign, bool) {
	visible := m.visibleCampaigns()
	if m.campaignCursor < 0 || m.campaignCursor >= len(visible) {
		return campaign.Campaign{}, false
	}
	return visible[m.campaignCursor], true
}
