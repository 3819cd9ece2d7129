package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"quaddeck/catalog"
	"quaddeck/deck"
	"quaddeck/midi"
	"quaddeck/router"
	"quaddeck/theme"
)

// PlaybackQuery is the read-only engine view the renderer needs.
type PlaybackQuery interface {
	GetCurrentPlaybackState(deckNum int) *deck.PlaybackInfo
}

// Library mirrors the loaded-track view of the catalog.
type Library interface {
	GetLoadedTrack(deckNum int) *catalog.Track
}

type Model struct {
	Router    *router.Router
	Engine    PlaybackQuery
	Lib       Library
	DeviceMgr *midi.DeviceManager
	Theme     *theme.Theme

	quitting  bool
	connected string // surface id, "" = none
	tempo     int
	modes     [catalog.NumDecks]string
	altA      bool
	altB      bool
	lastLine  string // most recent notable event, rendered in the footer
}

type EventMsg router.Event

type DeviceEventMsg midi.DeviceEvent

type tickMsg time.Time

func NewModel(r *router.Router, engine PlaybackQuery, lib Library, deviceMgr *midi.DeviceManager, th *theme.Theme, startTempo int) Model {
	m := Model{
		Router:    r,
		Engine:    engine,
		Lib:       lib,
		DeviceMgr: deviceMgr,
		Theme:     th,
		tempo:     startTempo,
	}
	for i := range m.modes {
		m.modes[i] = "HOT CUE"
	}
	return m
}

func ListenForEvents(r *router.Router) tea.Cmd {
	return func() tea.Msg {
		return EventMsg(<-r.Events())
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		return DeviceEventMsg(<-deviceMgr.Events())
	}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForEvents(m.Router),
		ListenForDevices(m.DeviceMgr),
		tick(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		// Positions advance against the audio clock; just redraw.
		return m, tick()

	case EventMsg:
		m.applyEvent(router.Event(msg))
		return m, ListenForEvents(m.Router)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		if event.Type == midi.DeviceConnected {
			m.connected = event.ID
			m.Router.AttachSurface(event.Surface)

			// The surface's message stream is the single control timeline.
			go func(s midi.Surface) {
				for msg := range s.Messages() {
					m.Router.HandleMessage(msg)
				}
			}(event.Surface)
		} else if event.Type == midi.DeviceDisconnected {
			if m.connected == event.ID {
				m.connected = ""
				m.Router.DetachSurface()
			}
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m *Model) applyEvent(ev router.Event) {
	switch ev.Kind {
	case router.EventTempoChange:
		m.tempo = ev.Tempo
		m.lastLine = fmt.Sprintf("tempo -> %d bpm", ev.Tempo)
	case router.EventPadModes:
		m.modes = ev.Modes
	case router.EventModeChange:
		m.lastLine = fmt.Sprintf("deck %d mode -> %s", ev.Deck, ev.Mode)
	case router.EventDeckButtons:
		m.altA, m.altB = ev.AltA, ev.AltB
	case router.EventLock:
		state := "unlocked"
		if ev.Locked {
			state = "locked"
		}
		m.lastLine = fmt.Sprintf("deck %d note 0x%02X %s", ev.Deck, ev.Number, state)
	case router.EventSyncChange:
		if len(ev.Targets) == 0 {
			m.lastLine = fmt.Sprintf("sync from deck %d: no targets", ev.Source)
		} else {
			m.lastLine = fmt.Sprintf("sync deck %d -> %v", ev.Source, ev.Targets)
		}
	case router.EventSpindown:
		m.lastLine = fmt.Sprintf("deck %d spindown", ev.Deck)
	case router.EventLoad:
		if ev.Track != nil {
			m.lastLine = fmt.Sprintf("deck %d <- %s", ev.Deck, ev.Track.Title)
		}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	activeStyle := lipgloss.NewStyle().Foreground(m.Theme.Active())
	brightStyle := lipgloss.NewStyle().Foreground(m.Theme.Bright())

	status := "no surface"
	if m.connected != "" {
		status = m.connected
	}
	header := headerStyle.Render(fmt.Sprintf("quaddeck  %3dbpm  [%s]", m.tempo, status))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")

	for d := 1; d <= catalog.NumDecks; d++ {
		t := m.Lib.GetLoadedTrack(d)
		info := m.Engine.GetCurrentPlaybackState(d)

		sym := m.Theme.Symbols.DeckIdle
		style := dimStyle
		if info != nil {
			sym = m.Theme.Symbols.DeckPlaying
			style = activeStyle
		} else if t != nil {
			sym = m.Theme.Symbols.DeckLoaded
			style = lipgloss.NewStyle().Foreground(m.Theme.FG())
		}

		// Star the deck each side's shared controls currently address.
		alt := " "
		if (d == 1 && !m.altA) || (d == 3 && m.altA) || (d == 2 && !m.altB) || (d == 4 && m.altB) {
			alt = "*"
		}

		line := fmt.Sprintf("%c deck %d%s  ", sym, d, alt)
		if t == nil {
			line += "--"
		} else {
			line += fmt.Sprintf("%-24s %-14s key %2d", t.Title, t.Artist, t.Key)
		}
		out.WriteString(style.Render(line))
		out.WriteString("\n")

		if info != nil {
			total := info.Track.SectionSeconds(info.Section)
			out.WriteString("    ")
			out.WriteString(brightStyle.Render(m.meter(info.Position, total)))
			out.WriteString(dimStyle.Render(fmt.Sprintf("  %s %5.1fs / %5.1fs  %s", info.Section, info.Position, total, m.modes[d-1])))
			out.WriteString("\n")
		} else {
			out.WriteString(dimStyle.Render(fmt.Sprintf("    %s", m.modes[d-1])))
			out.WriteString("\n")
		}
	}

	out.WriteString("\n")
	if m.lastLine != "" {
		out.WriteString(lipgloss.NewStyle().Foreground(m.Theme.Warning()).Render(m.lastLine))
		out.WriteString("\n")
	}
	out.WriteString(dimStyle.Render("q:quit  (all control via the surface)"))

	return out.String()
}

// meter renders a 24-cell position bar.
func (m Model) meter(pos, total float64) string {
	const cells = 24
	filled := 0
	if total > 0 {
		filled = int(pos / total * cells)
	}
	if filled > cells {
		filled = cells
	}
	var b strings.Builder
	for i := 0; i < cells; i++ {
		if i < filled {
			b.WriteRune(m.Theme.Symbols.Meter)
		} else {
			b.WriteRune(m.Theme.Symbols.MeterEmpty)
		}
	}
	return b.String()
}
