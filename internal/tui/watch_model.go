package tui

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/memocache"
)

// WatchState represents the current state of the watch TUI.
type WatchState int

const (
	// WatchStateLive indicates the dashboard is refreshing from the store.
	WatchStateLive WatchState = iota
	// WatchStateDetail indicates a single entry is being inspected.
	WatchStateDetail
	// WatchStateQuitting indicates the application is exiting.
	WatchStateQuitting
)

// SortField selects the entry table ordering.
type SortField int

const (
	// SortByKey orders entries by key.
	SortByKey SortField = iota
	// SortByAge orders entries oldest first.
	SortByAge
	// SortByExpiry orders entries closest to expiry first.
	SortByExpiry

	numSortFields
)

// watchRefreshInterval is how often the dashboard re-reads the store.
const watchRefreshInterval = 500 * time.Millisecond

// eventFeedLen is how many recent events the feed keeps.
const eventFeedLen = 8

// watchTickMsg triggers a store snapshot refresh.
type watchTickMsg time.Time

// cacheEventMsg delivers one store event to the feed.
type cacheEventMsg memocache.Event

// eventsClosedMsg reports that the event stream ended.
type eventsClosedMsg struct{}

// WatchModel is the Bubble Tea model for the live store dashboard. It
// refreshes a stats-and-entries snapshot on a timer and streams store events
// into a short feed.
type WatchModel struct {
	store  *memocache.Store
	events <-chan memocache.Event

	// Snapshot state
	stats       memocache.Stats
	entries     []memocache.Entry
	feed        []memocache.Event
	streamEnded bool

	// Interactive components
	entryTable  table.Model
	selectedKey string

	// Display configuration
	width  int
	height int
	sortBy SortField
	paused bool

	state WatchState

	// now is the clock used for age and expiry rendering.
	now func() time.Time

	refresh time.Duration
}

// NewWatchModel creates a dashboard over store. Events received on events are
// appended to the feed; a nil channel disables it. The model takes an initial
// snapshot so the first frame is populated.
func NewWatchModel(store *memocache.Store, events <-chan memocache.Event) *WatchModel {
	m := &WatchModel{
		store:   store,
		events:  events,
		width:   defaultWidth,
		height:  defaultHeight,
		sortBy:  SortByKey,
		state:   WatchStateLive,
		now:     time.Now,
		refresh: watchRefreshInterval,
	}
	m.snapshot()
	return m
}

// Init starts the refresh timer and the event stream reader.
func (m *WatchModel) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.nextEvent())
}

// tick schedules the next snapshot refresh.
func (m *WatchModel) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return watchTickMsg(t) })
}

// nextEvent waits for one store event. The stream is drained even while
// paused so resuming never replays a stale backlog.
func (m *WatchModel) nextEvent() tea.Cmd {
	ch := m.events
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return cacheEventMsg(ev)
	}
}

// Update handles messages and updates the model state.
func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rebuildTable()
		return m, nil

	case watchTickMsg:
		if !m.paused {
			m.snapshot()
		}
		return m, m.tick()

	case cacheEventMsg:
		if !m.paused {
			m.pushEvent(memocache.Event(msg))
		}
		return m, m.nextEvent()

	case eventsClosedMsg:
		m.streamEnded = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

// handleKeyMsg processes keyboard input.
func (m *WatchModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state == WatchStateDetail {
		return m.handleDetailKey(msg)
	}

	switch msg.String() {
	case keyQuit, keyCtrlC:
		m.state = WatchStateQuitting
		return m, tea.Quit

	case keyEnter:
		cursor := m.entryTable.Cursor()
		if cursor >= 0 && cursor < len(m.entries) {
			m.selectedKey = m.entries[cursor].Key
			m.state = WatchStateDetail
		}
		return m, nil

	case keyPause:
		m.paused = !m.paused
		if !m.paused {
			m.snapshot()
		}
		return m, nil

	case keySort:
		m.sortBy = (m.sortBy + 1) % numSortFields
		m.sortEntries()
		m.rebuildTable()
		return m, nil

	case keyInvalidate:
		cursor := m.entryTable.Cursor()
		if cursor >= 0 && cursor < len(m.entries) {
			m.store.Invalidate(m.entries[cursor].Key)
			m.snapshot()
		}
		return m, nil

	case keyClear:
		m.store.Clear()
		m.snapshot()
		return m, nil

	default:
		var cmd tea.Cmd
		m.entryTable, cmd = m.entryTable.Update(msg)
		return m, cmd
	}
}

// handleDetailKey processes keyboard input while inspecting an entry.
func (m *WatchModel) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit, keyCtrlC:
		m.state = WatchStateQuitting
		return m, tea.Quit
	case keyEsc, keyEnter:
		m.state = WatchStateLive
		m.entryTable.Focus()
		return m, nil
	}
	return m, nil
}

// snapshot re-reads stats and entries from the store and rebuilds the table.
// If the inspected entry disappeared, the detail view falls back to the list.
func (m *WatchModel) snapshot() {
	m.stats = m.store.Stats()
	m.entries = m.store.Entries()
	m.sortEntries()
	m.rebuildTable()

	if m.state == WatchStateDetail {
		if _, ok := m.selectedEntry(); !ok {
			m.state = WatchStateLive
		}
	}
}

// selectedEntry finds the inspected entry in the current snapshot.
func (m *WatchModel) selectedEntry() (memocache.Entry, bool) {
	for _, e := range m.entries {
		if e.Key == m.selectedKey {
			return e, true
		}
	}
	return memocache.Entry{}, false
}

// sortEntries orders the current snapshot by the active sort field.
func (m *WatchModel) sortEntries() {
	switch m.sortBy {
	case SortByKey:
		sort.Slice(m.entries, func(i, j int) bool {
			return m.entries[i].Key < m.entries[j].Key
		})
	case SortByAge:
		sort.Slice(m.entries, func(i, j int) bool {
			return m.entries[i].CreatedAt.Before(m.entries[j].CreatedAt)
		})
	case SortByExpiry:
		sort.Slice(m.entries, func(i, j int) bool {
			ei, ej := m.entries[i].ExpiresAt, m.entries[j].ExpiresAt
			// Entries that never expire sort last.
			if ei.IsZero() != ej.IsZero() {
				return !ei.IsZero()
			}
			return ei.Before(ej)
		})
	}
}

// pushEvent appends an event to the feed, newest first.
func (m *WatchModel) pushEvent(ev memocache.Event) {
	m.feed = append([]memocache.Event{ev}, m.feed...)
	if len(m.feed) > eventFeedLen {
		m.feed = m.feed[:eventFeedLen]
	}
}

// rebuildTable reconstructs the entry table from the current snapshot.
func (m *WatchModel) rebuildTable() {
	columns := []table.Column{
		{Title: "Key", Width: 28},        //nolint:mnd // Column width.
		{Title: "Age", Width: 10},        //nolint:mnd // Column width.
		{Title: "TTL", Width: 10},        //nolint:mnd // Column width.
		{Title: "Expires in", Width: 12}, //nolint:mnd // Column width.
		{Title: "Value", Width: 30},      //nolint:mnd // Column width.
	}

	now := m.now()
	rows := make([]table.Row, len(m.entries))
	for i, e := range m.entries {
		rows[i] = table.Row{
			truncateCell(e.Key, columns[0].Width),
			formatAge(e.Age(now)),
			formatEntryTTL(e),
			formatExpiresIn(e, now),
			truncateCell(fmt.Sprintf("%v", e.Value), columns[4].Width),
		}
	}

	height := m.height - watchSummaryHeight
	if height < minTableHeight {
		height = minTableHeight
	}

	cursor := m.entryTable.Cursor()
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = TableHeaderStyle
	s.Selected = TableSelectedStyle
	t.SetStyles(s)

	// Keep the cursor on the same row across refreshes.
	if cursor > 0 && cursor < len(rows) {
		t.SetCursor(cursor)
	}

	m.entryTable = t
}

// Paused reports whether snapshot refreshes are suspended.
func (m *WatchModel) Paused() bool {
	return m.paused
}
