// Package dashboard renders the live activity and download-history sidebar.
//
// The Panel is a Bubble Tea model. It polls three feeds independently:
//   - library: readiness gate, nothing is drawn until it is non-null
//   - activity: job counts per queue state
//   - history: recently completed downloads
//
// Poll results and label ticks are funneled through one event channel into
// the update loop, so all state changes happen on a single goroutine.
package dashboard

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/kaizoku-dev/kzk/internal/client"
	"github.com/kaizoku-dev/kzk/internal/poll"
	"github.com/kaizoku-dev/kzk/internal/tui/layout"
	"github.com/kaizoku-dev/kzk/internal/tui/render"
)

const (
	// DefaultPollInterval is the activity and history cadence.
	DefaultPollInterval = 5 * time.Second
	// DefaultLibraryInterval is the readiness gate cadence.
	DefaultLibraryInterval = 30 * time.Second

	defaultHeight = 24
	eventBuffer   = 64
	activityRows  = len(activityTable)

	// chromeRows counts the rows outside the history viewport: two section
	// dividers, the activity rows, a spacer, the footer rule and the footer.
	chromeRows = activityRows + 5
)

// Region names used in logs.
const (
	RegionLibrary  = "library"
	RegionActivity = "activity"
	RegionHistory  = "history"
)

// Fetcher is the remote side of the dashboard. *client.Client satisfies it.
type Fetcher interface {
	Library(ctx context.Context) (*client.Library, error)
	Activity(ctx context.Context) (*client.ActivitySummary, error)
	History(ctx context.Context) ([]client.HistoryEntry, error)
	QueueURL(queue, status string) string
	CoverURL(cover string) string
}

// Options configures a Panel.
type Options struct {
	Fetcher Fetcher
	Clock   clockwork.Clock
	Logger  *slog.Logger
	Opener  Opener

	// OnResync backs the "Out of Sync" row. Nil means the row does nothing.
	OnResync func()

	PollInterval    time.Duration
	LibraryInterval time.Duration

	// Width is the preferred sidebar width in cells.
	Width  int
	Styles *Styles
}

type (
	libraryMsg  poll.Result[*client.Library]
	activityMsg poll.Result[*client.ActivitySummary]
	historyMsg  poll.Result[[]client.HistoryEntry]
)

type section int

const (
	sectionActivity section = iota
	sectionHistory
)

// Panel is the dashboard sidebar.
type Panel struct {
	opts   Options
	clock  clockwork.Clock
	logger *slog.Logger
	opener Opener
	styles Styles

	ctx    context.Context
	cancel context.CancelFunc
	events chan tea.Msg

	mu      sync.Mutex
	started bool
	group   *errgroup.Group
	closed  bool

	library  poll.Snapshot[*client.Library]
	activity poll.Snapshot[*client.ActivitySummary]
	history  poll.Snapshot[[]client.HistoryEntry]
	gateOpen bool

	rows []Row
	feed *HistoryFeed

	frame    layout.Frame
	viewport viewport.Model
	help     help.Model

	focus          section
	activityCursor int
	historyCursor  int
	notice         string
	showKeys       bool
}

// New creates a Panel. Polling starts with Init.
func New(opts Options) *Panel {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	if opts.LibraryInterval <= 0 {
		opts.LibraryInterval = DefaultLibraryInterval
	}

	if opts.Width <= 0 {
		opts.Width = layout.DefaultSidebarWidth
	}

	styles := DefaultStyles()
	if opts.Styles != nil {
		styles = *opts.Styles
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Panel{
		opts:   opts,
		clock:  opts.Clock,
		logger: opts.Logger.With(slog.String("component", "dashboard")),
		opener: opts.Opener,
		styles: styles,
		ctx:    ctx,
		cancel: cancel,
		events: make(chan tea.Msg, eventBuffer),
		help:   help.New(),
	}

	p.feed = NewHistoryFeed(p.clock, p.emit)
	p.feed.CoverURL = p.opts.Fetcher.CoverURL
	p.frame = layout.ComputeFrame(opts.Width, defaultHeight, opts.Width, chromeRows)
	p.viewport = viewport.New(p.frame.SidebarWidth, p.frame.HistoryRows)
	p.help.Width = p.frame.SidebarWidth

	return p
}

// Init starts the three pollers and begins listening for their results.
func (p *Panel) Init() tea.Cmd {
	p.start()
	return p.listen()
}

func (p *Panel) start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started || p.closed {
		return
	}

	p.started = true

	g, ctx := errgroup.WithContext(p.ctx)
	p.group = g

	library := &poll.Region[*client.Library]{
		Name: RegionLibrary, Interval: p.opts.LibraryInterval,
		Fetch: p.opts.Fetcher.Library, Clock: p.clock, Logger: p.logger,
	}
	activity := &poll.Region[*client.ActivitySummary]{
		Name: RegionActivity, Interval: p.opts.PollInterval,
		Fetch: p.opts.Fetcher.Activity, Clock: p.clock, Logger: p.logger,
	}
	history := &poll.Region[[]client.HistoryEntry]{
		Name: RegionHistory, Interval: p.opts.PollInterval,
		Fetch: p.opts.Fetcher.History, Clock: p.clock, Logger: p.logger,
	}

	g.Go(func() error {
		return library.Run(ctx, func(r poll.Result[*client.Library]) { p.emit(libraryMsg(r)) })
	})
	g.Go(func() error {
		return activity.Run(ctx, func(r poll.Result[*client.ActivitySummary]) { p.emit(activityMsg(r)) })
	})
	g.Go(func() error {
		return history.Run(ctx, func(r poll.Result[[]client.HistoryEntry]) { p.emit(historyMsg(r)) })
	})

	p.logger.Debug("dashboard polling started",
		slog.String("event.type", "dashboard.start"),
		slog.Duration("poll.interval", p.opts.PollInterval),
		slog.Duration("poll.library_interval", p.opts.LibraryInterval),
	)
}

// Close stops polling, waits for the pollers to exit and unmounts every
// label. Call it after the program has stopped.
func (p *Panel) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}

	p.closed = true
	group := p.group
	p.mu.Unlock()

	p.cancel()

	var err error
	if group != nil {
		err = group.Wait()
	}

	p.feed.Close()

	p.logger.Debug("dashboard stopped", slog.String("event.type", "dashboard.stop"))

	return err
}

// emit queues msg for the update loop. It drops msg once the panel closes.
func (p *Panel) emit(msg tea.Msg) {
	select {
	case p.events <- msg:
	case <-p.ctx.Done():
	}
}

// listen waits for the next queued event.
func (p *Panel) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-p.events:
			return msg
		case <-p.ctx.Done():
			return nil
		}
	}
}

// Update implements tea.Model.
func (p *Panel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.resize(msg.Width, msg.Height)
		return p, nil

	case libraryMsg:
		p.applyLibrary(poll.Result[*client.Library](msg))
		return p, p.listen()

	case activityMsg:
		p.applyActivity(poll.Result[*client.ActivitySummary](msg))
		return p, p.listen()

	case historyMsg:
		p.applyHistory(poll.Result[[]client.HistoryEntry](msg))
		return p, p.listen()

	case labelTickMsg:
		if p.feed.Tick(msg) {
			p.refreshHistory()
		}

		return p, p.listen()

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	return p, nil
}

func (p *Panel) applyLibrary(r poll.Result[*client.Library]) {
	if !p.library.Apply(r) {
		p.logFailure(RegionLibrary, &p.library)
		return
	}

	lib, _ := p.library.Value()
	wasOpen := p.gateOpen
	p.gateOpen = lib != nil

	switch {
	case p.gateOpen && !wasOpen:
		p.logger.Info("library ready, showing dashboard",
			slog.String("event.type", "dashboard.gate.open"),
			slog.String("library.id", lib.ID),
			slog.String("library.path", lib.Path),
		)
	case !p.gateOpen && wasOpen:
		p.logger.Info("library no longer reported, hiding dashboard",
			slog.String("event.type", "dashboard.gate.close"),
		)
	}
}

func (p *Panel) applyActivity(r poll.Result[*client.ActivitySummary]) {
	if r.Err == nil && r.Value == nil {
		r.Err = errNilActivity
	}

	if !p.activity.Apply(r) {
		p.logFailure(RegionActivity, &p.activity)
		return
	}

	summary, _ := p.activity.Value()
	p.rows = ActivityRows(*summary, p.opts.Fetcher.QueueURL, p.opts.OnResync)

	for _, row := range p.rows {
		if err := row.Validate(); err != nil {
			p.logger.Error("invalid activity row", slog.String("error", err.Error()))
		}
	}
}

func (p *Panel) applyHistory(r poll.Result[[]client.HistoryEntry]) {
	if !p.history.Apply(r) {
		p.logFailure(RegionHistory, &p.history)
		return
	}

	entries, _ := p.history.Value()

	mounted, unmounted := p.feed.Reconcile(entries)
	if mounted > 0 || unmounted > 0 {
		p.logger.Debug("history updated",
			slog.String("event.type", "dashboard.history.reconcile"),
			slog.Int("history.mounted", mounted),
			slog.Int("history.unmounted", unmounted),
			slog.Int("history.size", p.feed.Len()),
		)
	}

	p.historyCursor = clamp(p.historyCursor, 0, p.feed.Len()-1)
	p.refreshHistory()
}

// pollState is the failure bookkeeping of a region snapshot.
type pollState interface {
	Failures() int
	Err() error
	Loaded() bool
	Seq() uint64
	Updated() time.Time
}

// logFailure reports a failed poll. The first failure of a streak and every
// tenth after it go out at warn level, the rest at debug.
func (p *Panel) logFailure(region string, state pollState) {
	failures := state.Failures()

	level := slog.LevelDebug
	if failures == 1 || failures%10 == 0 {
		level = slog.LevelWarn
	}

	attrs := []any{
		slog.String("event.type", "dashboard.poll.error"),
		slog.String("region", region),
		slog.Int("poll.consecutive_failures", failures),
		slog.String("error", errString(state.Err())),
	}

	if state.Loaded() {
		attrs = append(attrs,
			slog.Uint64("poll.last_good_seq", state.Seq()),
			slog.Time("poll.last_good_at", state.Updated()),
		)
	}

	p.logger.Log(p.ctx, level, "poll failed, keeping last good state", attrs...)
}

func (p *Panel) resize(width, height int) {
	p.frame = layout.ComputeFrame(width, height, p.opts.Width, chromeRows)
	p.viewport.Width = p.frame.SidebarWidth
	p.viewport.Height = p.frame.HistoryRows
	p.help.Width = p.frame.SidebarWidth
	p.refreshHistory()
}

func (p *Panel) focusedNode() int {
	if p.focus != sectionHistory || p.feed.Len() == 0 {
		return -1
	}

	return p.historyCursor
}

func (p *Panel) refreshHistory() {
	p.viewport.SetContent(p.feed.Render(p.frame.SidebarWidth, p.focusedNode(), p.styles))
}

func (p *Panel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p.notice = ""

	switch {
	case key.Matches(msg, keys.Quit):
		return p, tea.Quit

	case key.Matches(msg, keys.Help):
		p.showKeys = !p.showKeys

	case key.Matches(msg, keys.Switch):
		if p.focus == sectionActivity {
			p.focus = sectionHistory
		} else {
			p.focus = sectionActivity
		}

		p.refreshHistory()
		p.ensureVisible()

	case key.Matches(msg, keys.Up):
		p.moveCursor(-1)

	case key.Matches(msg, keys.Down):
		p.moveCursor(1)

	case key.Matches(msg, keys.PageUp):
		p.viewport.SetYOffset(p.viewport.YOffset - p.viewport.Height)

	case key.Matches(msg, keys.PageDown):
		p.viewport.SetYOffset(p.viewport.YOffset + p.viewport.Height)

	case key.Matches(msg, keys.Open):
		p.activate()
	}

	return p, nil
}

func (p *Panel) moveCursor(delta int) {
	if p.focus == sectionActivity {
		p.activityCursor = clamp(p.activityCursor+delta, 0, activityRows-1)
		return
	}

	p.historyCursor = clamp(p.historyCursor+delta, 0, p.feed.Len()-1)
	p.refreshHistory()
	p.ensureVisible()
}

func (p *Panel) ensureVisible() {
	node := p.focusedNode()
	if node < 0 {
		return
	}

	top := p.feed.Offset(node, node, p.frame.SidebarWidth)
	bottom := p.feed.Offset(node+1, node, p.frame.SidebarWidth) - 1

	switch {
	case top < p.viewport.YOffset:
		p.viewport.SetYOffset(top)
	case bottom >= p.viewport.YOffset+p.viewport.Height:
		p.viewport.SetYOffset(bottom - p.viewport.Height + 1)
	}
}

func (p *Panel) activate() {
	if p.focus != sectionActivity || len(p.rows) == 0 {
		return
	}

	row := p.rows[p.activityCursor]
	if err := row.Activate(p.opener); err != nil {
		p.notice = "Could not open " + row.Label
		p.logger.Warn("activity row failed",
			slog.String("event.type", "dashboard.row.activate"),
			slog.String("category", string(row.Category)),
			slog.String("error", err.Error()),
		)

		return
	}

	p.logger.Debug("activity row activated",
		slog.String("event.type", "dashboard.row.activate"),
		slog.String("category", string(row.Category)),
		slog.String("target", row.Target),
	)
}

// View implements tea.Model. It is empty until the library gate opens and
// whenever the terminal is too narrow for the sidebar.
func (p *Panel) View() string {
	if !p.gateOpen || !p.frame.SidebarVisible {
		return ""
	}

	width := p.frame.SidebarWidth

	parts := []string{
		p.divider("Activities", width),
		p.activityView(width),
		"",
		p.divider("Latest Downloads", width),
		p.historyView(width),
		p.styles.Divider.Render(strings.Repeat("┈", width)),
		p.footer(width),
	}

	return strings.Join(parts, "\n")
}

func (p *Panel) activityView(width int) string {
	var body string

	if !p.activity.Loaded() {
		body = renderSkeleton(width, p.styles)
	} else {
		focused := -1
		if p.focus == sectionActivity {
			focused = p.activityCursor
		}

		body = renderActivity(p.rows, width, focused, p.styles)
	}

	return padLines(body, activityRows)
}

func (p *Panel) historyView(width int) string {
	if p.showKeys {
		return padLines(p.help.FullHelpView(keys.FullHelp()), p.frame.HistoryRows)
	}

	if !p.history.Loaded() {
		return padLines(renderSkeleton(width, p.styles), p.frame.HistoryRows)
	}

	return p.viewport.View()
}

func (p *Panel) divider(title string, width int) string {
	rule := width - render.VisibleLength(title) - 1
	if rule < 0 {
		rule = 0
	}

	return p.styles.Dimmed.Render(title) + " " + p.styles.Divider.Render(strings.Repeat("─", rule))
}

func (p *Panel) footer(width int) string {
	if p.notice != "" {
		return p.styles.Notice.Render(render.Truncate(p.notice, width))
	}

	return render.Truncate(p.help.ShortHelpView(keys.ShortHelp()), width)
}

// padLines pads s with empty lines until it has n lines.
func padLines(s string, n int) string {
	lines := strings.Count(s, "\n") + 1
	if lines >= n {
		return s
	}

	return s + strings.Repeat("\n", n-lines)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}

	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}

func errString(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
