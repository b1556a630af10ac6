package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blackwell-systems/readtrack/internal/book"
	"github.com/blackwell-systems/readtrack/internal/controller"
	"github.com/blackwell-systems/readtrack/internal/loader"
	"github.com/blackwell-systems/readtrack/internal/shelf"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// View is one switchable result set inside the browser, e.g. a trending
// timeframe or one author's works.
type View struct {
	Name  string
	Fetch loader.FetchFunc
}

// BrowseConfig wires the browser to the data layer.
type BrowseConfig struct {
	Title   string
	Views   []View
	Shelves *shelf.Store
	Options loader.Options
	// Detail, when set, fetches the expanded detail text for a record.
	Detail func(ctx context.Context, rec book.Record) (string, error)
}

type browseKeys struct {
	up, down     key.Binding
	next, prev   key.Binding
	first, last  key.Binding
	view         key.Binding
	filter       key.Binding
	want, remove key.Binding
	detail, quit key.Binding
}

func newBrowseKeys() browseKeys {
	return browseKeys{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		next:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next page")),
		prev:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev page")),
		first:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "first page")),
		last:   key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "last page")),
		view:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch view")),
		filter: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		want:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "want to read")),
		remove: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "unshelve")),
		detail: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// filterCycle is the order the f key walks through.
var filterCycle = []controller.Filter{
	controller.FilterAll,
	controller.FilterShelved,
	controller.FilterUnshelved,
	controller.FilterReading,
}

type browseState int

const (
	stateLoading browseState = iota // first batch of a view in flight
	statePaging                     // a page navigation in flight
	stateBulk                       // multi-batch drain in flight
	stateReady
)

// Messages carry the generation they were issued under; anything from a
// superseded view switch is dropped on arrival.
type viewReadyMsg struct {
	gen int
	ctl *controller.List
	err error
}

type pageDoneMsg struct {
	gen int
	err error
}

type bulkDoneMsg struct {
	gen int
	err error
}

type batchMsg struct {
	gen           int
	loaded, total int
}

type detailMsg struct {
	gen  int
	text string
	err  error
}

type browseModel struct {
	cfg  BrowseConfig
	keys browseKeys

	ctl     *controller.List
	viewIdx int
	gen     int

	state   browseState
	cursor  int
	errLine string

	detail     string
	showDetail bool

	spin    spinner.Model
	prog    progress.Model
	batchCh chan batchMsg
	percent float64

	width    int
	quitting bool
}

func newBrowseModel(cfg BrowseConfig) browseModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StyleMeta
	return browseModel{
		cfg:   cfg,
		keys:  newBrowseKeys(),
		state: stateLoading,
		spin:  s,
		prog:  progress.New(progress.WithDefaultGradient()),
		width: 80,
	}
}

func (m browseModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.openView(m.viewIdx, m.gen))
}

// openView builds a fresh controller for the view and fetches its first
// batch off the Update loop.
func (m browseModel) openView(idx, gen int) tea.Cmd {
	cfg := m.cfg
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Options.Timeout)
		defer cancel()

		first, err := cfg.Views[idx].Fetch(ctx, cfg.Options.BatchSize, 0)
		if err != nil {
			return viewReadyMsg{gen: gen, err: err}
		}
		ctl := controller.NewList(cfg.Views[idx].Fetch, cfg.Shelves, cfg.Options)
		if err := ctl.Init(first); err != nil {
			return viewReadyMsg{gen: gen, err: err}
		}
		return viewReadyMsg{gen: gen, ctl: ctl}
	}
}

func (m browseModel) gotoPage(n int) tea.Cmd {
	ctl, gen := m.ctl, m.gen
	return func() tea.Msg {
		_, err := ctl.PageRequested(context.Background(), n)
		return pageDoneMsg{gen: gen, err: err}
	}
}

// runBulk drives a multi-batch operation while batch progress streams in
// over the channel.
func (m browseModel) runBulk(op func(*controller.List) error) tea.Cmd {
	ctl, gen, ch := m.ctl, m.gen, m.batchCh
	return func() tea.Msg {
		err := op(ctl)
		close(ch)
		return bulkDoneMsg{gen: gen, err: err}
	}
}

func waitForBatch(ch chan batchMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m browseModel) fetchDetail(rec book.Record) tea.Cmd {
	fn, gen := m.cfg.Detail, m.gen
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.Options.Timeout)
		defer cancel()
		text, err := fn(ctx, rec)
		return detailMsg{gen: gen, text: text, err: err}
	}
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.prog.Width = msg.Width - 10
		if m.prog.Width > 60 {
			m.prog.Width = 60
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case viewReadyMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			m.state = stateReady
			m.errLine = loadError(msg.err)
			return m, nil
		}
		m.ctl = msg.ctl
		m.state = stateReady
		m.cursor = 0
		m.errLine = ""
		return m, nil

	case pageDoneMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.state = stateReady
		m.cursor = 0
		m.errLine = ""
		if msg.err != nil {
			// Navigation aborted; the page we were on is still intact.
			m.errLine = loadError(msg.err)
		}
		return m, nil

	case bulkDoneMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.state = stateReady
		m.cursor = 0
		m.errLine = ""
		if msg.err != nil {
			m.errLine = loadError(msg.err)
		}
		return m, nil

	case batchMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.total > 0 {
			m.percent = float64(msg.loaded) / float64(msg.total)
		}
		return m, waitForBatch(m.batchCh)

	case detailMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			m.errLine = loadError(msg.err)
			return m, nil
		}
		m.detail = msg.text
		m.showDetail = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m browseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.showDetail {
		// Any other key dismisses the detail pane.
		m.showDetail = false
		return m, nil
	}
	if m.state != stateReady || m.ctl == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.down):
		if m.cursor < len(m.ctl.PageItems())-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.next):
		n := m.ctl.CurrentPage() + 1
		if n > m.ctl.EffectiveTotalPages() {
			return m, nil
		}
		m.state = statePaging
		return m, m.gotoPage(n)

	case key.Matches(msg, m.keys.prev):
		if m.ctl.CurrentPage() <= 1 {
			return m, nil
		}
		m.state = statePaging
		return m, m.gotoPage(m.ctl.CurrentPage() - 1)

	case key.Matches(msg, m.keys.first):
		m.state = statePaging
		return m, m.gotoPage(1)

	case key.Matches(msg, m.keys.last):
		return m.startBulk(func(ctl *controller.List) error {
			_, err := ctl.LastPageRequested(context.Background())
			return err
		})

	case key.Matches(msg, m.keys.view):
		if len(m.cfg.Views) < 2 {
			return m, nil
		}
		m.viewIdx = (m.viewIdx + 1) % len(m.cfg.Views)
		m.gen++
		m.state = stateLoading
		m.errLine = ""
		return m, m.openView(m.viewIdx, m.gen)

	case key.Matches(msg, m.keys.filter):
		next := nextFilter(m.ctl.Filter())
		return m.startBulk(func(ctl *controller.List) error {
			return ctl.SetFilter(context.Background(), next)
		})

	case key.Matches(msg, m.keys.want):
		return m.shelve()

	case key.Matches(msg, m.keys.remove):
		return m.unshelve()

	case key.Matches(msg, m.keys.detail):
		if m.cfg.Detail == nil {
			return m, nil
		}
		items := m.ctl.PageItems()
		if m.cursor < len(items) {
			return m, m.fetchDetail(items[m.cursor])
		}
	}

	return m, nil
}

func (m browseModel) startBulk(op func(*controller.List) error) (tea.Model, tea.Cmd) {
	m.state = stateBulk
	m.percent = 0
	m.batchCh = make(chan batchMsg, 8)
	gen, ch := m.gen, m.batchCh
	m.ctl.OnBatch = func(loaded, total int) {
		select {
		case ch <- batchMsg{gen: gen, loaded: loaded, total: total}:
		default:
		}
	}
	return m, tea.Batch(m.runBulk(op), waitForBatch(ch))
}

func (m browseModel) shelve() (tea.Model, tea.Cmd) {
	items := m.ctl.PageItems()
	if m.cursor >= len(items) {
		return m, nil
	}
	if _, err := m.cfg.Shelves.Add(shelf.WantToRead, items[m.cursor]); err != nil {
		m.errLine = err.Error()
		return m, nil
	}
	m.errLine = ""
	if err := m.ctl.Refresh(); err != nil {
		m.errLine = err.Error()
	}
	return m, nil
}

func (m browseModel) unshelve() (tea.Model, tea.Cmd) {
	items := m.ctl.PageItems()
	if m.cursor >= len(items) {
		return m, nil
	}
	if _, err := m.cfg.Shelves.RemoveEverywhere(items[m.cursor].ID); err != nil {
		m.errLine = err.Error()
		return m, nil
	}
	m.errLine = ""
	if err := m.ctl.Refresh(); err != nil {
		m.errLine = err.Error()
	}
	return m, nil
}

func nextFilter(f controller.Filter) controller.Filter {
	for i, c := range filterCycle {
		if c == f {
			return filterCycle[(i+1)%len(filterCycle)]
		}
	}
	return controller.FilterAll
}

// loadError maps loader/network failures to the short strings the status
// line shows.
func loadError(err error) string {
	switch {
	case errors.Is(err, loader.ErrTimeout):
		return "timed out fetching results — press → to retry"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return err.Error()
	}
}

func (m browseModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	title := m.cfg.Title
	if len(m.cfg.Views) > 0 {
		title += "  " + StyleMeta.Render("["+m.cfg.Views[m.viewIdx].Name+"]")
	}
	b.WriteString(StyleHeader.Render(title))
	b.WriteString("\n\n")

	// While a load is in flight its goroutine owns the controller and the
	// loader, so these frames render without touching either.
	switch m.state {
	case stateLoading:
		b.WriteString(m.spin.View() + " loading…\n")
		return StyleBorder.Render(b.String())
	case statePaging:
		b.WriteString(m.spin.View() + " loading page…\n")
		return StyleBorder.Render(b.String())
	case stateBulk:
		b.WriteString("loading all results\n")
		b.WriteString(m.prog.ViewAs(m.percent) + "\n")
		return StyleBorder.Render(b.String())
	}

	if m.showDetail {
		b.WriteString(m.detail)
		b.WriteString("\n\n" + StyleHelp.Render("press any key to go back"))
		return StyleBorder.Render(b.String())
	}

	if m.ctl == nil {
		if m.errLine != "" {
			b.WriteString(StyleError.Render(m.errLine) + "\n")
		}
		return StyleBorder.Render(b.String())
	}

	items := m.ctl.PageItems()
	if len(items) == 0 {
		b.WriteString(StyleHelp.Render("no results") + "\n")
	}
	for i, rec := range items {
		b.WriteString(renderItem(rec, i == m.cursor, m.badge(rec.ID)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	if m.errLine != "" {
		b.WriteString("\n" + StyleError.Render(m.errLine))
	}
	b.WriteString("\n" + StyleHelp.Render("←/→ pages • g/G first/last • tab view • f filter • w shelve • x unshelve • enter details • q quit"))

	return StyleBorder.Render(b.String())
}

// badge returns the shelf marker for a book, empty when unshelved.
func (m browseModel) badge(bookID string) string {
	id, found, err := m.cfg.Shelves.FindShelfOf(bookID)
	if err != nil || !found {
		return ""
	}
	return StyleShelf.Render(" [" + id.Label() + "]")
}

func (m browseModel) statusLine() string {
	p := m.ctl.Loader().Progress()

	// Page window: ‹ 4 [5] 6 ›
	lo, hi := m.ctl.VisibleRange()
	nums := make([]string, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		if n == m.ctl.CurrentPage() {
			nums = append(nums, StyleHighlight.Render(fmt.Sprintf("[%d]", n)))
		} else {
			nums = append(nums, fmt.Sprint(n))
		}
	}
	pages := fmt.Sprintf("page %s of %d", strings.Join(nums, " "), m.ctl.EffectiveTotalPages())
	loaded := fmt.Sprintf("%d of %d loaded", p.Loaded, p.Total)
	if !p.HasMore {
		loaded = fmt.Sprintf("all %d loaded", p.Loaded)
	}
	f := string(m.ctl.Filter())
	return StyleHelp.Render(pages + " • " + loaded + " • filter: " + f)
}

// RunBrowser launches the interactive paginated browser.
func RunBrowser(cfg BrowseConfig) error {
	if len(cfg.Views) == 0 {
		return fmt.Errorf("no views to browse")
	}
	p := tea.NewProgram(newBrowseModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
