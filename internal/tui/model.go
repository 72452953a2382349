// Package tui is an interactive viewer for a workspace. Panes are drawn as
// boxes filling the terminal; the keyboard and mouse drive the layout
// operations.
//
//	tab / shift+tab   cycle focus
//	h j k l           split the focused pane left, down, up, right
//	n                 add a pane at the end of the root
//	x                 close the focused pane
//	s                 swap the focused pane with the next one
//	r                 reload from the store
//	q                 quit
//
// Dragging a pane with the left mouse button and releasing it over another
// pane drops it there: near an edge it moves beside the target, in the
// middle the two panes swap.
package tui

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/panetree/pkg/layout"
	"github.com/matzehuels/panetree/pkg/render"
	"github.com/matzehuels/panetree/pkg/workspace"
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	helpText    = "tab focus · hjkl split · n new · x close · s swap · drag to move · q quit"
)

// Options configures a Model.
type Options struct {
	// Logger receives debug output. Defaults to a discarding logger.
	Logger *log.Logger

	// Changes, when set, signals that the stored workspace changed outside
	// this process. See [Watch].
	Changes <-chan struct{}
}

// Model is the bubbletea model for the pane viewer.
type Model struct {
	ctx    context.Context
	ws     *workspace.Workspace
	logger *log.Logger

	snap          workspace.Snapshot
	focus         layout.ID
	width, height int
	drag          *drag
	status        string
	failed        bool
	changes       <-chan struct{}
	feed          *feed
	unsubscribe   func()
}

// feed keeps the newest snapshot the workspace published. Its callback runs
// under the workspace lock, so it only stores and signals.
type feed struct {
	mu      sync.Mutex
	snap    workspace.Snapshot
	updated chan struct{}
}

func newFeed(snap workspace.Snapshot) *feed {
	return &feed{snap: snap, updated: make(chan struct{}, 1)}
}

func (f *feed) publish(snap workspace.Snapshot) {
	f.mu.Lock()
	f.snap = snap
	f.mu.Unlock()
	select {
	case f.updated <- struct{}{}:
	default:
	}
}

func (f *feed) latest() workspace.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

// drag is an in-progress mouse drag.
type drag struct {
	id     layout.ID
	target layout.ID
}

type resultMsg struct {
	res workspace.Result
	err error
}

type reloadMsg struct {
	err error
}

type changedMsg struct{}

// snapshotMsg reports that the workspace published a new snapshot.
type snapshotMsg struct{}

// New creates a model showing ws. The model subscribes to ws; call
// [Model.Close] when done with it.
func New(ctx context.Context, ws *workspace.Workspace, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	f := newFeed(ws.Snapshot())
	m := Model{
		ctx:         ctx,
		ws:          ws,
		logger:      opts.Logger,
		snap:        f.latest(),
		changes:     opts.Changes,
		feed:        f,
		unsubscribe: ws.Subscribe(f.publish),
		width:       80,
		height:      24,
	}
	m.refocus("")
	return m
}

// Run starts a full-screen program for ws and blocks until it exits.
func Run(ctx context.Context, ws *workspace.Workspace, opts Options) error {
	m := New(ctx, ws, opts)
	defer m.Close()
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}

// Close drops the model's workspace subscription.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Focus returns the focused pane.
func (m Model) Focus() layout.ID { return m.focus }

// Snapshot returns the snapshot being shown.
func (m Model) Snapshot() workspace.Snapshot { return m.snap }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), m.waitForSnapshot())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		return m.key(msg)
	case tea.MouseMsg:
		return m.mouse(msg)
	case resultMsg:
		m.result(msg)
	case reloadMsg:
		if msg.err != nil {
			m.setError(msg.err)
			break
		}
		m.snap = m.feed.latest()
		m.refocus("")
	case snapshotMsg:
		m.snap = m.feed.latest()
		m.refocus("")
		return m, m.waitForSnapshot()
	case changedMsg:
		return m, tea.Batch(m.reload(), m.waitForChange())
	}
	return m, nil
}

func (m Model) View() string {
	body := render.Text(m.snap.Tree, m.width, m.bodyHeight(), render.TextOptions{
		Focused: m.focus,
		Target:  m.dragTarget(),
	})
	status := m.status
	if status == "" {
		status = helpText
	}
	style := statusStyle
	if m.failed {
		style = errorStyle
	}
	line := fmt.Sprintf("%s v%d  %s", m.snap.Name, m.snap.Version, status)
	if m.height <= 1 {
		return style.Render(line)
	}
	return body + "\n" + style.Render(truncate(line, m.width))
}

func (m Model) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		m.cycle(1)
	case "shift+tab":
		m.cycle(-1)
	case "n":
		return m, m.apply(workspace.InsertRoot{})
	case "h", "left":
		return m, m.split(layout.Left)
	case "j", "down":
		return m, m.split(layout.Bottom)
	case "k", "up":
		return m, m.split(layout.Top)
	case "l", "right":
		return m, m.split(layout.Right)
	case "x":
		if m.focus != "" {
			return m, m.apply(workspace.Remove{ID: m.focus})
		}
	case "s":
		if next := m.neighbor(1); next != "" && next != m.focus {
			return m, m.apply(workspace.Swap{A: m.focus, B: next})
		}
	case "r":
		return m, m.reload()
	}
	return m, nil
}

func (m Model) mouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	frames := render.Frames(m.snap.Tree, m.view())
	id, over := render.PaneAt(m.snap.Tree, frames, msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !over {
			return m, nil
		}
		m.focus = id
		m.drag = &drag{id: id}
	case tea.MouseActionMotion:
		if m.drag == nil {
			return m, nil
		}
		m.drag.target = ""
		if over {
			m.drag.target = id
		}
	case tea.MouseActionRelease:
		if m.drag == nil {
			return m, nil
		}
		dragged := m.drag.id
		m.drag = nil
		if !over || id == dragged {
			return m, nil
		}
		pos := render.HitZone(frames[id], msg.X, msg.Y)
		m.logger.Debug("drop", "pane", dragged, "target", id, "position", pos)
		return m, m.apply(workspace.Drop{Dragged: dragged, Target: id, Position: pos})
	}
	return m, nil
}

// split opens a new pane beside the focused one, or the first pane when
// the workspace is empty.
func (m Model) split(pos layout.Position) tea.Cmd {
	if m.focus == "" {
		return m.apply(workspace.InsertRoot{})
	}
	return m.apply(workspace.InsertAt{Target: m.focus, Position: pos})
}

func (m Model) apply(op workspace.Op) tea.Cmd {
	ctx, ws := m.ctx, m.ws
	return func() tea.Msg {
		res, err := ws.Apply(ctx, op)
		return resultMsg{res: res, err: err}
	}
}

func (m Model) reload() tea.Cmd {
	ctx, ws := m.ctx, m.ws
	return func() tea.Msg {
		_, err := ws.Reload(ctx)
		return reloadMsg{err: err}
	}
}

// waitForSnapshot delivers a snapshotMsg once the workspace publishes a
// snapshot this model has not picked up yet.
func (m Model) waitForSnapshot() tea.Cmd {
	ctx, updated := m.ctx, m.feed.updated
	return func() tea.Msg {
		select {
		case <-updated:
			return snapshotMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func (m *Model) result(msg resultMsg) {
	if msg.err != nil {
		m.setError(msg.err)
		return
	}
	m.snap = m.feed.latest()
	m.failed = false
	switch {
	case msg.res.Ignored:
		m.status = fmt.Sprintf("ignored: %v", msg.res.Reason)
	case msg.res.Changed:
		m.status = ""
	default:
		m.status = "no change"
	}
	m.refocus(msg.res.Created)
}

func (m *Model) setError(err error) {
	m.logger.Debug("tui error", "err", err)
	m.status = err.Error()
	m.failed = true
}

// refocus keeps the focus on a live pane, preferring prefer when set.
func (m *Model) refocus(prefer layout.ID) {
	leaves := m.snap.Tree.Leaves()
	switch {
	case prefer != "" && slices.Contains(leaves, prefer):
		m.focus = prefer
	case slices.Contains(leaves, m.focus):
	case len(leaves) > 0:
		m.focus = leaves[0]
	default:
		m.focus = ""
	}
}

func (m *Model) cycle(step int) {
	if next := m.neighbor(step); next != "" {
		m.focus = next
	}
}

// neighbor returns the pane step places after the focused one in reading
// order, wrapping around.
func (m Model) neighbor(step int) layout.ID {
	leaves := m.snap.Tree.Leaves()
	if len(leaves) == 0 {
		return ""
	}
	i := slices.Index(leaves, m.focus)
	if i < 0 {
		return leaves[0]
	}
	n := len(leaves)
	return leaves[((i+step)%n+n)%n]
}

func (m Model) dragTarget() layout.ID {
	if m.drag == nil {
		return ""
	}
	return m.drag.target
}

func (m Model) bodyHeight() int {
	return max(m.height-1, 0)
}

func (m Model) view() render.Rect {
	return render.Rect{W: m.width, H: m.bodyHeight()}
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
