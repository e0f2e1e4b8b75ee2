package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/costgraph/pkg/details"
	errs "github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/flow"
	"github.com/matzehuels/costgraph/pkg/graph"
	"github.com/matzehuels/costgraph/pkg/pipeline"
)

const (
	// frameInterval paces the animation at roughly 30 frames per second.
	frameInterval = 33 * time.Millisecond

	// chromeLines is the number of rows used by header, legend and help.
	chromeLines = 4

	panelWidth = 38
)

// watchCommand creates the watch command, an animated terminal view of a
// pipeline graph.
func (c *CLI) watchCommand() *cobra.Command {
	var flags runFlags
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "watch <pipeline>",
		Short: "Show a pipeline graph with animated data flow",
		Long: `Show a pipeline graph with animated data flow.

Particles travel along every edge. Keys:
  arrows   pan             +/-  zoom          0  fit
  tab      select node/edge                   enter  details
  H/J/K/L  move the selected node             r  refresh
  q        quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Pipeline = args[0]
			opts.Provider = flags.provider
			opts.Refresh = flags.refresh
			if err := pipeline.ValidateEngine(opts.Engine); err != nil {
				return err
			}
			return c.runWatch(cmd, opts, flags)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVar(&opts.Engine, "engine", pipeline.DefaultEngine, "graphviz layout engine: fdp, dot")

	return cmd
}

// loadFunc loads a run and lays out its graph.
type loadFunc func(ctx context.Context, refresh bool) (*pipeline.Result, graph.Positions, error)

func (c *CLI) runWatch(cmd *cobra.Command, opts pipeline.Options, flags runFlags) error {
	ctx := cmd.Context()

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close(ctx)

	load := func(ctx context.Context, refresh bool) (*pipeline.Result, graph.Positions, error) {
		o := opts
		o.Refresh = o.Refresh || refresh
		res, err := c.loadResult(ctx, runner, o, flags)
		if err != nil {
			return nil, nil, err
		}
		return res, pipeline.ComputeLayout(ctx, res.Graph, o), nil
	}

	var (
		res *pipeline.Result
		pos graph.Positions
	)
	err = c.spin(ctx, cmd.ErrOrStderr(), "Fetching "+opts.Pipeline+"...", func() (err error) {
		res, pos, err = load(ctx, false)
		return err
	})
	if err != nil {
		return err
	}

	// Log lines would tear the full-screen view.
	c.Logger.SetOutput(io.Discard)
	defer c.Logger.SetOutput(cmd.ErrOrStderr())

	m := newWatchModel(ctx, opts.Pipeline, opts.Provider, res, pos, load)
	defer m.anim.Detach()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(cmd.OutOrStdout()))
	_, err = p.Run()
	return err
}

// =============================================================================
// watchModel - animated graph view
// =============================================================================

type frameMsg time.Time

type loadedMsg struct {
	res *pipeline.Result
	pos graph.Positions
	err error
}

// watchModel is the bubbletea model of the watch view. The canvas is the
// animator's host and a manual scheduler fired on every frame tick delivers
// its frames, so the animator only runs inside Update.
type watchModel struct {
	ctx      context.Context
	pipeline string
	provider string
	load     loadFunc

	res    *pipeline.Result
	err    error
	canvas *canvas
	sched  *flow.ManualScheduler
	anim   *flow.Animator

	selection   int // index into selectable IDs, -1 for none
	showDetails bool
	loading     bool
	width       int
	height      int
}

func newWatchModel(ctx context.Context, name, provider string, res *pipeline.Result, pos graph.Positions, load loadFunc) watchModel {
	m := watchModel{
		ctx:       ctx,
		pipeline:  name,
		provider:  provider,
		load:      load,
		res:       res,
		canvas:    newCanvas(80, 20),
		sched:     &flow.ManualScheduler{},
		selection: -1,
		width:     80,
		height:    20 + chromeLines,
	}
	m.canvas.setGraph(m.graph(), pos)
	m.anim = flow.Attach(m.canvas, m.sched, m.graph())
	m.canvas.Redraw()
	return m
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m watchModel) Init() tea.Cmd {
	return frameTick()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.sched.Fire()
		return m, frameTick()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layoutCanvas()
		m.canvas.fit()
		m.canvas.Redraw()
		return m, nil

	case loadedMsg:
		m.loading = false
		m.selection, m.showDetails = -1, false
		if msg.err != nil {
			m.err, m.res = msg.err, nil
			m.anim.Detach()
			m.canvas.setGraph(nil, nil)
		} else {
			m.err, m.res = nil, msg.res
			m.canvas.setGraph(m.graph(), msg.pos)
			m.anim.Reattach(m.graph())
		}
		m.layoutCanvas()
		m.canvas.Redraw()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m watchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.anim.Detach()
		return m, tea.Quit
	case "esc":
		if !m.showDetails {
			m.anim.Detach()
			return m, tea.Quit
		}
		m.showDetails = false
		m.layoutCanvas()
	case "up":
		m.canvas.pan(0, -2)
	case "down":
		m.canvas.pan(0, 2)
	case "left":
		m.canvas.pan(-4, 0)
	case "right":
		m.canvas.pan(4, 0)
	case "+", "=":
		m.canvas.zoom(1.25)
	case "-":
		m.canvas.zoom(0.8)
	case "0":
		m.canvas.fit()
	case "tab":
		m.selectNext(1)
	case "shift+tab":
		m.selectNext(-1)
	case "enter":
		if m.selected() != "" {
			m.showDetails = !m.showDetails
			m.layoutCanvas()
		}
	case "H":
		m.nudge(-1, 0)
	case "J":
		m.nudge(0, 1)
	case "K":
		m.nudge(0, -1)
	case "L":
		m.nudge(1, 0)
	case "r":
		if !m.loading {
			m.loading = true
			return m, m.refresh()
		}
	}
	m.canvas.Redraw()
	return m, nil
}

// refresh refetches bypassing the cache and re-lays out the graph.
func (m watchModel) refresh() tea.Cmd {
	ctx, load := m.ctx, m.load
	return func() tea.Msg {
		res, pos, err := load(ctx, true)
		return loadedMsg{res: res, pos: pos, err: err}
	}
}

func (m watchModel) graph() *graph.Graph {
	if m.res == nil {
		return nil
	}
	return m.res.Graph
}

// layoutCanvas sizes the canvas to the window, leaving room for the details
// panel when it is open.
func (m *watchModel) layoutCanvas() {
	w := m.width
	if m.showDetails {
		w -= panelWidth
	}
	m.canvas.resize(w, m.height-chromeLines)
}

// selectable returns node IDs followed by edge IDs.
func (m watchModel) selectable() []string {
	g := m.graph()
	if g == nil {
		return nil
	}
	ids := make([]string, 0, len(g.Nodes)+len(g.Edges))
	for _, n := range g.Nodes {
		ids = append(ids, n.ID)
	}
	for _, e := range g.Edges {
		ids = append(ids, e.ID)
	}
	return ids
}

func (m watchModel) selected() string {
	ids := m.selectable()
	if m.selection < 0 || m.selection >= len(ids) {
		return ""
	}
	return ids[m.selection]
}

func (m *watchModel) selectNext(step int) {
	ids := m.selectable()
	if len(ids) == 0 {
		return
	}
	m.selection = ((m.selection+step)%len(ids) + len(ids)) % len(ids)
	m.canvas.selected = ids[m.selection]
}

func (m *watchModel) nudge(dcol, drow int) {
	if id := m.selected(); id != "" {
		m.canvas.nudge(id, dcol, drow)
	}
}

// panel builds the details panel of the current selection.
func (m watchModel) panel() (details.Panel, bool) {
	g, id := m.graph(), m.selected()
	if g == nil || id == "" {
		return details.Panel{}, false
	}
	if n, ok := g.Node(id); ok {
		return details.NewPanel(n.Label, orEmpty(n.Details)), true
	}
	if e, ok := g.Edge(id); ok {
		heading := nodeLabel(g, e.From) + " " + iconArrow + " " + nodeLabel(g, e.To)
		p := details.NewPanel(heading, orEmpty(e.Properties))
		if p.Type == "" {
			p.Type = "Cost " + e.CostLabel
		}
		return p, true
	}
	return details.Panel{}, false
}

func nodeLabel(g *graph.Graph, id string) string {
	if n, ok := g.Node(id); ok {
		return n.Label
	}
	return id
}

func orEmpty(m *details.Map) *details.Map {
	if m == nil {
		return details.NewMap()
	}
	return m
}

// =============================================================================
// View
// =============================================================================

var (
	stylePanel      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1).Width(panelWidth - 2)
	stylePanelLabel = lipgloss.NewStyle().Foreground(colorGray)
	styleError      = lipgloss.NewStyle().Foreground(colorRed)
)

func (m watchModel) View() string {
	var b strings.Builder

	status := ""
	switch {
	case m.loading:
		status = StyleDim.Render("  refreshing…")
	case m.anim.State() == flow.Running:
		status = StyleDim.Render(fmt.Sprintf("  %d particles", len(m.anim.Particles())))
	}
	b.WriteString(StyleTitle.Render(m.pipeline) + StyleDim.Render(" ("+m.provider+")") + status)
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(styleError.Render(iconError + " " + errs.UserMessage(m.err)))
		b.WriteString(strings.Repeat("\n", max(m.canvas.height, 1)))
	case m.graph().IsEmpty():
		b.WriteString(StyleDim.Render("no data"))
		b.WriteString(strings.Repeat("\n", max(m.canvas.height, 1)))
	default:
		body := m.canvas.String()
		if p, ok := m.panel(); ok && m.showDetails {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, renderPanel(p))
		}
		b.WriteString(body)
		b.WriteString("\n")
	}

	legend := StyleDim.Render(legendTitle(m.provider) + ": ")
	if g := m.graph(); g != nil {
		legend += legendLine(g.Legend())
	}
	b.WriteString(legend)
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("arrows pan · +/- zoom · tab select · enter details · H/J/K/L move · r refresh · q quit"))
	return b.String()
}

func renderPanel(p details.Panel) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(p.Title))
	if p.Type != "" {
		b.WriteString("\n" + StyleDim.Render(p.Type))
	}
	for _, r := range p.Rows {
		b.WriteString("\n" + stylePanelLabel.Render(r.Label+":") + " " + StyleValue.Render(r.Value))
	}
	if len(p.Rows) == 0 {
		b.WriteString("\n" + StyleDim.Render(details.Placeholder))
	}
	return stylePanel.Render(b.String())
}
