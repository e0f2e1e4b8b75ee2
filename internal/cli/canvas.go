package cli

import (
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/costgraph/pkg/flow"
	"github.com/matzehuels/costgraph/pkg/graph"
	"github.com/matzehuels/costgraph/pkg/render"
)

// Terminal cells are about twice as tall as they are wide.
const cellAspect = 2.0

const (
	minScale      = 0.02
	maxScale      = 4.0
	maxLabelWidth = 20
)

const (
	runeNode     = '●'
	runeParticle = '•'
)

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellEdge
	cellEdgeSelected
	cellNode
	cellLabel
	cellSelected
	cellParticle
)

type cell struct {
	r     rune
	kind  cellKind
	color string
}

// canvas rasterizes a laid-out graph into a character grid. It is the
// [flow.Host] and [flow.Painter] of the watch view and is only used from the
// bubbletea update loop.
type canvas struct {
	width, height int

	g     *graph.Graph
	world graph.Positions // node centers in points, Y up

	center graph.Point // world point shown in the middle of the grid
	scale  float64     // columns per point

	selected string // highlighted node or edge ID

	cells    [][]cell
	hooks    map[int]func(flow.Painter)
	nextHook int
	draws    int
}

func newCanvas(width, height int) *canvas {
	c := &canvas{hooks: map[int]func(flow.Painter){}, scale: 1}
	c.resize(width, height)
	return c
}

// setGraph replaces the graph and its layout and fits it to the grid.
func (c *canvas) setGraph(g *graph.Graph, pos graph.Positions) {
	c.g = g
	c.world = graph.Positions{}
	for id, p := range pos {
		c.world[id] = p
	}
	c.selected = ""
	c.fit()
}

// resize reallocates the grid. The view keeps its center and scale.
func (c *canvas) resize(width, height int) {
	c.width = max(width, 1)
	c.height = max(height, 1)
	c.cells = make([][]cell, c.height)
	for i := range c.cells {
		c.cells[i] = make([]cell, c.width)
	}
}

// fit centers the layout and scales it to fill the grid, leaving room for
// labels on the right.
func (c *canvas) fit() {
	if len(c.world) == 0 {
		c.center, c.scale = graph.Point{}, 1
		return
	}
	lo, hi := c.world.Bounds()
	c.center = graph.Point{X: (lo.X + hi.X) / 2, Y: (lo.Y + hi.Y) / 2}

	usableW := float64(max(c.width-maxLabelWidth-2, 4))
	usableH := float64(max(c.height-2, 2)) * cellAspect
	scale := maxScale
	if dx := hi.X - lo.X; dx > 0 {
		scale = math.Min(scale, usableW/dx)
	}
	if dy := hi.Y - lo.Y; dy > 0 {
		scale = math.Min(scale, usableH/dy)
	}
	c.scale = clamp(scale, minScale, maxScale)
	// Shift left so labels to the right of nodes stay visible.
	c.center.X += float64(maxLabelWidth) / 2 / c.scale
}

// pan moves the view by whole cells.
func (c *canvas) pan(dcol, drow int) {
	c.center.X += float64(dcol) / c.scale
	c.center.Y -= float64(drow) * cellAspect / c.scale
}

func (c *canvas) zoom(factor float64) {
	c.scale = clamp(c.scale*factor, minScale, maxScale)
}

// nudge moves a node by whole cells.
func (c *canvas) nudge(id string, dcol, drow int) bool {
	p, ok := c.world[id]
	if !ok {
		return false
	}
	p.X += float64(dcol) / c.scale
	p.Y -= float64(drow) * cellAspect / c.scale
	c.world[id] = p
	return true
}

// project maps a world point to fractional grid coordinates.
func (c *canvas) project(p graph.Point) graph.Point {
	return graph.Point{
		X: (p.X-c.center.X)*c.scale + float64(c.width)/2,
		Y: float64(c.height)/2 - (p.Y-c.center.Y)*c.scale/cellAspect,
	}
}

// =============================================================================
// flow.Host
// =============================================================================

func (c *canvas) EdgeEndpoints(edgeID string) (graph.Point, graph.Point, bool) {
	if c.g == nil {
		return graph.Point{}, graph.Point{}, false
	}
	e, ok := c.g.Edge(edgeID)
	if !ok {
		return graph.Point{}, graph.Point{}, false
	}
	from, ok1 := c.world[e.From]
	to, ok2 := c.world[e.To]
	if !ok1 || !ok2 {
		return graph.Point{}, graph.Point{}, false
	}
	return c.project(from), c.project(to), true
}

// Redraw rasterizes edges and nodes and then runs post-draw callbacks in
// registration order.
func (c *canvas) Redraw() {
	c.draws++
	for _, row := range c.cells {
		clear(row)
	}
	if c.g != nil {
		for _, e := range c.g.Edges {
			from, to, ok := c.EdgeEndpoints(e.ID)
			if !ok {
				continue
			}
			kind := cellEdge
			if e.ID == c.selected {
				kind = cellEdgeSelected
			}
			c.line(from, to, kind)
		}
		for _, n := range c.g.Nodes {
			c.node(n)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(c.hooks)) {
		c.hooks[id](c)
	}
}

func (c *canvas) OnAfterDraw(fn func(flow.Painter)) func() {
	id := c.nextHook
	c.nextHook++
	c.hooks[id] = fn
	return func() { delete(c.hooks, id) }
}

// FillCircle marks the cell under center. Particles never cover nodes or
// labels.
func (c *canvas) FillCircle(center graph.Point, _ float64) {
	col, row := int(math.Round(center.X)), int(math.Round(center.Y))
	if !c.inside(col, row) {
		return
	}
	if k := c.cells[row][col].kind; k == cellNode || k == cellLabel || k == cellSelected {
		return
	}
	c.cells[row][col] = cell{r: runeParticle, kind: cellParticle}
}

// =============================================================================
// Rasterization
// =============================================================================

func (c *canvas) inside(col, row int) bool {
	return col >= 0 && row >= 0 && col < c.width && row < c.height
}

func (c *canvas) set(col, row int, ch cell) {
	if c.inside(col, row) {
		c.cells[row][col] = ch
	}
}

// line draws a straight segment with Bresenham's algorithm.
func (c *canvas) line(from, to graph.Point, kind cellKind) {
	x0, y0 := int(math.Round(from.X)), int(math.Round(from.Y))
	x1, y1 := int(math.Round(to.X)), int(math.Round(to.Y))
	r := lineRune(x1-x0, y1-y0)

	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy
	for {
		if c.inside(x0, y0) && c.cells[y0][x0].kind == cellEmpty {
			c.cells[y0][x0] = cell{r: r, kind: kind}
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// lineRune picks a box-drawing character for a segment direction in grid
// coordinates, where rows grow downward.
func lineRune(dx, dy int) rune {
	switch {
	case dy == 0 || abs(dx) > 2*abs(dy):
		return '─'
	case dx == 0 || abs(dy) > 2*abs(dx):
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

func (c *canvas) node(n graph.Node) {
	p, ok := c.world[n.ID]
	if !ok {
		return
	}
	s := c.project(p)
	col, row := int(math.Round(s.X)), int(math.Round(s.Y))
	color := render.RegionColor(c.g.GroupIndex(n.Group))

	kind := cellNode
	if n.ID == c.selected {
		kind = cellSelected
	}
	c.set(col, row, cell{r: runeNode, kind: kind, color: color})

	label := []rune(n.Label)
	if len(label) > maxLabelWidth {
		label = append(label[:maxLabelWidth-1], '…')
	}
	for i, r := range label {
		c.set(col+2+i, row, cell{r: r, kind: cellLabel})
	}
}

// =============================================================================
// Output
// =============================================================================

var (
	styleEdge         = lipgloss.NewStyle().Foreground(colorDim)
	styleEdgeSelected = lipgloss.NewStyle().Foreground(colorYellow)
	styleLabel        = lipgloss.NewStyle().Foreground(colorGray)
	styleSelected     = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	styleParticle     = lipgloss.NewStyle().Foreground(colorCyan)
)

func (c cell) style() lipgloss.Style {
	switch c.kind {
	case cellEdge:
		return styleEdge
	case cellEdgeSelected:
		return styleEdgeSelected
	case cellNode:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c.color))
	case cellLabel:
		return styleLabel
	case cellSelected:
		return styleSelected
	case cellParticle:
		return styleParticle
	default:
		return lipgloss.NewStyle()
	}
}

// String renders the grid, styling runs of equal cells together.
func (c *canvas) String() string {
	var b strings.Builder
	for i, row := range c.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && row[j].kind == row[start].kind && row[j].color == row[start].color {
				continue
			}
			b.WriteString(renderRun(row[start:j]))
			start = j
		}
	}
	return b.String()
}

// plain returns the grid without styling.
func (c *canvas) plain() string {
	var b strings.Builder
	for i, row := range c.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, ch := range row {
			b.WriteRune(ch.char())
		}
	}
	return b.String()
}

func (c cell) char() rune {
	if c.kind == cellEmpty {
		return ' '
	}
	return c.r
}

func renderRun(run []cell) string {
	var b strings.Builder
	for _, ch := range run {
		b.WriteRune(ch.char())
	}
	if run[0].kind == cellEmpty {
		return b.String()
	}
	return run[0].style().Render(b.String())
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
