// Command textmode-demo runs the animation engine inside a terminal,
// downscaling the pixel surface to half-block cells. Keys cycle the
// registered patterns through randomized transitions, toggle the layer
// compositor, and show live performance stats.
package main

import (
	"fmt"
	"image"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/shirou/gopsutil/v3/mem"
	xdraw "golang.org/x/image/draw"

	"github.com/skillparty/textmode"
	"github.com/skillparty/textmode/patterns"
)

const (
	statsRows = 7 // terminal rows reserved below the canvas
	pixelsPer = 3 // engine pixels per terminal half-block pixel

	fpsHistoryCap = 120
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	alertStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var patternNames = []string{"matrix", "binary", "conway"}

var transitionEffects = []string{
	textmode.EffectFade,
	textmode.EffectSlide,
	textmode.EffectMorph,
	textmode.EffectDisplacement,
	textmode.EffectGlitch,
	textmode.EffectRotate3D,
}

type tickMsg time.Time

type model struct {
	eng   *textmode.Engine
	sched *textmode.ManualScheduler

	cols, rows int // terminal size
	patternIdx int
	effectIdx  int
	paused     bool
	multiLayer bool
	showStats  bool

	lastFrame  time.Time
	fpsHistory []float64
}

func newModel() (model, error) {
	sched := textmode.NewManualScheduler()
	eng, err := textmode.NewEngine(240, 160,
		textmode.WithScheduler(sched),
		textmode.WithFontSize(12),
	)
	if err != nil {
		return model{}, err
	}

	eng.RegisterPattern("matrix", patterns.NewMatrixRain)
	eng.RegisterPattern("binary", patterns.NewBinaryWaterfall)
	eng.RegisterPattern("conway", patterns.NewConwayLife)

	eng.Monitor().SetMemorySampler(systemMemoryMB)

	eng.StartAnimation()
	eng.SwitchPattern(patternNames[0], nil, nil)

	return model{
		eng:        eng,
		sched:      sched,
		showStats:  true,
		lastFrame:  time.Now(),
		fpsHistory: make([]float64, 0, fpsHistoryCap),
	}, nil
}

// systemMemoryMB reports system memory in use; 0 when the platform
// exposes no facility.
func systemMemoryMB() float64 {
	v, err := mem.VirtualMemory()
	if err != nil {
		return 0
	}
	return float64(v.Used) / (1024 * 1024)
}

func frameTick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd {
	return frameTick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			_ = m.eng.Close()
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
			if m.paused {
				m.eng.StopAnimation()
			} else {
				m.eng.StartAnimation()
				m.lastFrame = time.Now()
			}
		case "n", "enter":
			m.nextPattern()
		case "l":
			m.toggleLayers()
		case "s":
			m.showStats = !m.showStats
		case "r":
			m.eng.Monitor().Reset()
		}
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		w, h := m.canvasPixels()
		m.eng.Resize(w, h)
	case tickMsg:
		now := time.Time(msg)
		if !m.paused {
			delta := now.Sub(m.lastFrame)
			m.sched.Advance(float64(delta) / float64(time.Millisecond))
		}
		m.lastFrame = now
		m.fpsHistory = append(m.fpsHistory, m.eng.Metrics().FPS)
		if len(m.fpsHistory) > fpsHistoryCap {
			m.fpsHistory = m.fpsHistory[1:]
		}
		return m, frameTick()
	}
	return m, nil
}

// nextPattern advances to the next registered pattern with the next
// transition effect, plus an occasional random duration for variety.
func (m *model) nextPattern() {
	m.patternIdx = (m.patternIdx + 1) % len(patternNames)
	effect := transitionEffects[m.effectIdx]
	m.effectIdx = (m.effectIdx + 1) % len(transitionEffects)
	duration := 400 + rand.Float64()*800
	m.eng.SwitchPattern(patternNames[m.patternIdx], &textmode.TransitionConfig{
		Effect:   effect,
		Duration: duration,
	}, nil)
}

// toggleLayers switches between the single active pattern and a small
// two-layer composition.
func (m *model) toggleLayers() {
	m.multiLayer = !m.multiLayer
	m.eng.SetMultiLayerMode(m.multiLayer)
	if !m.multiLayer {
		return
	}
	layers := m.eng.Layers()
	if layers.Count() == 0 {
		_ = layers.AddPatternToLayer("backdrop", "binary", &textmode.Config{Theme: "blue"})
		_ = layers.AddPatternToLayer("overlay", "conway", nil)
		_ = layers.SetLayerOpacity("overlay", 0.75)
		_ = layers.SetLayerBlendMode("overlay", "screen")
		_ = layers.ApplyLayerEffect("backdrop", "brightness", 0.6)
	}
}

// canvasPixels maps the terminal size to the engine's pixel canvas:
// each terminal cell shows two vertically stacked pixels, and the
// engine renders at pixelsPer that resolution for legible glyphs.
func (m model) canvasPixels() (int, int) {
	cols, rows := m.cols, m.rows-statsRows
	if cols < 10 {
		cols = 10
	}
	if rows < 5 {
		rows = 5
	}
	return cols * pixelsPer, rows * 2 * pixelsPer
}

func (m model) View() string {
	if m.cols == 0 {
		return "starting..."
	}
	var b strings.Builder
	b.WriteString(m.renderCanvas())
	if m.showStats {
		b.WriteString(m.renderStats())
	}
	return b.String()
}

// renderCanvas downscales the engine surface and emits one '▀' per
// terminal cell, foreground carrying the upper pixel and background the
// lower one.
func (m model) renderCanvas() string {
	cols, rows := m.cols, m.rows-statsRows
	if cols < 10 {
		cols = 10
	}
	if rows < 5 {
		rows = 5
	}
	view := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	xdraw.ApproxBiLinear.Scale(view, view.Bounds(), m.eng.Surface().Pixmap().RGBAImage(), m.eng.Surface().Pixmap().Bounds(), xdraw.Src, nil)

	var b strings.Builder
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			top := view.RGBAAt(x, y*2)
			bottom := view.RGBAAt(x, y*2+1)
			cell := lipgloss.NewStyle().
				Foreground(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", top.R, top.G, top.B))).
				Background(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", bottom.R, bottom.G, bottom.B)))
			b.WriteString(cell.Render("▀"))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (m model) renderStats() string {
	metrics := m.eng.Metrics()
	timing := m.eng.TimingInfo()

	name := "(none)"
	if p := m.eng.CurrentPattern(); p != nil {
		name = p.Name()
	}
	mode := "single"
	if m.multiLayer {
		mode = fmt.Sprintf("layers (%d)", m.eng.Layers().Count())
	}
	status := "playing"
	if m.paused {
		status = "paused"
	}
	if st := m.eng.TransitionState(); st.Type == textmode.TransitionTransitioning {
		status = fmt.Sprintf("%s %3.0f%%", st.Effect, st.Progress*100)
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("textmode") + "  ")
	b.WriteString(labelStyle.Render("pattern ") + valueStyle.Render(name) + "  ")
	b.WriteString(labelStyle.Render("mode ") + valueStyle.Render(mode) + "  ")
	b.WriteString(labelStyle.Render("state ") + valueStyle.Render(status) + "\n")

	b.WriteString(labelStyle.Render("fps ") + valueStyle.Render(fmt.Sprintf("%5.1f avg %5.1f", metrics.FPS, metrics.AverageFPS)) + "  ")
	b.WriteString(labelStyle.Render("mem ") + valueStyle.Render(fmt.Sprintf("%.0f MB", metrics.MemoryUsageMB)) + "  ")
	b.WriteString(labelStyle.Render("beat ") + valueStyle.Render(fmt.Sprintf("%d.%d @ %.0f BPM", timing.Measure, timing.Beat%4, timing.Tempo)) + "\n")

	if metrics.IsPerformanceDegraded {
		b.WriteString(alertStyle.Render(fmt.Sprintf("degraded (level %d): %s", metrics.DegradationLevel, strings.Join(m.eng.Monitor().Recommendations(), ", "))) + "\n")
	}
	if len(m.fpsHistory) > 1 {
		b.WriteString(asciigraph.Plot(m.fpsHistory, asciigraph.Height(2), asciigraph.Width(min(m.cols-10, 60))) + "\n")
	}
	b.WriteString(helpStyle.Render("n:next pattern  l:layers  space:pause  s:stats  r:reset monitor  q:quit"))
	return b.String()
}

func main() {
	if os.Getenv("TEXTMODE_DEBUG") != "" {
		textmode.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	m, err := newModel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "textmode-demo:", err)
		os.Exit(1)
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "textmode-demo:", err)
		os.Exit(1)
	}
}
