// Package tui renders a rendered template's per-chunk result list for
// interactive display (supplemented feature, §4.4's chunk-list mode):
// successful chunks print as-is, sensitive chunks are masked, and any
// Error chunk is highlighted so the user can see exactly which part of a
// template failed without losing the surrounding context.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"forge/internal/template"
)

var (
	styleSensitive = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Faint(true)
	styleError     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleTitle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Padding(0, 1)
	styleHelp      = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	styleBase      = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
)

const maskedPlaceholder = "••••••"

// ChunkView is a bubbletea model that scrolls through a rendered chunk
// list: plain text for raw/rendered non-sensitive chunks, a masked
// placeholder for sensitive chunks, and the error message in red for any
// error chunk.
type ChunkView struct {
	chunks   []template.Chunk
	viewport viewport.Model
	ready    bool
}

// NewChunkView builds a ChunkView over the given chunk list. Width and
// height are the initial viewport size; a later tea.WindowSizeMsg resizes
// it.
func NewChunkView(chunks []template.Chunk, width, height int) ChunkView {
	vp := viewport.New(width, height)
	vp.SetContent(renderChunks(chunks))
	return ChunkView{chunks: chunks, viewport: vp, ready: true}
}

func renderChunks(chunks []template.Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		switch c.Kind {
		case template.ChunkErr:
			b.WriteString(styleError.Render("<error: " + c.Err.Error() + ">"))
		case template.ChunkRendered:
			if c.Sensitive {
				b.WriteString(styleSensitive.Render(maskedPlaceholder))
			} else {
				b.Write(c.Bytes)
			}
		default:
			b.Write(c.Bytes)
		}
	}
	return b.String()
}

func (v ChunkView) Init() tea.Cmd {
	return nil
}

func (v ChunkView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.viewport.Width = msg.Width
		v.viewport.Height = msg.Height - 2
		v.viewport.SetContent(renderChunks(v.chunks))
		v.ready = true
		return v, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return v, tea.Quit
		}
	}
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

func (v ChunkView) View() string {
	if !v.ready {
		return "initializing..."
	}
	title := styleTitle.Render("Rendered chunks")
	help := styleHelp.Render("↑/↓ scroll    q quit")
	return title + "\n" + styleBase.Render(v.viewport.View()) + "\n" + help
}

// String renders the chunk list to a single highlighted string without
// entering the interactive loop. `forge render` does not use it: its plain
// stdout path writes render.Render's flattened bytes.
func (v ChunkView) String() string {
	return renderChunks(v.chunks)
}

// HasError reports whether any chunk in the list is an error chunk, so a
// caller can decide whether to treat a chunk-list render as failed overall.
func (v ChunkView) HasError() bool {
	for _, c := range v.chunks {
		if c.Kind == template.ChunkErr {
			return true
		}
	}
	return false
}
