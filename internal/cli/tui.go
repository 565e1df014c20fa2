package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/regionroute/pkg/pipeline"
)

var pickerDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// PickerModel - Interactive alternative selection
// =============================================================================

// PickerModel is the bubbletea model for choosing one of the ranked
// alternatives of a routing result.
type PickerModel struct {
	Alternatives []pipeline.Alternative
	Cursor       int
	Chosen       int // index into Alternatives, -1 until enter is pressed
}

// NewPickerModel creates a picker over res's alternatives.
func NewPickerModel(res *pipeline.RouteResult) PickerModel {
	return PickerModel{Alternatives: res.Alternatives, Chosen: -1}
}

func (m PickerModel) Init() tea.Cmd {
	return nil
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch s := key.String(); s {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Alternatives)-1 {
			m.Cursor++
		}
	case "enter":
		if len(m.Alternatives) > 0 {
			m.Chosen = m.Cursor
		}
		return m, tea.Quit
	default:
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if i := int(s[0] - '1'); i < len(m.Alternatives) {
				m.Cursor = i
			}
		}
	}
	return m, nil
}

func (m PickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Route"))
	b.WriteString("\n")
	b.WriteString(pickerDimStyle.Render("↑/↓ navigate  1-9 jump  ⏎ select  q quit"))
	b.WriteString("\n\n")

	if len(m.Alternatives) == 0 {
		b.WriteString(StyleWarning.Render("No alternatives"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(alternativesTable(m.Alternatives, m.Cursor))
	b.WriteString("\n\n")

	a := m.Alternatives[m.Cursor]
	if a.Path != nil {
		b.WriteString(pickerDimStyle.Render(fmt.Sprintf("  %d nodes · %s · %s",
			len(a.Path.Nodes), formatSeconds(a.Path.Time), formatMeters(a.Path.Distance))))
		b.WriteString("\n")
	}
	b.WriteString(pickerDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Alternatives))))
	return b.String()
}

// withChoice returns a copy of res whose main path is alternative i.
func withChoice(res *pipeline.RouteResult, i int) *pipeline.RouteResult {
	if i < 0 || i >= len(res.Alternatives) || res.Alternatives[i].Path == nil {
		return res
	}
	out := *res
	out.Path = res.Alternatives[i].Path
	return &out
}
