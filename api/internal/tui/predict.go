package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"medassist/api/internal/flow"
	"medassist/api/internal/flow/types"
)

// поля формы в порядке обхода по tab
const (
	fieldDescription = iota
	fieldName
	fieldAge
	fieldGender
	fieldWeight
	fieldHeight
	fieldNotes
	fieldCount
)

var genders = []*types.Gender{nil, types.ParseGender("male"), types.ParseGender("female"), types.ParseGender("other")}

type predictionDoneMsg struct {
	task *flow.Task[types.PredictionView]
}

// PredictModel is the symptom form screen.
type PredictModel struct {
	flow    *flow.TextFlow
	ctx     context.Context
	styles  Styles
	baseURL string

	description textarea.Model
	inputs      map[int]*textinput.Model
	gender      int
	focus       int
	spinner     spinner.Model
}

func NewPredictModel(ctx context.Context, f *flow.TextFlow, baseURL string, styles Styles) PredictModel {
	ta := textarea.New()
	ta.Placeholder = "Describe your symptoms…"
	ta.ShowLineNumbers = false
	ta.SetWidth(60)
	ta.SetHeight(4)
	ta.Focus()

	newInput := func(placeholder string, limit int) *textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = limit
		ti.Width = 40
		return &ti
	}

	return PredictModel{
		flow:        f,
		ctx:         ctx,
		styles:      styles,
		baseURL:     strings.TrimRight(baseURL, "/"),
		description: ta,
		inputs: map[int]*textinput.Model{
			fieldName:   newInput("optional", 80),
			fieldAge:    newInput("years", 3),
			fieldWeight: newInput("kg", 6),
			fieldHeight: newInput("cm", 6),
			fieldNotes:  newInput("optional", 200),
		},
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m PredictModel) Init() tea.Cmd { return textarea.Blink }

func (m PredictModel) Update(msg tea.Msg) (PredictModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+s":
			return m.submit()
		case "tab", "shift+tab":
			next := m.focus + 1
			if msg.String() == "shift+tab" {
				next = m.focus - 1 + fieldCount
			}
			return m.setFocus(next % fieldCount)
		case "left", "right":
			if m.focus == fieldGender {
				step := 1
				if msg.String() == "left" {
					step = len(genders) - 1
				}
				m.gender = (m.gender + step) % len(genders)
				return m, nil
			}
		}
	case predictionDoneMsg:
		return m, nil
	case spinner.TickMsg:
		if !m.flow.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m.updateFocused(msg)
}

func (m PredictModel) updateFocused(msg tea.Msg) (PredictModel, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case fieldDescription:
		m.description, cmd = m.description.Update(msg)
	case fieldGender:
	default:
		ti := m.inputs[m.focus]
		*ti, cmd = ti.Update(msg)
	}
	return m, cmd
}

func (m PredictModel) setFocus(i int) (PredictModel, tea.Cmd) {
	m.description.Blur()
	for _, ti := range m.inputs {
		ti.Blur()
	}
	m.focus = i
	switch i {
	case fieldDescription:
		return m, m.description.Focus()
	case fieldGender:
		return m, nil
	default:
		return m, m.inputs[i].Focus()
	}
}

// form переносит значения полей в форму; нечисловое становится nil.
func (m PredictModel) form() types.SymptomForm {
	return types.SymptomForm{
		Description: m.description.Value(),
		Name:        strings.TrimSpace(m.inputs[fieldName].Value()),
		Age:         types.ParseAge(m.inputs[fieldAge].Value()),
		Gender:      genders[m.gender],
		Weight:      types.ParseMeasure(m.inputs[fieldWeight].Value()),
		Height:      types.ParseMeasure(m.inputs[fieldHeight].Value()),
		Notes:       strings.TrimSpace(m.inputs[fieldNotes].Value()),
	}
}

func (m PredictModel) submit() (PredictModel, tea.Cmd) {
	if m.flow.Pending() {
		return m, nil
	}
	m.flow.Form = m.form()
	task, started := m.flow.Submit(m.ctx)
	if !started {
		return m, nil
	}
	wait := func() tea.Msg {
		<-task.Done()
		return predictionDoneMsg{task: task}
	}
	return m, tea.Batch(m.spinner.Tick, wait)
}

func (m PredictModel) View() string {
	s := m.styles
	var b strings.Builder
	b.WriteString(s.Title.Render("Disease prediction") + "\n")

	label := func(i int, text string) string {
		if m.focus == i {
			return s.LabelOn.Render(text)
		}
		return s.Label.Render(text)
	}
	b.WriteString(label(fieldDescription, "Symptoms") + "\n" + m.description.View() + "\n\n")
	for _, row := range []struct {
		field int
		name  string
	}{{fieldName, "Name"}, {fieldAge, "Age"}, {fieldGender, "Gender"}, {fieldWeight, "Weight"}, {fieldHeight, "Height"}, {fieldNotes, "Notes"}} {
		var val string
		if row.field == fieldGender {
			val = genderLabel(m.gender)
			if m.focus == fieldGender {
				val = s.Selected.Render("‹ " + val + " ›")
			}
		} else {
			val = m.inputs[row.field].View()
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, label(row.field, row.name), val) + "\n")
	}

	b.WriteString("\n" + m.status())
	b.WriteString(s.Help.Render("tab next field • ←/→ gender • ctrl+s submit"))
	return b.String()
}

func (m PredictModel) status() string {
	s := m.styles
	st := m.flow.State()
	switch st.Phase {
	case flow.Pending:
		return m.spinner.View() + " Analyzing…\n"
	case flow.Succeeded:
		v := st.Result
		lines := []string{
			"Predicted disease: " + v.Disease,
			"Confidence: " + v.ConfidenceText,
		}
		if len(v.Extracted) > 0 {
			lines = append(lines, "Extracted symptoms: "+strings.Join(v.Extracted, ", "))
		}
		lines = append(lines, "Learn more: "+s.Link.Render(m.baseURL+v.Path))
		return s.Result.Render(strings.Join(lines, "\n")) + "\n"
	case flow.Failed:
		return s.Error.Render(st.Message()) + "\n"
	default:
		return ""
	}
}

func genderLabel(i int) string {
	if g := genders[i]; g != nil {
		return string(*g)
	}
	return "not specified"
}
