package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"medassist/api/internal/flow"
	"medassist/api/internal/flow/types"
)

var imageTypes = []string{".jpg", ".jpeg", ".png", ".webp", ".gif", ".bmp"}

type recognitionDoneMsg struct {
	task *flow.Task[types.RecognitionView]
}

type previewReadyMsg struct{}

// RecognizeModel is the medicine photo screen.
type RecognizeModel struct {
	flow    *flow.ImageFlow
	ctx     context.Context
	styles  Styles
	baseURL string

	picker  filepicker.Model
	spinner spinner.Model
	fileErr error
}

func NewRecognizeModel(ctx context.Context, f *flow.ImageFlow, dir, baseURL string, styles Styles) RecognizeModel {
	fp := filepicker.New()
	fp.AllowedTypes = imageTypes
	if dir != "" {
		fp.CurrentDirectory = dir
	}
	return RecognizeModel{
		flow:    f,
		ctx:     ctx,
		styles:  styles,
		baseURL: strings.TrimRight(baseURL, "/"),
		picker:  fp,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m RecognizeModel) Init() tea.Cmd { return m.picker.Init() }

func (m RecognizeModel) Update(msg tea.Msg) (RecognizeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+s":
			return m.submit()
		case "ctrl+x":
			return m.selectImage(nil)
		}
	case recognitionDoneMsg, previewReadyMsg:
		return m, nil
	case spinner.TickMsg:
		if !m.flow.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		next, sel := m.choose(path)
		return next, tea.Batch(cmd, sel)
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.fileErr = fmt.Errorf("%s is not an image", filepath.Base(path))
		return m, cmd
	}
	return m, cmd
}

// choose читает файл с диска и делает его текущим выбором.
func (m RecognizeModel) choose(path string) (RecognizeModel, tea.Cmd) {
	img, err := types.ImageFromFile(path)
	if err != nil {
		m.fileErr = err
		return m, nil
	}
	return m.selectImage(img)
}

func (m RecognizeModel) selectImage(img *types.Image) (RecognizeModel, tea.Cmd) {
	m.fileErr = nil
	ready := m.flow.Select(img)
	return m, func() tea.Msg {
		<-ready
		return previewReadyMsg{}
	}
}

func (m RecognizeModel) submit() (RecognizeModel, tea.Cmd) {
	if m.flow.Pending() {
		return m, nil
	}
	task, started := m.flow.Submit(m.ctx)
	if !started {
		return m, nil
	}
	wait := func() tea.Msg {
		<-task.Done()
		return recognitionDoneMsg{task: task}
	}
	return m, tea.Batch(m.spinner.Tick, wait)
}

func (m RecognizeModel) View() string {
	s := m.styles
	var b strings.Builder
	b.WriteString(s.Title.Render("Medicine recognition") + "\n")
	b.WriteString(m.picker.View() + "\n")

	if img := m.flow.Selected(); img != nil {
		line := "Selected: " + s.Selected.Render(img.Name)
		if p := m.flow.Preview(); p != "" {
			line += s.Muted.Render(fmt.Sprintf("  (%s, preview %d KB)", img.ContentType(), (len(p)+1023)/1024))
		} else {
			line += s.Muted.Render("  (preparing preview…)")
		}
		b.WriteString(line + "\n")
	} else {
		b.WriteString(s.Muted.Render("No image selected") + "\n")
	}
	if m.fileErr != nil {
		b.WriteString(s.Error.Render(m.fileErr.Error()) + "\n")
	}

	b.WriteString("\n" + m.status())
	b.WriteString(s.Help.Render("enter pick file • ctrl+x clear • ctrl+s submit"))
	return b.String()
}

func (m RecognizeModel) status() string {
	s := m.styles
	st := m.flow.State()
	switch st.Phase {
	case flow.Pending:
		return m.spinner.View() + " Recognizing…\n"
	case flow.Succeeded:
		v := st.Result
		return s.Result.Render(strings.Join([]string{
			"Medicine: " + v.Medicine,
			"Confidence: " + v.ConfidenceText,
			"Learn more: " + s.Link.Render(m.baseURL+v.Path),
		}, "\n")) + "\n"
	case flow.Failed:
		return s.Error.Render(st.Message()) + "\n"
	default:
		return ""
	}
}
