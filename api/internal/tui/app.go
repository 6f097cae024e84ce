// Package tui is the terminal front end: one screen per flow, switched with F1/F2.
package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"medassist/api/internal/flow"
)

type Screen int

const (
	ScreenPredict Screen = iota
	ScreenRecognize
)

type Options struct {
	BaseURL string
	Dir     string // стартовая папка файлового пикера
	Start   Screen
}

type App struct {
	screen    Screen
	styles    Styles
	predict   PredictModel
	recognize RecognizeModel
}

func New(ctx context.Context, text *flow.TextFlow, image *flow.ImageFlow, opts Options) App {
	st := DefaultStyles()
	return App{
		screen:    opts.Start,
		styles:    st,
		predict:   NewPredictModel(ctx, text, opts.BaseURL, st),
		recognize: NewRecognizeModel(ctx, image, opts.Dir, opts.BaseURL, st),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.predict.Init(), a.recognize.Init())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return a, tea.Quit
		case "f1":
			a.screen = ScreenPredict
			return a, nil
		case "f2":
			a.screen = ScreenRecognize
			return a, nil
		}
	case predictionDoneMsg:
		var cmd tea.Cmd
		a.predict, cmd = a.predict.Update(msg)
		return a, cmd
	case recognitionDoneMsg, previewReadyMsg:
		var cmd tea.Cmd
		a.recognize, cmd = a.recognize.Update(msg)
		return a, cmd
	}

	// не-клавиатурные сообщения (тики, размеры, чтение папки) нужны обоим экранам
	if _, isKey := msg.(tea.KeyMsg); !isKey {
		var c1, c2 tea.Cmd
		a.predict, c1 = a.predict.Update(msg)
		a.recognize, c2 = a.recognize.Update(msg)
		return a, tea.Batch(c1, c2)
	}

	var cmd tea.Cmd
	if a.screen == ScreenPredict {
		a.predict, cmd = a.predict.Update(msg)
	} else {
		a.recognize, cmd = a.recognize.Update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	tabs := []string{"F1 Predict", "F2 Recognize"}
	for i, t := range tabs {
		if Screen(i) == a.screen {
			tabs[i] = a.styles.TabOn.Render(t)
		} else {
			tabs[i] = a.styles.Tab.Render(t)
		}
	}
	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n\n")
	if a.screen == ScreenPredict {
		b.WriteString(a.predict.View())
	} else {
		b.WriteString(a.recognize.View())
	}
	b.WriteString(a.styles.Help.Render("esc quit"))
	return b.String()
}
