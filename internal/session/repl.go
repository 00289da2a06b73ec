package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/routerchat/models"
)

// REPL drives a Machine over line-oriented input and output.
type REPL struct {
	Dispatcher *Dispatcher
	// LogPath is shown after each saved turn.
	LogPath string
	In      io.Reader
	Out     io.Writer
}

type replStyles struct {
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	header lipgloss.Style
	faint  lipgloss.Style
}

func newReplStyles(w io.Writer) replStyles {
	r := lipgloss.NewRenderer(w)
	return replStyles{
		ok:     r.NewStyle().Foreground(lipgloss.Color("46")),
		err:    r.NewStyle().Foreground(lipgloss.Color("9")),
		warn:   r.NewStyle().Foreground(lipgloss.Color("214")),
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
		faint:  r.NewStyle().Faint(true),
	}
}

var answerRule = strings.Repeat("─", 80)

// Run selects a model and then answers questions until quit or end of input.
// It returns the final machine, which is always Terminated on a nil error.
func (r *REPL) Run(ctx context.Context) (Machine, error) {
	st := newReplStyles(r.Out)
	reader := bufio.NewReader(r.In)
	var readErr error

	// readLine has no length limit. A final line without a newline still
	// counts; io.EOF itself is not an error.
	readLine := func(prompt string) (string, bool) {
		fmt.Fprint(r.Out, prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			if !errors.Is(err, io.EOF) {
				readErr = err
			}
			fmt.Fprintln(r.Out)
			return "", false
		}
		return strings.TrimRight(line, "\r\n"), true
	}

	m := NewMachine()
	models.RenderMenu(r.Out)
	for m.State == SelectingModel {
		line, ok := readLine(fmt.Sprintf("Select a model (%s): ", models.KeyRange()))
		if !ok {
			return m.Terminate(), readErr
		}
		next, err := m.Select(line)
		if err != nil {
			fmt.Fprintln(r.Out, st.err.Render(fmt.Sprintf("Invalid choice. Please enter a number between %s.", strings.Replace(models.KeyRange(), "-", " and ", 1))))
			continue
		}
		m = next
		fmt.Fprintln(r.Out, st.ok.Render("✓ Selected: "+m.Model.Name))
	}

	for m.State != Terminated {
		fmt.Fprintln(r.Out, "\n"+models.Rule)
		line, ok := readLine(fmt.Sprintf("Enter your question (or '%s' to exit): ", ExitKeyword))
		if !ok {
			return m.Terminate(), readErr
		}

		var in Input
		m, in = m.Input(line)
		switch in {
		case InputQuit:
			fmt.Fprintln(r.Out, "Goodbye!")
			continue
		case InputEmpty:
			fmt.Fprintln(r.Out, st.warn.Render("Please enter a question."))
			continue
		}

		fmt.Fprintln(r.Out)
		fmt.Fprintln(r.Out, st.faint.Render("Sending request..."))
		turn := r.Dispatcher.Dispatch(ctx, m.Model, m.Question)
		r.printTurn(st, turn)
		m = m.Complete()
	}
	return m, nil
}

func (r *REPL) printTurn(st replStyles, turn Turn) {
	if turn.Result.OK() {
		fmt.Fprintln(r.Out, "\n"+answerRule)
		fmt.Fprintln(r.Out, st.header.Render("ANSWER:"))
		fmt.Fprintln(r.Out, answerRule)
		fmt.Fprintln(r.Out, turn.Text())
		fmt.Fprintln(r.Out, answerRule)
	} else {
		fmt.Fprintln(r.Out)
		fmt.Fprintln(r.Out, st.err.Render("❌")+" "+turn.Text())
	}

	switch {
	case turn.LogErr != nil:
		fmt.Fprintln(r.Out, st.warn.Render(fmt.Sprintf("⚠ Could not save to %s: %v", r.LogPath, turn.LogErr)))
	case turn.Result.OK():
		// Failed turns are logged too, but only answers get the confirmation.
		fmt.Fprintln(r.Out, st.ok.Render("✓ Saved to "+r.LogPath))
	}
}
