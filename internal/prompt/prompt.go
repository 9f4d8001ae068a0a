package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/refinery/internal/shared"
)

// Prompter is the console interaction capability consumed by review flows:
// it presents enumerated choices and reads parsed selections. Implementations
// re-prompt on invalid input rather than failing; the only silent default is
// the documented cutoff year. A scripted implementation lives in
// internal/testing so review flows can be exercised without a terminal.
type Prompter interface {
	// Choose presents enumerated options and returns the selected 0-based
	// index. Returns [shared.ErrQuit] when the user enters 'q'.
	Choose(title string, options []string) (int, error)

	// Ask reads a free-form line, returning fallback on empty input.
	Ask(question, fallback string) (string, error)

	// Confirm asks a yes/no question, defaulting to no.
	Confirm(question string) (bool, error)

	// Decide asks for a per-track keep/delete decision. Empty input keeps.
	// Returns [shared.ErrQuit] when the user enters 'q'.
	Decide(question string) (Decision, error)

	// PickMembers reads a duplicate-group selection for a group of the given
	// size. Returns [shared.ErrQuit] when the user enters 'q'.
	PickMembers(question string, size int) (Picks, error)

	// Year reads a cutoff year, applying fallback on empty input and
	// re-prompting on non-numeric or implausible values.
	Year(question string, fallback int) (int, error)
}

// Decision is a per-track keep-or-delete choice.
type Decision int

const (
	DecisionKeep Decision = iota
	DecisionDelete
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Italic(true)
)

// ConsolePrompter implements [Prompter] over an input reader and output
// writer, defaulting to stdin/stdout in cmd wiring.
type ConsolePrompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewConsolePrompter creates a prompter reading from in and writing to out.
func NewConsolePrompter(in io.Reader, out io.Writer) *ConsolePrompter {
	return &ConsolePrompter{scanner: bufio.NewScanner(in), out: out}
}

// readLine reads one trimmed line. Input exhaustion ends the pass the same
// way an explicit 'q' does, so piped input can never loop forever.
func (p *ConsolePrompter) readLine() (string, error) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", shared.ErrQuit
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

func (p *ConsolePrompter) say(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *ConsolePrompter) Choose(title string, options []string) (int, error) {
	p.say("\n%s\n", titleStyle.Render(title))
	for i, opt := range options {
		p.say("%2d. %s\n", i+1, opt)
	}

	for {
		p.say("\nEnter a number %s: ", hintStyle.Render("('q' to quit)"))
		line, err := p.readLine()
		if err != nil {
			return 0, err
		}
		if strings.EqualFold(line, "q") {
			return 0, shared.ErrQuit
		}

		n, err := strconv.Atoi(line)
		if err != nil {
			p.say("%s\n", errorStyle.Render("Please enter a valid number."))
			continue
		}
		if n < 1 || n > len(options) {
			p.say("%s\n", errorStyle.Render("Number out of range."))
			continue
		}
		return n - 1, nil
	}
}

func (p *ConsolePrompter) Ask(question, fallback string) (string, error) {
	if fallback != "" {
		p.say("%s [%s]: ", question, fallback)
	} else {
		p.say("%s: ", question)
	}

	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return fallback, nil
	}
	return line, nil
}

func (p *ConsolePrompter) Confirm(question string) (bool, error) {
	p.say("%s [y/N] ", question)
	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	return strings.EqualFold(line, "y") || strings.EqualFold(line, "yes"), nil
}

func (p *ConsolePrompter) Decide(question string) (Decision, error) {
	for {
		p.say("%s %s ", question, hintStyle.Render("[y = delete, n = keep, q = quit]"))
		line, err := p.readLine()
		if err != nil {
			return DecisionKeep, err
		}

		switch strings.ToLower(line) {
		case "", "n":
			return DecisionKeep, nil
		case "y":
			return DecisionDelete, nil
		case "q":
			return DecisionKeep, shared.ErrQuit
		default:
			p.say("%s\n", errorStyle.Render("Please answer y, n, or q."))
		}
	}
}

func (p *ConsolePrompter) PickMembers(question string, size int) (Picks, error) {
	for {
		p.say("%s %s ", question, hintStyle.Render("(e.g. '2' or '1,3' to keep, '-2,3' to delete, Enter = keep all, 'q' = quit)"))
		line, err := p.readLine()
		if err != nil {
			return Picks{}, err
		}
		if strings.EqualFold(line, "q") {
			return Picks{}, shared.ErrQuit
		}

		picks, err := ParsePicks(line, size)
		if err != nil {
			p.say("%s\n", errorStyle.Render("Invalid input. Please enter valid numbers from the list."))
			continue
		}
		return picks, nil
	}
}

func (p *ConsolePrompter) Year(question string, fallback int) (int, error) {
	for {
		raw, err := p.Ask(question, strconv.Itoa(fallback))
		if err != nil {
			return 0, err
		}

		year, err := strconv.Atoi(raw)
		if err != nil {
			p.say("%s\n", errorStyle.Render("Please enter a valid year (e.g. 1992) or leave empty for the default."))
			continue
		}
		if year < MinPlausibleYear || year > MaxPlausibleYear {
			p.say("%s\n", errorStyle.Render(fmt.Sprintf("That year looks suspicious; please enter something between %d and %d.", MinPlausibleYear, MaxPlausibleYear)))
			continue
		}
		return year, nil
	}
}
