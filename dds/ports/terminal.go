package ports

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	sizeStyle    = cellStyle.Align(lipgloss.Right)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Terminal writes to an output and an error stream
type Terminal struct {
	out io.Writer
	err io.Writer
}

// NewTerminal creates a Terminal over stdout and stderr.
func NewTerminal() *Terminal {
	return NewTerminalWriters(os.Stdout, os.Stderr)
}

// NewTerminalWriters creates a Terminal over the given writers.
func NewTerminalWriters(out, errOut io.Writer) *Terminal {
	return &Terminal{out: out, err: errOut}
}

func (t *Terminal) Output(message string) {
	fmt.Fprintln(t.out, message)
}

func (t *Terminal) Warning(message string) {
	fmt.Fprintln(t.err, warningStyle.Render("warning: "+message))
}

func (t *Terminal) Error(message string, err error) {
	if err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	fmt.Fprintln(t.err, errorStyle.Render("error: "+message))
}

// Table renders rows under headers. The last column holds sizes and is right-aligned.
func (t *Terminal) Table(headers []string, rows [][]string) {
	last := len(headers) - 1
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == last:
				return sizeStyle
			default:
				return cellStyle
			}
		})
	fmt.Fprintln(t.out, tbl.Render())
}
