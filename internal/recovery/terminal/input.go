package terminal

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Input reads form fields line by line. Secret fields are read without echo when the
// underlying reader is a terminal.
type Input struct {
	r      *bufio.Reader
	out    io.Writer
	hidden func() ([]byte, error) // nil unless in is a terminal
}

// NewInput returns an Input reading from in. out receives the newline that a hidden
// read swallows.
func NewInput(in io.Reader, out io.Writer) *Input {
	i := &Input{r: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		i.hidden = func() ([]byte, error) { return term.ReadPassword(fd) }
	}
	return i
}

// Line reads one line without its line terminator. io.EOF is returned only when no
// characters were read.
func (i *Input) Line() (string, error) {
	s, err := i.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && s != "" {
			return strings.TrimRight(s, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// Secret reads a line without echo if the input is a terminal, else like Line.
// Input already buffered by Line (pasted ahead) was echoed anyway and is consumed first.
func (i *Input) Secret() (string, error) {
	if i.hidden == nil || i.r.Buffered() > 0 {
		return i.Line()
	}
	b, err := i.hidden()
	io.WriteString(i.out, "\n")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
