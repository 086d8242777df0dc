// Package terminal renders the recovery flow on a text terminal.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"password-recovery/internal/recovery"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBold  = "\033[1m"
)

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Renderer prints the form of the current step.
type Renderer struct {
	w     io.Writer
	color bool
}

// NewRenderer returns a Renderer writing to w. Colour is used only when w is a terminal.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w, color: IsTTY(w)}
}

// Render writes the heading and field labels of the form for s.Step.
func (r *Renderer) Render(s recovery.Session) {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(r.bold("Password recovery"))
	fmt.Fprintf(&b, "  [%d/3]\n", int(s.Step)+1)
	switch s.Step {
	case recovery.StepPhone:
		b.WriteString("Enter the phone number linked to your account.\n")
		b.WriteString("We will send you a verification code by SMS.\n")
	case recovery.StepCode:
		fmt.Fprintf(&b, "Enter the %d-digit code sent to %s.\n", recovery.MaxCodeLength, s.Phone)
	case recovery.StepPassword:
		fmt.Fprintf(&b, "Choose a new password (at least %d characters).\n", recovery.MinPasswordLength)
	}
	io.WriteString(r.w, b.String())
}

// Prompt writes a field label without a trailing newline.
func (r *Renderer) Prompt(label string) {
	fmt.Fprintf(r.w, "%s: ", label)
}

func (r *Renderer) bold(s string) string {
	if !r.color {
		return s
	}
	return colorBold + s + colorReset
}

// Notifier prints notifications, one per line.
type Notifier struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewNotifier returns a Notifier writing to w.
func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{w: w, color: IsTTY(w)}
}

// Notify implements recovery.Notifier.
func (n *Notifier) Notify(note recovery.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	prefix, color := "ok", colorGreen
	if note.Kind == recovery.NotifyError {
		prefix, color = "error", colorRed
	}
	if n.color {
		fmt.Fprintf(n.w, "%s%s:%s %s\n", color, prefix, colorReset, note.Message)
		return
	}
	fmt.Fprintf(n.w, "%s: %s\n", prefix, note.Message)
}

// Navigator records the navigation target and closes Done when navigation happens.
type Navigator struct {
	once sync.Once
	done chan struct{}
	mu   sync.Mutex
	path string
}

// NewNavigator returns a Navigator that has not navigated yet.
func NewNavigator() *Navigator {
	return &Navigator{done: make(chan struct{})}
}

// Navigate implements recovery.Navigator. Only the first call has an effect.
func (n *Navigator) Navigate(path string) {
	n.once.Do(func() {
		n.mu.Lock()
		n.path = path
		n.mu.Unlock()
		close(n.done)
	})
}

// Done is closed after Navigate.
func (n *Navigator) Done() <-chan struct{} { return n.done }

// Path returns the navigation target, or "" before Navigate.
func (n *Navigator) Path() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}
