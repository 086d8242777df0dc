package terminal

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"password-recovery/internal/recovery"
)

func TestRenderer_StepForms(t *testing.T) {
	cases := []struct {
		step recovery.Step
		want []string
	}{
		{recovery.StepPhone, []string{"[1/3]", "phone number"}},
		{recovery.StepCode, []string{"[2/3]", "6-digit code", "+15550001111"}},
		{recovery.StepPassword, []string{"[3/3]", "at least 6 characters"}},
	}
	for _, tc := range cases {
		t.Run(tc.step.String(), func(t *testing.T) {
			var buf bytes.Buffer
			NewRenderer(&buf).Render(recovery.Session{Step: tc.step, Phone: "+15550001111"})
			out := buf.String()
			for _, w := range tc.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q missing %q", out, w)
				}
			}
			if strings.Contains(out, "\033[") {
				t.Error("non-terminal output should not contain ANSI escapes")
			}
		})
	}
}

func TestNotifier_Prefixes(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifier(&buf)
	n.Notify(recovery.Notification{Kind: recovery.NotifySuccess, Message: "sent"})
	n.Notify(recovery.Notification{Kind: recovery.NotifyError, Message: "X"})
	want := "ok: sent\nerror: X\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestNavigator_FirstCallWins(t *testing.T) {
	n := NewNavigator()
	select {
	case <-n.Done():
		t.Fatal("Done closed before Navigate")
	default:
	}
	n.Navigate(recovery.LoginPath)
	n.Navigate("/elsewhere")
	<-n.Done()
	if n.Path() != recovery.LoginPath {
		t.Errorf("Path = %q, want %q", n.Path(), recovery.LoginPath)
	}
}

func TestInput_Lines(t *testing.T) {
	in := NewInput(strings.NewReader("+15550001111\r\n123456\nlast"), io.Discard)
	for _, want := range []string{"+15550001111", "123456", "last"} {
		got, err := in.Line()
		if err != nil {
			t.Fatalf("Line: %v", err)
		}
		if got != want {
			t.Errorf("Line = %q, want %q", got, want)
		}
	}
	if _, err := in.Line(); err != io.EOF {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func TestInput_SecretFallsBackToLine(t *testing.T) {
	in := NewInput(strings.NewReader("secret1\n"), io.Discard)
	got, err := in.Secret()
	if err != nil {
		t.Fatalf("Secret: %v", err)
	}
	if got != "secret1" {
		t.Errorf("Secret = %q", got)
	}
}

func TestInput_SecretDrainsBufferedLinesFirst(t *testing.T) {
	var out bytes.Buffer
	in := NewInput(strings.NewReader("+15550001111\nsecret1\nsecret1\n"), &out)
	hiddenReads := 0
	in.hidden = func() ([]byte, error) {
		hiddenReads++
		return []byte("typed"), nil
	}

	if got, _ := in.Line(); got != "+15550001111" {
		t.Fatalf("Line = %q", got)
	}
	for n := 0; n < 2; n++ {
		got, err := in.Secret()
		if err != nil || got != "secret1" {
			t.Fatalf("Secret #%d = %q, %v; want buffered line", n+1, got, err)
		}
	}
	if hiddenReads != 0 {
		t.Errorf("hidden reads = %d while input was buffered, want 0", hiddenReads)
	}

	got, err := in.Secret()
	if err != nil || got != "typed" {
		t.Fatalf("Secret = %q, %v; want hidden read once the buffer is empty", got, err)
	}
	if out.String() != "\n" {
		t.Errorf("out = %q, want the swallowed newline", out.String())
	}
}
