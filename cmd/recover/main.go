// recover walks a user through password recovery on the terminal:
// phone number, SMS code, new password, then hands off to /login.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"password-recovery/internal/config"
	"password-recovery/internal/platform/logging"
	"password-recovery/internal/recovery"
	"password-recovery/internal/recovery/client"
	"password-recovery/internal/recovery/terminal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	var phoneFlag string
	cmd := &cobra.Command{
		Use:           "recover",
		Short:         "Reset a forgotten password with a code sent by SMS",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadClient(cmd.Flags())
			if err != nil {
				fmt.Fprintln(errOut, err)
				return err
			}
			if err := run(cmd.Context(), cfg, phoneFlag, in, out, errOut); err != nil {
				fmt.Fprintln(errOut, "recover:", err)
				return err
			}
			return nil
		},
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	f := cmd.Flags()
	f.String("base-url", "", "recovery server URL (env RECOVERY_BASE_URL, default http://localhost:8080)")
	f.Duration("redirect-delay", 0, "pause before going to /login after a reset (env RECOVERY_REDIRECT_DELAY, default 2s)")
	f.Duration("timeout", 0, "per-request timeout (env RECOVERY_HTTP_TIMEOUT, default 15s)")
	f.String("log-level", "", "log level for diagnostics on stderr (env LOG_LEVEL, default warn)")
	f.StringVar(&phoneFlag, "phone", "", "phone number to recover; prompted for when empty")
	return cmd
}

func run(ctx context.Context, cfg *config.ClientConfig, phone string, in io.Reader, out, errOut io.Writer) error {
	log := logging.New(errOut, cfg.LogLevel, true)
	nav := terminal.NewNavigator()
	flow := recovery.New(
		client.New(cfg.BaseURL, cfg.HTTPTimeout),
		terminal.NewNotifier(out),
		nav,
		recovery.WithRedirectDelay(cfg.RedirectDelay),
		recovery.WithLogger(log),
	)
	defer flow.Close()

	if err := drive(ctx, flow, terminal.NewRenderer(out), terminal.NewInput(in, out), phone); err != nil {
		return err
	}
	select {
	case <-nav.Done():
		fmt.Fprintf(out, "Continue at %s\n", nav.Path())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drive renders each step and submits the user's answers until the reset succeeds.
// Failed submits are reported by the notifier and the step is asked again.
func drive(ctx context.Context, flow *recovery.Flow, r *terminal.Renderer, in *terminal.Input, phone string) error {
	rendered := recovery.Step(-1)
	for !flow.Completed() {
		if err := ctx.Err(); err != nil {
			return err
		}
		s := flow.Session()
		if s.Step != rendered {
			r.Render(s)
			rendered = s.Step
		}

		var err error
		switch s.Step {
		case recovery.StepPhone:
			p := phone
			phone = ""
			if p == "" {
				r.Prompt("Phone number")
				if p, err = in.Line(); err != nil {
					return err
				}
			}
			err = flow.RequestCode(ctx, p)
		case recovery.StepCode:
			r.Prompt("Code")
			code, rerr := in.Line()
			if rerr != nil {
				return rerr
			}
			err = flow.AcceptCode(code)
		case recovery.StepPassword:
			r.Prompt("New password")
			pw, rerr := in.Secret()
			if rerr != nil {
				return rerr
			}
			r.Prompt("Confirm password")
			confirm, rerr := in.Secret()
			if rerr != nil {
				return rerr
			}
			err = flow.ResetPassword(ctx, pw, confirm)
		}
		if err != nil && recovery.KindOf(err) == recovery.KindState {
			return err
		}
	}
	return nil
}
