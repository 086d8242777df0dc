// Package recovery implements the client side of phone-based password recovery:
// a three-step flow (phone number, SMS code, new password) driven by form submits.
package recovery

import "time"

const (
	// MaxCodeLength is the input limit of the code field. Longer input is truncated.
	MaxCodeLength = 6
	// MinPasswordLength is the shortest new password accepted before a reset is sent.
	MinPasswordLength = 6
	// LoginPath is where the flow navigates after a successful reset.
	LoginPath = "/login"
	// DefaultRedirectDelay is the pause between a successful reset and navigation to LoginPath.
	DefaultRedirectDelay = 2 * time.Second
)

// Step is the stage of the recovery flow. Steps only advance forward.
type Step int

const (
	StepPhone Step = iota
	StepCode
	StepPassword
)

func (s Step) String() string {
	switch s {
	case StepPhone:
		return "phone"
	case StepCode:
		return "code"
	case StepPassword:
		return "password"
	default:
		return "unknown"
	}
}

// Session is the transient state of one recovery run. It lives in memory only.
type Session struct {
	Step            Step
	Phone           string
	Code            string
	NewPassword     string
	ConfirmPassword string
	// Pending is true while a request to an endpoint is in flight.
	Pending bool
}
