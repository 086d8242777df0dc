package recovery

// NotificationKind distinguishes success and error notifications.
type NotificationKind int

const (
	NotifySuccess NotificationKind = iota + 1
	NotifyError
)

func (k NotificationKind) String() string {
	switch k {
	case NotifySuccess:
		return "success"
	case NotifyError:
		return "error"
	default:
		return "unknown"
	}
}

// Notification is a transient user-visible message. Nothing records it.
type Notification struct {
	Kind    NotificationKind
	Message string
}

// Notifier shows notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notification) { f(n) }

// Navigator moves the user to another page of the application.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// Navigate calls f(path).
func (f NavigatorFunc) Navigate(path string) { f(path) }

// Messages holds the user-facing texts of the flow.
type Messages struct {
	CodeSent          string
	CodeRequestFailed string
	PhoneRequired     string
	PasswordTooShort  string
	PasswordMismatch  string
	PasswordChanged   string
	ResetFailed       string
	NetworkError      string
}

// DefaultMessages returns the built-in English texts.
func DefaultMessages() Messages {
	return Messages{
		CodeSent:          "A verification code has been sent to your phone",
		CodeRequestFailed: "Could not send the verification code",
		PhoneRequired:     "Enter your phone number",
		PasswordTooShort:  "Password must be at least 6 characters",
		PasswordMismatch:  "Passwords do not match",
		PasswordChanged:   "Password changed. Redirecting to login...",
		ResetFailed:       "Could not reset the password",
		NetworkError:      "Network error. Please try again",
	}
}

// withDefaults fills empty fields of m from DefaultMessages.
func (m Messages) withDefaults() Messages {
	d := DefaultMessages()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&m.CodeSent, d.CodeSent)
	fill(&m.CodeRequestFailed, d.CodeRequestFailed)
	fill(&m.PhoneRequired, d.PhoneRequired)
	fill(&m.PasswordTooShort, d.PasswordTooShort)
	fill(&m.PasswordMismatch, d.PasswordMismatch)
	fill(&m.PasswordChanged, d.PasswordChanged)
	fill(&m.ResetFailed, d.ResetFailed)
	fill(&m.NetworkError, d.NetworkError)
	return m
}
