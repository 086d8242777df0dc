package recovery

import "context"

// Endpoint paths of the recovery API.
const (
	CodeRequestPath   = "/api/auth/forgot-password/request"
	PasswordResetPath = "/api/auth/forgot-password/reset"
)

// CodeRequest is the body of POST CodeRequestPath.
type CodeRequest struct {
	Phone string `json:"phone"`
}

// ResetRequest is the body of POST PasswordResetPath.
type ResetRequest struct {
	Phone       string `json:"phone"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// Response is the body returned by both endpoints.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Endpoints is the backend the flow talks to. A returned error means the request could
// not complete (transport failure); an endpoint-reported failure is a Response with
// Success false.
type Endpoints interface {
	RequestCode(ctx context.Context, req CodeRequest) (*Response, error)
	ResetPassword(ctx context.Context, req ResetRequest) (*Response, error)
}
