package ports

import (
	"context"
)

// APIResponse is a completed call to the hosted backend. Body holds the
// decoded JSON object, or an empty map when the body was not an object.
type APIResponse struct {
	Status int
	Body   map[string]any
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// AuthAPI is the hosted backend as seen by this client. Methods return an
// error only when the call itself failed (domain.ErrNetwork wrapped);
// non-2xx responses come back as an APIResponse.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*APIResponse, error)
	Signup(ctx context.Context, name, email, password string) (*APIResponse, error)
	Logout(ctx context.Context, token string) (*APIResponse, error)
	WhoAmI(ctx context.Context, token string) (*APIResponse, error)
	UserByID(ctx context.Context, token, id string) (*APIResponse, error)
	Profile(ctx context.Context, token string) (*APIResponse, error)

	ForgotPassword(ctx context.Context, email string) (*APIResponse, error)
	VerifyOTP(ctx context.Context, email, otp string) (*APIResponse, error)
	ResetPassword(ctx context.Context, email, otp, password string) (*APIResponse, error)

	SendEmail(ctx context.Context, msg EmailMessage) (*APIResponse, error)
}

// EmailMessage is the payload for the backend's transactional mail endpoint.
type EmailMessage struct {
	To       string         `json:"to"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data,omitempty"`
}
