package backend

import (
	"context"
	"net/http"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	Phone     string `json:"phone,omitempty"`
}

type ProfileUpdate struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// AuthResult is the payload of the auth endpoints: {data:{accessToken, user}}.
type AuthResult struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}

func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	var res AuthResult
	err := c.do(ctx, "", http.MethodPost, "/auth/login", nil, creds, &res)
	return res, err
}

// Register creates the account only. The backend does not return a token
// here; the user logs in (or activates via email) afterwards.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	return c.do(ctx, "", http.MethodPost, "/auth/register", nil, reg, nil)
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, token, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// Me fetches the profile for the presented token.
func (c *Client) Me(ctx context.Context, token string) (User, error) {
	var u User
	err := c.do(ctx, token, http.MethodGet, "/auth/me", nil, nil, &u)
	return u, err
}

func (c *Client) UpdateProfile(ctx context.Context, token string, upd ProfileUpdate) (User, error) {
	var u User
	err := c.do(ctx, token, http.MethodPut, "/auth/profile", nil, upd, &u)
	return u, err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, "", http.MethodPost, "/auth/forgot-password", nil, body, nil)
}

// ResetPassword exchanges a reset token for a fresh session token.
func (c *Client) ResetPassword(ctx context.Context, resetToken, password string) (AuthResult, error) {
	var res AuthResult
	body := map[string]string{"password": password}
	err := c.do(ctx, "", http.MethodPut, "/auth/reset-password/"+resetToken, nil, body, &res)
	return res, err
}

// RefreshToken rotates the access token.
func (c *Client) RefreshToken(ctx context.Context, token string) (AuthResult, error) {
	var res AuthResult
	err := c.do(ctx, token, http.MethodPost, "/auth/refresh-token", nil, nil, &res)
	return res, err
}
