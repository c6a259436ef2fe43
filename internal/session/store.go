package session

import (
	"context"
	"errors"

	"storefront/internal/backend"
)

var ErrBadCredentials = errors.New("invalid email or password")

// Status is the resolved authentication state for one request. Loading is
// the zero value and only exists before a session has been resolved.
type Status int

const (
	Loading Status = iota
	Unauthenticated
	Authenticated
	Inactive
	Errored
)

// Session is the per-request view of the auth state. Errored means the token
// could not be checked (network/5xx) and was deliberately kept: the failure
// may be transient and throwing the user out would be worse.
type Session struct {
	Status Status
	User   *backend.User
	Err    string
}

func (s Session) IsAuthenticated() bool { return s.Status == Authenticated }

// Store owns the persisted token: it is the only writer. Reads happen at
// request time through Token/Current.
type Store struct {
	api    *backend.Client
	tokens *TokenRepo

	// onEnd hooks run whenever a session stops being authenticated (logout
	// or token invalidation). The cart store registers here so CartState
	// never outlives the session.
	onEnd []func(sid string)
}

func NewStore(api *backend.Client, tokens *TokenRepo) *Store {
	return &Store{api: api, tokens: tokens}
}

// OnEnd registers a hook called when a session ends. Not safe for concurrent
// registration; wire hooks up during startup.
func (st *Store) OnEnd(fn func(sid string)) {
	st.onEnd = append(st.onEnd, fn)
}

func (st *Store) endSession(sid string) {
	_ = st.tokens.Delete(sid)
	for _, fn := range st.onEnd {
		fn(sid)
	}
}

// Token returns the persisted bearer token for sid, "" when anonymous.
func (st *Store) Token(sid string) string {
	tok, err := st.tokens.Get(sid)
	if err != nil {
		return ""
	}
	return tok
}

// Login authenticates against the backend and persists the returned token.
// A deactivated account surfaces as backend.ErrInactiveAccount, distinct
// from bad credentials; the session stays unauthenticated on any failure.
func (st *Store) Login(ctx context.Context, sid string, creds backend.Credentials) (backend.User, error) {
	res, err := st.api.Login(ctx, creds)
	if err != nil {
		if errors.Is(err, backend.ErrInactiveAccount) {
			return backend.User{}, backend.ErrInactiveAccount
		}
		if errors.Is(err, backend.ErrUnauthorized) || errors.Is(err, backend.ErrForbidden) {
			return backend.User{}, ErrBadCredentials
		}
		return backend.User{}, err
	}
	if res.AccessToken == "" {
		return backend.User{}, ErrBadCredentials
	}
	if err := st.tokens.Save(sid, res.AccessToken); err != nil {
		return backend.User{}, err
	}
	return res.User, nil
}

// Register creates the account; it never authenticates the session.
func (st *Store) Register(ctx context.Context, reg backend.Registration) error {
	return st.api.Register(ctx, reg)
}

// Logout invalidates server-side best-effort, then unconditionally clears
// the persisted token. The server-side failure is the caller's to log, not
// to surface.
func (st *Store) Logout(ctx context.Context, sid string) error {
	var serverErr error
	if tok := st.Token(sid); tok != "" {
		serverErr = st.api.Logout(ctx, tok)
	}
	st.endSession(sid)
	return serverErr
}

// Current resolves the session for a request. A 401/403 from the profile
// check clears the token; network or server errors preserve it but record
// the failure.
func (st *Store) Current(ctx context.Context, sid string) Session {
	tok := st.Token(sid)
	if tok == "" {
		return Session{Status: Unauthenticated}
	}
	u, err := st.api.Me(ctx, tok)
	if err == nil {
		if !u.IsActive {
			st.endSession(sid)
			return Session{Status: Inactive, Err: "account is deactivated"}
		}
		return Session{Status: Authenticated, User: &u}
	}
	if errors.Is(err, backend.ErrInactiveAccount) {
		st.endSession(sid)
		return Session{Status: Inactive, Err: err.Error()}
	}
	if errors.Is(err, backend.ErrUnauthorized) || errors.Is(err, backend.ErrForbidden) {
		st.endSession(sid)
		return Session{Status: Unauthenticated, Err: "session expired"}
	}
	return Session{Status: Errored, Err: err.Error()}
}

// Invalidate force-ends a session. Used when any authenticated call comes
// back 401 or inactive-403: subsequent requests carry no bearer token.
func (st *Store) Invalidate(sid string) {
	st.endSession(sid)
}

// UpdateProfile forwards the edit and returns the refreshed user.
func (st *Store) UpdateProfile(ctx context.Context, sid string, upd backend.ProfileUpdate) (backend.User, error) {
	tok := st.Token(sid)
	if tok == "" {
		return backend.User{}, backend.ErrUnauthorized
	}
	return st.api.UpdateProfile(ctx, tok, upd)
}

// Refresh rotates the access token and persists the replacement.
func (st *Store) Refresh(ctx context.Context, sid string) error {
	tok := st.Token(sid)
	if tok == "" {
		return backend.ErrUnauthorized
	}
	res, err := st.api.RefreshToken(ctx, tok)
	if err != nil {
		return err
	}
	if res.AccessToken != "" {
		return st.tokens.Save(sid, res.AccessToken)
	}
	return nil
}

// ForgotPassword asks the backend to mail a reset link.
func (st *Store) ForgotPassword(ctx context.Context, email string) error {
	return st.api.ForgotPassword(ctx, email)
}

// ResetPassword exchanges a reset token; the backend returns a fresh access
// token which is persisted for the session.
func (st *Store) ResetPassword(ctx context.Context, sid, resetToken, password string) error {
	res, err := st.api.ResetPassword(ctx, resetToken, password)
	if err != nil {
		return err
	}
	if res.AccessToken != "" {
		return st.tokens.Save(sid, res.AccessToken)
	}
	return nil
}
