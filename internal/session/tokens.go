package session

import (
	"database/sql"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// TokenTTL is how long a persisted bearer token is honored locally. The
// backend issues 7-day tokens; a shorter JWT exp claim wins when present.
const TokenTTL = 7 * 24 * time.Hour

// TokenRepo persists the per-session bearer token. This is the only durable
// state the storefront owns; everything else lives in the backend.
type TokenRepo struct{ DB *sqlx.DB }

func OpenTokenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  token TEXT NOT NULL,
  expires_at TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);
`
	_, err := db.Exec(schema)
	return err
}

func NewTokenRepo(db *sqlx.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Save binds a bearer token to a session id. Expiry is TokenTTL from now,
// capped by the token's own exp claim when it parses as a JWT.
func (r *TokenRepo) Save(sid, token string) error {
	exp := time.Now().Add(TokenTTL)
	if claimExp, ok := tokenExpiry(token); ok && claimExp.Before(exp) {
		exp = claimExp
	}
	_, err := r.DB.Exec(`
		INSERT INTO sessions(id, token, expires_at, last_seen)
		VALUES(?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET token=excluded.token, expires_at=excluded.expires_at, last_seen=CURRENT_TIMESTAMP
	`, sid, token, exp.UTC().Format(time.RFC3339))
	return err
}

// Get returns the token for sid, or "" when none is stored or it has lapsed.
// Lapsed rows are deleted on read.
func (r *TokenRepo) Get(sid string) (string, error) {
	var row struct {
		Token     string `db:"token"`
		ExpiresAt string `db:"expires_at"`
	}
	err := r.DB.Get(&row, `SELECT token, expires_at FROM sessions WHERE id=?`, sid)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	exp, perr := time.Parse(time.RFC3339, row.ExpiresAt)
	if perr != nil || time.Now().After(exp) {
		_ = r.Delete(sid)
		return "", nil
	}
	_, _ = r.DB.Exec(`UPDATE sessions SET last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return row.Token, nil
}

func (r *TokenRepo) Delete(sid string) error {
	_, err := r.DB.Exec(`DELETE FROM sessions WHERE id=?`, sid)
	return err
}

// PurgeExpired removes lapsed rows; called periodically from main.
func (r *TokenRepo) PurgeExpired() error {
	_, err := r.DB.Exec(`DELETE FROM sessions WHERE expires_at < ?`, time.Now().UTC().Format(time.RFC3339))
	return err
}

// tokenExpiry reads the exp claim without verifying the signature. The
// storefront never validates tokens (the backend does); the claim only caps
// how long we bother persisting one.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
