package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/ironmeet/internal/model"
)

// CreateUser inserts a new user
func (db *DB) CreateUser(ctx context.Context, u model.User) error {
	_, err := db.exec(ctx, db, `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, formatTime(u.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser returns a user by id
func (db *DB) GetUser(ctx context.Context, id string) (model.User, error) {
	return db.getUser(ctx, "id", id)
}

// GetUserByUsername returns a user by username
func (db *DB) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return db.getUser(ctx, "username", username)
}

func (db *DB) getUser(ctx context.Context, col, v string) (model.User, error) {
	var u model.User
	var created string
	err := db.queryRow(ctx, db,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE `+col+` = ?`, v,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("user %s: %w", v, ErrNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	u.CreatedAt = parseTime(created)
	return u, nil
}

// UserExists reports whether the username or email is already taken
func (db *DB) UserExists(ctx context.Context, username, email string) (bool, error) {
	var n int
	err := db.queryRow(ctx, db,
		`SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`, username, email,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return n > 0, nil
}

// CreateSession stores a login session
func (db *DB) CreateSession(ctx context.Context, s model.Session) error {
	_, err := db.exec(ctx, db, `
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)`,
		s.Token, s.UserID, formatTime(s.ExpiresAt), formatTime(s.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession returns the session for token
func (db *DB) GetSession(ctx context.Context, token string) (model.Session, error) {
	var s model.Session
	var expires, created string
	err := db.queryRow(ctx, db,
		`SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = ?`, token,
	).Scan(&s.Token, &s.UserID, &expires, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, fmt.Errorf("session: %w", ErrNotFound)
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to get session: %w", err)
	}
	s.ExpiresAt = parseTime(expires)
	s.CreatedAt = parseTime(created)
	return s, nil
}

// DeleteSession removes a session
func (db *DB) DeleteSession(ctx context.Context, token string) error {
	if _, err := db.exec(ctx, db, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions drops sessions past their expiry
func (db *DB) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := db.exec(ctx, db, `DELETE FROM sessions WHERE expires_at < ?`, formatTime(now))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

// GetSubscription returns the subscription fields of a user
func (db *DB) GetSubscription(ctx context.Context, userID string) (model.Subscription, error) {
	var sub model.Subscription
	err := db.queryRow(ctx, db,
		`SELECT subscription_status, subscription_plan_id FROM users WHERE id = ?`, userID,
	).Scan(&sub.Status, &sub.PlanID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Subscription{}, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return model.Subscription{}, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

// UpdateSubscription records what the billing provider reported
func (db *DB) UpdateSubscription(ctx context.Context, userID string, sub model.Subscription) error {
	res, err := db.exec(ctx, db,
		`UPDATE users SET subscription_status = ?, subscription_plan_id = ? WHERE id = ?`,
		sub.Status, sub.PlanID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	return affectedOne(res, "user", userID)
}
