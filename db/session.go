/*
 * Copyright 2026 Tamsin Wright
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/flamego/session"
)

// SessionConfig contains options for the SQLite session store.
type SessionConfig struct {
	// Lifetime is the duration to have no access to a session before
	// being recycled. Default is 30 days (720 hours).
	Lifetime time.Duration
	// Encoder is the encoder to encode session data. Default is session.GobEncoder.
	Encoder session.Encoder
	// Decoder is the decoder to decode session data. Default is session.GobDecoder.
	Decoder session.Decoder
}

// SessionStore implements session.Store on the tracker database, so
// flash messages and staged imports survive restarts.
type SessionStore struct {
	store   *Store
	config  SessionConfig
	encoder session.Encoder
	decoder session.Decoder
}

// SessionIniter returns the Initer for the SQLite session store.
func SessionIniter(store *Store) session.Initer {
	return func(ctx context.Context, args ...interface{}) (session.Store, error) {
		var config SessionConfig
		if len(args) > 0 {
			var ok bool
			config, ok = args[0].(SessionConfig)
			if !ok {
				return nil, errors.New("invalid SessionConfig")
			}
		}

		if config.Lifetime == 0 {
			config.Lifetime = 30 * 24 * time.Hour
		}
		if config.Encoder == nil {
			config.Encoder = session.GobEncoder
		}
		if config.Decoder == nil {
			config.Decoder = session.GobDecoder
		}

		return &SessionStore{
			store:   store,
			config:  config,
			encoder: config.Encoder,
			decoder: config.Decoder,
		}, nil
	}
}

// noopIDWriter does nothing; flamego's session middleware manages the
// cookie itself.
func noopIDWriter(_ http.ResponseWriter, _ *http.Request, _ string) {}

// Exist returns true if the session with given ID exists and hasn't
// expired.
func (s *SessionStore) Exist(ctx context.Context, sid string) bool {
	db := s.store.handle()
	if db == nil {
		return false
	}

	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM Sessions WHERE id = ? AND expires_at > ?)`,
		sid, time.Now().Unix(),
	).Scan(&exists)

	return err == nil && exists
}

// Read returns the session with given ID. If a session with the ID does
// not exist, a new session with the same ID is created and returned.
func (s *SessionStore) Read(ctx context.Context, sid string) (session.Session, error) {
	db := s.store.handle()
	if db == nil {
		return nil, ErrStoreClosed
	}

	var data []byte
	err := db.QueryRowContext(ctx,
		`SELECT data FROM Sessions WHERE id = ? AND expires_at > ?`,
		sid, time.Now().Unix(),
	).Scan(&data)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if errors.Is(err, sql.ErrNoRows) || len(data) == 0 {
		return session.NewBaseSession(sid, s.encoder, noopIDWriter), nil
	}

	sessionData, err := s.decoder(data)
	if err != nil {
		// Sessions that no longer decode start over.
		return session.NewBaseSession(sid, s.encoder, noopIDWriter), nil
	}

	return session.NewBaseSessionWithData(sid, s.encoder, noopIDWriter, sessionData), nil
}

// Destroy deletes session with given ID from the session store
// completely.
func (s *SessionStore) Destroy(ctx context.Context, sid string) error {
	return s.store.withRetry("destroy session", func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `DELETE FROM Sessions WHERE id = ?`, sid)
		return err
	})
}

// Touch updates the expiry time of the session with given ID.
func (s *SessionStore) Touch(ctx context.Context, sid string) error {
	expiresAt := time.Now().Add(s.config.Lifetime).Unix()

	return s.store.withRetry("touch session", func(db *sql.DB) error {
		_, err := db.ExecContext(ctx,
			`UPDATE Sessions SET expires_at = ? WHERE id = ?`,
			expiresAt, sid)
		return err
	})
}

// Save persists session data to the session store.
func (s *SessionStore) Save(ctx context.Context, sess session.Session) error {
	data, err := sess.Encode()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(s.config.Lifetime).Unix()

	return s.store.withRetry("save session", func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO Sessions (id, data, expires_at)
			VALUES (?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				data = excluded.data,
				expires_at = excluded.expires_at
		`, sess.ID(), data, expiresAt)
		return err
	})
}

// GC removes expired sessions from the session store.
func (s *SessionStore) GC(ctx context.Context) error {
	return s.store.withRetry("session gc", func(db *sql.DB) error {
		_, err := db.ExecContext(ctx,
			`DELETE FROM Sessions WHERE expires_at <= ?`,
			time.Now().Unix())
		return err
	})
}
