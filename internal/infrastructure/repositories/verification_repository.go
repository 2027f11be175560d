package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/casaflow/casaflow/internal/core/domain/verification"
	"github.com/casaflow/casaflow/internal/core/ports"
	"github.com/casaflow/casaflow/internal/infrastructure/db"
	"github.com/sirupsen/logrus"
)

// VerificationRepository stores email verification records in Postgres.
// One row per email; all transitions are single guarded statements so
// concurrent requests for the same email are linearized by the database.
type VerificationRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

func NewVerificationRepository(database *db.Database, logger *logrus.Logger) ports.VerificationRepository {
	return &VerificationRepository{
		db:     database,
		logger: logger,
	}
}

func (r *VerificationRepository) Get(ctx context.Context, email string) (*verification.Record, error) {
	var rec verification.Record
	query := `
		SELECT email, code_hash, expires_at, attempts, send_count, window_started_at, last_sent_at, created_at
		FROM email_verifications
		WHERE email = $1`

	err := r.db.DB.GetContext(ctx, &rec, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, verification.ErrNotFound
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"email": email}).WithError(err).Error("db: failed to get verification record")
		}
		return nil, fmt.Errorf("failed to get verification record: %w", err)
	}

	return &rec, nil
}

// IssueCode performs the issuance transition as one statement. The DO
// UPDATE branch re-checks the cooldown and the send cap, and resets the
// send window when it has elapsed; a request that loses a concurrent race
// matches no row and gets verification.ErrIssueConflict.
func (r *VerificationRepository) IssueCode(ctx context.Context, p ports.IssueParams) (*verification.Record, error) {
	query := `
		INSERT INTO email_verifications
			(email, code_hash, expires_at, attempts, send_count, window_started_at, last_sent_at, created_at)
		VALUES ($1, $2, $3, 0, 1, $4, $4, $4)
		ON CONFLICT (email) DO UPDATE SET
			code_hash = EXCLUDED.code_hash,
			expires_at = EXCLUDED.expires_at,
			attempts = 0,
			send_count = CASE
				WHEN $4::timestamptz - email_verifications.window_started_at >= make_interval(secs => $5)
					THEN 1
				ELSE email_verifications.send_count + 1
			END,
			window_started_at = CASE
				WHEN $4::timestamptz - email_verifications.window_started_at >= make_interval(secs => $5)
					THEN $4::timestamptz
				ELSE email_verifications.window_started_at
			END,
			last_sent_at = $4
		WHERE $4::timestamptz - email_verifications.last_sent_at >= make_interval(secs => $6)
		  AND ($4::timestamptz - email_verifications.window_started_at >= make_interval(secs => $5)
		       OR email_verifications.send_count < $7)
		RETURNING email, code_hash, expires_at, attempts, send_count, window_started_at, last_sent_at, created_at`

	var rec verification.Record
	err := r.db.DB.GetContext(ctx, &rec, query,
		p.Email, p.CodeHash, p.ExpiresAt, p.Now,
		p.SendWindow.Seconds(), p.Cooldown.Seconds(), p.MaxSends)
	if err != nil {
		if err == sql.ErrNoRows {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{"email": p.Email}).Debug("db: verification issue upsert matched no row")
			}
			return nil, verification.ErrIssueConflict
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"email": p.Email}).WithError(err).Error("db: failed to upsert verification record")
		}
		return nil, fmt.Errorf("failed to upsert verification record: %w", err)
	}

	return &rec, nil
}

// IncrementAttempts charges one failed attempt against the current code.
// The WHERE clause pins the stored hash and the attempt ceiling, so a
// stale read can never increment a superseded record (lost-update
// prevention), and the counter never passes maxAttempts.
func (r *VerificationRepository) IncrementAttempts(ctx context.Context, email, codeHash string, maxAttempts int) (int, error) {
	query := `
		UPDATE email_verifications
		SET attempts = attempts + 1
		WHERE email = $1 AND code_hash = $2 AND attempts < $3
		RETURNING attempts`

	var attempts int
	err := r.db.DB.GetContext(ctx, &attempts, query, email, codeHash, maxAttempts)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, verification.ErrNotFound
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"email": email}).WithError(err).Error("db: failed to increment verification attempts")
		}
		return 0, fmt.Errorf("failed to increment verification attempts: %w", err)
	}

	return attempts, nil
}

func (r *VerificationRepository) Delete(ctx context.Context, email string) error {
	query := `DELETE FROM email_verifications WHERE email = $1`

	if _, err := r.db.DB.ExecContext(ctx, query, email); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"email": email}).WithError(err).Error("db: failed to delete verification record")
		}
		return fmt.Errorf("failed to delete verification record: %w", err)
	}

	return nil
}
