package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-lending/store"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SessionRegistry stores the live refresh token of each subject.
// Every method takes the connection or transaction to run on so the
// refresh protocol can compose them in one transaction.
type SessionRegistry struct {
	clock  Clock
	logger Logger
}

func NewSessionRegistry(clock Clock, logger Logger) *SessionRegistry {
	if clock == nil {
		clock = SystemClock
	}

	if logger == nil {
		logger = defLogger{}
	}

	return &SessionRegistry{clock: clock, logger: logger}
}

// IssueSession makes token the only refresh session of subject.
// A prior session of the same subject is replaced in the same statement.
func (r *SessionRegistry) IssueSession(ctx context.Context, tx bun.IDB, subject uuid.UUID, token string, expiresAt time.Time) error {
	session := &RefreshSession{
		Token:     token,
		SubjectID: subject,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: r.clock.Now().UTC(),
	}

	_, err := tx.NewInsert().
		Model(session).
		On("CONFLICT (subject_id) DO UPDATE").
		Set("token = EXCLUDED.token").
		Set("expires_at = EXCLUDED.expires_at").
		Set("created_at = EXCLUDED.created_at").
		Exec(ctx)
	if err != nil {
		return internalError(err, "failed to issue refresh session")
	}

	return nil
}

// Consume resolves the subject holding token. It does not delete the
// session. On postgres the row stays locked until tx ends so concurrent
// refreshes of the same token serialize.
func (r *SessionRegistry) Consume(ctx context.Context, tx bun.IDB, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrSessionNotFound
	}

	session := &RefreshSession{}
	q := tx.NewSelect().
		Model(session).
		Where("?TableAlias.token = ?", token).
		Limit(1)

	if store.SupportsRowLocks(tx) {
		q = q.For("UPDATE")
	}

	if err := q.Scan(ctx); err != nil {
		if store.IsNotFound(err) {
			return uuid.Nil, ErrSessionNotFound
		}
		return uuid.Nil, internalError(err, "failed to consume refresh session")
	}

	if session.Expired(r.clock.Now()) {
		r.logger.Debug("refresh session expired", "subject", session.SubjectID.String())
		if _, err := r.Delete(ctx, tx, token); err != nil {
			return uuid.Nil, err
		}
		return uuid.Nil, ErrSessionNotFound
	}

	return session.SubjectID, nil
}

// Delete removes the session holding token and reports whether one existed
func (r *SessionRegistry) Delete(ctx context.Context, tx bun.IDB, token string) (bool, error) {
	res, err := tx.NewDelete().
		Model((*RefreshSession)(nil)).
		Where("token = ?", token).
		Exec(ctx)
	if err != nil {
		return false, internalError(err, "failed to delete refresh session")
	}

	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Revoke removes whatever session subject holds
func (r *SessionRegistry) Revoke(ctx context.Context, tx bun.IDB, subject uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*RefreshSession)(nil)).
		Where("subject_id = ?", subject).
		Exec(ctx)
	if err != nil {
		return internalError(err, "failed to revoke refresh session")
	}
	return nil
}

// Purge deletes sessions expired at now and returns how many were removed
func (r *SessionRegistry) Purge(ctx context.Context, tx bun.IDB, now time.Time) (int64, error) {
	res, err := tx.NewDelete().
		Model((*RefreshSession)(nil)).
		Where("expires_at <= ?", now.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, internalError(err, "failed to purge refresh sessions")
	}

	n, _ := res.RowsAffected()
	if n > 0 {
		r.logger.Info("purged expired refresh sessions", "count", n)
	}
	return n, nil
}

// Get returns the session subject holds, if any
func (r *SessionRegistry) Get(ctx context.Context, tx bun.IDB, subject uuid.UUID) (*RefreshSession, error) {
	session := &RefreshSession{}
	err := tx.NewSelect().
		Model(session).
		Where("?TableAlias.subject_id = ?", subject).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, internalError(err, "failed to get refresh session")
	}
	return session, nil
}
