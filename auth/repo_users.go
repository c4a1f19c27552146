package auth

import (
	"context"

	"github.com/goliatone/go-lending/store"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Users interface {
	repository.Repository[*User]

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	GetByUserIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)
	UpdatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error
}

type users struct {
	repository.Repository[*User]
	db    *bun.DB
	clock Clock
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB, clock Clock) Users {
	if clock == nil {
		clock = SystemClock
	}

	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
		clock:      clock,
	}
}

// IdentityID derives the identity id from the normalized email so the
// same address always maps to the same id.
func IdentityID(email string) uuid.UUID {
	if id, err := hashid.NewUUID(NormalizeEmail(email)); err == nil {
		return id
	}
	return uuid.New()
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	user.Email = NormalizeEmail(user.Email)
	if user.ID == uuid.Nil {
		user.ID = IdentityID(user.Email)
	}

	now := a.clock.Now().UTC()
	user.CreatedAt = &now
	user.UpdatedAt = &now

	record, err := a.Repository.CreateTx(ctx, tx, user)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, internalError(err, "failed to register user")
	}
	return record, nil
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, internalError(err, "failed to get user by email")
	}
	return record, nil
}

func (a *users) GetByUserIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, internalError(err, "failed to get user by id")
	}
	return record, nil
}

func (a *users) UpdatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	res, err := tx.NewUpdate().
		Model((*User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = ?", a.clock.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return internalError(err, "failed to update password")
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ErrIdentityNotFound
	}
	return nil
}
