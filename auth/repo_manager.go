package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-lending/store"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	DB() bun.IDB
	Users() Users
	Sessions() *SessionRegistry
}

type mngr struct {
	db       *bun.DB
	tx       *store.Transactor
	users    Users
	sessions *SessionRegistry
}

func NewRepositoryManager(db *bun.DB, clock Clock, logger Logger) RepositoryManager {
	if clock == nil {
		clock = SystemClock
	}

	return &mngr{
		db:       db,
		tx:       store.NewTransactor(db),
		users:    NewUsersRepository(db, clock),
		sessions: NewSessionRegistry(clock, logger),
	}
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository db should be initialized")
	}

	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.sessions == nil {
		return errors.New("repository sessions should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return m.tx.RunInTx(ctx, opts, f)
}

func (m mngr) DB() bun.IDB {
	return m.db
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Sessions() *SessionRegistry {
	return m.sessions
}
