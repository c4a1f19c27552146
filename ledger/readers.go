package ledger

import (
	"context"
	"strings"

	"github.com/goliatone/go-lending/store"
	"github.com/uptrace/bun"
)

// Readers manages library members
type Readers struct {
	db      *bun.DB
	tx      store.TransactionManager
	borrows Borrows
	logger  Logger
}

func NewReaders(db *bun.DB, logger Logger) *Readers {
	if logger == nil {
		logger = defLogger{}
	}
	return &Readers{
		db:     db,
		tx:     store.NewTransactor(db),
		logger: logger,
	}
}

func (r *Readers) Create(ctx context.Context, in ReaderInput) (*Reader, error) {
	in = in.normalized()
	if verr := in.Validate(); verr != nil {
		return nil, verr
	}

	reader := &Reader{Name: in.Name, Email: in.Email}
	if _, err := r.db.NewInsert().Model(reader).Exec(ctx); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, ErrDuplicateReader
		}
		return nil, persistenceError(err, "failed to create reader")
	}

	r.logger.Debug("reader created", "reader_id", reader.ID)
	return reader, nil
}

func (r *Readers) Get(ctx context.Context, id int64) (*Reader, error) {
	if err := validateIDs(id); err != nil {
		return nil, err
	}
	return r.GetTx(ctx, r.db, id)
}

func (r *Readers) GetTx(ctx context.Context, tx bun.IDB, id int64) (*Reader, error) {
	reader := &Reader{}
	err := tx.NewSelect().
		Model(reader).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrReaderNotFound
		}
		return nil, persistenceError(err, "failed to get reader")
	}
	return reader, nil
}

func (r *Readers) GetByEmail(ctx context.Context, email string) (*Reader, error) {
	reader := &Reader{}
	err := r.db.NewSelect().
		Model(reader).
		Where("?TableAlias.email = ?", strings.ToLower(strings.TrimSpace(email))).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrReaderNotFound
		}
		return nil, persistenceError(err, "failed to get reader by email")
	}
	return reader, nil
}

func (r *Readers) List(ctx context.Context, opts ListOptions) ([]*Reader, error) {
	readers := make([]*Reader, 0)
	err := r.db.NewSelect().
		Model(&readers).
		OrderExpr("?TableAlias.id ASC").
		Limit(opts.limit()).
		Offset(opts.offset()).
		Scan(ctx)
	if err != nil && !store.IsNotFound(err) {
		return nil, persistenceError(err, "failed to list readers")
	}
	return readers, nil
}

func (r *Readers) Update(ctx context.Context, id int64, in ReaderInput) (*Reader, error) {
	if err := validateIDs(id); err != nil {
		return nil, err
	}

	in = in.normalized()
	if verr := in.Validate(); verr != nil {
		return nil, verr
	}

	var reader *Reader
	err := r.tx.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		current, err := r.GetTx(ctx, tx, id)
		if err != nil {
			return err
		}

		current.Name = in.Name
		current.Email = in.Email

		_, err = tx.NewUpdate().
			Model(current).
			Column("name", "email").
			WherePK().
			Exec(ctx)
		if err != nil {
			if store.IsUniqueViolation(err) {
				return ErrDuplicateReader
			}
			return persistenceError(err, "failed to update reader")
		}

		reader = current
		return nil
	})
	if err != nil {
		return nil, persistenceError(err, "failed to update reader")
	}

	return reader, nil
}

// Delete removes a reader that holds no books. Closed borrow records
// stay as history.
func (r *Readers) Delete(ctx context.Context, id int64) error {
	if err := validateIDs(id); err != nil {
		return err
	}

	err := r.tx.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := r.GetTx(ctx, tx, id); err != nil {
			return err
		}

		open, err := r.borrows.CountOpenTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if open > 0 {
			return ErrHasOpenBorrows
		}

		if _, err := tx.NewDelete().
			Model((*Reader)(nil)).
			Where("id = ?", id).
			Exec(ctx); err != nil {
			return persistenceError(err, "failed to delete reader")
		}
		return nil
	})
	if err != nil {
		return persistenceError(err, "failed to delete reader")
	}

	r.logger.Debug("reader deleted", "reader_id", id)
	return nil
}
