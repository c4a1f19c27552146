package ledger

import (
	"context"

	"github.com/goliatone/go-lending/store"
	"github.com/uptrace/bun"
)

// Books manages the catalog. Copies are only ever changed through
// counter statements so concurrent borrows cannot lose updates.
type Books struct {
	db      *bun.DB
	tx      store.TransactionManager
	borrows Borrows
	logger  Logger
}

func NewBooks(db *bun.DB, logger Logger) *Books {
	if logger == nil {
		logger = defLogger{}
	}
	return &Books{
		db:     db,
		tx:     store.NewTransactor(db),
		logger: logger,
	}
}

func (b *Books) Create(ctx context.Context, in BookInput) (*Book, error) {
	in = in.normalized()
	if verr := in.Validate(); verr != nil {
		return nil, verr
	}

	book := &Book{
		Title:           in.Title,
		Author:          in.Author,
		Year:            in.Year,
		ISBN:            in.ISBN,
		CopiesAvailable: in.CopiesAvailable,
		Description:     in.Description,
	}

	if _, err := b.db.NewInsert().Model(book).Exec(ctx); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, ErrDuplicateBook
		}
		return nil, persistenceError(err, "failed to create book")
	}

	b.logger.Debug("book created", "book_id", book.ID, "isbn", book.ISBN)
	return book, nil
}

func (b *Books) Get(ctx context.Context, id int64) (*Book, error) {
	if err := validateIDs(id); err != nil {
		return nil, err
	}
	return b.GetTx(ctx, b.db, id)
}

func (b *Books) GetTx(ctx context.Context, tx bun.IDB, id int64) (*Book, error) {
	return b.get(ctx, tx, id, false)
}

// GetForUpdateTx loads a book and, on postgres, locks its row until
// the transaction ends.
func (b *Books) GetForUpdateTx(ctx context.Context, tx bun.IDB, id int64) (*Book, error) {
	return b.get(ctx, tx, id, true)
}

func (b *Books) get(ctx context.Context, tx bun.IDB, id int64, lock bool) (*Book, error) {
	book := &Book{}
	q := tx.NewSelect().
		Model(book).
		Where("?TableAlias.id = ?", id).
		Limit(1)

	if lock && store.SupportsRowLocks(tx) {
		q = q.For("UPDATE")
	}

	if err := q.Scan(ctx); err != nil {
		if store.IsNotFound(err) {
			return nil, ErrBookNotFound
		}
		return nil, persistenceError(err, "failed to get book")
	}
	return book, nil
}

func (b *Books) GetByISBN(ctx context.Context, isbn string) (*Book, error) {
	book := &Book{}
	err := b.db.NewSelect().
		Model(book).
		Where("?TableAlias.isbn = ?", BookInput{ISBN: isbn}.normalized().ISBN).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrBookNotFound
		}
		return nil, persistenceError(err, "failed to get book by isbn")
	}
	return book, nil
}

func (b *Books) List(ctx context.Context, opts ListOptions) ([]*Book, error) {
	books := make([]*Book, 0)
	err := b.db.NewSelect().
		Model(&books).
		OrderExpr("?TableAlias.id ASC").
		Limit(opts.limit()).
		Offset(opts.offset()).
		Scan(ctx)
	if err != nil && !store.IsNotFound(err) {
		return nil, persistenceError(err, "failed to list books")
	}
	return books, nil
}

// Update replaces the descriptive fields of a book. The copy count in
// the input is ignored; use AdjustCopies.
func (b *Books) Update(ctx context.Context, id int64, in BookInput) (*Book, error) {
	if err := validateIDs(id); err != nil {
		return nil, err
	}

	in = in.normalized()
	if verr := in.Validate(); verr != nil {
		return nil, verr
	}

	var book *Book
	err := b.tx.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		current, err := b.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}

		current.Title = in.Title
		current.Author = in.Author
		current.Year = in.Year
		current.ISBN = in.ISBN
		current.Description = in.Description

		_, err = tx.NewUpdate().
			Model(current).
			Column("title", "author", "publication_year", "isbn", "description").
			WherePK().
			Exec(ctx)
		if err != nil {
			if store.IsUniqueViolation(err) {
				return ErrDuplicateBook
			}
			return persistenceError(err, "failed to update book")
		}

		book = current
		return nil
	})
	if err != nil {
		return nil, persistenceError(err, "failed to update book")
	}

	return book, nil
}

// AdjustCopies adds delta copies to the shelf
func (b *Books) AdjustCopies(ctx context.Context, id int64, delta int) (*Book, error) {
	if err := validateIDs(id); err != nil {
		return nil, err
	}

	if delta <= 0 {
		return nil, ErrInvalidCopies
	}

	var book *Book
	err := b.tx.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := b.GetForUpdateTx(ctx, tx, id); err != nil {
			return err
		}

		if err := b.addCopiesTx(ctx, tx, id, delta); err != nil {
			return err
		}

		current, err := b.GetTx(ctx, tx, id)
		if err != nil {
			return err
		}
		book = current
		return nil
	})
	if err != nil {
		return nil, persistenceError(err, "failed to adjust copies")
	}

	b.logger.Info("book copies added", "book_id", id, "delta", delta, "available", book.CopiesAvailable)
	return book, nil
}

// Delete removes a book that no reader currently holds
func (b *Books) Delete(ctx context.Context, id int64) error {
	if err := validateIDs(id); err != nil {
		return err
	}

	err := b.tx.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := b.GetForUpdateTx(ctx, tx, id); err != nil {
			return err
		}

		open, err := b.borrows.CountOpenByBookTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if open > 0 {
			return ErrHasOpenBorrows
		}

		_, err = tx.NewDelete().
			Model((*Book)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return persistenceError(err, "failed to delete book")
		}
		return nil
	})
	if err != nil {
		return persistenceError(err, "failed to delete book")
	}

	b.logger.Debug("book deleted", "book_id", id)
	return nil
}

// takeCopyTx removes one copy from the shelf, failing with
// ErrOutOfStock when none is left.
func (b *Books) takeCopyTx(ctx context.Context, tx bun.IDB, id int64) error {
	res, err := tx.NewUpdate().
		Model((*Book)(nil)).
		Set("copies_available = copies_available - 1").
		Where("id = ?", id).
		Where("copies_available > 0").
		Exec(ctx)
	if err != nil {
		if store.IsCheckViolation(err) {
			return ErrOutOfStock
		}
		return persistenceError(err, "failed to take a copy")
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOutOfStock
	}
	return nil
}

func (b *Books) addCopiesTx(ctx context.Context, tx bun.IDB, id int64, delta int) error {
	res, err := tx.NewUpdate().
		Model((*Book)(nil)).
		Set("copies_available = copies_available + ?", delta).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return persistenceError(err, "failed to add copies")
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookNotFound
	}
	return nil
}
