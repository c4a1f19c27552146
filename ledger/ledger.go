package ledger

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-lending/store"
	"github.com/uptrace/bun"
)

// Ledger lends books to readers. Every borrow and return runs in one
// transaction so copies_available plus the open records of a book
// stays constant.
type Ledger struct {
	db      *bun.DB
	tx      store.TransactionManager
	books   *Books
	readers *Readers
	borrows Borrows
	clock   Clock
	logger  Logger
	limit   int
}

// Option configures a Ledger
type Option func(*Ledger)

func WithClock(clock Clock) Option {
	return func(l *Ledger) {
		if clock != nil {
			l.clock = clock
		}
	}
}

func WithLogger(logger Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithBorrowLimit sets how many books a reader may hold at once.
// Values below one keep MaxOpenBorrows.
func WithBorrowLimit(limit int) Option {
	return func(l *Ledger) {
		if limit > 0 {
			l.limit = limit
		}
	}
}

// WithTransactionManager replaces the default transactor over db
func WithTransactionManager(tx store.TransactionManager) Option {
	return func(l *Ledger) {
		if tx != nil {
			l.tx = tx
		}
	}
}

func New(db *bun.DB, opts ...Option) *Ledger {
	l := &Ledger{
		db:     db,
		tx:     store.NewTransactor(db),
		clock:  systemClock{},
		logger: defLogger{},
		limit:  MaxOpenBorrows,
	}

	for _, opt := range opts {
		opt(l)
	}

	l.books = NewBooks(db, l.logger)
	l.readers = NewReaders(db, l.logger)
	return l
}

func (l *Ledger) Books() *Books {
	return l.books
}

func (l *Ledger) Readers() *Readers {
	return l.readers
}

func (l *Ledger) Borrows() Borrows {
	return l.borrows
}

func (l *Ledger) BorrowLimit() int {
	return l.limit
}

// Borrow lends one copy of bookID to readerID
func (l *Ledger) Borrow(ctx context.Context, readerID, bookID int64) (*BorrowRecord, error) {
	if err := validateIDs(readerID, bookID); err != nil {
		return nil, err
	}

	var record *BorrowRecord
	err := l.tx.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := l.readers.GetTx(ctx, tx, readerID); err != nil {
			return err
		}

		book, err := l.books.GetForUpdateTx(ctx, tx, bookID)
		if err != nil {
			return err
		}

		if book.CopiesAvailable <= 0 {
			return ErrOutOfStock
		}

		open, err := l.borrows.CountOpenTx(ctx, tx, readerID)
		if err != nil {
			return err
		}

		if open >= l.limit {
			return ErrBorrowLimitExceeded
		}

		held, err := l.borrows.HasOpenTx(ctx, tx, readerID, bookID)
		if err != nil {
			return err
		}

		if held {
			return ErrAlreadyBorrowed
		}

		if err := l.books.takeCopyTx(ctx, tx, bookID); err != nil {
			return err
		}

		opened, err := l.borrows.OpenTx(ctx, tx, readerID, bookID, l.clock.Now())
		if err != nil {
			return err
		}

		record = opened
		return nil
	})

	if err != nil {
		l.logBorrowFailure("borrow rejected", readerID, bookID, err)
		return nil, persistenceError(err, "failed to borrow book")
	}

	l.logger.Info("book borrowed", "reader_id", readerID, "book_id", bookID, "record_id", record.ID)
	return record, nil
}

// Return closes the open record of the pair and puts the copy back
func (l *Ledger) Return(ctx context.Context, readerID, bookID int64) (*BorrowRecord, error) {
	if err := validateIDs(readerID, bookID); err != nil {
		return nil, err
	}

	var record *BorrowRecord
	err := l.tx.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := l.readers.GetTx(ctx, tx, readerID); err != nil {
			return err
		}

		if _, err := l.books.GetForUpdateTx(ctx, tx, bookID); err != nil {
			return err
		}

		open, err := l.borrows.FindOpenTx(ctx, tx, readerID, bookID)
		if err != nil {
			return err
		}

		now := l.clock.Now().UTC()
		closed, err := l.borrows.CloseTx(ctx, tx, open.ID, now)
		if err != nil {
			return err
		}

		if !closed {
			return ErrNotBorrowed
		}

		if err := l.books.addCopiesTx(ctx, tx, bookID, 1); err != nil {
			return err
		}

		open.ReturnedAt = &now
		record = open
		return nil
	})

	if err != nil {
		l.logBorrowFailure("return rejected", readerID, bookID, err)
		return nil, persistenceError(err, "failed to return book")
	}

	l.logger.Info("book returned", "reader_id", readerID, "book_id", bookID, "record_id", record.ID)
	return record, nil
}

// ListOpenBorrows returns the books readerID currently holds
func (l *Ledger) ListOpenBorrows(ctx context.Context, readerID int64) ([]*BorrowRecord, error) {
	if err := validateIDs(readerID); err != nil {
		return nil, err
	}
	return l.borrows.ListByReaderTx(ctx, l.db, readerID, true)
}

// ListBorrows returns every record of readerID, returned ones included
func (l *Ledger) ListBorrows(ctx context.Context, readerID int64) ([]*BorrowRecord, error) {
	if err := validateIDs(readerID); err != nil {
		return nil, err
	}
	return l.borrows.ListByReaderTx(ctx, l.db, readerID, false)
}

func (l *Ledger) logBorrowFailure(msg string, readerID, bookID int64, err error) {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Category != goerrors.CategoryInternal {
		l.logger.Debug(msg, "reader_id", readerID, "book_id", bookID, "reason", richErr.TextCode)
		return
	}
	l.logger.Error(msg, "reader_id", readerID, "book_id", bookID, "error", err)
}
