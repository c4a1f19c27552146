package ledger

import (
	"context"
	"time"

	"github.com/goliatone/go-lending/store"
	"github.com/uptrace/bun"
)

// Borrows reads and writes borrow records. Methods run on the given
// connection or transaction.
type Borrows struct{}

func (Borrows) CountOpenTx(ctx context.Context, tx bun.IDB, readerID int64) (int, error) {
	count, err := tx.NewSelect().
		Model((*BorrowRecord)(nil)).
		Where("?TableAlias.reader_id = ?", readerID).
		Where("?TableAlias.returned_at IS NULL").
		Count(ctx)
	if err != nil {
		return 0, persistenceError(err, "failed to count open borrows")
	}
	return count, nil
}

func (Borrows) CountOpenByBookTx(ctx context.Context, tx bun.IDB, bookID int64) (int, error) {
	count, err := tx.NewSelect().
		Model((*BorrowRecord)(nil)).
		Where("?TableAlias.book_id = ?", bookID).
		Where("?TableAlias.returned_at IS NULL").
		Count(ctx)
	if err != nil {
		return 0, persistenceError(err, "failed to count open borrows of book")
	}
	return count, nil
}

// FindOpenTx returns the open record of the pair or ErrNotBorrowed
func (Borrows) FindOpenTx(ctx context.Context, tx bun.IDB, readerID, bookID int64) (*BorrowRecord, error) {
	record := &BorrowRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.reader_id = ?", readerID).
		Where("?TableAlias.book_id = ?", bookID).
		Where("?TableAlias.returned_at IS NULL").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrNotBorrowed
		}
		return nil, persistenceError(err, "failed to find open borrow")
	}
	return record, nil
}

func (Borrows) HasOpenTx(ctx context.Context, tx bun.IDB, readerID, bookID int64) (bool, error) {
	exists, err := tx.NewSelect().
		Model((*BorrowRecord)(nil)).
		Where("?TableAlias.reader_id = ?", readerID).
		Where("?TableAlias.book_id = ?", bookID).
		Where("?TableAlias.returned_at IS NULL").
		Exists(ctx)
	if err != nil {
		return false, persistenceError(err, "failed to check open borrow")
	}
	return exists, nil
}

// OpenTx inserts an open record. A second open record for the same
// pair violates the partial unique index and yields ErrAlreadyBorrowed.
func (Borrows) OpenTx(ctx context.Context, tx bun.IDB, readerID, bookID int64, at time.Time) (*BorrowRecord, error) {
	record := &BorrowRecord{
		ReaderID:   readerID,
		BookID:     bookID,
		BorrowedAt: at.UTC(),
	}

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, ErrAlreadyBorrowed
		}
		return nil, persistenceError(err, "failed to open borrow record")
	}
	return record, nil
}

// CloseTx marks an open record returned. It reports false when the
// record was already closed.
func (Borrows) CloseTx(ctx context.Context, tx bun.IDB, id int64, at time.Time) (bool, error) {
	res, err := tx.NewUpdate().
		Model((*BorrowRecord)(nil)).
		Set("returned_at = ?", at.UTC()).
		Where("id = ?", id).
		Where("returned_at IS NULL").
		Exec(ctx)
	if err != nil {
		return false, persistenceError(err, "failed to close borrow record")
	}

	n, _ := res.RowsAffected()
	return n == 1, nil
}

// ListByReaderTx returns the records of a reader in insertion order
func (Borrows) ListByReaderTx(ctx context.Context, tx bun.IDB, readerID int64, openOnly bool) ([]*BorrowRecord, error) {
	records := make([]*BorrowRecord, 0)
	q := tx.NewSelect().
		Model(&records).
		Where("?TableAlias.reader_id = ?", readerID).
		OrderExpr("?TableAlias.id ASC")

	if openOnly {
		q = q.Where("?TableAlias.returned_at IS NULL")
	}

	if err := q.Scan(ctx); err != nil && !store.IsNotFound(err) {
		return nil, persistenceError(err, "failed to list borrow records")
	}
	return records, nil
}
