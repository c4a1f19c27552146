package ledger_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-lending/ledger"
	"github.com/goliatone/go-lending/store/storetest"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

var epoch = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newLedger(t *testing.T) (*ledger.Ledger, *bun.DB, *fakeClock) {
	t.Helper()

	db, cleanup := storetest.NewDB(t)
	t.Cleanup(cleanup)

	clock := &fakeClock{now: epoch}
	return ledger.New(db, ledger.WithClock(clock)), db, clock
}

var isbnSeq int

func seedBook(t *testing.T, l *ledger.Ledger, copies int) *ledger.Book {
	t.Helper()

	isbnSeq++
	book, err := l.Books().Create(context.Background(), ledger.BookInput{
		Title:           fmt.Sprintf("Book %d", isbnSeq),
		Author:          "Ursula K. Le Guin",
		Year:            1969,
		ISBN:            fmt.Sprintf("978-0-00-%06d", isbnSeq),
		CopiesAvailable: copies,
	})
	require.NoError(t, err)
	return book
}

var readerSeq int

func seedReader(t *testing.T, l *ledger.Ledger) *ledger.Reader {
	t.Helper()

	readerSeq++
	reader, err := l.Readers().Create(context.Background(), ledger.ReaderInput{
		Name:  fmt.Sprintf("Reader %d", readerSeq),
		Email: fmt.Sprintf("reader%d@example.com", readerSeq),
	})
	require.NoError(t, err)
	return reader
}

func copiesOf(t *testing.T, l *ledger.Ledger, bookID int64) int {
	t.Helper()

	book, err := l.Books().Get(context.Background(), bookID)
	require.NoError(t, err)
	return book.CopiesAvailable
}

func openCountOf(t *testing.T, l *ledger.Ledger, db *bun.DB, bookID int64) int {
	t.Helper()

	n, err := l.Borrows().CountOpenByBookTx(context.Background(), db, bookID)
	require.NoError(t, err)
	return n
}
