package ledger_test

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-lending/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookInput_Validate(t *testing.T) {
	valid := ledger.BookInput{
		Title:           "The Dispossessed",
		Author:          "Ursula K. Le Guin",
		Year:            1974,
		ISBN:            "978-0-06-051275-8",
		CopiesAvailable: 2,
	}

	tests := []struct {
		name   string
		mutate func(in *ledger.BookInput)
		field  string
	}{
		{name: "valid", mutate: func(in *ledger.BookInput) {}},
		{name: "missing title", mutate: func(in *ledger.BookInput) { in.Title = "" }, field: "title"},
		{name: "missing author", mutate: func(in *ledger.BookInput) { in.Author = "" }, field: "author"},
		{name: "bad isbn", mutate: func(in *ledger.BookInput) { in.ISBN = "not-an-isbn" }, field: "isbn"},
		{name: "negative copies", mutate: func(in *ledger.BookInput) { in.CopiesAvailable = -1 }, field: "copies_available"},
		{name: "year out of range", mutate: func(in *ledger.BookInput) { in.Year = 12000 }, field: "publication_year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)

			verr := in.Validate()
			if tt.field == "" {
				assert.Nil(t, verr)
				return
			}

			require.NotNil(t, verr)
			assert.Equal(t, goerrors.CategoryValidation, verr.Category)
			assert.Equal(t, ledger.TextCodeInvalidBookPayload, verr.TextCode)
			assert.Contains(t, verr.ValidationMap(), tt.field)
		})
	}
}

func TestReaderInput_Validate(t *testing.T) {
	tests := []struct {
		name  string
		in    ledger.ReaderInput
		field string
	}{
		{name: "valid", in: ledger.ReaderInput{Name: "Shevek", Email: "shevek@anarres.org"}},
		{name: "missing name", in: ledger.ReaderInput{Email: "shevek@anarres.org"}, field: "name"},
		{name: "bad email", in: ledger.ReaderInput{Name: "Shevek", Email: "shevek"}, field: "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := tt.in.Validate()
			if tt.field == "" {
				assert.Nil(t, verr)
				return
			}
			require.NotNil(t, verr)
			assert.Contains(t, verr.ValidationMap(), tt.field)
		})
	}
}

func TestBooks_CRUD(t *testing.T) {
	l, _, _ := newLedger(t)
	ctx := context.Background()
	books := l.Books()

	book, err := books.Create(ctx, ledger.BookInput{
		Title:           "  The Left Hand of Darkness ",
		Author:          "Ursula K. Le Guin",
		Year:            1969,
		ISBN:            "978-0-441-47812-x",
		CopiesAvailable: 1,
	})
	require.NoError(t, err)
	assert.Positive(t, book.ID)
	assert.Equal(t, "The Left Hand of Darkness", book.Title)
	assert.Equal(t, "978-0-441-47812-X", book.ISBN)

	found, err := books.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.Title, found.Title)

	byISBN, err := books.GetByISBN(ctx, "978-0-441-47812-x")
	require.NoError(t, err)
	assert.Equal(t, book.ID, byISBN.ID)

	_, err = books.Create(ctx, ledger.BookInput{
		Title:  "Copy",
		Author: "Someone",
		ISBN:   "978-0-441-47812-X",
	})
	assert.ErrorIs(t, err, ledger.ErrDuplicateBook)

	updated, err := books.Update(ctx, book.ID, ledger.BookInput{
		Title:           "The Left Hand of Darkness",
		Author:          "Ursula K. Le Guin",
		Year:            1969,
		ISBN:            "978-0-441-47812-X",
		CopiesAvailable: 40,
		Description:     "Winter",
	})
	require.NoError(t, err)
	assert.Equal(t, "Winter", updated.Description)

	// update never touches the copy count
	assert.Equal(t, 1, copiesOf(t, l, book.ID))

	adjusted, err := books.AdjustCopies(ctx, book.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, adjusted.CopiesAvailable)

	_, err = books.AdjustCopies(ctx, book.ID, 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidCopies)

	_, err = books.AdjustCopies(ctx, 9999, 1)
	assert.ErrorIs(t, err, ledger.ErrBookNotFound)

	list, err := books.List(ctx, ledger.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, books.Delete(ctx, book.ID))

	_, err = books.Get(ctx, book.ID)
	assert.ErrorIs(t, err, ledger.ErrBookNotFound)

	_, err = books.Get(ctx, 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidID)
}

func TestBooks_ListPaging(t *testing.T) {
	l, _, _ := newLedger(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 5; i++ {
		ids = append(ids, seedBook(t, l, 1).ID)
	}

	page, err := l.Books().List(ctx, ledger.ListOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[3], page[1].ID)
}

func TestReaders_CRUD(t *testing.T) {
	l, _, _ := newLedger(t)
	ctx := context.Background()
	readers := l.Readers()

	reader, err := readers.Create(ctx, ledger.ReaderInput{Name: "Genly Ai", Email: "Genly@Ekumen.org"})
	require.NoError(t, err)
	assert.Equal(t, "genly@ekumen.org", reader.Email)

	_, err = readers.Create(ctx, ledger.ReaderInput{Name: "Other", Email: "genly@ekumen.org"})
	assert.ErrorIs(t, err, ledger.ErrDuplicateReader)

	found, err := readers.GetByEmail(ctx, "GENLY@ekumen.org")
	require.NoError(t, err)
	assert.Equal(t, reader.ID, found.ID)

	_, err = readers.GetByEmail(ctx, "nobody@ekumen.org")
	assert.ErrorIs(t, err, ledger.ErrReaderNotFound)

	updated, err := readers.Update(ctx, reader.ID, ledger.ReaderInput{Name: "Genly", Email: "genly@ekumen.org"})
	require.NoError(t, err)
	assert.Equal(t, "Genly", updated.Name)

	list, err := readers.List(ctx, ledger.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, readers.Delete(ctx, reader.ID))

	_, err = readers.Get(ctx, reader.ID)
	assert.ErrorIs(t, err, ledger.ErrReaderNotFound)
}

func TestDelete_GuardedByOpenBorrows(t *testing.T) {
	l, _, _ := newLedger(t)
	ctx := context.Background()

	book := seedBook(t, l, 1)
	reader := seedReader(t, l)

	_, err := l.Borrow(ctx, reader.ID, book.ID)
	require.NoError(t, err)

	err = l.Books().Delete(ctx, book.ID)
	assert.ErrorIs(t, err, ledger.ErrHasOpenBorrows)

	err = l.Readers().Delete(ctx, reader.ID)
	assert.ErrorIs(t, err, ledger.ErrHasOpenBorrows)

	_, err = l.Return(ctx, reader.ID, book.ID)
	require.NoError(t, err)

	assert.NoError(t, l.Books().Delete(ctx, book.ID))
	assert.NoError(t, l.Readers().Delete(ctx, reader.ID))
}
