package ledger

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidID            = "INVALID_ID"
	TextCodeReaderNotFound       = "READER_NOT_FOUND"
	TextCodeBookNotFound         = "BOOK_NOT_FOUND"
	TextCodeOutOfStock           = "OUT_OF_STOCK"
	TextCodeBorrowLimitExceeded  = "BORROW_LIMIT_EXCEEDED"
	TextCodeAlreadyBorrowed      = "ALREADY_BORROWED"
	TextCodeNotBorrowed          = "NOT_BORROWED"
	TextCodeDuplicateBook        = "DUPLICATE_BOOK"
	TextCodeDuplicateReader      = "DUPLICATE_READER"
	TextCodeHasOpenBorrows       = "HAS_OPEN_BORROWS"
	TextCodeInvalidCopies        = "INVALID_COPIES"
	TextCodeInvalidBookPayload   = "INVALID_BOOK"
	TextCodeInvalidReaderPayload = "INVALID_READER"
)

// CategoryPolicy marks requests that are well formed but not allowed
// by the lending rules right now.
const CategoryPolicy = goerrors.CategoryOperation

var ErrInvalidID = goerrors.New("ids must be positive integers", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidID).
	WithCode(goerrors.CodeBadRequest)

var ErrReaderNotFound = goerrors.New("reader not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeReaderNotFound).
	WithCode(goerrors.CodeNotFound)

var ErrBookNotFound = goerrors.New("book not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeBookNotFound).
	WithCode(goerrors.CodeNotFound)

var ErrNotBorrowed = goerrors.New("book is not borrowed by this reader", goerrors.CategoryNotFound).
	WithTextCode(TextCodeNotBorrowed).
	WithCode(goerrors.CodeNotFound)

var ErrOutOfStock = goerrors.New("no copies of this book are available", CategoryPolicy).
	WithTextCode(TextCodeOutOfStock).
	WithCode(http.StatusUnprocessableEntity)

var ErrBorrowLimitExceeded = goerrors.New("reader already holds the maximum number of books", CategoryPolicy).
	WithTextCode(TextCodeBorrowLimitExceeded).
	WithCode(http.StatusUnprocessableEntity)

var ErrAlreadyBorrowed = goerrors.New("reader already borrowed this book", goerrors.CategoryConflict).
	WithTextCode(TextCodeAlreadyBorrowed).
	WithCode(goerrors.CodeConflict)

var ErrDuplicateBook = goerrors.New("a book with this isbn already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateBook).
	WithCode(goerrors.CodeConflict)

var ErrDuplicateReader = goerrors.New("a reader with this email already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateReader).
	WithCode(goerrors.CodeConflict)

var ErrHasOpenBorrows = goerrors.New("record is referenced by open borrows", goerrors.CategoryConflict).
	WithTextCode(TextCodeHasOpenBorrows).
	WithCode(goerrors.CodeConflict)

var ErrInvalidCopies = goerrors.New("copies must be a positive number", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidCopies).
	WithCode(goerrors.CodeBadRequest)

func persistenceError(err error, message string) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, message).
		WithCode(goerrors.CodeInternal)
}

func validateIDs(ids ...int64) error {
	for _, id := range ids {
		if id <= 0 {
			return ErrInvalidID
		}
	}
	return nil
}
