package httpapi

import (
	"context"
	"fmt"

	"github.com/goliatone/go-lending/auth"
	"github.com/goliatone/go-lending/ledger"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type defLogger struct{}

func (defLogger) Debug(msg string, args ...any) {}

func (defLogger) Info(msg string, args ...any) {}

func (defLogger) Warn(msg string, args ...any) {
	fmt.Println(append([]any{"[WRN] HTTP " + msg}, args...)...)
}

func (defLogger) Error(msg string, args ...any) {
	fmt.Println(append([]any{"[ERR] HTTP " + msg}, args...)...)
}

// AuthService is the identity lifecycle the auth routes drive
type AuthService interface {
	Register(ctx context.Context, msg auth.RegisterUserMessage) (*auth.User, error)
	Login(ctx context.Context, msg auth.LoginMessage) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Logout(ctx context.Context, user *auth.User) error
}

// Resolver turns an access token into the identity it was issued to
type Resolver interface {
	Resolve(ctx context.Context, accessToken string) (*auth.User, error)
}

// Lending borrows and returns books
type Lending interface {
	Borrow(ctx context.Context, readerID, bookID int64) (*ledger.BorrowRecord, error)
	Return(ctx context.Context, readerID, bookID int64) (*ledger.BorrowRecord, error)
	ListOpenBorrows(ctx context.Context, readerID int64) ([]*ledger.BorrowRecord, error)
	ListBorrows(ctx context.Context, readerID int64) ([]*ledger.BorrowRecord, error)
}

type BookCatalog interface {
	Create(ctx context.Context, in ledger.BookInput) (*ledger.Book, error)
	Get(ctx context.Context, id int64) (*ledger.Book, error)
	List(ctx context.Context, opts ledger.ListOptions) ([]*ledger.Book, error)
	Update(ctx context.Context, id int64, in ledger.BookInput) (*ledger.Book, error)
	Delete(ctx context.Context, id int64) error
}

type ReaderDirectory interface {
	Create(ctx context.Context, in ledger.ReaderInput) (*ledger.Reader, error)
	Get(ctx context.Context, id int64) (*ledger.Reader, error)
	List(ctx context.Context, opts ledger.ListOptions) ([]*ledger.Reader, error)
	Update(ctx context.Context, id int64, in ledger.ReaderInput) (*ledger.Reader, error)
	Delete(ctx context.Context, id int64) error
}

// LendingPayload identifies a reader and a book
type LendingPayload struct {
	ReaderID int64 `json:"reader_id"`
	BookID   int64 `json:"book_id"`
}

// RefreshPayload carries the refresh token to redeem
type RefreshPayload struct {
	RefreshToken string `json:"refresh_token"`
}
