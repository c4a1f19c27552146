package ledger

import (
	"time"

	"github.com/uptrace/bun"
)

// Book is a catalog entry with the number of copies on the shelf
type Book struct {
	bun.BaseModel   `bun:"table:books,alias:b"`
	ID              int64  `bun:"id,pk,autoincrement" json:"id"`
	Title           string `bun:"title,notnull" json:"title"`
	Author          string `bun:"author,notnull" json:"author"`
	Year            int    `bun:"publication_year,notnull" json:"publication_year"`
	ISBN            string `bun:"isbn,notnull,unique" json:"isbn"`
	CopiesAvailable int    `bun:"copies_available,notnull" json:"copies_available"`
	Description     string `bun:"description,notnull" json:"description"`
}

// Reader is a library member who can borrow books
type Reader struct {
	bun.BaseModel `bun:"table:readers,alias:r"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	Name          string `bun:"name,notnull" json:"name"`
	Email         string `bun:"email,notnull,unique" json:"email"`
}

// BorrowRecord tracks one copy of a book lent to a reader.
// It is open while ReturnedAt is nil.
type BorrowRecord struct {
	bun.BaseModel `bun:"table:borrow_records,alias:br"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	ReaderID      int64      `bun:"reader_id,notnull" json:"reader_id"`
	BookID        int64      `bun:"book_id,notnull" json:"book_id"`
	BorrowedAt    time.Time  `bun:"borrowed_at,notnull" json:"borrowed_at"`
	ReturnedAt    *time.Time `bun:"returned_at,nullzero" json:"returned_at,omitempty"`
}

func (r *BorrowRecord) IsOpen() bool {
	return r.ReturnedAt == nil
}
