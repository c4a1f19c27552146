package ledger

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	goerrors "github.com/goliatone/go-errors"
)

var isbnRE = regexp.MustCompile(`^[0-9Xx-]{10,17}$`)

// BookInput is the payload to create or update a book
type BookInput struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	Year            int    `json:"publication_year"`
	ISBN            string `json:"isbn"`
	CopiesAvailable int    `json:"copies_available"`
	Description     string `json:"description"`
}

// Validate will validate the payload
func (b BookInput) Validate() *goerrors.Error {
	verr := goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&b,
			validation.Field(&b.Title, validation.Required, validation.Length(1, 255)),
			validation.Field(&b.Author, validation.Required, validation.Length(1, 255)),
			validation.Field(&b.Year, validation.Min(0), validation.Max(9999)),
			validation.Field(&b.ISBN, validation.Required, validation.Match(isbnRE)),
			validation.Field(&b.CopiesAvailable, validation.Min(0)),
			validation.Field(&b.Description, validation.Length(0, 4000)),
		)
	}, "invalid book payload")
	if verr != nil {
		return verr.WithTextCode(TextCodeInvalidBookPayload).WithCode(goerrors.CodeBadRequest)
	}
	return nil
}

func (b BookInput) normalized() BookInput {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.ISBN = strings.ToUpper(strings.TrimSpace(b.ISBN))
	b.Description = strings.TrimSpace(b.Description)
	return b
}

// ReaderInput is the payload to create or update a reader
type ReaderInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate will validate the payload
func (r ReaderInput) Validate() *goerrors.Error {
	verr := goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
			validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.EmailFormat),
		)
	}, "invalid reader payload")
	if verr != nil {
		return verr.WithTextCode(TextCodeInvalidReaderPayload).WithCode(goerrors.CodeBadRequest)
	}
	return nil
}

func (r ReaderInput) normalized() ReaderInput {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	return r
}

// ListOptions pages through catalog listings
type ListOptions struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

func (o ListOptions) limit() int {
	switch {
	case o.Limit <= 0:
		return DefaultListLimit
	case o.Limit > MaxListLimit:
		return MaxListLimit
	default:
		return o.Limit
	}
}

func (o ListOptions) offset() int {
	if o.Offset < 0 {
		return 0
	}
	return o.Offset
}
