package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-lending/ledger"
)

func (s *Server) listBooks(c *fiber.Ctx) error {
	opts, err := listOptions(c)
	if err != nil {
		return err
	}

	books, err := s.cfg.Books.List(c.UserContext(), opts)
	if err != nil {
		return err
	}
	return c.JSON(books)
}

func (s *Server) createBook(c *fiber.Ctx) error {
	var payload ledger.BookInput
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	book, err := s.cfg.Books.Create(c.UserContext(), payload)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(book)
}

func (s *Server) getBook(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	book, err := s.cfg.Books.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(book)
}

func (s *Server) updateBook(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var payload ledger.BookInput
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	book, err := s.cfg.Books.Update(c.UserContext(), id, payload)
	if err != nil {
		return err
	}
	return c.JSON(book)
}

func (s *Server) deleteBook(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := s.cfg.Books.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listReaders(c *fiber.Ctx) error {
	opts, err := listOptions(c)
	if err != nil {
		return err
	}

	readers, err := s.cfg.Readers.List(c.UserContext(), opts)
	if err != nil {
		return err
	}
	return c.JSON(readers)
}

func (s *Server) createReader(c *fiber.Ctx) error {
	var payload ledger.ReaderInput
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	reader, err := s.cfg.Readers.Create(c.UserContext(), payload)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(reader)
}

func (s *Server) getReader(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	reader, err := s.cfg.Readers.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(reader)
}

func (s *Server) updateReader(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var payload ledger.ReaderInput
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	reader, err := s.cfg.Readers.Update(c.UserContext(), id, payload)
	if err != nil {
		return err
	}
	return c.JSON(reader)
}

func (s *Server) deleteReader(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := s.cfg.Readers.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) borrow(c *fiber.Ctx) error {
	var payload LendingPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	record, err := s.cfg.Lending.Borrow(c.UserContext(), payload.ReaderID, payload.BookID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

func (s *Server) giveBack(c *fiber.Ctx) error {
	var payload LendingPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	record, err := s.cfg.Lending.Return(c.UserContext(), payload.ReaderID, payload.BookID)
	if err != nil {
		return err
	}
	return c.JSON(record)
}

// borrowed lists open borrows, or the full history with ?all=true
func (s *Server) borrowed(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	list := s.cfg.Lending.ListOpenBorrows
	if c.QueryBool("all", false) {
		list = s.cfg.Lending.ListBorrows
	}

	records, err := list(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(records)
}

func pathID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, ledger.ErrInvalidID
	}
	return int64(id), nil
}

func listOptions(c *fiber.Ctx) (ledger.ListOptions, error) {
	var opts ledger.ListOptions
	if err := c.QueryParser(&opts); err != nil {
		return opts, ErrMalformedQuery
	}
	return opts, nil
}
