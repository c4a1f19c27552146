package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-lending/auth"
	"github.com/goliatone/go-lending/ledger"
	"github.com/goliatone/go-lending/store"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func (c *cli) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			return store.Migrate(cmd.Context(), db, c.logger.GetLogger("migrations"))
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "rollback",
		Short: "Roll back the last migration group",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			return store.Rollback(cmd.Context(), db, c.logger.GetLogger("migrations"))
		},
	})

	return cmd
}

func (c *cli) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage API identities",
	}

	var email string
	register := &cobra.Command{
		Use:   "register",
		Short: "Register an identity, the password is read from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}

			db, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			auth.SetPasswordCost(c.cfg.GetAuth().GetPasswordCost())

			repo := auth.NewRepositoryManager(db, auth.SystemClock, c.logger.GetLogger("sessions"))
			user, err := auth.NewService(repo, nil).
				WithLogger(c.logger.GetLogger("auth")).
				Register(cmd.Context(), auth.RegisterUserMessage{Email: email, Password: password})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	register.Flags().StringVar(&email, "email", "", "email of the new identity")
	_ = register.MarkFlagRequired("email")

	cmd.AddCommand(register)
	return cmd
}

func (c *cli) bookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Manage the catalog",
	}

	var in ledger.BookInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			book, err := ledger.NewBooks(db, c.logger.GetLogger("ledger")).Create(cmd.Context(), in)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "book %d: %s (%d copies)\n", book.ID, book.Title, book.CopiesAvailable)
			return nil
		},
	}
	add.Flags().StringVar(&in.Title, "title", "", "book title")
	add.Flags().StringVar(&in.Author, "author", "", "book author")
	add.Flags().StringVar(&in.ISBN, "isbn", "", "ISBN-10 or ISBN-13")
	add.Flags().IntVar(&in.Year, "year", 0, "publication year")
	add.Flags().IntVar(&in.CopiesAvailable, "copies", 1, "copies on the shelf")
	add.Flags().StringVar(&in.Description, "description", "", "short description")

	var opts ledger.ListOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "List the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			books, err := ledger.NewBooks(db, c.logger.GetLogger("ledger")).List(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-5s %-40s %-25s %-17s %s\n", "ID", "Title", "Author", "ISBN", "Copies")
			fmt.Fprintln(out, strings.Repeat("-", 96))
			for _, book := range books {
				fmt.Fprintf(out, "%-5d %-40s %-25s %-17s %d\n",
					book.ID, truncate(book.Title, 40), truncate(book.Author, 25), book.ISBN, book.CopiesAvailable)
			}
			return nil
		},
	}
	list.Flags().IntVar(&opts.Limit, "limit", ledger.DefaultListLimit, "page size")
	list.Flags().IntVar(&opts.Offset, "offset", 0, "rows to skip")

	cmd.AddCommand(add, list)
	return cmd
}

func (c *cli) readerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reader",
		Short: "Manage readers",
	}

	var in ledger.ReaderInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a reader",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			reader, err := ledger.NewReaders(db, c.logger.GetLogger("ledger")).Create(cmd.Context(), in)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "reader %d: %s <%s>\n", reader.ID, reader.Name, reader.Email)
			return nil
		},
	}
	add.Flags().StringVar(&in.Name, "name", "", "reader name")
	add.Flags().StringVar(&in.Email, "email", "", "reader email")

	cmd.AddCommand(add)
	return cmd
}

func (c *cli) sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Maintain refresh sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete expired refresh sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			repo := auth.NewRepositoryManager(db, auth.SystemClock, c.logger.GetLogger("sessions"))
			purged, err := auth.NewService(repo, nil).PurgeExpiredSessions(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired sessions\n", purged)
			return nil
		},
	})

	return cmd
}

// readPassword reads a password without echoing it
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
