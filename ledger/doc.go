// Package ledger keeps the lending state of the library: the book
// catalog with its available copies, the readers, and the borrow
// records that move copies between the shelf and a reader.
//
// Every borrow or return is one transaction. For each book the sum of
// copies_available and its open borrow records never changes across
// successful operations, and a reader never holds more than
// MaxOpenBorrows books at once.
package ledger
