// Package store opens the relational database behind the lending service,
// applies the embedded schema migrations and exposes the transaction
// boundary used by the auth and ledger packages.
//
// Two drivers are supported. "sqlite" goes through bun's sqliteshim and is
// what tests and single node deployments use. "postgres" goes through the
// pgx stdlib driver; on postgres the repositories add row locks where the
// lending and refresh protocols need them.
package store
