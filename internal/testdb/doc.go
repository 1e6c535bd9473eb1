//go:build integration

// Package testdb connects integration tests to a real PostgreSQL database.
//
// Tests are skipped unless SCRY_TEST_DB_URL (or DATABASE_URL) is set. The
// schema is migrated once per process, and each test body runs in its own
// transaction that is rolled back afterwards, so tests may run in parallel:
//
//	func TestSomething(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
//	        s := postgres.NewPostgresUserProgressStore(tx, nil)
//	        ...
//	    })
//	}
package testdb
