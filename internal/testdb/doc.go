// Package testdb provides utilities for tests that run against a real
// PostgreSQL database.
//
// Tests using it carry the integration build tag and read the connection
// string from DATABASE_URL (or TEOLGOGO_TEST_DB_URL). Without one they skip:
//
//	//go:build integration
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.Open(t)
//	    testdb.Reset(t, db)
//	    ...
//	}
//
// Open applies the embedded goose migrations once per connection. Reset
// truncates every marketplace table so tests that commit real transactions,
// such as the row lock races, start from an empty schema. Tests that only
// need isolation should prefer WithTx, which rolls back afterwards.
package testdb
