// Package testutil holds in-memory repositories used by usecase tests and
// the behaviour suite.
package testutil
