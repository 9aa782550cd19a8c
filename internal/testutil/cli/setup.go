package cli

import (
	"testing"

	"github.com/thenoetrevino/leadboard/internal/app"
	"github.com/thenoetrevino/leadboard/internal/store"
	"github.com/thenoetrevino/leadboard/internal/testutil"
)

// SetupCLITest creates an in-memory store and returns both the App and the store
// This function is only for CLI tests and is isolated in a separate package
// to avoid import cycles when service tests import testutil
func SetupCLITest(t *testing.T) (*app.App, store.Store) {
	t.Helper()
	st := testutil.NewTestStore(t)

	// Note: no event publisher or listing cache, those are tested elsewhere
	return app.New(st), st
}

// SetupBoard creates board "acme" with the given status titles and returns
// the status ids
func SetupBoard(t *testing.T, st store.Store, titles ...string) []string {
	t.Helper()
	return testutil.CreateTestBoardWithStatuses(t, st, "acme", titles...)
}

// CreateTestLead wraps testutil.CreateTestLead for CLI tests
func CreateTestLead(t *testing.T, st store.Store, boardID, statusID, name string) string {
	t.Helper()
	return testutil.CreateTestLead(t, st, boardID, statusID, name)
}
