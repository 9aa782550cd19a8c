package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthor_Override(t *testing.T) {
	t.Setenv(AuthorEnv, "  maria  ")
	assert.Equal(t, "maria", Author())
}

func TestAuthor_Fallback(t *testing.T) {
	t.Setenv(AuthorEnv, "")
	// the OS account, USER or "unknown" depending on the environment
	assert.NotEmpty(t, Author())
}
