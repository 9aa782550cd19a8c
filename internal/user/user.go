// Package user resolves who is running a command, for signing interactions.
package user

import (
	"os"
	"os/user"
	"strings"
)

// AuthorEnv overrides the detected author
const AuthorEnv = "LEADBOARD_AUTHOR"

// Author returns the name interactions recorded from this process are signed with.
// It tries, in order:
// 1. LEADBOARD_AUTHOR, for shared machines and scripts
// 2. user.Current() - the OS account
// 3. USER environment variable - fallback for restricted environments
// 4. "unknown" - final fallback to ensure a non-empty value
func Author() string {
	if name := strings.TrimSpace(os.Getenv(AuthorEnv)); name != "" {
		return name
	}
	if currentUser, err := user.Current(); err == nil && currentUser.Username != "" {
		return currentUser.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}
