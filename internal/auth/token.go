package auth

import (
	"context"
	"os"
	"strings"
)

// StaticTokenSource always returns the same bearer token. An empty string
// means every request goes out unauthenticated.
type StaticTokenSource string

func (s StaticTokenSource) AccessToken(_ context.Context) (string, error) {
	return string(s), nil
}

// FileTokenSource re-reads the token file on every lookup so a sign-out
// (token file removed) is observed by the next poll cycle. A missing file is
// the signed-out state, not an error.
type FileTokenSource struct {
	Path string
}

func (s FileTokenSource) AccessToken(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
