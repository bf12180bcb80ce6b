package gdocs

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
)

// TokenStore persists OAuth tokens to a local JSON file. It is the only
// place the token file is read or written; callers inject it rather than
// touching the file themselves.
type TokenStore struct {
	Path string
}

// Load reads the persisted token. A missing file surfaces as os.ErrNotExist
// so callers can distinguish "no token yet" from a corrupt one.
func (s TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", s.Path, err)
	}
	return &tok, nil
}

// Save writes tok, overwriting any previously persisted token. The file is
// created owner-readable only since it holds live credentials.
func (s TokenStore) Save(tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file %s: %w", s.Path, err)
	}
	return nil
}
