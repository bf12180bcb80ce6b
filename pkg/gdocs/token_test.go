package gdocs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenStore_RoundTrip(t *testing.T) {
	store := TokenStore{Path: filepath.Join(t.TempDir(), "token.json")}

	want := &oauth2.Token{
		AccessToken:  "access-123",
		RefreshToken: "refresh-456",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Round(time.Second),
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken {
		t.Errorf("token mismatch: got %+v, want %+v", got, want)
	}
	if !got.Valid() {
		t.Error("round-tripped token should still be valid")
	}
}

func TestTokenStore_MissingFile(t *testing.T) {
	store := TokenStore{Path: filepath.Join(t.TempDir(), "token.json")}
	_, err := store.Load()
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist for a missing token file, got: %v", err)
	}
}

func TestTokenStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := TokenStore{Path: path}.Load()
	if err == nil {
		t.Fatal("expected error for corrupt token file")
	}
	if errors.Is(err, os.ErrNotExist) {
		t.Error("corrupt file must not look like a missing one")
	}
}

func TestTokenStore_OwnerOnlyPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}
	store := TokenStore{Path: filepath.Join(t.TempDir(), "token.json")}
	if err := store.Save(&oauth2.Token{AccessToken: "x"}); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(store.Path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected 0600 permissions on token file, got %o", perm)
	}
}

func TestTokenStore_SaveOverwrites(t *testing.T) {
	store := TokenStore{Path: filepath.Join(t.TempDir(), "token.json")}
	if err := store.Save(&oauth2.Token{AccessToken: "old"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(&oauth2.Token{AccessToken: "new"}); err != nil {
		t.Fatal(err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.AccessToken != "new" {
		t.Errorf("expected overwritten token, got %q", got.AccessToken)
	}
}
