// Package gdocs authenticates against Google and publishes the assembled
// text as a Google Doc.
package gdocs

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/pkg/browser"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	docs "google.golang.org/api/docs/v1"
)

// scopes cover creating documents and editing files this tool creates.
var scopes = []string{docs.DocumentsScope, docs.DriveFileScope}

// Credentials produces an authorized token source. A valid cached token is
// used as-is with no network traffic; an expired token with a refresh token
// is refreshed and re-persisted; otherwise the interactive consent flow runs
// and its token is persisted. The client-secret file is only required once
// the cached token cannot be used on its own.
func Credentials(ctx context.Context, credentialsPath string, store TokenStore, logger *zap.Logger) (oauth2.TokenSource, error) {
	tok, err := store.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Ignoring unreadable token file", zap.String("path", store.Path), zap.Error(err))
		tok = nil
	}

	if tok != nil && tok.Valid() {
		logger.Debug("Using cached token", zap.Time("expiry", tok.Expiry))
		return oauth2.StaticTokenSource(tok), nil
	}

	conf, err := loadClientConfig(credentialsPath)
	if err != nil {
		return nil, err
	}
	return credentialsWithConfig(ctx, conf, tok, store, logger)
}

// credentialsWithConfig holds the refresh-or-reauthenticate logic once the
// client configuration is known. Split out so tests can point conf at a
// fake token endpoint.
func credentialsWithConfig(ctx context.Context, conf *oauth2.Config, tok *oauth2.Token, store TokenStore, logger *zap.Logger) (oauth2.TokenSource, error) {
	if tok != nil && tok.RefreshToken != "" {
		logger.Info("Refreshing expired token")
		refreshed, err := conf.TokenSource(ctx, tok).Token()
		if err != nil {
			return nil, fmt.Errorf("failed to refresh token: %w", err)
		}
		if err := store.Save(refreshed); err != nil {
			return nil, err
		}
		return conf.TokenSource(ctx, refreshed), nil
	}

	tok, err := authorize(ctx, conf, logger)
	if err != nil {
		return nil, err
	}
	if err := store.Save(tok); err != nil {
		return nil, err
	}
	logger.Info("Persisted new token", zap.String("path", store.Path))
	return conf.TokenSource(ctx, tok), nil
}

// loadClientConfig parses the downloaded OAuth client-secret file.
func loadClientConfig(path string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s not found: download OAuth client credentials from the Google Cloud Console and place the file next to this tool", path)
		}
		return nil, fmt.Errorf("failed to read client credentials %s: %w", path, err)
	}
	conf, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client credentials %s: %w", path, err)
	}
	return conf, nil
}

// authorize runs the installed-app consent flow: listen on an ephemeral
// loopback port, send the user to the consent page, and exchange the code
// delivered to the callback for a token.
func authorize(ctx context.Context, conf *oauth2.Config, logger *zap.Logger) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start local callback listener: %w", err)
	}
	defer ln.Close()

	cfg := *conf
	cfg.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())

	state, err := randomState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}

	type result struct {
		code string
		err  error
	}
	results := make(chan result, 1)

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- result{err: errors.New("oauth callback state mismatch")}
		case q.Get("error") != "":
			http.Error(w, "consent denied", http.StatusBadRequest)
			results <- result{err: fmt.Errorf("consent denied: %s", q.Get("error"))}
		default:
			fmt.Fprintln(w, "Authentication complete. You can close this window.")
			results <- result{code: q.Get("code")}
		}
	})}
	go srv.Serve(ln)
	defer srv.Close()

	url := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	fmt.Printf("Opening browser for Google consent. If nothing opens, visit:\n%s\n", url)
	if err := browser.OpenURL(url); err != nil {
		logger.Warn("Failed to open browser", zap.Error(err))
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		tok, err := cfg.Exchange(ctx, res.code)
		if err != nil {
			return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
		}
		return tok, nil
	}
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
