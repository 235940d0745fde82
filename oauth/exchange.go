package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/sitepush"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// CallbackPath is the path the consent screen redirects to.
const CallbackPath = "/oauth/callback"

// Exchanger runs the authorization-code consent flow on a loopback
// callback server and returns the resulting refresh token.
type Exchanger struct {
	// Addr is the callback listen address. Defaults to "127.0.0.1:0".
	Addr string

	// HTTPClient is used for the code exchange. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client
}

// callbackResult carries the authorization code from the callback handler.
type callbackResult struct {
	code string
	err  error
}

// Exchange starts the callback server, hands the consent URL to open and
// waits for the redirect. The code is exchanged for a token, which must
// carry a refresh token.
func (e *Exchanger) Exchange(ctx context.Context, secret *ClientSecret, open func(authURL string) error) (string, error) {
	addr := e.Addr
	if addr == "" {
		addr = "127.0.0.1:0"
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listen for oauth callback: %w", err)
	}

	cfg := *secret.Config
	cfg.RedirectURL = "http://" + ln.Addr().String() + CallbackPath
	state := uuid.NewString()

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, callbackHandler(state, results))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
	if err := open(authURL); err != nil {
		return "", err
	}

	var res callbackResult
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res = <-results:
	}
	if res.err != nil {
		return "", res.err
	}

	if e.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, e.HTTPClient)
	}
	tok, err := cfg.Exchange(ctx, res.code)
	if err != nil {
		return "", sitepush.Errorf(sitepush.EUNAUTHORIZED, "failed to exchange authorization code: %v", err)
	}
	if tok.RefreshToken == "" {
		return "", sitepush.Errorf(sitepush.EUNAUTHORIZED, "token response has no refresh token")
	}
	return tok.RefreshToken, nil
}

// callbackHandler validates the redirect and forwards the code. Only the
// first valid callback is delivered.
func callbackHandler(state string, results chan<- callbackResult) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if q.Get("state") != state {
			writeCallback(w, http.StatusBadRequest, "state mismatch")
			return
		}
		if msg := q.Get("error"); msg != "" {
			writeCallback(w, http.StatusBadRequest, msg)
			deliver(results, callbackResult{err: sitepush.Errorf(sitepush.EUNAUTHORIZED, "consent denied: %s", msg)})
			return
		}
		code := q.Get("code")
		if code == "" {
			writeCallback(w, http.StatusBadRequest, "authorization code not found")
			deliver(results, callbackResult{err: sitepush.Errorf(sitepush.EINVALID, "authorization code not found")})
			return
		}

		writeCallback(w, http.StatusCreated, "")
		deliver(results, callbackResult{code: code})
	}
}

func deliver(results chan<- callbackResult, res callbackResult) {
	select {
	case results <- res:
	default:
	}
}

func writeCallback(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Success bool   `json:"success"`
		Message string `json:"message,omitempty"`
	}{Success: status < 300, Message: message})
}
