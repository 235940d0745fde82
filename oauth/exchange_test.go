package oauth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/fwojciec/sitepush"
	"github.com/fwojciec/sitepush/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const installedSecret = `{
  "installed": {
    "client_id": "123.apps.googleusercontent.com",
    "project_id": "indexing-project-1",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "client_secret": "shh",
    "redirect_uris": ["http://localhost"]
  }
}`

func TestParseClientSecret(t *testing.T) {
	t.Parallel()

	t.Run("parses installed client secrets", func(t *testing.T) {
		t.Parallel()

		secret, err := oauth.ParseClientSecret([]byte(installedSecret))

		require.NoError(t, err)
		assert.Equal(t, "indexing-project-1", secret.ProjectID)
		assert.Equal(t, "123.apps.googleusercontent.com", secret.Config.ClientID)
		assert.Equal(t, "shh", secret.Config.ClientSecret)
		assert.Equal(t, []string{sitepush.IndexingScope}, secret.Config.Scopes)
	})

	t.Run("parses web client secrets", func(t *testing.T) {
		t.Parallel()

		data := `{"web":{"client_id":"web-id","client_secret":"web-secret","project_id":"web-project",
			"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token",
			"redirect_uris":["https://example.com/callback"]}}`

		secret, err := oauth.ParseClientSecret([]byte(data))

		require.NoError(t, err)
		assert.Equal(t, "web-project", secret.ProjectID)
		assert.Equal(t, "web-id", secret.Config.ClientID)
	})

	t.Run("rejects secrets without project", func(t *testing.T) {
		t.Parallel()

		data := `{"installed":{"client_id":"id","client_secret":"s","redirect_uris":["http://localhost"]}}`

		_, err := oauth.ParseClientSecret([]byte(data))

		assert.Equal(t, sitepush.EINVALID, sitepush.ErrorCode(err))
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()

		_, err := oauth.ParseClientSecret([]byte(`not json`))

		assert.Equal(t, sitepush.EINVALID, sitepush.ErrorCode(err))
	})

	t.Run("builds credentials for an account", func(t *testing.T) {
		t.Parallel()

		secret, err := oauth.ParseClientSecret([]byte(installedSecret))
		require.NoError(t, err)

		cred := secret.Credential("acct-1", "refresh")

		assert.Equal(t, "acct-1", cred.AccountID)
		assert.Equal(t, "indexing-project-1", cred.ProjectID)
		assert.Equal(t, "refresh", cred.RefreshToken)
		require.NoError(t, cred.Validate())
	})
}

func newSecret(tokenURL string) *oauth.ClientSecret {
	return &oauth.ClientSecret{
		ProjectID: "project-1",
		Config: &oauth2.Config{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:   "https://accounts.example.com/auth",
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
			Scopes: []string{sitepush.IndexingScope},
		},
	}
}

// callback performs the browser redirect for the consent URL.
func callback(t *testing.T, authURL string, params url.Values) int {
	t.Helper()

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	redirect := u.Query().Get("redirect_uri")
	if params.Get("state") == "" {
		params.Set("state", u.Query().Get("state"))
	}

	resp, err := http.Get(redirect + "?" + params.Encode())
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestExchanger_Exchange(t *testing.T) {
	t.Parallel()

	t.Run("exchanges the callback code for a refresh token", func(t *testing.T) {
		t.Parallel()

		tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
			assert.Equal(t, "code-1", r.PostForm.Get("code"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"a","refresh_token":"r-1","token_type":"Bearer","expires_in":3600}`))
		}))
		defer tokens.Close()

		var status int
		ex := &oauth.Exchanger{}
		token, err := ex.Exchange(context.Background(), newSecret(tokens.URL), func(authURL string) error {
			u, err := url.Parse(authURL)
			require.NoError(t, err)
			assert.Equal(t, "offline", u.Query().Get("access_type"))
			assert.Equal(t, "consent", u.Query().Get("prompt"))
			assert.Equal(t, sitepush.IndexingScope, u.Query().Get("scope"))

			status = callback(t, authURL, url.Values{"code": {"code-1"}})
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, "r-1", token)
		assert.Equal(t, http.StatusCreated, status)
	})

	t.Run("ignores callbacks with a foreign state", func(t *testing.T) {
		t.Parallel()

		tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"a","refresh_token":"r-2","token_type":"Bearer"}`))
		}))
		defer tokens.Close()

		var statuses []int
		ex := &oauth.Exchanger{}
		token, err := ex.Exchange(context.Background(), newSecret(tokens.URL), func(authURL string) error {
			statuses = append(statuses, callback(t, authURL, url.Values{"code": {"x"}, "state": {"forged"}}))
			statuses = append(statuses, callback(t, authURL, url.Values{"code": {"y"}}))
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, "r-2", token)
		assert.Equal(t, []int{http.StatusBadRequest, http.StatusCreated}, statuses)
	})

	t.Run("fails when the callback has no code", func(t *testing.T) {
		t.Parallel()

		var status int
		ex := &oauth.Exchanger{}
		_, err := ex.Exchange(context.Background(), newSecret("http://127.0.0.1:1/token"), func(authURL string) error {
			status = callback(t, authURL, url.Values{})
			return nil
		})

		assert.Equal(t, sitepush.EINVALID, sitepush.ErrorCode(err))
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("fails when the token has no refresh token", func(t *testing.T) {
		t.Parallel()

		tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"a","token_type":"Bearer"}`))
		}))
		defer tokens.Close()

		ex := &oauth.Exchanger{}
		_, err := ex.Exchange(context.Background(), newSecret(tokens.URL), func(authURL string) error {
			callback(t, authURL, url.Values{"code": {"c"}})
			return nil
		})

		assert.Equal(t, sitepush.EUNAUTHORIZED, sitepush.ErrorCode(err))
	})

	t.Run("returns when the context ends before the callback", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		ex := &oauth.Exchanger{}
		_, err := ex.Exchange(ctx, newSecret("http://127.0.0.1:1/token"), func(string) error { return nil })

		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
