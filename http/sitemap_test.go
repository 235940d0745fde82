package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"

	"github.com/fwojciec/sitepush"
	sitepushhttp "github.com/fwojciec/sitepush/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemapService_FetchURLs_URLSet(t *testing.T) {
	t.Parallel()

	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/posts/first</loc></url>
  <url><loc>
    {{BASE}}/posts/second
  </loc></url>
  <url><lastmod>2026-01-01</lastmod></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": sitemapXML,
	})
	defer srv.Close()

	svc := sitepushhttp.NewSitemapService(srv.Client())
	urls, err := svc.FetchURLs(context.Background(), srv.URL+"/sitemap.xml")

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/posts/first", srv.URL + "/posts/second"}, urls)
}

func TestSitemapService_FetchURLs_SitemapIndex(t *testing.T) {
	t.Parallel()

	sitemapIndex := `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>{{BASE}}/sitemap-posts.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/sitemap-pages.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/sitemap-posts.xml</loc></sitemap>
</sitemapindex>`

	sitemapPosts := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/posts/first</loc></url>
</urlset>`

	sitemapPages := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/about</loc></url>
</urlset>`

	srv, hits := newCountingServer(t, map[string]string{
		"/sitemap.xml":       sitemapIndex,
		"/sitemap-posts.xml": sitemapPosts,
		"/sitemap-pages.xml": sitemapPages,
	})
	defer srv.Close()

	svc := sitepushhttp.NewSitemapService(srv.Client())
	urls, err := svc.FetchURLs(context.Background(), srv.URL+"/sitemap.xml")

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/posts/first", srv.URL + "/about"}, urls)
	assert.Equal(t, 1, hits("/sitemap-posts.xml"), "each sitemap is fetched once")
}

func TestSitemapService_FetchURLs_Unreachable(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, map[string]string{})
	defer srv.Close()

	svc := sitepushhttp.NewSitemapService(srv.Client())
	_, err := svc.FetchURLs(context.Background(), srv.URL+"/sitemap.xml")

	require.Error(t, err)
	assert.Equal(t, sitepush.EUNAVAILABLE, sitepush.ErrorCode(err))
	assert.Contains(t, sitepush.ErrorMessage(err), "HTTP 404")
}

func TestSitemapService_FetchURLs_Empty(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": `<?xml version="1.0" encoding="UTF-8"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></urlset>`,
	})
	defer srv.Close()

	svc := sitepushhttp.NewSitemapService(srv.Client())
	_, err := svc.FetchURLs(context.Background(), srv.URL+"/sitemap.xml")

	assert.Equal(t, sitepush.EUNAVAILABLE, sitepush.ErrorCode(err))
}

func TestSitemapService_FetchURLs_NotXML(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": `this is not a sitemap`,
	})
	defer srv.Close()

	svc := sitepushhttp.NewSitemapService(srv.Client())
	_, err := svc.FetchURLs(context.Background(), srv.URL+"/sitemap.xml")

	assert.Equal(t, sitepush.EUNAVAILABLE, sitepush.ErrorCode(err))
}

func TestSitemapService_FetchURLs_ContextCancellation(t *testing.T) {
	t.Parallel()

	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/page1</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": sitemapXML,
	})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	svc := sitepushhttp.NewSitemapService(srv.Client())
	_, err := svc.FetchURLs(ctx, srv.URL+"/sitemap.xml")

	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}

// newTestServer creates a test HTTP server with the given path->content mapping.
// Content strings may contain {{BASE}} which is replaced with the server URL.
func newTestServer(t *testing.T, content map[string]string) *httptest.Server {
	t.Helper()
	srv, _ := newCountingServer(t, content)
	return srv
}

// newCountingServer is newTestServer that also counts requests per path.
func newCountingServer(t *testing.T, content map[string]string) (*httptest.Server, func(path string) int) {
	t.Helper()

	var mu sync.Mutex
	hits := make(map[string]int)

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()

		body, ok := content[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		body = replaceBaseURL(body, srv.URL)

		switch {
		case regexp.MustCompile(`\.html?$`).MatchString(r.URL.Path), r.URL.Path == "/":
			w.Header().Set("Content-Type", "text/html")
		default:
			w.Header().Set("Content-Type", "application/xml")
		}
		_, _ = w.Write([]byte(body))
	}))

	return srv, func(path string) int {
		mu.Lock()
		defer mu.Unlock()
		return hits[path]
	}
}

func replaceBaseURL(content, baseURL string) string {
	return regexp.MustCompile(`\{\{BASE\}\}`).ReplaceAllString(content, baseURL)
}
