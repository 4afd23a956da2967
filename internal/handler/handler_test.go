package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qs-lzh/film-catalog/config"
	"github.com/qs-lzh/film-catalog/internal/app"
	"github.com/qs-lzh/film-catalog/internal/hub"
	"github.com/qs-lzh/film-catalog/internal/testinfra"
)

const baseCatalogJSON = `[
	{"id": 1, "title": "Dune", "year": 2021, "durationMin": 155, "releaseDate": "2021-10-22", "rating": 8.0, "director": "Denis Villeneuve", "poster": ""},
	{"id": 2, "title": "Heat", "year": 1995, "durationMin": "170", "releaseDate": "1995-12-15", "rating": "8.3", "director": "Michael Mann", "poster": ""}
]`

func init() {
	gin.SetMode(gin.TestMode)
}

func newServer(t *testing.T, catalogJSON string) *gin.Engine {
	t.Helper()
	return NewRouter(newApp(t, catalogJSON))
}

// newApp runs without a message broker.
func newApp(t *testing.T, catalogJSON string) *app.App {
	t.Helper()

	path := filepath.Join(t.TempDir(), "movies.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogJSON), 0o600))

	cfg := &config.Config{
		Env:             "test",
		BaseCatalogPath: path,
		SessionTTL:      time.Hour,
		AuthRateLimit:   1000,
		AuthRateBurst:   1000,
		OMDbURL:         "http://127.0.0.1:1/",
		OMDbTimeout:     time.Second,
		OMDbTTL:         time.Hour,
	}
	kv, _ := testinfra.NewCache(t)
	return app.New(cfg, testinfra.NewDB(t), kv, nil, zap.NewNop())
}

type response struct {
	Code int
	Body map[string]any
	raw  *httptest.ResponseRecorder
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body any) response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := response{Code: w.Code, raw: w}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out.Body), w.Body.String())
	}
	return out
}

func signUp(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	res := do(t, r, "POST", "/auth/register", "", gin.H{"email": email, "password": "secret1"})
	require.Equal(t, 201, res.Code, res.Body)
	return res.Body["token"].(string)
}

func nopeBody() gin.H {
	return gin.H{
		"title":       "Nope",
		"year":        2022,
		"durationMin": 110,
		"releaseDate": "2022-07-22",
		"rating":      6.5,
		"director":    "Jordan Peele",
	}
}

func TestAuthFlow(t *testing.T) {
	r := newServer(t, baseCatalogJSON)

	res := do(t, r, "POST", "/auth/register", "", gin.H{"email": "Ana@Example.com", "password": "secret1"})
	require.Equal(t, 201, res.Code)
	token := res.Body["token"].(string)
	cookies := res.raw.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	res = do(t, r, "POST", "/auth/register", "", gin.H{"email": "ana@example.com", "password": "secret1"})
	assert.Equal(t, 409, res.Code)

	res = do(t, r, "GET", "/auth/me", token, nil)
	require.Equal(t, 200, res.Code)
	assert.Equal(t, "ana@example.com", res.Body["user"].(map[string]any)["email"])

	res = do(t, r, "POST", "/auth/login", "", gin.H{"email": "nobody@example.com", "password": "secret1"})
	assert.Equal(t, 401, res.Code)
	assert.Equal(t, "Invalid credentials", res.Body["error"])

	res = do(t, r, "POST", "/auth/login", "", gin.H{"email": "ana@example.com", "password": "secret1"})
	assert.Equal(t, 200, res.Code)

	res = do(t, r, "POST", "/auth/logout", token, nil)
	assert.Equal(t, 200, res.Code)
	res = do(t, r, "GET", "/auth/me", token, nil)
	assert.Nil(t, res.Body["user"])
}

func TestSessionCookieIsAccepted(t *testing.T) {
	r := newServer(t, baseCatalogJSON)
	token := signUp(t, r, "ana@example.com")

	req := httptest.NewRequest("GET", "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), "ana@example.com")
}

func TestRegisterValidationError(t *testing.T) {
	r := newServer(t, baseCatalogJSON)

	res := do(t, r, "POST", "/auth/register", "", gin.H{"email": "ana@example.com", "password": "short"})
	assert.Equal(t, 400, res.Code)
	assert.Equal(t, "password", res.Body["field"])
	assert.Equal(t, "Password must be at least 6 characters.", res.Body["message"])
}

func TestMoviesRequireAuthForWrites(t *testing.T) {
	r := newServer(t, baseCatalogJSON)

	res := do(t, r, "POST", "/movies", "", nopeBody())
	assert.Equal(t, 401, res.Code)
	res = do(t, r, "DELETE", "/movies/1", "", nil)
	assert.Equal(t, 401, res.Code)
	res = do(t, r, "GET", "/lists/favorites", "", nil)
	assert.Equal(t, 401, res.Code)
}

func TestMovieLifecycle(t *testing.T) {
	r := newServer(t, baseCatalogJSON)
	token := signUp(t, r, "ana@example.com")

	res := do(t, r, "GET", "/movies", "", nil)
	require.Equal(t, 200, res.Code)
	assert.Len(t, res.Body["movies"], 2)

	dup := nopeBody()
	dup["title"] = "dune"
	dup["year"] = 2021
	res = do(t, r, "POST", "/movies", token, dup)
	assert.Equal(t, 409, res.Code)

	res = do(t, r, "POST", "/movies", token, nopeBody())
	require.Equal(t, 201, res.Code, res.Body)
	assert.EqualValues(t, 3, res.Body["id"])
	assert.Equal(t, "user", res.Body["source"])
	assert.Equal(t, "6.5", res.Body["rating"])

	res = do(t, r, "GET", "/movies?sort=title&dir=desc", token, nil)
	require.Equal(t, 200, res.Code)
	movies := res.Body["movies"].([]any)
	require.Len(t, movies, 3)
	assert.Equal(t, "Nope", movies[0].(map[string]any)["title"])

	res = do(t, r, "GET", "/movies", "", nil)
	assert.Len(t, res.Body["movies"], 2)

	res = do(t, r, "GET", "/movies?sort=budget", "", nil)
	assert.Equal(t, 400, res.Code)
	assert.Equal(t, "sort", res.Body["field"])

	res = do(t, r, "POST", "/lists/favorites/3", token, nil)
	assert.Equal(t, 201, res.Code)
	res = do(t, r, "POST", "/lists/favorites/3", token, nil)
	assert.Equal(t, 200, res.Code)
	assert.Equal(t, false, res.Body["added"])
	res = do(t, r, "POST", "/movies/3/comments", token, gin.H{"text": "so good"})
	require.Equal(t, 201, res.Code)
	assert.Equal(t, "ana@example.com", res.Body["author"])

	res = do(t, r, "GET", "/movies/3", token, nil)
	require.Equal(t, 200, res.Code)
	assert.Len(t, res.Body["comments"], 1)
	assert.Nil(t, res.Body["enrichment"])

	res = do(t, r, "DELETE", "/movies/3", token, nil)
	assert.Equal(t, 200, res.Code)

	res = do(t, r, "GET", "/lists/favorites/3", token, nil)
	assert.Equal(t, false, res.Body["contains"])
	res = do(t, r, "GET", "/movies/3", token, nil)
	assert.Equal(t, 404, res.Code)
	res = do(t, r, "DELETE", "/movies/3", token, nil)
	assert.Equal(t, 404, res.Code)
}

func TestMovieValidationResponse(t *testing.T) {
	r := newServer(t, baseCatalogJSON)
	token := signUp(t, r, "ana@example.com")

	body := nopeBody()
	body["year"] = 1700
	res := do(t, r, "POST", "/movies", token, body)
	assert.Equal(t, 400, res.Code)
	assert.Equal(t, "year", res.Body["field"])
	assert.NotEmpty(t, res.Body["message"])
}

func TestListsEndpoints(t *testing.T) {
	r := newServer(t, baseCatalogJSON)
	token := signUp(t, r, "ana@example.com")

	assert.Equal(t, 201, do(t, r, "POST", "/lists/watched/2", token, nil).Code)
	assert.Equal(t, 201, do(t, r, "POST", "/lists/watched/1", token, nil).Code)
	assert.Equal(t, 404, do(t, r, "POST", "/lists/watched/99", token, nil).Code)
	assert.Equal(t, 400, do(t, r, "POST", "/lists/wishlist/1", token, nil).Code)

	res := do(t, r, "GET", "/lists/watched", token, nil)
	require.Equal(t, 200, res.Code)
	movies := res.Body["movies"].([]any)
	require.Len(t, movies, 2)
	assert.Equal(t, "Dune", movies[0].(map[string]any)["title"])

	res = do(t, r, "GET", "/lists/watched?search=hea", token, nil)
	assert.Len(t, res.Body["movies"], 1)

	assert.Equal(t, 200, do(t, r, "DELETE", "/lists/watched/2", token, nil).Code)
	assert.Equal(t, 200, do(t, r, "DELETE", "/lists/watched", token, nil).Code)
	res = do(t, r, "GET", "/lists/watched", token, nil)
	assert.Empty(t, res.Body["movies"])
}

func TestCommentEndpoints(t *testing.T) {
	r := newServer(t, baseCatalogJSON)
	token := signUp(t, r, "ana@example.com")

	assert.Equal(t, 401, do(t, r, "POST", "/movies/1/comments", "", gin.H{"text": "hello"}).Code)

	res := do(t, r, "POST", "/movies/1/comments", token, gin.H{"text": "x"})
	assert.Equal(t, 400, res.Code)
	assert.Equal(t, "text", res.Body["field"])

	assert.Equal(t, 201, do(t, r, "POST", "/movies/1/comments", token, gin.H{"text": "fine"}).Code)
	res = do(t, r, "GET", "/movies/1/comments", "", nil)
	require.Equal(t, 200, res.Code)
	assert.Len(t, res.Body["comments"], 1)

	assert.Equal(t, 404, do(t, r, "GET", "/movies/abc/comments", "", nil).Code)
}

func TestCatalogUnavailable(t *testing.T) {
	r := newServer(t, `{"not": "an array"}`)
	res := do(t, r, "GET", "/movies", "", nil)
	assert.Equal(t, 503, res.Code)
}

func TestEnrichmentEndpoint(t *testing.T) {
	r := newServer(t, baseCatalogJSON)

	res := do(t, r, "GET", "/enrichment?title=Dune&year=2021", "", nil)
	require.Equal(t, 200, res.Code)
	assert.Nil(t, res.Body["record"])

	assert.Equal(t, 400, do(t, r, "GET", "/enrichment?year=2021", "", nil).Code)
	assert.Equal(t, 400, do(t, r, "GET", "/enrichment?title=Dune&year=soon", "", nil).Code)
}

func TestCatalogEventsWithoutBroker(t *testing.T) {
	a := newApp(t, baseCatalogJSON)
	r := NewRouter(a)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	token := signUp(t, r, "ana@example.com")
	userID := do(t, r, "GET", "/auth/me", token, nil).Body["user"].(map[string]any)["id"].(string)

	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return a.Hub.Connections(userID) == 1 }, time.Second, 10*time.Millisecond)

	res := do(t, r, "POST", "/movies", token, nopeBody())
	require.Equal(t, 201, res.Code, res.Body)

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var event hub.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, hub.EventCatalogChanged, event.Type)
}
