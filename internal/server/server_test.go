package server

import (
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/netfield/internal/config"
	"github.com/Zachkp/netfield/internal/content"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Mode = "test"
	cfg.Backdrop.NodeCount = 20
	cfg.Backdrop.FPS = 60
	return cfg
}

func testStore(t *testing.T) *content.Store {
	t.Helper()
	ctx := context.Background()
	store, err := content.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Seed(ctx, content.Portfolio{
		Profile: content.Profile{Name: "Test Person", JobTitle: "Developer", About: "Hello.", Email: "me@example.dev"},
		Projects: []content.Project{
			{Title: "Mail TUI", Description: "Terminal mail", Image: "/images/mail.png", Technologies: []string{"Go", "IMAP"}},
		},
		Experience: []content.Experience{{Role: "Manager", Company: "Catering", Period: "2016 - Present"}},
		Education:  []content.Education{{Degree: "BSc", Institution: "WGU", Period: "2019 - 2023"}},
		Skills: []content.SkillCategory{
			{Name: "Languages", Skills: []content.Skill{{Name: "Go", Logo: "go.svg", Level: 90}}},
		},
	}))
	return store
}

func newTestServer(t *testing.T, cfg *config.Config, store *content.Store) *Server {
	t.Helper()
	s, err := New(cfg, store, nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestIndexRendersPortfolio(t *testing.T) {
	s := newTestServer(t, testConfig(), testStore(t))

	w := get(t, s.Handler(), "/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Test Person")
	assert.Contains(t, body, "Mail TUI")
	assert.Contains(t, body, "Go · IMAP")
	assert.Contains(t, body, `id="backdrop"`)
}

func TestIndexWithoutStore(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	w := get(t, s.Handler(), "/")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "could not be loaded")

	w = get(t, s.Handler(), "/api/projects")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestContentAPI(t *testing.T) {
	s := newTestServer(t, testConfig(), testStore(t))

	tests := []struct {
		path string
		want string
	}{
		{"/api/projects", `"title":"Mail TUI"`},
		{"/api/experience", `"company":"Catering"`},
		{"/api/education", `"institution":"WGU"`},
		{"/api/skills", `"name":"Languages"`},
		{"/api/profile", `"name":"Test Person"`},
		{"/api/contact", `"email":"me@example.dev"`},
		{"/healthz", `"status":"ok"`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := get(t, s.Handler(), tt.path)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestStaticAssets(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	w := get(t, s.Handler(), "/static/backdrop.js")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "WebSocket")
}

func TestBackdropPNG(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	w := get(t, s.Handler(), "/backdrop.png?w=160&h=90&ticks=10&seed=42")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	img, err := png.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 160, img.Bounds().Dx())
	assert.Equal(t, 90, img.Bounds().Dy())

	a := get(t, s.Handler(), "/backdrop.png?w=50&h=50&ticks=3&seed=7").Body.Bytes()
	b := get(t, s.Handler(), "/backdrop.png?w=50&h=50&ticks=3&seed=7").Body.Bytes()
	assert.Equal(t, a, b, "same seed renders the same still")

	w = get(t, s.Handler(), "/backdrop.png?seed=-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDimension(t *testing.T) {
	assert.Equal(t, 100, dimension("", 100, 500))
	assert.Equal(t, 100, dimension("abc", 100, 500))
	assert.Equal(t, 100, dimension("-4", 100, 500))
	assert.Equal(t, 320, dimension("320", 100, 500))
	assert.Equal(t, 500, dimension("9000", 100, 500))
}

func TestCheckOrigin(t *testing.T) {
	cfg := testConfig()
	cfg.Server.AllowedOrigins = []string{"https://portfolio.dev"}
	s := newTestServer(t, cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "http://site.local/ws/backdrop", nil)
	assert.True(t, s.checkOrigin(req), "no origin header")

	req.Header.Set("Origin", "http://site.local")
	assert.True(t, s.checkOrigin(req), "same host")

	req.Header.Set("Origin", "https://portfolio.dev")
	assert.True(t, s.checkOrigin(req), "configured origin")

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, s.checkOrigin(req))
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func readFrame(t *testing.T, conn *websocket.Conn) frameMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg frameMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestBackdropStreamLifecycle(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/backdrop?w=320&h=200"), nil)
	require.NoError(t, err)

	first := readFrame(t, conn)
	assert.Equal(t, "frame", first.Type)
	assert.NotEmpty(t, first.Session)
	assert.Equal(t, 320, first.Frame.Width)
	assert.Equal(t, 200, first.Frame.Height)
	assert.NotEmpty(t, first.Frame.Fade)
	assert.GreaterOrEqual(t, len(first.Frame.Ops), 2*20)

	stats := s.stats.snapshot()
	require.Equal(t, 1, stats.ActiveSessions)
	assert.Equal(t, first.Session, stats.Sessions[0].ID)
	assert.Equal(t, "running", stats.Sessions[0].State)

	raw, _ := json.Marshal(clientMessage{Type: "resize", Width: 160, Height: 100})
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, raw))

	resized := false
	for i := 0; i < 200 && !resized; i++ {
		f := readFrame(t, conn)
		resized = f.Frame.Width == 160 && f.Frame.Height == 100
	}
	assert.True(t, resized, "resize should reach the stream")

	w := get(t, s.Handler(), "/api/backdrop/stats")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active_sessions":1`)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return s.stats.active() == 0 }, 5*time.Second, 10*time.Millisecond,
		"closing the socket unmounts the backdrop")
	assert.Equal(t, uint64(1), s.stats.snapshot().TotalSessions)
}

func TestBackdropStreamSessionCap(t *testing.T) {
	cfg := testConfig()
	cfg.Backdrop.MaxSessions = 1
	s := newTestServer(t, cfg, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/backdrop"), nil)
	require.NoError(t, err)
	defer conn.Close()
	readFrame(t, conn)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/backdrop"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCloseEndsStreams(t *testing.T) {
	s, err := New(testConfig(), nil, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/backdrop?w=100&h=100"), nil)
	require.NoError(t, err)
	defer conn.Close()
	readFrame(t, conn)

	s.Close()
	assert.Eventually(t, func() bool { return s.stats.active() == 0 }, 5*time.Second, 10*time.Millisecond)
}
