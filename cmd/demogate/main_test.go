package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolutally/matchbox-web/internal/auth"
	"github.com/tolutally/matchbox-web/internal/config"
	"github.com/tolutally/matchbox-web/internal/handlers"
	"github.com/tolutally/matchbox-web/internal/metrics"
	"github.com/tolutally/matchbox-web/internal/services"
	"github.com/tolutally/matchbox-web/internal/tokenstore"
	"github.com/tolutally/matchbox-web/internal/usage"
)

const testAdminPassword = "admin-secret"

func init() {
	gin.SetMode(gin.TestMode)
	color.NoColor = true
}

func newTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{AdminPassword: testAdminPassword}
	m := metrics.NewNoopMetrics()
	svc := services.NewDemoTokenService(tokenstore.NewMemoryStore(), cfg, nil, m)
	h := handlers.NewTokenHandler(svc, auth.NewAdminAuthenticator(cfg), nil, m)

	r := gin.New()
	api := r.Group("/api/tokens")
	api.POST("/generate", h.Generate)
	api.POST("/validate", h.Validate)
	api.POST("/list", h.List)
	api.POST("/delete", h.Delete)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func exitCode(err error) int {
	if ee, ok := err.(*exitErr); ok {
		return ee.code
	}
	return -1
}

func TestTokensCommands(t *testing.T) {
	srv := newTokenServer(t)
	common := []string{"--server", srv.URL, "--admin-password", testAdminPassword}

	out, err := execute(t, "", append([]string{"tokens", "generate", "-n", "2", "--note", "QA"}, common...)...)
	require.NoError(t, err)
	var tokens []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "DEMO-") {
			tokens = append(tokens, line)
		}
	}
	require.Len(t, tokens, 2)

	out, err = execute(t, "", append([]string{"validate", tokens[0]}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Token accepted")

	_, err = execute(t, "", append([]string{"validate", tokens[0]}, common...)...)
	assert.Equal(t, exitRejected, exitCode(err))

	out, err = execute(t, "", append([]string{"tokens", "list", "--status", "used"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, tokens[0])
	assert.NotContains(t, out, tokens[1])
	assert.Contains(t, out, "2 total, 1 active, 1 used, 0 expired")

	out, err = execute(t, "", append([]string{"tokens", "delete", "--used"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 token(s)")

	out, err = execute(t, "", append([]string{"tokens", "delete", tokens[1]}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 token(s)")
}

func TestTokensWrongPassword(t *testing.T) {
	srv := newTokenServer(t)
	_, err := execute(t, "", "tokens", "list", "--server", srv.URL, "--admin-password", "nope")
	assert.Equal(t, exitRejected, exitCode(err))
}

func TestDeleteNeedsSelector(t *testing.T) {
	_, err := execute(t, "", "tokens", "delete", "--server", "http://127.0.0.1:1")
	assert.Equal(t, exitConfig, exitCode(err))
}

func TestUsageShowAndReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.yaml")
	store := usage.NewFileStore(path, usage.DefaultWindow)
	require.NoError(t, store.Record(usage.BucketPrivateDemo, time.Now().Add(-time.Hour)))
	require.NoError(t, store.Record(usage.BucketPrivateDemo, time.Now().Add(-2*time.Hour)))

	out, err := execute(t, "", "usage", "show", "--usage-file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "private-demo-usage: 2 of 2 starts used in the last 7 days")
	assert.Contains(t, out, "callme-demo-usage: 0 of 2")
	assert.Contains(t, out, "next start available")

	_, err = execute(t, "", "usage", "reset", "--usage-file", path, "--bucket", "nope")
	assert.Equal(t, exitConfig, exitCode(err))

	out, err = execute(t, "", "usage", "reset", "--usage-file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage reset")

	starts, err := store.Starts(usage.BucketPrivateDemo)
	require.NoError(t, err)
	assert.Empty(t, starts)
}

// fakeVoiceGateway answers every call with a short scripted conversation.
func fakeVoiceGateway(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var start map[string]any
		if err := conn.ReadJSON(&start); err != nil {
			return
		}
		_ = conn.WriteJSON(map[string]string{"type": "call-start"})
		_ = conn.WriteJSON(map[string]string{
			"type": "transcript", "role": "assistant",
			"transcript": "Hi, this is the clinic.", "transcriptType": "final",
		})
		_ = conn.WriteJSON(map[string]string{"type": "call-end"})
		_, _, _ = conn.ReadMessage()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDemoCommandRunsDemo(t *testing.T) {
	tokenSrv := newTokenServer(t)
	voiceSrv := fakeVoiceGateway(t)
	t.Setenv("VAPI_ASSISTANT_HEALTHCARE", "asst-h")

	common := []string{"--server", tokenSrv.URL, "--admin-password", testAdminPassword}
	out, err := execute(t, "", append([]string{"tokens", "generate"}, common...)...)
	require.NoError(t, err)
	token := strings.Fields(out)[0]

	usageFile := filepath.Join(t.TempDir(), "usage.yaml")
	out, err = execute(t, "", append([]string{
		"demo", "--token", token, "--yes",
		"--voice-gateway", voiceSrv.URL, "--voice-key", "pk-test",
		"--usage-file", usageFile,
	}, common...)...)
	require.NoError(t, err)

	assert.Contains(t, out, "Access granted.")
	assert.Contains(t, out, "Scenario: Healthcare")
	assert.Contains(t, out, "Assistant: Hi, this is the clinic.")
	assert.Contains(t, out, "Demo ended.")

	starts, err := usage.NewFileStore(usageFile, usage.DefaultWindow).Starts(usage.BucketPrivateDemo)
	require.NoError(t, err)
	assert.Len(t, starts, 1)
}

func TestDemoCommandRejectsUsedToken(t *testing.T) {
	srv := newTokenServer(t)
	_, err := execute(t, "", "demo", "--token", "DEMO-AAAA-BBBB", "--yes",
		"--server", srv.URL, "--usage-file", filepath.Join(t.TempDir(), "usage.yaml"))
	assert.Equal(t, exitRejected, exitCode(err))
}

func TestDemoCommandQuota(t *testing.T) {
	srv := newTokenServer(t)
	t.Setenv("VAPI_ASSISTANT_HEALTHCARE", "asst-h")

	usageFile := filepath.Join(t.TempDir(), "usage.yaml")
	store := usage.NewFileStore(usageFile, usage.DefaultWindow)
	for range 2 {
		require.NoError(t, store.Record(usage.BucketPrivateDemo, time.Now()))
	}

	// An unreachable endpoint falls back to the static password.
	_, err := execute(t, "", "demo", "--token", "demo2025", "--fallback-password", "demo2025", "--yes",
		"--server", srv.URL+"/missing", "--usage-file", usageFile)
	assert.Equal(t, exitRejected, exitCode(err))
}

func TestFormatClock(t *testing.T) {
	tests := map[time.Duration]string{
		120 * time.Second: "2:00",
		119 * time.Second: "1:59",
		9 * time.Second:   "0:09",
		0:                 "0:00",
		-time.Second:      "0:00",
	}
	for d, want := range tests {
		assert.Equal(t, want, formatClock(d), d.String())
	}
}

func TestIsQuit(t *testing.T) {
	for _, s := range []string{"q", " Q ", "quit", "end", "exit"} {
		assert.True(t, isQuit(s), s)
	}
	assert.False(t, isQuit(""))
	assert.False(t, isQuit("yes"))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "demogate version")
}
