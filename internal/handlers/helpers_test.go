package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"osvillage/internal/config"
	"osvillage/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type testRouter struct {
	engine  *gin.Engine
	games   *mockGameService
	ai      *mockAIService
	reports *mockReportService
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:        "8000",
			CORSOrigins: []string{config.DefaultCORSOrigin},
		},
		Game: config.GameConfig{
			ExpectedGameTypes:   config.DefaultExpectedGameTypes,
			HistoryDefaultLimit: config.DefaultHistoryLimit,
		},
		OpenTelemetry: config.OpenTelemetryConfig{ServiceName: "osvillage-test"},
	}
}

func newTestRouter(t *testing.T) *testRouter {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := &testRouter{
		games:   &mockGameService{},
		ai:      &mockAIService{},
		reports: &mockReportService{},
	}
	r.engine = NewRouter(testConfig(), r.games, r.ai, r.reports, observability.NewNopLogger())
	t.Cleanup(func() {
		r.games.AssertExpectations(t)
		r.ai.AssertExpectations(t)
		r.reports.AssertExpectations(t)
	})
	return r
}

func (r *testRouter) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.engine.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" && bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func newRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}
