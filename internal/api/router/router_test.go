package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/stefa168/ottimizzatore-lauree/config"
	"github.com/stefa168/ottimizzatore-lauree/internal/api/handler"
	"github.com/stefa168/ottimizzatore-lauree/internal/service"
	"github.com/stefa168/ottimizzatore-lauree/pkg/jwt"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			MaxUploadSize:   1 << 20,
			SolveRateLimit:  10,
			SolveRateWindow: time.Minute,
		},
		Auth: config.AuthConfig{
			Enabled:        true,
			JWTSecret:      "router-test-secret-2026",
			AccessTokenTTL: time.Minute,
		},
	}
}

func TestHealth_IncludesSolverStats(t *testing.T) {
	cfg := testConfig()
	stats := func() map[string]interface{} { return map[string]interface{}{"active_jobs": 2} }
	r := Setup(cfg, handler.NewHandler(&service.Service{}), nil, nil, stats, zap.NewNop())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}

	var body struct {
		Status string                 `json:"status"`
		Solver map[string]interface{} `json:"solver"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if body.Status != "ok" || body.Solver["active_jobs"] != float64(2) {
		t.Errorf("健康检查内容不符: %+v", body)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("全局中间件应写入 X-Request-ID")
	}
}

func TestAPI_RequiresTokenWhenAuthEnabled(t *testing.T) {
	cfg := testConfig()
	r := Setup(cfg, handler.NewHandler(&service.Service{}), jwt.NewManager(&cfg.Auth), nil, nil, zap.NewNop())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/commission/1/solve/2", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("未携带 Token 期望 401，实际=%d", w.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	r := Setup(testConfig(), handler.NewHandler(&service.Service{}), nil, nil, nil, zap.NewNop())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("未知路由期望 404，实际=%d", w.Code)
	}
}
