package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/stefa168/ottimizzatore-lauree/config"
	"github.com/stefa168/ottimizzatore-lauree/internal/model"
	"github.com/stefa168/ottimizzatore-lauree/internal/planning"
	"github.com/stefa168/ottimizzatore-lauree/pkg/jwt"
	"github.com/stefa168/ottimizzatore-lauree/pkg/response"
)

func writeData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response.Response{Code: 0, Message: "success", Data: data})
}

func sampleCommission() *model.Commission {
	sup := model.Professor{ID: 1, Name: "Anna", Surname: "Bianchi", Role: model.RoleOrdinary}
	return &model.Commission{
		ID:    3,
		Title: "Luglio",
		Entries: []model.CommissionEntry{
			{ID: 10, SupervisorID: 1, Supervisor: &sup, DegreeLevel: model.DegreeBachelors},
		},
		Configurations: []model.OptimizationConfiguration{
			{ID: 7, CommissionID: 3, Title: "Prima", Solver: model.SolverGLPK},
		},
	}
}

// newTestApp 后端 mock：配置 7 在第二次请求后变为 ended
func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	var polls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/commission", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, []model.CommissionPreview{{ID: 3, Title: "Luglio"}})
	})
	mux.HandleFunc("/api/v1/commission/3", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, sampleCommission())
	})
	mux.HandleFunc("/api/v1/commission/3/professors", func(w http.ResponseWriter, r *http.Request) {
		c := sampleCommission()
		writeData(w, http.StatusOK, planning.Burdens(c))
	})
	mux.HandleFunc("/api/v1/commission/3/solve/7", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusAccepted, map[string]string{"job_id": "job-1", "version_hash": "abc"})
	})
	mux.HandleFunc("/api/v1/commission/3/configuration/7", func(w http.ResponseWriter, r *http.Request) {
		conf := model.OptimizationConfiguration{ID: 7, CommissionID: 3, Title: "Prima", RunLock: true}
		if atomic.AddInt32(&polls, 1) >= 2 {
			conf.ExecutionDetails = []model.ExecutionRecord{{ID: 1, Success: true}}
			conf.SolutionCommissions = []model.SolutionSlot{
				{ID: 1, Order: 0, Morning: true, Duration: 15},
				{ID: 2, Order: 1, Morning: false, Duration: 20},
			}
		}
		writeData(w, http.StatusOK, conf)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		Client: config.ClientConfig{BaseURL: srv.URL + "/api/v1", Timeout: 5 * time.Second},
		Poller: config.PollerConfig{Interval: 20 * time.Millisecond},
	}
	var out bytes.Buffer
	return newApp(cfg, &out, zap.NewNop()), &out
}

func TestApp_List(t *testing.T) {
	a, out := newTestApp(t)
	if err := a.run(context.Background(), []string{"list"}); err != nil {
		t.Fatalf("list 应成功: %v", err)
	}
	if !strings.Contains(out.String(), "Luglio") {
		t.Errorf("输出应包含委员会标题，实际=%s", out.String())
	}
}

func TestApp_Show_SelectsCommission(t *testing.T) {
	a, out := newTestApp(t)
	if err := a.run(context.Background(), []string{"show", "3"}); err != nil {
		t.Fatalf("show 应成功: %v", err)
	}
	if !strings.Contains(out.String(), "not_started") {
		t.Errorf("输出应包含配置状态，实际=%s", out.String())
	}
	if c, ok := a.sel.Commission.Get(); !ok || c.ID != 3 {
		t.Error("show 后应选中委员会")
	}
	if _, err := a.sel.SelectConfiguration(7); err != nil {
		t.Errorf("应能在选中的委员会中选择配置: %v", err)
	}
}

func TestApp_Burden(t *testing.T) {
	a, out := newTestApp(t)
	if err := a.run(context.Background(), []string{"burden", "3"}); err != nil {
		t.Fatalf("burden 应成功: %v", err)
	}
	if !strings.Contains(out.String(), "Bianchi Anna") {
		t.Errorf("输出应包含教授姓名，实际=%s", out.String())
	}
}

func TestApp_Solve(t *testing.T) {
	a, out := newTestApp(t)
	if err := a.run(context.Background(), []string{"solve", "3", "7"}); err != nil {
		t.Fatalf("solve 应成功: %v", err)
	}
	if !strings.Contains(out.String(), "job-1") {
		t.Errorf("输出应包含任务 ID，实际=%s", out.String())
	}
}

func TestApp_Watch_UntilEnded(t *testing.T) {
	a, out := newTestApp(t)
	a.interactive = func() bool { return true }

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.run(ctx, []string{"watch", "3", "7"}); err != nil {
		t.Fatalf("watch 应成功: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("watch 应在 ended 后返回，而不是超时")
	}
	got := out.String()
	for _, want := range []string{"running", "ended", "上午 1 场，下午 1 场，总时长 35 分钟"} {
		if !strings.Contains(got, want) {
			t.Errorf("输出应包含 %q，实际=%s", want, got)
		}
	}
}

func TestApp_Watch_NonInteractive(t *testing.T) {
	a, _ := newTestApp(t)
	if err := a.run(context.Background(), []string{"watch", "3", "7"}); err == nil {
		t.Error("非终端环境下 watch 应报错")
	}
}

func TestApp_Usage(t *testing.T) {
	a, _ := newTestApp(t)
	cases := [][]string{nil, {"bogus"}, {"show"}, {"show", "x"}, {"solve", "3"}}
	for _, args := range cases {
		if err := a.run(context.Background(), args); err == nil {
			t.Errorf("%v 应报错", args)
		}
	}
	if err := a.run(context.Background(), []string{"bogus"}); !errors.Is(err, errUsage) {
		t.Errorf("未知命令应包装 errUsage，实际: %v", err)
	}
}

func TestApp_Token(t *testing.T) {
	a, out := newTestApp(t)
	if err := a.run(context.Background(), []string{"token", "segreteria"}); err == nil {
		t.Error("未启用认证时应报错")
	}

	a.cfg.Auth = config.AuthConfig{Enabled: true, JWTSecret: "a-long-enough-secret-key", AccessTokenTTL: time.Hour}
	if err := a.run(context.Background(), []string{"token", "segreteria"}); err != nil {
		t.Fatalf("token 应成功: %v", err)
	}
	claims, err := jwt.NewManager(&a.cfg.Auth).ParseToken(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("签发的令牌应可解析: %v", err)
	}
	if claims.Subject != "segreteria" || claims.Role != "staff" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}
