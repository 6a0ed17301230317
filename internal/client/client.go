// Package client 访问排程后端 REST 接口的类型化客户端。
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stefa168/ottimizzatore-lauree/internal/model"
	"github.com/stefa168/ottimizzatore-lauree/internal/planning"
	"github.com/stefa168/ottimizzatore-lauree/internal/selection"
	apperrors "github.com/stefa168/ottimizzatore-lauree/pkg/errors"
)

// Client 后端客户端
type Client struct {
	baseURL   string
	token     string
	http      *http.Client
	selection *selection.Selection
	logger    *zap.Logger
}

// Option 客户端可选项
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken 设置 Bearer token
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithSelection 关联本地选择状态，删除委员会时同步清除
func WithSelection(s *selection.Selection) Option {
	return func(c *Client) { c.selection = s }
}

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New 创建客户端；baseURL 形如 http://host:8080/api/v1
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HTTPClient 底层 http.Client，供 Poller 复用
func (c *Client) HTTPClient() *http.Client { return c.http }

// Token 当前 Bearer token
func (c *Client) Token() string { return c.token }

func (c *Client) url(format string, args ...interface{}) string {
	return c.baseURL + fmt.Sprintf(format, args...)
}

// ── 委员会 ──

// ListCommissions 委员会摘要列表
func (c *Client) ListCommissions(ctx context.Context) ([]model.CommissionPreview, error) {
	return Fetch[[]model.CommissionPreview](ctx, c.http, c.url("/commission"), c.token)
}

// GetCommission 委员会详情；404 转为 NotFoundError
// 选中为空时将结果设为当前委员会，已有选中不被覆盖
func (c *Client) GetCommission(ctx context.Context, id int64) (*model.Commission, error) {
	out, err := Fetch[*model.Commission](ctx, c.http, c.url("/commission/%d", id), c.token)
	if err != nil {
		return nil, notFound(err, "commission", id)
	}
	if out == nil {
		return nil, &apperrors.DecodeError{Err: errors.New("响应缺少 data")}
	}
	if c.selection != nil {
		c.selection.Commission.SetIfEmpty(out)
	}
	return out, nil
}

// DeleteCommission 删除委员会并清除本地副本
func (c *Client) DeleteCommission(ctx context.Context, id int64) error {
	if _, err := Do[struct{}](ctx, c.http, http.MethodDelete, c.url("/commission/%d", id), c.token); err != nil {
		return notFound(err, "commission", id)
	}
	if c.selection != nil {
		c.selection.Forget(id)
	}
	c.logger.Info("委员会已删除", zap.Int64("commission_id", id))
	return nil
}

// Burdens 委员会中每位教授的负担
func (c *Client) Burdens(ctx context.Context, commissionID int64) ([]planning.ProfessorBurden, error) {
	out, err := Fetch[[]planning.ProfessorBurden](ctx, c.http, c.url("/commission/%d/professors", commissionID), c.token)
	if err != nil {
		return nil, notFound(err, "commission", commissionID)
	}
	return out, nil
}

// ── 配置 ──

// ListConfigurations 委员会下的全部配置
func (c *Client) ListConfigurations(ctx context.Context, commissionID int64) ([]model.OptimizationConfiguration, error) {
	out, err := Fetch[[]model.OptimizationConfiguration](ctx, c.http, c.url("/commission/%d/configuration", commissionID), c.token)
	if err != nil {
		return nil, notFound(err, "commission", commissionID)
	}
	return out, nil
}

// GetConfiguration 单个配置（含执行记录与求解结果）
func (c *Client) GetConfiguration(ctx context.Context, commissionID, configID int64) (*model.OptimizationConfiguration, error) {
	out, err := Fetch[*model.OptimizationConfiguration](ctx, c.http, c.ConfigurationURL(commissionID, configID), c.token)
	if err != nil {
		return nil, notFound(err, "configuration", configID)
	}
	if out == nil {
		return nil, &apperrors.DecodeError{Err: errors.New("响应缺少 data")}
	}
	return out, nil
}

// ConfigurationURL 单个配置的地址，也是 Poller 的轮询目标
func (c *Client) ConfigurationURL(commissionID, configID int64) string {
	return c.url("/commission/%d/configuration/%d", commissionID, configID)
}

// SolveResult 提交求解的响应
type SolveResult struct {
	JobID       string `json:"job_id"`
	VersionHash string `json:"version_hash"`
}

// Solve 提交求解任务
func (c *Client) Solve(ctx context.Context, commissionID, configID int64) (*SolveResult, error) {
	out, err := Do[SolveResult](ctx, c.http, http.MethodPost, c.url("/commission/%d/solve/%d", commissionID, configID), c.token)
	if err != nil {
		return nil, notFound(err, "configuration", configID)
	}
	return &out, nil
}

// notFound 将 404 的 TransportError 转为 NotFoundError
func notFound(err error, resource string, id int64) error {
	if te, ok := apperrors.AsTransport(err); ok && te.Status == http.StatusNotFound {
		return &apperrors.NotFoundError{Resource: resource, ID: id}
	}
	return err
}
