package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/stefa168/ottimizzatore-lauree/pkg/errors"
)

// envelope 后端统一响应结构，Data 延迟解码
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details string          `json:"details"`
}

// maxErrorBody 非 2xx 时最多读取的响应体字节数
const maxErrorBody = 4 << 10

// Fetch 发送 GET 请求并将响应 data 解码为 T
//
// 失败分类：
//   - 请求未得到响应或非 2xx → *errors.TransportError
//   - 响应体结构不符       → *errors.DecodeError
func Fetch[T any](ctx context.Context, hc *http.Client, url, token string) (T, error) {
	return Do[T](ctx, hc, http.MethodGet, url, token)
}

// Do 发送任意方法的请求，失败分类同 Fetch
func Do[T any](ctx context.Context, hc *http.Client, method, url, token string) (T, error) {
	var zero T

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return zero, &apperrors.TransportError{Err: fmt.Errorf("构造请求失败: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return zero, &apperrors.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return zero, transportError(resp)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return zero, &apperrors.DecodeError{Err: err}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return zero, nil
	}
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return zero, &apperrors.DecodeError{Err: err}
	}
	return out, nil
}

// transportError 读取错误响应中的 message / details 作为可读说明
func transportError(resp *http.Response) *apperrors.TransportError {
	te := &apperrors.TransportError{Status: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var env envelope
	if json.Unmarshal(body, &env) == nil && env.Message != "" {
		te.Detail = env.Message
		if env.Details != "" {
			te.Detail += ": " + env.Details
		}
		return te
	}
	if len(body) > 0 {
		te.Detail = string(body)
	} else {
		te.Detail = http.StatusText(resp.StatusCode)
	}
	return te
}
