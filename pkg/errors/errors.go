// Package errors 定义跨层共享的错误分类。
//
// 服务层的业务哨兵错误（如 ErrCommissionNotFound）仍在各自 service 文件中声明；
// 这里只放需要在 model / client / poller / solver 之间传递、携带结构化字段的错误类型。
package errors

import (
	"errors"
	"fmt"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ValidationError 配置校验失败，Field 指明失败的字段
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NotFoundError 引用的委员会/配置/教授不存在
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d 不存在", e.Resource, e.ID)
}

// TransportError 请求失败或后端返回非 2xx
// Status 为 0 表示请求未得到任何响应
type TransportError struct {
	Status int
	Detail string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("请求失败: %v", e.Err)
	}
	if e.Detail == "" {
		return fmt.Sprintf("后端返回 HTTP %d", e.Status)
	}
	return fmt.Sprintf("后端返回 HTTP %d: %s", e.Status, e.Detail)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError 响应体与期望结构不符
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("解析响应失败: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ConcurrencyAnomaly 运行锁与执行记录不一致，仅上报，不中断流程
type ConcurrencyAnomaly struct {
	ConfigurationID int64
	Detail          string
}

func (e *ConcurrencyAnomaly) Error() string {
	return fmt.Sprintf("配置 %d 状态异常: %s", e.ConfigurationID, e.Detail)
}

// IsNotFound 判断 err 链中是否包含 NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// AsValidation 提取 err 链中的 ValidationError
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsTransport 提取 err 链中的 TransportError
func AsTransport(err error) (*TransportError, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
