// Package poller 提供按固定间隔拉取并回调的通用轮询器。
package poller

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/stefa168/ottimizzatore-lauree/internal/client"
)

// Fetcher 拉取一次数据
type Fetcher[T any] func(ctx context.Context, endpoint string) (T, error)

// Poller 周期性拉取 endpoint，成功时调用 onData，失败时调用 onError 并继续轮询。
//
// 约定：
//   - 周期进行中重复 Start 为空操作，同一实例同时只有一个轮询周期；
//     父 context 取消后周期结束，可再次 Start
//   - Stop 幂等；返回后不会再有任何回调
//   - 每次 tick 在独立 goroutine 中执行，慢请求不阻塞后续 tick；
//     完成顺序可能与发出顺序不同，回调按完成顺序生效
//   - 回调在内部锁下执行，不得在回调中同步调用 Stop（可用 go p.Stop()）
type Poller[T any] struct {
	endpoint    string
	interval    time.Duration
	onData      func(T)
	onError     func(error)
	fetch       Fetcher[T]
	interactive func() bool
	immediate   bool
	logger      *zap.Logger

	mu   sync.Mutex
	tok  *token
	done chan struct{}
}

// Option 轮询器可选项
type Option[T any] func(*Poller[T])

// WithFetcher 替换默认的 HTTP 拉取
func WithFetcher[T any](f Fetcher[T]) Option[T] {
	return func(p *Poller[T]) { p.fetch = f }
}

// WithHTTPClient 默认拉取使用的 http.Client 与 token
func WithHTTPClient[T any](hc *http.Client, token string) Option[T] {
	return func(p *Poller[T]) {
		p.fetch = func(ctx context.Context, endpoint string) (T, error) {
			return client.Fetch[T](ctx, hc, endpoint, token)
		}
	}
}

// WithEnvironment 判断当前是否为交互环境；非交互时 Start 为空操作
func WithEnvironment[T any](interactive func() bool) Option[T] {
	return func(p *Poller[T]) { p.interactive = interactive }
}

// WithImmediate Start 后立即执行第一次拉取，而不是等待一个间隔
func WithImmediate[T any]() Option[T] {
	return func(p *Poller[T]) { p.immediate = true }
}

// WithLogger 设置日志
func WithLogger[T any](l *zap.Logger) Option[T] {
	return func(p *Poller[T]) { p.logger = l }
}

// DefaultInterval interval 非正时使用的间隔
const DefaultInterval = 5 * time.Second

// New 创建轮询器；onData / onError 可为 nil
func New[T any](endpoint string, interval time.Duration, onData func(T), onError func(error), opts ...Option[T]) *Poller[T] {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if onData == nil {
		onData = func(T) {}
	}
	if onError == nil {
		onError = func(error) {}
	}
	p := &Poller[T]{
		endpoint:    endpoint,
		interval:    interval,
		onData:      onData,
		onError:     onError,
		interactive: func() bool { return true },
		logger:      zap.NewNop(),
	}
	WithHTTPClient[T](http.DefaultClient, "")(p)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Endpoint 轮询地址
func (p *Poller[T]) Endpoint() string { return p.endpoint }

// Interval 轮询间隔
func (p *Poller[T]) Interval() time.Duration { return p.interval }

// Running 是否处于轮询周期中；父 context 取消后周期即结束
func (p *Poller[T]) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tok != nil && p.tok.ctx.Err() == nil
}

// Start 开始轮询；ctx 取消等同于 Stop 的调度部分
func (p *Poller[T]) Start(ctx context.Context) {
	if !p.interactive() {
		p.logger.Debug("非交互环境，跳过轮询", zap.String("endpoint", p.endpoint))
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tok != nil {
		if p.tok.ctx.Err() == nil {
			return
		}
		// 上一周期随父 context 结束，回收后重新开始
		p.tok.stop()
		<-p.done
		p.tok, p.done = nil, nil
	}
	tok := newToken(ctx)
	done := make(chan struct{})
	p.tok, p.done = tok, done

	go p.loop(tok, done)
	p.logger.Debug("轮询已启动", zap.String("endpoint", p.endpoint), zap.Duration("interval", p.interval))
}

// Stop 停止轮询；进行中的请求可自行结束，但其回调被抑制
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	tok, done := p.tok, p.done
	p.tok, p.done = nil, nil
	p.mu.Unlock()

	if tok == nil {
		return
	}
	tok.stop()
	<-done
	p.logger.Debug("轮询已停止", zap.String("endpoint", p.endpoint))
}

func (p *Poller[T]) loop(tok *token, done chan struct{}) {
	defer close(done)

	if p.immediate {
		go p.tick(tok)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-tok.ctx.Done():
			return
		case <-ticker.C:
			go p.tick(tok)
		}
	}
}

func (p *Poller[T]) tick(tok *token) {
	data, err := p.fetch(tok.ctx, p.endpoint)
	if err != nil {
		if !tok.deliver(func() { p.onError(err) }) {
			return
		}
		p.logger.Warn("轮询失败", zap.String("endpoint", p.endpoint), zap.Error(err))
		return
	}
	tok.deliver(func() { p.onData(data) })
}

// ── 取消令牌 ──

// token 贯穿一个轮询周期内的所有 tick，stop 之后 deliver 不再执行回调
type token struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	stopped bool
}

func newToken(parent context.Context) *token {
	ctx, cancel := context.WithCancel(parent)
	return &token{ctx: ctx, cancel: cancel}
}

// deliver 在未停止时执行 fn，返回是否执行
func (t *token) deliver(fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.ctx.Err() != nil {
		return false
	}
	fn()
	return true
}

// stop 取消调度并等待正在执行的回调结束
func (t *token) stop() {
	t.cancel()
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}
