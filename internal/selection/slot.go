// Package selection 保存“当前选中的委员会 / 配置”。
//
// Selection 通过 context 显式传递，不作为包级全局变量。并发加载路径之间的
// 约定是“空时才写”：后台加载只调用 SetIfEmpty，已有值时保持不变；
// 用户显式切换使用 Replace。所有读写在同一把锁下完成。
package selection

import "sync"

// Slot 单个可选中值，零值可直接使用
type Slot[T any] struct {
	mu  sync.Mutex
	val T
	set bool
}

// SetIfEmpty 仅当当前无值时写入 v，返回是否写入
// 检查与写入在同一临界区内，先拿到锁者胜出
func (s *Slot[T]) SetIfEmpty(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set {
		return false
	}
	s.val, s.set = v, true
	return true
}

// Get 返回当前值
func (s *Slot[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.val, s.set
}

// Replace 无条件覆盖
func (s *Slot[T]) Replace(v T) {
	s.mu.Lock()
	s.val, s.set = v, true
	s.mu.Unlock()
}

// Clear 清空
func (s *Slot[T]) Clear() {
	s.mu.Lock()
	var zero T
	s.val, s.set = zero, false
	s.mu.Unlock()
}

// Update 在锁内读取并改写；fn 返回 keep=false 时清空
// fn 内不得再访问同一个 Slot
func (s *Slot[T]) Update(fn func(cur T, ok bool) (next T, keep bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, keep := fn(s.val, s.set)
	if !keep {
		var zero T
		s.val, s.set = zero, false
		return
	}
	s.val, s.set = next, true
}
