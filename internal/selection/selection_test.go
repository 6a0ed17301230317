package selection

import (
	"context"
	"sync"
	"testing"

	"github.com/stefa168/ottimizzatore-lauree/internal/model"
	apperrors "github.com/stefa168/ottimizzatore-lauree/pkg/errors"
)

func TestSlot_SetIfEmpty_FirstWins(t *testing.T) {
	var s Slot[int]
	if !s.SetIfEmpty(1) {
		t.Fatal("空 slot 应写入成功")
	}
	if s.SetIfEmpty(2) {
		t.Error("已有值时不应写入")
	}
	if v, _ := s.Get(); v != 1 {
		t.Errorf("期望保留 1，实际=%d", v)
	}
}

func TestSlot_ConcurrentSetIfEmpty(t *testing.T) {
	for round := 0; round < 200; round++ {
		var s Slot[string]
		var wg sync.WaitGroup
		results := make([]bool, 2)
		start := make(chan struct{})
		for i, v := range []string{"a", "b"} {
			wg.Add(1)
			go func(i int, v string) {
				defer wg.Done()
				<-start
				results[i] = s.SetIfEmpty(v)
			}(i, v)
		}
		close(start)
		wg.Wait()

		if results[0] == results[1] {
			t.Fatalf("第 %d 轮: 恰好一个写入应成功，实际=%v", round, results)
		}
		got, ok := s.Get()
		want := "a"
		if results[1] {
			want = "b"
		}
		if !ok || got != want {
			t.Fatalf("第 %d 轮: 保留值应属于胜出者 %s，实际=%q", round, want, got)
		}
	}
}

func TestSlot_ReplaceAndClear(t *testing.T) {
	var s Slot[int]
	s.SetIfEmpty(1)
	s.Replace(5)
	if v, _ := s.Get(); v != 5 {
		t.Errorf("Replace 后期望 5，实际=%d", v)
	}
	s.Clear()
	if _, ok := s.Get(); ok {
		t.Error("Clear 后不应有值")
	}
	if !s.SetIfEmpty(7) {
		t.Error("Clear 后应可再次写入")
	}
}

func commission() *model.Commission {
	sup := &model.Professor{ID: 1, Surname: "Rossi"}
	counter := &model.Professor{ID: 2, Surname: "Bianchi"}
	cid := counter.ID
	return &model.Commission{
		ID: 1,
		Entries: []model.CommissionEntry{
			{ID: 1, DegreeLevel: model.DegreeMasters, SupervisorID: 1, Supervisor: sup, CounterSupervisorID: &cid, CounterSupervisor: counter},
		},
		Configurations: []model.OptimizationConfiguration{{ID: 10, CommissionID: 1}},
	}
}

func TestSelection_BurdenAndSelect(t *testing.T) {
	s := New()
	if b := s.Burden(model.Professor{ID: 1}); b.AsSupervisor != 0 {
		t.Error("未选中委员会时负担应为 0")
	}
	if _, err := s.SelectConfiguration(10); !apperrors.IsNotFound(err) {
		t.Errorf("未选中委员会时期望 NotFound，实际=%v", err)
	}

	s.Commission.SetIfEmpty(commission())
	if b := s.Burden(model.Professor{ID: 2}); b.AsCounterSupervisor != 1 {
		t.Errorf("期望评阅次数 1，实际=%d", b.AsCounterSupervisor)
	}
	conf, err := s.SelectConfiguration(10)
	if err != nil || conf.ID != 10 {
		t.Fatalf("选中配置失败: %v", err)
	}
	if _, err := s.SelectConfiguration(11); !apperrors.IsNotFound(err) {
		t.Error("不存在的配置应返回 NotFound")
	}
}

func TestSelection_Forget(t *testing.T) {
	s := New()
	s.Commission.SetIfEmpty(commission())
	if _, err := s.SelectConfiguration(10); err != nil {
		t.Fatal(err)
	}

	s.Forget(2)
	if _, ok := s.Commission.Get(); !ok {
		t.Error("删除其他委员会不应影响当前选择")
	}

	s.Forget(1)
	if _, ok := s.Commission.Get(); ok {
		t.Error("删除后应清除委员会")
	}
	if _, ok := s.Configuration.Get(); ok {
		t.Error("删除后应清除其配置")
	}
}

func TestContext(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("空 context 不应取到 Selection")
	}
	s := New()
	got, ok := FromContext(NewContext(context.Background(), s))
	if !ok || got != s {
		t.Error("应取回同一个 Selection")
	}
}
