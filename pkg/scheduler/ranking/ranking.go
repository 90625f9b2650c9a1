// Package ranking 对角色合格的候选员工排序
//
// 排序完全确定：相同输入总是产生相同顺序，并列时按工号字典序
// 兜底，不引入随机数（可复现性优先）。
package ranking

import (
	"sort"

	"github.com/yuepai/yuepai/pkg/model"
	"github.com/yuepai/yuepai/pkg/scheduler/state"
)

// workloadGapHours 两名候选人工时差超过该值时，工时少者优先
const workloadGapHours = 7.0

// Rank 对工作日班次的候选池排序
// 优先级：班次多样性 > 工作量均衡（差距>7h）> 班次数 > 工号字典序
func Rank(candidates []*model.Employee, shift *model.ShiftType, tracker *state.Tracker) []*model.Employee {
	ranked := make([]*model.Employee, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		return lessWeekday(ranked[i], ranked[j], shift, tracker)
	})
	return ranked
}

// lessWeekday 工作日候选比较
func lessWeekday(a, b *model.Employee, shift *model.ShiftType, tracker *state.Tracker) bool {
	ra, rb := tracker.Record(a.ID), tracker.Record(b.ID)

	// 1. 多样性：上一班次与本班次不同者优先
	variedA := ra.LastShift() != shift.Code
	variedB := rb.LastShift() != shift.Code
	if variedA != variedB {
		return variedA
	}

	// 2. 工作量均衡：工时差超过阈值时负担轻者优先
	diff := ra.MonthHours - rb.MonthHours
	if diff > workloadGapHours {
		return false
	}
	if diff < -workloadGapHours {
		return true
	}

	// 3. 班次数少者优先
	if ra.ShiftCount() != rb.ShiftCount() {
		return ra.ShiftCount() < rb.ShiftCount()
	}

	// 4. 确定性兜底
	return a.SortKey() < b.SortKey()
}

// RankWeekend 对周末班次的候选池排序
// 优先级：周末班次数 > 月工时 > 工号字典序，保证周末值班在
// 花名册内收敛到均匀分布
func RankWeekend(candidates []*model.Employee, tracker *state.Tracker) []*model.Employee {
	ranked := make([]*model.Employee, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		ra, rb := tracker.Record(ranked[i].ID), tracker.Record(ranked[j].ID)

		if ra.WeekendDays != rb.WeekendDays {
			return ra.WeekendDays < rb.WeekendDays
		}
		if ra.MonthHours != rb.MonthHours {
			return ra.MonthHours < rb.MonthHours
		}
		return ranked[i].SortKey() < ranked[j].SortKey()
	})
	return ranked
}

// FilterByRole 从花名册过滤在职且角色匹配的候选人
func FilterByRole(employees []*model.Employee, role model.Role) []*model.Employee {
	var out []*model.Employee
	for _, emp := range employees {
		if emp.IsActive() && emp.Role == role {
			out = append(out, emp)
		}
	}
	return out
}
