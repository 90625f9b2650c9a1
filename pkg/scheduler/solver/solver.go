// Package solver 提供逐日排班求解
//
// 工作日采用回溯搜索：按优先级展开（班次，角色，槽位）序列，
// 逐槽尝试排序后的候选人，失败时精确回退。周日直接短路为
// "无班次"标记；周六走固定配额的单遍填班（见 weekend.go）。
package solver

import (
	"fmt"
	"sort"

	"github.com/yuepai/yuepai/pkg/logger"
	"github.com/yuepai/yuepai/pkg/model"
	"github.com/yuepai/yuepai/pkg/scheduler/constraint"
	"github.com/yuepai/yuepai/pkg/scheduler/ranking"
)

// DaySolver 单日求解器
type DaySolver struct {
	rules  *constraint.Manager
	logger *logger.PlannerLogger
}

// NewDaySolver 创建单日求解器
func NewDaySolver(rules *constraint.Manager) *DaySolver {
	return &DaySolver{
		rules:  rules,
		logger: logger.NewPlannerLogger(),
	}
}

// slot 待填充的（班次，角色）槽位
type slot struct {
	shift *model.ShiftType
	role  model.Role
}

// Solve 求解某一天的排班
// roster 为当日候选池：工作日传站点花名册，周六由编排器传入
// 跨站点合并后的周末池
func (s *DaySolver) Solve(ctx *constraint.Context, roster []*model.Employee, dayKey string) *model.DayPlan {
	switch {
	case model.IsSunday(dayKey):
		// 周日无班次，不进入搜索
		return model.NoShiftsDay(dayKey)
	case model.IsSaturday(dayKey):
		return s.solveSaturday(ctx, roster, dayKey)
	default:
		return s.solveWeekday(ctx, roster, dayKey)
	}
}

// solveWeekday 工作日回溯求解：严格模式优先，无解时整体回退并宽松重试一次
func (s *DaySolver) solveWeekday(ctx *constraint.Context, roster []*model.Employee, dayKey string) *model.DayPlan {
	slots := buildSlots(ctx.Catalog)
	if len(slots) == 0 {
		return model.NewDayPlan(dayKey)
	}

	day := model.NewDayPlan(dayKey)
	var reasons []string
	if s.fill(ctx, roster, day, slots, 0, &reasons) {
		return day
	}

	// 严格尝试已在回溯中全部回退，重新在宽松模式下尽力填充
	s.logger.DayRetry(dayKey)
	day = model.NewDayPlan(dayKey)
	day.Relaxed = true
	reasons = nil
	filled := s.fillRelaxed(ctx, roster, day, slots, &reasons)

	if filled == 0 {
		s.logger.DayFailed(dayKey, reasons)
		day = model.UnplannedDay(dayKey, reasons)
		day.Relaxed = true
		return day
	}
	day.FailureReasons = reasons
	return day
}

// fill 严格模式回溯填槽
// 每个栈帧负责一个槽位：尝试排序后的候选人，递归失败时撤销
// 本帧的试探分配并换下一个候选人；候选人耗尽则失败上抛
func (s *DaySolver) fill(ctx *constraint.Context, roster []*model.Employee, day *model.DayPlan, slots []slot, idx int, reasons *[]string) bool {
	if idx == len(slots) {
		return true
	}

	sl := slots[idx]
	weekend := model.IsWeekend(day.Date)
	pool := ranking.FilterByRole(roster, sl.role)
	ranked := ranking.Rank(pool, sl.shift, ctx.Tracker)

	for _, emp := range ranked {
		cand := &constraint.Candidate{Employee: emp, Shift: sl.shift, DayKey: day.Date, Weekend: weekend}
		ok, _ := s.rules.CanAssign(ctx, cand, constraint.ModeStrict)
		if !ok {
			continue
		}

		tx := ctx.Tracker.Begin(emp.ID, sl.shift, day.Date, weekend)
		day.Assign(sl.shift.Code, emp.ID)

		if s.fill(ctx, roster, day, slots, idx+1, reasons) {
			tx.Commit()
			return true
		}

		day.Unassign(sl.shift.Code, emp.ID)
		tx.Rollback()
	}

	*reasons = append(*reasons, fmt.Sprintf("%s 班次 %s 角色 %s 无可用候选人",
		day.Date, sl.shift.Code, sl.role))
	return false
}

// fillRelaxed 宽松模式单遍填槽
// 仅硬约束门控；填不上的槽位记录缺口后继续，不再整日求全
func (s *DaySolver) fillRelaxed(ctx *constraint.Context, roster []*model.Employee, day *model.DayPlan, slots []slot, reasons *[]string) int {
	weekend := model.IsWeekend(day.Date)
	filled := 0

	for _, sl := range slots {
		pool := ranking.FilterByRole(roster, sl.role)
		ranked := ranking.Rank(pool, sl.shift, ctx.Tracker)

		assigned := false
		for _, emp := range ranked {
			cand := &constraint.Candidate{Employee: emp, Shift: sl.shift, DayKey: day.Date, Weekend: weekend}
			ok, violations := s.rules.CanAssign(ctx, cand, constraint.ModeRelaxed)
			if !ok {
				continue
			}

			tx := ctx.Tracker.Begin(emp.ID, sl.shift, day.Date, weekend)
			day.Assign(sl.shift.Code, emp.ID)
			if len(violations) > 0 {
				// 宽松放行的软违反记入员工账上
				ctx.Tracker.AddViolation(emp.ID)
			}
			tx.Commit()
			assigned = true
			filled++
			break
		}

		if !assigned {
			*reasons = append(*reasons, fmt.Sprintf("%s 班次 %s 角色 %s 无可用候选人",
				day.Date, sl.shift.Code, sl.role))
		}
	}
	return filled
}

// buildSlots 按优先级展开槽位序列
// 班次按优先级降序，班次内角色配额按优先级降序，每个配额
// 展开 Min 个槽位（上限 Max 由槽位数量本身保证）
func buildSlots(catalog *model.Catalog) []slot {
	shifts := catalog.WeekdayShifts()
	sort.SliceStable(shifts, func(i, j int) bool {
		return shifts[i].Priority > shifts[j].Priority
	})

	var slots []slot
	for i := range shifts {
		shift := &shifts[i]
		reqs := catalog.RequirementsFor(shift.Code)
		sort.SliceStable(reqs, func(a, b int) bool {
			return reqs[a].Priority > reqs[b].Priority
		})
		for _, req := range reqs {
			for n := 0; n < req.Min; n++ {
				slots = append(slots, slot{shift: shift, role: req.Role})
			}
		}
	}
	return slots
}
