// Package solver 提供逐日排班求解
package solver

import (
	"fmt"

	"github.com/yuepai/yuepai/pkg/model"
	"github.com/yuepai/yuepai/pkg/scheduler/constraint"
	"github.com/yuepai/yuepai/pkg/scheduler/ranking"
)

// solveSaturday 周六固定配额单遍填班
//
// 周末池跨站点共享以集中保证公平，因此不做回溯：按周末排序
// 依次取各角色配额人数，配额缺口如实记录而非穷举搜索。
func (s *DaySolver) solveSaturday(ctx *constraint.Context, pool []*model.Employee, dayKey string) *model.DayPlan {
	day := model.NewDayPlan(dayKey)
	quota := ctx.Policy.SaturdayQuota
	shift := model.SaturdayShift()

	var reasons []string
	filled := 0

	for _, role := range model.AllRoles() {
		need := quota.Count(role)
		if need == 0 {
			continue
		}

		candidates := ranking.RankWeekend(ranking.FilterByRole(pool, role), ctx.Tracker)
		taken := 0

		for _, emp := range candidates {
			if taken >= need {
				break
			}
			cand := &constraint.Candidate{Employee: emp, Shift: &shift, DayKey: dayKey, Weekend: true}
			ok, _ := s.rules.CanAssign(ctx, cand, constraint.ModeStrict)
			if !ok {
				continue
			}

			tx := ctx.Tracker.Begin(emp.ID, &shift, dayKey, true)
			day.Assign(model.SaturdayShiftCode, emp.ID)
			tx.Commit()
			taken++
			filled++
		}

		if taken < need {
			reasons = append(reasons, fmt.Sprintf("%s 周六角色 %s 仅排到 %d 人，配额 %d 人",
				dayKey, role, taken, need))
		}
	}

	if filled == 0 {
		s.logger.DayFailed(dayKey, reasons)
		return model.UnplannedDay(dayKey, reasons)
	}
	day.FailureReasons = reasons
	return day
}
