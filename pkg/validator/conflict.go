// Package validator 提供月度计划的事后审计
//
// 约束引擎在求解过程中保证不变量，审计器则面向已经生成或被
// 外部修改过的计划：不依赖求解期的可用性记录，从计划本身
// 重建每个员工的工作轨迹并重新检查全部硬性规则。
package validator

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/yuepai/yuepai/pkg/model"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictDoubleBooking   ConflictType = "double_booking"   // 同日重复分配
	ConflictSundayWork      ConflictType = "sunday_work"      // 周日出现排班
	ConflictUnknownEmployee ConflictType = "unknown_employee" // 计划引用未知员工
	ConflictUnknownShift    ConflictType = "unknown_shift"    // 计划引用未知班次
	ConflictInactive        ConflictType = "inactive"         // 非在职员工被排班
	ConflictRoleMismatch    ConflictType = "role_mismatch"    // 角色与班次不匹配
	ConflictConsecutive     ConflictType = "consecutive"      // 连续天数超限
	ConflictRestTime        ConflictType = "rest_time"        // 班后休息不足
	ConflictMonthlyHours    ConflictType = "monthly_hours"    // 月工时超上限
	ConflictWeekend         ConflictType = "weekend"          // 不可排周末的员工出现在周六
)

// Conflict 冲突信息
type Conflict struct {
	Type       ConflictType `json:"type"`
	Severity   string       `json:"severity"` // error/warning
	EmployeeID uuid.UUID    `json:"employee_id,omitempty"`
	Date       string       `json:"date,omitempty"`
	Message    string       `json:"message"`
}

// ConflictDetector 计划审计器
type ConflictDetector struct {
	policy  *model.RulePolicy
	catalog *model.Catalog
}

// NewConflictDetector 创建计划审计器
func NewConflictDetector(policy *model.RulePolicy, catalog *model.Catalog) *ConflictDetector {
	if policy == nil {
		policy = model.DefaultRulePolicy()
	}
	policy.Normalize()
	if catalog == nil {
		catalog = model.DefaultCatalog()
	}
	return &ConflictDetector{policy: policy, catalog: catalog}
}

// DetectAll 审计整月计划
func (d *ConflictDetector) DetectAll(plan *model.MonthPlan, employees []*model.Employee) []Conflict {
	if plan == nil {
		return nil
	}

	byID := make(map[uuid.UUID]*model.Employee, len(employees))
	for _, emp := range employees {
		byID[emp.ID] = emp
	}

	var conflicts []Conflict
	workDays := make(map[uuid.UUID][]string)
	monthHours := make(map[uuid.UUID]float64)
	dayHours := make(map[uuid.UUID]map[string]float64)

	for _, key := range plan.DayKeys() {
		day := plan.Days[key]
		if day == nil || day.Status != model.DayPlanned {
			continue
		}
		conflicts = append(conflicts, d.auditDay(key, day, byID, workDays, monthHours, dayHours)...)
	}

	conflicts = append(conflicts, d.auditConsecutive(workDays, byID)...)
	conflicts = append(conflicts, d.auditRest(dayHours, byID)...)
	conflicts = append(conflicts, d.auditMonthlyHours(monthHours, byID)...)
	return conflicts
}

// auditDay 审计单日计划，同时累积员工工作轨迹
func (d *ConflictDetector) auditDay(key string, day *model.DayPlan, byID map[uuid.UUID]*model.Employee,
	workDays map[uuid.UUID][]string, monthHours map[uuid.UUID]float64,
	dayHours map[uuid.UUID]map[string]float64) []Conflict {

	var conflicts []Conflict

	if model.IsSunday(key) {
		conflicts = append(conflicts, Conflict{
			Type:     ConflictSundayWork,
			Severity: "error",
			Date:     key,
			Message:  fmt.Sprintf("周日 %s 不应存在排班", key),
		})
	}

	seen := make(map[uuid.UUID]string)
	for code, assigned := range day.Shifts {
		shift := d.shiftByCode(code)
		if shift == nil {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictUnknownShift,
				Severity: "error",
				Date:     key,
				Message:  fmt.Sprintf("未知班次代码: %s", code),
			})
			continue
		}

		for _, empID := range assigned {
			emp := byID[empID]
			if emp == nil {
				conflicts = append(conflicts, Conflict{
					Type:       ConflictUnknownEmployee,
					Severity:   "error",
					EmployeeID: empID,
					Date:       key,
					Message:    fmt.Sprintf("计划引用未知员工 %s", empID),
				})
				continue
			}

			if prior, dup := seen[empID]; dup {
				conflicts = append(conflicts, Conflict{
					Type:       ConflictDoubleBooking,
					Severity:   "error",
					EmployeeID: empID,
					Date:       key,
					Message:    fmt.Sprintf("员工 %s 在 %s 同时出现在 %s 与 %s", emp.Name, key, prior, code),
				})
			}
			seen[empID] = code

			if !emp.IsActive() {
				conflicts = append(conflicts, Conflict{
					Type:       ConflictInactive,
					Severity:   "error",
					EmployeeID: empID,
					Date:       key,
					Message:    fmt.Sprintf("非在职员工 %s 被排班", emp.Name),
				})
			}

			if code == model.SaturdayShiftCode {
				if !emp.WeekendEligible {
					conflicts = append(conflicts, Conflict{
						Type:       ConflictWeekend,
						Severity:   "error",
						EmployeeID: empID,
						Date:       key,
						Message:    fmt.Sprintf("员工 %s 不可排周末", emp.Name),
					})
				}
			} else if !d.roleAllowed(code, emp.Role) {
				conflicts = append(conflicts, Conflict{
					Type:       ConflictRoleMismatch,
					Severity:   "error",
					EmployeeID: empID,
					Date:       key,
					Message:    fmt.Sprintf("员工 %s 的角色 %s 不能承担班次 %s", emp.Name, emp.Role, code),
				})
			}

			workDays[empID] = append(workDays[empID], key)
			monthHours[empID] += shift.DurationHours
			if dayHours[empID] == nil {
				dayHours[empID] = make(map[string]float64)
			}
			dayHours[empID][key] += shift.DurationHours
		}
	}
	return conflicts
}

// auditConsecutive 检查连续天数超限
func (d *ConflictDetector) auditConsecutive(workDays map[uuid.UUID][]string, byID map[uuid.UUID]*model.Employee) []Conflict {
	var conflicts []Conflict
	for empID, days := range workDays {
		emp := byID[empID]
		if emp == nil {
			continue
		}
		limit := emp.MaxConsecutiveDays
		if limit <= 0 {
			limit = d.policy.MaxConsecutiveDays
		}

		streak, start := longestStreak(days)
		if streak > limit {
			conflicts = append(conflicts, Conflict{
				Type:       ConflictConsecutive,
				Severity:   "error",
				EmployeeID: empID,
				Date:       start,
				Message:    fmt.Sprintf("员工 %s 连续工作 %d 天，超过上限 %d 天", emp.Name, streak, limit),
			})
		}
	}
	return conflicts
}

// auditRest 检查班后休息不足
// 日粒度计划没有班次的钟点时刻，按"当日工时占用 24 小时预算"
// 估算：相邻两个工作日之间可用的休息时长不超过 24 减去前一日
// 的工时
func (d *ConflictDetector) auditRest(dayHours map[uuid.UUID]map[string]float64, byID map[uuid.UUID]*model.Employee) []Conflict {
	var conflicts []Conflict
	for empID, hours := range dayHours {
		emp := byID[empID]
		if emp == nil || emp.MinRestHours <= 0 {
			continue
		}

		days := make([]string, 0, len(hours))
		for key := range hours {
			days = append(days, key)
		}
		sort.Strings(days)

		for i := 1; i < len(days); i++ {
			if nextDay(days[i-1]) != days[i] {
				continue
			}
			rest := 24 - hours[days[i-1]]
			if rest < float64(emp.MinRestHours) {
				conflicts = append(conflicts, Conflict{
					Type:       ConflictRestTime,
					Severity:   "error",
					EmployeeID: empID,
					Date:       days[i],
					Message: fmt.Sprintf("员工 %s 在 %s 前至多休息 %.0f 小时，低于最少 %d 小时",
						emp.Name, days[i], rest, emp.MinRestHours),
				})
			}
		}
	}
	return conflicts
}

// auditMonthlyHours 检查月工时超上限
func (d *ConflictDetector) auditMonthlyHours(monthHours map[uuid.UUID]float64, byID map[uuid.UUID]*model.Employee) []Conflict {
	var conflicts []Conflict
	for empID, hours := range monthHours {
		emp := byID[empID]
		if emp == nil || emp.MonthlyTargetHours <= 0 {
			continue
		}
		if ceiling := emp.OvertimeCeiling(); hours > ceiling {
			conflicts = append(conflicts, Conflict{
				Type:       ConflictMonthlyHours,
				Severity:   "error",
				EmployeeID: empID,
				Message:    fmt.Sprintf("员工 %s 月工时 %.1f 小时，超过上限 %.1f 小时", emp.Name, hours, ceiling),
			})
		}
	}
	return conflicts
}

// shiftByCode 解析班次代码（含周六班）
func (d *ConflictDetector) shiftByCode(code string) *model.ShiftType {
	if code == model.SaturdayShiftCode {
		saturday := model.SaturdayShift()
		return &saturday
	}
	return d.catalog.ShiftByCode(code)
}

// roleAllowed 检查角色是否出现在班次的配额定义中
func (d *ConflictDetector) roleAllowed(code string, role model.Role) bool {
	for _, req := range d.catalog.RequirementsFor(code) {
		if req.Role == role {
			return true
		}
	}
	return false
}

// longestStreak 返回最长连续天数及其起始日期
func longestStreak(days []string) (int, string) {
	if len(days) == 0 {
		return 0, ""
	}

	sorted := make([]string, 0, len(days))
	seen := make(map[string]bool, len(days))
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			sorted = append(sorted, d)
		}
	}
	sort.Strings(sorted)

	longest, streak := 1, 1
	start, best := sorted[0], sorted[0]
	for i := 1; i < len(sorted); i++ {
		if nextDay(sorted[i-1]) == sorted[i] {
			streak++
			if streak > longest {
				longest = streak
				best = start
			}
		} else {
			streak = 1
			start = sorted[i]
		}
	}
	return longest, best
}

// nextDay 返回后一天的日期键
func nextDay(key string) string {
	t, err := model.ParseDayKey(key)
	if err != nil {
		return ""
	}
	return model.DayKey(t.AddDate(0, 0, 1))
}
