// Package model 定义排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// DayStatus 单日计划状态
type DayStatus string

const (
	DayPlanned   DayStatus = "planned"   // 已排班
	DayUnplanned DayStatus = "unplanned" // 无解（与"无班次"不同）
	DayNoShifts  DayStatus = "no_shifts" // 当日无班次需求（周日）
)

// DayPlan 单日排班结果
// Shifts 的值是分配顺序有序的员工 ID 列表
type DayPlan struct {
	Date           string                 `json:"date"`
	Status         DayStatus              `json:"status"`
	Shifts         map[string][]uuid.UUID `json:"shifts,omitempty"`
	FailureReasons []string               `json:"failure_reasons,omitempty"`
	Relaxed        bool                   `json:"relaxed,omitempty"` // 是否进入过宽松模式重试
}

// NewDayPlan 创建空的单日计划
func NewDayPlan(date string) *DayPlan {
	return &DayPlan{
		Date:   date,
		Status: DayPlanned,
		Shifts: make(map[string][]uuid.UUID),
	}
}

// NoShiftsDay 创建"无班次"标记（周日）
func NoShiftsDay(date string) *DayPlan {
	return &DayPlan{Date: date, Status: DayNoShifts}
}

// UnplannedDay 创建"无解"标记
func UnplannedDay(date string, reasons []string) *DayPlan {
	return &DayPlan{Date: date, Status: DayUnplanned, FailureReasons: reasons}
}

// Assign 在某班次末尾追加一名员工
func (p *DayPlan) Assign(shiftCode string, empID uuid.UUID) {
	p.Shifts[shiftCode] = append(p.Shifts[shiftCode], empID)
}

// Unassign 移除某班次中最后一次分配的指定员工
func (p *DayPlan) Unassign(shiftCode string, empID uuid.UUID) {
	assigned := p.Shifts[shiftCode]
	for i := len(assigned) - 1; i >= 0; i-- {
		if assigned[i] == empID {
			p.Shifts[shiftCode] = append(assigned[:i], assigned[i+1:]...)
			return
		}
	}
}

// Contains 检查员工是否已出现在当日任一班次
func (p *DayPlan) Contains(empID uuid.UUID) bool {
	for _, assigned := range p.Shifts {
		for _, id := range assigned {
			if id == empID {
				return true
			}
		}
	}
	return false
}

// AssignmentCount 返回当日总分配人次
func (p *DayPlan) AssignmentCount() int {
	count := 0
	for _, assigned := range p.Shifts {
		count += len(assigned)
	}
	return count
}

// Absorb 并入另一站点同一天的子计划
// 各站点花名册互不相交，按班次取并集不会产生重复分配；
// 任一站点成功当天即记为已排班，失败站点的缺口保留在
// FailureReasons 中
func (p *DayPlan) Absorb(other *DayPlan) {
	if other == nil {
		return
	}
	if p.Shifts == nil && len(other.Shifts) > 0 {
		p.Shifts = make(map[string][]uuid.UUID, len(other.Shifts))
	}
	for code, assigned := range other.Shifts {
		p.Shifts[code] = append(p.Shifts[code], assigned...)
	}
	p.FailureReasons = append(p.FailureReasons, other.FailureReasons...)
	p.Relaxed = p.Relaxed || other.Relaxed
	if other.Status == DayPlanned {
		p.Status = DayPlanned
	}
}

// MonthPlan 月度排班计划
// Days 对每个自然日恰有一个条目
type MonthPlan struct {
	ID    uuid.UUID           `json:"id"`
	Year  int                 `json:"year"`
	Month time.Month          `json:"month"`
	Days  map[string]*DayPlan `json:"days"`
}

// NewMonthPlan 创建空的月度计划
func NewMonthPlan(year int, month time.Month) *MonthPlan {
	return &MonthPlan{
		ID:    uuid.New(),
		Year:  year,
		Month: month,
		Days:  make(map[string]*DayPlan),
	}
}

// DayKeys 返回按时间顺序排列的全部日期键
func (p *MonthPlan) DayKeys() []string {
	return MonthDays(p.Year, p.Month)
}

// PlannedDays 返回成功排班的天数
func (p *MonthPlan) PlannedDays() int {
	count := 0
	for _, day := range p.Days {
		if day.Status == DayPlanned {
			count++
		}
	}
	return count
}

// UnplannedDays 返回无解的天数
func (p *MonthPlan) UnplannedDays() int {
	count := 0
	for _, day := range p.Days {
		if day.Status == DayUnplanned {
			count++
		}
	}
	return count
}

// TotalAssignments 返回整月总分配人次
func (p *MonthPlan) TotalAssignments() int {
	count := 0
	for _, day := range p.Days {
		if day.Status == DayPlanned {
			count += day.AssignmentCount()
		}
	}
	return count
}
