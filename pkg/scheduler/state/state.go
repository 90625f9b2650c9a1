// Package state 维护单次排班运行中每名员工的可用性记录
//
// 记录在运行开始时全部清零，仅由回溯搜索通过 Apply/Revert 修改，
// 周计数器由编排器在周界处重置，运行结束后整体丢弃。
package state

import (
	"sort"

	"github.com/google/uuid"
	"github.com/yuepai/yuepai/pkg/model"
)

// Record 员工可用性记录
type Record struct {
	EmployeeID      uuid.UUID `json:"employee_id"`
	WeekHours       float64   `json:"week_hours"`
	MonthHours      float64   `json:"month_hours"`
	AssignedDays    []string  `json:"assigned_days"` // 按分配顺序
	ShiftHistory    []string  `json:"shift_history"` // 与 AssignedDays 平行的班次代码栈
	WeekendDays     int       `json:"weekend_days"`
	ConsecutiveDays int       `json:"consecutive_days"` // 截至最近分配日的连班天数
	Violations      int       `json:"violations"`       // 宽松模式下累计的软约束违反数
}

// LastShift 返回最近一次分配的班次代码
func (r *Record) LastShift() string {
	if len(r.ShiftHistory) == 0 {
		return ""
	}
	return r.ShiftHistory[len(r.ShiftHistory)-1]
}

// ShiftCount 返回已分配班次总数
func (r *Record) ShiftCount() int {
	return len(r.ShiftHistory)
}

// HasDay 检查某日是否已有分配
func (r *Record) HasDay(dayKey string) bool {
	for _, d := range r.AssignedDays {
		if d == dayKey {
			return true
		}
	}
	return false
}

// ConsecutiveAround 计算若在 dayKey 分配、会形成的连班天数（含 dayKey）
func (r *Record) ConsecutiveAround(dayKey string) int {
	days := make(map[string]bool, len(r.AssignedDays))
	for _, d := range r.AssignedDays {
		days[d] = true
	}

	count := 1
	for d := prevDay(dayKey); d != "" && days[d]; d = prevDay(d) {
		count++
		if count > 31 {
			break
		}
	}
	for d := nextDay(dayKey); d != "" && days[d]; d = nextDay(d) {
		count++
		if count > 31 {
			break
		}
	}
	return count
}

// Clone 深拷贝记录（用于回退测试和结果快照）
func (r *Record) Clone() *Record {
	c := *r
	c.AssignedDays = append([]string(nil), r.AssignedDays...)
	c.ShiftHistory = append([]string(nil), r.ShiftHistory...)
	return &c
}

// Tracker 管理一次排班运行的全部可用性记录
// 单次运行内串行使用，不做并发保护（见并发模型：一运行一实例）
type Tracker struct {
	records   map[uuid.UUID]*Record
	employees map[uuid.UUID]*model.Employee
}

// NewTracker 为花名册创建全零记录
func NewTracker(employees []*model.Employee) *Tracker {
	t := &Tracker{
		records:   make(map[uuid.UUID]*Record, len(employees)),
		employees: make(map[uuid.UUID]*model.Employee, len(employees)),
	}
	for _, emp := range employees {
		t.records[emp.ID] = &Record{EmployeeID: emp.ID}
		t.employees[emp.ID] = emp
	}
	return t
}

// Record 返回员工的可用性记录
func (t *Tracker) Record(empID uuid.UUID) *Record {
	return t.records[empID]
}

// Records 返回全部记录
func (t *Tracker) Records() map[uuid.UUID]*Record {
	return t.records
}

// Employee 返回员工（只读输入）
func (t *Tracker) Employee(empID uuid.UUID) *model.Employee {
	return t.employees[empID]
}

// Apply 记录一次分配
func (t *Tracker) Apply(empID uuid.UUID, shift *model.ShiftType, dayKey string, weekend bool) {
	r := t.records[empID]
	if r == nil {
		return
	}
	r.WeekHours += shift.DurationHours
	r.MonthHours += shift.DurationHours
	r.AssignedDays = append(r.AssignedDays, dayKey)
	r.ShiftHistory = append(r.ShiftHistory, shift.Code)
	if weekend {
		r.WeekendDays++
	}
	r.ConsecutiveDays = currentStreak(r.AssignedDays)
}

// Revert 撤销一次分配，是 Apply 的精确逆操作
// 回溯时紧随对应的 Apply 调用，因此只需弹出栈顶
func (t *Tracker) Revert(empID uuid.UUID, shift *model.ShiftType, dayKey string, weekend bool) {
	r := t.records[empID]
	if r == nil {
		return
	}
	r.WeekHours -= shift.DurationHours
	r.MonthHours -= shift.DurationHours
	for i := len(r.AssignedDays) - 1; i >= 0; i-- {
		if r.AssignedDays[i] == dayKey {
			r.AssignedDays = append(r.AssignedDays[:i], r.AssignedDays[i+1:]...)
			break
		}
	}
	if len(r.ShiftHistory) > 0 {
		r.ShiftHistory = r.ShiftHistory[:len(r.ShiftHistory)-1]
	}
	if weekend {
		r.WeekendDays--
	}
	r.ConsecutiveDays = currentStreak(r.AssignedDays)
}

// AddViolation 累计一次软约束违反（宽松模式分配时记账）
func (t *Tracker) AddViolation(empID uuid.UUID) {
	if r := t.records[empID]; r != nil {
		r.Violations++
	}
}

// ResetWeekly 在周界处重置全部周计数器
func (t *Tracker) ResetWeekly() {
	for _, r := range t.records {
		r.WeekHours = 0
	}
}

// WorkloadPercent 计算员工当前工作量百分比
func (t *Tracker) WorkloadPercent(empID uuid.UUID) float64 {
	r := t.records[empID]
	emp := t.employees[empID]
	if r == nil || emp == nil || emp.MonthlyTargetHours <= 0 {
		return 0
	}
	return r.MonthHours / emp.MonthlyTargetHours * 100
}

// Snapshot 返回全部记录的深拷贝
func (t *Tracker) Snapshot() map[uuid.UUID]*Record {
	snap := make(map[uuid.UUID]*Record, len(t.records))
	for id, r := range t.records {
		snap[id] = r.Clone()
	}
	return snap
}

// Txn 单次分配的可回退事务
// 创建即生效，未 Commit 前调用 Rollback 恢复原状
type Txn struct {
	tracker *Tracker
	empID   uuid.UUID
	shift   *model.ShiftType
	dayKey  string
	weekend bool
	done    bool
}

// Begin 开始一次分配事务
func (t *Tracker) Begin(empID uuid.UUID, shift *model.ShiftType, dayKey string, weekend bool) *Txn {
	t.Apply(empID, shift, dayKey, weekend)
	return &Txn{tracker: t, empID: empID, shift: shift, dayKey: dayKey, weekend: weekend}
}

// Commit 确认分配
func (tx *Txn) Commit() {
	tx.done = true
}

// Rollback 撤销分配（已 Commit 时为空操作）
func (tx *Txn) Rollback() {
	if tx.done {
		return
	}
	tx.done = true
	tx.tracker.Revert(tx.empID, tx.shift, tx.dayKey, tx.weekend)
}

// currentStreak 计算截至最近分配日的连班天数
func currentStreak(assigned []string) int {
	if len(assigned) == 0 {
		return 0
	}
	days := make([]string, len(assigned))
	copy(days, assigned)
	sort.Strings(days)

	// 去重后从最后一天往前数
	uniq := make([]string, 0, len(days))
	for _, d := range days {
		if len(uniq) == 0 || uniq[len(uniq)-1] != d {
			uniq = append(uniq, d)
		}
	}

	streak := 1
	for i := len(uniq) - 1; i > 0; i-- {
		if prevDay(uniq[i]) == uniq[i-1] {
			streak++
		} else {
			break
		}
	}
	return streak
}

// prevDay 返回前一天的日期键
func prevDay(dayKey string) string {
	t, err := model.ParseDayKey(dayKey)
	if err != nil {
		return ""
	}
	return model.DayKey(t.AddDate(0, 0, -1))
}

// nextDay 返回后一天的日期键
func nextDay(dayKey string) string {
	t, err := model.ParseDayKey(dayKey)
	if err != nil {
		return ""
	}
	return model.DayKey(t.AddDate(0, 0, 1))
}
