// Package model 定义排班引擎的核心数据模型
package model

// DayType 班次适用的日类型
type DayType string

const (
	DayTypeWeekday  DayType = "weekday"  // 工作日
	DayTypeSaturday DayType = "saturday" // 周六
)

// ShiftType 班次定义
type ShiftType struct {
	Code          string  `json:"code" db:"code"` // early/late/split
	Name          string  `json:"name" db:"name"`
	DurationHours float64 `json:"duration_hours" db:"duration_hours"`
	DayType       DayType `json:"day_type" db:"day_type"`
	Priority      int     `json:"priority" db:"priority"` // 填班优先级，大者先填
}

// RoleRequirement 班次的角色配额
type RoleRequirement struct {
	ShiftCode string `json:"shift_code" db:"shift_code"`
	Role      Role   `json:"role" db:"role"`
	Min       int    `json:"min" db:"min"`
	Max       int    `json:"max" db:"max"`
	Priority  int    `json:"priority" db:"priority"` // 填槽优先级，大者先填
}

// Catalog 班次目录：班次定义加各班次的角色配额
type Catalog struct {
	Shifts       []ShiftType       `json:"shifts"`
	Requirements []RoleRequirement `json:"requirements"`
}

// ShiftByCode 按代码查找班次
func (c *Catalog) ShiftByCode(code string) *ShiftType {
	for i := range c.Shifts {
		if c.Shifts[i].Code == code {
			return &c.Shifts[i]
		}
	}
	return nil
}

// RequirementsFor 返回某班次的全部角色配额
func (c *Catalog) RequirementsFor(shiftCode string) []RoleRequirement {
	var reqs []RoleRequirement
	for _, r := range c.Requirements {
		if r.ShiftCode == shiftCode {
			reqs = append(reqs, r)
		}
	}
	return reqs
}

// WeekdayShifts 返回工作日适用的班次（按优先级降序由调用方排序）
func (c *Catalog) WeekdayShifts() []ShiftType {
	var shifts []ShiftType
	for _, s := range c.Shifts {
		if s.DayType == DayTypeWeekday {
			shifts = append(shifts, s)
		}
	}
	return shifts
}

// DefaultCatalog 返回默认班次目录
// 工作日三个班次：早班/晚班/两头班；周六采用固定配额填班，周日无班次
func DefaultCatalog() *Catalog {
	return &Catalog{
		Shifts: []ShiftType{
			{Code: "early", Name: "早班", DurationHours: 8, DayType: DayTypeWeekday, Priority: 3},
			{Code: "late", Name: "晚班", DurationHours: 8, DayType: DayTypeWeekday, Priority: 2},
			{Code: "split", Name: "两头班", DurationHours: 9, DayType: DayTypeWeekday, Priority: 1},
		},
		Requirements: []RoleRequirement{
			{ShiftCode: "early", Role: RoleLead, Min: 1, Max: 1, Priority: 10},
			{ShiftCode: "early", Role: RoleSpecialist, Min: 2, Max: 3, Priority: 8},
			{ShiftCode: "early", Role: RoleAssistant, Min: 1, Max: 1, Priority: 6},
			{ShiftCode: "late", Role: RoleSpecialist, Min: 2, Max: 3, Priority: 7},
			{ShiftCode: "split", Role: RoleSpecialist, Min: 1, Max: 2, Priority: 5},
		},
	}
}

// SaturdayQuota 周六固定配额
type SaturdayQuota struct {
	Leads       int `json:"leads"`
	Specialists int `json:"specialists"`
	Assistants  int `json:"assistants"`
}

// DefaultSaturdayQuota 默认周六配额：1 主管 + 4 专业护理师 + 1 助理
func DefaultSaturdayQuota() SaturdayQuota {
	return SaturdayQuota{Leads: 1, Specialists: 4, Assistants: 1}
}

// Count 返回某角色的配额人数
func (q SaturdayQuota) Count(role Role) int {
	switch role {
	case RoleLead:
		return q.Leads
	case RoleSpecialist:
		return q.Specialists
	case RoleAssistant:
		return q.Assistants
	}
	return 0
}

// SaturdayShiftCode 周六班次代码
const SaturdayShiftCode = "saturday"

// SaturdayShift 周六班次定义（固定 6 小时）
func SaturdayShift() ShiftType {
	return ShiftType{
		Code:          SaturdayShiftCode,
		Name:          "周六班",
		DurationHours: 6,
		DayType:       DayTypeSaturday,
		Priority:      0,
	}
}
