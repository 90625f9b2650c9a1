// Package model 定义排班引擎的核心数据模型
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role 员工角色
type Role string

const (
	RoleLead       Role = "lead"       // 主管
	RoleSpecialist Role = "specialist" // 专业护理师
	RoleAssistant  Role = "assistant"  // 助理
)

// AllRoles 返回全部角色（按排班优先级排列）
func AllRoles() []Role {
	return []Role{RoleLead, RoleSpecialist, RoleAssistant}
}

// Valid 检查角色是否合法
func (r Role) Valid() bool {
	switch r {
	case RoleLead, RoleSpecialist, RoleAssistant:
		return true
	}
	return false
}

// WeekendMode 周末分配模式
type WeekendMode string

const (
	WeekendFair     WeekendMode = "fair"     // 公平分配（默认）
	WeekendStrict   WeekendMode = "strict"   // 严格限制每人周末次数
	WeekendFlexible WeekendMode = "flexible" // 宽松，超额仅作提示
)

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DayKeyLayout 日期键格式
const DayKeyLayout = "2006-01-02"

// DayKey 生成日期键
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// ParseDayKey 解析日期键
func ParseDayKey(key string) (time.Time, error) {
	return time.Parse(DayKeyLayout, key)
}

// IsSunday 检查日期键是否为周日
func IsSunday(key string) bool {
	t, err := ParseDayKey(key)
	if err != nil {
		return false
	}
	return t.Weekday() == time.Sunday
}

// IsSaturday 检查日期键是否为周六
func IsSaturday(key string) bool {
	t, err := ParseDayKey(key)
	if err != nil {
		return false
	}
	return t.Weekday() == time.Saturday
}

// IsWeekend 检查日期键是否为周末
func IsWeekend(key string) bool {
	return IsSaturday(key) || IsSunday(key)
}

// ISOWeek 返回日期键所在的 ISO 周标识（如 2026-W05）
func ISOWeek(key string) string {
	t, err := ParseDayKey(key)
	if err != nil {
		return ""
	}
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// MonthDays 返回某年某月的全部日期键（按时间顺序）
func MonthDays(year int, month time.Month) []string {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := make([]string, 0, 31)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		days = append(days, DayKey(d))
	}
	return days
}
