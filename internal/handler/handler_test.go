package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yuepai/yuepai/internal/rules"
	"github.com/yuepai/yuepai/pkg/model"
	"github.com/yuepai/yuepai/pkg/validator"
)

// newHandlerEmployee 构造测试员工输入
func newHandlerEmployee(code string, role model.Role) EmployeeInput {
	return EmployeeInput{
		ID:                 uuid.New().String(),
		Name:               "护理员" + code,
		Code:               code,
		Role:               string(role),
		SiteID:             "site-a",
		Status:             "active",
		MonthlyTargetHours: 160,
		WeekendEligible:    true,
		HolidayEligible:    true,
	}
}

// handlerRoster 够排满一个月的花名册
func handlerRoster() []EmployeeInput {
	var roster []EmployeeInput
	for i := 0; i < 2; i++ {
		roster = append(roster, newHandlerEmployee(fmt.Sprintf("L%03d", i+1), model.RoleLead))
	}
	for i := 0; i < 8; i++ {
		roster = append(roster, newHandlerEmployee(fmt.Sprintf("S%03d", i+1), model.RoleSpecialist))
	}
	for i := 0; i < 2; i++ {
		roster = append(roster, newHandlerEmployee(fmt.Sprintf("A%03d", i+1), model.RoleAssistant))
	}
	return roster
}

func postJSON(t *testing.T, handlerFn http.HandlerFunc, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("序列化请求失败: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handlerFn(rec, req)
	return rec
}

func TestPlanHandler_Create(t *testing.T) {
	h := NewPlanHandler(30*time.Second, nil, nil, nil, nil)

	rec := postJSON(t, h.Create, "/api/v1/plan", PlanCreateRequest{
		OrgID:     uuid.New().String(),
		Year:      2026,
		Month:     9,
		Employees: handlerRoster(),
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("期望状态码 200，实际 %d: %s", rec.Code, rec.Body.String())
	}

	var resp PlanCreateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if !resp.Success {
		t.Errorf("充足花名册应排班成功, recommendations=%v", resp.Recommendations)
	}
	if resp.Plan == nil || resp.Report == nil || resp.Statistics == nil {
		t.Fatal("响应缺少 plan/report/statistics")
	}
	if resp.Statistics.CoveragePercent != 100 {
		t.Errorf("覆盖率应为 100，实际 %.1f", resp.Statistics.CoveragePercent)
	}
	if resp.Fairness == nil {
		t.Error("响应应包含公平性分析")
	}
}

func TestPlanHandler_Create_InvalidPeriod(t *testing.T) {
	h := NewPlanHandler(time.Second, nil, nil, nil, nil)

	rec := postJSON(t, h.Create, "/api/v1/plan", PlanCreateRequest{
		OrgID:     uuid.New().String(),
		Year:      2026,
		Month:     13,
		Employees: handlerRoster(),
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("月份 13 应返回 400，实际 %d", rec.Code)
	}
}

func TestPlanHandler_Create_MissingRoster(t *testing.T) {
	h := NewPlanHandler(time.Second, nil, nil, nil, nil)

	rec := postJSON(t, h.Create, "/api/v1/plan", PlanCreateRequest{
		OrgID: uuid.New().String(),
		Year:  2026,
		Month: 9,
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("无仓储且员工列表为空应返回 400，实际 %d", rec.Code)
	}
}

func TestPlanHandler_Create_UnknownPreset(t *testing.T) {
	h := NewPlanHandler(time.Second, nil, nil, nil, nil)

	rec := postJSON(t, h.Create, "/api/v1/plan", PlanCreateRequest{
		OrgID:     uuid.New().String(),
		Year:      2026,
		Month:     9,
		Preset:    "nonexistent",
		Employees: handlerRoster(),
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("未知预设应返回 400，实际 %d", rec.Code)
	}
}

func TestPlanHandler_Create_MethodNotAllowed(t *testing.T) {
	h := NewPlanHandler(time.Second, nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plan", nil)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("GET 应被拒绝，实际 %d", rec.Code)
	}
}

// cleanDayPlan 构造满足工作日全部配额的单日计划
func cleanDayPlan(roster []EmployeeInput, date string) *model.MonthPlan {
	plan := model.NewMonthPlan(2026, time.September)
	day := model.NewDayPlan(date)

	byRole := make(map[model.Role][]uuid.UUID)
	for _, in := range roster {
		byRole[model.Role(in.Role)] = append(byRole[model.Role(in.Role)], uuid.MustParse(in.ID))
	}

	day.Assign("early", byRole[model.RoleLead][0])
	day.Assign("early", byRole[model.RoleSpecialist][0])
	day.Assign("early", byRole[model.RoleSpecialist][1])
	day.Assign("early", byRole[model.RoleAssistant][0])
	day.Assign("late", byRole[model.RoleSpecialist][2])
	day.Assign("late", byRole[model.RoleSpecialist][3])
	day.Assign("split", byRole[model.RoleSpecialist][4])

	plan.Days[date] = day
	return plan
}

func TestValidateHandler_CleanPlan(t *testing.T) {
	h := NewValidateHandler()
	roster := handlerRoster()

	// 2026-09-07 周一
	rec := postJSON(t, h.Validate, "/api/v1/plan/validate", ValidateRequest{
		Plan:      cleanDayPlan(roster, "2026-09-07"),
		Employees: roster,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("期望状态码 200，实际 %d: %s", rec.Code, rec.Body.String())
	}

	var resp ValidateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if !resp.Valid {
		t.Errorf("合规计划应通过审核, conflicts=%v, report=%+v", resp.Conflicts, resp.Report)
	}
	if len(resp.Conflicts) != 0 {
		t.Errorf("合规计划不应有冲突，实际 %d 个", len(resp.Conflicts))
	}
}

func TestValidateHandler_SundayWork(t *testing.T) {
	h := NewValidateHandler()
	roster := handlerRoster()

	// 2026-09-06 周日，排班即违规
	rec := postJSON(t, h.Validate, "/api/v1/plan/validate", ValidateRequest{
		Plan:      cleanDayPlan(roster, "2026-09-06"),
		Employees: roster,
	})

	var resp ValidateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Valid {
		t.Error("周日排班应审核不通过")
	}
	found := false
	for _, c := range resp.Conflicts {
		if c.Type == validator.ConflictSundayWork {
			found = true
		}
	}
	if !found {
		t.Errorf("应检出周日排班冲突，实际 %v", resp.Conflicts)
	}
}

func TestValidateHandler_MissingPlan(t *testing.T) {
	h := NewValidateHandler()

	rec := postJSON(t, h.Validate, "/api/v1/plan/validate", ValidateRequest{
		Employees: handlerRoster(),
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("缺少计划应返回 400，实际 %d", rec.Code)
	}
}

func TestRulesHandler_Library(t *testing.T) {
	h := NewRulesHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rules/library", nil)
	rec := httptest.NewRecorder()
	h.Library(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("期望状态码 200，实际 %d", rec.Code)
	}

	var resp rules.LibraryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if len(resp.Library) != 12 {
		t.Errorf("规则目录应有 12 条，实际 %d", len(resp.Library))
	}
}

func TestRulesHandler_Presets(t *testing.T) {
	h := NewRulesHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rules/presets", nil)
	rec := httptest.NewRecorder()
	h.Presets(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("期望状态码 200，实际 %d", rec.Code)
	}

	var resp struct {
		Presets []rules.Preset `json:"presets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if len(resp.Presets) != 3 {
		t.Errorf("应有 3 个预设，实际 %d", len(resp.Presets))
	}
}
