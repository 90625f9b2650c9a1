package rules

import (
	"testing"

	"github.com/yuepai/yuepai/pkg/model"
	"github.com/yuepai/yuepai/pkg/scheduler/constraint"
)

func TestGetLibrary(t *testing.T) {
	library := GetLibrary()

	if len(library) != 12 {
		t.Fatalf("规则目录应有 12 条，实际 %d", len(library))
	}

	hard, soft, warn := 0, 0, 0
	seen := make(map[constraint.Code]bool)
	for _, def := range library {
		if seen[def.Code] {
			t.Errorf("规则代码重复: %s", def.Code)
		}
		seen[def.Code] = true

		if def.Severity != constraint.SeverityOf(def.Code) {
			t.Errorf("规则 %s 严重度与引擎不一致: %d", def.Code, def.Severity)
		}

		switch def.Category {
		case constraint.CategoryHard:
			hard++
		case constraint.CategorySoft:
			soft++
		case constraint.CategoryWarn:
			warn++
		default:
			t.Errorf("规则 %s 类别未知: %s", def.Code, def.Category)
		}
	}

	if hard != 6 || soft != 4 || warn != 2 {
		t.Errorf("类别分布应为 6 硬/4 软/2 提示，实际 %d/%d/%d", hard, soft, warn)
	}
}

func TestGetPresets(t *testing.T) {
	presets := GetPresets()

	if len(presets) != 3 {
		t.Fatalf("应有 3 个预设，实际 %d", len(presets))
	}

	for _, p := range presets {
		if p.Policy == nil {
			t.Errorf("预设 %s 缺少规则参数", p.Name)
			continue
		}
		if p.Policy.OvertimeTolerance <= 0 || p.Policy.WeekendCapPerMonth <= 0 {
			t.Errorf("预设 %s 的规则参数未归一化: %+v", p.Name, p.Policy)
		}
	}
}

func TestPresetByName(t *testing.T) {
	flexible := PresetByName("flexible")
	if flexible == nil {
		t.Fatal("应能找到 flexible 预设")
	}
	if flexible.Policy.WeekendMode != model.WeekendFlexible {
		t.Errorf("flexible 预设的周末模式应为 flexible，实际 %s", flexible.Policy.WeekendMode)
	}

	if PresetByName("nope") != nil {
		t.Error("未知名称应返回 nil")
	}
}
