package diagnosis

import (
	"fmt"
)

// Метки базовой линии
const (
	BaselineBradycardia = "Bradycardia"
	BaselineTachycardia = "Tachycardia"
	BaselineNormal      = "Normal"
)

// Метки вариабельности
const (
	VariabilityLow     = "Low / possible distress"
	VariabilityHighSTV = "High / severe stress"
	VariabilityHighLTV = "High / possible acute stress"
	VariabilityGood    = "Good Variability"
)

// Метки акселераций
const (
	AccelerationsNormal      = "Normal Accelerations"
	AccelerationsLateConcern = "Concerning Late Accelerations"
	AccelerationsAbsent      = "Absent Accelerations"
)

// Метки децелераций
const (
	DecelerationsNone       = "No Decelerations"
	DecelerationsEarly      = "Early Decelerations (benign)"
	DecelerationsLate       = "Late Decelerations (requires attention)"
	DecelerationsVariable   = "Variable Decelerations (requires attention)"
	DecelerationsConcerning = "Concerning Decelerations"
)

// Итоговые заключения
const (
	OverallNormal      = "Normal Fetal Condition"
	OverallMild        = "Mild Concerns"
	OverallModerate    = "Moderate Concerns"
	OverallSignificant = "Significant Concerns"
)

// Terminology определяет, как называются децелерации после пика сокращения
type Terminology string

const (
	TerminologyLate     Terminology = "late"
	TerminologyVariable Terminology = "variable"
)

// ParseTerminology разбирает название терминологии из конфигурации
func ParseTerminology(s string) (Terminology, error) {
	switch Terminology(s) {
	case "", TerminologyLate:
		return TerminologyLate, nil
	case TerminologyVariable:
		return TerminologyVariable, nil
	default:
		return "", fmt.Errorf("unknown deceleration terminology: %q", s)
	}
}

// Thresholds - пороги правил заключения
type Thresholds struct {
	Bradycardia float64 `yaml:"bradycardia"`
	Tachycardia float64 `yaml:"tachycardia"`
	STVLow      float64 `yaml:"stv_low"`
	STVHigh     float64 `yaml:"stv_high"`
	LTVLow      float64 `yaml:"ltv_low"`
	LTVHigh     float64 `yaml:"ltv_high"`
}

// DefaultThresholds возвращает стандартные пороги
func DefaultThresholds() Thresholds {
	return Thresholds{
		Bradycardia: 110,
		Tachycardia: 160,
		STVLow:      5,
		STVHigh:     20,
		LTVLow:      10,
		LTVHigh:     25,
	}
}

// Validate проверяет порядок порогов
func (t Thresholds) Validate() error {
	if t.Bradycardia >= t.Tachycardia {
		return fmt.Errorf("bradycardia threshold (%.1f) must be below tachycardia threshold (%.1f)", t.Bradycardia, t.Tachycardia)
	}
	if t.STVLow >= t.STVHigh {
		return fmt.Errorf("stv_low (%.1f) must be below stv_high (%.1f)", t.STVLow, t.STVHigh)
	}
	if t.LTVLow >= t.LTVHigh {
		return fmt.Errorf("ltv_low (%.1f) must be below ltv_high (%.1f)", t.LTVLow, t.LTVHigh)
	}
	return nil
}

// Findings - входные данные заключения по одному сегменту
type Findings struct {
	Baseline float64
	STV      float64
	LTV      float64

	HasAccelerations      bool
	HasLateAccelerations  bool
	HasDecelerations      bool
	HasEarlyDecelerations bool
	HasLateDecelerations  bool
}

// Result - заключение по сегменту
type Result struct {
	BaselineStatus     string `json:"baseline_status"`
	VariabilityStatus  string `json:"variability_status"`
	AccelerationStatus string `json:"acceleration_status"`
	DecelerationStatus string `json:"deceleration_status"`
	Overall            string `json:"overall"`
}

// Concerns возвращает число тревожных признаков, из которых складывается итог
func (r Result) Concerns() int {
	count := 0
	if r.BaselineStatus != BaselineNormal {
		count++
	}
	if r.VariabilityStatus == VariabilityLow {
		count++
	}
	if r.AccelerationStatus == AccelerationsLateConcern {
		count++
	}
	if r.DecelerationStatus != DecelerationsNone {
		count++
	}
	return count
}

// rule - одно правило цепочки: первое сработавшее дает метку
type rule struct {
	match func(f Findings) bool
	label string
}

// Engine - движок правил заключения
type Engine struct {
	baseline      []rule
	variability   []rule
	accelerations []rule
	decelerations []rule
	fallback      [4]string
}

// NewEngine собирает цепочки правил по порогам и терминологии
func NewEngine(t Thresholds, term Terminology) *Engine {
	lateLabel := DecelerationsLate
	if term == TerminologyVariable {
		lateLabel = DecelerationsVariable
	}

	return &Engine{
		baseline: []rule{
			{func(f Findings) bool { return f.Baseline < t.Bradycardia }, BaselineBradycardia},
			{func(f Findings) bool { return f.Baseline > t.Tachycardia }, BaselineTachycardia},
		},
		variability: []rule{
			{func(f Findings) bool { return f.STV < t.STVLow }, VariabilityLow},
			{func(f Findings) bool { return f.STV > t.STVHigh }, VariabilityHighSTV},
			{func(f Findings) bool { return f.LTV < t.LTVLow }, VariabilityLow},
			{func(f Findings) bool { return f.LTV > t.LTVHigh }, VariabilityHighLTV},
		},
		accelerations: []rule{
			{func(f Findings) bool { return f.HasAccelerations && !f.HasLateAccelerations }, AccelerationsNormal},
			{func(f Findings) bool { return f.HasLateAccelerations }, AccelerationsLateConcern},
		},
		decelerations: []rule{
			{func(f Findings) bool { return !f.HasDecelerations }, DecelerationsNone},
			{func(f Findings) bool { return f.HasEarlyDecelerations }, DecelerationsEarly},
			{func(f Findings) bool { return f.HasLateDecelerations }, lateLabel},
		},
		fallback: [4]string{BaselineNormal, VariabilityGood, AccelerationsAbsent, DecelerationsConcerning},
	}
}

// Diagnose применяет правила к находкам сегмента
func (e *Engine) Diagnose(f Findings) Result {
	r := Result{
		BaselineStatus:     evaluate(e.baseline, f, e.fallback[0]),
		VariabilityStatus:  evaluate(e.variability, f, e.fallback[1]),
		AccelerationStatus: evaluate(e.accelerations, f, e.fallback[2]),
		DecelerationStatus: evaluate(e.decelerations, f, e.fallback[3]),
	}
	r.Overall = Overall(r.Concerns())
	return r
}

// Overall переводит число тревожных признаков в итоговое заключение
func Overall(concerns int) string {
	switch {
	case concerns <= 0:
		return OverallNormal
	case concerns == 1:
		return OverallMild
	case concerns <= 3:
		return OverallModerate
	default:
		return OverallSignificant
	}
}

func evaluate(rules []rule, f Findings, fallback string) string {
	for _, r := range rules {
		if r.match(f) {
			return r.label
		}
	}
	return fallback
}
