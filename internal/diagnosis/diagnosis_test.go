package diagnosis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthy() Findings {
	return Findings{
		Baseline:         140,
		STV:              8,
		LTV:              15,
		HasAccelerations: true,
	}
}

func TestDiagnose_Normal(t *testing.T) {
	r := NewEngine(DefaultThresholds(), TerminologyLate).Diagnose(healthy())

	assert.Equal(t, Result{
		BaselineStatus:     BaselineNormal,
		VariabilityStatus:  VariabilityGood,
		AccelerationStatus: AccelerationsNormal,
		DecelerationStatus: DecelerationsNone,
		Overall:            OverallNormal,
	}, r)
}

func TestDiagnose_Baseline(t *testing.T) {
	engine := NewEngine(DefaultThresholds(), TerminologyLate)

	tests := []struct {
		baseline float64
		want     string
	}{
		{109.9, BaselineBradycardia},
		{110, BaselineNormal},
		{160, BaselineNormal},
		{160.1, BaselineTachycardia},
	}

	for _, tt := range tests {
		f := healthy()
		f.Baseline = tt.baseline
		assert.Equal(t, tt.want, engine.Diagnose(f).BaselineStatus, "baseline %.1f", tt.baseline)
	}
}

func TestDiagnose_VariabilityOrder(t *testing.T) {
	engine := NewEngine(DefaultThresholds(), TerminologyLate)

	tests := []struct {
		name string
		stv  float64
		ltv  float64
		want string
	}{
		{"low stv wins over high ltv", 3, 40, VariabilityLow},
		{"high stv wins over low ltv", 25, 2, VariabilityHighSTV},
		{"low ltv", 10, 5, VariabilityLow},
		{"high ltv", 10, 30, VariabilityHighLTV},
		{"boundaries are good", 5, 10, VariabilityGood},
		{"upper boundaries are good", 20, 25, VariabilityGood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := healthy()
			f.STV = tt.stv
			f.LTV = tt.ltv
			assert.Equal(t, tt.want, engine.Diagnose(f).VariabilityStatus)
		})
	}
}

func TestDiagnose_Accelerations(t *testing.T) {
	engine := NewEngine(DefaultThresholds(), TerminologyLate)

	f := healthy()
	assert.Equal(t, AccelerationsNormal, engine.Diagnose(f).AccelerationStatus)

	f.HasLateAccelerations = true
	assert.Equal(t, AccelerationsLateConcern, engine.Diagnose(f).AccelerationStatus)

	f.HasAccelerations = false
	f.HasLateAccelerations = false
	assert.Equal(t, AccelerationsAbsent, engine.Diagnose(f).AccelerationStatus)
}

func TestDiagnose_Decelerations(t *testing.T) {
	tests := []struct {
		name  string
		term  Terminology
		early bool
		late  bool
		want  string
	}{
		{"early wins", TerminologyLate, true, true, DecelerationsEarly},
		{"late", TerminologyLate, false, true, DecelerationsLate},
		{"variable terminology", TerminologyVariable, false, true, DecelerationsVariable},
		{"unclassified", TerminologyLate, false, false, DecelerationsConcerning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := healthy()
			f.HasDecelerations = true
			f.HasEarlyDecelerations = tt.early
			f.HasLateDecelerations = tt.late

			assert.Equal(t, tt.want, NewEngine(DefaultThresholds(), tt.term).Diagnose(f).DecelerationStatus)
		})
	}
}

func TestDiagnose_OverallCounts(t *testing.T) {
	engine := NewEngine(DefaultThresholds(), TerminologyLate)

	f := healthy()
	f.HasDecelerations = true
	f.HasEarlyDecelerations = true
	assert.Equal(t, OverallMild, engine.Diagnose(f).Overall)

	f.Baseline = 100
	assert.Equal(t, OverallModerate, engine.Diagnose(f).Overall)

	f.STV = 2
	assert.Equal(t, OverallModerate, engine.Diagnose(f).Overall)

	f.HasLateAccelerations = true
	r := engine.Diagnose(f)
	assert.Equal(t, 4, r.Concerns())
	assert.Equal(t, OverallSignificant, r.Overall)
}

func TestDiagnose_HighVariabilityIsNotConcern(t *testing.T) {
	f := healthy()
	f.STV = 30

	r := NewEngine(DefaultThresholds(), TerminologyLate).Diagnose(f)
	assert.Equal(t, VariabilityHighSTV, r.VariabilityStatus)
	assert.Equal(t, OverallNormal, r.Overall)
}

func TestOverall(t *testing.T) {
	assert.Equal(t, OverallNormal, Overall(0))
	assert.Equal(t, OverallMild, Overall(1))
	assert.Equal(t, OverallModerate, Overall(2))
	assert.Equal(t, OverallModerate, Overall(3))
	assert.Equal(t, OverallSignificant, Overall(4))
}

func TestParseTerminology(t *testing.T) {
	term, err := ParseTerminology("")
	require.NoError(t, err)
	assert.Equal(t, TerminologyLate, term)

	term, err = ParseTerminology("variable")
	require.NoError(t, err)
	assert.Equal(t, TerminologyVariable, term)

	_, err = ParseTerminology("prolonged")
	assert.Error(t, err)
}

func TestThresholds_Validate(t *testing.T) {
	require.NoError(t, DefaultThresholds().Validate())

	th := DefaultThresholds()
	th.STVLow = 30
	assert.Error(t, th.Validate())

	th = DefaultThresholds()
	th.Tachycardia = 100
	assert.Error(t, th.Validate())
}
