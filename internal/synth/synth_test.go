package synth

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Krimson/ctg-analyzer/internal/detect"
	"github.com/Krimson/ctg-analyzer/internal/signal"
)

func twoMinutes(seed int64) Config {
	cfg := DefaultConfig()
	cfg.Duration = 2 * time.Minute
	cfg.Seed = seed
	return cfg
}

func TestGenerate_Shape(t *testing.T) {
	series, err := Generate(twoMinutes(1))
	require.NoError(t, err)

	require.Equal(t, 480, series.Len())
	assert.Equal(t, 0.0, series.Time[0])
	assert.Equal(t, 0.25, series.Time[1])
	assert.Equal(t, 119.75, series.Time[479])

	for i, v := range series.FHR {
		assert.GreaterOrEqual(t, v, 135.0, "sample %d", i)
		assert.LessOrEqual(t, v, 145.0, "sample %d", i)
	}

	// Одно сокращение: 10..55 с, плато 25..40 с
	assert.Equal(t, 10.0, series.UC[0])
	assert.Equal(t, 90.0, series.UC[30*4])
	assert.Equal(t, 10.0, series.UC[60*4])
}

func TestGenerate_Deterministic(t *testing.T) {
	first, err := Generate(twoMinutes(7))
	require.NoError(t, err)
	second, err := Generate(twoMinutes(7))
	require.NoError(t, err)
	other, err := Generate(twoMinutes(8))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first.FHR, other.FHR)
}

func TestGenerate_LateDeceleration(t *testing.T) {
	cfg := twoMinutes(42)
	cfg.Deceleration.Enabled = true

	series, err := Generate(cfg)
	require.NoError(t, err)

	contractions := detect.ExtractContractions(series.Time, series.UC)
	require.Len(t, contractions, 1)
	assert.Equal(t, 25.0, contractions[0].Peak)

	events := detect.NewDetector(detect.DefaultConfig()).Detect(series.Time, series.FHR, contractions)
	require.Len(t, events.Decelerations, 1)
	assert.Len(t, events.LateDecelerations, 1)
	assert.Empty(t, events.EarlyDecelerations)
	assert.Empty(t, events.Accelerations)
	assert.Greater(t, events.Decelerations[0].Start, contractions[0].Peak)
}

func TestGenerate_Dropout(t *testing.T) {
	cfg := twoMinutes(3)
	cfg.FHR.DropoutRate = 0.1

	series, err := Generate(cfg)
	require.NoError(t, err)

	zeros := 0
	for _, v := range series.FHR {
		if v == 0 {
			zeros++
		}
	}
	assert.Greater(t, zeros, 0)

	cleaned, filled := signal.FillZeroFHR(series)
	assert.Equal(t, zeros, filled)
	for _, v := range cleaned.FHR {
		assert.Greater(t, v, 0.0)
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.SampleRate = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.TOCO.MinContractionInterval = 10 * time.Second
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.FHR.DropoutRate = 1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	_, err := Generate(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestWriteCSV_ParsesBack(t *testing.T) {
	series, err := Generate(twoMinutes(5))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, series))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("time,FHR,UC\n0,")))

	parsed, err := signal.Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, series, parsed)
}

func TestWriteCSV_LengthMismatch(t *testing.T) {
	err := WriteCSV(&bytes.Buffer{}, signal.Series{Time: []float64{0, 1}, FHR: []float64{140}, UC: []float64{10, 10}})
	assert.Error(t, err)
}
