package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyConfig_AllDefaults(t *testing.T) {
	cfg := EmptyConfig()

	assert.Equal(t, 10.0, cfg.GetTargetFPS())
	assert.Equal(t, 5.0, cfg.GetClipPreEventSec())
	assert.Equal(t, 5.0, cfg.GetClipPostEventSec())
	assert.Equal(t, "reports", cfg.GetReportDir())
	assert.Equal(t, "uploads", cfg.GetUploadDir())
	assert.Equal(t, 0.30, cfg.GetIOUThreshold())
	assert.Equal(t, 1200.0, cfg.GetToleranceMs())
	assert.Equal(t, 10, cfg.GetBins())
}

func TestLoadConfig_PartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dms.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"target_fps": 15.0, "bins": 20}`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 15.0, cfg.GetTargetFPS())
	assert.Equal(t, 20, cfg.GetBins())
	// Everything else still falls back to defaults.
	assert.Equal(t, 5.0, cfg.GetClipPreEventSec())
	assert.Equal(t, 0.30, cfg.GetIOUThreshold())
}

func TestLoadConfig_RejectsNonJSONExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, ".json extension")
}

func TestLoadConfig_RejectsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dms.json")
	big := make([]byte, 2*1024*1024)
	for i := range big {
		big[i] = ' '
	}
	require.NoError(t, os.WriteFile(path, big, 0o644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "too large")
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dms.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"iou_threshold": 1.5}`), 0o644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"zero fps rejected", Config{TargetFPS: ptrFloat64(0)}, true},
		{"negative pre-event rejected", Config{ClipPreEventSec: ptrFloat64(-1)}, true},
		{"negative post-event rejected", Config{ClipPostEventSec: ptrFloat64(-1)}, true},
		{"iou above one rejected", Config{IOUThreshold: ptrFloat64(1.1)}, true},
		{"negative tolerance rejected", Config{ToleranceMs: ptrFloat64(-1)}, true},
		{"zero bins rejected", Config{Bins: ptrInt(0)}, true},
		{"valid config accepted", Config{TargetFPS: ptrFloat64(10), Bins: ptrInt(5)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMerge_OverlaysOnlySetFields(t *testing.T) {
	base := &Config{
		TargetFPS: ptrFloat64(10),
		Bins:      ptrInt(10),
	}
	override := &Config{
		Bins: ptrInt(25),
	}

	merged := base.Merge(override)

	assert.Equal(t, 10.0, merged.GetTargetFPS(), "unset override field keeps base value")
	assert.Equal(t, 25, merged.GetBins(), "set override field wins")
}

func TestMerge_NilOverrideIsNoop(t *testing.T) {
	base := &Config{TargetFPS: ptrFloat64(12)}
	merged := base.Merge(nil)
	assert.Equal(t, 12.0, merged.GetTargetFPS())
}

func TestRegisterEvaluationFlags_DefaultsFromBase(t *testing.T) {
	base := &Config{
		IOUThreshold: ptrFloat64(0.5),
		ToleranceMs:  ptrFloat64(900),
		Bins:         ptrInt(8),
	}
	fs := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	flags := RegisterEvaluationFlags(fs, base)

	require.NoError(t, fs.Parse([]string{"--iou", "0.7"}))

	resolved := flags.Resolve()
	assert.Equal(t, 0.7, *resolved.IOUThreshold, "flag override applied")
	assert.Equal(t, 900.0, *resolved.ToleranceMs, "unset flag retains base default")
	assert.Equal(t, 8, *resolved.Bins, "unset flag retains base default")
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
