package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suyashkumar/dicom/pkg/tag"
)

func TestDefaultConfig_Valid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dicomstack.yaml")
	content := `
log:
  level: debug
load:
  order_by_slice_location: false
  max_volume_size: 2GB
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Log.MaxSizeMB)
	assert.False(t, cfg.Load.OrderBySliceLocation)
	assert.Equal(t, "SliceLocation", cfg.Load.PrimaryKey)
	assert.Equal(t, []string{".dcm"}, cfg.Load.Extensions)
	assert.Equal(t, "gray", cfg.Export.Colormap)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log: [unclosed"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cfg.yaml")

	cfg := DefaultConfig()
	cfg.Log.File = "/var/log/dicomstack.log"
	cfg.Load.Extensions = []string{".dcm", ".ima"}
	cfg.Export.Colormap = "bone"
	cfg.Export.Scale = 3

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "upper-case level", mutate: func(c *Config) { c.Log.Level = "WARN" }},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "verbose" }, wantErr: true},
		{name: "negative rotation", mutate: func(c *Config) { c.Log.MaxBackups = -1 }, wantErr: true},
		{name: "unknown primary key", mutate: func(c *Config) { c.Load.PrimaryKey = "SliceLocaton" }, wantErr: true},
		{name: "unknown fallback key", mutate: func(c *Config) { c.Load.FallbackKey = "PatientName" }, wantErr: true},
		{name: "same keys", mutate: func(c *Config) { c.Load.FallbackKey = "slicelocation" }, wantErr: true},
		{name: "temporal key", mutate: func(c *Config) { c.Load.PrimaryKey = "TriggerTime" }},
		{name: "bad size", mutate: func(c *Config) { c.Load.MaxVolumeSize = "lots" }, wantErr: true},
		{name: "zero scale", mutate: func(c *Config) { c.Export.Scale = 0 }, wantErr: true},
		{name: "zero step", mutate: func(c *Config) { c.Export.StepMS = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToLoadOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Load.OrderBySliceLocation = false
	cfg.Load.MaxVolumeSize = "1MB"
	cfg.Load.PrimaryKey = "TriggerTime"

	opts, err := cfg.ToLoadOptions(nil)
	require.NoError(t, err)
	assert.True(t, opts.PreferFallbackKey)
	assert.Equal(t, tag.TriggerTime, opts.PrimaryKey)
	assert.Equal(t, tag.InstanceNumber, opts.FallbackKey)
	assert.Equal(t, int64(1<<20), opts.MaxVolumeBytes)
	assert.Equal(t, []string{".dcm"}, opts.Extensions)
	assert.Nil(t, opts.Logger)
}
