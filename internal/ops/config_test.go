package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"journal": {"dir": "testdata/journal", "speed": 1},
		"strategy": {"name": "momentum", "options": "max_position=250;min_cents=5000"},
		"runtime": {"logSignals": true, "metricsEnabled": true, "sessionOpen": 1000, "sessionClose": 200000},
		"exchange": {"longSaleValidation": true}
	}`), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "testdata/journal", loaded.Playback.Dir)
	assert.Equal(t, 1.0, loaded.Playback.Speed)
	assert.Equal(t, "momentum", loaded.StrategyName)
	assert.Equal(t, int64(250), loaded.MomentumConfig.MaxPosition)
	assert.Equal(t, int64(5000), loaded.MomentumConfig.MinCents)
	assert.True(t, loaded.Runtime.MetricsEnabled)
	assert.Equal(t, int64(1000), loaded.Runtime.Session.Open)
	assert.True(t, loaded.Exchange.LongSaleValidation)
}

func TestResolveRejects(t *testing.T) {
	base := FileConfig{Journal: JournalConfig{Dir: "j"}}

	noDir := base
	noDir.Journal.Dir = ""
	_, err := Resolve(noDir)
	assert.Error(t, err)

	badStrategy := base
	badStrategy.Strategy.Name = "meanreversion"
	_, err = Resolve(badStrategy)
	assert.Error(t, err)

	badOptions := base
	badOptions.Strategy.Options = "max_position=lots"
	_, err = Resolve(badOptions)
	assert.Error(t, err)

	badSession := base
	badSession.Runtime.SessionOpen = 500
	badSession.Runtime.SessionClose = 400
	_, err = Resolve(badSession)
	assert.Error(t, err)
}

func TestResolveDefaults(t *testing.T) {
	loaded, err := Resolve(FileConfig{Journal: JournalConfig{Dir: "j"}})
	require.NoError(t, err)
	assert.Equal(t, "momentum", loaded.StrategyName)
	assert.Equal(t, int64(1000), loaded.MomentumConfig.MaxPosition)
}
