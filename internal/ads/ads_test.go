package ads

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salaryrace/salaryrace-go/internal/domain"
)

func TestAdSense_ScriptURL(t *testing.T) {
	s := AdSense("ca-pub-123", "456")
	assert.True(t, s.Configured())
	assert.Equal(t, "https://pagead2.googlesyndication.com/pagead/js/adsbygoogle.js?client=ca-pub-123", s.ScriptURL())
	assert.Equal(t, "adsense-container", s.ContainerID())
	assert.Equal(t, "ins.adsbygoogle", s.AdSelector)
	assert.Equal(t, "script[data-ads-client]", s.ScriptSelector)
}

func TestCarbon_ScriptURL(t *testing.T) {
	s := Carbon("CEAI", "salaryrace")
	assert.Equal(t, "https://cdn.carbonads.com/carbon.js?placement=salaryrace&serve=CEAI", s.ScriptURL())
	assert.Equal(t, "#carbon-container", s.ContainerSelector)
	assert.Equal(t, "#carbonads", s.AdSelector)
}

func TestSlot_NotConfigured(t *testing.T) {
	assert.False(t, AdSense("", "1").Configured())
	assert.False(t, Carbon("", "x").Configured())
	assert.Empty(t, Carbon("", "x").ScriptURL())
	assert.False(t, Slot{Network: "other"}.Configured())
}

func TestParseSlots(t *testing.T) {
	data := []byte(`
slots:
  - name: sidebar
    network: carbon
    serve: CEAI
    placement: sidebar
  - network: adsense
    client_id: ca-pub-1
    slot_id: "99"
    container_selector: "#top"
`)
	slots, err := ParseSlots(data)
	require.NoError(t, err)
	require.Len(t, slots, 2)

	assert.Equal(t, "sidebar", slots[0].Name)
	assert.Equal(t, domain.NetworkCarbon, slots[0].Network)
	assert.Equal(t, "#carbonads", slots[0].AdSelector)

	assert.Equal(t, "adsense", slots[1].Name)
	assert.Equal(t, "#top", slots[1].ContainerSelector)
	assert.Equal(t, "99", slots[1].SlotID)
}

func TestParseSlots_UnknownNetwork(t *testing.T) {
	_, err := ParseSlots([]byte("slots:\n  - name: x\n    network: banner\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown network")
}

func TestLoadSlots_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.yaml")
	require.NoError(t, os.WriteFile(path, []byte("slots:\n  - network: carbon\n    serve: S\n"), 0o600))

	slots, err := LoadSlots(path)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.True(t, slots[0].Configured())

	_, err = LoadSlots(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSlot_Refresh(t *testing.T) {
	s := Carbon("CEAI", "salaryrace")
	_, ok := s.Refresh()
	assert.False(t, ok)

	s.RefreshInterval = 45 * time.Second
	every, ok := s.Refresh()
	assert.True(t, ok)
	assert.Equal(t, 45*time.Second, every)

	unconfigured := Carbon("", "")
	unconfigured.RefreshInterval = time.Minute
	_, ok = unconfigured.Refresh()
	assert.False(t, ok)

	adsense := AdSense("ca-pub-1", "2")
	adsense.RefreshInterval = time.Minute
	_, ok = adsense.Refresh()
	assert.False(t, ok, "only carbon slots reload")
}

func TestParseSlots_RefreshInterval(t *testing.T) {
	slots, err := ParseSlots([]byte("slots:\n  - network: carbon\n    serve: S\n    refresh_interval: 90s\n"))
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, 90*time.Second, slots[0].RefreshInterval)

	_, err = ParseSlots([]byte("slots:\n  - network: carbon\n    serve: S\n    refresh_interval: -5s\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative refresh_interval")
}
