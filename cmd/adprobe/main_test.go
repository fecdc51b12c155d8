package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salaryrace/salaryrace-go/internal/config"
	"github.com/salaryrace/salaryrace-go/internal/domain"
)

func TestOriginOf(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "http://localhost:8080/compare/alice-vs-bob-Ab12Cd", want: "http://localhost:8080"},
		{in: "https://salaryrace.example/compare/x?y=1", want: "https://salaryrace.example"},
		{in: "/compare/x", wantErr: true},
		{in: "::", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := originOf(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadSlots_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ads.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`slots:
  - name: top
    network: adsense
    client_id: ca-pub-1
    slot_id: "2"
`), 0o644))

	slots, err := loadSlots(config.Config{}, path)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, domain.NetworkAdSense, slots[0].Network)
	assert.Equal(t, "ca-pub-1", slots[0].ClientID)
}

func TestLoadSlots_FromConfig(t *testing.T) {
	slots, err := loadSlots(config.Config{AdSenseClient: "ca-pub-1"}, "")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.True(t, slots[0].Configured())
	assert.False(t, slots[1].Configured())
}
