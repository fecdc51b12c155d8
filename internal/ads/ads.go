// Package ads defines the AdSense and Carbon slots shown on a comparison page.
package ads

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/salaryrace/salaryrace-go/internal/domain"
)

// FallbackText is shown in place of an ad that is blocked or not configured.
const FallbackText = "Ad slot blocked or not available"

const (
	adsenseScript = "https://pagead2.googlesyndication.com/pagead/js/adsbygoogle.js"
	carbonScript  = "https://cdn.carbonads.com/carbon.js"
)

// Slot is a single ad placement.
type Slot struct {
	Name      string           `yaml:"name" json:"name"`
	Network   domain.AdNetwork `yaml:"network" json:"network"`
	ClientID  string           `yaml:"client_id,omitempty" json:"clientId,omitempty"`
	SlotID    string           `yaml:"slot_id,omitempty" json:"slotId,omitempty"`
	Serve     string           `yaml:"serve,omitempty" json:"serve,omitempty"`
	Placement string           `yaml:"placement,omitempty" json:"placement,omitempty"`
	// RefreshInterval re-injects the loader script periodically. Zero disables
	// refreshing. Only Carbon slots honour it.
	RefreshInterval time.Duration `yaml:"refresh_interval,omitempty" json:"refreshInterval,omitempty"`

	ContainerSelector string `yaml:"container_selector,omitempty" json:"containerSelector,omitempty"`
	ScriptSelector    string `yaml:"script_selector,omitempty" json:"scriptSelector,omitempty"`
	AdSelector        string `yaml:"ad_selector,omitempty" json:"adSelector,omitempty"`
}

// AdSense returns an AdSense slot with the default selectors.
func AdSense(clientID, slotID string) Slot {
	return Slot{
		Name:     "adsense",
		Network:  domain.NetworkAdSense,
		ClientID: clientID,
		SlotID:   slotID,
	}.WithDefaults()
}

// Carbon returns a Carbon slot with the default selectors.
func Carbon(serve, placement string) Slot {
	return Slot{
		Name:      "carbon",
		Network:   domain.NetworkCarbon,
		Serve:     serve,
		Placement: placement,
	}.WithDefaults()
}

// Refresh returns whether the page should periodically reload the slot,
// and how often.
func (s Slot) Refresh() (time.Duration, bool) {
	if s.Network != domain.NetworkCarbon || !s.Configured() || s.RefreshInterval <= 0 {
		return 0, false
	}
	return s.RefreshInterval, true
}

// WithDefaults fills empty selectors with the network defaults.
func (s Slot) WithDefaults() Slot {
	switch s.Network {
	case domain.NetworkAdSense:
		s.ContainerSelector = or(s.ContainerSelector, "#adsense-container")
		s.ScriptSelector = or(s.ScriptSelector, "script[data-ads-client]")
		s.AdSelector = or(s.AdSelector, "ins.adsbygoogle")
	case domain.NetworkCarbon:
		s.ContainerSelector = or(s.ContainerSelector, "#carbon-container")
		s.ScriptSelector = or(s.ScriptSelector, "script#_carbonads_js")
		s.AdSelector = or(s.AdSelector, "#carbonads")
	}
	if s.Name == "" {
		s.Name = string(s.Network)
	}
	return s
}

// Configured reports whether the slot has the ids its network needs.
func (s Slot) Configured() bool {
	switch s.Network {
	case domain.NetworkAdSense:
		return s.ClientID != ""
	case domain.NetworkCarbon:
		return s.Serve != ""
	}
	return false
}

// ScriptURL returns the loader script URL, or "" when the slot is not configured.
func (s Slot) ScriptURL() string {
	if !s.Configured() {
		return ""
	}
	q := url.Values{}
	switch s.Network {
	case domain.NetworkAdSense:
		q.Set("client", s.ClientID)
		return adsenseScript + "?" + q.Encode()
	case domain.NetworkCarbon:
		q.Set("serve", s.Serve)
		if s.Placement != "" {
			q.Set("placement", s.Placement)
		}
		return carbonScript + "?" + q.Encode()
	}
	return ""
}

// ContainerID is the container selector without its leading '#'.
func (s Slot) ContainerID() string {
	if len(s.ContainerSelector) > 1 && s.ContainerSelector[0] == '#' {
		return s.ContainerSelector[1:]
	}
	return s.ContainerSelector
}

// Validate checks that the slot names a known network.
func (s Slot) Validate() error {
	if !s.Network.Valid() {
		return fmt.Errorf("ads: slot %q: unknown network %q", s.Name, s.Network)
	}
	if s.RefreshInterval < 0 {
		return fmt.Errorf("ads: slot %q: negative refresh_interval", s.Name)
	}
	if s.ContainerSelector == "" || s.AdSelector == "" || s.ScriptSelector == "" {
		return fmt.Errorf("ads: slot %q: missing selectors", s.Name)
	}
	return nil
}

// File is the YAML layout read by LoadSlots.
type File struct {
	Slots []Slot `yaml:"slots"`
}

// LoadSlots reads slot definitions from a YAML file.
func LoadSlots(path string) ([]Slot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ads: read %s: %w", path, err)
	}
	return ParseSlots(data)
}

// ParseSlots decodes slot definitions and applies network defaults.
func ParseSlots(data []byte) ([]Slot, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("ads: parse slots: %w", err)
	}
	slots := make([]Slot, 0, len(f.Slots))
	for _, s := range f.Slots {
		s = s.WithDefaults()
		if err := s.Validate(); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, nil
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
