package domain

// EventType names an analytics event. The analytics endpoint accepts any
// non-empty type; these are the ones emitted by the service itself.
type EventType string

const (
	EventAdImpression    EventType = "ad-impression"
	EventAdBlockDetected EventType = "ad-block-detected"
	EventComparisonView  EventType = "comparison-view"
	EventShare           EventType = "share"
)

// AdNetwork identifies the third-party network behind an ad slot.
type AdNetwork string

const (
	NetworkAdSense AdNetwork = "adsense"
	NetworkCarbon  AdNetwork = "carbon"
)

func (n AdNetwork) Valid() bool {
	switch n {
	case NetworkAdSense, NetworkCarbon:
		return true
	}
	return false
}
