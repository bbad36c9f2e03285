package headless

import (
	"bytes"

	"github.com/openlawindex/harvester/internal/fetch"
)

// Detector decides when a fast-path response is really a bot-challenge
// page that needs a browser render.
type Detector struct {
	// MinBodyBytes: successful listing pages are never this small.
	MinBodyBytes int
}

// NewDetector builds a detector. A zero threshold defaults to 2048 bytes.
func NewDetector(minBodyBytes int) *Detector {
	if minBodyBytes == 0 {
		minBodyBytes = 2048
	}
	return &Detector{MinBodyBytes: minBodyBytes}
}

var challengeMarkers = [][]byte{
	[]byte("cf-browser-verification"),
	[]byte("cf-challenge"),
	[]byte("__cf_chl"),
	[]byte("checking your browser"),
	[]byte("attention required!"),
	[]byte("enable javascript and cookies"),
	[]byte("just a moment..."),
}

// ShouldPromote reports whether the response warrants a headless render.
func (d *Detector) ShouldPromote(resp fetch.Response) bool {
	if resp.StatusCode == 403 || resp.StatusCode == 503 {
		return true
	}
	if resp.StatusCode != 200 {
		return false
	}
	if len(resp.Body) == 0 {
		return true
	}
	lower := bytes.ToLower(resp.Body)
	for _, marker := range challengeMarkers {
		if bytes.Contains(lower, marker) {
			return true
		}
	}
	return len(resp.Body) < d.MinBodyBytes
}
