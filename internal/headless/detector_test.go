package headless

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openlawindex/harvester/internal/fetch"
)

func fullPage() []byte {
	return []byte("<html><body>" + strings.Repeat("<p>opinion listing row</p>", 200) + "</body></html>")
}

func TestShouldPromoteChallengeStatuses(t *testing.T) {
	t.Parallel()

	d := NewDetector(0)
	require.True(t, d.ShouldPromote(fetch.Response{StatusCode: 403, Body: fullPage()}))
	require.True(t, d.ShouldPromote(fetch.Response{StatusCode: 503, Body: fullPage()}))
}

func TestShouldPromoteChallengeMarkers(t *testing.T) {
	t.Parallel()

	d := NewDetector(0)
	body := append(fullPage(), []byte(`<div id="cf-browser-verification"></div>`)...)
	require.True(t, d.ShouldPromote(fetch.Response{StatusCode: 200, Body: body}))

	body = append(fullPage(), []byte("<title>Just a Moment...</title>")...)
	require.True(t, d.ShouldPromote(fetch.Response{StatusCode: 200, Body: body}))
}

func TestShouldPromoteTinyOrEmptyBody(t *testing.T) {
	t.Parallel()

	d := NewDetector(0)
	require.True(t, d.ShouldPromote(fetch.Response{StatusCode: 200}))
	require.True(t, d.ShouldPromote(fetch.Response{StatusCode: 200, Body: []byte("<html></html>")}))
}

func TestShouldNotPromoteHealthyPage(t *testing.T) {
	t.Parallel()

	d := NewDetector(0)
	require.False(t, d.ShouldPromote(fetch.Response{StatusCode: 200, Body: fullPage()}))
}

func TestShouldNotPromoteOtherErrors(t *testing.T) {
	t.Parallel()

	d := NewDetector(0)
	require.False(t, d.ShouldPromote(fetch.Response{StatusCode: 404}))
	require.False(t, d.ShouldPromote(fetch.Response{StatusCode: 500}))
}
