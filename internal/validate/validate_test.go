package validate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openlawindex/harvester/internal/corpus"
	"github.com/openlawindex/harvester/internal/fetch"
)

type fakeProber struct {
	responses map[string]fetch.Response
	errs      map[string]error
	calls     map[string]int
}

func newFakeProber() *fakeProber {
	return &fakeProber{
		responses: make(map[string]fetch.Response),
		errs:      make(map[string]error),
		calls:     make(map[string]int),
	}
}

func (f *fakeProber) Head(_ context.Context, url string) (fetch.Response, error) {
	f.calls[url]++
	if err, ok := f.errs[url]; ok {
		return fetch.Response{}, err
	}
	return f.responses[url], nil
}

func TestExistsRequiresHTMLAnd2xx(t *testing.T) {
	t.Parallel()

	probe := newFakeProber()
	probe.responses["https://x/html"] = fetch.Response{StatusCode: 200, ContentType: "text/html; charset=utf-8"}
	probe.responses["https://x/pdf"] = fetch.Response{StatusCode: 200, ContentType: "application/pdf"}
	probe.responses["https://x/gone"] = fetch.Response{StatusCode: 404, ContentType: "text/html"}

	v := New(probe, nil, zap.NewNop())
	ctx := context.Background()

	require.True(t, v.Exists(ctx, "https://x/html"))
	require.False(t, v.Exists(ctx, "https://x/pdf"))
	require.False(t, v.Exists(ctx, "https://x/gone"))
}

func TestExistsTransportFailureIsAbsentNotFatal(t *testing.T) {
	t.Parallel()

	probe := newFakeProber()
	probe.errs["https://x/down"] = errors.New("connect: connection refused")

	v := New(probe, nil, zap.NewNop())
	require.False(t, v.Exists(context.Background(), "https://x/down"))
}

func TestExistsCachesWithinRun(t *testing.T) {
	t.Parallel()

	probe := newFakeProber()
	probe.responses["https://x/html"] = fetch.Response{StatusCode: 200, ContentType: "text/html"}
	probe.errs["https://x/down"] = errors.New("timeout")

	v := New(probe, nil, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.True(t, v.Exists(ctx, "https://x/html"))
		require.False(t, v.Exists(ctx, "https://x/down"))
	}
	require.Equal(t, 1, probe.calls["https://x/html"])
	require.Equal(t, 1, probe.calls["https://x/down"])
}

func TestValidateSkipsConfiguredFamilies(t *testing.T) {
	t.Parallel()

	probe := newFakeProber()
	v := New(probe, []corpus.ResourceType{corpus.ResourceConstitution}, zap.NewNop())

	ok := v.Validate(context.Background(), corpus.CandidateURL{
		URL:    "https://x/constitution/demo/",
		Family: corpus.ResourceConstitution,
	})
	require.True(t, ok)
	require.Empty(t, probe.calls)

	// Non-skipped families still probe.
	probe.responses["https://x/codes/demo/title-9/"] = fetch.Response{StatusCode: 404}
	ok = v.Validate(context.Background(), corpus.CandidateURL{
		URL:    "https://x/codes/demo/title-9/",
		Family: corpus.ResourceStatuteTitle,
	})
	require.False(t, ok)
	require.Equal(t, 1, probe.calls["https://x/codes/demo/title-9/"])
}
