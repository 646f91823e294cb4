package backend_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kiln/pkg/backend"
	"github.com/dmitrymomot/kiln/pkg/decode"
	"github.com/dmitrymomot/kiln/pkg/request"
	"github.com/dmitrymomot/kiln/pkg/secrets"
	"github.com/dmitrymomot/kiln/pkg/storage"
	"github.com/dmitrymomot/kiln/pkg/store"
)

func decodeString() decode.Decoder[string] {
	return decode.String()
}

func decodeField(name string) decode.Decoder[string] {
	return decode.Field(name, decode.String())
}

func TestReplay(t *testing.T) {
	t.Parallel()

	hit := call(t, "https://api.example.com/hit")
	replay := backend.NewReplay(store.Snapshot{hit.Fingerprint: `"cached"`})
	assert.Equal(t, 1, replay.Len())

	body, err := replay.Fetch(context.Background(), hit)
	require.NoError(t, err)
	assert.Equal(t, `"cached"`, body)

	miss := call(t, "https://api.example.com/miss")
	_, err = replay.Fetch(context.Background(), miss)
	require.ErrorIs(t, err, backend.ErrNotCached)
	assert.Contains(t, err.Error(), miss.Fingerprint)
}

func TestReplay_Resolve(t *testing.T) {
	t.Parallel()

	ac := request.AppContext{Type: request.Browser}
	name := request.Details{URL: "https://api.example.com/name"}
	replay := backend.NewReplay(store.Snapshot{request.Fingerprint(name): `"kiln"`})

	v, _, err := request.Resolve(context.Background(), ac, replay,
		request.Send(secrets.Plain(name), decodeString()))
	require.NoError(t, err)
	assert.Equal(t, "kiln", v)

	_, _, err = request.Resolve(context.Background(), ac, replay,
		request.Get(secrets.Plain("https://api.example.com/other"), decodeString()))
	require.ErrorIs(t, err, request.ErrMissingResponse)
	assert.ErrorIs(t, err, backend.ErrNotCached)
}

func TestLoadReplay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	c := call(t, "https://api.example.com/a")
	require.NoError(t, store.SaveSnapshot(ctx, local, "snapshot.json", store.Snapshot{c.Fingerprint: "{}"}))

	replay, err := backend.LoadReplay(ctx, local, "snapshot.json")
	require.NoError(t, err)
	body, err := replay.Fetch(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "{}", body)

	_, err = backend.LoadReplay(ctx, local, "absent.json")
	require.Error(t, err)
}
