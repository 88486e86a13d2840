package admission

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"chainsync/internal/featureflag"
)

func noopHandler() http.Handler {
	return http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
}

func TestRegistryRejectsDuplicatePattern(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register("/healthz", noopHandler()))
	require.Error(t, registry.Register("/healthz", noopHandler()))
	require.Error(t, registry.RegisterGated("/healthz", noopHandler(), featureflag.FlagAI))
}

func TestRegistryResolveIsPureOverSnapshots(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.RegisterGated("/api/ai/chat", noopHandler(), featureflag.FlagAI))

	closed := featureflag.Snapshot{}
	open := featureflag.Snapshot{featureflag.FlagAI: {Name: featureflag.FlagAI, Enabled: true}}

	// Same table, different snapshots: resolution flips with no registry
	// mutation in between.
	_, found, gated := registry.Resolve("/api/ai/chat", closed)
	require.False(t, found)
	require.True(t, gated)

	handler, found, gated := registry.Resolve("/api/ai/chat", open)
	require.True(t, found)
	require.False(t, gated)
	require.NotNil(t, handler)

	_, found, gated = registry.Resolve("/api/ai/chat", closed)
	require.False(t, found)
	require.True(t, gated)
}

func TestRegistryUnknownPathIsNotGated(t *testing.T) {
	registry := NewRegistry()
	_, found, gated := registry.Resolve("/never/registered", featureflag.Snapshot{})
	require.False(t, found)
	require.False(t, gated)
}

func TestRegistryAlwaysOnRouteIgnoresFlags(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register("/healthz", noopHandler()))

	_, found, gated := registry.Resolve("/healthz", featureflag.Snapshot{})
	require.True(t, found)
	require.False(t, gated)
}
