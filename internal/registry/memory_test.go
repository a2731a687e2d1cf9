package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slide2pdf/internal/model"
)

func testArtifact(t *testing.T, id string) model.Artifact {
	t.Helper()
	path := filepath.Join(t.TempDir(), id+".pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	return model.Artifact{
		ID:          id,
		Kind:        model.ArtifactDownload,
		Path:        path,
		DisplayName: "deck.pdf",
		ContentType: "application/pdf",
		CreatedAt:   time.Now(),
	}
}

func TestMemoryRegistryClaimIsOneTime(t *testing.T) {
	reg := NewMemoryRegistry(time.Minute)
	defer reg.Close()

	art := testArtifact(t, "a1")
	require.NoError(t, reg.Put(context.Background(), art))

	claimed, err := reg.Claim(context.Background(), model.ArtifactDownload, "a1")
	require.NoError(t, err)
	assert.Equal(t, art.Path, claimed.Path)
	assert.Equal(t, "deck.pdf", claimed.DisplayName)

	_, err = reg.Claim(context.Background(), model.ArtifactDownload, "a1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRegistryKindsAreSeparate(t *testing.T) {
	reg := NewMemoryRegistry(time.Minute)
	defer reg.Close()

	art := testArtifact(t, "a1")
	require.NoError(t, reg.Put(context.Background(), art))

	_, err := reg.Claim(context.Background(), model.ArtifactPreview, "a1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = reg.Claim(context.Background(), model.ArtifactDownload, "a1")
	assert.NoError(t, err)
}

func TestMemoryRegistryEvictsAfterTTL(t *testing.T) {
	reg := NewMemoryRegistry(30 * time.Millisecond)
	defer reg.Close()

	art := testArtifact(t, "a1")
	require.NoError(t, reg.Put(context.Background(), art))

	assert.Eventually(t, func() bool {
		_, err := reg.Claim(context.Background(), model.ArtifactDownload, "a1")
		return err == ErrNotFound
	}, time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		_, err := os.Stat(art.Path)
		return os.IsNotExist(err)
	}, time.Second, 10*time.Millisecond, "eviction should unlink the artifact file")
}

func TestMemoryRegistryClaimStopsEviction(t *testing.T) {
	reg := NewMemoryRegistry(30 * time.Millisecond)
	defer reg.Close()

	art := testArtifact(t, "a1")
	require.NoError(t, reg.Put(context.Background(), art))

	claimed, err := reg.Claim(context.Background(), model.ArtifactDownload, "a1")
	require.NoError(t, err)

	time.Sleep(80 * time.Millisecond)
	_, err = os.Stat(claimed.Path)
	assert.NoError(t, err, "claimed file must survive until the caller deletes it")
}
