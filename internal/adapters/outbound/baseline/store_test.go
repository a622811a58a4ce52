package baseline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/designlens/designlens/internal/domain"
)

var vp = domain.Viewport{Width: 1280, Height: 800}

func TestLoad_MissingBaseline(t *testing.T) {
	store := New(t.TempDir())
	b, err := store.Load("card", vp)
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestCreate_WritesImageAndMetadata(t *testing.T) {
	root := t.TempDir()
	store := New(root)

	created, err := store.Create(domain.Baseline{
		ViewID:     "card",
		Viewport:   vp,
		Image:      []byte("png-bytes"),
		CapturedAt: time.Now(),
		CommitHash: "abc123",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "baselines", "card", "1280x800.png"), created.ImagePath)

	_, err = os.Stat(filepath.Join(root, "baselines", "card", "1280x800.json"))
	require.NoError(t, err)

	loaded, err := store.Load("card", vp)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, []byte("png-bytes"), loaded.Image)
	assert.Equal(t, "abc123", loaded.CommitHash)
}

func TestCreate_RefusesExistingBaseline(t *testing.T) {
	store := New(t.TempDir())

	_, err := store.Create(domain.Baseline{ViewID: "card", Viewport: vp, Image: []byte("v1")})
	require.NoError(t, err)

	_, err = store.Create(domain.Baseline{ViewID: "card", Viewport: vp, Image: []byte("v2")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	// The original image is untouched.
	loaded, err := store.Load("card", vp)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), loaded.Image)
}

func TestAccept_ReplacesAndStamps(t *testing.T) {
	store := New(t.TempDir())

	_, err := store.Create(domain.Baseline{ViewID: "card", Viewport: vp, Image: []byte("v1")})
	require.NoError(t, err)

	accepted, err := store.Accept(domain.Baseline{
		ViewID:     "card",
		Viewport:   vp,
		Image:      []byte("v2"),
		AcceptedBy: "reviewer",
	})
	require.NoError(t, err)
	assert.False(t, accepted.AcceptedAt.IsZero())

	loaded, err := store.Load("card", vp)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), loaded.Image)
	assert.Equal(t, "reviewer", loaded.AcceptedBy)
}

func TestList_SortedByView(t *testing.T) {
	store := New(t.TempDir())

	baselines, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, baselines)

	for _, id := range []string{"home", "card"} {
		_, err := store.Create(domain.Baseline{ViewID: id, Viewport: vp, Image: []byte("x")})
		require.NoError(t, err)
	}
	_, err = store.Create(domain.Baseline{
		ViewID: "card", Viewport: domain.Viewport{Width: 375, Height: 667}, Image: []byte("x"),
	})
	require.NoError(t, err)

	baselines, err = store.List()
	require.NoError(t, err)
	require.Len(t, baselines, 3)
	assert.Equal(t, "card", baselines[0].ViewID)
	assert.Equal(t, "card", baselines[1].ViewID)
	assert.Equal(t, "home", baselines[2].ViewID)
}
