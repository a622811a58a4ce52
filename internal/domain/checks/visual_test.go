package checks

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/designlens/designlens/internal/domain"
)

// memBaselines is an in-memory BaselineStore for comparator tests.
type memBaselines struct {
	baselines map[string]*domain.Baseline
	creates   int
	accepts   int
}

func newMemBaselines() *memBaselines {
	return &memBaselines{baselines: map[string]*domain.Baseline{}}
}

func (m *memBaselines) key(viewID string, vp domain.Viewport) string {
	return viewID + "@" + vp.String()
}

func (m *memBaselines) Load(viewID string, vp domain.Viewport) (*domain.Baseline, error) {
	return m.baselines[m.key(viewID, vp)], nil
}

func (m *memBaselines) Create(b domain.Baseline) (*domain.Baseline, error) {
	m.creates++
	b.ImagePath = "mem://" + m.key(b.ViewID, b.Viewport)
	m.baselines[m.key(b.ViewID, b.Viewport)] = &b
	return &b, nil
}

func (m *memBaselines) Accept(b domain.Baseline) (*domain.Baseline, error) {
	m.accepts++
	m.baselines[m.key(b.ViewID, b.Viewport)] = &b
	return &b, nil
}

func (m *memBaselines) List() ([]domain.Baseline, error) { return nil, nil }

// solidPNG renders a WxH image filled with c, with the pixels in changed
// painted green.
func solidPNG(t *testing.T, w, h int, c color.RGBA, changed ...image.Point) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	for _, p := range changed {
		img.SetRGBA(p.X, p.Y, color.RGBA{G: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func visualCapture(t *testing.T, screenshot []byte) *domain.CaptureResult {
	t.Helper()
	return &domain.CaptureResult{
		ViewID:     "card",
		Viewport:   domain.Viewport{Width: 10, Height: 10},
		Screenshot: screenshot,
	}
}

var white = color.RGBA{255, 255, 255, 255}

func TestCompare_CreatesBaselineOnFirstRun(t *testing.T) {
	store := newMemBaselines()
	cmp := &Comparator{Store: store, Policy: domain.VisualPolicy{DiffThreshold: 0.01}}

	findings, err := cmp.Compare(visualCapture(t, solidPNG(t, 10, 10, white)))
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, domain.CheckVisualRegression, f.Check)
	assert.Equal(t, domain.SeverityInfo, f.Severity)
	assert.Equal(t, "baseline created", f.Message)
	assert.Equal(t, "mem://card@10x10", f.Locator)
	assert.Equal(t, 1, store.creates)
}

func TestCompare_IdenticalImagesEmitNothing(t *testing.T) {
	store := newMemBaselines()
	img := solidPNG(t, 10, 10, white)
	_, err := store.Create(domain.Baseline{
		ViewID: "card", Viewport: domain.Viewport{Width: 10, Height: 10}, Image: img,
	})
	require.NoError(t, err)

	cmp := &Comparator{Store: store, Policy: domain.VisualPolicy{DiffThreshold: 0.01}}
	findings, err := cmp.Compare(visualCapture(t, img))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestCompare_DiffAboveThresholdWarns(t *testing.T) {
	store := newMemBaselines()
	_, err := store.Create(domain.Baseline{
		ViewID:   "card",
		Viewport: domain.Viewport{Width: 10, Height: 10},
		Image:    solidPNG(t, 10, 10, white),
	})
	require.NoError(t, err)
	store.creates = 0

	// 5 of 100 pixels changed, threshold 1%.
	changed := []image.Point{{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}}
	cmp := &Comparator{Store: store, Policy: domain.VisualPolicy{DiffThreshold: 0.01}}
	findings, err := cmp.Compare(visualCapture(t, solidPNG(t, 10, 10, white, changed...)))
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, domain.SeverityWarning, f.Severity)
	assert.Contains(t, f.Message, "5.00%")
	assert.Contains(t, f.SuggestedFix, "baseline accept")

	// The stored baseline is never auto-replaced.
	assert.Equal(t, 0, store.creates)
	assert.Equal(t, 0, store.accepts)
}

func TestCompare_DiffBelowThresholdEmitsNothing(t *testing.T) {
	store := newMemBaselines()
	_, err := store.Create(domain.Baseline{
		ViewID:   "card",
		Viewport: domain.Viewport{Width: 10, Height: 10},
		Image:    solidPNG(t, 10, 10, white),
	})
	require.NoError(t, err)

	cmp := &Comparator{Store: store, Policy: domain.VisualPolicy{DiffThreshold: 0.05}}
	findings, err := cmp.Compare(visualCapture(t, solidPNG(t, 10, 10, white, image.Point{0, 0})))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestCompare_SaveDiffProvidesLocator(t *testing.T) {
	store := newMemBaselines()
	_, err := store.Create(domain.Baseline{
		ViewID:   "card",
		Viewport: domain.Viewport{Width: 10, Height: 10},
		Image:    solidPNG(t, 10, 10, white),
	})
	require.NoError(t, err)

	var savedPNG []byte
	cmp := &Comparator{
		Store:  store,
		Policy: domain.VisualPolicy{DiffThreshold: 0.0},
		SaveDiff: func(viewID string, vp domain.Viewport, diffPNG []byte) (string, error) {
			savedPNG = diffPNG
			return "diffs/card_10x10.png", nil
		},
	}
	findings, err := cmp.Compare(visualCapture(t, solidPNG(t, 10, 10, white, image.Point{4, 7})))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "diffs/card_10x10.png", findings[0].Locator)
	assert.NotEmpty(t, savedPNG)
}

func TestCompare_MissingScreenshotErrors(t *testing.T) {
	cmp := &Comparator{Store: newMemBaselines()}
	_, err := cmp.Compare(&domain.CaptureResult{ViewID: "card"})
	assert.Error(t, err)
}

func TestDiffImages_CountsAndRegion(t *testing.T) {
	base := solidPNG(t, 10, 10, white)
	current := solidPNG(t, 10, 10, white, image.Point{2, 3}, image.Point{5, 6})

	diff, err := DiffImages(base, current, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, diff.Pixels)
	assert.InDelta(t, 0.02, diff.Ratio, 1e-9)
	assert.Equal(t, image.Rect(2, 3, 6, 7), diff.Region)
	assert.NotEmpty(t, diff.DiffImage)
}

func TestDiffImages_ToleranceAbsorbsSmallDeltas(t *testing.T) {
	base := solidPNG(t, 4, 4, color.RGBA{100, 100, 100, 255})
	near := solidPNG(t, 4, 4, color.RGBA{102, 101, 99, 255})

	diff, err := DiffImages(base, near, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, diff.Pixels)
	assert.Equal(t, 0.0, diff.Ratio)

	diff, err = DiffImages(base, near, 0)
	require.NoError(t, err)
	assert.Equal(t, 16, diff.Pixels)
}

func TestDiffImages_SizeChangeCountsAsDiff(t *testing.T) {
	base := solidPNG(t, 10, 10, white)
	taller := solidPNG(t, 10, 12, white)

	diff, err := DiffImages(base, taller, 0)
	require.NoError(t, err)
	// The 10x2 strip outside the overlap differs by definition.
	assert.Equal(t, 20, diff.Pixels)
	assert.InDelta(t, 20.0/120.0, diff.Ratio, 1e-9)
}

func TestDiffImages_RejectsBadData(t *testing.T) {
	_, err := DiffImages([]byte("not a png"), solidPNG(t, 2, 2, white), 0)
	assert.Error(t, err)
}
