package checks

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/designlens/designlens/internal/domain"
)

// DiffResult describes the pixel comparison between a capture and its
// baseline.
type DiffResult struct {
	Ratio     float64         // differing pixels / compared pixels
	Pixels    int             // number of differing pixels
	Region    image.Rectangle // bounding box of the differing area
	DiffImage []byte          // PNG with differing pixels highlighted
}

// Comparator compares captures against stored baselines. The baseline is
// never auto-replaced; a missing baseline is created once and reported as
// an informational finding.
type Comparator struct {
	Store  domain.BaselineStore
	Policy domain.VisualPolicy
	// CommitHash is attached to newly created baselines when known.
	CommitHash string
	// SaveDiff persists a diff image and returns a path for the finding.
	// Optional; without it the finding simply omits the diff link.
	SaveDiff func(viewID string, vp domain.Viewport, diffPNG []byte) (string, error)
}

// Compare runs the regression check for one capture.
func (c *Comparator) Compare(capture *domain.CaptureResult) ([]domain.Finding, error) {
	if capture == nil || len(capture.Screenshot) == 0 {
		return nil, fmt.Errorf("capture has no screenshot")
	}

	baseline, err := c.Store.Load(capture.ViewID, capture.Viewport)
	if err != nil {
		return nil, fmt.Errorf("loading baseline: %w", err)
	}

	if baseline == nil {
		created, err := c.Store.Create(domain.Baseline{
			ViewID:     capture.ViewID,
			Viewport:   capture.Viewport,
			Image:      capture.Screenshot,
			CapturedAt: capture.CapturedAt,
			CommitHash: c.CommitHash,
		})
		if err != nil {
			return nil, fmt.Errorf("creating baseline: %w", err)
		}
		return []domain.Finding{{
			Check:    domain.CheckVisualRegression,
			Severity: domain.SeverityInfo,
			Message:  "baseline created",
			Locator:  created.ImagePath,
		}}, nil
	}

	diff, err := DiffImages(baseline.Image, capture.Screenshot, c.Policy.PixelTolerance)
	if err != nil {
		return nil, fmt.Errorf("comparing against baseline: %w", err)
	}

	if diff.Ratio <= c.Policy.DiffThreshold {
		return nil, nil
	}

	locator := fmt.Sprintf("region %v", diff.Region)
	if c.SaveDiff != nil {
		if path, err := c.SaveDiff(capture.ViewID, capture.Viewport, diff.DiffImage); err == nil {
			locator = path
		}
	}
	return []domain.Finding{{
		Check:    domain.CheckVisualRegression,
		Severity: domain.SeverityWarning,
		Message: fmt.Sprintf("visual diff %.2f%% exceeds threshold %.2f%%",
			diff.Ratio*100, c.Policy.DiffThreshold*100),
		SuggestedFix: "review the diff image; run `designlens baseline accept` if the change is intended",
		Locator:      locator,
	}}, nil
}

// DiffImages computes the pixel-difference ratio over the overlapping
// region of two PNG images. Pixels outside the overlap (when dimensions
// differ) count as differing.
func DiffImages(baselinePNG, currentPNG []byte, tolerance int) (*DiffResult, error) {
	base, err := png.Decode(bytes.NewReader(baselinePNG))
	if err != nil {
		return nil, fmt.Errorf("decoding baseline image: %w", err)
	}
	cur, err := png.Decode(bytes.NewReader(currentPNG))
	if err != nil {
		return nil, fmt.Errorf("decoding current image: %w", err)
	}

	bb, cb := base.Bounds(), cur.Bounds()
	overlap := image.Rect(0, 0, min(bb.Dx(), cb.Dx()), min(bb.Dy(), cb.Dy()))
	total := max(bb.Dx(), cb.Dx()) * max(bb.Dy(), cb.Dy())
	if total == 0 {
		return nil, fmt.Errorf("empty images")
	}

	highlight := image.NewRGBA(image.Rect(0, 0, max(bb.Dx(), cb.Dx()), max(bb.Dy(), cb.Dy())))
	differing := 0
	region := image.Rectangle{}

	for y := 0; y < overlap.Dy(); y++ {
		for x := 0; x < overlap.Dx(); x++ {
			pb := base.At(bb.Min.X+x, bb.Min.Y+y)
			pc := cur.At(cb.Min.X+x, cb.Min.Y+y)
			if pixelsEqual(pb, pc, tolerance) {
				highlight.Set(x, y, dimmed(pc))
				continue
			}
			differing++
			highlight.Set(x, y, color.RGBA{R: 255, A: 255})
			region = growRegion(region, x, y)
		}
	}

	// Area outside the overlap is a size change: all differing.
	differing += total - overlap.Dx()*overlap.Dy()

	var buf bytes.Buffer
	if err := png.Encode(&buf, highlight); err != nil {
		return nil, fmt.Errorf("encoding diff image: %w", err)
	}

	return &DiffResult{
		Ratio:     float64(differing) / float64(total),
		Pixels:    differing,
		Region:    region,
		DiffImage: buf.Bytes(),
	}, nil
}

func pixelsEqual(a, b color.Color, tolerance int) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	t := uint32(tolerance) << 8 // RGBA() is 16-bit per channel
	return within(ar, br, t) && within(ag, bg, t) && within(ab, bb, t) && within(aa, ba, t)
}

func within(a, b, tolerance uint32) bool {
	if a > b {
		return a-b <= tolerance
	}
	return b-a <= tolerance
}

func dimmed(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	gray := uint8(((r + g + b) / 3) >> 8)
	return color.RGBA{R: gray, G: gray, B: gray, A: 64}
}

func growRegion(r image.Rectangle, x, y int) image.Rectangle {
	p := image.Rect(x, y, x+1, y+1)
	if r.Empty() {
		return p
	}
	return r.Union(p)
}
