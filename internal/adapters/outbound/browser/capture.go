// Package browser owns the headless Chrome sessions used to render views.
// One browser process is shared across captures; each view navigates in a
// fresh tab with cookies and storage cleared so state cannot leak between
// views.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/hashicorp/go-hclog"

	"github.com/designlens/designlens/internal/domain"
)

// styleExtractionJS collects computed styles for visible elements. Kept
// to a bounded number of nodes so huge pages stay cheap to serialize.
const styleExtractionJS = `
(() => {
  const maxNodes = 300;
  const out = [];
  const selectorFor = (el) => {
    if (el.id) return el.tagName.toLowerCase() + '#' + el.id;
    const cls = (el.className && typeof el.className === 'string')
      ? el.className.trim().split(/\s+/)[0] : '';
    return cls ? el.tagName.toLowerCase() + '.' + cls : el.tagName.toLowerCase();
  };
  const nodes = document.querySelectorAll('body, body *');
  for (const el of nodes) {
    if (out.length >= maxNodes) break;
    const rect = el.getBoundingClientRect();
    if (rect.width === 0 || rect.height === 0) continue;
    const cs = getComputedStyle(el);
    const spacing = {};
    for (const prop of ['padding-top','padding-right','padding-bottom','padding-left',
                        'margin-top','margin-right','margin-bottom','margin-left','gap']) {
      const v = cs.getPropertyValue(prop);
      if (v && v !== '0px' && v !== 'normal') spacing[prop] = v;
    }
    out.push({
      selector: selectorFor(el),
      color: cs.color,
      background: cs.backgroundColor,
      fontFamily: cs.fontFamily,
      fontSize: cs.fontSize,
      fontWeight: cs.fontWeight,
      spacing: spacing,
    });
  }
  return out;
})()
`

// Controller implements domain.Capturer with chromedp.
type Controller struct {
	appURL        string
	screenshotDir string
	navTimeout    time.Duration
	settleTimeout time.Duration
	logger        hclog.Logger

	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// Options configures a Controller.
type Options struct {
	AppURL        string
	ScreenshotDir string
	NavTimeout    time.Duration
	SettleTimeout time.Duration
	Logger        hclog.Logger
}

// New starts the shared headless browser. The startup cost is paid once
// and amortized over every capture of the session.
func New(ctx context.Context, opts Options) (*Controller, error) {
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("hide-scrollbars", true),
		)...,
	)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Launch the browser now so a missing Chrome binary fails fast.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, &domain.CaptureError{Stage: "connect", Fatal: true, Err: err}
	}

	return &Controller{
		appURL:        strings.TrimRight(opts.AppURL, "/"),
		screenshotDir: opts.ScreenshotDir,
		navTimeout:    opts.NavTimeout,
		settleTimeout: opts.SettleTimeout,
		logger:        opts.Logger,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close shuts the shared browser down.
func (c *Controller) Close() error {
	c.browserCancel()
	c.allocCancel()
	return nil
}

// Capture renders one target and returns the immutable capture evidence.
func (c *Controller) Capture(ctx context.Context, target domain.ViewTarget) (*domain.CaptureResult, error) {
	// Fresh tab per view; cookies and storage are cleared before
	// navigating so per-view state stays isolated.
	tabCtx, cancelTab := chromedp.NewContext(c.browserCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, c.navTimeout+c.settleTimeout)
	defer cancelTimeout()

	// Session cancellation propagates into the tab.
	go func() {
		select {
		case <-ctx.Done():
			cancelTab()
		case <-tabCtx.Done():
		}
	}()

	pageURL := c.appURL + "/" + strings.TrimLeft(target.Route, "/")
	if _, err := url.Parse(pageURL); err != nil {
		return nil, &domain.CaptureError{ViewID: target.ID, Stage: "navigate", Err: err}
	}

	c.logger.Debug("capturing view", "view", target.ID, "url", pageURL, "viewport", target.Viewport.String())

	if err := chromedp.Run(tabCtx,
		network.ClearBrowserCookies(),
		storage.ClearDataForOrigin(c.appURL, "all"),
		chromedp.EmulateViewport(int64(target.Viewport.Width), int64(target.Viewport.Height)),
		chromedp.Navigate(pageURL),
	); err != nil {
		return nil, &domain.CaptureError{ViewID: target.ID, Stage: "navigate", Err: err}
	}

	if err := c.waitForQuiescence(tabCtx); err != nil {
		return nil, &domain.CaptureError{ViewID: target.ID, Stage: "settle", Err: err}
	}

	var (
		domSnapshot string
		elStyles    []domain.ElementStyle
		screenshot  []byte
	)
	if err := chromedp.Run(tabCtx,
		chromedp.OuterHTML("html", &domSnapshot, chromedp.ByQuery),
		chromedp.Evaluate(styleExtractionJS, &elStyles),
		chromedp.CaptureScreenshot(&screenshot),
	); err != nil {
		return nil, &domain.CaptureError{ViewID: target.ID, Stage: "screenshot", Err: err}
	}

	result := &domain.CaptureResult{
		ViewID:      target.ID,
		Viewport:    target.Viewport,
		Screenshot:  screenshot,
		DOMSnapshot: domSnapshot,
		Styles:      elStyles,
		CapturedAt:  time.Now(),
	}

	if c.screenshotDir != "" {
		path, err := c.writeScreenshot(target, screenshot, result.CapturedAt)
		if err != nil {
			c.logger.Warn("writing screenshot failed", "view", target.ID, "error", err)
		} else {
			result.ScreenshotPath = path
		}
	}

	return result, nil
}

// waitForQuiescence waits for the document to be ready, then for the DOM
// to stop mutating for two consecutive animation frames within the settle
// timeout.
func (c *Controller) waitForQuiescence(ctx context.Context) error {
	settleCtx, cancel := context.WithTimeout(ctx, c.settleTimeout)
	defer cancel()

	if err := chromedp.Run(settleCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("document not ready: %w", err)
	}

	const settleJS = `
new Promise((resolve) => {
  let last = document.documentElement.outerHTML.length;
  let stable = 0;
  const tick = () => {
    const now = document.documentElement.outerHTML.length;
    stable = (now === last) ? stable + 1 : 0;
    last = now;
    if (stable >= 2) return resolve(true);
    requestAnimationFrame(tick);
  };
  requestAnimationFrame(tick);
})`
	var settled bool
	err := chromedp.Run(settleCtx,
		chromedp.Evaluate(settleJS, &settled, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
	)
	if err != nil {
		return fmt.Errorf("DOM did not settle: %w", err)
	}
	return nil
}

func (c *Controller) writeScreenshot(target domain.ViewTarget, data []byte, at time.Time) (string, error) {
	if err := os.MkdirAll(c.screenshotDir, 0755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_%s_%d.png", target.ID, target.Viewport.String(), at.UnixMilli())
	path := filepath.Join(c.screenshotDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}
