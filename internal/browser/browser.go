// Package browser drives a live Chrome page through go-rod so the SEO and
// injection engines can synchronize a real DOM and its localStorage.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/tapdev/tapdev-site/internal/runtimeconfig"
)

// ErrURLRequired is returned by Open without a target url.
var ErrURLRequired = errors.New("browser: url is required")

// Browser is a connected Chrome instance.
type Browser struct {
	rod      *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration

	closeOnce sync.Once
}

// Connect attaches to cfg.ControlURL, or launches a local Chrome when it is
// empty.
func Connect(ctx context.Context, cfg runtimeconfig.BrowserConfig) (*Browser, error) {
	controlURL := strings.TrimSpace(cfg.ControlURL)
	var l *launcher.Launcher
	if controlURL == "" {
		l = launcher.New().Headless(cfg.Headless).Context(ctx)
		if bin := strings.TrimSpace(cfg.Bin); bin != "" {
			l = l.Bin(bin)
		}
		url, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch chrome: %w", err)
		}
		controlURL = url
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	return &Browser{rod: b, launcher: l, timeout: cfg.Timeout}, nil
}

// Open navigates a new tab to url and waits for it to load.
func (b *Browser) Open(ctx context.Context, url string) (*Page, error) {
	if strings.TrimSpace(url) == "" {
		return nil, ErrURLRequired
	}
	page, err := b.rod.Context(ctx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("browser: open %s: %w", url, err)
	}
	wait := page
	if b.timeout > 0 {
		wait = page.Timeout(b.timeout)
	}
	if err := wait.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("browser: load %s: %w", url, err)
	}
	return &Page{page: page.Context(context.Background()), url: url}, nil
}

// Close disconnects and stops a Chrome process started by Connect.
func (b *Browser) Close() error {
	var err error
	b.closeOnce.Do(func() {
		err = b.rod.Close()
		if b.launcher != nil {
			b.launcher.Kill()
		}
	})
	return err
}
