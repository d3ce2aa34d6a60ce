package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// BrowserSession is one controllable browser page. The automation run
// only talks to this interface, so tests substitute a fake session and
// never launch a real browser.
type BrowserSession interface {
	Navigate(url string, timeout time.Duration) error
	SelectOption(selector, value string) error
	TypeText(selector, value string) error
	Click(selector string) error
	Evaluate(script string, args ...interface{}) (interface{}, error)
	WaitForSelector(selector string, timeout time.Duration) bool
	WaitForNavigation(timeout time.Duration) error
	CurrentURL() string
	Screenshot(path string) error
	Close() error
}

// SessionFactory opens a fresh session for each run.
type SessionFactory interface {
	NewSession() (BrowserSession, error)
}

type PlaywrightSessionFactory struct {
	Headless bool
}

func (f *PlaywrightSessionFactory) NewSession() (BrowserSession, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(f.Headless),
		Args: []string{
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--disable-dev-shm-usage",
			"--disable-gpu",
			"--window-size=1280,900",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	page, err := browser.NewPage()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser page: %w", err)
	}

	page.SetViewportSize(1280, 900)
	page.SetExtraHTTPHeaders(map[string]string{
		"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	})

	return &playwrightSession{pw: pw, browser: browser, page: page}, nil
}

type playwrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page

	closeOnce sync.Once
}

func (s *playwrightSession) Navigate(url string, timeout time.Duration) error {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	return err
}

func (s *playwrightSession) SelectOption(selector, value string) error {
	_, err := s.page.Locator(selector).First().SelectOption(playwright.SelectOptionValues{
		Values: &[]string{value},
	})
	return err
}

func (s *playwrightSession) TypeText(selector, value string) error {
	// Reset the field first and wake up client-side listeners so any
	// stale validation state clears before typing.
	_, err := s.page.Evaluate(`sel => {
		const el = document.querySelector(sel);
		if (el) {
			el.value = '';
			el.dispatchEvent(new Event('focus'));
		}
	}`, selector)
	if err != nil {
		return err
	}

	return s.page.Locator(selector).First().PressSequentially(value, playwright.LocatorPressSequentiallyOptions{
		Delay: playwright.Float(40),
	})
}

func (s *playwrightSession) Click(selector string) error {
	return s.page.Locator(selector).First().Click()
}

func (s *playwrightSession) Evaluate(script string, args ...interface{}) (interface{}, error) {
	if len(args) > 0 {
		return s.page.Evaluate(script, args[0])
	}
	return s.page.Evaluate(script)
}

func (s *playwrightSession) WaitForSelector(selector string, timeout time.Duration) bool {
	_, err := s.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return err == nil
}

func (s *playwrightSession) WaitForNavigation(timeout time.Duration) error {
	_, err := s.page.ExpectNavigation(func() error { return nil }, playwright.PageExpectNavigationOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	return err
}

func (s *playwrightSession) CurrentURL() string {
	return s.page.URL()
}

func (s *playwrightSession) Screenshot(path string) error {
	_, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

func (s *playwrightSession) Close() error {
	s.closeOnce.Do(func() {
		s.page.Close()
		s.browser.Close()
		s.pw.Stop()
	})
	return nil
}
