// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect scrapes the venue listing page into ListingRecords.
// The listing page is fetched once; every venue link found in the configured
// section is then visited to look for a contact address. Detail pages are
// paced by a colly limit rule.
package collect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/pdiddy/reviewer-outreach/internal/handoff"
	"github.com/pdiddy/reviewer-outreach/pkg/types"
)

// ErrSectionNotFound is returned when the listing page has no section whose
// heading matches the configured text.
var ErrSectionNotFound = errors.New("listing section not found")

// emailPattern matches addresses in raw page text, including mailto: links.
var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// BatchResult summarises one collection run.
type BatchResult struct {
	Found     int
	WithEmail int
}

// Total returns the number of records written.
func (r BatchResult) Total() int {
	return r.Found
}

// Collector fetches the listing page and venue pages.
type Collector struct {
	cfg       types.ListingConfig
	logger    *zap.Logger
	transport *http.Transport
	base      *colly.Collector
}

// New builds a Collector. Call Close to release idle connections.
func New(cfg types.ListingConfig, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}

	base := colly.NewCollector(colly.Async(false))
	if cfg.UserAgent != "" {
		base.UserAgent = cfg.UserAgent
	}
	base.AllowURLRevisit = true
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	base.SetRequestTimeout(timeout)

	transport := newHTTPTransport()
	base.WithTransport(transport)

	if cfg.PageDelay > 0 {
		_ = base.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 1, Delay: cfg.PageDelay})
	}

	return &Collector{cfg: cfg, logger: logger, transport: transport, base: base}
}

// Close releases pooled connections.
func (c *Collector) Close() {
	c.transport.CloseIdleConnections()
}

// Collect returns the venues listed in the configured section, in page order,
// deduplicated by URL and truncated to the configured limit. Each record carries
// the first acceptable contact address found on its venue page.
func (c *Collector) Collect(ctx context.Context, w io.Writer) ([]types.ListingRecord, error) {
	records, err := c.listVenues(ctx)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "found %d venues in %q\n", len(records), c.cfg.SectionHeading)

	if c.cfg.Limit > 0 && len(records) > c.cfg.Limit {
		records = records[:c.cfg.Limit]
		fmt.Fprintf(w, "limited to first %d\n", c.cfg.Limit)
	}

	for i := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		email, err := c.findContact(ctx, records[i].URL)
		if err != nil {
			c.logger.Warn("venue page failed",
				zap.String("venue", records[i].Name),
				zap.String("url", records[i].URL),
				zap.Error(err))
			fmt.Fprintf(w, "failed  %s: %v\n", records[i].Name, err)
			continue
		}
		records[i].Email = email
		if email == "" {
			fmt.Fprintf(w, "no email %s\n", records[i].Name)
		} else {
			fmt.Fprintf(w, "email   %s <%s>\n", records[i].Name, email)
		}
	}
	return records, nil
}

// CollectToFile runs Collect and writes the listings file.
func (c *Collector) CollectToFile(ctx context.Context, path string, w io.Writer) (BatchResult, error) {
	records, err := c.Collect(ctx, w)
	if err != nil {
		return BatchResult{}, err
	}
	if err := handoff.WriteListings(path, records); err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{Found: len(records)}
	for _, r := range records {
		if r.HasEmail() {
			result.WithEmail++
		}
	}
	c.logger.Info("collection complete",
		zap.Int("venues", result.Found),
		zap.Int("with_email", result.WithEmail),
		zap.String("path", path))
	return result, nil
}

func (c *Collector) listVenues(ctx context.Context) ([]types.ListingRecord, error) {
	collector := c.base.Clone()

	var (
		records []types.ListingRecord
		found   bool
		seen    = make(map[string]bool)
	)
	collector.OnHTML("section", func(e *colly.HTMLElement) {
		if !strings.Contains(e.DOM.Find("h1").First().Text(), c.cfg.SectionHeading) {
			return
		}
		found = true
		e.DOM.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			if !strings.Contains(href, c.cfg.LinkPattern) {
				return
			}
			abs := e.Request.AbsoluteURL(href)
			if abs == "" || seen[abs] {
				return
			}
			seen[abs] = true

			name := strings.Join(strings.Fields(s.Text()), " ")
			if name == "" {
				name = abs
			}
			records = append(records, types.ListingRecord{Name: name, URL: abs})
		})
	})

	if err := visit(ctx, collector, c.cfg.URL); err != nil {
		return nil, fmt.Errorf("fetching listing page %s: %w", c.cfg.URL, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: no <h1> containing %q at %s", ErrSectionNotFound, c.cfg.SectionHeading, c.cfg.URL)
	}
	return records, nil
}

func (c *Collector) findContact(ctx context.Context, url string) (string, error) {
	collector := c.base.Clone()

	var email string
	collector.OnResponse(func(r *colly.Response) {
		email = c.pickEmail(emailPattern.FindAllString(string(r.Body), -1))
	})

	if err := visit(ctx, collector, url); err != nil {
		return "", err
	}
	return email, nil
}

// pickEmail returns the first candidate not on an excluded domain and not
// containing an excluded keyword.
func (c *Collector) pickEmail(candidates []string) string {
	for _, addr := range candidates {
		if c.acceptable(addr) {
			return addr
		}
	}
	return ""
}

func (c *Collector) acceptable(addr string) bool {
	lower := strings.ToLower(addr)
	at := strings.LastIndex(lower, "@")
	if at < 0 {
		return false
	}
	domain := lower[at+1:]
	for _, d := range c.cfg.ExcludedDomains {
		d = strings.ToLower(d)
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return false
		}
	}
	for _, k := range c.cfg.ExcludedKeywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return false
		}
	}
	return true
}

// visit runs a synchronous colly visit that also honours ctx cancellation.
func visit(ctx context.Context, collector *colly.Collector, url string) error {
	var respErr error
	collector.OnError(func(_ *colly.Response, err error) {
		respErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return err
		}
		return respErr
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
}
