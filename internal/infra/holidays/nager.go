// Package holidays fetches public holidays from the Nager.Date API.
package holidays

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"budget_calendar/internal/calendar"

	"github.com/sirupsen/logrus"
)

const defaultTimeout = 10 * time.Second

type publicHoliday struct {
	Date      string `json:"date"`
	LocalName string `json:"localName"`
	Name      string `json:"name"`
}

// NagerClient implements holiday.Provider. Years are cached in-process once
// fetched successfully; a failed year is logged and left out of the result.
type NagerClient struct {
	baseURL    string
	country    string
	httpClient *http.Client
	logger     *logrus.Entry

	mu    sync.Mutex
	years map[int]calendar.HolidaySet
}

func NewNagerClient(baseURL, country string, httpClient *http.Client, logger *logrus.Entry) *NagerClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &NagerClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		country:    strings.ToUpper(country),
		httpClient: httpClient,
		logger:     logger.WithField("component", "holidays"),
		years:      make(map[int]calendar.HolidaySet),
	}
}

// Holidays returns the holidays of every calendar year touched by [start, end].
// Only a cancelled context is reported as an error.
func (c *NagerClient) Holidays(ctx context.Context, start, end time.Time) (calendar.HolidaySet, error) {
	out := calendar.HolidaySet{}
	for year := start.Year(); year <= end.Year(); year++ {
		set, err := c.year(ctx, year)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			c.logger.WithError(err).WithFields(logrus.Fields{
				"year":    year,
				"country": c.country,
			}).Warn("Holiday fetch failed, continuing without this year")
			continue
		}
		out.Merge(set)
	}
	return out, nil
}

func (c *NagerClient) year(ctx context.Context, year int) (calendar.HolidaySet, error) {
	c.mu.Lock()
	cached, ok := c.years[year]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	set, err := c.fetch(ctx, year)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.years[year] = set
	c.mu.Unlock()
	c.logger.WithFields(logrus.Fields{"year": year, "count": len(set)}).Debug("Holidays cached")
	return set, nil
}

func (c *NagerClient) fetch(ctx context.Context, year int) (calendar.HolidaySet, error) {
	url := fmt.Sprintf("%s/PublicHolidays/%d/%s", c.baseURL, year, c.country)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build holiday request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch holidays %d: %w", year, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch holidays %d: unexpected status %s", year, resp.Status)
	}

	var holidays []publicHoliday
	if err := json.NewDecoder(resp.Body).Decode(&holidays); err != nil {
		return nil, fmt.Errorf("decode holidays %d: %w", year, err)
	}

	set := make(calendar.HolidaySet, len(holidays))
	for _, h := range holidays {
		if len(h.Date) < len(calendar.ISOLayout) {
			continue
		}
		set.Add(h.Date[:len(calendar.ISOLayout)])
	}
	return set, nil
}
