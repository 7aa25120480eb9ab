package snow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/i474232898/resort-picker/internal/common"
	"github.com/i474232898/resort-picker/internal/fetch"
	"github.com/i474232898/resort-picker/internal/resort"
)

// ErrNoSlug is returned for resorts without a snow-forecast.com slug.
var ErrNoSlug = errors.New("resort has no snow-forecast slug")

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

var (
	depthClass   = regexp.MustCompile(`(?i)snow|depth`)
	baseDepth    = regexp.MustCompile(`(?i)base[:\s]*(\d+)\s*cm`)
	summitDepth  = regexp.MustCompile(`(?i)(?:summit|top)[:\s]*(\d+)\s*cm`)
	newSnowLabel = regexp.MustCompile(`(?i)new snow|fresh snow`)
	centimetres  = regexp.MustCompile(`(\d+)\s*cm`)
)

// SnowForecastScraper reads conditions from the snow-forecast.com resort page.
type SnowForecastScraper struct {
	baseURL string
	client  *fetch.Client
	now     func() time.Time
}

func NewSnowForecastScraper(client *http.Client) *SnowForecastScraper {
	return &SnowForecastScraper{
		baseURL: "https://www.snow-forecast.com/resorts",
		client:  fetch.NewClient("snow-forecast", client),
		now:     time.Now,
	}
}

// WithBaseURL overrides the site root.
func (s *SnowForecastScraper) WithBaseURL(u string) *SnowForecastScraper {
	s.baseURL = u
	return s
}

func (s *SnowForecastScraper) Name() string {
	return "snow-forecast.com"
}

func (s *SnowForecastScraper) FetchConditions(ctx context.Context, r resort.Resort) (*Conditions, error) {
	if r.SnowForecastSlug == "" {
		return nil, ErrNoSlug
	}

	u := fmt.Sprintf("%s/%s/6day/mid", s.baseURL, r.SnowForecastSlug)
	resp, err := s.client.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse snow-forecast page: %w", err)
	}

	c := parseSnowForecast(doc)
	if c == nil {
		return nil, fmt.Errorf("no snow data on page for %s", r.SnowForecastSlug)
	}
	c.ResortID = r.ID
	c.DateUpdated = s.now()
	c.Source = s.Name()
	return c, nil
}

// parseSnowForecast extracts depths, recent snowfall and a quality label.
// Returns nil when the page holds no depth or snowfall figure.
func parseSnowForecast(doc *goquery.Document) *Conditions {
	var base, summit, new24h, new7d *int

	doc.Find("table.snow-depths-table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		n, ok := common.FirstInt(strings.TrimSpace(cells.Last().Text()))
		if !ok {
			return
		}
		label := strings.ToLower(row.Text())
		switch {
		case common.HasAny(label, "base", "bottom"):
			base = positive(n)
		case common.HasAny(label, "top", "summit"):
			summit = positive(n)
		}
	})

	doc.Find("div").Each(func(_ int, div *goquery.Selection) {
		class, _ := div.Attr("class")
		if !depthClass.MatchString(class) {
			return
		}
		text := div.Text()
		if m := baseDepth.FindStringSubmatch(text); m != nil && base == nil {
			if n, ok := common.FirstInt(m[1]); ok {
				base = positive(n)
			}
		}
		if m := summitDepth.FindStringSubmatch(text); m != nil && summit == nil {
			if n, ok := common.FirstInt(m[1]); ok {
				summit = positive(n)
			}
		}
	})

	doc.Find("*").Each(func(_ int, el *goquery.Selection) {
		if !newSnowLabel.MatchString(ownText(el)) {
			return
		}
		text := el.Text()
		m := centimetres.FindStringSubmatch(text)
		if m == nil {
			return
		}
		n, _ := common.FirstInt(m[1])
		switch {
		case strings.Contains(text, "24") || common.HasAny(text, "today"):
			new24h = positive(n)
		case strings.Contains(text, "7") || common.HasAny(text, "week"):
			new7d = positive(n)
		}
	})

	if base == nil && summit == nil && new24h == nil && new7d == nil {
		return nil
	}

	page := doc.Text()
	quality := QualityUnknown
	switch {
	case common.HasAny(page, "powder"):
		quality = QualityPowder
	case common.HasAny(page, "fresh"):
		quality = QualityFresh
	case common.HasAny(page, "packed", "groomed"):
		quality = QualityPacked
	case common.HasAny(page, "icy", "hard"):
		quality = QualityIcy
	case val(base) > 0:
		quality = QualityVariable
	}

	return &Conditions{
		SnowBase:    base,
		SnowSummit:  summit,
		NewSnow24h:  new24h,
		NewSnow7d:   new7d,
		SnowQuality: quality,
	}
}

// ownText concatenates the element's direct text children.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
		}
	})
	return b.String()
}
