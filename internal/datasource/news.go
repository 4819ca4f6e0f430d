package datasource

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/seenimoa/researchdesk/internal/config"
	"github.com/seenimoa/researchdesk/internal/infra"
	"github.com/seenimoa/researchdesk/pkg/models"
)

// News fetches per-ticker headlines from the provider's RSS feed.
type News struct {
	feedURL string
	limit   int
	cache   *infra.Cache[[]models.NewsArticle]
	limiter *rate.Limiter
	parser  *gofeed.Parser
	logger  arbor.ILogger
}

// NewNews creates a headline source.
func NewNews(quotes config.QuotesConfig, cfg config.NewsConfig, logger arbor.ILogger) *News {
	p := gofeed.NewParser()
	p.Client = newHTTPClient(quotes.Timeout())
	p.UserAgent = DefaultUserAgent
	limit := cfg.Limit
	if limit <= 0 {
		limit = 20
	}
	return &News{
		feedURL: quotes.FeedURL,
		limit:   limit,
		cache:   infra.NewCache[[]models.NewsArticle](seconds(cfg.CacheTTL, 600)),
		limiter: rate.NewLimiter(rate.Limit(2), 2), // conservative: 2 req/s
		parser:  p,
		logger:  logger,
	}
}

// Name returns the data source name.
func (n *News) Name() string { return "Yahoo Finance Headlines" }

// Headlines returns the newest articles for ticker, at most limit (the
// configured default when limit <= 0).
func (n *News) Headlines(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error) {
	if limit <= 0 {
		limit = n.limit
	}
	cacheKey := fmt.Sprintf("news:%s", ticker)
	articles, ok := n.cache.Get(cacheKey)
	if !ok {
		var err error
		articles, err = n.fetchRSS(ctx, ticker)
		if err != nil {
			return nil, err
		}
		n.cache.Cleanup()
		n.cache.Set(cacheKey, articles)
	}

	if len(articles) > limit {
		articles = articles[:limit]
	}
	return append([]models.NewsArticle(nil), articles...), nil
}

// --- Internal helpers ---

func (n *News) feedFor(ticker string) string {
	q := url.Values{}
	q.Set("s", ticker)
	q.Set("region", "US")
	q.Set("lang", "en-US")
	return n.feedURL + "?" + q.Encode()
}

// fetchRSS parses the ticker's feed and returns articles newest first.
func (n *News) fetchRSS(ctx context.Context, ticker string) ([]models.NewsArticle, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := n.parser.ParseURLWithContext(n.feedFor(ticker), ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: parse RSS for %s: %v", ErrUpstream, ticker, err)
	}

	source := feed.Title
	if source == "" {
		source = n.Name()
	}

	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.NewsArticle{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Source:  source,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}
	sortArticlesByDate(articles)

	n.logger.Debug().Str("ticker", ticker).Int("articles", len(articles)).Msg("headlines fetched")
	return articles, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// sortArticlesByDate sorts articles by published date (newest first).
func sortArticlesByDate(articles []models.NewsArticle) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}
