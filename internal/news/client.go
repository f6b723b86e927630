// Package news fetches recent headlines for a query from a newsapi-style
// HTTP API.
package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/MitulMistry/paper-trader/internal/config"
	"github.com/MitulMistry/paper-trader/internal/models"
)

// ErrUnavailable is returned when headlines cannot be fetched.
var ErrUnavailable = errors.New("news unavailable")

// Default lookback and result count when the caller does not specify them.
const (
	DefaultDays  = 7
	DefaultCount = 4
)

// Client fetches news articles over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a news client.
func NewClient(cfg config.NewsConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}
}

type newsResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		URL         string    `json:"url"`
		URLToImage  string    `json:"urlToImage"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// GetNews returns up to count articles matching query from the last days
// days, most relevant first.
func (c *Client) GetNews(ctx context.Context, query string, days, count int) ([]*models.Article, error) {
	if days <= 0 {
		days = DefaultDays
	}
	if count <= 0 {
		count = DefaultCount
	}

	from := time.Now().AddDate(0, 0, -days).Format("2006-01-02")
	params := url.Values{
		"q":      {query},
		"from":   {from},
		"sortBy": {"popularity"},
		"apiKey": {c.apiKey},
	}
	reqURL := fmt.Sprintf("%s/v2/everything?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var body newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if body.Status != "ok" {
		return nil, fmt.Errorf("%w: provider status %q", ErrUnavailable, body.Status)
	}

	articles := make([]*models.Article, 0, count)
	for _, a := range body.Articles {
		if len(articles) == count {
			break
		}
		articles = append(articles, &models.Article{
			Source:      a.Source.Name,
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			URLToImage:  a.URLToImage,
			Date:        a.PublishedAt,
		})
	}
	return articles, nil
}
