package adzuna

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL          = "https://api.adzuna.com/v1/api/jobs"
	userAgent       = "jobscout/1.0"
	contentEncoding = "gzip, deflate, br"
	// Max value Adzuna accepts for results_per_page.
	perPage = 50
)

type Client struct {
	// ctx used only for http requests right now
	ctx        context.Context
	appID      string
	appKey     string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(ctx context.Context, logger *zap.Logger, appID, appKey string) *Client {
	return &Client{
		ctx:    ctx,
		appID:  appID,
		appKey: appKey,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

type searchResponse struct {
	Count   int    `json:"count"`
	Results []item `json:"results"`
}

type item map[string]any

func (c *Client) getPage(rawURL string, q url.Values) (*searchResponse, error) {
	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.URL.RawQuery = q.Encode()

	c.logger.Debug("make request", zap.String("url", req.URL.Redacted()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return parseSearchResponse(resp)
}

func parseSearchResponse(resp *http.Response) (*searchResponse, error) {
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var body io.ReadCloser
	var err error
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		body, err = gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
		defer body.Close()
		defer resp.Body.Close()
	default:
		body = resp.Body
		defer body.Close()
	}

	var response *searchResponse
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, err
	}

	return response, nil
}
