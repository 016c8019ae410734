package adzuna

import (
	"fmt"
	"net/url"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const defaultCountry = "us"

type SearchParams struct {
	What string `yaml:"what"`
	// Country selects the Adzuna country endpoint, it is part of the URL
	// path rather than a query parameter.
	Country string `adzparam:"-" yaml:"country"`
	Where   string `yaml:"where"`
	// SalaryMin is the salary floor in the country's currency.
	SalaryMin uint `adzparam:"salary_min" mapstructure:"salary_min"`
	// MaxDaysOld limits results to postings published within the window.
	MaxDaysOld uint   `adzparam:"max_days_old" mapstructure:"max_days_old"`
	Category   string `yaml:"category"`
	// Limit caps the total number of postings fetched across pages.
	Limit int `adzparam:"-" yaml:"limit"`
}

// Search fetches postings page by page until Limit is reached or the API
// runs out of results.
func (c *Client) Search(params *SearchParams) ([]*Posting, error) {
	country := params.Country
	if country == "" {
		country = defaultCountry
	}

	limit := params.Limit
	if limit <= 0 {
		limit = perPage
	}

	q := buildParams(params)
	q.Set("app_id", c.appID)
	q.Set("app_key", c.appKey)
	q.Set("results_per_page", fmt.Sprintf("%d", perPage))

	var items []item
	for page := 1; len(items) < limit; page++ {
		// Adzuna paginates with integer path segments: /search/1, /search/2, ...
		pageURL := fmt.Sprintf("%s/%s/search/%d", c.APIURL, country, page)

		response, err := c.getPage(pageURL, q)
		if err != nil {
			return nil, err
		}

		c.logger.Debug("got response from Adzuna",
			zap.Int("page", page),
			zap.Int("total_found", response.Count),
			zap.Int("page_items", len(response.Results)),
		)

		if len(response.Results) == 0 {
			break
		}

		items = append(items, response.Results...)

		if len(response.Results) < perPage {
			break
		}
	}

	if len(items) > limit {
		items = items[:limit]
	}

	return decodePostings(items)
}

func decodePostings(items []item) ([]*Posting, error) {
	var postings []*Posting

	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &postings,
		TagName:  "json",
		// Adzuna serves ids as numbers on some country endpoints.
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}

	return postings, nil
}

func buildParams(params *SearchParams) url.Values {
	q := url.Values{}
	fields := reflect.VisibleFields(reflect.TypeOf(*params))
	for _, field := range fields {
		// Our custom tag is using here.
		key := field.Tag.Get("adzparam")
		if key == "-" {
			continue
		}
		if key == "" {
			// Failover to default tag if our tag do not exist.
			key = field.Tag.Get("yaml")
		}

		value := fmt.Sprintf("%v", reflect.ValueOf(params).Elem().Field(field.Index[0]).Interface())
		if value != "" && value != "0" {
			q.Set(key, value)
		}
	}

	return q
}
