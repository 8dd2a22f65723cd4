// Package lbb adapts the La Bonne Boite style company-matching API to the
// ExternalOfferGateway port. The upstream has no notion of voluntary
// establishments, appellations, or contacts; it only matches companies by
// trade code within a radius.
package lbb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"immersion/internal/search/ports"
	"immersion/pkg/geo"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultRetries   = 2
	defaultRetryWait = 500 * time.Millisecond
)

// Client calls the company-matching HTTP API.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// NewClient builds a gateway client for the given API base URL. The API key
// is sent as a bearer token on every request.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetRetryCount(defaultRetries).
		SetRetryWaitTime(defaultRetryWait).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		httpClient.SetAuthToken(apiKey)
	}

	c := &Client{http: httpClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type companyResponse struct {
	Companies []companyPayload `json:"companies"`
}

type companyPayload struct {
	Siret            string  `json:"siret"`
	Name             string  `json:"name"`
	Address          string  `json:"address"`
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	MatchedRomeCode  string  `json:"matched_rome_code"`
	MatchedRomeLabel string  `json:"matched_rome_label"`
	Distance         float64 `json:"distance"`
	Naf              string  `json:"naf"`
	URL              string  `json:"url"`
}

// SearchCompanies queries the upstream for companies matching the trade code
// within the radius. Failures are returned to the caller; the executor
// absorbs them as zero external results.
func (c *Client) SearchCompanies(ctx context.Context, query ports.CompanyQuery) ([]ports.ExternalCompany, error) {
	var payload companyResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"rome_codes": query.RomeCode,
			"latitude":   fmt.Sprintf("%f", query.Coordinate.Lat),
			"longitude":  fmt.Sprintf("%f", query.Coordinate.Lon),
			"distance":   fmt.Sprintf("%f", query.RadiusKm),
		}).
		SetResult(&payload).
		Get("/company/")
	if err != nil {
		return nil, fmt.Errorf("search companies: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("search companies: upstream returned %s", resp.Status())
	}

	companies := make([]ports.ExternalCompany, 0, len(payload.Companies))
	for _, company := range payload.Companies {
		companies = append(companies, ports.ExternalCompany{
			Siret:        company.Siret,
			Name:         company.Name,
			Address:      company.Address,
			Position:     geo.Coordinate{Lat: company.Lat, Lon: company.Lon},
			RomeCode:     company.MatchedRomeCode,
			RomeLabel:    company.MatchedRomeLabel,
			DistanceKm:   company.Distance,
			NafCode:      company.Naf,
			URLOfPartner: company.URL,
		})
	}

	if c.logger != nil {
		c.logger.DebugContext(ctx, "external gateway searched",
			"rome_code", query.RomeCode,
			"radius_km", query.RadiusKm,
			"companies", len(companies),
		)
	}
	return companies, nil
}
