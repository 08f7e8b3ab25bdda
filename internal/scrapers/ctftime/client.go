package ctftime

import (
	"bytes"
	"context"
	"ctfrank/internal/apperr"
	"ctfrank/internal/assert"
	"ctfrank/internal/ranking"
	"ctfrank/internal/telemetry"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("ctfrank/scrapers/ctftime")

const (
	report_client_fetch_world_rank  = "client.fetch-world-rank"
	report_client_fetch_region_rank = "client.fetch-region-rank"
)

type ClientOptions struct {
	// BaseURL serves the team profile pages, ex. https://ctftime.org
	BaseURL string
	// APIBaseURL serves /api/v1, defaults to BaseURL.
	APIBaseURL string
	TeamID     string
	// Season is the rating year used by both the api and the profile page.
	Season string
	// Region is the country code of the regional leaderboard, ex. NO.
	Region string
	// UserAgent identifies this client to ctftime.
	UserAgent string
	Timeout   time.Duration
	// CloudflareBypass wraps the transport to get past the cloudflare browser check.
	CloudflareBypass bool
}

type Client struct {
	http *resty.Client
	opts ClientOptions
	tel  telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) Client {
	assert.NotEmptyStr(opts.BaseURL, "base url")
	assert.NotEmptyStr(opts.TeamID, "team id")
	assert.NotEmptyStr(opts.Season, "season")
	assert.NotEmptyStr(opts.Region, "region")
	assert.NotNil(tel, "telemetry")

	if opts.APIBaseURL == "" {
		opts.APIBaseURL = opts.BaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	opts.APIBaseURL = strings.TrimRight(opts.APIBaseURL, "/")

	tel = telemetry.NewScopedAPI("ctftime", tel)

	client := resty.New()
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	if opts.UserAgent != "" {
		client.SetHeader("user-agent", opts.UserAgent)
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	telemetry.InstrumentResty(client, "ctfrank/scrapers/ctftime/http", tel)

	return Client{
		http: client,
		opts: opts,
		tel:  tel,
	}
}

func (c Client) teamURL() string {
	return fmt.Sprintf("%s/team/%s", c.opts.BaseURL, url.PathEscape(c.opts.TeamID))
}

func (c Client) teamAPIURL() string {
	return fmt.Sprintf("%s/api/v1/teams/%s/", c.opts.APIBaseURL, url.PathEscape(c.opts.TeamID))
}

func (c Client) get(ctx context.Context, link string) ([]byte, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return nil, apperr.Network("GET "+link, err)
	}
	if !res.IsSuccess() {
		return nil, apperr.Network(fmt.Sprintf("GET %s: unexpected status %s", link, res.Status()), nil)
	}
	return res.Body(), nil
}

// FetchWorldRank reads the team's world rating place for the configured
// season from the json api.
func (c Client) FetchWorldRank(ctx context.Context) (ranking.Rank, error) {
	ctx, span := tracer.Start(ctx, "client:FetchWorldRank")
	defer span.End()

	body, err := c.get(ctx, c.teamAPIURL())
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch team")
		c.tel.ReportBroken(report_client_fetch_world_rank, err)
		return 0, err
	}

	rank, err := parseWorldRank(body, c.opts.Season)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unexpected api response")
		c.tel.ReportBroken(report_client_fetch_world_rank, err, c.opts.Season)
		return 0, err
	}

	span.SetAttributes(attribute.Int("rank", int(rank)))
	c.tel.ReportDebug("fetched world rank", c.opts.TeamID, c.opts.Season, int(rank))
	return rank, nil
}

// FetchRegionRank reads the team's regional place from the rating widget
// on the team profile page.
func (c Client) FetchRegionRank(ctx context.Context) (ranking.Rank, error) {
	ctx, span := tracer.Start(ctx, "client:FetchRegionRank")
	defer span.End()

	body, err := c.get(ctx, c.teamURL())
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch team page")
		c.tel.ReportBroken(report_client_fetch_region_rank, err)
		return 0, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		err = apperr.DataShape("parse team page html", err)
		span.SetStatus(codes.Error, "failed to parse html")
		c.tel.ReportBroken(report_client_fetch_region_rank, err)
		return 0, err
	}

	rank, err := parseRegionRank(doc, c.opts.Season, c.opts.Region)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unexpected team page layout")
		c.tel.ReportBroken(report_client_fetch_region_rank, err, c.opts.Season, c.opts.Region)
		return 0, err
	}

	span.SetAttributes(attribute.Int("rank", int(rank)))
	c.tel.ReportDebug("fetched region rank", c.opts.TeamID, c.opts.Region, int(rank))
	return rank, nil
}

func toRank(raw string) (ranking.Rank, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, fmt.Errorf("rank must be positive, got %d", value)
	}
	return ranking.Rank(value), nil
}
