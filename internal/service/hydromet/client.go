package hydromet

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"HydroPull/internal/domain/models"
	"HydroPull/internal/service/ratelimit"
	"HydroPull/pkg/cache"
	"HydroPull/pkg/config"
	xhttp "HydroPull/pkg/http"
	xlogger "HydroPull/pkg/logger"
	"HydroPull/pkg/metrics"
	"HydroPull/pkg/util"
)

// HeadKind selects which piezometric head series to fetch.
type HeadKind string

const (
	HeadAbsolute HeadKind = "head-absoluto"
	HeadDelta    HeadKind = "head-delta"
)

// Client is a typed client for the hydromet platform API.
//
// Series fetches follow a skip-and-continue policy: any transport error or
// non-2xx status yields an empty result so a generation run can proceed with
// partial data. Listing fetches return the error too, because a run cannot do
// anything without them. Raw payloads are cached by URL when a cache is wired.
type Client struct {
	metamodelURL string
	balanceURL   string
	wellsURL     string
	forecastURL  string

	http     *xhttp.Client
	logger   *xlogger.Logger
	metrics  *metrics.Recorder
	cache    cache.Service
	limiter  *ratelimit.Limiter
	cacheTTL time.Duration
}

// New creates a hydromet API client. The cache is optional. Outbound calls
// are paced by a token bucket when fetch.rate_limit is positive.
func New(cfg *config.Config, l *xlogger.Logger, m *metrics.Recorder, c cache.Service) *Client {
	var limiter *ratelimit.Limiter
	if cfg.Fetch.RateLimit > 0 {
		burst := float64(cfg.Fetch.Workers)
		if burst < 1 {
			burst = 1
		}
		limiter = ratelimit.New(burst, cfg.Fetch.RateLimit)
	}
	return &Client{
		metamodelURL: cfg.API.MetamodelURL,
		balanceURL:   cfg.API.BalanceURL,
		wellsURL:     cfg.API.WellsURL,
		forecastURL:  cfg.API.ForecastURL,
		http:         xhttp.NewClient(xhttp.WithTimeout(cfg.API.Timeout)),
		logger:       l,
		metrics:      m,
		cache:        c,
		limiter:      limiter,
		cacheTTL:     cfg.Fetch.CacheTTL,
	}
}

// --- wire formats ---

type apiRecord struct {
	Date     string   `json:"date"`
	Value    *float64 `json:"value"`
	StepIn   *float64 `json:"value_step_in"`
	StepOut  *float64 `json:"value_step_out"`
	StepRate *float64 `json:"value_step_rate"`
}

type seriesPayload struct {
	Data []apiRecord `json:"data"`
}

type wellPayload struct {
	Info models.WellInfo `json:"info"`
	Data []apiRecord     `json:"data"`
}

type wellListPayload struct {
	Wells []string `json:"pozos"`
}

// --- listings (mandatory; errors surface) ---

// HeadZones returns the zone ids available for head series.
func (c *Client) HeadZones(ctx context.Context) ([]string, error) {
	return c.fetchZoneList(ctx, c.metamodelURL+"/zonas")
}

// BalanceZones returns the zone ids available for water-balance series.
func (c *Client) BalanceZones(ctx context.Context) ([]string, error) {
	return c.fetchZoneList(ctx, c.balanceURL+"/zones")
}

// Wells returns every well id the platform reports level data for.
func (c *Client) Wells(ctx context.Context) ([]string, error) {
	var payload wellListPayload
	if err := c.getJSON(ctx, c.wellsURL+"/listado-pozos", nil, &payload); err != nil {
		return nil, fmt.Errorf("well listing: %w", err)
	}
	return payload.Wells, nil
}

// ForecastWells returns the ids of wells that have forecast data.
func (c *Client) ForecastWells(ctx context.Context) ([]string, error) {
	var ids []string
	if err := c.getJSON(ctx, c.forecastURL+"/listado", nil, &ids); err != nil {
		return nil, fmt.Errorf("forecast well listing: %w", err)
	}
	return ids, nil
}

func (c *Client) fetchZoneList(ctx context.Context, url string) ([]string, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, url, nil, &raw); err != nil {
		return nil, fmt.Errorf("zone listing: %w", err)
	}

	// The API answers either plain strings or {id, nombre} objects.
	var names []string
	if err := json.Unmarshal(raw, &names); err == nil {
		return names, nil
	}
	var objs []struct {
		ID     string `json:"id"`
		Nombre string `json:"nombre"`
	}
	if err := json.Unmarshal(raw, &objs); err != nil {
		return nil, fmt.Errorf("zone listing: unexpected shape: %w", err)
	}
	names = make([]string, 0, len(objs))
	for _, o := range objs {
		if o.Nombre != "" {
			names = append(names, o.Nombre)
		} else {
			names = append(names, o.ID)
		}
	}
	return names, nil
}

// --- series (skip and continue) ---

// HeadHistorical fetches the MODFLOW head series for one zone.
func (c *Client) HeadHistorical(ctx context.Context, zone string, kind HeadKind) []models.Observation {
	url := fmt.Sprintf("%s/metamodelo-mensual-%s-historico", c.metamodelURL, kind)
	return c.fetchSeries(ctx, url, zone)
}

// HeadForecast fetches the metamodel head series for one zone.
func (c *Client) HeadForecast(ctx context.Context, zone string, kind HeadKind) []models.Observation {
	url := fmt.Sprintf("%s/metamodelo-mensual-%s-modelacion", c.metamodelURL, kind)
	return c.fetchSeries(ctx, url, zone)
}

// BalanceHistorical fetches the MODFLOW water-balance series for one zone.
func (c *Client) BalanceHistorical(ctx context.Context, zone string) []models.Observation {
	return c.fetchSeries(ctx, c.balanceURL+"/metamodelo-mensual-balance-historico", zone)
}

// BalanceForecast fetches the metamodel water-balance series for one zone.
func (c *Client) BalanceForecast(ctx context.Context, zone string) []models.Observation {
	return c.fetchSeries(ctx, c.balanceURL+"/metamodelo-mensual-balance-modelacion", zone)
}

// WellData fetches the level history and metadata of one well.
func (c *Client) WellData(ctx context.Context, wellID string) ([]models.Observation, models.WellInfo) {
	var payload wellPayload
	url := c.wellsURL + "/pozos-data/" + wellID
	if err := c.getJSON(ctx, url, nil, &payload); err != nil {
		c.warnFetch(url, err)
		return nil, models.WellInfo{}
	}
	return decodeRecords(payload.Data), payload.Info
}

// WellForecast fetches the forecast series and metadata of one well.
func (c *Client) WellForecast(ctx context.Context, wellID string) ([]models.Observation, models.WellInfo) {
	var payload wellPayload
	url := c.forecastURL + "-data/" + wellID
	if err := c.getJSON(ctx, url, nil, &payload); err != nil {
		c.warnFetch(url, err)
		return nil, models.WellInfo{}
	}
	return decodeRecords(payload.Data), payload.Info
}

// WellInfo fetches just the metadata of one well from the wells platform.
func (c *Client) WellInfo(ctx context.Context, wellID string) models.WellInfo {
	var payload wellPayload
	url := c.wellsURL + "/pozos-data/" + wellID
	if err := c.getJSON(ctx, url, nil, &payload); err != nil {
		c.warnFetch(url, err)
		return models.WellInfo{}
	}
	return payload.Info
}

// --- geojson (skip and continue) ---

// WellLevelsGeoJSON fetches the raw well-classification FeatureCollection.
func (c *Client) WellLevelsGeoJSON(ctx context.Context) []byte {
	return c.fetchRaw(ctx, c.wellsURL+"/pozos-nivel-geojson")
}

// ZonesGeoJSON fetches the raw aquifer-zone FeatureCollection.
func (c *Client) ZonesGeoJSON(ctx context.Context) []byte {
	return c.fetchRaw(ctx, c.metamodelURL+"/metamodelos-zonas-geojson")
}

// --- internals ---

func (c *Client) fetchSeries(ctx context.Context, url, zone string) []models.Observation {
	var payload seriesPayload
	params := map[string][]string{"zona": {zone}}
	if err := c.getJSON(ctx, url, params, &payload); err != nil {
		c.warnFetch(url, err)
		return nil
	}
	return decodeRecords(payload.Data)
}

func (c *Client) fetchRaw(ctx context.Context, url string) []byte {
	var body []byte
	if err := c.getJSON(ctx, url, nil, &body); err != nil {
		c.warnFetch(url, err)
		return nil
	}
	return body
}

func (c *Client) getJSON(ctx context.Context, url string, params map[string][]string, dest interface{}) error {
	key := cacheKey(url, params)
	if c.cache != nil {
		if b, err := c.cache.Get(ctx, key); err == nil {
			return decodeCached(b, dest)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	start := time.Now()
	var body []byte
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         url,
		QueryParams: params,
	}, &body)
	if c.metrics != nil {
		c.metrics.RecordDuration("fetch", time.Since(start).Seconds())
		if err != nil {
			c.metrics.RecordFetchError(url)
		} else {
			c.metrics.RecordFetch(url)
		}
	}
	if err != nil {
		return err
	}

	if c.cache != nil {
		_ = c.cache.Set(ctx, key, body, c.cacheTTL)
	}
	return decodeCached(body, dest)
}

func decodeCached(b []byte, dest interface{}) error {
	if raw, ok := dest.(*[]byte); ok {
		*raw = b
		return nil
	}
	return json.Unmarshal(b, dest)
}

func cacheKey(url string, params map[string][]string) string {
	key := url
	for _, vs := range params {
		for _, v := range vs {
			key += "?" + v
		}
	}
	return key
}

func (c *Client) warnFetch(url string, err error) {
	if c.logger != nil {
		c.logger.Warn("hydromet fetch failed; continuing with empty result",
			xlogger.String("url", url),
			xlogger.Error(err),
		)
	}
}

// decodeRecords converts wire records into observations. Records whose date
// does not parse, or that carry no recognized numeric field, are dropped.
func decodeRecords(records []apiRecord) []models.Observation {
	obs := make([]models.Observation, 0, len(records))
	for _, r := range records {
		ts, ok := util.ParseDate(r.Date)
		if !ok {
			continue
		}
		o := models.Observation{
			Timestamp: ts,
			Value:     r.Value,
			StepIn:    r.StepIn,
			StepOut:   r.StepOut,
			StepRate:  r.StepRate,
		}
		if o.Empty() {
			continue
		}
		obs = append(obs, o)
	}
	return obs
}
