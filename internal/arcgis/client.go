package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/openpermits/permitdash/internal/model"
)

// Client fetches permit records from an ArcGIS feature-query layer.
// It is stateless: every Fetch stands alone and is safe to repeat.
type Client struct {
	httpClient *http.Client
	endpoint   model.EndpointConfig
	userAgent  string
	maxBytes   int64
	limiter    *rate.Limiter
}

// NewClient creates a new Client with the given configuration
func NewClient(endpoint model.EndpointConfig, httpCfg model.HTTPConfig) *Client {
	rps := httpCfg.RequestsPerSecond
	if rps <= 0 {
		rps = 4
	}
	maxBytes := httpCfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 16 << 20
	}
	return &Client{
		httpClient: &http.Client{Timeout: httpCfg.Timeout},
		endpoint:   endpoint,
		userAgent:  httpCfg.UserAgent,
		maxBytes:   maxBytes,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// featurePage is one page of the query response
type featurePage struct {
	Features []feature  `json:"features"`
	Error    *pageError `json:"error"`
}

type feature struct {
	Attributes attributes `json:"attributes"`
	Geometry   *geometry  `json:"geometry"`
}

// attributes carries the requested field projection. The server sends
// null for absent values, which leaves the zero value in place.
type attributes struct {
	IssueDate    *int64 `json:"ISSUE_DATE"`
	Description  string `json:"DESCRIPTION"`
	Comments     string `json:"COMMENTS"`
	Type         string `json:"TYPE"`
	Activity     string `json:"BLDB_ACTIVITY_1"`
	BuildingType string `json:"BLD_Type"`
	Occupancy    string `json:"Occupancy"`
	PermitStatus string `json:"PmtStatus"`
}

type geometry struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type pageError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Fetch retrieves every record issued within the date range, both
// bounds inclusive, sorted descending by issue date. A failed page
// aborts the whole fetch; there is no retry and no partial result.
func (c *Client) Fetch(ctx context.Context, dateRange model.DateRange) ([]model.PermitRecord, error) {
	var records []model.PermitRecord

	where := whereClause(dateRange)
	for page := 0; page < c.endpoint.MaxPages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		rows, err := c.fetchPage(ctx, where, page*c.endpoint.PageSize)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		records = append(records, rows...)

		// A short page means the server has no more data.
		if len(rows) < c.endpoint.PageSize {
			model.SortByIssueDateDesc(records)
			return records, nil
		}
	}

	return nil, ErrPaginationExceeded
}

func (c *Client) fetchPage(ctx context.Context, where string, offset int) ([]model.PermitRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	q := url.Values{}
	q.Set("outFields", strings.Join(c.endpoint.OutFields, ","))
	q.Set("outSR", strconv.Itoa(c.endpoint.OutSR))
	q.Set("resultOffset", strconv.Itoa(offset))
	q.Set("resultRecordCount", strconv.Itoa(c.endpoint.PageSize))
	q.Set("where", where)
	q.Set("f", "json")
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	// Read body with size limit. An oversized page truncates and
	// fails JSON decoding rather than exhausting memory.
	limitedReader := io.LimitReader(resp.Body, c.maxBytes)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var parsed featurePage
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	// ArcGIS reports query failures inside a 200 response.
	if parsed.Error != nil {
		return nil, &ServerError{Code: parsed.Error.Code, Message: parsed.Error.Message}
	}

	rows := make([]model.PermitRecord, 0, len(parsed.Features))
	for _, f := range parsed.Features {
		rows = append(rows, mergeFeature(f))
	}
	return rows, nil
}

// mergeFeature flattens a feature's attributes and optional geometry
// into a single record, converting the epoch-millisecond issue date.
func mergeFeature(f feature) model.PermitRecord {
	rec := model.PermitRecord{
		Description:  f.Attributes.Description,
		Comments:     f.Attributes.Comments,
		Type:         f.Attributes.Type,
		Activity:     f.Attributes.Activity,
		BuildingType: f.Attributes.BuildingType,
		Occupancy:    f.Attributes.Occupancy,
		PermitStatus: f.Attributes.PermitStatus,
	}
	if f.Attributes.IssueDate != nil {
		rec.IssueDate = time.UnixMilli(*f.Attributes.IssueDate).UTC()
	}
	if f.Geometry != nil {
		lon, lat := f.Geometry.X, f.Geometry.Y
		rec.Lon = &lon
		rec.Lat = &lat
	}
	return rec
}

// whereClause builds the server-side date filter, inclusive at both
// ends of the calendar day.
// https://developers.arcgis.com/rest/services-reference/enterprise/query-feature-service-layer/#date-time-queries
func whereClause(dateRange model.DateRange) string {
	return fmt.Sprintf(
		"ISSUE_DATE >= TIMESTAMP '%s 00:00:00' AND ISSUE_DATE <= TIMESTAMP '%s 23:59:59'",
		dateRange.Start.Format("2006-01-02"),
		dateRange.End.Format("2006-01-02"),
	)
}

