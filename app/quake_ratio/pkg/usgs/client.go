package usgs

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
)

const DefaultBaseURL = "https://earthquake.usgs.gov/fdsnws/event/1"

// Client USGS FDSN 事件查询客户端
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient 创建客户端，timeout 单位为秒，<=0 时使用 30 秒
func NewClient(baseURL string, timeout int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

// QueryRequest 查询参数，时间格式为 2006-01-02T15:04:05
type QueryRequest struct {
	StartTime    string
	EndTime      string
	MinMagnitude float64
}

// Event 单个地震事件
type Event struct {
	ID        string
	Time      time.Time // UTC
	Place     string
	Magnitude float64
	Depth     float64 // 千米
}

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID         string `json:"id"`
	Properties struct {
		Time  int64    `json:"time"` // 毫秒时间戳
		Place *string  `json:"place"`
		Mag   *float64 `json:"mag"`
	} `json:"properties"`
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // 经度, 纬度, 深度
	} `json:"geometry"`
}

// Query 按时间范围和最小震级查询事件，结果按时间倒序
func (c *Client) Query(ctx context.Context, req *QueryRequest) ([]Event, error) {
	u, err := url.Parse(c.baseURL + "/query")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("format", "geojson")
	q.Set("starttime", req.StartTime)
	q.Set("endtime", req.EndTime)
	q.Set("minmagnitude", strconv.FormatFloat(req.MinMagnitude, 'f', -1, 64))
	q.Set("orderby", "time")
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 500))
		return nil, fmt.Errorf("usgs api error (status %d): %s", res.StatusCode, string(body))
	}

	var fc featureCollection
	if err := json.NewDecoder(res.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}

	events := make([]Event, 0, len(fc.Features))
	for _, f := range fc.Features {
		if len(f.Geometry.Coordinates) < 3 {
			continue
		}
		ev := Event{
			ID:    f.ID,
			Time:  time.UnixMilli(f.Properties.Time).UTC(),
			Depth: f.Geometry.Coordinates[2],
		}
		if f.Properties.Place != nil {
			ev.Place = *f.Properties.Place
		}
		if f.Properties.Mag != nil {
			ev.Magnitude = *f.Properties.Mag
		}
		events = append(events, ev)
	}
	return events, nil
}
