package ctgov

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

	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/model"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/registry"
)

// Client ClinicalTrials.gov v2 API 客户端
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient 创建一个新的 ClinicalTrials.gov 客户端
func NewClient(baseURL string, timeout int) *Client {
	t := time.Duration(timeout) * time.Second
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: t,
		},
	}
}

// Ensure Client implements registry.Registry
var _ registry.Registry = (*Client)(nil)

// studiesResponse /studies 响应结构
type studiesResponse struct {
	Studies       []study `json:"studies"`
	NextPageToken string  `json:"nextPageToken"`
}

type study struct {
	ProtocolSection protocolSection `json:"protocolSection"`
}

type protocolSection struct {
	IdentificationModule struct {
		NCTID      string `json:"nctId"`
		BriefTitle string `json:"briefTitle"`
	} `json:"identificationModule"`
	EligibilityModule struct {
		EligibilityCriteria string `json:"eligibilityCriteria"`
	} `json:"eligibilityModule"`
	ContactsLocationsModule struct {
		Locations []location `json:"locations"`
	} `json:"contactsLocationsModule"`
}

type location struct {
	Facility string `json:"facility"`
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `json:"country"`
}

// SearchQueryTerm 构造按研究类型和首次发布日期过滤的 query.term
func SearchQueryTerm(studyType, startDate, endDate string) string {
	return fmt.Sprintf("AREA[StudyType]%s AND AREA[StudyFirstPostDate]RANGE[%s,%s]", studyType, startDate, endDate)
}

// SearchStudies 获取一页检索结果
func (c *Client) SearchStudies(ctx context.Context, req *registry.SearchRequest) (*registry.SearchPage, error) {
	u, err := url.Parse(c.baseURL + "/studies")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	q := u.Query()
	q.Set("query.cond", req.Condition)
	q.Set("query.term", SearchQueryTerm(req.StudyType, req.StartDate, req.EndDate))
	q.Set("pageSize", strconv.Itoa(req.PageSize))
	q.Set("format", "json")
	if req.PageToken != "" {
		q.Set("pageToken", req.PageToken)
	}
	u.RawQuery = q.Encode()

	var resp studiesResponse
	if err := c.getJSON(ctx, u.String(), &resp); err != nil {
		return nil, err
	}

	page := &registry.SearchPage{NextPageToken: resp.NextPageToken}
	for _, s := range resp.Studies {
		page.Studies = append(page.Studies, s.toStudy())
	}
	return page, nil
}

// GetStudy 按 NCT 编号获取单条完整记录
func (c *Client) GetStudy(ctx context.Context, nctID string) (*registry.Study, error) {
	if strings.TrimSpace(nctID) == "" {
		return nil, fmt.Errorf("empty nct id")
	}

	var s study
	if err := c.getJSON(ctx, c.baseURL+"/studies/"+url.PathEscape(nctID), &s); err != nil {
		return nil, err
	}
	out := s.toStudy()
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 500))
		return &StatusError{Code: res.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response failed: %w", err)
	}
	return nil
}

// StatusError 非 200 响应
type StatusError struct {
	Code int
	Body string // 最多 500 字节
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("clinicaltrials.gov api error (status %d): %s", e.Code, e.Body)
}

func (s study) toStudy() registry.Study {
	p := s.ProtocolSection
	out := registry.Study{
		NCTID:           orUnknown(p.IdentificationModule.NCTID),
		Title:           orUnknown(p.IdentificationModule.BriefTitle),
		EligibilityText: p.EligibilityModule.EligibilityCriteria,
	}
	for _, l := range p.ContactsLocationsModule.Locations {
		out.Locations = append(out.Locations, registry.Location{
			Facility: l.Facility,
			City:     l.City,
			State:    l.State,
			Country:  l.Country,
		})
	}
	return out
}

func orUnknown(s string) string {
	if s == "" {
		return model.Unknown
	}
	return s
}
