package registry

import "context"

// Registry 定义试验注册库的检索接口
type Registry interface {
	SearchStudies(ctx context.Context, req *SearchRequest) (*SearchPage, error)
	GetStudy(ctx context.Context, nctID string) (*Study, error)
}

// SearchRequest 单页检索请求
type SearchRequest struct {
	Condition string
	StudyType string // 例如 INTERVENTIONAL
	StartDate string // Format: YYYY-MM-DD
	EndDate   string // Format: YYYY-MM-DD
	PageSize  int
	PageToken string // 为空表示第一页
}

// SearchPage 单页检索结果
type SearchPage struct {
	Studies       []Study
	NextPageToken string // 为空表示没有更多结果
}

// Study 单条试验记录，只保留需要的字段
type Study struct {
	NCTID           string
	Title           string
	EligibilityText string
	Locations       []Location
}

// Location 研究中心
type Location struct {
	Facility string
	City     string
	State    string
	Country  string
}
