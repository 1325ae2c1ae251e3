// Package quake 计算每日最深地震与附近最高山峰的高度/深度比
package quake

import (
	"sort"
	"strings"

	"github.com/iWorld-y/trial_radar/app/quake_ratio/pkg/usgs"
)

// Skip reasons
const (
	ReasonUnknownPlace     = "no mountain height for place"
	ReasonNonPositiveDepth = "depth is not positive"
)

// Ratio 某一天最深地震的高度/深度比
type Ratio struct {
	Date        string // YYYY-MM-DD (UTC)
	EventID     string
	Place       string
	Keyword     string
	Height      float64 // 米
	DepthMeters float64
	Value       float64
}

// Skip 未参与计算的事件
type Skip struct {
	Date   string
	Place  string
	Reason string
}

// DeepestPerDay 按 UTC 日期分组，返回每天深度最大的事件，按日期升序。
// 同一天深度相同时取输入顺序中的第一个
func DeepestPerDay(events []usgs.Event) []usgs.Event {
	byDay := make(map[string]usgs.Event)
	for _, ev := range events {
		day := ev.Time.UTC().Format("2006-01-02")
		best, ok := byDay[day]
		if !ok || ev.Depth > best.Depth {
			byDay[day] = ev
		}
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)

	out := make([]usgs.Event, 0, len(days))
	for _, d := range days {
		out = append(out, byDay[d])
	}
	return out
}

// HeightFor 按表顺序做不区分大小写的子串匹配，第一个命中的关键字生效
func HeightFor(place string, mountains []Mountain) (Mountain, bool) {
	p := strings.ToLower(place)
	for _, m := range mountains {
		if strings.Contains(p, strings.ToLower(m.Keyword)) {
			return m, true
		}
	}
	return Mountain{}, false
}

// Ratios 计算每个事件的高度/深度比，地名无对应高度或深度不为正的事件被跳过
func Ratios(deepest []usgs.Event, mountains []Mountain) ([]Ratio, []Skip) {
	var (
		ratios  []Ratio
		skipped []Skip
	)
	for _, ev := range deepest {
		day := ev.Time.UTC().Format("2006-01-02")
		m, ok := HeightFor(ev.Place, mountains)
		if !ok {
			skipped = append(skipped, Skip{Date: day, Place: ev.Place, Reason: ReasonUnknownPlace})
			continue
		}
		depth := ev.Depth * 1000
		if depth <= 0 {
			skipped = append(skipped, Skip{Date: day, Place: ev.Place, Reason: ReasonNonPositiveDepth})
			continue
		}
		ratios = append(ratios, Ratio{
			Date:        day,
			EventID:     ev.ID,
			Place:       ev.Place,
			Keyword:     m.Keyword,
			Height:      m.Height,
			DepthMeters: depth,
			Value:       m.Height / depth,
		})
	}
	return ratios, skipped
}
