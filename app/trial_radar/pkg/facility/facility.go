package facility

import (
	"context"
	"errors"
	"fmt"

	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/model"
	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/registry"
)

var errNoLocations = errors.New("study has no locations")

// Result 研究中心查询结果。Info 总是完整的，失败时为全 Unknown 占位记录
type Result struct {
	Info    model.FacilityInfo
	Outcome model.Outcome // OK / Skipped（没有位置数据）/ Degraded（查询失败）
	Err     error
}

// Lookup 查询试验的首个研究中心，任何失败都不会向上返回错误
func Lookup(ctx context.Context, reg registry.Registry, nctID string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Info: model.UnknownFacility(), Outcome: model.Degraded, Err: fmt.Errorf("facility lookup panic: %v", r)}
		}
	}()

	study, err := reg.GetStudy(ctx, nctID)
	if err != nil {
		return Result{Info: model.UnknownFacility(), Outcome: model.Degraded, Err: err}
	}
	if study == nil || len(study.Locations) == 0 {
		return Result{Info: model.UnknownFacility(), Outcome: model.Skipped, Err: errNoLocations}
	}
	return Result{Info: FromLocation(study.Locations[0]), Outcome: model.OK}
}

// FromLocation 映射位置字段，州/省缺失时回退到国家
func FromLocation(loc registry.Location) model.FacilityInfo {
	state := loc.State
	if state == "" {
		state = loc.Country
	}
	return model.FacilityInfo{
		FacilityName:  orUnknown(loc.Facility),
		City:          orUnknown(loc.City),
		StateProvince: orUnknown(state),
		Country:       orUnknown(loc.Country),
	}
}

func orUnknown(s string) string {
	if s == "" {
		return model.Unknown
	}
	return s
}
