package aggregate

import (
	"errors"

	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/model"
)

// 与基线对比后的状态
const (
	StatusHighSelectivity = "High Selectivity"
	StatusBroadAccess     = "Broad Access"
	StatusNeutral         = "Neutral"
)

// ErrNoScoredTrials 没有任何可评分的试验
var ErrNoScoredTrials = errors.New("no trials with valid eligibility criteria")

// Summary 汇总结果
type Summary struct {
	Count    int
	Average  float64
	Baseline float64
	Delta    float64 // Average - Baseline
	Status   string
	Highest  model.ScoredTrial
}

// Classify 将平均分与基线比较
func Classify(avg, baseline float64) string {
	switch {
	case avg > baseline:
		return StatusHighSelectivity
	case avg < baseline:
		return StatusBroadAccess
	default:
		return StatusNeutral
	}
}

// Average 计算平均分，空输入返回 ErrNoScoredTrials
func Average(trials []model.ScoredTrial) (float64, error) {
	if len(trials) == 0 {
		return 0, ErrNoScoredTrials
	}
	var sum float64
	for _, t := range trials {
		sum += t.Score
	}
	return sum / float64(len(trials)), nil
}

// Highest 返回评分最高的试验，并列时取最先出现的
func Highest(trials []model.ScoredTrial) (model.ScoredTrial, error) {
	if len(trials) == 0 {
		return model.ScoredTrial{}, ErrNoScoredTrials
	}
	best := trials[0]
	for _, t := range trials[1:] {
		if t.Score > best.Score {
			best = t
		}
	}
	return best, nil
}

// Summarize 计算平均分、状态和最高门槛试验
func Summarize(trials []model.ScoredTrial, baseline float64) (*Summary, error) {
	avg, err := Average(trials)
	if err != nil {
		return nil, err
	}
	highest, err := Highest(trials)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Count:    len(trials),
		Average:  avg,
		Baseline: baseline,
		Delta:    avg - baseline,
		Status:   Classify(avg, baseline),
		Highest:  highest,
	}, nil
}
