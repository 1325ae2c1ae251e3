// Package scorer 计算试验入排标准的门槛评分（排除标准词数 / 纳入标准词数）
package scorer

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/model"
)

// 排除标准小节必须另起一行。文本中出现两次及以上时整条试验被跳过，
// 即使第二次只是正文里的引用，这是已知的精度缺口。
// 标记前的缩进可以是任意 Unicode 空白，包括 \v 和 NBSP。
var exclusionMarker = regexp.MustCompile(`(?i)\n[\s\v\x1c-\x1f\x{85}\p{Z}]*Exclusion Criteria:?`)

const inclusionLabel = "Inclusion Criteria:"

// Skip reasons
const (
	ReasonEmptyText      = "empty eligibility text"
	ReasonNoSplit        = "eligibility text does not split into exactly two sections"
	ReasonEmptyInclusion = "inclusion section has no words"
)

// Result 单条试验的评分结果
type Result struct {
	Score          float64
	InclusionWords int
	ExclusionWords int
	Outcome        model.Outcome // OK 或 Skipped
	Reason         string        // Skipped 时的原因
}

// Split 把入排标准拆成纳入和排除两部分，只有恰好两部分时 ok 为 true
func Split(text string) (inclusion, exclusion string, ok bool) {
	text = strings.ReplaceAll(text, "\r", "\n")
	parts := exclusionMarker.Split(text, -1)
	if len(parts) != 2 {
		return "", "", false
	}
	inclusion = strings.TrimFunc(strings.ReplaceAll(parts[0], inclusionLabel, ""), isSpace)
	exclusion = strings.TrimFunc(parts[1], isSpace)
	return inclusion, exclusion, true
}

// Score 计算门槛评分，不满足条件时 Outcome 为 Skipped 而不是 0 分
func Score(text string) Result {
	if text == "" {
		return Result{Outcome: model.Skipped, Reason: ReasonEmptyText}
	}

	inclusion, exclusion, ok := Split(text)
	if !ok {
		return Result{Outcome: model.Skipped, Reason: ReasonNoSplit}
	}

	inc := countWords(inclusion)
	exc := countWords(exclusion)
	if inc == 0 {
		return Result{ExclusionWords: exc, Outcome: model.Skipped, Reason: ReasonEmptyInclusion}
	}

	return Result{
		Score:          float64(exc) / float64(inc),
		InclusionWords: inc,
		ExclusionWords: exc,
		Outcome:        model.OK,
	}
}

// isSpace 与行首标记使用同一组空白字符
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f) || unicode.Is(unicode.Z, r)
}

func countWords(s string) int {
	return len(strings.FieldsFunc(s, isSpace))
}

// ScoreTrial 对单条试验评分，ok 为 false 表示该试验不参与统计
func ScoreTrial(tr model.TrialRecord) (model.ScoredTrial, Result, bool) {
	r := Score(tr.EligibilityText)
	if r.Outcome != model.OK {
		return model.ScoredTrial{}, r, false
	}
	return model.ScoredTrial{
		NCTID:          tr.NCTID,
		Title:          tr.Title,
		Score:          r.Score,
		InclusionWords: r.InclusionWords,
		ExclusionWords: r.ExclusionWords,
	}, r, true
}
