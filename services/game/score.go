package game

import "math"

// Performance tiers assigned by the score calculator, best first.
const (
	PerformanceMaster       = "MASTER"
	PerformanceExpert       = "EXPERT"
	PerformanceAdvanced     = "ADVANCED"
	PerformanceIntermediate = "INTERMEDIATE"
	PerformanceNovice       = "NOVICE"
)

// Efficiency labels reported in the auxiliary game stats.
const (
	EfficiencyProductive = "PRODUCTIVE"
	EfficiencyNoProgress = "NO_PROGRESS"
)

// ScoreInput carries the raw session statistics the calculator consumes.
// BaseTime defaults to BaseTimeSeconds when zero.
type ScoreInput struct {
	StickersFound int `json:"stickers_found"`
	TimePlayed    int `json:"time_played"`
	TimeBonus     int `json:"time_bonus"`
	BaseTime      int `json:"base_time"`
}

// ScoreBreakdown itemizes how the final score was assembled.
type ScoreBreakdown struct {
	BaseStickerPoints int     `json:"base_sticker_points"`
	TimeBonusPoints   int     `json:"time_bonus_points"`
	EfficiencyBonus   int     `json:"efficiency_bonus"`
	TimePenalty       int     `json:"time_penalty"`
	EfficiencyRate    float64 `json:"efficiency_rate"`
}

// ScoreResult is the outcome of a score calculation.
type ScoreResult struct {
	FinalScore  int            `json:"final_score"`
	Breakdown   ScoreBreakdown `json:"breakdown"`
	Performance string         `json:"performance"`
}

// GameStats are auxiliary statistics derived from the same inputs.
type GameStats struct {
	AverageTimePerSticker float64 `json:"average_time_per_sticker"`
	BonusTimePercentage   float64 `json:"bonus_time_percentage"`
	TotalInteractions     int     `json:"total_interactions"`
	GameEfficiency        string  `json:"game_efficiency"`
}

// CalculateScore converts raw session statistics into a final score, a
// breakdown, and a performance tier. Pure function, no I/O.
//
// Scoring: 100 points per sticker found, 10 per second of earned bonus
// time, an efficiency bonus by stickers-per-minute band, and a 5-points-
// per-second penalty for play beyond BaseTime+TimeBonus. The result is
// clamped at zero. A zero TimePlayed is defined to yield an efficiency
// rate of 0 rather than dividing by zero.
func CalculateScore(in ScoreInput) ScoreResult {
	if in.BaseTime == 0 {
		in.BaseTime = BaseTimeSeconds
	}

	basePoints := in.StickersFound * 100
	bonusPoints := in.TimeBonus * 10

	rate := 0.0
	if in.TimePlayed > 0 {
		rate = float64(in.StickersFound) / (float64(in.TimePlayed) / 60)
	}

	efficiencyBonus := 0
	switch {
	case rate >= 2:
		efficiencyBonus = 200
	case rate >= 1.5:
		efficiencyBonus = 150
	case rate >= 1:
		efficiencyBonus = 100
	case rate >= 0.5:
		efficiencyBonus = 50
	}

	penalty := 0
	maxAllowed := in.BaseTime + in.TimeBonus
	if in.TimePlayed > maxAllowed {
		penalty = (in.TimePlayed - maxAllowed) * 5
	}

	finalScore := basePoints + bonusPoints + efficiencyBonus - penalty
	if finalScore < 0 {
		finalScore = 0
	}

	return ScoreResult{
		FinalScore: finalScore,
		Breakdown: ScoreBreakdown{
			BaseStickerPoints: basePoints,
			TimeBonusPoints:   bonusPoints,
			EfficiencyBonus:   efficiencyBonus,
			TimePenalty:       penalty,
			EfficiencyRate:    round2(rate),
		},
		Performance: performanceRating(rate, finalScore),
	}
}

// performanceRating picks the highest matching tier.
func performanceRating(rate float64, finalScore int) string {
	switch {
	case finalScore >= 1000 && rate >= 2:
		return PerformanceMaster
	case finalScore >= 700 && rate >= 1.5:
		return PerformanceExpert
	case finalScore >= 400 && rate >= 1:
		return PerformanceAdvanced
	case finalScore >= 200:
		return PerformanceIntermediate
	default:
		return PerformanceNovice
	}
}

// CalculateGameStats derives secondary statistics for the finished session.
// Average time per sticker is 0 when nothing was found, and the bonus time
// percentage is 0 when TimePlayed is 0.
func CalculateGameStats(in ScoreInput) GameStats {
	avg := 0.0
	if in.StickersFound > 0 {
		avg = float64(in.TimePlayed) / float64(in.StickersFound)
	}

	bonusPct := 0.0
	if in.TimePlayed > 0 {
		bonusPct = float64(in.TimeBonus) / float64(in.TimePlayed) * 100
	}

	label := EfficiencyNoProgress
	if in.StickersFound > 0 {
		label = EfficiencyProductive
	}

	return GameStats{
		AverageTimePerSticker: round2(avg),
		BonusTimePercentage:   round1(bonusPct),
		TotalInteractions:     in.StickersFound,
		GameEfficiency:        label,
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round1(v float64) float64 { return math.Round(v*10) / 10 }
