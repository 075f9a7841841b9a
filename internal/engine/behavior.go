package engine

import "math"

// Composite score weights. They must sum to 1.0.
const (
	WeightCQI = 0.22
	WeightCPS = 0.16
	WeightBV  = 0.18
	WeightSMS = 0.16
	WeightSDI = 0.14
	WeightFSR = 0.14
)

var essentialCats = []string{"food", "transport", "bills", "health", "education"}
var comfortCats = []string{"shopping", "travel", "entertainment"}

// BehaviorInput feeds the Financial Behavior Engine. Volume fields are in
// the base currency; Net30 and the daily rates are display-currency values
// matching what the snapshot reports.
type BehaviorInput struct {
	In30Base        float64
	Out30Base       float64
	Out7Base        float64
	Net30           float64
	DailySpend      float64
	DailySpend7     float64
	RunwayDays      *float64
	BalanceBase     float64
	GoalsCount      int
	GoalSavedTotal  float64
	DayOut30Base    map[string]float64
	SpendCat30Base  map[string]float64
}

// Indices are the six normalized behavior sub-indices, each in [0,100].
type Indices struct {
	CQI float64 `json:"cqi"` // cashflow quality
	CPS float64 `json:"cps"` // consumption pattern stability
	BV  float64 `json:"bv"`  // burn velocity
	SMS float64 `json:"sms"` // spending maturity
	SDI float64 `json:"sdi"` // savings discipline
	FSR float64 `json:"fsr"` // financial shock resistance
}

// Behavior is the full FBE output.
type Behavior struct {
	Score       int      `json:"score"`
	Label       string   `json:"label"`     // Rush Zone / Transition Zone / Stable Builder / Rich Mindset
	Narrative   string   `json:"narrative"`
	Style       string   `json:"style"` // Rusher / Drifter / Planner / Builder
	WeekType    string   `json:"week_type"`
	WeekSummary string   `json:"week_summary"`
	Reasons     []string `json:"reasons"`
	Indices     Indices  `json:"indices"`
}

// ComputeBehavior derives the six sub-indices, the weighted composite
// score, the style and band labels, the week pattern and the reason list.
// All thresholds are fixed constants; there are no learned parameters.
func ComputeBehavior(in BehaviorInput) Behavior {
	// ---------- A) Cashflow Quality Index (CQI) ----------
	cqi := 50.0
	switch {
	case in.In30Base <= 0 && in.Out30Base > 0:
		cqi = 20
	case in.In30Base <= 0 && in.Out30Base <= 0:
		cqi = 50
	default:
		den := in.Out30Base
		if den == 0 {
			den = 1
		}
		ratio := in.In30Base / den
		switch {
		case ratio >= 1.4:
			cqi = 90
		case ratio >= 1.2:
			cqi = 80
		case ratio >= 1.0:
			cqi = 65
		case ratio >= 0.7:
			cqi = 45
		default:
			cqi = 25
		}
	}
	cqi = clamp(cqi, 0, 100)

	// ---------- B) Consumption Pattern Stability (CPS) ----------
	cps := 50.0
	if len(in.DayOut30Base) == 0 {
		cps = 60
	} else {
		dayKeys := sortedKeys(in.DayOut30Base)
		var sum float64
		for _, k := range dayKeys {
			sum += in.DayOut30Base[k]
		}
		mean := sum / float64(len(in.DayOut30Base))
		if mean <= 0 {
			cps = 60
		} else {
			var variance float64
			for _, k := range dayKeys {
				v := in.DayOut30Base[k]
				variance += (v - mean) * (v - mean)
			}
			variance /= float64(len(in.DayOut30Base))
			cv := math.Sqrt(variance) / mean

			switch {
			case cv > 1.2:
				cps = 30
			case cv > 0.7:
				cps = 50
			case cv > 0.3:
				cps = 75
			default:
				cps = 90
			}
		}
	}
	cps = clamp(cps, 0, 100)

	// ---------- C) Burn Velocity (BV) ----------
	bv := 50.0
	switch {
	case in.BalanceBase <= 0 && in.Out30Base > 0:
		bv = 20
	case in.Out30Base <= 0:
		bv = 70
	default:
		// +1 guards the zero-balance division, it is not a currency unit
		burnRatio := in.Out30Base / (in.BalanceBase + 1)
		switch {
		case burnRatio > 1.5:
			bv = 20
		case burnRatio > 1.0:
			bv = 35
		case burnRatio > 0.5:
			bv = 60
		case burnRatio > 0.2:
			bv = 80
		default:
			bv = 92
		}
	}
	bv = clamp(bv, 0, 100)

	// ---------- D) Spending Maturity Score (SMS) ----------
	sms := 50.0
	catKeys := sortedKeys(in.SpendCat30Base)
	var totalSpend float64
	for _, k := range catKeys {
		totalSpend += in.SpendCat30Base[k]
	}
	if totalSpend <= 0 {
		sms = 60
	} else {
		var essential, waste float64
		for _, code := range catKeys {
			v := in.SpendCat30Base[code]
			switch {
			case contains(essentialCats, code):
				essential += v
			case contains(comfortCats, code):
				// comfort spending counts as neither essential nor waste
			default:
				waste += v
			}
		}

		eShare := essential / totalSpend
		wShare := waste / totalSpend
		switch {
		case eShare >= 0.6 && wShare <= 0.1:
			sms = 90
		case eShare >= 0.5 && wShare <= 0.2:
			sms = 75
		case eShare >= 0.4 && wShare <= 0.3:
			sms = 60
		default:
			sms = 40
		}
	}
	sms = clamp(sms, 0, 100)

	// ---------- E) Savings Discipline Index (SDI) ----------
	sdi := 50.0
	if in.Net30 <= 0 {
		sdi = 30
	} else if in.GoalsCount == 0 {
		sdi = 60
	} else {
		targetSaved := in.Net30 * 0.5
		switch {
		case in.GoalSavedTotal >= targetSaved && targetSaved > 0:
			sdi = 88
		case in.GoalSavedTotal > 0:
			sdi = 72
		default:
			sdi = 58
		}
	}
	sdi = clamp(sdi, 0, 100)

	// ---------- F) Financial Shock Resistance (FSR) ----------
	fsr := 50.0
	switch {
	case in.RunwayDays == nil || *in.RunwayDays <= 0:
		fsr = 30
	case *in.RunwayDays < 15:
		fsr = 30
	case *in.RunwayDays < 30:
		fsr = 45
	case *in.RunwayDays < 60:
		fsr = 60
	case *in.RunwayDays < 120:
		fsr = 80
	default:
		fsr = 95
	}
	fsr = clamp(fsr, 0, 100)

	// ---------- Overall Behavior Score ----------
	score := cqi*WeightCQI + cps*WeightCPS + bv*WeightBV +
		sms*WeightSMS + sdi*WeightSDI + fsr*WeightFSR
	score = clamp(score, 0, 100)

	// ---------- Behavior Style + Week Type ----------
	style := "Drifter"
	switch {
	case score < 35:
		style = "Rusher"
	case score < 55:
		style = "Drifter"
	case score < 75:
		style = "Planner"
	default:
		style = "Builder"
	}

	weekType := "normal"
	weekSummary := "A normal week with no extreme spending or income pattern."

	var refDay30, refDay7 float64
	if in.Out30Base > 0 {
		refDay30 = in.Out30Base / 30
	}
	if in.Out7Base > 0 {
		refDay7 = in.Out7Base / 7
	}
	spendFactor := 1.0
	if refDay30 > 0 {
		spendFactor = refDay7 / refDay30
	}

	switch {
	case in.Out30Base <= 0 && in.Out7Base > 0:
		weekType = "reentry"
		weekSummary = "First real spending week after a long quiet stretch. Watch your pattern from the start."
	case spendFactor > 1.4 && in.Net30 < 0:
		weekType = "overspending"
		weekSummary = "Spending ran above normal this week with negative net flow. Calm the expenses now and stick to essentials."
	case spendFactor < 0.6 && in.Net30 >= 0:
		weekType = "light"
		weekSummary = "A light spending week with positive net flow. A great window to boost savings or pay down some debt."
	case in.Net30 > 0 && in.DailySpend7 < in.DailySpend:
		weekType = "improving"
		weekSummary = "This week beats your average: lower spend and higher net. Keep the same pattern."
	}

	// ---------- Score narrative + reasons ----------
	var reasons []string
	if cqi < 40 {
		reasons = append(reasons, "Cashflow quality is weak: spending outpaced income over the recent period.")
	} else if cqi > 75 {
		reasons = append(reasons, "Cashflow is healthy: income covers spending with a safety margin.")
	}
	if cps < 45 {
		reasons = append(reasons, "Daily spending swings between heavy days and near-zero days. Smoothing the pattern would help.")
	} else if cps > 75 {
		reasons = append(reasons, "The spending pattern is fairly stable, which makes your position easier to project.")
	}
	if bv < 40 {
		reasons = append(reasons, "Balance burn is fast relative to its size. Even a small shock would hit financial safety directly.")
	} else if bv > 75 {
		reasons = append(reasons, "Burn velocity is low: the balance declines slowly under this spending pattern.")
	}
	if sms < 50 {
		reasons = append(reasons, "A noticeable share of spending goes to comfort and waste rather than essentials.")
	} else if sms > 75 {
		reasons = append(reasons, "Most spending goes to essentials with good control over extras.")
	}
	if sdi < 45 {
		reasons = append(reasons, "Saving is irregular or nearly absent despite some income.")
	} else if sdi > 75 {
		reasons = append(reasons, "There is clear discipline in saving and building financial goals.")
	}
	if fsr < 45 {
		reasons = append(reasons, "Weak capacity to absorb shocks: the runway is short.")
	} else if fsr > 75 {
		reasons = append(reasons, "Good shock resistance thanks to a comfortable runway.")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "Not enough data yet, or the pattern is balanced without clear strong or weak points.")
	}

	label := "Transition Zone"
	narrative := "Wallet behavior sits in a transition zone between rush and rich."
	switch {
	case score < 30:
		label = "Rush Zone"
		narrative = "The data shows a clear rush pattern: fast balance burn, weak saving, and high sensitivity to any financial shock."
	case score < 60:
		label = "Transition Zone"
		narrative = "Behavior in the grey zone: not alarming, but not enough to build real wealth or safety."
	case score < 85:
		label = "Stable Builder"
		narrative = "Stable behavior leaning toward wealth building, with good spending control and some saving discipline."
	default:
		label = "Rich Mindset"
		narrative = "This wallet runs with a rich mindset: healthy cashflow, clear saving, and strong shock tolerance."
	}

	return Behavior{
		Score:       int(math.Round(score)),
		Label:       label,
		Narrative:   narrative,
		Style:       style,
		WeekType:    weekType,
		WeekSummary: weekSummary,
		Reasons:     reasons,
		Indices: Indices{
			CQI: cqi,
			CPS: cps,
			BV:  bv,
			SMS: sms,
			SDI: sdi,
			FSR: fsr,
		},
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
