package engine

import (
	"math"
	"testing"
)

func runwayOf(v float64) *float64 { return &v }

func TestWeights_SumToOne(t *testing.T) {
	sum := WeightCQI + WeightCPS + WeightBV + WeightSMS + WeightSDI + WeightFSR
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("weights sum = %f, want 1.0", sum)
	}
}

func TestCQI_OutflowOnlyIsTwenty(t *testing.T) {
	b := ComputeBehavior(BehaviorInput{
		Out30Base: 500,
		Net30:     -500,
	})
	if b.Indices.CQI != 20 {
		t.Errorf("CQI = %f, want 20 for outflow-only history", b.Indices.CQI)
	}
}

func TestCQI_NoActivityIsNeutral(t *testing.T) {
	b := ComputeBehavior(BehaviorInput{})
	if b.Indices.CQI != 50 {
		t.Errorf("CQI = %f, want 50 with no income and no outflow", b.Indices.CQI)
	}
}

func TestCQI_RatioTiers(t *testing.T) {
	cases := []struct {
		in, out float64
		want    float64
	}{
		{1400, 1000, 90},
		{1200, 1000, 80},
		{1000, 1000, 65},
		{700, 1000, 45},
		{500, 1000, 25},
	}
	for _, tc := range cases {
		b := ComputeBehavior(BehaviorInput{In30Base: tc.in, Out30Base: tc.out, Net30: tc.in - tc.out})
		if b.Indices.CQI != tc.want {
			t.Errorf("CQI(in=%f out=%f) = %f, want %f", tc.in, tc.out, b.Indices.CQI, tc.want)
		}
	}
}

func TestCPS_EmptyHistoryIsSixty(t *testing.T) {
	b := ComputeBehavior(BehaviorInput{})
	if b.Indices.CPS != 60 {
		t.Errorf("CPS = %f, want 60 for empty history", b.Indices.CPS)
	}
	if b.WeekType == "reentry" {
		t.Errorf("week type = reentry for empty history, want anything else")
	}
}

func TestCPS_StableDays(t *testing.T) {
	days := map[string]float64{
		"2026-08-01": 100,
		"2026-08-02": 100,
		"2026-08-03": 100,
	}
	b := ComputeBehavior(BehaviorInput{Out30Base: 300, DayOut30Base: days})
	if b.Indices.CPS != 90 {
		t.Errorf("CPS = %f, want 90 for flat daily spend", b.Indices.CPS)
	}
}

func TestBV_Tiers(t *testing.T) {
	// no outflow is a fixed neutral-high value
	b := ComputeBehavior(BehaviorInput{BalanceBase: 1000})
	if b.Indices.BV != 70 {
		t.Errorf("BV = %f, want 70 with no outflow", b.Indices.BV)
	}

	// burn above balance
	b = ComputeBehavior(BehaviorInput{BalanceBase: 0, Out30Base: 100, Net30: -100})
	if b.Indices.BV != 20 {
		t.Errorf("BV = %f, want 20 with zero balance and outflow", b.Indices.BV)
	}

	// slow burn: 100 out against 10000 balance
	b = ComputeBehavior(BehaviorInput{BalanceBase: 10000, Out30Base: 100, Net30: -100})
	if b.Indices.BV != 92 {
		t.Errorf("BV = %f, want 92 for slow burn", b.Indices.BV)
	}
}

func TestSMS_EssentialShare(t *testing.T) {
	b := ComputeBehavior(BehaviorInput{
		Out30Base: 100,
		SpendCat30Base: map[string]float64{
			"food":  70,
			"bills": 25,
			"misc":  5,
		},
	})
	if b.Indices.SMS != 90 {
		t.Errorf("SMS = %f, want 90 for essential-heavy spend", b.Indices.SMS)
	}

	b = ComputeBehavior(BehaviorInput{
		Out30Base: 100,
		SpendCat30Base: map[string]float64{
			"general": 80,
			"food":    20,
		},
	})
	if b.Indices.SMS != 40 {
		t.Errorf("SMS = %f, want 40 for waste-heavy spend", b.Indices.SMS)
	}
}

func TestSDI_NegativeNetIsThirty(t *testing.T) {
	b := ComputeBehavior(BehaviorInput{In30Base: 1000, Out30Base: 1200, Net30: -200})
	if b.Indices.SDI != 30 {
		t.Errorf("SDI = %f, want 30 for negative net", b.Indices.SDI)
	}
}

func TestSDI_GoalTiers(t *testing.T) {
	// positive net, no goals
	b := ComputeBehavior(BehaviorInput{In30Base: 1000, Net30: 1000})
	if b.Indices.SDI != 60 {
		t.Errorf("SDI = %f, want 60 with no goals and positive net", b.Indices.SDI)
	}

	// saved at least half of net30
	b = ComputeBehavior(BehaviorInput{In30Base: 1000, Net30: 1000, GoalsCount: 1, GoalSavedTotal: 600})
	if b.Indices.SDI != 88 {
		t.Errorf("SDI = %f, want 88 when saved >= net/2", b.Indices.SDI)
	}

	// partial saving
	b = ComputeBehavior(BehaviorInput{In30Base: 1000, Net30: 1000, GoalsCount: 1, GoalSavedTotal: 100})
	if b.Indices.SDI != 72 {
		t.Errorf("SDI = %f, want 72 for partial saving", b.Indices.SDI)
	}

	// goals exist but nothing saved
	b = ComputeBehavior(BehaviorInput{In30Base: 1000, Net30: 1000, GoalsCount: 1})
	if b.Indices.SDI != 58 {
		t.Errorf("SDI = %f, want 58 with goals but no saving", b.Indices.SDI)
	}
}

func TestFSR_RunwayTiers(t *testing.T) {
	cases := []struct {
		runway *float64
		want   float64
	}{
		{nil, 30},
		{runwayOf(0), 30},
		{runwayOf(12.5), 30},
		{runwayOf(20), 45},
		{runwayOf(45), 60},
		{runwayOf(90), 80},
		{runwayOf(200), 95},
	}
	for _, tc := range cases {
		b := ComputeBehavior(BehaviorInput{RunwayDays: tc.runway})
		if b.Indices.FSR != tc.want {
			t.Errorf("FSR(runway=%v) = %f, want %f", tc.runway, b.Indices.FSR, tc.want)
		}
	}
}

// The scenario from the product notes: 30-day income 1000, outflow 1200,
// balance 500. Ratio 0.833 sits in the >=0.7 tier, net is negative, and
// runway 500/(1200/30)=12.5 days lands in the weakest band.
func TestScenario_ThousandTwelveHundred(t *testing.T) {
	b := ComputeBehavior(BehaviorInput{
		In30Base:    1000,
		Out30Base:   1200,
		Net30:       -200,
		BalanceBase: 500,
		RunwayDays:  runwayOf(12.5),
		DailySpend:  40,
	})

	if b.Indices.CQI != 45 {
		t.Errorf("CQI = %f, want 45 (ratio 0.833 in the >=0.7 tier)", b.Indices.CQI)
	}
	if b.Indices.SDI != 30 {
		t.Errorf("SDI = %f, want 30", b.Indices.SDI)
	}
	if b.Indices.FSR != 30 {
		t.Errorf("FSR = %f, want 30 at runway 12.5", b.Indices.FSR)
	}
}

// Composite is a weighted sum of sub-indices with positive weights, so
// improving one dimension while the rest stay fixed never lowers the score.
func TestComposite_MonotonicInFSR(t *testing.T) {
	base := BehaviorInput{
		In30Base:  1000,
		Out30Base: 800,
		Net30:     200,
	}

	prev := -1
	for _, rw := range []float64{5, 20, 45, 90, 200} {
		in := base
		in.RunwayDays = runwayOf(rw)
		score := ComputeBehavior(in).Score
		if score < prev {
			t.Errorf("score dropped to %d at runway %f (prev %d)", score, rw, prev)
		}
		prev = score
	}
}

func TestWeekPattern_PriorityOrder(t *testing.T) {
	// reentry wins when there is 7-day outflow with zero 30-day outflow
	b := ComputeBehavior(BehaviorInput{Out7Base: 50, Net30: -50})
	if b.WeekType != "reentry" {
		t.Errorf("week type = %q, want reentry", b.WeekType)
	}

	// overspending: 7-day rate well above the 30-day rate with negative net
	b = ComputeBehavior(BehaviorInput{Out30Base: 300, Out7Base: 140, Net30: -100})
	if b.WeekType != "overspending" {
		t.Errorf("week type = %q, want overspending", b.WeekType)
	}

	// light: low weekly rate with non-negative net
	b = ComputeBehavior(BehaviorInput{Out30Base: 300, Out7Base: 35, Net30: 0})
	if b.WeekType != "light" {
		t.Errorf("week type = %q, want light", b.WeekType)
	}

	// improving: positive net and a calmer week than the monthly average
	b = ComputeBehavior(BehaviorInput{
		Out30Base: 300, Out7Base: 65, Net30: 100,
		DailySpend: 10, DailySpend7: 9.3,
	})
	if b.WeekType != "improving" {
		t.Errorf("week type = %q, want improving", b.WeekType)
	}

	// nothing matched
	b = ComputeBehavior(BehaviorInput{Out30Base: 300, Out7Base: 70, Net30: -10})
	if b.WeekType != "normal" {
		t.Errorf("week type = %q, want normal", b.WeekType)
	}
}

func TestStyleAndBandThresholds(t *testing.T) {
	// an all-around weak profile lands in Rusher / Rush Zone
	weak := ComputeBehavior(BehaviorInput{
		Out30Base:   2000,
		Net30:       -2000,
		BalanceBase: 0,
		RunwayDays:  nil,
		DayOut30Base: map[string]float64{
			"2026-08-01": 1900, "2026-08-02": 10, "2026-08-03": 90,
		},
		SpendCat30Base: map[string]float64{"general": 2000},
	})
	if weak.Style != "Rusher" {
		t.Errorf("style = %q, want Rusher (score %d)", weak.Style, weak.Score)
	}
	if weak.Label != "Rush Zone" {
		t.Errorf("label = %q, want Rush Zone (score %d)", weak.Label, weak.Score)
	}

	// a strong profile lands in Builder / Rich Mindset
	strong := ComputeBehavior(BehaviorInput{
		In30Base:       5000,
		Out30Base:      1000,
		Net30:          4000,
		BalanceBase:    50000,
		RunwayDays:     runwayOf(300),
		GoalsCount:     2,
		GoalSavedTotal: 3000,
		DayOut30Base: map[string]float64{
			"2026-08-01": 33, "2026-08-02": 33, "2026-08-03": 34,
		},
		SpendCat30Base: map[string]float64{"food": 700, "bills": 300},
	})
	if strong.Style != "Builder" {
		t.Errorf("style = %q, want Builder (score %d)", strong.Style, strong.Score)
	}
	if strong.Label != "Rich Mindset" {
		t.Errorf("label = %q, want Rich Mindset (score %d)", strong.Label, strong.Score)
	}
}
