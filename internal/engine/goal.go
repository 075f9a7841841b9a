package engine

import "fmt"

// Projection severities.
const (
	SeverityNeutral = "neutral"
	SeverityGood    = "good"
	SeverityMedium  = "medium"
	SeverityHigh    = "high"
)

// WhatIfScenario estimates months to completion when a share of the
// current monthly net is allocated to the goal.
type WhatIfScenario struct {
	Label  string  `json:"label"`
	Months float64 `json:"months"`
}

// Projection is the feasibility estimate for one savings goal.
type Projection struct {
	PerMonthNeeded    float64          `json:"per_month_needed"`
	CurrentMonthlyNet float64          `json:"current_monthly_net"`
	StatusText        string           `json:"status_text"`
	Severity          string           `json:"severity"`
	ProgressPct       float64          `json:"progress_pct"`
	SavedAmount       float64          `json:"saved_amount"`
	Remaining         float64          `json:"remaining"`
	WhatIf            []WhatIfScenario `json:"what_if"`
}

// Project computes the projection for a goal against the current snapshot.
// net30 is treated as an approximation of one month's net flow.
func Project(goal GoalInfo, snap Snapshot) Projection {
	target := goal.Target
	months := goal.Months
	if months < 1 {
		months = 1
	}
	saved := goal.Saved

	remaining := target - saved
	if remaining < 0 {
		remaining = 0
	}
	perMonthNeeded := 0.0
	if target > 0 {
		perMonthNeeded = remaining / float64(months)
	}

	net := snap.Net30

	severity := SeverityNeutral
	var statusText string
	switch {
	case target <= 0:
		statusText = "No clear target amount set yet."
	case remaining <= 0:
		statusText = "Goal reached or exceeded. You can close it or adjust the amount."
		severity = SeverityGood
	case net <= 0:
		statusText = "Net flow is currently near zero or negative. Saving for this goal needs the spending fixed first."
		severity = SeverityHigh
	case net < perMonthNeeded:
		statusText = fmt.Sprintf(
			"Current net flow (%.2f %s) is below the required %.2f %s per month to hit this goal on time. Raise income, cut spending, or extend the goal.",
			net, snap.Label, perMonthNeeded, snap.Label)
		severity = SeverityMedium
	default:
		statusText = fmt.Sprintf(
			"You are in great shape: net flow (%.2f %s) covers the required %.2f %s per month for this goal.",
			net, snap.Label, perMonthNeeded, snap.Label)
		severity = SeverityGood
	}

	progressPct := 0.0
	if target > 0 {
		progressPct = clamp(saved/target*100, 0, 100)
	}

	var whatIf []WhatIfScenario
	if remaining > 0 && net > 0 {
		scenarios := []struct {
			share float64
			label string
		}{
			{0.1, "10%"},
			{0.3, "30%"},
			{0.5, "50%"},
		}
		for _, s := range scenarios {
			alloc := net * s.share
			if alloc <= 0 {
				continue
			}
			whatIf = append(whatIf, WhatIfScenario{Label: s.label, Months: remaining / alloc})
		}
	}

	return Projection{
		PerMonthNeeded:    perMonthNeeded,
		CurrentMonthlyNet: net,
		StatusText:        statusText,
		Severity:          severity,
		ProgressPct:       progressPct,
		SavedAmount:       saved,
		Remaining:         remaining,
		WhatIf:            whatIf,
	}
}
