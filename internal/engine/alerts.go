package engine

import (
	"fmt"
	"time"
)

// Alert is one threshold-triggered warning. DisplayTTL is a presentation
// hint telling clients when to auto-hide the alert; the rules themselves
// are pure.
type Alert struct {
	Severity   string        `json:"severity"` // high / medium / info
	Title      string        `json:"title"`
	Detail     string        `json:"detail"`
	DisplayTTL time.Duration `json:"display_ttl"`
}

// RushAlerts evaluates the alert rules over a snapshot. Member and owner
// contexts use different runway and spend-spike thresholds; rules are
// independent of each other.
func RushAlerts(snap Snapshot, displayTTL time.Duration) []Alert {
	var alerts []Alert

	push := func(severity, title, detail string) {
		alerts = append(alerts, Alert{
			Severity:   severity,
			Title:      title,
			Detail:     detail,
			DisplayTTL: displayTTL,
		})
	}

	// 1) negative net flow
	if snap.Net30 < 0 {
		push("high", "Net flow is negative", fmt.Sprintf(
			"You are consuming about %.2f %s more than what entered the wallet over the last 30 days.",
			-snap.Net30, snap.Label))
	}

	// 2) short runway, member vs owner thresholds
	if snap.RunwayDays != nil {
		rw := *snap.RunwayDays
		if snap.IsMember {
			if rw < 7 {
				push("high", "Member runway is very short",
					"Less than a week of cover left. Any small extra spend could finish the allowance quickly.")
			} else if rw < 15 {
				push("medium", "Member runway is limited",
					"Less than 15 days of cover left. Try slowing the spending a little to stretch it.")
			}
		} else {
			if rw < 30 {
				push("high", "Runway under one month",
					"Less than 30 days of cover left. A small expense shock could create real pressure.")
			} else if rw < 60 {
				push("medium", "Runway under two months",
					"Try raising the reserve or trimming some expenses to reach 60 days and beyond.")
			}
		}
	}

	// 3) weekly spend spike vs the 30-day average (deposits excluded)
	if snap.TotalOut30 > 0 && snap.TotalOut7 > 0 {
		daily30 := snap.TotalOut30 / 30
		daily7 := snap.TotalOut7 / 7
		if daily30 == 0 {
			daily30 = 1
		}
		ratio := daily7 / daily30
		shareOfBalance := 0.0
		if snap.CurrentBalance > 0 {
			shareOfBalance = snap.TotalOut7 / snap.CurrentBalance
		}

		var ratioMedium, ratioHigh, shareMedium, shareHigh float64
		if snap.IsMember {
			// members swing more, but watch the allowance share
			ratioMedium, ratioHigh = 1.2, 1.5
			shareMedium, shareHigh = 0.05, 0.15
		} else {
			// owner wallets are larger; a 2-5% jump is already notable
			ratioMedium, ratioHigh = 1.3, 1.7
			shareMedium, shareHigh = 0.02, 0.05
		}

		severity := ""
		if ratio > ratioHigh && shareOfBalance >= shareHigh {
			severity = "high"
		} else if ratio > ratioMedium && shareOfBalance >= shareMedium {
			severity = "medium"
		}
		if severity != "" {
			push(severity, "This week runs above normal", fmt.Sprintf(
				"The spend rate this week is about %.0f%% above your 30-day average.",
				(ratio-1)*100))
		}
	}

	// 4) concentration in a single category
	if len(snap.Categories) > 0 && snap.Total30 > 0 {
		top := snap.Categories[0]
		if top.Amount > snap.Total30*0.5 {
			push("info", "Spending concentrated in one category", fmt.Sprintf(
				"More than 50%% of your spending goes to %q.", top.Label))
		}
	}

	return alerts
}
