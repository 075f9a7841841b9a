package engine

import "fmt"

// CoachTask is one weekly task with qualitative impact estimates. The
// impact ranges are narrative text, not guaranteed numeric accuracy.
type CoachTask struct {
	Title        string `json:"title"`
	Desc         string `json:"desc"`
	ImpactScore  string `json:"impact_score"`
	ImpactRunway string `json:"impact_runway"`
	Tag          string `json:"tag"`
}

// CoachPlan is a prioritized weekly task list for one actor context.
type CoachPlan struct {
	Tasks    []CoachTask `json:"tasks"`
	IsMember bool        `json:"is_member"`
	Label    string      `json:"label"`
}

// BuildCoachPlan derives the weekly plan from a snapshot. With no history
// at all, a single foundation task suppresses every other rule.
func BuildCoachPlan(snap Snapshot) CoachPlan {
	var tasks []CoachTask

	var topCat *CategoryStat
	if len(snap.Categories) > 0 {
		topCat = &snap.Categories[0]
	}

	if snap.Total30 == 0 && snap.TotalIncome30 == 0 && snap.TotalOut30 == 0 {
		tasks = append(tasks, CoachTask{
			Title:        "Start building a data history",
			Desc:         "Use this wallet for a few days of spending and funding, then come back so the coach can build an accurate plan for you.",
			ImpactScore:  "+0-5",
			ImpactRunway: "not determined yet",
			Tag:          "Foundation",
		})
		return CoachPlan{Tasks: tasks, IsMember: snap.IsMember, Label: snap.Label}
	}

	if snap.IsMember {
		if topCat != nil && topCat.Amount > 0 {
			shrink := topCat.Amount * 0.2
			tasks = append(tasks, CoachTask{
				Title: "Cut 20% of spending on " + topCat.Label,
				Desc: fmt.Sprintf(
					"This week, try to reduce your spending in %q by about %.2f %s. Start by swapping some extras for cheaper options or skipping repeat orders.",
					topCat.Label, shrink, snap.Label),
				ImpactScore:  "about +5 on your wallet",
				ImpactRunway: "+3-7 days for your small wallet",
				Tag:          "Discipline",
			})
		}

		if snap.RunwayDays != nil && *snap.RunwayDays < 30 {
			tasks = append(tasks, CoachTask{
				Title:        "Stop one non-essential purchase",
				Desc:         "Pick a single purchase type (sweets, coffee out) and drop it completely this week. The effect shows up directly on your runway.",
				ImpactScore:  "+3-6 points",
				ImpactRunway: "+2-5 days",
				Tag:          "Rush to Rich",
			})
		}

		tasks = append(tasks, CoachTask{
			Title:        "Set one member rule for this week",
			Desc:         "Pick a simple rule for yourself, like no buying twice a day from the same category, or not using the whole allowance in the first 3 days.",
			ImpactScore:  "+2-4 points",
			ImpactRunway: "gradual improvement",
			Tag:          "Habits",
		})

		return CoachPlan{Tasks: tasks, IsMember: true, Label: snap.Label}
	}

	// owner (global wallet)
	if snap.Net30 < 0 {
		tasks = append(tasks, CoachTask{
			Title:        "Lock 30% of comfort spending this week",
			Desc:         "Find your biggest non-essential category (entertainment, eating out) and cut it by 30% this week. The target is moving net flow from negative to zero or slightly positive.",
			ImpactScore:  "+8-15 points on rush vs rich",
			ImpactRunway: "+10-20 days over the medium term",
			Tag:          "Rush Cut",
		})
	} else if snap.Net30 > 0 && snap.Behavior.Score < 85 {
		tasks = append(tasks, CoachTask{
			Title: "Fix a saving rate on the positive net",
			Desc: fmt.Sprintf(
				"Pick a fixed share (say 20%%) of your current positive net (around %.2f %s) and move it weekly into one saving goal: a reserve, a simple investment.",
				snap.Net30, snap.Label),
			ImpactScore:  "+5-10 points",
			ImpactRunway: "+15-30 days if sustained",
			Tag:          "Rich Builder",
		})
	}

	if snap.RunwayDays != nil && *snap.RunwayDays < 60 {
		tasks = append(tasks, CoachTask{
			Title:        "Push the runway toward 60 days",
			Desc:         "The goal this week is to raise the balance or cut expenses enough to move the runway a step closer to 60 days. Check the insights after every significant operation.",
			ImpactScore:  "+5 points targeted",
			ImpactRunway: "closing in on the 60-day mark",
			Tag:          "Safety",
		})
	}

	if topCat != nil {
		tasks = append(tasks, CoachTask{
			Title: "Weekly cap on the top category",
			Desc: fmt.Sprintf(
				"Set a weekly cap for %q at no more than 80%% of your current average. Anything above the cap waits for next week.",
				topCat.Label),
			ImpactScore:  "+4-7 points",
			ImpactRunway: "+5-10 days within two months",
			Tag:          "Limits",
		})
	}

	if len(tasks) == 0 {
		tasks = append(tasks, CoachTask{
			Title:        "Keep the pattern, add one goal",
			Desc:         "Your indicators look good, so dedicate this week to setting one new goal (investment, debt payoff, saving for something specific) and tie it to a fixed share of your income.",
			ImpactScore:  "+3-6 points",
			ImpactRunway: "steady improvement",
			Tag:          "Focus",
		})
	}

	return CoachPlan{Tasks: tasks, IsMember: false, Label: snap.Label}
}
