package engine

import (
	"testing"
	"time"
)

func TestCoachPlan_FoundationShortCircuit(t *testing.T) {
	plan := BuildCoachPlan(Snapshot{HasData: true, Label: "QAR"})
	if len(plan.Tasks) != 1 {
		t.Fatalf("tasks = %d, want single foundation task with no history", len(plan.Tasks))
	}
	if plan.Tasks[0].Tag != "Foundation" {
		t.Errorf("tag = %q, want Foundation", plan.Tasks[0].Tag)
	}
}

func TestCoachPlan_MemberRules(t *testing.T) {
	rw := 20.0
	snap := Snapshot{
		HasData:    true,
		IsMember:   true,
		Label:      "QAR",
		Total30:    100,
		TotalOut30: 100,
		RunwayDays: &rw,
		Categories: []CategoryStat{{Code: "shopping", Label: PrettyCategory("shopping"), Amount: 60, Share: 60}},
	}

	plan := BuildCoachPlan(snap)
	if !plan.IsMember {
		t.Fatal("IsMember = false")
	}
	// trim top category, stop-one (runway < 30), and the habit rule
	if len(plan.Tasks) != 3 {
		t.Fatalf("tasks = %d, want 3", len(plan.Tasks))
	}
	if plan.Tasks[0].Tag != "Discipline" || plan.Tasks[1].Tag != "Rush to Rich" || plan.Tasks[2].Tag != "Habits" {
		t.Errorf("tags = %q/%q/%q", plan.Tasks[0].Tag, plan.Tasks[1].Tag, plan.Tasks[2].Tag)
	}
}

func TestCoachPlan_OwnerNegativeNet(t *testing.T) {
	rw := 100.0
	snap := Snapshot{
		HasData:    true,
		Label:      "QAR",
		Total30:    500,
		TotalOut30: 500,
		Net30:      -200,
		RunwayDays: &rw,
	}

	plan := BuildCoachPlan(snap)
	if len(plan.Tasks) == 0 || plan.Tasks[0].Tag != "Rush Cut" {
		t.Fatalf("first task = %+v, want Rush Cut on negative net", plan.Tasks)
	}
}

func TestCoachPlan_OwnerFallbackFocus(t *testing.T) {
	rw := 200.0
	snap := Snapshot{
		HasData:    true,
		Label:      "QAR",
		Total30:    500,
		Net30:      300,
		RunwayDays: &rw,
		Behavior:   Behavior{Score: 90},
	}

	plan := BuildCoachPlan(snap)
	if len(plan.Tasks) != 1 || plan.Tasks[0].Tag != "Focus" {
		t.Fatalf("tasks = %+v, want single Focus fallback", plan.Tasks)
	}
}

func TestRushAlerts_NegativeNet(t *testing.T) {
	snap := Snapshot{HasData: true, Label: "QAR", Net30: -120}

	alerts := RushAlerts(snap, 10*time.Second)
	if len(alerts) != 1 || alerts[0].Severity != "high" {
		t.Fatalf("alerts = %+v, want one high negative-net alert", alerts)
	}
	if alerts[0].DisplayTTL != 10*time.Second {
		t.Errorf("DisplayTTL = %v, want 10s", alerts[0].DisplayTTL)
	}
}

func TestRushAlerts_RunwayThresholdsByActor(t *testing.T) {
	rw := 10.0

	member := Snapshot{HasData: true, IsMember: true, Label: "QAR", RunwayDays: &rw}
	got := RushAlerts(member, 0)
	if len(got) != 1 || got[0].Severity != "medium" {
		t.Errorf("member alerts at runway 10 = %+v, want one medium", got)
	}

	owner := Snapshot{HasData: true, Label: "QAR", RunwayDays: &rw}
	got = RushAlerts(owner, 0)
	if len(got) != 1 || got[0].Severity != "high" {
		t.Errorf("owner alerts at runway 10 = %+v, want one high", got)
	}

	short := 5.0
	member.RunwayDays = &short
	got = RushAlerts(member, 0)
	if len(got) != 1 || got[0].Severity != "high" {
		t.Errorf("member alerts at runway 5 = %+v, want one high", got)
	}
}

func TestRushAlerts_SpendSpike(t *testing.T) {
	// owner: weekly rate 2x the monthly rate and 10% of the balance
	snap := Snapshot{
		HasData:        true,
		Label:          "QAR",
		Net30:          50,
		TotalOut30:     300,
		TotalOut7:      140,
		CurrentBalance: 1400,
	}

	alerts := RushAlerts(snap, 0)
	if len(alerts) != 1 || alerts[0].Severity != "high" {
		t.Fatalf("alerts = %+v, want one high spike alert", alerts)
	}

	// the same numbers are calmer for a member (ratio 2 > 1.5, share 10% < 15%)
	snap.IsMember = true
	alerts = RushAlerts(snap, 0)
	if len(alerts) != 1 || alerts[0].Severity != "medium" {
		t.Fatalf("member alerts = %+v, want one medium spike alert", alerts)
	}
}

func TestRushAlerts_CategoryConcentration(t *testing.T) {
	snap := Snapshot{
		HasData:    true,
		Label:      "QAR",
		Net30:      10,
		Total30:    200,
		Categories: []CategoryStat{{Code: "travel", Label: PrettyCategory("travel"), Amount: 150, Share: 75}},
	}

	alerts := RushAlerts(snap, 0)
	if len(alerts) != 1 || alerts[0].Severity != "info" {
		t.Fatalf("alerts = %+v, want one info concentration alert", alerts)
	}
}
