package engine

import (
	"time"

	"github.com/alsultanqa/mini-back/internal/models"
)

// IsIncomeKind reports whether a transaction kind counts as income.
func IsIncomeKind(kind string) bool {
	return kind == models.TxDeposit
}

// IsOutflowKind reports whether a transaction kind counts as outflow.
// fx_in is neither income nor outflow; it is the inbound leg of a
// conversion whose outbound leg is already counted.
func IsOutflowKind(kind string) bool {
	switch kind {
	case models.TxWithdraw, models.TxMerchant, models.TxMemberPurchase,
		models.TxFxOut, models.TxMemberFund:
		return true
	}
	return false
}

// PrettyCategory returns the bilingual display label for a category code.
func PrettyCategory(code string) string {
	switch code {
	case "food":
		return "Food & Groceries / طعام"
	case "transport":
		return "Transport / مواصلات"
	case "shopping":
		return "Shopping / تسوق"
	case "bills":
		return "Bills & Utilities / فواتير"
	case "education":
		return "Education / تعليم"
	case "health":
		return "Health / صحة"
	case "travel":
		return "Travel / سفر"
	case "entertainment":
		return "Entertainment / ترفيه"
	case "other":
		return "Other / أخرى"
	default:
		return "General / عام"
	}
}

// Aggregates are the rolling-window sums the behavior engine consumes.
// All values are in the base currency.
type Aggregates struct {
	TotalAllBase float64
	Total30Base  float64
	Total7Base   float64
	CountAll     int

	In30Base  float64
	Out30Base float64
	Out7Base  float64

	// per-calendar-day outflow over the last 30 days, keyed by local date
	DayOut30Base map[string]float64

	// category totals over all outflow kinds (spending maturity input)
	SpendCat30Base map[string]float64

	// category totals over merchant + member_purchase only
	// (top-categories and cashback input)
	PurchaseCat30Base map[string]float64
}

const dayKeyLayout = "2006-01-02"

// Aggregate filters a transaction set to settled records in the actor's
// scope and computes the 7/30-day window sums. Pending and failed
// transactions never affect aggregates.
func Aggregate(txs []Txn, actor Actor, now time.Time, conv Converter) Aggregates {
	day30Ago := now.Add(-30 * 24 * time.Hour)
	day7Ago := now.Add(-7 * 24 * time.Hour)

	agg := Aggregates{
		DayOut30Base:      make(map[string]float64),
		SpendCat30Base:    make(map[string]float64),
		PurchaseCat30Base: make(map[string]float64),
	}

	for _, t := range txs {
		if t.Status != models.StatusSettled {
			continue
		}
		if actor.IsMember() && t.Actor != actor.MemberID {
			continue
		}

		amtBase := conv.ToBase(t.Amount, t.Currency)
		agg.TotalAllBase += amtBase
		agg.CountAll++

		in30 := !t.Ts.Before(day30Ago)
		in7 := !t.Ts.Before(day7Ago)

		if in30 {
			agg.Total30Base += amtBase
		}
		if in7 {
			agg.Total7Base += amtBase
		}

		switch {
		case IsIncomeKind(t.Kind):
			if in30 {
				agg.In30Base += amtBase
			}
		case IsOutflowKind(t.Kind):
			if in30 {
				agg.Out30Base += amtBase
				agg.DayOut30Base[t.Ts.Format(dayKeyLayout)] += amtBase

				cat := t.Category
				if cat == "" {
					cat = "general"
				}
				agg.SpendCat30Base[cat] += amtBase
				if t.Kind == models.TxMerchant || t.Kind == models.TxMemberPurchase {
					agg.PurchaseCat30Base[cat] += amtBase
				}
			}
			if in7 {
				agg.Out7Base += amtBase
			}
		}
	}

	return agg
}
