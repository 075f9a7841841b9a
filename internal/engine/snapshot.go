package engine

import (
	"log"
	"sort"
	"time"
)

// Exposure is one currency position as a share of the total balance.
type Exposure struct {
	Ccy       string  `json:"ccy"`
	Pct       float64 `json:"pct"`
	EqBase    float64 `json:"eq_base"`
	EqDisplay float64 `json:"eq_display"`
}

// CategoryStat is one spending category with its share of purchase spend.
type CategoryStat struct {
	Code   string  `json:"code"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Share  float64 `json:"share"`
}

// Snapshot is an immutable value computed from one pass over the ledger.
// Amount fields are in the display currency unless named otherwise.
type Snapshot struct {
	HasData    bool   `json:"has_data"`
	BaseCur    string `json:"base_cur"`
	DisplayCur string `json:"display_cur"`
	Label      string `json:"label"` // currency label for rendering
	IsMember   bool   `json:"is_member"`

	TotalAll  float64 `json:"total_all"`
	Total30   float64 `json:"total_30"`
	Total7    float64 `json:"total_7"`
	CountAll  int     `json:"count_all"`
	AvgTicket float64 `json:"avg_ticket"`

	TotalIncome30 float64 `json:"total_income_30"`
	TotalOut30    float64 `json:"total_out_30"`
	TotalOut7     float64 `json:"total_out_7"`
	Net30         float64 `json:"net_30"`
	DailySpend    float64 `json:"daily_spend"`
	DailySpend7   float64 `json:"daily_spend_7"`

	// days of balance left at the current spend rate; nil when daily
	// spend is zero (never Inf or NaN)
	RunwayDays *float64 `json:"runway_days"`

	CurrentBalance float64        `json:"current_balance"`
	Exposures      []Exposure     `json:"exposures"`
	Categories     []CategoryStat `json:"categories"`
	CashbackRate   float64        `json:"cashback_rate"`
	Cashback30     float64        `json:"cashback_30"`

	Behavior Behavior `json:"behavior"`
}

// Input bundles everything the snapshot builder reads.
type Input struct {
	Txs          []Txn
	Actor        Actor
	Member       *MemberInfo // required when Actor is a member
	Wallets      []WalletBalance
	Goals        []GoalInfo
	Now          time.Time
	Conv         Converter
	CashbackRate float64
}

// Empty returns the no-data sentinel snapshot.
func Empty(conv Converter) Snapshot {
	return Snapshot{
		BaseCur:    conv.Base(),
		DisplayCur: conv.Display(),
		Label:      conv.Display(),
	}
}

// Build computes a snapshot for the actor context. It is deterministic for
// identical inputs and never panics outward: an internal failure degrades
// to the empty snapshot with a logged diagnostic.
func Build(in Input) (snap Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("snapshot build recovered: %v", r)
			snap = Empty(in.Conv)
		}
	}()
	return build(in)
}

func build(in Input) Snapshot {
	conv := in.Conv
	isMember := in.Actor.IsMember()

	agg := Aggregate(in.Txs, in.Actor, in.Now, conv)

	totalAll := conv.ToDisplay(agg.TotalAllBase)
	total30 := conv.ToDisplay(agg.Total30Base)
	total7 := conv.ToDisplay(agg.Total7Base)

	avgTicket := 0.0
	if agg.CountAll > 0 {
		avgTicket = totalAll / float64(agg.CountAll)
	}

	totalIncome30 := conv.ToDisplay(agg.In30Base)
	totalOut30 := conv.ToDisplay(agg.Out30Base)
	totalOut7 := conv.ToDisplay(agg.Out7Base)
	net30 := totalIncome30 - totalOut30

	dailySpend := 0.0
	if totalOut30 > 0 {
		dailySpend = totalOut30 / 30
	}
	dailySpend7 := 0.0
	if totalOut7 > 0 {
		dailySpend7 = totalOut7 / 7
	}

	// current balance: member sees its allowance, owner sees all wallets
	var balanceBase float64
	if isMember && in.Member != nil {
		balanceBase = conv.ToBase(in.Member.Allowance, conv.Base())
	} else {
		for _, w := range in.Wallets {
			if w.Balance == 0 {
				continue
			}
			balanceBase += conv.ToBase(w.Balance, w.Currency)
		}
	}
	currentBalance := conv.ToDisplay(balanceBase)

	var runway *float64
	if dailySpend > 0 {
		r := currentBalance / dailySpend
		runway = &r
	}

	// per-currency exposure
	var exposures []Exposure
	if isMember && in.Member != nil {
		if balanceBase > 0 {
			exposures = append(exposures, Exposure{
				Ccy:       conv.Base(),
				Pct:       100,
				EqBase:    balanceBase,
				EqDisplay: conv.ToDisplay(balanceBase),
			})
		}
	} else if balanceBase > 0 {
		for _, w := range in.Wallets {
			if w.Balance == 0 {
				continue
			}
			eqBase := conv.ToBase(w.Balance, w.Currency)
			exposures = append(exposures, Exposure{
				Ccy:       w.Currency,
				Pct:       eqBase / balanceBase * 100,
				EqBase:    eqBase,
				EqDisplay: conv.ToDisplay(eqBase),
			})
		}
		sort.Slice(exposures, func(i, j int) bool { return exposures[i].Pct > exposures[j].Pct })
	}

	// top spending categories over merchant + member purchases
	purchaseKeys := sortedKeys(agg.PurchaseCat30Base)
	var catTotal float64
	categories := make([]CategoryStat, 0, len(agg.PurchaseCat30Base))
	for _, code := range purchaseKeys {
		amount := conv.ToDisplay(agg.PurchaseCat30Base[code])
		catTotal += amount
		categories = append(categories, CategoryStat{
			Code:   code,
			Label:  PrettyCategory(code),
			Amount: amount,
		})
	}
	for i := range categories {
		if catTotal > 0 {
			categories[i].Share = categories[i].Amount / catTotal * 100
		}
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Amount != categories[j].Amount {
			return categories[i].Amount > categories[j].Amount
		}
		return categories[i].Code < categories[j].Code
	})

	cashbackRate := in.CashbackRate
	var eligibleBase float64
	for _, code := range purchaseKeys {
		eligibleBase += agg.PurchaseCat30Base[code]
	}
	cashback30 := conv.ToDisplay(eligibleBase) * cashbackRate

	goalsSaved := 0.0
	for _, g := range in.Goals {
		goalsSaved += g.Saved
	}

	behavior := ComputeBehavior(BehaviorInput{
		In30Base:       agg.In30Base,
		Out30Base:      agg.Out30Base,
		Out7Base:       agg.Out7Base,
		Net30:          net30,
		DailySpend:     dailySpend,
		DailySpend7:    dailySpend7,
		RunwayDays:     runway,
		BalanceBase:    balanceBase,
		GoalsCount:     len(in.Goals),
		GoalSavedTotal: goalsSaved,
		DayOut30Base:   agg.DayOut30Base,
		SpendCat30Base: agg.SpendCat30Base,
	})

	return Snapshot{
		HasData:        true,
		BaseCur:        conv.Base(),
		DisplayCur:     conv.Display(),
		Label:          conv.Display(),
		IsMember:       isMember,
		TotalAll:       totalAll,
		Total30:        total30,
		Total7:         total7,
		CountAll:       agg.CountAll,
		AvgTicket:      avgTicket,
		TotalIncome30:  totalIncome30,
		TotalOut30:     totalOut30,
		TotalOut7:      totalOut7,
		Net30:          net30,
		DailySpend:     dailySpend,
		DailySpend7:    dailySpend7,
		RunwayDays:     runway,
		CurrentBalance: currentBalance,
		Exposures:      exposures,
		Categories:     categories,
		CashbackRate:   cashbackRate,
		Cashback30:     cashback30,
		Behavior:       behavior,
	}
}
