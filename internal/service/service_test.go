package service

import (
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alsultanqa/mini-back/internal/fx"
	"github.com/alsultanqa/mini-back/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.Wallet{}, &models.Transaction{},
		&models.Member{}, &models.Goal{}, &models.InsightSnapshot{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func testServices(t *testing.T) (*gorm.DB, *WalletService, *MemberService) {
	t.Helper()
	db := testDB(t)
	serial := NewSerialGen()
	settler := NewSettler(db, time.Millisecond, serial)
	ws := NewWalletService(db, settler, serial, fx.NewTable())
	return db, ws, NewMemberService(db)
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	u := models.User{Username: "aisha", PasswordHash: "x", BaseCurrency: "QAR", ActiveCurrency: "QAR", DisplayCurrency: "QAR", ActorType: models.ActorOwner}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &u
}

func TestDepositWithdraw(t *testing.T) {
	db, ws, _ := testServices(t)
	u := seedUser(t, db)

	if _, err := ws.Deposit(u.ID, "QAR", 500, ""); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := ws.Withdraw(u.ID, "QAR", 200, ""); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if _, err := ws.Withdraw(u.ID, "QAR", 400, ""); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("overdraw err = %v, want insufficient balance", err)
	}

	wallets, err := ws.Wallets(u.ID)
	if err != nil || len(wallets) != 1 {
		t.Fatalf("wallets = %v (%v), want one", wallets, err)
	}
	if wallets[0].Balance != 300 {
		t.Errorf("balance = %f, want 300", wallets[0].Balance)
	}

	txs, _ := ws.Transactions(u.ID, "", 0)
	if len(txs) != 2 {
		t.Fatalf("ledger has %d rows, want 2 (failed withdraw not recorded)", len(txs))
	}
	for _, tx := range txs {
		if tx.Status != models.StatusSettled || tx.SerialID == "" || tx.BlockHash == "" {
			t.Errorf("tx %s: status=%s serial=%q hash=%q, want settled with serial twin", tx.ID, tx.Status, tx.SerialID, tx.BlockHash)
		}
	}
}

func TestDeposit_UnsupportedCurrency(t *testing.T) {
	db, ws, _ := testServices(t)
	u := seedUser(t, db)

	if _, err := ws.Deposit(u.ID, "XXX", 10, ""); !errors.Is(err, ErrUnsupportedCurrency) {
		t.Fatalf("err = %v, want unsupported currency", err)
	}
}

func TestOwnerPay_PendingThenSettled(t *testing.T) {
	db, ws, _ := testServices(t)
	u := seedUser(t, db)
	if _, err := ws.Deposit(u.ID, "QAR", 100, ""); err != nil {
		t.Fatal(err)
	}

	created, err := ws.OwnerPay(u.ID, "QAR", 40, "food", "Lulu")
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if created.Status != models.StatusPending {
		t.Fatalf("status = %s, want pending before the settle delay", created.Status)
	}

	// wallet is debited immediately, before settlement
	var w models.Wallet
	db.Where("user_id = ? AND currency = ?", u.ID, "QAR").First(&w)
	if w.Balance != 60 {
		t.Errorf("balance = %f, want 60 right after the charge", w.Balance)
	}

	waitSettled(t, db, created.ID)

	var tx models.Transaction
	db.First(&tx, "id = ?", created.ID)
	if tx.SerialID == "" || tx.BlockHash == "" {
		t.Error("settled merchant charge is missing its serial twin")
	}
}

func TestSettle_ExactlyOnce(t *testing.T) {
	db, ws, _ := testServices(t)
	u := seedUser(t, db)
	ws.Deposit(u.ID, "QAR", 100, "")

	created, err := ws.OwnerPay(u.ID, "QAR", 10, "food", "")
	if err != nil {
		t.Fatal(err)
	}
	settler := ws.settler
	if err := settler.Settle(created.ID); err != nil {
		t.Fatalf("first settle: %v", err)
	}

	var first models.Transaction
	db.First(&first, "id = ?", created.ID)
	if first.Status != models.StatusSettled {
		t.Fatalf("status = %s, want settled", first.Status)
	}

	// a second settle must not reissue the serial twin
	if err := settler.Settle(created.ID); err != nil {
		t.Fatalf("second settle: %v", err)
	}
	var second models.Transaction
	db.First(&second, "id = ?", created.ID)
	if second.SerialID != first.SerialID || second.BlockHash != first.BlockHash {
		t.Error("settling twice rewrote the serial twin")
	}
}

func TestReset_CancelsPendingSettlement(t *testing.T) {
	db, ws, _ := testServices(t)
	u := seedUser(t, db)
	ws.Deposit(u.ID, "QAR", 100, "")

	created, err := ws.OwnerPay(u.ID, "QAR", 10, "food", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := ws.Reset(u.ID); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if ws.settler.Pending() != 0 {
		t.Error("reset left settlement timers armed")
	}

	// a straggler settle against the wiped row is a no-op
	if err := ws.settler.Settle(created.ID); err != nil {
		t.Fatalf("settle after reset: %v", err)
	}
	var count int64
	db.Model(&models.Transaction{}).Where("user_id = ?", u.ID).Count(&count)
	if count != 0 {
		t.Errorf("ledger rows after reset = %d, want 0", count)
	}
}

func TestResume_SettlesOrphanedCharges(t *testing.T) {
	db := testDB(t)
	serial := NewSerialGen()

	// a settler whose delay never elapses stands in for a process that
	// died before its timer fired, leaving the row pending with the
	// wallet already debited
	stale := NewSettler(db, time.Hour, serial)
	ws := NewWalletService(db, stale, serial, fx.NewTable())
	u := seedUser(t, db)
	if _, err := ws.Deposit(u.ID, "QAR", 100, ""); err != nil {
		t.Fatal(err)
	}
	created, err := ws.OwnerPay(u.ID, "QAR", 40, "food", "Lulu")
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	stale.CancelAll()

	fresh := NewSettler(db, time.Millisecond, serial)
	n, err := fresh.Resume()
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if n != 1 {
		t.Fatalf("resume rescheduled %d charges, want 1", n)
	}
	waitSettled(t, db, created.ID)

	var tx models.Transaction
	db.First(&tx, "id = ?", created.ID)
	if tx.SerialID == "" || tx.BlockHash == "" {
		t.Error("resumed settlement did not stamp the serial twin")
	}

	// nothing left to pick up on a second sweep
	if n, err := fresh.Resume(); err != nil || n != 0 {
		t.Errorf("second resume = %d (%v), want 0 pending", n, err)
	}
}

func TestMemberPay_AllowanceRejectionMutatesNothing(t *testing.T) {
	db, ws, ms := testServices(t)
	u := seedUser(t, db)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	m, err := ms.Add(u.ID, "Noor", "", models.ModeAllowance)
	if err != nil {
		t.Fatal(err)
	}
	m, _ = ms.SetAllowance(u.ID, m.ID, 50)

	if _, err := ws.MemberPay(u.ID, m, "QAR", 60, "food", "", now); !errors.Is(err, ErrAllowanceExceeded) {
		t.Fatalf("err = %v, want allowance exceeded", err)
	}

	got, _ := ms.Get(u.ID, m.ID)
	if got.Allowance != 50 {
		t.Errorf("allowance = %f, want untouched 50", got.Allowance)
	}
	if got.UsedToday != 0 {
		t.Errorf("UsedToday = %f, want 0 after rejection", got.UsedToday)
	}
	var count int64
	db.Model(&models.Transaction{}).Where("user_id = ?", u.ID).Count(&count)
	if count != 0 {
		t.Errorf("rejected spend recorded %d transactions, want 0", count)
	}
}

func TestMemberPay_ApprovedBumpsAllWindows(t *testing.T) {
	db, ws, ms := testServices(t)
	u := seedUser(t, db)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	m, _ := ms.Add(u.ID, "Noor", "", models.ModeAllowance)
	m, _ = ms.SetAllowance(u.ID, m.ID, 100)
	m, _ = ms.SetLimits(u.ID, m.ID, 55, 80, 0, 0)

	tx, err := ws.MemberPay(u.ID, m, "QAR", 30, "food", "Lulu", now)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if tx.Status != models.StatusSettled || tx.Actor != m.ID {
		t.Errorf("tx = %+v, want settled with member actor", tx)
	}

	got, _ := ms.Get(u.ID, m.ID)
	if got.Allowance != 70 {
		t.Errorf("allowance = %f, want 70", got.Allowance)
	}
	if got.UsedToday != 30 || got.UsedWeek != 30 || got.UsedMonth != 30 {
		t.Errorf("counters = %f/%f/%f, want 30 across all windows", got.UsedToday, got.UsedWeek, got.UsedMonth)
	}

	if _, err := ws.MemberPay(u.ID, got, "QAR", 60, "food", "", now); !errors.Is(err, ErrPerTxLimitExceeded) {
		t.Errorf("err = %v, want per-tx limit", err)
	}
	if _, err := ws.MemberPay(u.ID, got, "QAR", 51, "food", "", now); !errors.Is(err, ErrDailyLimitExceeded) {
		t.Errorf("err = %v, want daily limit (used 30 of 80)", err)
	}
}

func TestMemberPay_FullModeSpendsOwnerWallet(t *testing.T) {
	db, ws, ms := testServices(t)
	u := seedUser(t, db)
	now := time.Now()
	ws.Deposit(u.ID, "QAR", 200, "")

	m, _ := ms.Add(u.ID, "Hamad", "", models.ModeFull)
	if _, err := ws.MemberPay(u.ID, m, "QAR", 150, "transport", "", now); err != nil {
		t.Fatalf("pay: %v", err)
	}

	var w models.Wallet
	db.Where("user_id = ? AND currency = ?", u.ID, "QAR").First(&w)
	if w.Balance != 50 {
		t.Errorf("owner balance = %f, want 50", w.Balance)
	}

	if _, err := ws.MemberPay(u.ID, m, "QAR", 60, "transport", "", now); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("err = %v, want insufficient balance", err)
	}
}

func TestMemberPay_FrozenRejected(t *testing.T) {
	db, ws, ms := testServices(t)
	u := seedUser(t, db)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	m, _ := ms.Add(u.ID, "Noor", "", models.ModeAllowance)
	ms.SetAllowance(u.ID, m.ID, 100)
	m, err := ms.Freeze(u.ID, m.ID, 7, now)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ws.MemberPay(u.ID, m, "QAR", 10, "food", "", now.Add(time.Hour)); !errors.Is(err, ErrMemberFrozen) {
		t.Fatalf("err = %v, want frozen rejection", err)
	}

	// after the freeze lapses the same spend goes through
	if _, err := ws.MemberPay(u.ID, m, "QAR", 10, "food", "", now.AddDate(0, 0, 8)); err != nil {
		t.Fatalf("pay after freeze lapsed: %v", err)
	}
}

func TestFreezeStatus_LazyAutoUnfreeze(t *testing.T) {
	db, _, ms := testServices(t)
	u := seedUser(t, db)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	m, _ := ms.Add(u.ID, "Noor", "", models.ModeAllowance)
	if _, err := ms.Freeze(u.ID, m.ID, 2, now); err != nil {
		t.Fatal(err)
	}

	st, err := ms.Status(u.ID, m.ID, now.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if !st.Frozen || st.Permanent {
		t.Fatalf("status = %+v, want timed freeze", st)
	}

	st, err = ms.Status(u.ID, m.ID, now.AddDate(0, 0, 3))
	if err != nil {
		t.Fatal(err)
	}
	if st.Frozen {
		t.Fatal("freeze not lifted after its deadline")
	}
	if len(st.History) != 2 || st.History[1].Kind != "auto_unfreeze" {
		t.Errorf("history = %+v, want freeze then auto_unfreeze", st.History)
	}

	// the auto-unfreeze is persisted, not recomputed per read
	got, _ := ms.Get(u.ID, m.ID)
	if got.Frozen {
		t.Error("auto-unfreeze was not persisted")
	}
}

func TestFreeze_PermanentAndInvalidDays(t *testing.T) {
	db, _, ms := testServices(t)
	u := seedUser(t, db)
	now := time.Now()

	m, _ := ms.Add(u.ID, "Noor", "", models.ModeAllowance)
	if _, err := ms.Freeze(u.ID, m.ID, 3, now); !errors.Is(err, ErrInvalidFreezeDays) {
		t.Errorf("err = %v, want invalid freeze days", err)
	}

	m, err := ms.Freeze(u.ID, m.ID, 0, now)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Frozen || m.FrozenUntil != nil {
		t.Errorf("member = %+v, want permanent freeze with nil until", m)
	}

	st, _ := ms.Status(u.ID, m.ID, now.AddDate(1, 0, 0))
	if !st.Frozen || !st.Permanent {
		t.Errorf("status a year later = %+v, want still permanently frozen", st)
	}
}

func TestDeleteMember_ResetsActorContext(t *testing.T) {
	db, _, ms := testServices(t)
	u := seedUser(t, db)

	m, _ := ms.Add(u.ID, "Noor", "", models.ModeAllowance)
	db.Model(u).Updates(map[string]interface{}{
		"actor_type":      models.ActorMember,
		"actor_member_id": m.ID,
	})

	if err := ms.Delete(u.ID, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var got models.User
	db.First(&got, u.ID)
	if got.ActorType != models.ActorOwner || got.ActorMemberID != "" {
		t.Errorf("actor context = %s/%q, want owner", got.ActorType, got.ActorMemberID)
	}

	if err := ms.Delete(u.ID, m.ID); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("second delete err = %v, want not found", err)
	}
}

func TestFundMember(t *testing.T) {
	db, ws, ms := testServices(t)
	u := seedUser(t, db)
	ws.Deposit(u.ID, "QAR", 100, "")

	m, _ := ms.Add(u.ID, "Noor", "", models.ModeAllowance)
	if _, err := ws.FundMember(u.ID, m, "QAR", 40); err != nil {
		t.Fatalf("fund: %v", err)
	}

	got, _ := ms.Get(u.ID, m.ID)
	if got.Allowance != 40 {
		t.Errorf("allowance = %f, want 40", got.Allowance)
	}
	var w models.Wallet
	db.Where("user_id = ? AND currency = ?", u.ID, "QAR").First(&w)
	if w.Balance != 60 {
		t.Errorf("owner balance = %f, want 60", w.Balance)
	}

	if _, err := ws.FundMember(u.ID, got, "QAR", 500); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("err = %v, want insufficient balance", err)
	}
}

func TestConvertFx(t *testing.T) {
	db, ws, _ := testServices(t)
	u := seedUser(t, db)
	ws.Deposit(u.ID, "QAR", 364, "")

	outTx, inTx, received, err := ws.ConvertFx(u.ID, "QAR", "USD", 364)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if received != 100 {
		t.Errorf("received = %f, want 100 USD at rate 3.64", received)
	}
	if outTx.Kind != models.TxFxOut || inTx.Kind != models.TxFxIn || outTx.Ref != inTx.Ref {
		t.Errorf("pair = %s/%s ref %q/%q, want linked fx_out/fx_in", outTx.Kind, inTx.Kind, outTx.Ref, inTx.Ref)
	}

	var usd models.Wallet
	db.Where("user_id = ? AND currency = ?", u.ID, "USD").First(&usd)
	if usd.Balance != 100 {
		t.Errorf("USD balance = %f, want 100", usd.Balance)
	}

	if _, _, _, err := ws.ConvertFx(u.ID, "QAR", "QAR", 10); !errors.Is(err, ErrSameCurrency) {
		t.Errorf("err = %v, want same-currency rejection", err)
	}
}

func waitSettled(t *testing.T, db *gorm.DB, txID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var tx models.Transaction
		if err := db.First(&tx, "id = ?", txID).Error; err == nil && tx.Status == models.StatusSettled {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("transaction %s never settled", txID)
}
