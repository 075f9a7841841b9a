package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alsultanqa/mini-back/internal/fx"
	"github.com/alsultanqa/mini-back/internal/models"
)

var (
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrSameCurrency        = errors.New("source and target currency are the same")
	ErrMemberNotFound      = errors.New("member not found")
)

// WalletService owns balances, the transaction ledger, and FX conversion.
type WalletService struct {
	db      *gorm.DB
	settler *Settler
	serial  *SerialGen
	rates   *fx.Table
}

func NewWalletService(db *gorm.DB, settler *Settler, serial *SerialGen, rates *fx.Table) *WalletService {
	return &WalletService{db: db, settler: settler, serial: serial, rates: rates}
}

// getOrCreateWallet fetches the wallet row for a currency, creating a zero
// balance on first touch.
func (s *WalletService) getOrCreateWallet(tx *gorm.DB, userID uint, currency string) (*models.Wallet, error) {
	var w models.Wallet
	err := tx.Where("user_id = ? AND currency = ?", userID, currency).First(&w).Error
	if err == gorm.ErrRecordNotFound {
		w = models.Wallet{UserID: userID, Currency: currency}
		if err := tx.Create(&w).Error; err != nil {
			return nil, err
		}
		return &w, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Wallets returns every wallet of the user, base currency first.
func (s *WalletService) Wallets(userID uint) ([]models.Wallet, error) {
	var ws []models.Wallet
	err := s.db.Where("user_id = ?", userID).Order("currency asc").Find(&ws).Error
	return ws, err
}

// Deposit credits a wallet and records a settled deposit transaction.
func (s *WalletService) Deposit(userID uint, currency string, amount float64, ref string) (*models.Transaction, error) {
	if !fx.Supported(currency) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, currency)
	}
	var created models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		w, err := s.getOrCreateWallet(tx, userID, currency)
		if err != nil {
			return err
		}
		w.Balance += amount
		if err := tx.Save(w).Error; err != nil {
			return err
		}
		created = s.settledTx(userID, models.TxDeposit, amount, currency, models.ActorOwner, "general", ref)
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Withdraw debits a wallet and records a settled withdraw transaction.
func (s *WalletService) Withdraw(userID uint, currency string, amount float64, ref string) (*models.Transaction, error) {
	var created models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		w, err := s.getOrCreateWallet(tx, userID, currency)
		if err != nil {
			return err
		}
		if w.Balance < amount {
			return ErrInsufficientBalance
		}
		w.Balance -= amount
		if err := tx.Save(w).Error; err != nil {
			return err
		}
		created = s.settledTx(userID, models.TxWithdraw, amount, currency, models.ActorOwner, "general", ref)
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// OwnerPay charges a merchant from the owner's wallet. The wallet is
// debited immediately but the transaction stays pending until the settler
// fires; a reset in between cancels the settlement.
func (s *WalletService) OwnerPay(userID uint, currency string, amount float64, category, merchant string) (*models.Transaction, error) {
	var created models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		w, err := s.getOrCreateWallet(tx, userID, currency)
		if err != nil {
			return err
		}
		if w.Balance < amount {
			return ErrInsufficientBalance
		}
		w.Balance -= amount
		if err := tx.Save(w).Error; err != nil {
			return err
		}
		created = models.Transaction{
			ID:       uuid.NewString(),
			UserID:   userID,
			Ts:       time.Now(),
			Kind:     models.TxMerchant,
			Amount:   amount,
			Currency: currency,
			Status:   models.StatusPending,
			Actor:    models.ActorOwner,
			Category: normalizeCategory(category),
			Ref:      merchant,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	s.settler.Schedule(created.ID)
	return &created, nil
}

// MemberPay charges a purchase against a member. The check order is
// freeze, then funds, then limits; the first failure rejects the spend
// without mutating anything. Member purchases settle immediately.
func (s *WalletService) MemberPay(userID uint, member *models.Member, baseCurrency string, amount float64, category, merchant string, now time.Time) (*models.Transaction, error) {
	if member.Frozen {
		if member.FrozenUntil == nil || now.Before(*member.FrozenUntil) {
			return nil, ErrMemberFrozen
		}
		// the freeze lapsed; clear it before spending
		unfreezeLapsed(member, now)
	}

	var created models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var wallet *models.Wallet
		if member.Mode == models.ModeAllowance {
			if member.Allowance < amount {
				return ErrAllowanceExceeded
			}
		} else {
			w, err := s.getOrCreateWallet(tx, userID, baseCurrency)
			if err != nil {
				return err
			}
			if w.Balance < amount {
				return ErrInsufficientBalance
			}
			wallet = w
		}

		// window refresh is lazy; a rejection rolls it back and the next
		// check simply refreshes again
		RefreshLimitWindows(member, now)
		if err := CheckLimits(member, amount); err != nil {
			return err
		}

		if member.Mode == models.ModeAllowance {
			member.Allowance -= amount
		} else {
			wallet.Balance -= amount
			if err := tx.Save(wallet).Error; err != nil {
				return err
			}
		}
		BumpLimitCounters(member, amount)
		if err := tx.Save(member).Error; err != nil {
			return err
		}

		created = s.settledTx(userID, models.TxMemberPurchase, amount, baseCurrency, member.ID, category, merchant)
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// FundMember moves money from the owner's base wallet into a member's
// allowance and records a settled member_fund transaction.
func (s *WalletService) FundMember(userID uint, member *models.Member, baseCurrency string, amount float64) (*models.Transaction, error) {
	var created models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		w, err := s.getOrCreateWallet(tx, userID, baseCurrency)
		if err != nil {
			return err
		}
		if w.Balance < amount {
			return ErrInsufficientBalance
		}
		w.Balance -= amount
		if err := tx.Save(w).Error; err != nil {
			return err
		}
		member.Allowance += amount
		if err := tx.Save(member).Error; err != nil {
			return err
		}
		created = s.settledTx(userID, models.TxMemberFund, amount, baseCurrency, models.ActorOwner, "general", member.Name)
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ConvertFx exchanges between two wallets through the QAR anchor and
// records an fx_out / fx_in pair sharing one reference id.
func (s *WalletService) ConvertFx(userID uint, from, to string, amount float64) (outTx, inTx *models.Transaction, received float64, err error) {
	if from == to {
		return nil, nil, 0, ErrSameCurrency
	}
	if !fx.Supported(from) || !fx.Supported(to) {
		return nil, nil, 0, ErrUnsupportedCurrency
	}

	qarPerFrom := s.anchorRate(from)
	qarPerTo := s.anchorRate(to)
	if qarPerFrom <= 0 || qarPerTo <= 0 {
		return nil, nil, 0, ErrUnsupportedCurrency
	}
	received = amount * qarPerFrom / qarPerTo

	ref := uuid.NewString()
	var o, i models.Transaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		src, err := s.getOrCreateWallet(tx, userID, from)
		if err != nil {
			return err
		}
		if src.Balance < amount {
			return ErrInsufficientBalance
		}
		dst, err := s.getOrCreateWallet(tx, userID, to)
		if err != nil {
			return err
		}
		src.Balance -= amount
		dst.Balance += received
		if err := tx.Save(src).Error; err != nil {
			return err
		}
		if err := tx.Save(dst).Error; err != nil {
			return err
		}
		o = s.settledTx(userID, models.TxFxOut, amount, from, models.ActorOwner, "general", ref)
		i = s.settledTx(userID, models.TxFxIn, received, to, models.ActorOwner, "general", ref)
		if err := tx.Create(&o).Error; err != nil {
			return err
		}
		return tx.Create(&i).Error
	})
	if err != nil {
		return nil, nil, 0, err
	}
	return &o, &i, received, nil
}

// Transactions lists the ledger newest first, scoped to a member when the
// active actor is one.
func (s *WalletService) Transactions(userID uint, actorMemberID string, limit int) ([]models.Transaction, error) {
	q := s.db.Where("user_id = ?", userID)
	if actorMemberID != "" {
		q = q.Where("actor = ?", actorMemberID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var txs []models.Transaction
	err := q.Order("ts desc").Find(&txs).Error
	return txs, err
}

// Reset wipes the user's financial state: wallets, ledger, members, goals,
// and insight history. Pending settlements are cancelled first so a late
// timer cannot write into the fresh session.
func (s *WalletService) Reset(userID uint) error {
	s.settler.CancelAll()
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&models.Transaction{}, &models.Wallet{}, &models.Member{},
			&models.Goal{}, &models.InsightSnapshot{},
		} {
			if err := tx.Where("user_id = ?", userID).Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// anchorRate returns QAR units per one unit of ccy; the anchor itself is 1.
func (s *WalletService) anchorRate(ccy string) float64 {
	if ccy == fx.Anchor {
		return 1
	}
	if r, ok := s.rates.Lookup(ccy); ok {
		return r
	}
	return 0
}

func (s *WalletService) settledTx(userID uint, kind string, amount float64, currency, actor, category, ref string) models.Transaction {
	now := time.Now()
	serialID, blockHash := s.serial.Next(currency, now)
	return models.Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Ts:        now,
		Kind:      kind,
		Amount:    amount,
		Currency:  currency,
		Status:    models.StatusSettled,
		Actor:     actor,
		Category:  normalizeCategory(category),
		Ref:       ref,
		SerialID:  serialID,
		BlockHash: blockHash,
	}
}

func normalizeCategory(c string) string {
	if c == "" {
		return "general"
	}
	return c
}
