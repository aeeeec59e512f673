// Package ledger implements the city token: per-citizen wallets, a
// treasury, and a bounded hash-chained transaction log. Transfers are
// synchronous and atomic under the simulation lock; a failed transfer
// leaves every balance untouched.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/soratane/aicity/internal/citizens"
	"github.com/soratane/aicity/internal/rng"
	"github.com/soratane/aicity/internal/world"
)

// Sentinel account names. System mints from nothing; treasury absorbs
// fees and burns.
const (
	SystemAccount   = "system"
	TreasuryAccount = "treasury"
)

const (
	feeRate        = 0.01
	maxLog         = 500
	initialBalance = 100.0
	initialReserve = 10000.0
)

// Transaction is one settled transfer. Amount is the gross amount; the
// fee was deducted from it before crediting the receiver.
type Transaction struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Amount   float64 `json:"amount"`
	Fee      float64 `json:"fee"`
	Reason   string  `json:"reason"`
	Tick     int     `json:"tick"`
	PrevHash string  `json:"prev_hash"`
	TxHash   string  `json:"tx_hash"`
}

// Engine holds wallets, the treasury, and the chained log.
type Engine struct {
	Treasury    float64
	TotalSupply float64

	wallets  map[string]float64
	log      []Transaction // newest first
	lastHash string
}

// New creates the ledger with the treasury reserve minted.
func New() *Engine {
	return &Engine{
		Treasury:    initialReserve,
		TotalSupply: initialReserve,
		wallets:     make(map[string]float64),
		lastHash:    "genesis",
	}
}

// InitWallets funds every citizen's starting balance, expanding supply.
func (e *Engine) InitWallets(reg *citizens.Registry) {
	for _, c := range reg.All() {
		e.wallets[c.ID] = initialBalance
		e.TotalSupply += initialBalance
	}
}

// Balance returns a citizen's wallet (0 for unknown accounts).
func (e *Engine) Balance(citizenID string) float64 {
	return round2(e.wallets[citizenID])
}

func hashTx(from, to string, amount float64, reason string, tick int, prev string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%.2f:%s:%d:%s", from, to, amount, reason, tick, prev)))
	return hex.EncodeToString(sum[:])[:16]
}

// Transfer moves amount from one account to another. The system account
// mints, so it never lacks funds; anyone else must cover the gross
// amount or the transfer is refused with no state change. A 1% fee is
// routed to the treasury.
func (e *Engine) Transfer(from, to string, amount float64, reason string, tick int) bool {
	if amount <= 0 {
		return false
	}
	amount = round2(amount)

	if from != SystemAccount {
		if e.wallets[from] < amount {
			return false
		}
		e.wallets[from] = round2(e.wallets[from] - amount)
	} else {
		e.TotalSupply = round2(e.TotalSupply + amount)
	}

	fee := round2(amount * feeRate)
	net := round2(amount - fee)
	e.Treasury = round2(e.Treasury + fee)

	if to == TreasuryAccount {
		e.Treasury = round2(e.Treasury + net)
	} else {
		e.wallets[to] = round2(e.wallets[to] + net)
	}

	tx := Transaction{
		From: from, To: to, Amount: amount, Fee: fee,
		Reason: reason, Tick: tick, PrevHash: e.lastHash,
	}
	tx.TxHash = hashTx(from, to, amount, reason, tick, e.lastHash)
	e.lastHash = tx.TxHash

	e.log = append([]Transaction{tx}, e.log...)
	if len(e.log) > maxLog {
		e.log = e.log[:maxLog]
	}
	return true
}

// Reward mints a system payout to a citizen.
func (e *Engine) Reward(citizenID string, amount float64, reason string, tick int) {
	e.Transfer(SystemAccount, citizenID, amount, reason, tick)
}

// Tick distributes the scheduled rewards: a daily work payout at 17:00,
// a parliament stipend every hundredth tick, and an occasional
// commerce bonus for merchants and chefs.
func (e *Engine) Tick(clock *world.Clock, reg *citizens.Registry, parliamentIDs []string, r *rng.Provider) {
	if clock.Hour == 17 && clock.Minute < 10 {
		for _, c := range reg.All() {
			if _, ok := e.wallets[c.ID]; !ok {
				// Citizens born after init get a wallet on first payout.
				e.wallets[c.ID] = 0
			}
			if c.Employer != "" {
				e.Reward(c.ID, 2.0, "daily work reward", clock.Tick)
			}
		}
	}

	if clock.Tick%100 == 0 {
		for _, pid := range parliamentIDs {
			if reg.Get(pid) != nil {
				e.Reward(pid, 5.0, "parliamentary stipend", clock.Tick)
			}
		}
	}

	if clock.Tick%25 == 0 {
		for _, c := range reg.All() {
			if (c.Role == citizens.RoleMerchant || c.Role == citizens.RoleChef) && r.Chance(0.3) {
				e.Reward(c.ID, 3.0, "commerce bonus", clock.Tick)
			}
		}
	}
}

// Recent returns up to n transactions, newest first.
func (e *Engine) Recent(n int) []Transaction {
	if n > len(e.log) {
		n = len(e.log)
	}
	out := make([]Transaction, n)
	copy(out, e.log[:n])
	return out
}

// LogSize reports how many transactions the bounded log holds.
func (e *Engine) LogSize() int {
	return len(e.log)
}

// VerifyWindow recomputes every retained hash and checks each
// transaction links to its predecessor. The oldest retained entry's
// PrevHash is unverifiable once the ring has evicted its parent, so
// only the links inside the window are checked.
func (e *Engine) VerifyWindow() error {
	for i, tx := range e.log {
		want := hashTx(tx.From, tx.To, tx.Amount, tx.Reason, tx.Tick, tx.PrevHash)
		if tx.TxHash != want {
			return fmt.Errorf("transaction %d: hash mismatch: have %s want %s", i, tx.TxHash, want)
		}
		if i+1 < len(e.log) && tx.PrevHash != e.log[i+1].TxHash {
			return fmt.Errorf("transaction %d: broken chain link", i)
		}
	}
	return nil
}

// CirculatingSupply sums every wallet plus the treasury.
func (e *Engine) CirculatingSupply() float64 {
	total := e.Treasury
	for _, bal := range e.wallets {
		total += bal
	}
	return round2(total)
}

func round2(v float64) float64 {
	if v < 0 {
		return float64(int(v*100-0.5)) / 100
	}
	return float64(int(v*100+0.5)) / 100
}
