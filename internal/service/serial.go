package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// SerialGen issues decorative Serial Twin identifiers and block hashes for
// settled transactions. These are presentation strings, not proofs.
type SerialGen struct {
	mu   sync.Mutex
	last uint64
}

// NewSerialGen creates a generator starting at index zero.
func NewSerialGen() *SerialGen {
	return &SerialGen{}
}

// Next returns a serial id like "QAR-SCL-20260830-000001" and a random
// block hash like "bch_<32 hex chars>".
func (g *SerialGen) Next(currency string, now time.Time) (serialID, blockHash string) {
	g.mu.Lock()
	g.last++
	idx := g.last
	g.mu.Unlock()

	serialID = fmt.Sprintf("%s-SCL-%s-%06d", currency, now.Format("20060102"), idx)

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err == nil {
		blockHash = "bch_" + hex.EncodeToString(buf)
	}
	return serialID, blockHash
}
