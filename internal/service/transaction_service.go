package service

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/portfolio-tracker/internal/types"
)

// transactionWindow bounds how far back mock timestamps reach
const transactionWindow = 30 * 24 * time.Hour

// TransactionProvider supplies the recent transactions of an address
type TransactionProvider interface {
	FetchTransactions(ctx context.Context, address string) []types.TransactionRecord
}

// MockTransactionProvider fabricates transaction records.
// It stands in for real history retrieval, which is not implemented.
type MockTransactionProvider struct {
	rng   *lockedSource
	count int
	now   func() time.Time
}

// MockTransactionConfig holds configuration for the mock transaction provider
type MockTransactionConfig struct {
	Count  int
	Random RandomSource     // nil means a time-seeded source
	Now    func() time.Time // nil means time.Now
}

// NewMockTransactionProvider creates a new mock transaction provider
func NewMockTransactionProvider(cfg MockTransactionConfig) *MockTransactionProvider {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &MockTransactionProvider{
		rng:   newLockedSource(cfg.Random),
		count: cfg.Count,
		now:   now,
	}
}

// FetchTransactions returns Count records involving address.
// A sent record has address as sender; a received one has it as recipient.
func (p *MockTransactionProvider) FetchTransactions(_ context.Context, address string) []types.TransactionRecord {
	records := make([]types.TransactionRecord, 0, p.count)
	now := p.now()

	for i := 0; i < p.count; i++ {
		var hash [32]byte
		var counterparty [20]byte
		p.rng.fill(hash[:])
		p.rng.fill(counterparty[:])

		record := types.TransactionRecord{
			Hash:      "0x" + hex.EncodeToString(hash[:]),
			Value:     decimal.NewFromFloat(p.rng.Float64()).StringFixed(4),
			Timestamp: now.Add(-time.Duration(p.rng.Int64N(int64(transactionWindow)))).UnixMilli(),
		}

		other := common.BytesToAddress(counterparty[:]).Hex()
		if p.rng.Float64() < 0.5 {
			record.Direction = types.DirectionSent
			record.From, record.To = address, other
		} else {
			record.Direction = types.DirectionReceived
			record.From, record.To = other, address
		}

		records = append(records, record)
	}

	return records
}
