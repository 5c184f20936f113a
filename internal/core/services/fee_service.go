package services

import (
	"github.com/finvault/ledgersvc/internal/core/domain"
	portssvc "github.com/finvault/ledgersvc/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// FeeConfig holds the fee schedule constants.
type FeeConfig struct {
	BaseFee             decimal.Decimal // flat fee applied to every transfer
	PercentFeeThreshold decimal.Decimal // percent fee kicks in above this amount
	PercentFeeRate      decimal.Decimal // e.g. 0.001 for 0.1%
	WithdrawalSurcharge decimal.Decimal // extra flat fee on withdrawals
}

// DefaultFeeConfig returns the platform fee schedule.
func DefaultFeeConfig() FeeConfig {
	return FeeConfig{
		BaseFee:             decimal.NewFromFloat(2.50),
		PercentFeeThreshold: decimal.NewFromInt(1000),
		PercentFeeRate:      decimal.NewFromFloat(0.001),
		WithdrawalSurcharge: decimal.NewFromFloat(1.50),
	}
}

// feeService computes transfer fees. It is a pure function of (amount, type):
// no I/O, no clock, no state.
type feeService struct {
	cfg FeeConfig
}

// NewFeeService creates a new fee calculator with the given schedule.
func NewFeeService(cfg FeeConfig) portssvc.FeeSvcFacade {
	return &feeService{cfg: cfg}
}

var _ portssvc.FeeSvcFacade = (*feeService)(nil)

// EstimateFee returns base fee + 0.1% of amount when amount exceeds the
// threshold, plus the surcharge for withdrawals, rounded half-up to 2 places.
func (s *feeService) EstimateFee(amount decimal.Decimal, txnType domain.TransactionType) decimal.Decimal {
	fee := s.cfg.BaseFee
	if amount.GreaterThan(s.cfg.PercentFeeThreshold) {
		fee = fee.Add(amount.Mul(s.cfg.PercentFeeRate))
	}
	if txnType == domain.TypeWithdrawal {
		fee = fee.Add(s.cfg.WithdrawalSurcharge)
	}
	// decimal.Round rounds half away from zero; amounts are positive, so this
	// is round-half-up.
	return fee.Round(2)
}
