package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

func TestSizeCombo(t *testing.T) {
	a := testAnalyzer()

	longYes := domain.AtomicPosition{
		Bias: domain.BiasBull, CostPerUnit: 0.40, MaxPayout: domain.Bounded(1),
	}

	t.Run("vanilla cost-ratio sizing lands near the target", func(t *testing.T) {
		shortCall := domain.AtomicPosition{
			Bias: domain.BiasBear, CostPerUnit: -1050, MaxPayout: domain.Bounded(1050),
		}

		s := a.SizeCombo(domain.Combo{BinaryLeg: longYes, OptionLeg: shortCall})
		assert.True(t, s.Viable())
		// ratio = 1050 / (1 - 0.40) = 1750; cost per option unit = 1750
		assert.InDelta(t, 1.7, s.OptionQty, 1e-9)
		assert.InDelta(t, 2975, s.BinaryQty, 1e-9)

		total := s.OptionQty*1050 + s.BinaryQty*0.40
		assert.GreaterOrEqual(t, total, a.params.MinNotional)
		assert.LessOrEqual(t, total, a.params.MaxNotional)
	})

	t.Run("spread sizing matches payout ceilings", func(t *testing.T) {
		spread := domain.AtomicPosition{
			Bias: domain.BiasBear, CostPerUnit: 1300,
			MaxPayout: domain.Bounded(10000), IsSpread: true,
		}

		s := a.SizeCombo(domain.Combo{BinaryLeg: longYes, OptionLeg: spread})
		assert.True(t, s.Viable())
		// ratio = 10000 / 1; cost per option unit = 1300 + 10000*0.40 = 5300
		assert.InDelta(t, 0.6, s.OptionQty, 1e-9)
		assert.InDelta(t, 6000, s.BinaryQty, 1e-9)
	})

	t.Run("option quantity is stepped to the lot increment", func(t *testing.T) {
		shortCall := domain.AtomicPosition{
			Bias: domain.BiasBear, CostPerUnit: -1050, MaxPayout: domain.Bounded(1050),
		}
		s := a.SizeCombo(domain.Combo{BinaryLeg: longYes, OptionLeg: shortCall})
		steps := s.OptionQty / a.params.LotStep
		assert.InDelta(t, 17, steps, 1e-9)
	})

	t.Run("near-one binary price cannot anchor a long", func(t *testing.T) {
		expensive := domain.AtomicPosition{
			Bias: domain.BiasBull, CostPerUnit: 0.9995, MaxPayout: domain.Bounded(1),
		}
		shortCall := domain.AtomicPosition{
			Bias: domain.BiasBear, CostPerUnit: -1050, MaxPayout: domain.Bounded(1050),
		}
		s := a.SizeCombo(domain.Combo{BinaryLeg: expensive, OptionLeg: shortCall})
		assert.False(t, s.Viable())
	})

	t.Run("unbounded option payout cannot be payout-matched", func(t *testing.T) {
		unbounded := domain.AtomicPosition{
			Bias: domain.BiasBear, CostPerUnit: 1300,
			MaxPayout: domain.Unbounded(), IsSpread: true,
		}
		s := a.SizeCombo(domain.Combo{BinaryLeg: longYes, OptionLeg: unbounded})
		assert.False(t, s.Viable())
	})

	t.Run("free option leg is a no-trade", func(t *testing.T) {
		free := domain.AtomicPosition{Bias: domain.BiasBear, CostPerUnit: 0}
		s := a.SizeCombo(domain.Combo{BinaryLeg: longYes, OptionLeg: free})
		assert.False(t, s.Viable())
	})

	t.Run("notional outside the band fails the sizing", func(t *testing.T) {
		// Cheap legs clamp at the max option quantity and land under the
		// minimum notional.
		cheapLong := domain.AtomicPosition{
			Bias: domain.BiasBull, CostPerUnit: 0.50, MaxPayout: domain.Bounded(1),
		}
		cheapOpt := domain.AtomicPosition{
			Bias: domain.BiasBear, CostPerUnit: 1, MaxPayout: domain.Bounded(1),
		}
		s := a.SizeCombo(domain.Combo{BinaryLeg: cheapLong, OptionLeg: cheapOpt})
		assert.False(t, s.Viable())
	})
}

func TestRoundToStep(t *testing.T) {
	assert.InDelta(t, 1.7, roundToStep(1.714, 0.1), 1e-9)
	assert.InDelta(t, 1.8, roundToStep(1.76, 0.1), 1e-9)
	assert.InDelta(t, 0.0, roundToStep(0.04, 0.1), 1e-9)
}
