package telemetry

import (
	"context"
	"testing"

	"github.com/englishbooster/affiliate/internal/domain/affiliate"
	"github.com/englishbooster/affiliate/internal/domain/referral"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumInt(data metricdata.Aggregation) int64 {
	var total int64
	if s, ok := data.(metricdata.Sum[int64]); ok {
		for _, dp := range s.DataPoints {
			total += dp.Value
		}
	}
	return total
}

func sumFloat(data metricdata.Aggregation) float64 {
	var total float64
	if s, ok := data.(metricdata.Sum[float64]); ok {
		for _, dp := range s.DataPoints {
			total += dp.Value
		}
	}
	return total
}

func TestReferralMetrics_Handle(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewReferralMetrics(provider.Meter("test"))
	require.NoError(t, err)
	assert.Len(t, m.EventTypes(), 6)

	a := &affiliate.Affiliate{UserID: uuid.New(), ReferralCode: "ABCD1234"}
	a.ID = uuid.New()
	r := &referral.Referral{
		AffiliateID:      a.ID,
		ProgramID:        uuid.New(),
		CommissionAmount: decimal.NewFromInt(200000),
	}
	r.ID = uuid.New()

	ctx := context.Background()
	require.NoError(t, m.Handle(ctx, affiliate.NewAppliedEvent(a)))
	require.NoError(t, m.Handle(ctx, affiliate.NewApprovedEvent(a)))
	require.NoError(t, m.Handle(ctx, affiliate.NewRejectedEvent(a)))
	require.NoError(t, m.Handle(ctx, referral.NewCreatedEvent(r)))
	require.NoError(t, m.Handle(ctx, referral.NewConfirmedEvent(r)))
	require.NoError(t, m.Handle(ctx, referral.NewPaidEvent(r)))

	data := collect(t, reader)
	assert.Equal(t, int64(1), sumInt(data["affiliate_applications_total"]))
	assert.Equal(t, int64(2), sumInt(data["affiliate_decisions_total"]))
	assert.Equal(t, int64(1), sumInt(data["referrals_created_total"]))
	assert.Equal(t, int64(2), sumInt(data["referral_transitions_total"]))
	assert.InDelta(t, 200000.0, sumFloat(data["referral_commission_created_idr"]), 0.001)
	assert.InDelta(t, 200000.0, sumFloat(data["referral_commission_paid_idr"]), 0.001)
}
