package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestPlaceOrder_CountsPlacementsByOutcome(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	counter, err := provider.Meter("test").Int64Counter("storefront.checkout.placements")
	require.NoError(t, err)

	store := newMemStore()
	seedProduct(store, 1, time.Now())
	sender := new(mockSender)
	sender.On("Send", mock.Anything, mock.Anything).Return(nil)

	svc := newTestCheckout(store, sender, nil).(*checkoutService)
	svc.placements = counter

	ctx := context.Background()
	for _, card := range []string{"1111", "1111", "2222", "3333"} {
		_, err := svc.PlaceOrder(ctx, checkoutRequest(card, "", 1))
		require.NoError(t, err)
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	counts := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				status, _ := dp.Attributes.Value(attribute.Key("status"))
				fulfillment, _ := dp.Attributes.Value(attribute.Key("fulfillment"))
				counts[status.AsString()+"/"+fulfillment.AsString()] += dp.Value
			}
		}
	}

	require.Equal(t, map[string]int64{
		"approved/recorded":                     1,
		"approved/recorded_inventory_unchanged": 1,
		"declined/skipped":                      1,
		"failed/skipped":                        1,
	}, counts)
}
