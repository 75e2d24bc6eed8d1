package payments

import (
	"context"
	"testing"

	"fcshop/src/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	name    types.Processor
	status  ConfirmationStatus
	creates int
}

func (f *fakeGateway) Name() types.Processor { return f.name }

func (f *fakeGateway) CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (string, string, error) {
	f.creates++
	return "fake_ref", "fake_token", nil
}

func (f *fakeGateway) Confirm(ctx context.Context, reference string) (ConfirmationStatus, error) {
	return f.status, nil
}

func TestForResolvesBuiltinGateways(t *testing.T) {
	card, err := For(types.PROCESSOR_CARD)
	require.NoError(t, err)
	assert.Equal(t, types.PROCESSOR_CARD, card.Name())

	wallet, err := For(types.PROCESSOR_WALLET)
	require.NoError(t, err)
	assert.Equal(t, types.PROCESSOR_WALLET, wallet.Name())
}

func TestForUnknownProcessor(t *testing.T) {
	gw, err := For(types.Processor("carrier-pigeon"))
	assert.Nil(t, gw)
	assert.Error(t, err)
}

func TestRegisterSwapsImplementation(t *testing.T) {
	orig, err := For(types.PROCESSOR_CARD)
	require.NoError(t, err)
	defer Register(orig)

	fake := &fakeGateway{name: types.PROCESSOR_CARD, status: CONFIRM_SUCCEEDED}
	Register(fake)

	gw, err := For(types.PROCESSOR_CARD)
	require.NoError(t, err)

	ref, token, err := gw.CreateIntent(context.Background(), 85, "usd", nil)
	require.NoError(t, err)
	assert.Equal(t, "fake_ref", ref)
	assert.Equal(t, "fake_token", token)
	assert.Equal(t, 1, fake.creates)

	status, err := gw.Confirm(context.Background(), "fake_ref")
	require.NoError(t, err)
	assert.Equal(t, CONFIRM_SUCCEEDED, status)
}
