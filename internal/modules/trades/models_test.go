package trades

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetTypeFromString(t *testing.T) {
	at, err := AssetTypeFromString("option_call")
	require.NoError(t, err)
	assert.Equal(t, AssetTypeOptionCall, at)

	_, err = AssetTypeFromString("BOND")
	assert.Error(t, err)
}

func TestTradeTypeFromString(t *testing.T) {
	tt, err := TradeTypeFromString("early_exercise")
	require.NoError(t, err)
	assert.Equal(t, TradeTypeEarlyExercise, tt)

	_, err = TradeTypeFromString("TRANSFER")
	assert.Error(t, err)
}

func TestAssetTypeIsOption(t *testing.T) {
	assert.True(t, AssetTypeOptionCall.IsOption())
	assert.True(t, AssetTypeOptionPut.IsOption())
	assert.False(t, AssetTypeStock.IsOption())
	assert.False(t, AssetTypeETF.IsOption())
}
