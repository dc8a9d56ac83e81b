package ethereum

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// NativeDecimals is the number of decimals of the chain's native coin (wei).
const NativeDecimals = 18

// FromBaseUnits converts an integer amount of the token's smallest unit into
// a decimal amount of whole tokens.
func FromBaseUnits(amount *big.Int, decimals uint8) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -int32(decimals))
}

// ToBaseUnits is the inverse of FromBaseUnits. Fractions below the smallest
// unit are truncated.
func ToBaseUnits(amount decimal.Decimal, decimals uint8) *big.Int {
	return amount.Shift(int32(decimals)).Truncate(0).BigInt()
}
