package account

import "errors"

// Precondition violations returned by BarExecute before any mutation.
// Internal-consistency failures are not errors: they panic, because
// they can only arise from a bug in the ledger itself.
var (
	// ErrInvalidArgument flags malformed inputs: wrong vector lengths,
	// or a cash-leg price that is not the fixed cash constant.
	ErrInvalidArgument = errors.New("account: invalid argument")

	// ErrInsufficientFunds flags a buy set whose notional plus fees
	// exceeds available cash. The whole bar is rejected, not partially
	// filled.
	ErrInsufficientFunds = errors.New("account: insufficient funds")

	// ErrOverSell flags a sell request above the sellable volume of
	// some instrument.
	ErrOverSell = errors.New("account: oversell")

	// ErrNegativeCash flags a cash-leg request that would drive
	// available cash negative.
	ErrNegativeCash = errors.New("account: negative cash")
)
