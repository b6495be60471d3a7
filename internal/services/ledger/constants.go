package ledger

// Default configuration values
const (
	DefaultCurrency        = "BRL"
	DefaultStartingBalance = "1000"
)

// Transaction listing bounds
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)
