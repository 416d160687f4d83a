package models

// Asset is a shaped IP asset as served to the dashboard: every raw registry
// field plus the normalized display fields.
type Asset map[string]any

// CheckResult is the response of the asset check for one wallet on one network.
type CheckResult struct {
	OK            bool    `json:"ok"`
	Address       string  `json:"address"`
	Network       string  `json:"network"`
	TotalCount    int     `json:"totalCount"`
	OriginalCount int     `json:"originalCount"`
	RemixCount    int     `json:"remixCount"`
	Assets        []Asset `json:"assets"`
}

// Portfolio combines both networks for one wallet.
type Portfolio struct {
	OK             bool    `json:"ok"`
	Address        string  `json:"address"`
	TotalAssets    int     `json:"totalAssets"`
	TestnetAssets  []Asset `json:"testnetAssets"`
	MainnetAssets  []Asset `json:"mainnetAssets"`
	AllAssets      []Asset `json:"allAssets"`
	BalanceTestnet string  `json:"balanceTestnet"`
	BalanceMainnet string  `json:"balanceMainnet"`
	Error          *string `json:"error"`
}

// Balance is the native token balance of a wallet.
type Balance struct {
	OK       bool   `json:"ok"`
	Address  string `json:"address"`
	Network  string `json:"network"`
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
}

// ErrorResponse is the envelope for every failed request.
type ErrorResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
	Status  int    `json:"status,omitempty"`
}
