package config

import "strings"

const (
	Testnet = "testnet"
	Mainnet = "mainnet"

	DefaultAPIBase = "https://api.storyapis.com/api"
)

// Network describes one Story deployment the dashboard can switch to.
type Network struct {
	Label    string `yaml:"label" json:"label"`
	ID       string `yaml:"id" json:"id"`
	ChainID  int64  `yaml:"chain_id" json:"chainId"`
	Name     string `yaml:"name" json:"name"`
	RPC      string `yaml:"rpc" json:"rpc"`
	APIBase  string `yaml:"api_base" json:"apiBase"`
	Explorer string `yaml:"explorer" json:"explorer"`
	Currency string `yaml:"currency" json:"currency"`
}

// DefaultNetworks returns the built-in Aeneid testnet and Story mainnet entries.
// APIBase is left empty and filled from STORY_API_BASE by Load.
func DefaultNetworks() []Network {
	return []Network{
		{
			Label:    Testnet,
			ID:       "aeneid",
			ChainID:  1315,
			Name:     "Story Testnet (Aeneid)",
			RPC:      "https://aeneid.storyrpc.io",
			Explorer: "https://aeneid.explorer.story.foundation",
			Currency: "IP",
		},
		{
			Label:    Mainnet,
			ID:       "story",
			ChainID:  1514,
			Name:     "Story Mainnet",
			RPC:      "https://mainnet.storyrpc.io",
			Explorer: "https://www.storyscan.io",
			Currency: "IP",
		},
	}
}

// DisplayName is used in user-facing error strings ("Story Testnet").
func (n Network) DisplayName() string {
	switch n.Label {
	case Testnet:
		return "Story Testnet"
	case Mainnet:
		return "Story Mainnet"
	}
	return n.Name
}

func rpcEnvKey(label string) string {
	return "STORY_" + strings.ToUpper(label) + "_RPC"
}
