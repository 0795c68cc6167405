package models

// Address networks. Tether is an ERC-20 token, so its deposit addresses
// live on the Ethereum network.
const (
	NetworkBitcoin  = "bitcoin"
	NetworkEthereum = "ethereum"
	NetworkSolana   = "solana"
)

// Asset describes a tradable coin. IDs follow the market-data provider's
// naming so quotes and trades share a key.
type Asset struct {
	ID      string `json:"id"`
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
	Network string `json:"network"`
}

// SupportedAssets is the closed set of coins the platform trades.
var SupportedAssets = []Asset{
	{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin", Network: NetworkBitcoin},
	{ID: "ethereum", Symbol: "ETH", Name: "Ethereum", Network: NetworkEthereum},
	{ID: "solana", Symbol: "SOL", Name: "Solana", Network: NetworkSolana},
	{ID: "tether", Symbol: "USDT", Name: "Tether", Network: NetworkEthereum},
}

// AssetByID looks up a supported asset by its coin id.
func AssetByID(id string) (Asset, bool) {
	for _, a := range SupportedAssets {
		if a.ID == id {
			return a, true
		}
	}
	return Asset{}, false
}

// AssetIDs returns the ids of all supported assets.
func AssetIDs() []string {
	ids := make([]string, 0, len(SupportedAssets))
	for _, a := range SupportedAssets {
		ids = append(ids, a.ID)
	}
	return ids
}
