package tickerModel

// Ticker is one reference-catalog entry. Informational only: the
// aggregator never reads it.
type Ticker struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Exchange    string `json:"exchange"`
	Market      string `json:"market"`
}

// RawCatalogPage mirrors one page of the provider's paginated catalog.
type RawCatalogPage struct {
	Results []RawTicker `json:"results"`
	NextURL string      `json:"next_url"`
}

type RawTicker struct {
	Ticker          string `json:"ticker"`
	Name            string `json:"name"`
	PrimaryExchange string `json:"primary_exchange"`
	Market          string `json:"market"`
}
