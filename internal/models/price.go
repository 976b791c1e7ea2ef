package models

// Candle represents a single day's OHLCV price data.
type Candle struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// CompanyProfile holds display metadata for a ticker.
type CompanyProfile struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Logo     string `json:"logo,omitempty"`
	WebURL   string `json:"web_url,omitempty"`
}
