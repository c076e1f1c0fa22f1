package binance

import "encoding/json"

// searchRequest is the body of the C2C advertisement search endpoint.
type searchRequest struct {
	Asset         string   `json:"asset"`
	Fiat          string   `json:"fiat"`
	TradeType     string   `json:"tradeType"`
	Page          int      `json:"page"`
	Rows          int      `json:"rows"`
	PayTypes      []string `json:"payTypes,omitempty"`
	PublisherType *string  `json:"publisherType"`
	TransAmount   string   `json:"transAmount,omitempty"`
}

// apiEnvelope is the Binance bapi response wrapper. Code "000000" with
// success=true is the only success shape.
type apiEnvelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
}

// apiSearchRecord pairs one advertisement with its publisher profile.
type apiSearchRecord struct {
	Adv        apiAdv        `json:"adv"`
	Advertiser apiAdvertiser `json:"advertiser"`
}

// apiAdv is the advertisement half of a search record. Binance encodes
// numbers as strings.
type apiAdv struct {
	Price                string         `json:"price"`
	SurplusAmount        string         `json:"surplusAmount"`
	MinSingleTransAmount string         `json:"minSingleTransAmount"`
	MaxSingleTransAmount string         `json:"maxSingleTransAmount"`
	TradeMethods         []apiTradePath `json:"tradeMethods"`
	Asset                string         `json:"asset"`
	FiatUnit             string         `json:"fiatUnit"`
}

// apiTradePath is one payment rail on an advertisement.
type apiTradePath struct {
	TradeMethodName string `json:"tradeMethodName"`
	Identifier      string `json:"identifier"`
}

// apiAdvertiser is the publisher profile half of a search record.
type apiAdvertiser struct {
	NickName           string      `json:"nickName"`
	MonthOrderCount    json.Number `json:"monthOrderCount"`
	MonthFinishRate    json.Number `json:"monthFinishRate"`
	PositiveRate       json.Number `json:"positiveRate"`
	UserType           string      `json:"userType"`
	UserGrade          json.Number `json:"userGrade"`
	Badges             []string    `json:"badges"`
	VipLevel           json.Number `json:"vipLevel"`
	ActiveTimeInSecond json.Number `json:"activeTimeInSecond"`
}

// apiFilterConditions is the payload of the filter-conditions endpoint, used
// to discover which assets trade against a fiat currency.
type apiFilterConditions struct {
	Assets []apiAssetEntry `json:"assets"`
}

type apiAssetEntry struct {
	Asset string `json:"asset"`
}
