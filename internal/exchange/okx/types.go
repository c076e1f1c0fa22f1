package okx

import "encoding/json"

// apiEnvelope is the standard OKX v5 response wrapper. Code "0" is success;
// anything else carries a human-readable message in Msg.
type apiEnvelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// apiTradingPair is one entry of the tradingPairs endpoint.
type apiTradingPair struct {
	BaseCurrency  string `json:"baseCurrency"`
	QuoteCurrency string `json:"quoteCurrency"`
}

// apiPaymentMethod is one payment rail attached to an advertisement.
type apiPaymentMethod struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
}

// apiAdvertisement is one raw P2P advertisement record. OKX encodes most
// numbers as strings; normalization coerces them with explicit defaults.
type apiAdvertisement struct {
	NickName               string             `json:"nickName"`
	Price                  string             `json:"price"`
	AvailableAmount        string             `json:"availableAmount"`
	MinSingleTransAmount   string             `json:"minSingleTransAmount"`
	MaxSingleTransAmount   string             `json:"maxSingleTransAmount"`
	PaymentMethods         []apiPaymentMethod `json:"paymentMethods"`
	CompletedOrdersCount30 json.Number        `json:"completedOrdersCount30d"`
	CompletionRate30d      string             `json:"completionRate30d"`
	PositiveRate           string             `json:"positiveRate"`
	UserType               string             `json:"userType"`
	UserGrade              json.Number        `json:"userGrade"`
	Badges                 []string           `json:"badges"`
	VIPLevel               string             `json:"vipLevel"`
	ActiveTimeInSecond     json.Number        `json:"activeTimeInSecond"`
	Volume24h              string             `json:"volume24h"`
	PriceDeviation         string             `json:"priceDeviation"`
}

// apiTrade is one entry of the publicTrades endpoint.
type apiTrade struct {
	Timestamp string `json:"timestamp"` // unix milliseconds
	Price     string `json:"price"`
	Amount    string `json:"amount"`
	Side      string `json:"side"`
}

// apiUserInfo is the userInfo endpoint payload.
type apiUserInfo struct {
	NickName               string      `json:"nickName"`
	UserType               string      `json:"userType"`
	UserGrade              json.Number `json:"userGrade"`
	CompletedOrdersCount30 json.Number `json:"completedOrdersCount30d"`
	CompletionRate30d      string      `json:"completionRate30d"`
	PositiveRate           string      `json:"positiveRate"`
	Badges                 []string    `json:"badges"`
	VIPLevel               string      `json:"vipLevel"`
	ActiveTimeInSecond     json.Number `json:"activeTimeInSecond"`
	Volume24h              string      `json:"volume24h"`
	RegistrationTime       string      `json:"registrationTime"` // unix milliseconds
}
