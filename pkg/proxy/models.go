package proxy

import "encoding/json"

// Ret is the outer wrapper of every proxy response.
type Ret struct {
	Response Response `json:"response"`
}

// Response mirrors the envelope used by other vehicle-API proxies so existing home-automation
// integrations can consume it unchanged.
type Response struct {
	Result   bool            `json:"result"`
	Reason   string          `json:"reason"`
	Vin      string          `json:"vin"`
	Command  string          `json:"command"`
	Response json.RawMessage `json:"response,omitempty"`
}
