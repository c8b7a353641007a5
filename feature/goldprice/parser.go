package goldprice

import (
	"encoding/json"

	"goldwatch/core/apperror"
)

// feedPayload mirrors the provider's JSON envelope.
type feedPayload struct {
	Payload struct {
		Results []feedResult `json:"results"`
	} `json:"payload"`
}

type feedResult struct {
	ServerName string  `json:"server_name"`
	Price      float64 `json:"price"`
}

// parseQuotes decodes the raw feed payload into quotes. A payload that does
// not decode, or decodes to nothing, is a ParsingError and aborts the run.
func parseQuotes(raw []byte) ([]Quote, error) {
	var payload feedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, apperror.NewParsing("malformed gold price feed payload", err)
	}
	if len(payload.Payload.Results) == 0 {
		return nil, apperror.NewParsing("gold price feed payload contains no results", nil)
	}

	quotes := make([]Quote, 0, len(payload.Payload.Results))
	for _, r := range payload.Payload.Results {
		quotes = append(quotes, Quote{ServerName: r.ServerName, Price: r.Price})
	}
	return quotes, nil
}
