package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is the response envelope version clients check.
const EnvelopeVersion = 1

// APIEnvelope wraps every JSON response.
type APIEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// APIErrorEnvelope is the envelope for coded errors.
type APIErrorEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer is a huma.Transformer that wraps bodies in the
// versioned envelope. Raw byte bodies (downloads) pass through unchanged.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if b, ok := v.([]byte); ok {
		return b, nil
	}

	code, _ := strconv.Atoi(status)
	if code >= 400 {
		switch e := v.(type) {
		case *APIError:
			return APIErrorEnvelope{
				Version: EnvelopeVersion,
				Code:    e.Code,
				Message: e.Message,
				Details: e.Details,
			}, nil
		case error:
			return APIEnvelope{Version: EnvelopeVersion, Error: e.Error()}, nil
		}
	}

	return APIEnvelope{Version: EnvelopeVersion, Success: code < 400, Data: v}, nil
}
