package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"riide/internal/domain/pricing"
)

// VehicleRef accepts the vehicle id as a JSON number or a numeric string.
type VehicleRef int

func (v *VehicleRef) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if raw == "" || raw == "null" {
		*v = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return errors.New("vehicleId must be an integer")
	}
	*v = VehicleRef(n)
	return nil
}

type CustomerPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CheckoutRequest is the browser payload. PricingEstimate is kept raw: a malformed claim
// must fail reconciliation rather than the request decoding.
type CheckoutRequest struct {
	VehicleID       VehicleRef      `json:"vehicleId"`
	StartDate       string          `json:"startDate"`
	EndDate         string          `json:"endDate"`
	Customer        CustomerPayload `json:"customer"`
	Notes           string          `json:"notes"`
	PricingEstimate json.RawMessage `json:"pricingEstimate"`
}

type EstimateMismatchResponse struct {
	Error                 string           `json:"error"`
	PricingEstimateServer pricing.Estimate `json:"pricingEstimateServer"`
}
