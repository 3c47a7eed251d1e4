package request_otp

import "time"

// RequestOTPRequest HTTP request model
type RequestOTPRequest struct {
	Phone string `json:"phone"`
}

// RequestOTPResponse HTTP response model
type RequestOTPResponse struct {
	Remaining int       `json:"remaining"`
	ResetTime time.Time `json:"resetTime"`
}
