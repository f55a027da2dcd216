// Package dto defines request and response payloads for the engine's HTTP API.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/anonymizer/internal/validation"
)

// AnonymizeRequest is the payload for POST /v1/anonymize.
type AnonymizeRequest struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

// Validate checks the request fields. An empty value is legal and passes
// through unchanged, so only the column is required.
func (r AnonymizeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Column, validation.Required, customValidation.NotBlank),
	)
}

// DeanonymizeRequest is the payload for POST /v1/deanonymize.
type DeanonymizeRequest struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

// Validate checks the request fields.
func (r DeanonymizeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Column, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Value, validation.Required),
	)
}
