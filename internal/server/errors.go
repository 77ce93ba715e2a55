// Package server provides the HTTP REST API for the learning-log
// generation service.
package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jihokim/knowlog/internal/content"
	"github.com/jihokim/knowlog/internal/extract"
	"github.com/jihokim/knowlog/internal/fetch"
	"github.com/jihokim/knowlog/internal/llm"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		invalidInput  *content.InvalidInputError
		validation    *extract.ValidationError
		parse         *extract.ParseError
		fetchErr      *fetch.Error
		provider      *llm.ProviderError
		fieldFailures validator.ValidationErrors
	)

	switch {
	case errors.As(err, &invalidInput), errors.As(err, &fieldFailures):
		return http.StatusBadRequest
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &parse):
		return http.StatusUnprocessableEntity
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.As(err, &provider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
