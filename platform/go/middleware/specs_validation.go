package middleware

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	oapimiddleware "github.com/oapi-codegen/nethttp-middleware"

	"github.com/zenGate-Global/pwa-studio/platform/go/problem"
)

// SpecValidator validates requests against an OpenAPI document and answers
// contract violations with problem+json. Servers are dropped from the spec so
// routes match regardless of the host the API is deployed behind.
func SpecValidator(spec *openapi3.T) func(http.Handler) http.Handler {
	spec.Servers = nil
	return oapimiddleware.OapiRequestValidatorWithOptions(spec, &oapimiddleware.Options{
		Options: openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			title := "Invalid request"
			problemType := problem.TypeBadRequest
			switch statusCode {
			case http.StatusNotFound:
				title, problemType = "Not found", problem.TypeNotFound
			case http.StatusMethodNotAllowed:
				title, problemType = "Method not allowed", problem.TypeMethodNotAllow
			}
			problem.Write(w, problem.New(statusCode, problemType, title, message, nil))
		},
	})
}
