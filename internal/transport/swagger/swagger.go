package swagger

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

const DocumentURL = "/openapi.yml"

// Handler serves Swagger UI for the document published at specURL.
func Handler(specURL string) http.Handler {
	if specURL == "" {
		specURL = DocumentURL
	}
	return httpSwagger.Handler(
		httpSwagger.URL(specURL),
		httpSwagger.DocExpansion("list"),
	)
}
