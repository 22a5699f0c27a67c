// Package docs registers the OpenAPI document served by the Swagger UI.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var doc string

type swaggerDoc struct{}

func (swaggerDoc) ReadDoc() string {
	return doc
}

func init() {
	swag.Register(swag.Name, swaggerDoc{})
}
