// Package docs embeds the API description served at /swagger.
package docs

import _ "embed"

//go:embed api/openapi.yaml
var OpenAPI []byte
