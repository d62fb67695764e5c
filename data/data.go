// Package data embeds the static product catalog and the lookbook template.
package data

import _ "embed"

//go:embed catalog.yaml
var CatalogYAML []byte

//go:embed lookbook.html
var LookbookTemplate string
