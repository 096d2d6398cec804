// Package catanrig embeds the browser viewer served by cmd/server.
package catanrig

import "embed"

//go:embed web
var WebFS embed.FS
