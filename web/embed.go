// Package web embeds the static client served at /.
package web

import "embed"

//go:embed static
var StaticFS embed.FS
