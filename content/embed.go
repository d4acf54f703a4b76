// Package content embeds the default Era of Silence game data.
package content

import "embed"

// FS holds every *.yaml content file shipped with the binary.
//
//go:embed *.yaml
var FS embed.FS
