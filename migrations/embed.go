// Package migrations embute os scripts goose de cada dialeto suportado.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
