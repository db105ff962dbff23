// README: Embedded SQL schema applied at startup when Postgres is configured.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
