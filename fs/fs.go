// Package appfs exposes static assets embedded in the binary:
// database migrations, email templates and the common passwords list.
package appfs

import "embed"

//go:embed assets migrations assets/templates/email/_base.gohtml assets/templates/email/_base.txt
var FS embed.FS
