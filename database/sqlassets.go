package sqlassets

import _ "embed"

//go:embed schema/admin.sql
var AdminSQL string

//go:embed schema/tenant.sql
var TenantSQL string
