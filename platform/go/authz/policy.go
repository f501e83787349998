package authz

// Role is the fixed set of roles a membership can carry. BILLING exists in the
// enumeration but currently has no dedicated surface.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleOrgAdmin   Role = "ORG_ADMIN"
	RoleDentist    Role = "DENTIST"
	RoleReception  Role = "RECEPTION"
	RoleBilling    Role = "BILLING"
	RolePatient    Role = "PATIENT"
)

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleSuperAdmin, RoleOrgAdmin, RoleDentist, RoleReception, RoleBilling, RolePatient}
}

// ParseRole validates a raw role string against the enumeration.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleSuperAdmin, RoleOrgAdmin, RoleDentist, RoleReception, RoleBilling, RolePatient:
		return Role(raw), true
	}
	return "", false
}

// Valid reports whether the role belongs to the enumeration.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Operation identifies a gated API operation.
type Operation string

const (
	OpTenantList        Operation = "tenants.list"
	OpTenantCreate      Operation = "tenants.create"
	OpPlanList          Operation = "plans.list"
	OpPlanSync          Operation = "plans.sync"
	OpPlanFeatureList   Operation = "planFeatures.list"
	OpPlanFeatureCreate Operation = "planFeatures.create"

	OpPatientRead      Operation = "patients.read"
	OpPatientWrite     Operation = "patients.write"
	OpProviderRead     Operation = "providers.read"
	OpProviderWrite    Operation = "providers.write"
	OpAppointmentRead  Operation = "appointments.read"
	OpAppointmentWrite Operation = "appointments.write"
	OpInvoiceRead      Operation = "invoices.read"
	OpInvoiceWrite     Operation = "invoices.write"
)

// Operations lists every gated operation.
func Operations() []Operation {
	return []Operation{
		OpTenantList, OpTenantCreate, OpPlanList, OpPlanSync, OpPlanFeatureList, OpPlanFeatureCreate,
		OpPatientRead, OpPatientWrite, OpProviderRead, OpProviderWrite,
		OpAppointmentRead, OpAppointmentWrite, OpInvoiceRead, OpInvoiceWrite,
	}
}

// platformOnly marks operations reserved for platform operators.
var platformOnly = map[Operation]struct{}{
	OpTenantList:        {},
	OpTenantCreate:      {},
	OpPlanList:          {},
	OpPlanSync:          {},
	OpPlanFeatureList:   {},
	OpPlanFeatureCreate: {},
}

// Allowed decides whether a role may invoke an operation. It is a pure table
// lookup: no I/O, deterministic for every (role, operation) pair. Tenant-scoped
// operations accept any valid role; membership in the target tenant is enforced
// separately by the tenant scope middleware.
func Allowed(role Role, op Operation) bool {
	if !role.Valid() {
		return false
	}
	if _, ok := platformOnly[op]; ok {
		return role == RoleSuperAdmin
	}
	switch op {
	case OpPatientRead, OpPatientWrite, OpProviderRead, OpProviderWrite,
		OpAppointmentRead, OpAppointmentWrite, OpInvoiceRead, OpInvoiceWrite:
		return true
	}
	return false
}
