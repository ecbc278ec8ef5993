// Package schema declares the referential-integrity policy for the Operate
// data model and verifies that the live database matches it. The policy is a
// static, typed mapping from foreign-key relationships to deletion
// behaviors; there is no runtime state machine here. Verification reads the
// database's own catalog rather than parsing schema files, so there is no
// text-matching fragility in the audit path.
package schema

// Action is the deletion-propagation behavior declared on a foreign key.
type Action string

const (
	// Cascade deletes the child row along with its parent.
	Cascade Action = "cascade"

	// Restrict blocks parent deletion while child rows exist. Authored as
	// NO ACTION in the database so that a tenant-root cascade, which removes
	// parent and child in one statement, is still permitted; the check is
	// deferred to statement end rather than fired per row.
	Restrict Action = "restrict"

	// SetNull clears the child's reference when the parent is deleted,
	// preserving the child row.
	SetNull Action = "set_null"
)

// Relationship describes one foreign key in terms the deletion policy cares
// about. The flags capture semantics, not convenience: what the child record
// means without its parent decides the action.
type Relationship struct {
	Parent string // referenced table
	Child  string // referencing table
	Column string // referencing column

	// ParentIsTenantRoot is true when the parent is the organizations table.
	ParentIsTenantRoot bool

	// ChildTenantOwned is true when the child is operational data owned by
	// the tenant (memberships, audit logs, invoices, ...).
	ChildTenantOwned bool

	// ChildFinancialRecord is true when the child is a financial/legal
	// record of record (invoice, bill, payment, filing).
	ChildFinancialRecord bool

	// ParentCounterparty is true when the parent is a customer, vendor or
	// client the child merely references.
	ParentCounterparty bool

	// Attribution is true when the reference records which user performed a
	// review/approval/processing step they do not own.
	Attribution bool

	// ChildDerivative is true when the child is meaningless without its
	// owner (sessions, derived artifacts).
	ChildDerivative bool
}

// Classify assigns the deletion behavior for a relationship. Rules apply in
// priority order; anything unmatched falls through to Restrict, the safe
// default that forces explicit handling.
func Classify(rel Relationship) Action {
	switch {
	case rel.ParentIsTenantRoot && rel.ChildTenantOwned:
		return Cascade
	case rel.ChildFinancialRecord && rel.ParentCounterparty:
		return Restrict
	case rel.Attribution:
		return SetNull
	case rel.ChildDerivative:
		return Cascade
	default:
		return Restrict
	}
}

// relationships enumerates every foreign key in the Operate schema with its
// semantic flags. DefaultChecklist derives expected actions from these via
// Classify, so the checklist can never drift from the rules themselves.
var relationships = []Relationship{
	// Tenant root ownership: operational data cascades with the org.
	{Parent: "organizations", Child: "memberships", Column: "org_id", ParentIsTenantRoot: true, ChildTenantOwned: true},
	{Parent: "organizations", Child: "audit_logs", Column: "org_id", ParentIsTenantRoot: true, ChildTenantOwned: true},
	{Parent: "organizations", Child: "customers", Column: "org_id", ParentIsTenantRoot: true, ChildTenantOwned: true},
	{Parent: "organizations", Child: "vendors", Column: "org_id", ParentIsTenantRoot: true, ChildTenantOwned: true},
	{Parent: "organizations", Child: "invoices", Column: "org_id", ParentIsTenantRoot: true, ChildTenantOwned: true},
	{Parent: "organizations", Child: "bills", Column: "org_id", ParentIsTenantRoot: true, ChildTenantOwned: true},
	{Parent: "organizations", Child: "payments", Column: "org_id", ParentIsTenantRoot: true, ChildTenantOwned: true},
	{Parent: "organizations", Child: "leave_requests", Column: "org_id", ParentIsTenantRoot: true, ChildTenantOwned: true},

	// Financial records restrict their counterparties.
	{Parent: "customers", Child: "invoices", Column: "customer_id", ChildFinancialRecord: true, ParentCounterparty: true},
	{Parent: "vendors", Child: "bills", Column: "vendor_id", ChildFinancialRecord: true, ParentCounterparty: true},

	// Payments restrict the documents they settle (default rule: a settled
	// document with payment history must not disappear).
	{Parent: "invoices", Child: "payments", Column: "invoice_id"},
	{Parent: "bills", Child: "payments", Column: "bill_id"},

	// User attributions: clear the link, keep the record.
	{Parent: "users", Child: "payments", Column: "processor_id", Attribution: true},
	{Parent: "users", Child: "leave_requests", Column: "reviewer_id", Attribution: true},

	// A membership is a grant, not an attribution: removing a user must be
	// an explicit act, so the default Restrict applies.
	{Parent: "users", Child: "memberships", Column: "user_id"},
	{Parent: "users", Child: "leave_requests", Column: "requester_id"},

	// Sessions are derivative of their user.
	{Parent: "users", Child: "sessions", Column: "user_id", ChildDerivative: true},
}

// tenantTables lists every tenant-scoped table with its owning-organization
// column. Each must carry a forced FOR ALL row policy and an index on the
// column, since the policy predicate participates in every query plan.
var tenantTables = []TenantTable{
	{Name: "organizations", OrgColumn: "org_id"},
	{Name: "memberships", OrgColumn: "org_id"},
	{Name: "audit_logs", OrgColumn: "org_id"},
	{Name: "customers", OrgColumn: "org_id"},
	{Name: "vendors", OrgColumn: "org_id"},
	{Name: "invoices", OrgColumn: "org_id"},
	{Name: "bills", OrgColumn: "org_id"},
	{Name: "payments", OrgColumn: "org_id"},
	{Name: "leave_requests", OrgColumn: "org_id"},
}
