package authz

import "sort"

// Permission is a capability string of the form resource:action
type Permission string

const (
	CompanyRead   Permission = "company:read"
	CompanyWrite  Permission = "company:write"
	CompanyDelete Permission = "company:delete"
	MemberRead    Permission = "member:read"
	MemberWrite   Permission = "member:write"
	CustomerRead  Permission = "customer:read"
	CustomerWrite Permission = "customer:write"
	ProjectRead   Permission = "project:read"
	ProjectWrite  Permission = "project:write"
	QuoteRead     Permission = "quote:read"
	QuoteWrite    Permission = "quote:write"
	InvoiceRead   Permission = "invoice:read"
	InvoiceWrite  Permission = "invoice:write"
	PaymentRead   Permission = "payment:read"
	PaymentWrite  Permission = "payment:write"
	ChatRead      Permission = "chat:read"
	ChatWrite     Permission = "chat:write"
)

var allPermissions = []Permission{
	CompanyRead, CompanyWrite, CompanyDelete,
	MemberRead, MemberWrite,
	CustomerRead, CustomerWrite,
	ProjectRead, ProjectWrite,
	QuoteRead, QuoteWrite,
	InvoiceRead, InvoiceWrite,
	PaymentRead, PaymentWrite,
	ChatRead, ChatWrite,
}

// rolePermissions is built once at init and never mutated afterwards.
var rolePermissions = buildTable(map[Role][]Permission{
	RoleOwner: allPermissions,
	RoleAdmin: {
		CompanyRead, CompanyWrite,
		MemberRead, MemberWrite,
		CustomerRead, CustomerWrite,
		ProjectRead, ProjectWrite,
		QuoteRead, QuoteWrite,
		InvoiceRead, InvoiceWrite,
		PaymentRead, PaymentWrite,
		ChatRead, ChatWrite,
	},
	RoleManager: {
		CompanyRead,
		MemberRead,
		CustomerRead, CustomerWrite,
		ProjectRead, ProjectWrite,
		QuoteRead, QuoteWrite,
		InvoiceRead,
		PaymentRead,
		ChatRead, ChatWrite,
	},
	RoleWorker: {
		CompanyRead,
		ProjectRead,
		ChatRead, ChatWrite,
	},
	RoleAccountant: {
		CompanyRead,
		CustomerRead,
		ProjectRead,
		QuoteRead,
		InvoiceRead, InvoiceWrite,
		PaymentRead, PaymentWrite,
	},
	RoleClient: {
		CompanyRead,
		ProjectRead,
		QuoteRead,
		InvoiceRead,
		ChatRead, ChatWrite,
	},
})

func buildTable(src map[Role][]Permission) map[Role]map[Permission]struct{} {
	table := make(map[Role]map[Permission]struct{}, len(src))
	for role, perms := range src {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		table[role] = set
	}
	return table
}

// AllPermissions returns every known permission in declaration order
func AllPermissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// PermissionsFor returns the sorted permission set granted to a role
func PermissionsFor(role Role) []Permission {
	set := rolePermissions[role]
	out := make([]Permission, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
