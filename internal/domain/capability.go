package domain

// Capability is a single action a (role, seller status) pair is authorized
// to perform. Route guards check capabilities, never raw roles.
type Capability string

const (
	CapViewCustomerPages    Capability = "view-customer-pages"
	CapSubmitSellerRequest  Capability = "submit-seller-request"
	CapSubmitProductRequest Capability = "submit-product-request"
	CapViewSellerDashboard  Capability = "view-seller-dashboard"
	CapViewAdminDashboard   Capability = "view-admin-dashboard"
)

// Capabilities derives the full capability set for a role/status pair.
//
//	customer          -> view-customer-pages, submit-seller-request
//	seller/pending    -> view-customer-pages
//	seller/approved   -> view-customer-pages, submit-product-request,
//	                     view-seller-dashboard
//	seller/rejected   -> view-customer-pages, submit-seller-request
//	admin             -> everything
//
// The rejection workflow reverts accounts to customer/none rather than
// storing seller/rejected, so that row only matters for state written
// outside the workflow. It grants the same set a customer gets.
//
// Any pair outside the table gets an empty set, so unknown states deny.
func Capabilities(role Role, status SellerStatus) []Capability {
	switch role {
	case RoleAdmin:
		return []Capability{
			CapViewCustomerPages,
			CapSubmitSellerRequest,
			CapSubmitProductRequest,
			CapViewSellerDashboard,
			CapViewAdminDashboard,
		}
	case RoleCustomer:
		return []Capability{CapViewCustomerPages, CapSubmitSellerRequest}
	case RoleSeller:
		switch status {
		case SellerStatusPending:
			return []Capability{CapViewCustomerPages}
		case SellerStatusApproved:
			return []Capability{
				CapViewCustomerPages,
				CapSubmitProductRequest,
				CapViewSellerDashboard,
			}
		case SellerStatusRejected:
			// A rejected seller is back to customer-level access and may
			// apply again.
			return []Capability{CapViewCustomerPages, CapSubmitSellerRequest}
		}
	}
	return nil
}

// HasCapability reports whether the role/status pair is authorized to
// perform the given action.
func HasCapability(role Role, status SellerStatus, cap Capability) bool {
	for _, c := range Capabilities(role, status) {
		if c == cap {
			return true
		}
	}
	return false
}
