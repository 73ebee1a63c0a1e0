package domain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Feature: affiliate-marketplace, Property 1: Pending sellers have customer-level access only
// Validates: Requirements 4.1
func TestProperty_PendingSellersHaveCustomerLevelAccessOnly(t *testing.T) {
	caps := Capabilities(RoleSeller, SellerStatusPending)

	if len(caps) != 1 || caps[0] != CapViewCustomerPages {
		t.Errorf("Expected pending seller to hold only %s, got %v", CapViewCustomerPages, caps)
	}

	for _, denied := range []Capability{
		CapSubmitSellerRequest,
		CapSubmitProductRequest,
		CapViewSellerDashboard,
		CapViewAdminDashboard,
	} {
		if HasCapability(RoleSeller, SellerStatusPending, denied) {
			t.Errorf("Pending seller must not hold capability %s", denied)
		}
	}
}

// Feature: affiliate-marketplace, Property 2: Admins hold every capability
// Validates: Requirements 4.1
func TestProperty_AdminsHoldEveryCapability(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("admin role is authorized for every capability regardless of seller status", prop.ForAll(
		func(statusIdx int) bool {
			statuses := []SellerStatus{
				SellerStatusNone,
				SellerStatusPending,
				SellerStatusApproved,
				SellerStatusRejected,
			}
			status := statuses[statusIdx%len(statuses)]

			for _, cap := range []Capability{
				CapViewCustomerPages,
				CapSubmitSellerRequest,
				CapSubmitProductRequest,
				CapViewSellerDashboard,
				CapViewAdminDashboard,
			} {
				if !HasCapability(RoleAdmin, status, cap) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 3),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: affiliate-marketplace, Property 3: Non-admins never reach the admin dashboard
// Validates: Requirements 4.1
func TestProperty_NonAdminsNeverReachAdminDashboard(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("customer and seller roles are denied the admin dashboard", prop.ForAll(
		func(roleIdx int, statusIdx int) bool {
			roles := []Role{RoleCustomer, RoleSeller}
			statuses := []SellerStatus{
				SellerStatusNone,
				SellerStatusPending,
				SellerStatusApproved,
				SellerStatusRejected,
			}

			role := roles[roleIdx%len(roles)]
			status := statuses[statusIdx%len(statuses)]

			return !HasCapability(role, status, CapViewAdminDashboard)
		},
		gen.IntRange(0, 1),
		gen.IntRange(0, 3),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCapabilities_ApprovedSeller(t *testing.T) {
	expected := map[Capability]bool{
		CapViewCustomerPages:    true,
		CapSubmitProductRequest: true,
		CapViewSellerDashboard:  true,
	}

	caps := Capabilities(RoleSeller, SellerStatusApproved)
	if len(caps) != len(expected) {
		t.Fatalf("Expected %d capabilities, got %d: %v", len(expected), len(caps), caps)
	}
	for _, c := range caps {
		if !expected[c] {
			t.Errorf("Unexpected capability %s for approved seller", c)
		}
	}
}

func TestCapabilities_UnknownRoleDenies(t *testing.T) {
	if caps := Capabilities(Role("ghost"), SellerStatusNone); len(caps) != 0 {
		t.Errorf("Unknown role must yield an empty capability set, got %v", caps)
	}
	if caps := Capabilities(RoleSeller, SellerStatus("limbo")); len(caps) != 0 {
		t.Errorf("Unknown seller status must yield an empty capability set, got %v", caps)
	}
}
