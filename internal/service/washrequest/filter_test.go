package washrequest

import (
	"testing"

	"fleetwash-service/internal/domain/identity"
	"fleetwash-service/internal/domain/washrequest"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func fixtureRequests() []washrequest.WashRequest {
	return []washrequest.WashRequest{
		{ID: "own-pending", CustomerID: "cust-1", Status: washrequest.StatusPending},
		{ID: "other-pending", CustomerID: "cust-2", Status: washrequest.StatusPending},
		{ID: "org-a-pending", CustomerID: "cust-3", Status: washrequest.StatusPending, OrganizationID: strPtr("org-a")},
		{ID: "org-a-assigned", CustomerID: "cust-3", Status: washrequest.StatusConfirmed, OrganizationID: strPtr("org-a"), Technician: strPtr("tech-1")},
		{ID: "org-b-pending", CustomerID: "cust-4", Status: washrequest.StatusPending, OrganizationID: strPtr("org-b")},
		{ID: "assigned-elsewhere", CustomerID: "cust-5", Status: washrequest.StatusInProgress, Technician: strPtr("tech-1")},
		{ID: "other-tech", CustomerID: "cust-6", Status: washrequest.StatusConfirmed, Technician: strPtr("tech-2")},
	}
}

func visibleIDs(reqs []washrequest.WashRequest, actor identity.Actor) []string {
	out := []string{}
	for _, r := range Visible(reqs, actor) {
		out = append(out, r.ID)
	}
	return out
}

func TestVisibleTechnicianWithOrganization(t *testing.T) {
	actor := identity.Actor{ID: "tech-1", Role: identity.RoleTechnician, OrganizationID: "org-a"}

	assert.ElementsMatch(t,
		[]string{"org-a-pending", "org-a-assigned", "assigned-elsewhere"},
		visibleIDs(fixtureRequests(), actor))
}

func TestVisibleTechnicianWithoutOrganization(t *testing.T) {
	actor := identity.Actor{ID: "tech-1", Role: identity.RoleTechnician}

	// Unassigned pending requests form the open pool, plus own assignments.
	// Assignment visibility ignores the request's organization.
	assert.ElementsMatch(t,
		[]string{"own-pending", "other-pending", "org-a-pending", "org-b-pending", "org-a-assigned", "assigned-elsewhere"},
		visibleIDs(fixtureRequests(), actor))
}

func TestVisibleCustomerWithOrganization(t *testing.T) {
	actor := identity.Actor{ID: "cust-3", Role: identity.RoleCustomer, OrganizationID: "org-a"}

	assert.ElementsMatch(t,
		[]string{"org-a-pending", "org-a-assigned"},
		visibleIDs(fixtureRequests(), actor))
}

func TestVisibleFleetManagerSeesWholeOrganization(t *testing.T) {
	actor := identity.Actor{ID: "mgr-1", Role: identity.RoleFleetManager, OrganizationID: "org-b"}

	assert.ElementsMatch(t, []string{"org-b-pending"}, visibleIDs(fixtureRequests(), actor))
}

func TestVisibleCustomerWithoutOrganizationSeesOwnOnly(t *testing.T) {
	actor := identity.Actor{ID: "cust-1", Role: identity.RoleCustomer}

	assert.ElementsMatch(t, []string{"own-pending"}, visibleIDs(fixtureRequests(), actor))
}

func TestVisibleEmptyInput(t *testing.T) {
	actor := identity.Actor{ID: "cust-1", Role: identity.RoleCustomer}
	assert.Empty(t, Visible(nil, actor))
}
