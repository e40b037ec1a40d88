package washrequest

import (
	"fleetwash-service/internal/domain/identity"
	"fleetwash-service/internal/domain/washrequest"
)

// Visible derives the set of wash requests an actor may see. It is
// re-applied to raw fetched rows on every refresh; nothing is cached or
// invalidated incrementally.
//
//   - Technician with an organization: the organization's requests plus
//     the technician's own assignments.
//   - Technician without an organization: unassigned pending requests
//     plus the technician's own assignments.
//   - Customer/fleet manager with an organization: all organization
//     requests.
//   - Customer/fleet manager without an organization: own requests only.
func Visible(reqs []washrequest.WashRequest, actor identity.Actor) []washrequest.WashRequest {
	out := make([]washrequest.WashRequest, 0, len(reqs))
	for _, r := range reqs {
		if visibleTo(r, actor) {
			out = append(out, r)
		}
	}
	return out
}

func visibleTo(r washrequest.WashRequest, actor identity.Actor) bool {
	assigned := r.Technician != nil && *r.Technician == actor.ID
	inOrg := actor.HasOrganization() && r.OrganizationID != nil && *r.OrganizationID == actor.OrganizationID

	if actor.IsTechnician() {
		if actor.HasOrganization() {
			return inOrg || assigned
		}
		unclaimed := r.Technician == nil && r.Status == washrequest.StatusPending
		return unclaimed || assigned
	}

	if actor.HasOrganization() {
		return inOrg
	}
	return r.CustomerID == actor.ID
}
