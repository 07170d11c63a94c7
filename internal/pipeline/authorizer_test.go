package pipeline

import (
	"testing"

	"brokerdash/pkg/rbac"
)

func TestRestrictedPairDeniedForAssistant(t *testing.T) {
	if IsTransitionAllowed(rbac.RoleAssistant, StageStructuring, StageReadyForBanker) {
		t.Error("assistant allowed Structuring -> Ready to Send to Banker")
	}
	if IsTransitionAllowed(rbac.RoleAssistant, StageReadyForBanker, StageStructuring) {
		t.Error("assistant allowed Ready to Send to Banker -> Structuring")
	}
}

func TestRestrictedPairAllowedForAdmin(t *testing.T) {
	if !IsTransitionAllowed(rbac.RoleAdmin, StageStructuring, StageReadyForBanker) {
		t.Error("admin denied Structuring -> Ready to Send to Banker")
	}
	if !IsTransitionAllowed(rbac.RoleAdmin, StageReadyForBanker, StageStructuring) {
		t.Error("admin denied Ready to Send to Banker -> Structuring")
	}
}

// Exhaustive sweep over the full role x stage x stage space: only the two
// restricted orderings may ever be denied, and only for the assistant.
func TestAuthorizerExhaustive(t *testing.T) {
	roles := []string{rbac.RoleAdmin, rbac.RoleAssistant, "", "viewer"}
	for _, role := range roles {
		for _, from := range Catalog() {
			for _, to := range Catalog() {
				allowed := IsTransitionAllowed(role, from, to)
				restricted := (from == StageStructuring && to == StageReadyForBanker) ||
					(from == StageReadyForBanker && to == StageStructuring)
				wantAllowed := !restricted || rbac.NormalizeRole(role) == rbac.RoleAdmin
				if allowed != wantAllowed {
					t.Errorf("IsTransitionAllowed(%q, %q, %q) = %v, want %v",
						role, from, to, allowed, wantAllowed)
				}
			}
		}
	}
}

func TestUnknownRoleTreatedAsAssistant(t *testing.T) {
	if IsTransitionAllowed("intern", StageStructuring, StageReadyForBanker) {
		t.Error("unknown role allowed the restricted transition")
	}
}
