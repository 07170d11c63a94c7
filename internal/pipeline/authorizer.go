package pipeline

import "brokerdash/pkg/rbac"

// IsTransitionAllowed decides whether a role may move a client between two
// stages. Pure; no-op transitions are short-circuited by the executor
// before this is consulted.
//
// Every transition is allowed by default. The single restriction is the
// Structuring Phase <-> Ready to Send to Banker pair, which only admins
// may cross in either direction.
func IsTransitionAllowed(role string, from, to Stage) bool {
	if rbac.NormalizeRole(role) == rbac.RoleAdmin {
		return true
	}
	if from == StageStructuring && to == StageReadyForBanker {
		return false
	}
	if from == StageReadyForBanker && to == StageStructuring {
		return false
	}
	return true
}
