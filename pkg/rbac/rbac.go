package rbac

// Permission constants.
const (
	PermissionHardDeleteClient = "client:hard_delete"
	PermissionReplayOutbox     = "outbox:replay"

	PermissionReadClient   = "client:read"
	PermissionUpdateClient = "client:update"
	PermissionReadTask     = "task:read"
	PermissionUpdateTask   = "task:update"
	PermissionDeleteTask   = "task:delete"
)

// Role constants. Every authenticated user is one of these; the restricted
// pipeline transition is enforced separately by the pipeline authorizer.
const (
	RoleAssistant = "assistant"
	RoleAdmin     = "admin"
)

var rolePermissions = map[string][]string{
	RoleAssistant: {
		PermissionReadClient,
		PermissionUpdateClient,
		PermissionReadTask,
		PermissionUpdateTask,
		PermissionDeleteTask,
	},
	RoleAdmin: {
		PermissionReadClient,
		PermissionUpdateClient,
		PermissionReadTask,
		PermissionUpdateTask,
		PermissionDeleteTask,
		PermissionHardDeleteClient,
		PermissionReplayOutbox,
	},
}

// NormalizeRole maps any stored role value onto a known role. Anything
// that is not explicitly admin is treated as assistant.
func NormalizeRole(role string) string {
	if role == RoleAdmin {
		return RoleAdmin
	}
	return RoleAssistant
}

// HasPermission checks whether a role grants the given permission.
func HasPermission(role, permission string) bool {
	permissions, ok := rolePermissions[NormalizeRole(role)]
	if !ok {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission returns an error when the role lacks the permission.
func CheckPermission(role, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{
			Role:       role,
			Permission: permission,
		}
	}
	return nil
}

// PermissionDeniedError reports a denied permission check.
type PermissionDeniedError struct {
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}
