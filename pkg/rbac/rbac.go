package rbac

import "slices"

// 权限常量
const (
	PermissionReadTask    = "task:read"
	PermissionAdvanceTask = "task:advance"
	PermissionWriteTask   = "task:write"
	PermissionDeleteTask  = "task:delete"

	PermissionReadEmployee   = "employee:read"
	PermissionWriteEmployee  = "employee:write"
	PermissionDeleteEmployee = "employee:delete"
)

// 角色常量
const (
	RoleEmployee = "employee"
	RoleAdmin    = "admin"
)

// 页面路径
const (
	PathLogin             = "/"
	PathAdminDashboard    = "/admin-dashboard"
	PathEmployeeDashboard = "/employee-dashboard"
)

// 角色权限映射
var rolePermissions = map[string][]string{
	RoleEmployee: {
		PermissionReadTask,
		PermissionAdvanceTask,
	},
	RoleAdmin: {
		PermissionReadTask,
		PermissionWriteTask,
		PermissionDeleteTask,
		PermissionReadEmployee,
		PermissionWriteEmployee,
		PermissionDeleteEmployee,
	},
}

// HasPermission 检查角色是否有指定权限
func HasPermission(role string, permission string) bool {
	permissions, ok := rolePermissions[role]
	if !ok {
		return false
	}
	return slices.Contains(permissions, permission)
}

// CheckPermission 检查角色是否有指定权限（返回错误而不是布尔值，便于处理）
func CheckPermission(role string, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{
			Role:       role,
			Permission: permission,
		}
	}
	return nil
}

// PermissionDeniedError 表示权限不足的错误
type PermissionDeniedError struct {
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}

// CanReach reports whether a session holding role may open a view that
// requires one of allowed. An empty role never reaches anything; an empty
// allow-list admits any authenticated role.
func CanReach(role string, allowed []string) bool {
	if role == "" {
		return false
	}
	if len(allowed) == 0 {
		return true
	}
	return slices.Contains(allowed, role)
}

// HomePath 返回角色登录后的默认页面
func HomePath(role string) string {
	switch role {
	case RoleAdmin:
		return PathAdminDashboard
	case RoleEmployee:
		return PathEmployeeDashboard
	default:
		return PathLogin
	}
}
