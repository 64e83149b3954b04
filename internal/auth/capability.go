package auth

// Capability is an atomic action requested against a resource. It is derived
// per request from the endpoint being invoked and never persisted.
type Capability string

const (
	// CapabilityView reads a resource and its child resources.
	CapabilityView Capability = "view"
	// CapabilityExecute runs queries or workflows owned by the resource.
	CapabilityExecute Capability = "execute"
	// CapabilityEdit creates, updates or deletes child resources.
	CapabilityEdit Capability = "edit"
	// CapabilityManageSettings changes resource-level settings.
	CapabilityManageSettings Capability = "manage_settings"
	// CapabilityManageMembers adds or removes members. Reserved to system
	// admins; no resource role grants it.
	CapabilityManageMembers Capability = "manage_members"
	// CapabilityDelete deletes the resource itself. Reserved to system
	// admins; no resource role grants it.
	CapabilityDelete Capability = "delete"
)

// ResourceType identifies the kind of resource a capability is requested
// against. Team and Project share one role hierarchy.
type ResourceType string

const (
	// ResourceTeam is a team in the catalog.
	ResourceTeam ResourceType = "team"
	// ResourceProject is a project in the catalog.
	ResourceProject ResourceType = "project"
)

// Resource is a reference to one Team or Project.
type Resource struct {
	Type ResourceType
	ID   string
}

// Role is a resource-scoped role from a membership record.
type Role string

const (
	// RoleOwner has full control short of member management and deletion.
	RoleOwner Role = "owner"
	// RoleEditor can view, execute and edit.
	RoleEditor Role = "editor"
	// RoleViewer can view and execute only.
	RoleViewer Role = "viewer"
)

// roleCapabilities is the role hierarchy table, identical for Team and
// Project resources. ManageMembers and Delete appear in no row: even OWNER
// cannot manage members or delete the resource, only a system admin can.
var roleCapabilities = map[Role]map[Capability]bool{
	RoleOwner: {
		CapabilityView:           true,
		CapabilityExecute:        true,
		CapabilityEdit:           true,
		CapabilityManageSettings: true,
	},
	RoleEditor: {
		CapabilityView:    true,
		CapabilityExecute: true,
		CapabilityEdit:    true,
	},
	RoleViewer: {
		CapabilityView:    true,
		CapabilityExecute: true,
	},
}

// RoleAllows reports whether the role's capability set includes c.
// Unknown roles allow nothing.
func RoleAllows(r Role, c Capability) bool {
	return roleCapabilities[r][c]
}

// ParseRole converts a stored role string to a Role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleOwner, RoleEditor, RoleViewer:
		return Role(s), true
	}
	return "", false
}

// scopeAction maps a capability to the action segment used in token scope
// patterns (e.g. "read:team:42").
func scopeAction(c Capability) string {
	switch c {
	case CapabilityView:
		return "read"
	case CapabilityEdit:
		return "write"
	default:
		return string(c)
	}
}
