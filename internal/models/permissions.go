package models

// Strict shapes for the external permission service's user-type
// permission tree. The raw payload nests these inconsistently; the
// client normalizes into these types at the boundary.

type UserTypePermission struct {
	ID      int  `json:"id"`
	Granted bool `json:"granted"`
}

type Permission struct {
	ID                 int                 `json:"id"`
	Name               string              `json:"name"`
	UserTypePermission *UserTypePermission `json:"user_type_permission,omitempty"`
}

type PermissionGroup struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}

type UserTypeEntry struct {
	ID               int               `json:"id"`
	Name             string            `json:"name"`
	PermissionGroups []PermissionGroup `json:"permission_groups"`
}

type PermissionTree struct {
	UserTypes []UserTypeEntry `json:"user_types"`
}

// FindUserType returns the entry with the given name, or nil.
func (t *PermissionTree) FindUserType(name string) *UserTypeEntry {
	for i := range t.UserTypes {
		if t.UserTypes[i].Name == name {
			return &t.UserTypes[i]
		}
	}
	return nil
}

// FindGroup matches by id or name, mirroring how the permission
// service is queried (the group id is stable per deployment but the
// name survives re-seeds).
func (u *UserTypeEntry) FindGroup(id int, name string) *PermissionGroup {
	for i := range u.PermissionGroups {
		if u.PermissionGroups[i].ID == id || u.PermissionGroups[i].Name == name {
			return &u.PermissionGroups[i]
		}
	}
	return nil
}

func (g *PermissionGroup) FindPermission(name string) *Permission {
	for i := range g.Permissions {
		if g.Permissions[i].Name == name {
			return &g.Permissions[i]
		}
	}
	return nil
}
