package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type RoleType string

const (
	RoleTitleAdmin      RoleType = "TITLE_ADMIN"
	RoleTitleUser       RoleType = "TITLE_USER"
	RoleTitleAbstractor RoleType = "TITLE_ABSTRACTOR"
	RoleTitleCompany    RoleType = "TITLE_COMPANY"
	RoleAgent           RoleType = "AGENT"
	RoleSellerAgent     RoleType = "SELLER_AGENT"
	RoleBuyerAgent      RoleType = "BUYER_AGENT"
	RoleSeller          RoleType = "SELLER"
	RoleBuyer           RoleType = "BUYER"
)

// ConfigurableRole is the visibility-settings group a role maps onto.
// Only these three groups are configurable per property; title-company
// staff roles are governed by different rules entirely.
type ConfigurableRole string

const (
	ConfigurableRoleAgent  ConfigurableRole = "Agent"
	ConfigurableRoleBuyer  ConfigurableRole = "Buyer"
	ConfigurableRoleSeller ConfigurableRole = "Seller"
)

// VisibilityGroup maps a role onto its configurable group. The second
// return is false for roles that have no group (title-company staff and
// anything unrecognized), which see all enabled stages.
func (r RoleType) VisibilityGroup() (ConfigurableRole, bool) {
	switch {
	case strings.Contains(string(r), "AGENT"):
		return ConfigurableRoleAgent, true
	case r == RoleBuyer:
		return ConfigurableRoleBuyer, true
	case r == RoleSeller:
		return ConfigurableRoleSeller, true
	}
	return "", false
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      RoleType  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) GetID() string {
	return u.ID.String()
}
