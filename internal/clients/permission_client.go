package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/cleardeed/closing-service/internal/constants"
	"github.com/cleardeed/closing-service/internal/models"
	"github.com/cleardeed/closing-service/internal/utils"
)

// PermissionClient talks to the external permission service. The
// service's payloads nest the user-type tree inconsistently (array in
// some deployments, role-keyed object in others), so all decoding goes
// through a normalization step and the rest of the core only ever sees
// the strict PermissionTree shape.
type PermissionClient interface {
	ListUserTypePermissions(ctx context.Context, nameFilter string) (*models.PermissionTree, error)
	UpdateUserTypePermissions(ctx context.Context, req UpdateUserTypePermissionRequest) error
}

type UpdateUserTypePermissionRequest struct {
	PermissionID         int  `json:"permissionId"`
	UserTypePermissionID *int `json:"userTypePermissionId,omitempty"`
	UserTypeID           int  `json:"userTypeId"`
	Granted              bool `json:"granted"`
}

type permissionClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewPermissionClient(baseURL, apiKey string) PermissionClient {
	return &permissionClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: constants.ClientRequestTimeout},
	}
}

func (c *permissionClient) ListUserTypePermissions(ctx context.Context, nameFilter string) (*models.PermissionTree, error) {
	u := c.baseURL + "/permission/user-type-permissions"
	if nameFilter != "" {
		u += "?name=" + url.QueryEscape(nameFilter)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrExternalServiceFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: permission list returned %d", utils.ErrExternalServiceFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return normalizePermissionTree(body)
}

func (c *permissionClient) UpdateUserTypePermissions(ctx context.Context, upd UpdateUserTypePermissionRequest) error {
	payload, err := json.Marshal(upd)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		c.baseURL+"/permission/user-type-permissions",
		bytes.NewReader(payload),
	)
	if err != nil {
		return err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrExternalServiceFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: permission update returned %d", utils.ErrExternalServiceFailure, resp.StatusCode)
	}
	return nil
}

func (c *permissionClient) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

/* ------------------------------------------------------------------
   Payload normalization
------------------------------------------------------------------ */

// Loose wire shapes. The server wraps responses in an optional `data`
// envelope, `userType` can be an array or an object keyed by role
// name, and permissions arrive under `permission`.
type rawEnvelope struct {
	Data     json.RawMessage `json:"data"`
	UserType json.RawMessage `json:"userType"`
}

type rawUserType struct {
	ID               int                  `json:"id"`
	Name             string               `json:"name"`
	PermissionGroups []rawPermissionGroup `json:"permissionGroups"`
}

type rawPermissionGroup struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	Permission []rawPermission `json:"permission"`
}

type rawPermission struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	UserTypePermission *struct {
		ID      int  `json:"id"`
		Granted bool `json:"granted"`
	} `json:"userTypePermission"`
}

func normalizePermissionTree(body []byte) (*models.PermissionTree, error) {
	var env rawEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("bad permission payload: %w", err)
	}

	userTypeRaw := env.UserType
	if len(userTypeRaw) == 0 && len(env.Data) > 0 {
		var inner rawEnvelope
		if err := json.Unmarshal(env.Data, &inner); err == nil && len(inner.UserType) > 0 {
			userTypeRaw = inner.UserType
		} else {
			// data itself may be the userType container
			userTypeRaw = env.Data
		}
	}
	if len(userTypeRaw) == 0 {
		return nil, fmt.Errorf("permission payload has no userType section")
	}

	var entries []rawUserType

	// Array shape first, then role-keyed object.
	if err := json.Unmarshal(userTypeRaw, &entries); err != nil {
		var keyed map[string]json.RawMessage
		if err := json.Unmarshal(userTypeRaw, &keyed); err != nil {
			return nil, fmt.Errorf("unrecognized userType shape: %w", err)
		}
		for _, raw := range keyed {
			var one rawUserType
			if err := json.Unmarshal(raw, &one); err == nil && one.Name != "" {
				entries = append(entries, one)
				continue
			}
			var many []rawUserType
			if err := json.Unmarshal(raw, &many); err == nil {
				for _, e := range many {
					if e.Name != "" {
						entries = append(entries, e)
					}
				}
			}
		}
	}

	tree := &models.PermissionTree{}
	for _, e := range entries {
		entry := models.UserTypeEntry{ID: e.ID, Name: e.Name}
		for _, g := range e.PermissionGroups {
			group := models.PermissionGroup{ID: g.ID, Name: g.Name}
			for _, perm := range g.Permission {
				p := models.Permission{ID: perm.ID, Name: perm.Name}
				if perm.UserTypePermission != nil {
					p.UserTypePermission = &models.UserTypePermission{
						ID:      perm.UserTypePermission.ID,
						Granted: perm.UserTypePermission.Granted,
					}
				}
				group.Permissions = append(group.Permissions, p)
			}
			entry.PermissionGroups = append(entry.PermissionGroups, group)
		}
		tree.UserTypes = append(tree.UserTypes, entry)
	}
	return tree, nil
}
