package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleardeed/closing-service/internal/utils"
)

const treeArrayShape = `{
	"data": {
		"userType": [
			{
				"id": 3,
				"name": "titleUser",
				"permissionGroups": [
					{
						"id": 237,
						"name": "space-feature",
						"permission": [
							{"id": 10, "name": "f-title-search", "userTypePermission": {"id": 77, "granted": true}},
							{"id": 11, "name": "f-scheduling"}
						]
					}
				]
			}
		]
	}
}`

const treeKeyedShape = `{
	"userType": {
		"titleUser": {
			"id": 3,
			"name": "titleUser",
			"permissionGroups": [
				{"id": 237, "name": "space-feature", "permission": [{"id": 10, "name": "f-title-search"}]}
			]
		},
		"agent": {
			"id": 5,
			"name": "agent",
			"permissionGroups": []
		}
	}
}`

func TestNormalizePermissionTreeArrayShape(t *testing.T) {
	tree, err := normalizePermissionTree([]byte(treeArrayShape))
	require.NoError(t, err)

	entry := tree.FindUserType("titleUser")
	require.NotNil(t, entry)
	assert.Equal(t, 3, entry.ID)

	group := entry.FindGroup(237, "space-feature")
	require.NotNil(t, group)
	require.Len(t, group.Permissions, 2)

	perm := group.FindPermission("f-title-search")
	require.NotNil(t, perm)
	require.NotNil(t, perm.UserTypePermission)
	assert.Equal(t, 77, perm.UserTypePermission.ID)
	assert.True(t, perm.UserTypePermission.Granted)

	assert.Nil(t, group.FindPermission("f-scheduling").UserTypePermission)
}

func TestNormalizePermissionTreeKeyedShape(t *testing.T) {
	tree, err := normalizePermissionTree([]byte(treeKeyedShape))
	require.NoError(t, err)
	assert.Len(t, tree.UserTypes, 2)

	entry := tree.FindUserType("titleUser")
	require.NotNil(t, entry)
	group := entry.FindGroup(0, "space-feature")
	require.NotNil(t, group)
	assert.NotNil(t, group.FindPermission("f-title-search"))
}

func TestNormalizePermissionTreeMissingSection(t *testing.T) {
	_, err := normalizePermissionTree([]byte(`{"ok": true}`))
	assert.Error(t, err)
}

func TestListUserTypePermissions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/permission/user-type-permissions", r.URL.Path)
		assert.Equal(t, "titleUser", r.URL.Query().Get("name"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(treeArrayShape))
	}))
	defer srv.Close()

	client := NewPermissionClient(srv.URL, "test-key")
	tree, err := client.ListUserTypePermissions(context.Background(), "titleUser")
	require.NoError(t, err)
	assert.NotNil(t, tree.FindUserType("titleUser"))
}

func TestListUserTypePermissionsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewPermissionClient(srv.URL, "")
	_, err := client.ListUserTypePermissions(context.Background(), "")
	assert.ErrorIs(t, err, utils.ErrExternalServiceFailure)
}

func TestUpdateUserTypePermissions(t *testing.T) {
	var got UpdateUserTypePermissionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	utpID := 77
	client := NewPermissionClient(srv.URL, "")
	err := client.UpdateUserTypePermissions(context.Background(), UpdateUserTypePermissionRequest{
		PermissionID:         10,
		UserTypePermissionID: &utpID,
		UserTypeID:           2,
		Granted:              true,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, got.PermissionID)
	require.NotNil(t, got.UserTypePermissionID)
	assert.Equal(t, 77, *got.UserTypePermissionID)
	assert.True(t, got.Granted)
}

func TestUpdateUserTypePermissionsFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewPermissionClient(srv.URL, "")
	err := client.UpdateUserTypePermissions(context.Background(), UpdateUserTypePermissionRequest{PermissionID: 1})
	assert.ErrorIs(t, err, utils.ErrExternalServiceFailure)
}
