package constants

import (
	"time"
)

const AppName = "closing-service"

// Permission sync settings. The external permission service keys
// workflow features under the "space-feature" group; the group id is
// stable per deployment but the name survives re-seeds.
const (
	PermissionFeatureGroupID   = 237
	PermissionFeatureGroupName = "space-feature"
	PermissionTreeUserType     = "titleUser"
)

// External user-type ids the grant/revoke calls target: buyer (1),
// seller (2), agent (4).
var PermissionSyncUserTypeIDs = []int{1, 2, 4}

// Outbox processing
const (
	OutboxMaxAttempts   = 5
	OutboxBatchSize     = 50
	OutboxDrainSchedule = "@every 1m"
)

// Permission-tree cache
const (
	PermissionTreeCacheKey = "permission-tree/space-feature"
	PermissionTreeCacheTTL = 5 * time.Minute
)

// External HTTP clients
const (
	ClientRequestTimeout = 10 * time.Second
)
