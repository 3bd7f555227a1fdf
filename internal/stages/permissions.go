package stages

// stagePermissionNames maps each stage id to the feature-permission
// name the external permission service knows it by. Workflow-options
// changes resolve through this table before firing grant/revoke calls.
var stagePermissionNames = map[string]string{
	StageMarketingRequest:       "f-marketing-request",
	StagePreliminaryTitleSearch: "f-preliminary-title-search",
	StageNetToSeller:            "f-net-to-seller-v2",
	StagePurchaseContract:       "f-purchase-contract",
	StageEarnestMoney:           "f-earnest-money",
	StageTitleSearch:            "f-title-search",
	StageAISummary:              "f-ai-summary",
	StageTitleCommitment:        "f-title-commitment",
	StageSellerAuthorization:    "f-seller-authorization",
	StagePayoffs:                "f-payoffs-v2",
	StageLoanStatus:             "f-loan-status",
	StageClosingDisclosure:      "f-closing-disclosure-v2",
	StageScheduling:             "f-scheduling",
	StageFinalSettlement:        "f-final-settlement-statement-v2",
	StageSendForApproval:        "f-send-for-approval",
	StageClosing:                "f-closing",
	StageFunding:                "f-funding",
	StagePostClosingRecording:   "f-post-closing-recording-v2",
	StageRecordingVerification:  "f-recording-verification",
	StageTitlePolicyCreation:    "f-title-policy-creation",
}

// PermissionName resolves a stage id to its permission name. Stages
// without a mapping (unknown ids) report false and are skipped by the
// sync path.
func PermissionName(stageID string) (string, bool) {
	name, ok := stagePermissionNames[stageID]
	return name, ok
}
