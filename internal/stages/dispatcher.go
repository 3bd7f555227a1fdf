package stages

import (
	"github.com/cleardeed/closing-service/internal/models"
)

type ContentKind string

const (
	ContentPlaceholder ContentKind = "PLACEHOLDER"
	ContentAutomated   ContentKind = "AUTOMATED"
	ContentManual      ContentKind = "MANUAL"
)

// StageContent tells the client what to render for a stage: the
// not-started placeholder (with a start affordance), the automated
// generation/review driver, or a named manual view.
type StageContent struct {
	Kind ContentKind `json:"kind"`
	// View names the manual view to render, or the placeholder message
	// key for unmapped stages.
	View string `json:"view,omitempty"`
}

// Stages whose work is an automated document-generation step, available
// only to title admins and title users. Abstractors and everyone else
// get the manual fallback.
var automatedStages = map[string]bool{
	StageAISummary:       true,
	StageTitleCommitment: true,
	StageFinalSettlement: true,
}

// Per-stage manual views the client knows how to render. Stages without
// a registered view fall back to the generic under-construction
// placeholder; that fallback is policy, not an error.
var manualViews = map[string]string{
	StageMarketingRequest:       "marketing-request",
	StagePreliminaryTitleSearch: "preliminary-title-search",
	StagePurchaseContract:       "contract-details",
	StageEarnestMoney:           "earnest-money",
	StageTitleSearch:            "title-search-data",
	StageSellerAuthorization:    "seller-authorization",
	StageScheduling:             "scheduling",
	StageClosing:                "final-review",
}

const viewUnderConstruction = "under-construction"

// ContentFor resolves what to show for a stage. Unknown stage ids get
// the under-construction placeholder rather than an error so stale
// clients never crash the page.
func (r Registry) ContentFor(stageID string, p *models.Property, role models.RoleType) StageContent {
	if _, known := r.Find(stageID); !known {
		return StageContent{Kind: ContentPlaceholder, View: viewUnderConstruction}
	}

	if Progress(p, stageID).Status == models.StageStatusNotStarted {
		return StageContent{Kind: ContentPlaceholder}
	}

	if automatedStages[stageID] && (role == models.RoleTitleAdmin || role == models.RoleTitleUser) {
		return StageContent{Kind: ContentAutomated}
	}

	if view, ok := manualViews[stageID]; ok {
		return StageContent{Kind: ContentManual, View: view}
	}
	return StageContent{Kind: ContentPlaceholder, View: viewUnderConstruction}
}
