package stages

// StageDefinition is one step of the closing workflow. Definitions are
// fixed at build time; the slice ordering in a Registry is the single
// source of truth for display order and "next stage" computation.
type StageDefinition struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Optional bool   `json:"optional"`
}

// Registry is an ordered, immutable set of stage definitions. Consumers
// must treat it as read-only.
type Registry []StageDefinition

// Stage ids. Used everywhere as the join key: progress entries,
// workflow options, visibility settings, permission names.
const (
	StageMarketingRequest       = "marketingRequest"
	StagePreliminaryTitleSearch = "preliminaryTitleSearch"
	StageNetToSeller            = "netToSeller"
	StagePurchaseContract       = "purchaseContract"
	StageEarnestMoney           = "earnestMoney"
	StageTitleSearch            = "titleSearch"
	StageAISummary              = "aiSummary"
	StageTitleCommitment        = "titleCommitment"
	StageSellerAuthorization    = "sellerAuthorization"
	StagePayoffs                = "payoffs"
	StageLoanStatus             = "loanStatus"
	StageClosingDisclosure      = "closingDisclosure"
	StageScheduling             = "scheduling"
	StageFinalSettlement        = "finalSettlement"
	StageSendForApproval        = "sendForApproval"
	StageClosing                = "closing"
	StageFunding                = "funding"
	StagePostClosingRecording   = "postClosingRecording"
	StageRecordingVerification  = "recordingVerification"
	StageTitlePolicyCreation    = "titlePolicyCreation"
)

var defaultRegistry = Registry{
	{ID: StageMarketingRequest, Title: "Marketing request", Optional: true},
	{ID: StagePreliminaryTitleSearch, Title: "Preliminary title search", Optional: true},
	{ID: StageNetToSeller, Title: "Net to seller (V2)", Optional: true},
	{ID: StagePurchaseContract, Title: "Purchase contract", Optional: true},
	{ID: StageEarnestMoney, Title: "Earnest money", Optional: true},
	{ID: StageTitleSearch, Title: "Title search", Optional: true},
	{ID: StageAISummary, Title: "AI Summary", Optional: true},
	{ID: StageTitleCommitment, Title: "Title commitment", Optional: true},
	{ID: StageSellerAuthorization, Title: "Seller authorization", Optional: true},
	{ID: StagePayoffs, Title: "Payoffs (V2)", Optional: true},
	{ID: StageLoanStatus, Title: "Loan status", Optional: true},
	{ID: StageClosingDisclosure, Title: "Closing disclosure (V2)", Optional: true},
	{ID: StageScheduling, Title: "Scheduling", Optional: true},
	{ID: StageFinalSettlement, Title: "Final Settlement Statement (V2)", Optional: true},
	{ID: StageSendForApproval, Title: "Send for approval", Optional: true},
	{ID: StageClosing, Title: "Closing", Optional: true},
	{ID: StageFunding, Title: "Funding", Optional: true},
	{ID: StagePostClosingRecording, Title: "Post closing & recording (V2)", Optional: true},
	{ID: StageRecordingVerification, Title: "Recording verification", Optional: true},
	{ID: StageTitlePolicyCreation, Title: "Title policy creation", Optional: true},
}

// DefaultRegistry returns the deployment's canonical stage ordering.
func DefaultRegistry() Registry {
	return defaultRegistry
}

// Find returns the definition for a stage id, or false when the id is
// unknown. Unknown ids are a configuration error handled as a silent
// skip by every caller.
func (r Registry) Find(stageID string) (StageDefinition, bool) {
	for _, s := range r {
		if s.ID == stageID {
			return s, true
		}
	}
	return StageDefinition{}, false
}

// IndexOf returns the registry position of a stage id, or -1.
func (r Registry) IndexOf(stageID string) int {
	for i, s := range r {
		if s.ID == stageID {
			return i
		}
	}
	return -1
}
