package constant

// Agent types. Each type maps to one external execution unit.
const (
	AgentTypeDocumentReviewer   = "document_reviewer"
	AgentTypeApsRanking         = "aps_ranking"
	AgentTypeReviewerAssistant  = "reviewer_assistant"
	AgentTypeAnalytics          = "analytics"
	AgentTypeNotificationSender = "notification_sender"
)

// Session lifecycle statuses.
const (
	SessionStatusPending   = "pending"
	SessionStatusRunning   = "running"
	SessionStatusCompleted = "completed"
	SessionStatusFailed    = "failed"
)

// Well-known decision types. decision_type is free-form per agent;
// these are the ones the transcript projector knows how to render.
const (
	DecisionDocumentApproved   = "document_approved"
	DecisionDocumentFlagged    = "document_flagged"
	DecisionApsScoreCalculated = "aps_score_calculated"
	DecisionEligibilityChecked = "eligibility_checked"
	DecisionQuestionAnswer     = "question_answer"
	DecisionRankingAssigned    = "ranking_assigned"
	DecisionChartGenerated     = "chart_generated"
)

// Ranking recommendation tiers.
const (
	RecommendationAutoAccept       = "auto_accept"
	RecommendationConditional      = "conditional"
	RecommendationWaitlist         = "waitlist"
	RecommendationRejectionFlagged = "rejection_flagged"
)

// Institution member roles.
const (
	RoleAdmin    = "admin"
	RoleReviewer = "reviewer"
	RoleMember   = "member"
)

// Transcript message roles.
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
	MessageRoleSystem    = "system"
)

// AgentTypes lists every valid agent type, used for request validation.
var AgentTypes = []string{
	AgentTypeDocumentReviewer,
	AgentTypeApsRanking,
	AgentTypeReviewerAssistant,
	AgentTypeAnalytics,
	AgentTypeNotificationSender,
}

func IsValidAgentType(t string) bool {
	for _, at := range AgentTypes {
		if at == t {
			return true
		}
	}
	return false
}
