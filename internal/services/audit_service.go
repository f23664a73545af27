package services

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"weddingbudget/internal/logger"
	"weddingbudget/internal/models"
)

// Audit actions, one per budget event the plan UI tracks.
const (
	ActionDecisionApproved   = "DECISION_APPROVED"
	ActionDecisionSwapped    = "DECISION_SWAPPED"
	ActionRedlineIntercepted = "REDLINE_INTERCEPTED"
	ActionOptimizeToBudget   = "OPTIMIZE_TO_BUDGET"
	ActionUndoApplied        = "UNDO_APPLIED"
	ActionSetRedline         = "SET_REDLINE"
	ActionUpdateSummary      = "UPDATE_SUMMARY"
	ActionUpdateRates        = "UPDATE_RATES"
	ActionQuizSubmitted      = "QUIZ_SUBMITTED"
	ActionImportCatalog      = "IMPORT_CATALOG"
)

// auditService handles audit log recording.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any) {
	var changesJSON datatypes.JSON
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = datatypes.JSON("{}")
		} else {
			changesJSON = datatypes.JSON(data)
		}
	}

	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}
