package services

import (
	"context"

	"weddingbudget/internal/budget"
	"weddingbudget/internal/models"
	"weddingbudget/internal/money"
	"weddingbudget/internal/pagination"
)

// PlanView is a plan with its freshly reconciled totals and its decision
// items ordered by impact descending, then category ascending.
type PlanView struct {
	Plan      *models.Plan          `json:"plan"`
	Totals    money.Totals          `json:"totals"`
	Decisions []models.DecisionItem `json:"decisions"`
}

// PlanServicer defines the contract for plan-level operations.
type PlanServicer interface {
	GetPlan(ctx context.Context, userID string) (*PlanView, error)
	SetRedline(ctx context.Context, userID string, redlineCents int64) (*PlanView, error)
	UpdateSummary(ctx context.Context, userID string, summary models.PlanSummary, windows []models.DateWindow) (*PlanView, error)
	UpdateRates(ctx context.Context, userID string, rates money.Rates) (*PlanView, error)
	GetDiff(ctx context.Context, userID string, proposedSubtotal *int64) (*budget.Diff, error)
}

// DecisionChange identifies the option a caller wants committed to an item.
// Option wins over OptionID when both are set.
type DecisionChange struct {
	ItemID     string
	Option     *models.Option
	OptionID   string
	Override   bool
	SessionKey string
}

// CommitResult is the outcome of an approve or swap. When the redline guard
// blocks the change, Committed is false and Evaluation explains why.
type CommitResult struct {
	Committed  bool                 `json:"committed"`
	Overridden bool                 `json:"overridden"`
	Evaluation budget.Evaluation    `json:"evaluation"`
	Totals     money.Totals         `json:"totals"`
	Item       *models.DecisionItem `json:"item,omitempty"`
}

// UndoRequest reverses the last commit on an item. Without a previous
// option the session's undo slot is used.
type UndoRequest struct {
	ItemID           string
	PreviousOptionID string
	PreviousOption   *models.Option
	SessionKey       string
}

// UndoResult is the state after an undo.
type UndoResult struct {
	Totals   money.Totals         `json:"totals"`
	Item     *models.DecisionItem `json:"item"`
	Restored models.Option        `json:"restored"`
}

// DecisionServicer defines the contract for guarded decision changes.
type DecisionServicer interface {
	Evaluate(ctx context.Context, userID string, change DecisionChange) (*budget.Evaluation, error)
	Approve(ctx context.Context, userID string, change DecisionChange) (*CommitResult, error)
	Swap(ctx context.Context, userID string, change DecisionChange) (*CommitResult, error)
	Undo(ctx context.Context, userID string, req UndoRequest) (*UndoResult, error)
	PendingUndo(ctx context.Context, userID, sessionKey string) (*budget.UndoRecord, error)
}

// OptimizeView reports one optimizer run after its swaps were committed.
type OptimizeView struct {
	Applied       []budget.Swap `json:"applied"`
	Totals        money.Totals  `json:"totals"`
	Saved         int64         `json:"saved"`
	TargetCents   int64         `json:"target_cents"`
	ReachedTarget bool          `json:"reached_target"`
	Message       string        `json:"message,omitempty"`
}

// OptimizerServicer defines the contract for bringing a plan under budget.
type OptimizerServicer interface {
	OptimizeToRedline(ctx context.Context, userID, sessionKey string, targetCents *int64) (*OptimizeView, error)
}

// CatalogServicer defines the contract for the vendor option catalog.
type CatalogServicer interface {
	ListOptions(ctx context.Context, category *models.Category, page pagination.PageRequest) (*pagination.PageResponse[models.VendorOption], error)
	ImportOptions(ctx context.Context, opts []models.VendorOption, overwrite bool) (int, error)
	EnsureDefaults(ctx context.Context) error
}

// QuizAnswers holds one onboarding quiz submission. Nil budget and guest
// counts fall back to the quiz defaults.
type QuizAnswers struct {
	QuizID        string   `json:"quiz_id" binding:"max=100"`
	Who           string   `json:"who,omitempty"`
	Stage         string   `json:"stage,omitempty"`
	BudgetDollars *int64   `json:"budget,omitempty" binding:"omitempty,gte=0,lte=10000000000"`
	BudgetFlex    string   `json:"budget_flex,omitempty"`
	Guests        *int     `json:"guests,omitempty" binding:"omitempty,gte=0,lte=5000"`
	KidsPets      []string `json:"kids_pets,omitempty"`
	Month         int      `json:"date_month,omitempty" binding:"gte=0,lte=12"`
	DateFlex      string   `json:"date_flex,omitempty"`
	CeremonyTime  string   `json:"ceremony_time,omitempty"`
	Regions       []string `json:"regions,omitempty"`
	Shuttle       bool     `json:"shuttle,omitempty"`
	HotelBlock    bool     `json:"hotel_block,omitempty"`
	Vibe          []string `json:"vibe,omitempty" binding:"omitempty,max=20,dive,style_tag"`
	Palette       string   `json:"palette,omitempty"`
	Formality     string   `json:"formality,omitempty"`
	Layout        string   `json:"layout,omitempty"`
	Seating       string   `json:"seating,omitempty"`
	RainPlan      string   `json:"rain_plan,omitempty"`
	Priorities    []string `json:"priorities,omitempty"`
	Optimize      string   `json:"optimize,omitempty"`
	Traditions    []string `json:"traditions,omitempty"`
	Accessibility []string `json:"accessibility,omitempty"`
	MustChips     []string `json:"must_chips,omitempty"`
	NogoChips     []string `json:"nogo_chips,omitempty"`
	MustHaves     string   `json:"musts,omitempty"`
	NoGos         string   `json:"nogos,omitempty"`
	VenueType     string   `json:"venue_type,omitempty"`
}

// QuizResult is what a submission produced.
type QuizResult struct {
	Tags    []string           `json:"tags"`
	Summary models.PlanSummary `json:"summary"`
	Plan    *PlanView          `json:"plan"`
}

// QuizServicer defines the contract for onboarding quiz submissions.
type QuizServicer interface {
	Submit(ctx context.Context, userID string, answers QuizAnswers) (*QuizResult, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
