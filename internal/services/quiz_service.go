package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	apperrors "weddingbudget/internal/errors"
	"weddingbudget/internal/logger"
	"weddingbudget/internal/models"
	"weddingbudget/internal/money"
	"weddingbudget/internal/repository"
)

const (
	defaultQuizBudgetDollars = 27_500
	defaultQuizGuests        = 100
)

// quizService turns onboarding answers into profile tags and plan settings.
type quizService struct {
	*Backend
	quizzes repository.QuizStore
}

// NewQuizService creates a new QuizServicer.
func NewQuizService(b *Backend, quizzes repository.QuizStore) QuizServicer {
	return &quizService{Backend: b, quizzes: quizzes}
}

// Submit stores the answers with their derived tags, then sets the plan's
// redline from the stated budget and replaces its preference summary.
func (s *quizService) Submit(ctx context.Context, userID string, answers QuizAnswers) (res *QuizResult, err error) {
	// the redline is the budget in cents
	if b := quizBudget(answers); b < 0 || b > money.MaxCents/100 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget must be between 0 and 10000000000")
	}
	ctx, span := startSpan(ctx, "quiz.submit", userID)
	defer func() { endSpan(span, err) }()

	tags := QuizTags(answers)
	summary := QuizSummary(answers)

	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	resp := &models.QuizResponse{
		UserID:  userID,
		QuizID:  answers.QuizID,
		Answers: datatypes.JSON(raw),
		Tags:    datatypes.NewJSONSlice(tags),
	}
	if err := s.quizzes.SaveQuizResponse(ctx, resp); err != nil {
		return nil, storeError(err, apperrors.ErrNotFound)
	}

	err = s.withPlanLock(ctx, userID, func() error {
		plan, err := s.ensurePlan(ctx, userID)
		if err != nil {
			return err
		}
		summary.BaselineBudgetCents = plan.Summary.Data().BaselineBudgetCents
		plan.RedlineCents = quizBudget(answers) * 100
		plan.Summary = datatypes.NewJSONType(summary)
		if err := s.Plans.UpdatePlan(ctx, plan, "redline_cents", "summary"); err != nil {
			return storeError(err, apperrors.ErrPlanNotFound)
		}
		view, err := s.view(ctx, s.Plans, plan)
		if err != nil {
			return err
		}
		res = &QuizResult{Tags: tags, Summary: summary, Plan: view}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("quiz submitted", "user_id", userID, "quiz_id", answers.QuizID, "tags", len(tags))
	return res, nil
}

func quizBudget(a QuizAnswers) int64 {
	if a.BudgetDollars == nil {
		return defaultQuizBudgetDollars
	}
	return *a.BudgetDollars
}

func quizGuests(a QuizAnswers) int {
	if a.Guests == nil {
		return defaultQuizGuests
	}
	return *a.Guests
}

// Season returns the meteorological season of a month, or "" when month is
// not 1 through 12.
func Season(month int) string {
	switch month {
	case 3, 4, 5:
		return "spring"
	case 6, 7, 8:
		return "summer"
	case 9, 10, 11:
		return "fall"
	case 12, 1, 2:
		return "winter"
	}
	return ""
}

// QuizTags derives profile tags from quiz answers.
func QuizTags(a QuizAnswers) []string {
	tags := []string{}
	add := func(format string, args ...any) {
		tags = append(tags, fmt.Sprintf(format, args...))
	}
	each := func(prefix string, values []string) {
		for _, v := range values {
			add("%s%s", prefix, v)
		}
	}

	switch a.Who {
	case "":
	case "couple":
		add("planner_self")
	default:
		add("planner_proxy")
	}
	switch a.Stage {
	case "":
	case "new":
		add("stage_new")
	default:
		add("stage_partial")
	}

	switch budget := quizBudget(a); {
	case budget < 20_000:
		add("budget_10k_20k")
	case budget < 30_000:
		add("budget_20k_30k")
	case budget < 50_000:
		add("budget_30k_50k")
	default:
		add("budget_50k_plus")
	}
	switch a.BudgetFlex {
	case "under_only":
		add("under_only")
	case "plus5":
		add("redline_plus5")
	case "plus10":
		add("redline_plus10")
	}

	switch guests := quizGuests(a); {
	case guests <= 50:
		add("guests_<=50")
	case guests <= 100:
		add("guests_51_100")
	case guests <= 150:
		add("guests_101_150")
	case guests <= 200:
		add("guests_151_200")
	default:
		add("guests_200_plus")
	}
	for _, kp := range a.KidsPets {
		if kp == "kids" || kp == "pets" {
			add("%s_yes", kp)
		}
	}

	if season := Season(a.Month); season != "" {
		add("season_%s", season)
	}
	if a.DateFlex != "" {
		add("date_%s", a.DateFlex)
	}
	if a.CeremonyTime != "" {
		add("ceremony_%s", a.CeremonyTime)
	}

	each("region_", a.Regions)
	if a.Shuttle {
		add("needs_shuttle")
	}
	if a.HotelBlock {
		add("needs_hotel_block")
	}

	each("vibe_", a.Vibe)
	if a.Palette != "" {
		add("palette_%s", a.Palette)
	}
	if a.Formality != "" {
		add("formality_%s", a.Formality)
	}
	if a.Layout != "" {
		add("layout_%s", a.Layout)
	}
	if a.Seating != "" {
		add("seating_%s", a.Seating)
	}
	if a.RainPlan != "" {
		add("rain_%s", a.RainPlan)
	}

	each("prio_", a.Priorities)
	if a.Optimize != "" {
		add("opt_%s", a.Optimize)
	}

	each("trad_", a.Traditions)
	for _, access := range a.Accessibility {
		if strings.HasPrefix(access, "diet_") {
			add("%s", access)
		} else {
			add("a11y_%s", access)
		}
	}

	each("must_", a.MustChips)
	each("nogo_", a.NogoChips)
	return tags
}

// QuizSummary builds the plan preference summary from quiz answers. Vibe
// feeds the optimizer; the weights start from fixed defaults and the
// optimize choice bumps one of them by 0.1.
func QuizSummary(a QuizAnswers) models.PlanSummary {
	weights := map[string]float64{
		"venue":        0.35,
		"budget":       0.25,
		"availability": 0.2,
		"vibe":         0.15,
		"logistics":    0.05,
	}
	switch a.Optimize {
	case "budget":
		weights["budget"] += 0.1
	case "venue":
		weights["venue"] += 0.1
	case "quality":
		weights["vibe"] += 0.1
	}

	return models.PlanSummary{
		Vibe:            a.Vibe,
		Guests:          quizGuests(a),
		Month:           a.Month,
		Season:          Season(a.Month),
		DateFlex:        a.DateFlex,
		Regions:         a.Regions,
		Palette:         a.Palette,
		Formality:       a.Formality,
		Priorities:      a.Priorities,
		Optimize:        a.Optimize,
		Traditions:      a.Traditions,
		Accessibility:   a.Accessibility,
		MustHaves:       a.MustHaves,
		NoGos:           a.NoGos,
		Weights:         weights,
		VenuePreference: a.VenueType,
	}
}
