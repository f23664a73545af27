package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"weddingbudget/internal/budget"
	apperrors "weddingbudget/internal/errors"
	"weddingbudget/internal/models"
	"weddingbudget/internal/money"
	"weddingbudget/internal/services"
)

// --- mock decision service ---

type mockDecisionService struct {
	evaluateFn    func(ctx context.Context, userID string, change services.DecisionChange) (*budget.Evaluation, error)
	approveFn     func(ctx context.Context, userID string, change services.DecisionChange) (*services.CommitResult, error)
	swapFn        func(ctx context.Context, userID string, change services.DecisionChange) (*services.CommitResult, error)
	undoFn        func(ctx context.Context, userID string, req services.UndoRequest) (*services.UndoResult, error)
	pendingUndoFn func(ctx context.Context, userID, sessionKey string) (*budget.UndoRecord, error)
}

func (m *mockDecisionService) Evaluate(ctx context.Context, userID string, change services.DecisionChange) (*budget.Evaluation, error) {
	if m.evaluateFn != nil {
		return m.evaluateFn(ctx, userID, change)
	}
	return &budget.Evaluation{ItemID: change.ItemID, Allowed: true, Verdict: budget.VerdictAllowed}, nil
}

func (m *mockDecisionService) Approve(ctx context.Context, userID string, change services.DecisionChange) (*services.CommitResult, error) {
	if m.approveFn != nil {
		return m.approveFn(ctx, userID, change)
	}
	return committed(change), nil
}

func (m *mockDecisionService) Swap(ctx context.Context, userID string, change services.DecisionChange) (*services.CommitResult, error) {
	if m.swapFn != nil {
		return m.swapFn(ctx, userID, change)
	}
	return committed(change), nil
}

func (m *mockDecisionService) Undo(ctx context.Context, userID string, req services.UndoRequest) (*services.UndoResult, error) {
	if m.undoFn != nil {
		return m.undoFn(ctx, userID, req)
	}
	return &services.UndoResult{Item: &models.DecisionItem{Base: models.Base{ID: req.ItemID}}}, nil
}

func (m *mockDecisionService) PendingUndo(ctx context.Context, userID, sessionKey string) (*budget.UndoRecord, error) {
	if m.pendingUndoFn != nil {
		return m.pendingUndoFn(ctx, userID, sessionKey)
	}
	return nil, nil
}

var _ services.DecisionServicer = (*mockDecisionService)(nil)

func committed(change services.DecisionChange) *services.CommitResult {
	return &services.CommitResult{
		Committed:  true,
		Evaluation: budget.Evaluation{ItemID: change.ItemID, Allowed: true, Verdict: budget.VerdictAllowed, Option: models.Option{ID: change.OptionID}},
		Totals:     money.Totals{Subtotal: 3_800_000, Total: 3_800_000},
		Item:       &models.DecisionItem{Base: models.Base{ID: change.ItemID}, SelectedID: change.OptionID},
	}
}

func blocked(change services.DecisionChange) *services.CommitResult {
	return &services.CommitResult{
		Evaluation: budget.Evaluation{
			ItemID:           change.ItemID,
			Verdict:          budget.VerdictBlocked,
			Option:           models.Option{ID: change.OptionID, PriceCents: 3_400_000},
			CurrentSubtotal:  3_800_000,
			ProposedSubtotal: 4_200_000,
			RedlineCents:     4_000_000,
			OverageCents:     200_000,
		},
		Totals: money.Totals{Subtotal: 3_800_000, Total: 3_800_000},
	}
}

func setupDecisionRouter(handler *DecisionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectIdentity("couple-1", "couple-1:tab-1"))
	auth.POST("/plan/decisions/:id/approve", handler.Approve)
	auth.POST("/plan/decisions/:id/swap", handler.Swap)
	auth.POST("/plan/decisions/:id/evaluate", handler.Evaluate)
	auth.POST("/plan/decisions/:id/undo", handler.Undo)
	auth.GET("/plan/undo", handler.PendingUndo)
	return r
}

func TestDecisionHandler_Approve(t *testing.T) {
	t.Run("returns 200 and passes the change", func(t *testing.T) {
		var got services.DecisionChange
		svc := &mockDecisionService{
			approveFn: func(_ context.Context, _ string, change services.DecisionChange) (*services.CommitResult, error) {
				got = change
				return committed(change), nil
			},
		}
		audit := &mockAuditService{}
		r := setupDecisionRouter(NewDecisionHandler(svc, audit))

		rec := doRequest(r, "POST", "/plan/decisions/item-venue/approve", `{"option_id":"venue-garden-loft"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.ItemID != "item-venue" || got.OptionID != "venue-garden-loft" || got.Override {
			t.Errorf("unexpected change %+v", got)
		}
		if got.SessionKey != "couple-1:tab-1" {
			t.Errorf("expected session key couple-1:tab-1, got %q", got.SessionKey)
		}
		result := parseJSON(t, rec)
		assertOK(t, result)
		if result["committed"] != true {
			t.Errorf("expected committed=true, got %v", result["committed"])
		}
		if actions := audit.actions(); len(actions) != 1 || actions[0] != services.ActionDecisionApproved {
			t.Errorf("expected DECISION_APPROVED audit, got %v", actions)
		}
	})

	t.Run("binds option snapshot and override", func(t *testing.T) {
		var got services.DecisionChange
		svc := &mockDecisionService{
			approveFn: func(_ context.Context, _ string, change services.DecisionChange) (*services.CommitResult, error) {
				got = change
				return committed(change), nil
			},
		}
		r := setupDecisionRouter(NewDecisionHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/plan/decisions/item-venue/approve",
			`{"option":{"id":"custom-barn","name":"Custom Barn","price_cents":900000,"tags":["rustic"]},"override":true}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Option == nil || got.Option.ID != "custom-barn" || got.Option.PriceCents != 900_000 {
			t.Errorf("unexpected option %+v", got.Option)
		}
		if !got.Override {
			t.Error("expected override to be passed")
		}
	})

	t.Run("returns 409 with evaluation when blocked", func(t *testing.T) {
		svc := &mockDecisionService{
			approveFn: func(_ context.Context, _ string, change services.DecisionChange) (*services.CommitResult, error) {
				return blocked(change), apperrors.ErrRedlineExceeded
			},
		}
		audit := &mockAuditService{}
		r := setupDecisionRouter(NewDecisionHandler(svc, audit))

		rec := doRequest(r, "POST", "/plan/decisions/item-venue/approve", `{"option_id":"venue-estate"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "REDLINE_EXCEEDED")
		eval, ok := result["evaluation"].(map[string]interface{})
		if !ok {
			t.Fatalf("expected evaluation in blocked response, got %v", result)
		}
		if eval["overage_cents"].(float64) != 200_000 {
			t.Errorf("expected overage 200000, got %v", eval["overage_cents"])
		}
		if actions := audit.actions(); len(actions) != 1 || actions[0] != services.ActionRedlineIntercepted {
			t.Errorf("expected REDLINE_INTERCEPTED audit, got %v", actions)
		}
	})

	t.Run("returns 404 on unknown item", func(t *testing.T) {
		svc := &mockDecisionService{
			approveFn: func(context.Context, string, services.DecisionChange) (*services.CommitResult, error) {
				return nil, apperrors.ErrDecisionNotFound
			},
		}
		audit := &mockAuditService{}
		r := setupDecisionRouter(NewDecisionHandler(svc, audit))

		rec := doRequest(r, "POST", "/plan/decisions/nope/approve", `{"option_id":"x"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DECISION_NOT_FOUND")
		if len(audit.actions()) != 0 {
			t.Error("expected no audit on failure")
		}
	})

	t.Run("returns 409 retryable when plan is busy", func(t *testing.T) {
		svc := &mockDecisionService{
			approveFn: func(context.Context, string, services.DecisionChange) (*services.CommitResult, error) {
				return nil, apperrors.ErrPlanBusy
			},
		}
		r := setupDecisionRouter(NewDecisionHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/plan/decisions/item-venue/approve", `{"option_id":"x"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "PLAN_BUSY")
		if result["error"].(map[string]interface{})["retryable"] != true {
			t.Error("expected retryable=true")
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{name: "returns 400 on malformed json", body: `{"option_id":`},
		{name: "returns 400 on option without name", body: `{"option":{"id":"x","price_cents":100}}`},
		{name: "returns 400 on negative price", body: `{"option":{"id":"x","name":"X","price_cents":-5}}`},
		{name: "returns 400 on price over ceiling", body: `{"option":{"id":"x","name":"X","price_cents":9223372036854775707}}`},
		{name: "returns 400 on invalid tag", body: `{"option":{"id":"x","name":"X","price_cents":5,"tags":["Not A Tag"]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupDecisionRouter(NewDecisionHandler(&mockDecisionService{}, &mockAuditService{}))

			rec := doRequest(r, "POST", "/plan/decisions/item-venue/approve", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}
}

func TestDecisionHandler_Swap(t *testing.T) {
	t.Run("returns 200 and audits swap", func(t *testing.T) {
		called := false
		svc := &mockDecisionService{
			swapFn: func(_ context.Context, _ string, change services.DecisionChange) (*services.CommitResult, error) {
				called = true
				return committed(change), nil
			},
		}
		audit := &mockAuditService{}
		r := setupDecisionRouter(NewDecisionHandler(svc, audit))

		rec := doRequest(r, "POST", "/plan/decisions/item-music/swap", `{"option_id":"music-dj"}`)
		if rec.Code != http.StatusOK || !called {
			t.Fatalf("expected 200 from swap, got %d: %s", rec.Code, rec.Body.String())
		}
		if actions := audit.actions(); len(actions) != 1 || actions[0] != services.ActionDecisionSwapped {
			t.Errorf("expected DECISION_SWAPPED audit, got %v", actions)
		}
	})

	t.Run("returns 409 when blocked", func(t *testing.T) {
		svc := &mockDecisionService{
			swapFn: func(_ context.Context, _ string, change services.DecisionChange) (*services.CommitResult, error) {
				return blocked(change), apperrors.ErrRedlineExceeded
			},
		}
		r := setupDecisionRouter(NewDecisionHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/plan/decisions/item-venue/swap", `{"option_id":"venue-estate"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "REDLINE_EXCEEDED")
	})
}

func TestDecisionHandler_Evaluate(t *testing.T) {
	t.Run("returns evaluation without auditing", func(t *testing.T) {
		svc := &mockDecisionService{
			evaluateFn: func(_ context.Context, _ string, change services.DecisionChange) (*budget.Evaluation, error) {
				return &blocked(change).Evaluation, nil
			},
		}
		audit := &mockAuditService{}
		r := setupDecisionRouter(NewDecisionHandler(svc, audit))

		rec := doRequest(r, "POST", "/plan/decisions/item-venue/evaluate", `{"option_id":"venue-estate"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		eval := parseJSON(t, rec)["evaluation"].(map[string]interface{})
		if eval["allowed"] != false {
			t.Errorf("expected allowed=false, got %v", eval["allowed"])
		}
		if len(audit.actions()) != 0 {
			t.Error("expected no audit for evaluate")
		}
	})
}

func TestDecisionHandler_Undo(t *testing.T) {
	t.Run("empty body uses session slot", func(t *testing.T) {
		var got services.UndoRequest
		svc := &mockDecisionService{
			undoFn: func(_ context.Context, _ string, req services.UndoRequest) (*services.UndoResult, error) {
				got = req
				return &services.UndoResult{
					Item:     &models.DecisionItem{Base: models.Base{ID: req.ItemID}},
					Restored: models.Option{ID: "venue-hall"},
				}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupDecisionRouter(NewDecisionHandler(svc, audit))

		rec := doRequest(r, "POST", "/plan/decisions/item-venue/undo", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.ItemID != "item-venue" || got.PreviousOptionID != "" || got.PreviousOption != nil {
			t.Errorf("unexpected undo request %+v", got)
		}
		if got.SessionKey != "couple-1:tab-1" {
			t.Errorf("expected session key, got %q", got.SessionKey)
		}
		restored := parseJSON(t, rec)["restored"].(map[string]interface{})
		if restored["id"] != "venue-hall" {
			t.Errorf("expected restored venue-hall, got %v", restored["id"])
		}
		if actions := audit.actions(); len(actions) != 1 || actions[0] != services.ActionUndoApplied {
			t.Errorf("expected UNDO_APPLIED audit, got %v", actions)
		}
	})

	t.Run("passes previous option id", func(t *testing.T) {
		var got services.UndoRequest
		svc := &mockDecisionService{
			undoFn: func(_ context.Context, _ string, req services.UndoRequest) (*services.UndoResult, error) {
				got = req
				return &services.UndoResult{Item: &models.DecisionItem{}}, nil
			},
		}
		r := setupDecisionRouter(NewDecisionHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/plan/decisions/item-venue/undo", `{"previous_option_id":"venue-hall"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.PreviousOptionID != "venue-hall" {
			t.Errorf("expected previous option venue-hall, got %q", got.PreviousOptionID)
		}
	})

	t.Run("returns 404 when nothing to undo", func(t *testing.T) {
		svc := &mockDecisionService{
			undoFn: func(context.Context, string, services.UndoRequest) (*services.UndoResult, error) {
				return nil, apperrors.ErrUndoNotAvailable
			},
		}
		r := setupDecisionRouter(NewDecisionHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/plan/decisions/item-venue/undo", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNDO_NOT_AVAILABLE")
	})

	t.Run("returns 400 on malformed json", func(t *testing.T) {
		r := setupDecisionRouter(NewDecisionHandler(&mockDecisionService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/plan/decisions/item-venue/undo", `{"previous_option_id":`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestDecisionHandler_PendingUndo(t *testing.T) {
	t.Run("returns null when empty", func(t *testing.T) {
		r := setupDecisionRouter(NewDecisionHandler(&mockDecisionService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/plan/undo", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if v, present := result["pending"]; !present || v != nil {
			t.Errorf("expected pending=null, got %v", v)
		}
	})

	t.Run("returns pending record for session", func(t *testing.T) {
		var gotKey string
		svc := &mockDecisionService{
			pendingUndoFn: func(_ context.Context, _, sessionKey string) (*budget.UndoRecord, error) {
				gotKey = sessionKey
				return &budget.UndoRecord{ItemID: "item-venue", ChosenID: "venue-estate"}, nil
			},
		}
		r := setupDecisionRouter(NewDecisionHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/plan/undo", "")
		if gotKey != "couple-1:tab-1" {
			t.Errorf("expected session key, got %q", gotKey)
		}
		pending := parseJSON(t, rec)["pending"].(map[string]interface{})
		if pending["item_id"] != "item-venue" {
			t.Errorf("expected item-venue, got %v", pending["item_id"])
		}
	})
}
