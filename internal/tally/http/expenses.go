package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/quietloops/tally/internal/tally/domain"
	"github.com/quietloops/tally/internal/tally/service"
	"github.com/quietloops/tally/pkg/httpx"
	"github.com/quietloops/tally/pkg/i18nx"
	"github.com/quietloops/tally/pkg/slogx"
)

// ExpensesHandler serves the tenant-scoped expense endpoints. The tenant id
// always comes from the authenticated context, never from the request.
type ExpensesHandler struct {
	ExpenseService *service.ExpenseService
	Translator     i18nx.Translator
}

type expenseRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type expenseUpdateRequest struct {
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount"`
}

// HandleCreate serves POST /v1/expenses.
func (h *ExpensesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := httpx.UserIDFromContext(ctx)

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.Translator, http.StatusBadRequest, "invalid_request")
		return
	}

	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		writeError(w, r, h.Translator, http.StatusBadRequest, "invalid_request")
		return
	}

	e, err := h.ExpenseService.Create(ctx, userID, req.Description, req.Amount)
	if err != nil {
		slogx.FromContext(ctx).Error("expense create failed", "err", err)
		writeError(w, r, h.Translator, http.StatusInternalServerError, "internal_error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, shapeResponse(e))
}

// HandleList serves GET /v1/expenses.
func (h *ExpensesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := h.ExpenseService.List(ctx, httpx.UserIDFromContext(ctx))
	if err != nil {
		slogx.FromContext(ctx).Error("expense list failed", "err", err)
		writeError(w, r, h.Translator, http.StatusInternalServerError, "internal_error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, list)
}

// HandleGet serves GET /v1/expenses/{id}.
func (h *ExpensesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	e, err := h.ExpenseService.Get(ctx, r.PathValue("id"), httpx.UserIDFromContext(ctx))
	if err != nil {
		h.writeExpenseError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, shapeResponse(e))
}

// HandleUpdate serves PUT /v1/expenses/{id}. Absent fields keep their
// current value.
func (h *ExpensesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req expenseUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.Translator, http.StatusBadRequest, "invalid_request")
		return
	}

	e, err := h.ExpenseService.Update(ctx, r.PathValue("id"), httpx.UserIDFromContext(ctx), domain.ExpenseUpdate{
		Description: req.Description,
		Amount:      req.Amount,
	})
	if err != nil {
		h.writeExpenseError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, shapeResponse(e))
}

// HandleDelete serves DELETE /v1/expenses/{id}.
func (h *ExpensesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.ExpenseService.Delete(ctx, r.PathValue("id"), httpx.UserIDFromContext(ctx)); err != nil {
		h.writeExpenseError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeExpenseError maps service errors for the single-record endpoints. A
// record owned by another tenant is reported exactly like a missing one.
func (h *ExpensesHandler) writeExpenseError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrExpenseNotFound) {
		writeError(w, r, h.Translator, http.StatusNotFound, "expense_not_found")
		return
	}
	slogx.FromContext(r.Context()).Error("expense operation failed", "err", err)
	writeError(w, r, h.Translator, http.StatusInternalServerError, "internal_error")
}

func shapeResponse(e domain.Expense) service.ExpenseSnapshot {
	return service.ExpenseSnapshot{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		CreatedAt:   e.CreatedAt,
	}
}
