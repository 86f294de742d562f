package http

import (
	"net/http"

	"obra/internal/core"
)

type itemRequest struct {
	ProjectID     int64   `json:"project_id" validate:"required,gt=0"`
	Area          string  `json:"area" validate:"max=120"`
	Category      string  `json:"category" validate:"max=120"`
	Name          string  `json:"name" validate:"required,max=200"`
	Description   string  `json:"description" validate:"max=500"`
	Quantity      int64   `json:"quantity" validate:"omitempty,gte=1"`
	EstimatedCost *string `json:"estimated_cost" validate:"omitempty,decimal"`
	InternalCost  *string `json:"internal_cost" validate:"omitempty,decimal"`
	ClientCost    *string `json:"client_cost" validate:"omitempty,decimal"`
	SupplierID    int64   `json:"supplier_id" validate:"gte=0"`
	SupplierName  string  `json:"supplier_name" validate:"max=200"`
}

func (req itemRequest) toDomain(id int64) (core.ProjectItem, error) {
	estimated, err := parseNullDecimal(req.EstimatedCost)
	if err != nil {
		return core.ProjectItem{}, err
	}
	internal, err := parseNullDecimal(req.InternalCost)
	if err != nil {
		return core.ProjectItem{}, err
	}
	client, err := parseNullDecimal(req.ClientCost)
	if err != nil {
		return core.ProjectItem{}, err
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	return core.ProjectItem{
		ID:            id,
		ProjectID:     req.ProjectID,
		Area:          req.Area,
		Category:      req.Category,
		Name:          req.Name,
		Description:   req.Description,
		Quantity:      quantity,
		EstimatedCost: estimated,
		InternalCost:  internal,
		ClientCost:    client,
		SupplierID:    req.SupplierID,
		SupplierName:  req.SupplierName,
	}, nil
}

type itemResponse struct {
	ID            int64   `json:"id"`
	ProjectID     int64   `json:"project_id"`
	Area          string  `json:"area"`
	Category      string  `json:"category"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Quantity      int64   `json:"quantity"`
	EstimatedCost *string `json:"estimated_cost"`
	InternalCost  *string `json:"internal_cost"`
	ClientCost    *string `json:"client_cost"`
	SupplierID    int64   `json:"supplier_id,omitempty"`
	SupplierName  string  `json:"supplier_name,omitempty"`
}

func toItemResponse(item core.ProjectItem) itemResponse {
	return itemResponse{
		ID:            item.ID,
		ProjectID:     item.ProjectID,
		Area:          item.Area,
		Category:      item.Category,
		Name:          item.Name,
		Description:   item.Description,
		Quantity:      item.Quantity,
		EstimatedCost: nullDecimalString(item.EstimatedCost),
		InternalCost:  nullDecimalString(item.InternalCost),
		ClientCost:    nullDecimalString(item.ClientCost),
		SupplierID:    item.SupplierID,
		SupplierName:  item.SupplierName,
	}
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	item, err := req.toDomain(0)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	created, err := s.items.Create(r.Context(), item)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toItemResponse(created))
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	item, err := s.items.Get(r.Context(), id)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, toItemResponse(item))
}

func (s *Server) handleListProjectItems(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	items, err := s.items.List(r.Context(), projectID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toItemResponse(item))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	var req itemRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	item, err := req.toDomain(id)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	updated, err := s.items.Update(r.Context(), item)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, toItemResponse(updated))
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	if err := s.items.Delete(r.Context(), id); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type guidanceResponse struct {
	ItemName                      string  `json:"item_name"`
	ClientCost                    *string `json:"client_cost"`
	EstimatedCost                 *string `json:"estimated_cost"`
	TotalExpenses                 string  `json:"total_expenses"`
	RemainingBudget               *string `json:"remaining_budget"`
	IsOverBudget                  bool    `json:"is_over_budget"`
	RecommendedClientFacingAmount *string `json:"recommended_client_facing_amount"`
}

// handleItemGuidance serves live budget guidance for the transaction
// form. exclude_transaction_id names the transaction being edited so it
// does not count against its own item.
func (s *Server) handleItemGuidance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	exclude := queryInt64(r, "exclude_transaction_id", 0)

	g, err := s.items.Guidance(r.Context(), id, exclude)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, guidanceResponse{
		ItemName:                      g.ItemName,
		ClientCost:                    nullDecimalString(g.ClientCost),
		EstimatedCost:                 nullDecimalString(g.EstimatedCost),
		TotalExpenses:                 g.TotalExpenses.String(),
		RemainingBudget:               nullDecimalString(g.RemainingBudget),
		IsOverBudget:                  g.IsOverBudget,
		RecommendedClientFacingAmount: nullDecimalString(g.RecommendedClientFacingAmount),
	})
}
