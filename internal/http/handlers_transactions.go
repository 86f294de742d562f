package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"obra/internal/core"
	"obra/internal/services"
)

type transactionRequest struct {
	ProjectID          int64   `json:"project_id" validate:"required,gt=0"`
	ProjectItemID      int64   `json:"project_item_id" validate:"gte=0"`
	Kind               string  `json:"kind" validate:"required,oneof=expense income"`
	Amount             string  `json:"amount" validate:"required,decimal"`
	ClientFacingAmount *string `json:"client_facing_amount" validate:"omitempty,decimal"`
	Date               string  `json:"date" validate:"required,datetime=2006-01-02"`
	PaymentMethod      string  `json:"payment_method" validate:"max=120"`
	Description        string  `json:"description" validate:"max=200"`
}

func (req transactionRequest) toInput() (services.TransactionInput, error) {
	kind, err := core.ParseKind(req.Kind)
	if err != nil {
		return services.TransactionInput{}, err
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return services.TransactionInput{}, errInvalidBody{msg: "invalid amount " + req.Amount}
	}

	clientFacing, err := parseNullDecimal(req.ClientFacingAmount)
	if err != nil {
		return services.TransactionInput{}, err
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return services.TransactionInput{}, errInvalidBody{msg: "invalid date " + req.Date}
	}

	return services.TransactionInput{
		ProjectID:          req.ProjectID,
		ProjectItemID:      req.ProjectItemID,
		Kind:               kind,
		Amount:             amount,
		ClientFacingAmount: clientFacing,
		Date:               date,
		PaymentMethod:      req.PaymentMethod,
		Description:        req.Description,
	}, nil
}

// transactionResponse exposes the stored ledger row. Amounts keep their
// stored sign; kind is derived from it.
type transactionResponse struct {
	ID                 int64   `json:"id"`
	ProjectID          int64   `json:"project_id"`
	ProjectItemID      int64   `json:"project_item_id"`
	Kind               string  `json:"kind"`
	Amount             string  `json:"amount"`
	ClientFacingAmount *string `json:"client_facing_amount"`
	Date               string  `json:"date"`
	PaymentMethod      string  `json:"payment_method"`
	Description        string  `json:"description"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:                 tx.ID,
		ProjectID:          tx.ProjectID,
		ProjectItemID:      tx.ProjectItemID,
		Kind:               string(core.Classify(tx.Amount)),
		Amount:             tx.Amount.String(),
		ClientFacingAmount: nullDecimalString(tx.ClientFacingAmount),
		Date:               tx.Date.Format("2006-01-02"),
		PaymentMethod:      tx.PaymentMethod,
		Description:        tx.Description,
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	created, err := s.txs.Create(r.Context(), in)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	tx, err := s.txs.Get(r.Context(), id)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	var req transactionRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	in, err := req.toInput()
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	updated, err := s.txs.Update(r.Context(), id, in)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	if err := s.txs.Delete(r.Context(), id); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListProjectTransactions(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	txs, err := s.txs.ListProject(r.Context(), projectID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	respondJSON(w, http.StatusOK, out)
}
