package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bertomartin/ashoka-survey-web/internal/auth"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

const webhookSecretHeader = "X-Webhook-Secret"

// OrganizationPurger removes the surveys of deleted organizations.
type OrganizationPurger interface {
	PurgeOrganizations(ctx context.Context, orgIDs []int64) (int, error)
}

// DeletedOrganizationsHandler receives deletion notices from the
// organization directory.
type DeletedOrganizationsHandler struct {
	purger     OrganizationPurger
	hasher     *auth.SecretHasher
	secretHash string
}

func NewDeletedOrganizationsHandler(purger OrganizationPurger, hasher *auth.SecretHasher, secretHash string) *DeletedOrganizationsHandler {
	return &DeletedOrganizationsHandler{purger: purger, hasher: hasher, secretHash: secretHash}
}

type DeletedOrganizationsRequest struct {
	OrganizationIDs []int64 `json:"organization_ids"`
}

type DeletedOrganizationsResponse struct {
	BaseResponse
	SurveysDeleted int `json:"surveys_deleted"`
}

func (h *DeletedOrganizationsHandler) Receive(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get(webhookSecretHeader)
	if h.secretHash == "" || secret == "" {
		respondWithError(w, http.StatusUnauthorized, "Invalid webhook secret")
		return
	}
	ok, err := h.hasher.Verify(secret, h.secretHash)
	if err != nil || !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid webhook secret")
		return
	}

	var req DeletedOrganizationsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if len(req.OrganizationIDs) == 0 {
		respondWithJSON(w, http.StatusOK, DeletedOrganizationsResponse{BaseResponse: BaseResponse{Ok: true}})
		return
	}

	purged, err := h.purger.PurgeOrganizations(r.Context(), req.OrganizationIDs)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to purge deleted organizations",
			"organizations", req.OrganizationIDs, "error", err, "requestID", chimw.GetReqID(r.Context()))
		respondWithError(w, http.StatusInternalServerError, "Failed to purge organizations")
		return
	}

	respondWithJSON(w, http.StatusOK, DeletedOrganizationsResponse{BaseResponse: BaseResponse{Ok: true}, SurveysDeleted: purged})
}
