package http

import (
	"encoding/json"
	"net/http"

	"github.com/nordstack/tokend/internal/token/service"
	"github.com/nordstack/tokend/internal/token/store"
	"github.com/nordstack/tokend/pkg/httpx"
	"github.com/nordstack/tokend/pkg/tokensdk"
)

// ListHandler serves POST /v1/tokens/list, the ledger query endpoint.
type ListHandler struct {
	Engine *service.Engine
}

// ServeHTTP godoc
//
//	@Summary		Query the metadata ledger
//	@Description	Returns ledger records matching the filter, newest first, each decorated with
//	@Description	its derived status: active, superseded, revoked or expired.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tokensdk.ListRequest	true	"Filter and pagination"
//	@Success		200		{object}	tokensdk.ListResponse	"Matching ledger records"
//	@Failure		400		{object}	tokensdk.ErrorResponse	"invalid_request"
//	@Router			/v1/tokens/list [post].
func (h *ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tokensdk.ListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		tokensdk.ErrInvalidRequest.WriteError(w)
		return
	}

	views, err := h.Engine.List(ctx, store.ListFilter{
		Subject:         req.Subject,
		OriginalTokenID: req.OriginalTokenID,
		IssuedAfter:     req.IssuedAfter,
		IssuedBefore:    req.IssuedBefore,
		Limit:           req.Limit,
		Offset:          req.Offset,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	out := tokensdk.ListResponse{Records: make([]tokensdk.TokenRecord, 0, len(views))}
	for _, v := range views {
		rec := tokensdk.TokenRecord{
			RecordID:        v.RecordID.String(),
			TokenID:         v.TokenID,
			OriginalTokenID: v.OriginalTokenID,
			ClaimKeys:       v.ClaimKeys,
			Subject:         v.Subject,
			Issuer:          v.Issuer,
			Audience:        v.Audience,
			JWTName:         v.JWTName,
			IssuedAt:        v.IssuedAt,
			ExpiresAt:       v.ExpiresAt,
			CreatedAt:       v.CreatedAt,
			Status:          string(v.Status),
		}
		if v.SupersedesRecordID != nil {
			rec.SupersedesRecordID = v.SupersedesRecordID.String()
		}
		out.Records = append(out.Records, rec)
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}
