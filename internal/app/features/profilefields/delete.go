// internal/app/features/profilefields/delete.go
package profilefields

import (
	"context"
	"errors"
	"net/http"

	profilefieldstore "github.com/dalemusser/profilecompletion/internal/app/store/profilefields"
	"github.com/dalemusser/profilecompletion/internal/app/system/authz"
	"github.com/dalemusser/profilecompletion/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleDelete removes a catalog field and all stored values for it.
// Settings that still name the field keep it; the evaluator skips it and
// the settings page warns about it.
//
// Route: POST /profile-fields/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	idHex := chi.URLParam(r, "id")
	oid, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		http.Error(w, "bad profile field id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err = h.Fields.Delete(ctx, oid)
	switch {
	case errors.Is(err, profilefieldstore.ErrNotFound):
		h.Log.Info("profile field delete: no document found (idempotent)", zap.String("field_id", idHex))
	case err != nil:
		h.Log.Error("delete profile field failed", zap.Error(err), zap.String("field_id", idHex))
		http.Error(w, "delete error", http.StatusInternalServerError)
		return
	default:
		_, _, actor, _ := authz.UserCtx(r)
		h.AuditLog.ProfileFieldDeleted(ctx, r, actor, oid)
	}

	http.Redirect(w, r, BasePath, http.StatusSeeOther)
}
