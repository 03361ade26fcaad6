package home

import (
	"net/http"

	loginstore "github.com/dalemusser/profilecompletion/internal/app/store/logins"
	"github.com/dalemusser/profilecompletion/internal/app/system/authz"
	"github.com/dalemusser/profilecompletion/internal/app/system/timeouts"
	"github.com/dalemusser/profilecompletion/internal/app/system/viewdata"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// recentLimit is how many sign-ins the home page lists.
const recentLimit = 5

// Handler holds dependencies needed to serve the home page.
type Handler struct {
	Logins *loginstore.Store
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Logins: loginstore.New(db),
		Log:    logger,
	}
}

// LoginRow is one line of the recent sign-ins table.
type LoginRow struct {
	When     string
	Method   string
	IP       string
	Prompted bool
}

type homeData struct {
	viewdata.BaseVM
	RecentLogins []LoginRow
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "home", homeData{
		BaseVM:       viewdata.NewBaseVM(r, "Welcome", "/"),
		RecentLogins: h.RecentLogins(r),
	})
}

// RecentLogins lists the signed-in user's latest sign-ins, newest first.
// Signed-out requests and lookup failures yield nil.
func (h *Handler) RecentLogins(r *http.Request) []LoginRow {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		return nil
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "recent sign-ins")
	defer cancel()

	recs, err := h.Logins.Recent(ctx, uid, recentLimit)
	if err != nil {
		h.Log.Warn("home: recent sign-ins failed", zap.Error(err), zap.String("user_id", uid.Hex()))
		return nil
	}

	rows := make([]LoginRow, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, LoginRow{
			When:     rec.CreatedAt.Format("2006-01-02 15:04 MST"),
			Method:   models.AuthMethodLabel(rec.AuthMethod),
			IP:       rec.IP,
			Prompted: rec.PromptPending,
		})
	}
	return rows
}
