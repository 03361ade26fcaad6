// internal/app/features/auditlog/list.go
package auditlog

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/profilecompletion/internal/app/store/audit"
	"github.com/dalemusser/profilecompletion/internal/app/system/timeouts"
	"github.com/dalemusser/profilecompletion/internal/app/system/viewdata"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const pageSize = 50

// ParseFilter reads the list filters from the query string. Dates are
// YYYY-MM-DD; the end date covers the whole day. Unparseable dates are
// ignored.
func ParseFilter(r *http.Request) (audit.QueryFilter, int) {
	page := 1
	if p, err := strconv.Atoi(query.Get(r, "page")); err == nil && p > 0 {
		page = p
	}

	filter := audit.QueryFilter{
		Category:  query.Get(r, "category"),
		EventType: query.Get(r, "event_type"),
		Limit:     pageSize,
		Offset:    int64((page - 1) * pageSize),
	}
	if t, err := time.Parse("2006-01-02", query.Get(r, "start_date")); err == nil {
		filter.StartTime = &t
	}
	if t, err := time.Parse("2006-01-02", query.Get(r, "end_date")); err == nil {
		endOfDay := t.Add(24*time.Hour - time.Second)
		filter.EndTime = &endOfDay
	}
	return filter, page
}

// ServeList handles GET /audit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	filter, page := ParseFilter(r)

	events, err := h.Audit.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "query audit events failed", err, "A database error occurred.", "/")
		return
	}
	total, err := h.Audit.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count audit events failed", err, "A database error occurred.", "/")
		return
	}

	names := h.resolveNames(ctx, events)

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			ID:        e.ID.Hex(),
			Timestamp: e.Timestamp,
			Category:  e.Category,
			EventType: e.EventType,
			IP:        e.IP,
			Success:   e.Success,
			Reason:    e.FailureReason,
			Details:   e.Details,
		}
		if e.ActorID != nil {
			item.ActorName = nameOr(names, *e.ActorID)
		}
		if e.UserID != nil {
			item.TargetName = nameOr(names, *e.UserID)
		}
		items = append(items, item)
	}

	totalPages := int((total + pageSize - 1) / pageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	prevPage := page - 1
	if prevPage < 1 {
		prevPage = 1
	}
	nextPage := page + 1
	if nextPage > totalPages {
		nextPage = totalPages
	}

	templates.Render(w, r, "audit_list", listData{
		BaseVM:     viewdata.NewBaseVM(r, "Audit log", "/"),
		Items:      items,
		Category:   filter.Category,
		EventType:  filter.EventType,
		StartDate:  query.Get(r, "start_date"),
		EndDate:    query.Get(r, "end_date"),
		Categories: allCategories(),
		EventTypes: eventTypesForCategory(filter.Category),
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		Shown:      len(items),
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		PrevPage:   prevPage,
		NextPage:   nextPage,
	})
}

// resolveNames batch-loads display names for every actor and subject in
// events. A lookup failure only costs the names.
func (h *Handler) resolveNames(ctx context.Context, events []audit.Event) map[primitive.ObjectID]string {
	seen := make(map[primitive.ObjectID]struct{})
	for _, e := range events {
		if e.ActorID != nil {
			seen[*e.ActorID] = struct{}{}
		}
		if e.UserID != nil {
			seen[*e.UserID] = struct{}{}
		}
	}
	names := make(map[primitive.ObjectID]string, len(seen))
	if len(seen) == 0 {
		return names
	}

	ids := make([]primitive.ObjectID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	users, err := h.Users.GetByIDs(ctx, ids)
	if err != nil {
		h.Log.Warn("failed to fetch user names for audit log", zap.Error(err))
		return names
	}
	for i := range users {
		names[users[i].ID] = displayName(&users[i])
	}
	return names
}

func displayName(u *models.User) string {
	if n := u.FullName(); n != "" {
		return n
	}
	if u.LoginID != nil {
		return *u.LoginID
	}
	return u.ID.Hex()
}

func nameOr(names map[primitive.ObjectID]string, id primitive.ObjectID) string {
	if n, ok := names[id]; ok {
		return n
	}
	return id.Hex()
}
