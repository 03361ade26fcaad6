// internal/app/features/profilefields/list.go
package profilefields

import (
	"context"
	"net/http"

	"github.com/dalemusser/profilecompletion/internal/app/system/fieldkeys"
	"github.com/dalemusser/profilecompletion/internal/app/system/timeouts"
	"github.com/dalemusser/profilecompletion/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// ServeList shows every catalog field in sort order.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	fields, err := h.Fields.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list profile fields failed", err, "Failed to load profile fields.", "/")
		return
	}

	data := listData{BaseVM: viewdata.NewBaseVM(r, "Profile fields", "/")}
	for _, f := range fields {
		data.Items = append(data.Items, listItem{
			ID:        f.ID.Hex(),
			Shortname: f.Shortname,
			Name:      f.Name,
			DataType:  f.DataType,
			Required:  f.Required,
			Key:       fieldkeys.CustomKey(f.Shortname).String(),
		})
	}
	templates.Render(w, r, "profilefields_list", data)
}
