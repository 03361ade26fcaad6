// internal/app/features/profilefields/new.go
package profilefields

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	profilefieldstore "github.com/dalemusser/profilecompletion/internal/app/store/profilefields"
	"github.com/dalemusser/profilecompletion/internal/app/system/authz"
	"github.com/dalemusser/profilecompletion/internal/app/system/htmlsanitize"
	"github.com/dalemusser/profilecompletion/internal/app/system/inputval"
	"github.com/dalemusser/profilecompletion/internal/app/system/timeouts"
	"github.com/dalemusser/profilecompletion/internal/app/system/viewdata"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// createFieldInput defines validation rules for a new catalog field.
type createFieldInput struct {
	Shortname   string `validate:"required,max=100,shortname" label:"Short name"`
	Name        string `validate:"required,max=255" label:"Name"`
	DataType    string `validate:"required,oneof=text textarea checkbox menu datetime" label:"Data type"`
	Description string `validate:"max=1000" label:"Description"`
	MaxLength   int    `validate:"min=0,max=1333" label:"Maximum length"`
}

// ServeNew renders the "New profile field" form.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	data := newFormData(viewdata.NewBaseVM(r, "New profile field", BasePath))
	templates.Render(w, r, "profilefields_new", data)
}

// HandleCreate processes the "New profile field" form.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", BasePath)
		return
	}

	data := newFormData(viewdata.NewBaseVM(r, "New profile field", BasePath))
	data.Shortname = strings.ToLower(strings.TrimSpace(r.FormValue("shortname")))
	data.Name = htmlsanitize.StripTags(r.FormValue("name"))
	data.DataType = strings.TrimSpace(r.FormValue("datatype"))
	data.Description = htmlsanitize.Sanitize(strings.TrimSpace(r.FormValue("description")))
	data.Required = r.FormValue("required") != ""
	data.DefaultData = strings.TrimSpace(r.FormValue("default_data"))
	data.Options = r.FormValue("options")
	data.MaxLength = strings.TrimSpace(r.FormValue("max_length"))

	renderWithError := func(status int, msg string) {
		data.Error = msg
		w.WriteHeader(status)
		templates.Render(w, r, "profilefields_new", data)
	}

	maxLen := 0
	if data.MaxLength != "" {
		n, err := strconv.Atoi(data.MaxLength)
		if err != nil {
			renderWithError(http.StatusUnprocessableEntity, "Maximum length must be a number.")
			return
		}
		maxLen = n
	}

	input := createFieldInput{
		Shortname:   data.Shortname,
		Name:        data.Name,
		DataType:    data.DataType,
		Description: data.Description,
		MaxLength:   maxLen,
	}
	if result := inputval.Validate(input); result.HasErrors() {
		renderWithError(http.StatusUnprocessableEntity, result.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	f, err := h.Fields.Create(ctx, models.ProfileField{
		Shortname:   data.Shortname,
		Name:        data.Name,
		DataType:    data.DataType,
		Description: data.Description,
		Required:    data.Required,
		DefaultData: data.DefaultData,
		Options:     strings.Split(data.Options, "\n"),
		MaxLength:   maxLen,
	})
	switch {
	case errors.Is(err, profilefieldstore.ErrDuplicateShortname):
		renderWithError(http.StatusConflict, "A profile field with that short name already exists.")
		return
	case errors.Is(err, profilefieldstore.ErrMenuNeedsOptions):
		renderWithError(http.StatusUnprocessableEntity, "Menu fields need at least one option, one per line.")
		return
	case errors.Is(err, profilefieldstore.ErrBadShortname),
		errors.Is(err, profilefieldstore.ErrBadDataType),
		errors.Is(err, profilefieldstore.ErrNameRequired):
		renderWithError(http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		h.Log.Error("create profile field failed", zap.Error(err), zap.String("shortname", data.Shortname))
		renderWithError(http.StatusInternalServerError, "Database error while creating the profile field.")
		return
	}

	h.Log.Info("profile field created",
		zap.String("shortname", f.Shortname),
		zap.String("datatype", f.DataType))
	_, _, actor, _ := authz.UserCtx(r)
	h.AuditLog.ProfileFieldCreated(ctx, r, actor, f.ID, f.Shortname, f.DataType)
	http.Redirect(w, r, BasePath, http.StatusSeeOther)
}
