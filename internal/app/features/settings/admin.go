// internal/app/features/settings/admin.go
package settings

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/profilecompletion/internal/app/system/authz"
	"github.com/dalemusser/profilecompletion/internal/app/system/completion"
	"github.com/dalemusser/profilecompletion/internal/app/system/fieldkeys"
	"github.com/dalemusser/profilecompletion/internal/app/system/timeouts"
	"github.com/dalemusser/profilecompletion/internal/app/system/viewdata"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Path is where the settings page is mounted.
const Path = "/settings/profile-completion"

// Setting labels.
const (
	EnabledLabel     = "Enable profile completion prompt"
	EnabledHelp      = "Show a post-login prompt when configured profile fields are missing."
	FieldKeysLabel   = "Fields to enforce"
	FieldKeysHelp    = "Choose the core and custom profile fields that must be completed."
	missingFieldText = "The custom profile field %q does not exist anymore and was ignored."
)

// FieldOption is one choice in the "fields to enforce" list.
type FieldOption struct {
	Value    string
	Label    string
	Selected bool
}

type settingsVM struct {
	viewdata.BaseVM
	Path           string
	EnabledLabel   string
	EnabledHelp    string
	FieldKeysLabel string
	FieldKeysHelp  string

	Enabled       bool
	Options       []FieldOption
	Warnings      []string
	UpdatedAt     *time.Time
	UpdatedByName string
	Saved         bool
	Error         string
}

// CoreOptionLabel is the list label for a built-in field.
func CoreOptionLabel(name string) string {
	return "Core: " + fieldkeys.CoreLabel(name)
}

// CustomOptionLabel is the list label for a catalog field.
func CustomOptionLabel(f models.ProfileField) string {
	return fmt.Sprintf("Custom: %s (%s)", f.Name, f.Shortname)
}

// BuildOptions lists every built-in field followed by every catalog field,
// marking the selected keys. Selected custom keys that are not in the
// catalog come back as warnings.
func BuildOptions(catalog []models.ProfileField, selected []fieldkeys.Key) ([]FieldOption, []string) {
	sel := make(map[string]bool, len(selected))
	for _, k := range selected {
		sel[k.String()] = true
	}

	opts := make([]FieldOption, 0, len(fieldkeys.CoreFields)+len(catalog))
	for _, name := range fieldkeys.CoreFields {
		k := fieldkeys.CoreKey(name).String()
		opts = append(opts, FieldOption{Value: k, Label: CoreOptionLabel(name), Selected: sel[k]})
	}
	known := make(map[string]bool, len(catalog))
	for _, f := range catalog {
		k := fieldkeys.CustomKey(f.Shortname).String()
		known[f.Shortname] = true
		opts = append(opts, FieldOption{Value: k, Label: CustomOptionLabel(f), Selected: sel[k]})
	}

	var warnings []string
	for _, k := range selected {
		if !k.IsCore() && !known[k.Name] {
			warnings = append(warnings, fmt.Sprintf(missingFieldText, k.Name))
		}
	}
	return opts, warnings
}

// ServeSettings displays the settings form.
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	s, err := h.Settings.Get(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load settings failed", err, "Failed to load settings.", "/")
		return
	}
	catalog, err := h.Fields.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list profile fields failed", err, "Failed to load settings.", "/")
		return
	}

	opts, warnings := BuildOptions(catalog, completion.ConfiguredKeys(s))
	vm := h.newVM(r)
	vm.Enabled = s.Enabled
	vm.Options = opts
	vm.Warnings = warnings
	vm.UpdatedAt = s.UpdatedAt
	vm.UpdatedByName = s.UpdatedByName
	vm.Saved = query.Get(r, "saved") == "1"

	h.render(w, r, vm)
}

// HandleSettings processes the settings form submission.
func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", Path)
		return
	}

	enabled := r.PostForm.Get("enabled") != ""
	submitted := r.PostForm["fieldkeys"]

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	catalog, err := h.Fields.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list profile fields failed", err, "Failed to save settings.", Path)
		return
	}
	known := make(map[string]bool, len(catalog))
	for _, f := range catalog {
		known[f.Shortname] = true
	}

	keys := fieldkeys.ResolveList(submitted)
	for _, k := range keys {
		if !k.IsCore() && !known[k.Name] {
			h.renderWithError(w, r, enabled, keys, catalog, fmt.Sprintf("Unknown profile field %q.", k.Name))
			return
		}
	}
	if len(keys) != countNonBlank(submitted) {
		h.renderWithError(w, r, enabled, keys, catalog, "Some selected fields are not valid. Please choose from the list.")
		return
	}

	_, uname, uid, _ := authz.UserCtx(r)
	if err := h.Settings.Save(ctx, enabled, fieldkeys.Strings(keys), &uid, uname); err != nil {
		h.Log.Error("failed to save settings", zap.Error(err))
		h.renderWithError(w, r, enabled, keys, catalog, "Failed to save settings.")
		return
	}

	h.Log.Info("profile completion settings saved",
		zap.Bool("enabled", enabled),
		zap.Strings("fieldkeys", fieldkeys.Strings(keys)),
		zap.String("by", uid.Hex()))
	h.AuditLog.SettingsUpdated(ctx, r, uid, enabled, fieldkeys.Strings(keys))

	http.Redirect(w, r, Path+"?saved=1", http.StatusSeeOther)
}

// countNonBlank counts distinct submitted keys the way ResolveList sees
// them: trimmed, blanks dropped.
func countNonBlank(items []string) int {
	seen := map[string]bool{}
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			seen[s] = true
		}
	}
	return len(seen)
}

func (h *Handler) newVM(r *http.Request) settingsVM {
	return settingsVM{
		BaseVM:         viewdata.NewBaseVM(r, "Profile completion", "/"),
		Path:           Path,
		EnabledLabel:   EnabledLabel,
		EnabledHelp:    EnabledHelp,
		FieldKeysLabel: FieldKeysLabel,
		FieldKeysHelp:  FieldKeysHelp,
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, vm settingsVM) {
	templates.Render(w, r, "settings_profilecompletion", vm)
}

func (h *Handler) renderWithError(w http.ResponseWriter, r *http.Request, enabled bool, keys []fieldkeys.Key, catalog []models.ProfileField, errMsg string) {
	opts, warnings := BuildOptions(catalog, keys)
	vm := h.newVM(r)
	vm.Enabled = enabled
	vm.Options = opts
	vm.Warnings = warnings
	vm.Error = errMsg

	w.WriteHeader(http.StatusUnprocessableEntity)
	h.render(w, r, vm)
}
