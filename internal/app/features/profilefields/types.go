// internal/app/features/profilefields/types.go
package profilefields

import (
	"github.com/dalemusser/profilecompletion/internal/app/system/viewdata"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
)

// listItem is a single row in the catalog list.
type listItem struct {
	ID        string
	Shortname string
	Name      string
	DataType  string
	Required  bool
	Key       string // the value to pick on the settings page
}

type listData struct {
	viewdata.BaseVM
	Items []listItem
}

// newData is the view model for the "New profile field" page.
type newData struct {
	viewdata.BaseVM

	Shortname   string
	Name        string
	DataType    string
	Description string
	Required    bool
	DefaultData string
	Options     string // one per line
	MaxLength   string

	DataTypes []string
	Error     string
}

func newFormData(base viewdata.BaseVM) newData {
	return newData{BaseVM: base, DataType: models.FieldText, DataTypes: models.ProfileFieldTypes}
}
