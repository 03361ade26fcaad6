// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/profilecompletion/internal/app/store/audit"
	"github.com/dalemusser/profilecompletion/internal/app/system/viewdata"
)

// listItem is one audit event row.
type listItem struct {
	ID         string
	Timestamp  time.Time
	Category   string
	EventType  string
	ActorName  string // resolved from ActorID
	TargetName string // resolved from UserID
	IP         string
	Success    bool
	Reason     string
	Details    map[string]string
}

type listData struct {
	viewdata.BaseVM

	Items []listItem

	// Filters
	Category  string
	EventType string
	StartDate string
	EndDate   string

	Categories []categoryOption
	EventTypes []string

	// Pagination
	Page       int
	TotalPages int
	Total      int64
	Shown      int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

type categoryOption struct {
	Value string
	Label string
}

func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication"},
		{Value: audit.CategoryAdmin, Label: "Administration"},
	}
}

// eventTypesForCategory returns the event types for a category, or every
// type when category is empty.
func eventTypesForCategory(category string) []string {
	switch category {
	case audit.CategoryAuth:
		return audit.AuthEvents
	case audit.CategoryAdmin:
		return audit.AdminEvents
	case "":
		all := make([]string, 0, len(audit.AuthEvents)+len(audit.AdminEvents))
		all = append(all, audit.AuthEvents...)
		return append(all, audit.AdminEvents...)
	default:
		return nil
	}
}
