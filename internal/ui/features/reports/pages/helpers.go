package pages

import (
	"net/url"

	"github.com/leapstack-labs/datareport/internal/report"
	"github.com/leapstack-labs/datareport/internal/store"
)

// CatalogListID is the element patched when the catalog changes.
const CatalogListID = "catalog"

func scriptSrc(src string) string {
	if src == "" {
		return report.DefaultDatastarSrc
	}
	return src
}

func recordTitle(rec store.Record) string {
	if rec.Title == "" {
		return rec.ID
	}
	return rec.Title
}

func createdAt(rec store.Record) string {
	return rec.CreatedAt.Local().Format("2006-01-02 15:04")
}

func deleteAction(id string) string {
	return "@delete('/reports/" + url.PathEscape(id) + "')"
}
