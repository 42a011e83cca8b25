package controller

import (
	"strings"

	"goldcast/internal/models"
)

// ExportLinker builds export hrefs. An empty base keeps them relative so
// this service can proxy them.
type ExportLinker struct {
	Base string
}

// Links returns the spreadsheet and CSV targets for r
func (l ExportLinker) Links(r models.DateRange) ExportLinks {
	base := strings.TrimRight(l.Base, "/")
	q := "?" + r.Query().Encode()
	return ExportLinks{
		Excel: base + "/export-excel" + q,
		CSV:   base + "/export-csv" + q,
	}
}
