package catalog

import (
	"errors"

	extctx "github.com/indexdata/crosslink/econtent/common"
)

var ErrNotFound = errors.New("title not found in catalog")

// Record is the local mirror of a vendor title.
type Record struct {
	Axis360ID     string  `json:"axis360Id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	CoverURL      string  `json:"coverUrl"`
	Rating        float64 `json:"rating"`
	GroupedWorkID string  `json:"groupedWorkId"`
	Format        string  `json:"format"`
	LinkURL       string  `json:"linkUrl"`
}

// WhileYouWaitTitle is a title suggested while a hold is queued.
type WhileYouWaitTitle struct {
	GroupedWorkID string `json:"groupedWorkId"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	CoverURL      string `json:"coverUrl"`
}

type Catalog interface {
	// GetRecord returns ErrNotFound when the title is not mirrored locally
	GetRecord(ctx extctx.ExtendedContext, axis360Id string) (Record, error)
	GetWhileYouWait(ctx extctx.ExtendedContext, groupedWorkId string) ([]WhileYouWaitTitle, error)
}
