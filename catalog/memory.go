package catalog

import (
	extctx "github.com/indexdata/crosslink/econtent/common"
)

// MemoryCatalog serves a fixed set of titles. The zero value knows no titles.
type MemoryCatalog struct {
	Records      map[string]Record
	WhileYouWait map[string][]WhileYouWaitTitle
}

func (c *MemoryCatalog) GetRecord(ctx extctx.ExtendedContext, axis360Id string) (Record, error) {
	r, ok := c.Records[axis360Id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (c *MemoryCatalog) GetWhileYouWait(ctx extctx.ExtendedContext, groupedWorkId string) ([]WhileYouWaitTitle, error) {
	return c.WhileYouWait[groupedWorkId], nil
}
