package editor

import (
	"errors"

	extctx "github.com/indexdata/crosslink/econtent/common"
)

var ErrNotFound = errors.New("object not found")

var ErrCannotAddNew = errors.New("no more objects can be added")

// ObjectEditor is the admin view of one kind of configuration object.
type ObjectEditor[T any] interface {
	ToolName() string
	PageTitle() string
	// Instructions is a link to the help page of the tool, may be empty
	Instructions() string
	// Permission is what a user needs to view or change the objects
	Permission() string
	ObjectStructure() ObjectStructure
	GetAllObjects(ctx extctx.ExtendedContext) ([]T, error)
	GetObject(ctx extctx.ExtendedContext, id string) (T, error)
	// SaveObject creates the object when it has no id yet
	SaveObject(ctx extctx.ExtendedContext, obj T) (T, error)
	DeleteObject(ctx extctx.ExtendedContext, id string) error
	CanAddNew(ctx extctx.ExtendedContext) (bool, error)
}
