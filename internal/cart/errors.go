package cart

import "github.com/pkg/errors"

// User-facing notification messages.
const (
	MsgOutOfStock   = "requested quantity unavailable"
	MsgAddFailed    = "error adding product"
	MsgRemoveFailed = "error removing product"
	MsgUpdateFailed = "error changing product quantity"
)

var (
	ErrOutOfStock      = errors.New("requested quantity exceeds stock")
	ErrProductNotFound = errors.New("product not in cart")
	ErrCorruptSnapshot = errors.New("corrupt cart snapshot")

	// ErrCatalogLookup aborts an add without telling the user.
	ErrCatalogLookup = errors.New("catalog lookup failed")

	errIgnored = errors.New("operation ignored")
)
