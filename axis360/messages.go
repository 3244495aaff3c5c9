package axis360

// Translator localizes user facing messages. Keys are stable; defaultText is the English
// message returned when no translation exists.
type Translator interface {
	Translate(key, defaultText string) string
}

type DefaultTranslator struct{}

func (DefaultTranslator) Translate(key, defaultText string) string {
	return defaultText
}

type message struct {
	key  string
	text string
}

var (
	msgUnknownError    = message{"unknown_error", "Unknown error"}
	msgFineLimit       = message{"axis360_outstanding_fine_limit", "Sorry, your account has too many outstanding fines to use Axis 360."}
	msgCheckoutSuccess = message{"axis360_checkout_success", "Your title was checked out successfully. You can read or listen to the title from your account."}
	msgRenewSuccess    = message{"axis360_renew_success", "Your title was renewed successfully."}
	msgCheckoutBad     = message{"axis360_checkout_bad_request", "Bad Request checking out title."}
	msgReturnSuccess   = message{"axis360_return_success", "Your title was returned successfully."}
	msgReturnBad       = message{"axis360_return_bad_request", "Bad Request returning checkout."}
	msgCheckoutMissing = message{"axis360_checkout_not_found", "Checkout was not found."}
	msgHoldSuccess     = message{"axis360_hold_success", "Your hold was placed successfully."}
	msgHoldBad         = message{"axis360_hold_bad_request", "Bad Request placing hold."}
	msgCancelSuccess   = message{"axis360_cancel_hold_success", "Your hold was cancelled successfully."}
	msgCancelBad       = message{"axis360_cancel_hold_bad_request", "Bad Request cancelling hold."}
	msgItemMissing     = message{"axis360_item_not_found", "Item was not found."}
	msgUnauthenticated = message{"axis360_unable_to_authenticate", "Unable to authenticate."}
	msgNoRenewAll      = message{"axis360_renew_all_unsupported", "Renew all is not supported"}
)

const (
	UnknownTitle  = "Unknown Axis 360 Title"
	UnknownFormat = "Unknown - Axis 360"
	Unknown       = "Unknown"
)
