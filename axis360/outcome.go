package axis360

// outcome is what a vendor status code means for one operation.
type outcome struct {
	success bool
	msg     message
	// append the request body to the message in debug mode
	showRequest bool
}

type outcomeTable map[int]outcome

// checkoutOutcomes covers failures only; a 2xx with a result body is the success case.
var checkoutOutcomes = outcomeTable{
	400: {msg: msgCheckoutBad, showRequest: true},
	403: {msg: msgUnauthenticated},
	404: {msg: msgItemMissing},
}

var returnOutcomes = outcomeTable{
	200: {success: true, msg: msgReturnSuccess},
	400: {msg: msgReturnBad, showRequest: true},
	403: {msg: msgUnauthenticated},
	404: {msg: msgCheckoutMissing},
}

var placeHoldOutcomes = outcomeTable{
	201: {success: true, msg: msgHoldSuccess},
	405: {msg: msgHoldBad, showRequest: true},
	403: {msg: msgUnauthenticated},
	404: {msg: msgItemMissing},
}

var cancelHoldOutcomes = outcomeTable{
	200: {success: true, msg: msgCancelSuccess},
	400: {msg: msgCancelBad, showRequest: true},
	403: {msg: msgUnauthenticated},
	404: {msg: msgItemMissing},
}

// classify maps a response through table. Statuses without an entry fail with the
// vendor's error text when it sent one, otherwise with the unknown error message.
func (c *Client) classify(table outcomeTable, statusCode int, responseBody, requestBody []byte) OperationResult {
	o, ok := table[statusCode]
	if !ok {
		if msg, found := vendorErrorMessage(responseBody); found && msg != "" {
			return OperationResult{Message: msg}
		}
		return OperationResult{Message: c.translate(msgUnknownError)}
	}
	text := c.translate(o.msg)
	if o.showRequest && c.f.Config.Debug {
		text += "\r\n" + string(requestBody)
	}
	return OperationResult{Success: o.success, Message: text}
}
