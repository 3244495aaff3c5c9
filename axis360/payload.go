package axis360

import (
	"encoding/xml"
	"strconv"
	"strings"
)

type itemRequest struct {
	XMLName  xml.Name
	ItemId   string `xml:"ItemId"`
	PatronId string `xml:"PatronId"`
}

func itemRequestBody(name, itemId, patronId string) []byte {
	buf, err := xml.Marshal(itemRequest{XMLName: xml.Name{Local: name}, ItemId: itemId, PatronId: patronId})
	if err != nil {
		// only string fields, cannot fail
		panic(err)
	}
	return buf
}

type circulationItem struct {
	ItemId            string `xml:"ItemId"`
	EventEndDateInUTC string `xml:"EventEndDateInUTC"`
	Position          string `xml:"Position"`
}

func (i circulationItem) position() int {
	n, err := strconv.Atoi(strings.TrimSpace(i.Position))
	if err != nil {
		return 0
	}
	return n
}

type circulationPayload struct {
	Checkouts []circulationItem `xml:"Checkouts>Item"`
	Holds     []circulationItem `xml:"Holds>Item"`
	Reserves  []circulationItem `xml:"Reserves>Item"`
}

func (c *circulationPayload) summary() AccountSummary {
	return AccountSummary{
		NumCheckedOut:       len(c.Checkouts),
		NumAvailableHolds:   len(c.Reserves),
		NumUnavailableHolds: len(c.Holds),
	}
}

type errorNode struct {
	Message string `xml:"Message"`
}

type errorPayload struct {
	Error *errorNode `xml:"Error"`
}

// vendorErrorMessage reports whether body carries an Error node, and its message.
func vendorErrorMessage(body []byte) (string, bool) {
	var p errorPayload
	if err := xml.Unmarshal(body, &p); err != nil || p.Error == nil {
		return "", false
	}
	return strings.TrimSpace(p.Error.Message), true
}

type itemStatusPayload struct {
	Status string `xml:"DocumentStatus>status"`
}

type authenticationPayload struct {
	Result string `xml:"result"`
}

const authSuccess = "SUCCESS"
