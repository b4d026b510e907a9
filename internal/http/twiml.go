package http

import (
	"encoding/xml"
	"net/http"
)

// twiML is the minimal response envelope the SMS transport consumes:
// one Message element whose text goes back to the sender.
type twiML struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// writeTwiML answers 200 text/xml no matter what happened upstream.
// Errors ride the same envelope as confirmations, so the transport
// always has something to deliver.
func writeTwiML(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	body, err := xml.Marshal(twiML{Message: text})
	if err != nil {
		// Unreachable for a string-only struct; keep the envelope
		// well-formed anyway.
		_, _ = w.Write([]byte("<Response><Message>Something went wrong.</Message></Response>"))
		return
	}
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(body)
}
