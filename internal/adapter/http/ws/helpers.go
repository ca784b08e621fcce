package wshandler

import (
	ws "github.com/calinga/care-booking-system/pkg/wsHub"
)

func errorResponse(conn *ws.Conn, message string) error {
	return conn.Send(map[string]any{
		"type":  "error",
		"error": message,
	})
}

func failedValidationResponse(conn *ws.Conn, errs map[string]string) error {
	return conn.Send(map[string]any{
		"type":  "error",
		"error": errs,
	})
}
