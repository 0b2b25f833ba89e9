package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ZaryabAli-09/ecommerce-backend/internal/orders"
)

// Every response uses the same envelope; data is null on errors.
type envelope struct {
	Status  int    `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

func writeData(w http.ResponseWriter, code int, data any, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(envelope{Status: code, Data: data, Message: msg})
}

var kindStatus = map[orders.ErrKind]int{
	orders.KindValidation:          http.StatusBadRequest,
	orders.KindNotFound:            http.StatusNotFound,
	orders.KindUnauthorized:        http.StatusUnauthorized,
	orders.KindForbidden:           http.StatusForbidden,
	orders.KindInsufficientStock:   http.StatusBadRequest,
	orders.KindPaymentNotCompleted: http.StatusBadRequest,
	orders.KindConflict:            http.StatusConflict,
	orders.KindInternal:            http.StatusInternalServerError,
}

// writeError maps known error kinds onto their status code; anything else is
// logged and comes back as an opaque 500.
func writeError(w http.ResponseWriter, err error) {
	var de *orders.Error
	if errors.As(err, &de) {
		code, ok := kindStatus[de.Kind]
		if !ok {
			code = http.StatusInternalServerError
		}
		if de.Kind == orders.KindInternal {
			log.Printf("http: internal: %s", de.Message)
		}
		writeData(w, code, nil, de.Message)
		return
	}
	log.Printf("http: unexpected error: %v", err)
	writeData(w, http.StatusInternalServerError, nil, "internal server error")
}
