package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Kind classifies an application error independently of its message.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindUnknownGateway  Kind = "unknown_gateway"
	KindProductNotFound Kind = "product_not_found"
	KindItemNotFound    Kind = "item_not_found"
	KindGateway         Kind = "gateway"
	KindStore           Kind = "store"
	KindConflict        Kind = "conflict"
	KindUnauthorized    Kind = "unauthorized"
	KindInternal        Kind = "internal"
)

// Error represents an application error
type Error struct {
	Code      int      `json:"code"`
	Kind      Kind     `json:"kind"`
	Message   string   `json:"message"`
	Gateway   string   `json:"gateway,omitempty"`
	Available []string `json:"available,omitempty"`
	Err       error    `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so sentinels below
// can be matched with errors.Is regardless of message or wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind == "" {
		return false
	}
	return t.Kind == e.Kind
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error
func New(code int, kind Kind, message string, err error) *Error {
	return &Error{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Sentinels for errors.Is matching.
var (
	ErrValidation      = New(http.StatusBadRequest, KindValidation, "Validation error", nil)
	ErrUnknownGateway  = New(http.StatusBadRequest, KindUnknownGateway, "Unknown payment gateway", nil)
	ErrProductNotFound = New(http.StatusNotFound, KindProductNotFound, "Product not found", nil)
	ErrItemNotFound    = New(http.StatusNotFound, KindItemNotFound, "Item not found in cart", nil)
	ErrGateway         = New(http.StatusBadGateway, KindGateway, "Payment provider error", nil)
	ErrStore           = New(http.StatusInternalServerError, KindStore, "Storage error", nil)
	ErrConflict        = New(http.StatusConflict, KindConflict, "Request already in progress", nil)
	ErrUnauthorized    = New(http.StatusUnauthorized, KindUnauthorized, "Unauthorized", nil)
	ErrInternalServer  = New(http.StatusInternalServerError, KindInternal, "Internal server error", nil)
)

// Validation reports caller-fixable malformed input.
func Validation(format string, args ...any) *Error {
	return New(http.StatusBadRequest, KindValidation, fmt.Sprintf(format, args...), nil)
}

// UnknownGateway reports a gateway name that is not registered. The message and
// the Available field both carry the currently registered names.
func UnknownGateway(name string, available []string) *Error {
	names := append([]string(nil), available...)
	msg := fmt.Sprintf("payment gateway %q is not supported; available: %s", name, strings.Join(names, ", "))
	e := New(http.StatusBadRequest, KindUnknownGateway, msg, nil)
	e.Available = names
	return e
}

func ProductNotFound(productID int) *Error {
	return New(http.StatusNotFound, KindProductNotFound, fmt.Sprintf("product %d not found", productID), nil)
}

func ItemNotFound(itemID int) *Error {
	return New(http.StatusNotFound, KindItemNotFound, fmt.Sprintf("item %d not found in cart", itemID), nil)
}

// Gateway wraps a provider failure. Error() keeps the provider text for logs;
// the serialized form only names the gateway and the operation.
func Gateway(gateway, op string, err error) *Error {
	e := New(http.StatusBadGateway, KindGateway, fmt.Sprintf("payment provider %s failed to %s", gateway, op), err)
	e.Gateway = gateway
	return e
}

// Store wraps a document store read or write failure.
func Store(op string, err error) *Error {
	return New(http.StatusInternalServerError, KindStore, fmt.Sprintf("storage failed to %s", op), err)
}

// Conflict reports a request that collides with one still being processed.
func Conflict(format string, args ...any) *Error {
	return New(http.StatusConflict, KindConflict, fmt.Sprintf(format, args...), nil)
}

// From returns err as an *Error, classifying anything unknown as internal.
// A fresh value is returned so the shared sentinel is never mutated.
func From(err error) *Error {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return New(http.StatusInternalServerError, KindInternal, ErrInternalServer.Message, err)
}

// Error middleware for Gin
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Check if there are any errors
		if len(c.Errors) > 0 && !c.Writer.Written() {
			appErr := From(c.Errors.Last().Err)
			c.JSON(appErr.Code, appErr)
			c.Abort()
		}
	}
}
