package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

type Kind string

const (
	KindOutOfStock   Kind = "out_of_stock"
	KindAddFailed    Kind = "add_failed"
	KindRemoveFailed Kind = "remove_failed"
	KindUpdateFailed Kind = "update_failed"
)

var messages = map[Kind]string{
	KindOutOfStock:   "Requested quantity is out of stock",
	KindAddFailed:    "Failed to add product",
	KindRemoveFailed: "Failed to remove product",
	KindUpdateFailed: "Failed to update product quantity",
}

var (
	ErrOutOfStock   = errors.New("requested amount exceeds stock")
	ErrAddFailed    = errors.New("add product failed")
	ErrRemoveFailed = errors.New("remove product failed")
	ErrUpdateFailed = errors.New("update amount failed")

	// ErrNotInCart is wrapped into remove and update failures when the
	// product has no line item.
	ErrNotInCart = errors.New("product not in cart")
)

var kindErrors = map[Kind]error{
	KindOutOfStock:   ErrOutOfStock,
	KindAddFailed:    ErrAddFailed,
	KindRemoveFailed: ErrRemoveFailed,
	KindUpdateFailed: ErrUpdateFailed,
}

// Message returns the user-facing text for a notification kind.
func Message(k Kind) string { return messages[k] }

// KindOf reports which notification a rejected operation produced.
func KindOf(err error) (Kind, bool) {
	for k, e := range kindErrors {
		if errors.Is(err, e) {
			return k, true
		}
	}
	return "", false
}

type Notification struct {
	Kind      Kind   `json:"kind"`
	ProductID int64  `json:"product_id"`
	Message   string `json:"message"`
}

// Notifier receives the human-readable outcome of rejected operations.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Notifiers fans a notification out to every sink in order.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, n Notification) {
	for _, x := range ns {
		if x != nil {
			x.Notify(ctx, n)
		}
	}
}

func LogNotifier(log *zap.Logger) Notifier {
	return NotifierFunc(func(_ context.Context, n Notification) {
		log.Info("cart notification",
			zap.String("kind", string(n.Kind)),
			zap.Int64("product_id", n.ProductID),
			zap.String("message", n.Message),
		)
	})
}

// WriterNotifier prints one line per notification, toast style.
func WriterNotifier(w io.Writer) Notifier {
	var mu sync.Mutex
	return NotifierFunc(func(_ context.Context, n Notification) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = fmt.Fprintf(w, "! %s\n", n.Message)
	})
}

var nopNotifier = NotifierFunc(func(context.Context, Notification) {})
