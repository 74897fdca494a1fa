package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"RocketShoes/internal/cart"
)

// Exit codes for cartctl.
const (
	ExitSuccess      = 0
	ExitRejected     = 1 // the cart refused the operation
	ExitCommandError = 2 // bad arguments, unreachable storage
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Plain errors map to
// ExitCommandError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// Response is the JSON envelope printed with --format json.
type Response struct {
	Status string         `json:"status"` // "ok" or "error"
	Cart   *CartView      `json:"cart,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

type ResponseError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type CartView struct {
	Items []cart.LineItem `json:"items"`
	Units int             `json:"units"`
	Total float64         `json:"total"`
}

func newCartView(items []cart.LineItem) *CartView {
	v := &CartView{Items: items}
	for _, it := range items {
		v.Units += it.Amount
		v.Total += price(it) * float64(it.Amount)
	}
	return v
}

// price reads the product's price field; products without one count as 0.
func price(it cart.LineItem) float64 {
	p, err := strconv.ParseFloat(it.Field("price"), 64)
	if err != nil {
		return 0
	}
	return p
}

type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func (f *OutputFormatter) Cart(items []cart.LineItem) error {
	view := newCartView(items)
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Cart: view})
	}

	if len(view.Items) == 0 {
		_, err := fmt.Fprintln(f.Writer, "cart is empty")
		return err
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAMOUNT\tTITLE\tPRICE\tSUBTOTAL")
	for _, it := range view.Items {
		p := price(it)
		fmt.Fprintf(tw, "%d\t%d\t%s\t%.2f\t%.2f\n", it.ProductID, it.Amount, it.Field("title"), p, p*float64(it.Amount))
	}
	fmt.Fprintf(tw, "\t%d\t\t\t%.2f\n", view.Units, view.Total)
	return tw.Flush()
}

// Rejected reports a refused operation. Text mode prints nothing here: the
// notification already went to stderr.
func (f *OutputFormatter) Rejected(kind cart.Kind) error {
	if f.Format != "json" {
		return nil
	}
	return json.NewEncoder(f.Writer).Encode(Response{
		Status: "error",
		Error:  &ResponseError{Kind: string(kind), Message: cart.Message(kind)},
	})
}
