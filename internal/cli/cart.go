package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"RocketShoes/internal/cart"
	"RocketShoes/internal/storage"
	"RocketShoes/pkg/kit"
)

func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(cmd, rootOpts, func(context.Context, *cart.Store) error { return nil })
		},
	}
}

func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add one unit of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			return withCart(cmd, rootOpts, func(ctx context.Context, s *cart.Store) error {
				return s.AddItem(ctx, id)
			})
		},
	}
}

func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			return withCart(cmd, rootOpts, func(ctx context.Context, s *cart.Store) error {
				return s.RemoveItem(ctx, id)
			})
		},
	}
}

func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <product-id> <amount>",
		Short: "Set the quantity of a product already in the cart",
		Long: `Set the quantity of a product already in the cart.

An amount of zero or less is ignored and leaves the cart as it is.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			amount, err := strconv.Atoi(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid amount %q", args[1]), err)
			}
			return withCart(cmd, rootOpts, func(ctx context.Context, s *cart.Store) error {
				return s.UpdateItemAmount(ctx, id, amount)
			})
		},
	}
}

func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(cmd, rootOpts, func(ctx context.Context, s *cart.Store) error {
				return s.Clear(ctx)
			})
		},
	}
}

func parseProductID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid product id %q", s))
	}
	return id, nil
}

// withCart opens the slot, loads the cart, runs op and prints the result.
// Notifications are written to stderr as they happen.
func withCart(cmd *cobra.Command, opts *RootOptions, op func(context.Context, *cart.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log := zap.NewNop()
	if opts.Verbose {
		log = kit.NewLogger("cartctl", "debug")
	}
	defer func() { _ = log.Sync() }()

	slot, err := storage.Open(ctx, opts.Storage)
	if err != nil {
		return WrapExitError(ExitCommandError, "open storage", err)
	}
	defer func() { _ = slot.Close() }()

	api := cart.NewAPIClient(opts.API, opts.Timeout)
	store, err := cart.New(ctx, cart.Deps{
		Inventory: api,
		Catalog:   api,
		Persister: cart.NewSlotPersister(slot, cart.DefaultSlotKey),
		Notifier:  cart.WriterNotifier(cmd.ErrOrStderr()),
		Log:       log,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "load cart", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	if err := op(ctx, store); err != nil {
		kind, ok := cart.KindOf(err)
		if !ok {
			return WrapExitError(ExitCommandError, "cart operation", err)
		}
		if werr := out.Rejected(kind); werr != nil {
			return werr
		}
		return WrapExitError(ExitRejected, cart.Message(kind), err)
	}
	return out.Cart(store.Items())
}
