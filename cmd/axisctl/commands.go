package main

import (
	"fmt"

	"github.com/indexdata/crosslink/econtent/axis360"
	extctx "github.com/indexdata/crosslink/econtent/common"
	"github.com/indexdata/crosslink/econtent/patron"
	"github.com/spf13/cobra"
)

type itemOperation func(c *axis360.Client, ctx extctx.ExtendedContext, p *patron.Patron, itemId string) (axis360.OperationResult, error)

// patronCmd builds a command that needs settings and a patron.
func patronCmd(o *options, use, short string, args cobra.PositionalArgs, run func(cmd *cobra.Command, s *session, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			if err := requirePatron(s); err != nil {
				return err
			}
			return run(cmd, s, args)
		},
	}
}

func newSummaryCmd(o *options) *cobra.Command {
	var reload bool
	cmd := patronCmd(o, "summary", "Show checkout and hold counts", cobra.NoArgs, func(cmd *cobra.Command, s *session, args []string) error {
		summary, err := s.client.GetAccountSummary(s.ctx, s.patron, reload)
		if err != nil {
			return err
		}
		return printJson(cmd, summary)
	})
	cmd.Flags().BoolVar(&reload, "reload", false, "bypass the summary cache")
	return cmd
}

func newCheckoutsCmd(o *options) *cobra.Command {
	return patronCmd(o, "checkouts", "List checkouts", cobra.NoArgs, func(cmd *cobra.Command, s *session, args []string) error {
		list, err := s.client.GetCheckouts(s.ctx, s.patron)
		if err != nil {
			return err
		}
		if list == nil {
			list = []axis360.Checkout{}
		}
		return printJson(cmd, list)
	})
}

func newHoldsCmd(o *options) *cobra.Command {
	return patronCmd(o, "holds", "List holds", cobra.NoArgs, func(cmd *cobra.Command, s *session, args []string) error {
		holds, err := s.client.GetHolds(s.ctx, s.patron)
		if err != nil {
			return err
		}
		return printJson(cmd, holds)
	})
}

func newStatusCmd(o *options) *cobra.Command {
	return patronCmd(o, "status <itemId>", "Show the status of a title for the patron", cobra.ExactArgs(1), func(cmd *cobra.Command, s *session, args []string) error {
		status, err := s.client.GetItemStatus(s.ctx, args[0], s.patron)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), status)
		return err
	})
}

func newAuthCmd(o *options) *cobra.Command {
	return patronCmd(o, "auth", "Check that the vendor knows the patron", cobra.NoArgs, func(cmd *cobra.Command, s *session, args []string) error {
		ok, err := s.client.CheckAuthentication(s.ctx, s.patron)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("patron %s is not known to the vendor", s.patron.Barcode)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "authenticated")
		return err
	})
}

func newReadCmd(o *options) *cobra.Command {
	return patronCmd(o, "read <itemId>", "Print the reader link of a checked out title", cobra.ExactArgs(1), func(cmd *cobra.Command, s *session, args []string) error {
		location, err := s.client.GetReaderRedirect(s.ctx, s.patron, args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), location)
		return err
	})
}

// newItemCmd fails when the vendor refuses so scripts can check the exit code.
func newItemCmd(o *options, use, short string, op itemOperation) *cobra.Command {
	return patronCmd(o, use+" <itemId>", short, cobra.ExactArgs(1), func(cmd *cobra.Command, s *session, args []string) error {
		result, err := op(s.client, s.ctx, s.patron, args[0])
		if err != nil {
			return err
		}
		if err := printJson(cmd, result); err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("%s failed: %s", use, result.Message)
		}
		return nil
	})
}

func newHoldCmd(o *options) *cobra.Command {
	return patronCmd(o, "hold <itemId>", "Place a hold", cobra.ExactArgs(1), func(cmd *cobra.Command, s *session, args []string) error {
		result, err := s.client.PlaceHold(s.ctx, s.patron, args[0])
		if err != nil {
			return err
		}
		if err := printJson(cmd, result); err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("hold failed: %s", result.Message)
		}
		return nil
	})
}
