package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/indexdata/crosslink/econtent/axis360"
	"github.com/indexdata/crosslink/econtent/cache"
	extctx "github.com/indexdata/crosslink/econtent/common"
	"github.com/indexdata/crosslink/econtent/httpclient"
	"github.com/indexdata/crosslink/econtent/patron"
	"github.com/indexdata/crosslink/econtent/settings"
	"github.com/spf13/cobra"
)

type options struct {
	configFile string
	barcode    string
	pin        string
	timeout    time.Duration
	verbose    bool
}

// session is what every command works with once the flags are read.
type session struct {
	ctx    extctx.ExtendedContext
	client *axis360.Client
	patron *patron.Patron
}

func (o *options) open(cmd *cobra.Command) (*session, error) {
	if o.configFile == "" {
		return nil, errors.New("--config is required")
	}
	f, err := os.Open(o.configFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := settings.ReadYaml(f)
	if err != nil {
		return nil, err
	}
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	ctx := extctx.CreateExtCtxWithLogArgsAndHandler(cmd.Context(), &extctx.LoggerArgs{PatronId: o.barcode}, handler)
	factory := axis360.NewClientFactory(&settings.StaticProvider{Settings: s}, cache.NewMemoryCache(), nil, nil, axis360.Config{})
	factory.NewTransport = axis360.NewTransportFactory(o.timeout, httpclient.DefaultMaxResponseSize)
	factory.NewLoginTransport = axis360.NewLoginTransportFactory(o.timeout)
	var p *patron.Patron
	if o.barcode != "" {
		// the CLI knows patrons by barcode only
		p = &patron.Patron{ID: o.barcode, Barcode: o.barcode, Pin: o.pin, DisplayName: o.barcode}
	}
	return &session{ctx: ctx, client: factory.NewClient(), patron: p}, nil
}

func printJson(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "axisctl",
		Short: "Circulation desk tool for the Axis 360 vendor API",
		Long: `Run circulation operations for one patron directly against the vendor.

Vendor settings are read from a YAML file:

  libraryId: lib1
  accountId: acct
  accountKey: secret
  apiUrl: https://axis360api.baker-taylor.com/Services/VendorAPI
  userInterfaceUrl: https://lib1.axis360.baker-taylor.com

Examples:
  axisctl --config axis360.yaml --barcode 21000 --pin 1234 summary
  axisctl --config axis360.yaml --barcode 21000 --pin 1234 checkout 0001`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&o.configFile, "config", "c", "", "YAML file with the vendor settings")
	flags.StringVarP(&o.barcode, "barcode", "b", "", "patron barcode")
	flags.StringVarP(&o.pin, "pin", "p", "", "patron PIN")
	flags.DurationVar(&o.timeout, "timeout", httpclient.DefaultTimeout, "vendor request timeout")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "log vendor requests to stderr")

	root.AddCommand(newSummaryCmd(o))
	root.AddCommand(newCheckoutsCmd(o))
	root.AddCommand(newHoldsCmd(o))
	root.AddCommand(newStatusCmd(o))
	root.AddCommand(newAuthCmd(o))
	root.AddCommand(newReadCmd(o))
	root.AddCommand(newItemCmd(o, "checkout", "Check out a title", (*axis360.Client).CheckOutTitle))
	root.AddCommand(newItemCmd(o, "renew", "Renew a checkout", (*axis360.Client).RenewCheckout))
	root.AddCommand(newItemCmd(o, "return", "Return a checkout early", (*axis360.Client).ReturnCheckout))
	root.AddCommand(newItemCmd(o, "cancel-hold", "Cancel a hold", (*axis360.Client).CancelHold))
	root.AddCommand(newHoldCmd(o))
	return root
}

func requirePatron(s *session) error {
	if s.patron == nil {
		return fmt.Errorf("--barcode is required")
	}
	return nil
}
