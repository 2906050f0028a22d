package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"shipment-allocation-service/internal/platform/obs"
	"shipment-allocation-service/internal/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "shipctl",
	Short: "Compute minimum-cost warehouse shipment plans",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}

		l, err := obs.NewLogger(obs.LogConfig{Level: level, Format: "console"})
		if err != nil {
			return err
		}
		logger = l
		zap.ReplaceGlobals(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	SilenceUsage: true,
}

type allocateFlags struct {
	file          string
	pretty        bool
	lenient       bool
	maxWarehouses int
}

func newAllocateCmd() *cobra.Command {
	var f allocateFlags

	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Allocate an order across a ranked warehouse list read from a YAML or JSON file",
		Long: `Reads {order: {item: qty}, warehouses: [{name, inventory}]} and prints the
cheapest shipment plan as [{"warehouse": {"item": qty}}, ...].
An order that cannot be fully satisfied prints [].`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAllocate(cmd.InOrStdin(), cmd.OutOrStdout(), f)
		},
	}

	cmd.Flags().StringVarP(&f.file, "file", "f", "-", "input file, - for stdin")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "indent the JSON output")
	cmd.Flags().BoolVar(&f.lenient, "lenient", false, "ignore inventory items the order does not reference")
	cmd.Flags().IntVar(&f.maxWarehouses, "max-warehouses", 0, "refuse inputs with more warehouses (0 = no limit)")

	return cmd
}

func runAllocate(stdin io.Reader, stdout io.Writer, f allocateFlags) error {
	in := stdin
	if f.file != "-" {
		file, err := os.Open(f.file)
		if err != nil {
			return fmt.Errorf("allocate: %w", err)
		}
		defer file.Close()
		in = file
	}

	order, warehouses, err := parseInput(in)
	if err != nil {
		return fmt.Errorf("allocate: %w", err)
	}

	opts := []services.ShipmentOption{services.WithMaxWarehouses(f.maxWarehouses)}
	if f.lenient {
		opts = append(opts, services.WithLenientInventory())
	}

	plan, err := services.Shipment(order, warehouses, opts...)
	if err != nil {
		return fmt.Errorf("allocate: %w", err)
	}

	zap.L().Debug("allocation done",
		zap.Int("warehouses", len(warehouses)),
		zap.Strings("plan", plan.Warehouses()),
	)

	enc := json.NewEncoder(stdout)
	if f.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(plan.Contract())
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")
	rootCmd.AddCommand(newAllocateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
