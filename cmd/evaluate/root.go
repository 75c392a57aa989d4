package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"procurement/internal/evaluator"
	"procurement/internal/models"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRootCommand() *cobra.Command {
	var file, output string

	cmd := &cobra.Command{
		Use:   "evaluate --file orders.yaml",
		Short: "Rank supplier orders offline",
		Long: `Reads a list of orders from a JSON or YAML file and ranks them with the
same scoring the procurement service uses. A file may hold either a list of
orders or a document with an "orders" key. Use "-" to read from stdin.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "table" && output != "json" {
				return fmt.Errorf("unsupported output %q: must be table or json", output)
			}

			data, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			orders, err := parseOrders(data)
			if err != nil {
				return fmt.Errorf("failed to parse orders from %s: %w", file, err)
			}

			ranking := evaluator.Rank(orders)
			if output == "json" {
				return printJSON(cmd.OutOrStdout(), ranking)
			}
			return printTable(cmd.OutOrStdout(), ranking)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "Orders file, JSON or YAML")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table or json")

	return cmd
}

func readInput(stdin io.Reader, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(file)
}

// parseOrders accepts JSON or YAML. YAML is decoded generically and
// re-encoded as JSON so amounts go through the decimal JSON decoder.
func parseOrders(data []byte) ([]models.Order, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if m, ok := doc.(map[string]interface{}); ok {
		list, ok := m["orders"]
		if !ok {
			return nil, fmt.Errorf("document has no \"orders\" key")
		}
		doc = list
	}

	js, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	var orders []models.Order
	if err = json.Unmarshal(js, &orders); err != nil {
		return nil, err
	}

	if err = evaluator.Validate(orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func printJSON(w io.Writer, ranking models.Ranking) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ranking)
}

func printTable(w io.Writer, ranking models.Ranking) error {
	if len(ranking.Orders) == 0 {
		_, err := fmt.Fprintln(w, "no orders to evaluate")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "RANK\tSUPPLIER\tAMOUNT\tPRICE\tDELIVERY\tWARRANTY\tSERVICE\tSCORE\t")
	for _, o := range ranking.Orders {
		supplier := o.Supplier
		if len(supplier) == 0 {
			supplier = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t\n",
			o.Rank, supplier, o.TotalAmount.StringFixed(2), o.PriceScore, o.DeliveryScore, o.WarrantyScore, o.ServiceScore, o.Score)
	}
	return tw.Flush()
}
