package cli

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/apex-citadels/citadel/internal/domain"
)

func init() {
	spendCmd.Flags().StringP("reason", "r", "cli", "Reason recorded in the transaction history")
	earnCmd.Flags().StringP("reason", "r", "cli", "Reason recorded in the transaction history")
	refundCmd.Flags().StringP("reason", "r", "cli", "Reason recorded in the transaction history")
	refundCmd.Flags().Float64("ratio", 0.5, "Fraction of the original cost to credit back")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resourcesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(spendCmd)
	rootCmd.AddCommand(earnCmd)
	rootCmd.AddCommand(refundCmd)
}

// ─── citadel status ─────────────────────────────────────────────────────────

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE: func(cmd *cobra.Command, args []string) error {
		var status struct {
			Status       string `json:"status"`
			Version      string `json:"version"`
			EventClients int    `json:"event_clients"`
		}
		if err := getJSON(daemonAddr(cmd), "/api/status", &status); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s (v%s)\n", status.Status, status.Version)
		fmt.Fprintf(os.Stdout, "event feed clients: %d\n", status.EventClients)
		return nil
	},
}

// ─── citadel resources ──────────────────────────────────────────────────────

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "Show current resource amounts, capacities, and generation rates",
	RunE: func(cmd *cobra.Command, args []string) error {
		var body struct {
			Resources []struct {
				Type          string  `json:"type"`
				Amount        int64   `json:"amount"`
				Capacity      int64   `json:"capacity"`
				RatePerMinute float64 `json:"rate_per_minute"`
				FillRatio     float64 `json:"fill_ratio"`
			} `json:"resources"`
		}
		if err := getJSON(daemonAddr(cmd), "/api/resources", &body); err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RESOURCE\tAMOUNT\tCAPACITY\tRATE/MIN\tFULL")
		for _, r := range body.Resources {
			fmt.Fprintf(w, "%s\t%d\t%d\t%g\t%.0f%%\n",
				r.Type, r.Amount, r.Capacity, r.RatePerMinute, r.FillRatio*100)
		}
		return w.Flush()
	},
}

// ─── citadel history ────────────────────────────────────────────────────────

var historyCmd = &cobra.Command{
	Use:   "history [COUNT]",
	Short: "Show recent transactions, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count := 20
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("invalid count %q", args[0])
			}
			count = n
		}

		var body struct {
			Transactions []domain.Transaction `json:"transactions"`
		}
		path := fmt.Sprintf("/api/transactions?count=%d", count)
		if err := getJSON(daemonAddr(cmd), path, &body); err != nil {
			return err
		}
		if len(body.Transactions) == 0 {
			fmt.Fprintln(os.Stdout, "No transactions this session.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tKIND\tOK\tCOST\tREASON")
		for _, tx := range body.Transactions {
			ok := "yes"
			if !tx.Success {
				ok = "no"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				tx.Timestamp.Format("15:04:05"), tx.Kind, ok, tx.Cost, tx.Reason)
		}
		return w.Flush()
	},
}

// ─── citadel spend / earn / refund ──────────────────────────────────────────

var spendCmd = &cobra.Command{
	Use:   "spend RESOURCE=AMOUNT[,RESOURCE=AMOUNT...]",
	Short: "Spend resources (dev/admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cost, err := parseCostArg(args[0])
		if err != nil {
			return err
		}
		reason, _ := cmd.Flags().GetString("reason")

		var result struct {
			OK      bool             `json:"ok"`
			Missing map[string]int64 `json:"missing"`
		}
		body := map[string]interface{}{"cost": cost, "reason": reason}
		if err := postJSON(daemonAddr(cmd), "/api/spend", body, &result); err != nil {
			return err
		}
		if !result.OK {
			fmt.Fprintln(os.Stdout, "Rejected: insufficient resources.")
			for name, n := range result.Missing {
				fmt.Fprintf(os.Stdout, "  missing %d %s\n", n, name)
			}
			return nil
		}
		fmt.Fprintln(os.Stdout, "Spent.")
		return nil
	},
}

var earnCmd = &cobra.Command{
	Use:   "earn RESOURCE=AMOUNT[,RESOURCE=AMOUNT...]",
	Short: "Grant resources (dev/admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reward, err := parseCostArg(args[0])
		if err != nil {
			return err
		}
		reason, _ := cmd.Flags().GetString("reason")

		body := map[string]interface{}{"reward": reward, "reason": reason}
		if err := postJSON(daemonAddr(cmd), "/api/earn", body, nil); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, "Granted.")
		return nil
	},
}

var refundCmd = &cobra.Command{
	Use:   "refund RESOURCE=AMOUNT[,RESOURCE=AMOUNT...]",
	Short: "Refund a fraction of an original cost (dev/admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cost, err := parseCostArg(args[0])
		if err != nil {
			return err
		}
		reason, _ := cmd.Flags().GetString("reason")
		ratio, _ := cmd.Flags().GetFloat64("ratio")

		body := map[string]interface{}{"cost": cost, "ratio": ratio, "reason": reason}
		if err := postJSON(daemonAddr(cmd), "/api/refund", body, nil); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Refunded at ratio %g.\n", ratio)
		return nil
	},
}
