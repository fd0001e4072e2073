package cli

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/repute-network/repute/internal/domain"
)

// ─── Client Commands ────────────────────────────────────────────────────────
// Each command talks to a running daemon over HTTP. --as names the caller
// principal; admin-only operations need --as <admin identity>.

var (
	flagAddr   string
	flagCaller string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAddr, "addr", "127.0.0.1:7410", "Daemon address")
	rootCmd.PersistentFlags().StringVar(&flagCaller, "as", "", "Caller identity for the request")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(decayCmd)
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authGrantCmd)
	authCmd.AddCommand(authRevokeCmd)
	authCmd.AddCommand(authCheckCmd)
	rootCmd.AddCommand(paramsCmd)
	paramsCmd.AddCommand(paramsSetDecayCmd)
	paramsCmd.AddCommand(paramsSetWeightingCmd)

	listCmd.Flags().Int("offset", 0, "Pagination offset")
	listCmd.Flags().Int("limit", 50, "Page size")
	rateCmd.Flags().String("rater", "", "Identity the rating is attributed to (required)")
	paramsSetWeightingCmd.Flags().Int64("min-rater", 300, "Minimum rater reputation for weighting")
	paramsSetWeightingCmd.Flags().Int64("max-mult", 200, "Maximum weight multiplier (100 = x1.00)")
}

// ─── repute register ────────────────────────────────────────────────────────

var registerCmd = &cobra.Command{
	Use:   "register IDENTITY",
	Short: "Register an identity (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(flagAddr, flagCaller)
		var out struct {
			Identity string `json:"identity"`
			Score    int64  `json:"score"`
		}
		if err := c.do(http.MethodPost, "/api/reputation/users",
			map[string]string{"identity": args[0]}, &out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Registered %s with score %d\n", out.Identity, out.Score)
		return nil
	},
}

// ─── repute score / show ────────────────────────────────────────────────────

var scoreCmd = &cobra.Command{
	Use:   "score IDENTITY",
	Short: "Show an identity's current decay-adjusted score",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(flagAddr, flagCaller)
		var out struct {
			Identity string `json:"identity"`
			Score    int64  `json:"score"`
		}
		if err := c.do(http.MethodGet, "/api/reputation/users/"+args[0]+"/score", nil, &out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s: %d\n", out.Identity, out.Score)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show IDENTITY",
	Short: "Show an identity's full reputation record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(flagAddr, flagCaller)
		var rec domain.ReputationRecord
		if err := c.do(http.MethodGet, "/api/reputation/users/"+args[0], nil, &rec); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Identity:      %s\n", rec.Identity)
		fmt.Fprintf(os.Stdout, "Score:         %d\n", rec.Score)
		fmt.Fprintf(os.Stdout, "Total ratings: %d\n", rec.TotalRatings)
		fmt.Fprintf(os.Stdout, "Total score:   %d\n", rec.TotalScore)
		fmt.Fprintf(os.Stdout, "Last update:   %s\n", rec.LastUpdate.Format(time.RFC3339))
		fmt.Fprintf(os.Stdout, "Last decay:    %s\n", rec.LastDecay.Format(time.RFC3339))
		return nil
	},
}

// ─── repute list ────────────────────────────────────────────────────────────

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered identities in registration order",
	RunE: func(cmd *cobra.Command, args []string) error {
		offset, _ := cmd.Flags().GetInt("offset")
		limit, _ := cmd.Flags().GetInt("limit")

		c := newClient(flagAddr, flagCaller)
		var out struct {
			Identities []string `json:"identities"`
			Total      int      `json:"total"`
		}
		path := fmt.Sprintf("/api/reputation/users?offset=%d&limit=%d", offset, limit)
		if err := c.do(http.MethodGet, path, nil, &out); err != nil {
			return err
		}

		if len(out.Identities) == 0 {
			fmt.Fprintln(os.Stdout, "No identities on this page.")
			return nil
		}
		for i, id := range out.Identities {
			fmt.Fprintf(os.Stdout, "%4d  %s\n", offset+i, id)
		}
		fmt.Fprintf(os.Stdout, "Total registered: %d\n", out.Total)
		return nil
	},
}

// ─── repute rate ────────────────────────────────────────────────────────────

var rateCmd = &cobra.Command{
	Use:   "rate IDENTITY RATING",
	Short: "Submit a rating for an identity (authorized callers only)",
	Long: `Submit a rating in [0, 1000] for a registered identity. The rating is
attributed to the --rater identity, whose own reputation determines its
weight. The calling principal (--as) must be on the authorization list.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rating, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("rating must be an integer: %w", err)
		}
		rater, _ := cmd.Flags().GetString("rater")
		if rater == "" {
			return fmt.Errorf("--rater is required")
		}

		c := newClient(flagAddr, flagCaller)
		var out struct {
			Ratee string `json:"ratee"`
			Score int64  `json:"score"`
		}
		if err := c.do(http.MethodPost, "/api/reputation/ratings",
			map[string]any{"ratee": args[0], "rating": rating, "rater": rater}, &out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s: %d\n", out.Ratee, out.Score)
		return nil
	},
}

// ─── repute decay ───────────────────────────────────────────────────────────

var decayCmd = &cobra.Command{
	Use:   "decay IDENTITY",
	Short: "Apply any pending decay to an identity's stored score",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(flagAddr, flagCaller)
		var out struct {
			Identity string `json:"identity"`
			Score    int64  `json:"score"`
		}
		if err := c.do(http.MethodPost, "/api/reputation/users/"+args[0]+"/decay", nil, &out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s: %d\n", out.Identity, out.Score)
		return nil
	},
}

// ─── repute auth ────────────────────────────────────────────────────────────

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the rating authorization list",
}

var authGrantCmd = &cobra.Command{
	Use:   "grant IDENTITY",
	Short: "Authorize an identity to submit ratings (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(flagAddr, flagCaller)
		if err := c.do(http.MethodPost, "/api/reputation/authorizations",
			map[string]string{"identity": args[0]}, nil); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s authorized\n", args[0])
		return nil
	},
}

var authRevokeCmd = &cobra.Command{
	Use:   "revoke IDENTITY",
	Short: "Revoke an identity's rating authorization (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(flagAddr, flagCaller)
		if err := c.do(http.MethodDelete, "/api/reputation/authorizations/"+args[0], nil, nil); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s revoked\n", args[0])
		return nil
	},
}

var authCheckCmd = &cobra.Command{
	Use:   "check IDENTITY",
	Short: "Check whether an identity is authorized",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(flagAddr, flagCaller)
		var out struct {
			Authorized bool `json:"authorized"`
		}
		if err := c.do(http.MethodGet, "/api/reputation/authorizations/"+args[0], nil, &out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s authorized: %v\n", args[0], out.Authorized)
		return nil
	},
}

// ─── repute params ──────────────────────────────────────────────────────────

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Show or tune ledger parameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(flagAddr, flagCaller)
		var p domain.Params
		if err := c.do(http.MethodGet, "/api/reputation/params", nil, &p); err != nil {
			return err
		}
		printParams(p)
		return nil
	},
}

var paramsSetDecayCmd = &cobra.Command{
	Use:   "set-decay on|off",
	Short: "Enable or disable time decay (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var enabled bool
		switch args[0] {
		case "on":
			enabled = true
		case "off":
			enabled = false
		default:
			return fmt.Errorf("argument must be 'on' or 'off', got %q", args[0])
		}

		c := newClient(flagAddr, flagCaller)
		var p domain.Params
		if err := c.do(http.MethodPut, "/api/reputation/params/decay",
			map[string]bool{"enabled": enabled}, &p); err != nil {
			return err
		}
		printParams(p)
		return nil
	},
}

var paramsSetWeightingCmd = &cobra.Command{
	Use:   "set-weighting",
	Short: "Tune the rating-weight parameters (admin only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		minRater, _ := cmd.Flags().GetInt64("min-rater")
		maxMult, _ := cmd.Flags().GetInt64("max-mult")

		c := newClient(flagAddr, flagCaller)
		var p domain.Params
		if err := c.do(http.MethodPut, "/api/reputation/params/weighting",
			map[string]int64{"min_rater_reputation": minRater, "max_weight_multiplier": maxMult}, &p); err != nil {
			return err
		}
		printParams(p)
		return nil
	},
}

func printParams(p domain.Params) {
	fmt.Fprintf(os.Stdout, "Decay enabled:         %v\n", p.DecayEnabled)
	fmt.Fprintf(os.Stdout, "Decay period:          %s\n", p.DecayPeriod)
	fmt.Fprintf(os.Stdout, "Decay rate:            %d/1000 per period\n", p.DecayRatePerMille)
	fmt.Fprintf(os.Stdout, "Min rater reputation:  %d\n", p.MinRaterReputation)
	fmt.Fprintf(os.Stdout, "Max weight multiplier: %d (100 = x1.00)\n", p.MaxWeightMult)
}
