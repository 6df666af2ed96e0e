package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var (
	baseURL   string
	timeout   time.Duration
	authToken string
)

// bcryptGenerate is swappable in tests.
var bcryptGenerate = bcrypt.GenerateFromPassword

func main() {
	rootCmd := &cobra.Command{
		Use:   "microloan-cli",
		Short: "Microloan CLI tool",
		Long:  `A command line interface for interacting with the microloan API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the microloan API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "Bearer token for authenticated endpoints")

	// Portfolio commands
	portfolioCmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Portfolio operations",
	}

	portfolioCmd.AddCommand(&cobra.Command{
		Use:   "outstanding",
		Short: "Show the book-wide outstanding total",
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/portfolio/outstanding")
		},
	})

	portfolioCmd.AddCommand(&cobra.Command{
		Use:   "reconcile",
		Short: "Recompute balances from ledgers and report drift",
		Run: func(cmd *cobra.Command, args []string) {
			postJSON("/api/v1/portfolio/reconcile")
		},
	})

	rootCmd.AddCommand(portfolioCmd)

	// Loan commands
	loansCmd := &cobra.Command{
		Use:   "loans",
		Short: "Loan operations",
	}

	loansCmd.AddCommand(&cobra.Command{
		Use:   "overdue",
		Short: "List overdue loans",
		Run: func(cmd *cobra.Command, args []string) {
			listOverdue()
		},
	})

	loansCmd.AddCommand(&cobra.Command{
		Use:   "emi <loan-id>",
		Short: "Show a loan's monthly installment",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/loans/" + args[0] + "/emi")
		},
	})

	loansCmd.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Mark past-due ACTIVE loans as OVERDUE",
		Run: func(cmd *cobra.Command, args []string) {
			postJSON("/api/v1/loans/sweep")
		},
	})

	rootCmd.AddCommand(loansCmd)
	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// hashPasswordCmd hashes a password for seeding staff users.
func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Hash a password with bcrypt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			fmt.Println(string(hash))
			return nil
		},
	}
}

func listOverdue() {
	body := request(http.MethodGet, "/api/v1/loans/overdue")

	var resp struct {
		Loans []struct {
			ID          string `json:"id"`
			ClientID    string `json:"client_id"`
			Outstanding string `json:"outstanding"`
			EndDate     string `json:"end_date"`
			Status      string `json:"status"`
		} `json:"loans"`
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-28s %-28s %-12s %-10s %s\n", "LOAN", "CLIENT", "OUTSTANDING", "END DATE", "STATUS")
	for _, loan := range resp.Loans {
		fmt.Printf("%-28s %-28s %-12s %-10s %s\n",
			truncate(loan.ID, 28),
			truncate(loan.ClientID, 28),
			loan.Outstanding,
			loan.EndDate,
			loan.Status,
		)
	}
	fmt.Printf("Total: %d\n", resp.Total)
}

func getJSON(path string) {
	var result any
	if err := json.Unmarshal(request(http.MethodGet, path), &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}
	printJSON(result)
}

func postJSON(path string) {
	var result any
	if err := json.Unmarshal(request(http.MethodPost, path), &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}
	printJSON(result)
}

func request(method, path string) []byte {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, nil)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	return body
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to render: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
