package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var (
	baseURL string
	token   string
	timeout time.Duration
)

// bcryptGenerate is swapped out in tests.
var bcryptGenerate = bcrypt.GenerateFromPassword

func main() {
	rootCmd := &cobra.Command{
		Use:   "caja-cli",
		Short: "Caja CLI tool",
		Long:  `A command line interface for interacting with the Caja API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Caja API")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for authenticated requests")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	movementsCmd := &cobra.Command{
		Use:   "movements",
		Short: "Movement operations",
	}

	pendingCmd := &cobra.Command{
		Use:   "pending",
		Short: "List movements awaiting verification",
		Run: func(cmd *cobra.Command, args []string) {
			listPending()
		},
	}

	verifyCmd := &cobra.Command{
		Use:   "verify <movement-id>",
		Short: "Verify a pending movement",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			verifyMovement(args[0])
		},
	}

	movementsCmd.AddCommand(pendingCmd, verifyCmd)
	rootCmd.AddCommand(movementsCmd)

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show ledger totals",
		Run: func(cmd *cobra.Command, args []string) {
			showSummary()
		},
	}
	rootCmd.AddCommand(summaryCmd)

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and print a bearer token",
		Run: func(cmd *cobra.Command, args []string) {
			body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
			resp := doRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))

			var result struct {
				Token string `json:"token"`
			}
			if err := json.Unmarshal(resp, &result); err != nil || result.Token == "" {
				fmt.Printf("Login failed: %s\n", string(resp))
				os.Exit(1)
			}
			fmt.Println(result.Token)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hashed, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			fmt.Println(string(hashed))
			return nil
		},
	}
}

func listPending() {
	resp := doRequest(http.MethodGet, "/api/v1/movements/?state=pending", nil)

	var result struct {
		Movements []struct {
			ID     string `json:"id"`
			Kind   string `json:"kind"`
			Amount string `json:"amount"`
			Reason string `json:"reason"`
		} `json:"movements"`
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Pending movements: %d\n", result.Total)
	for _, m := range result.Movements {
		fmt.Printf("%s  %-7s %10s  %s\n", m.ID, m.Kind, m.Amount, truncate(m.Reason, 40))
	}
}

func verifyMovement(id string) {
	resp := doRequest(http.MethodPost, "/api/v1/movements/"+id+"/verify", nil)

	var result struct {
		Notified bool `json:"notified"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Movement %s verified (notified: %v)\n", id, result.Notified)
}

func showSummary() {
	resp := doRequest(http.MethodGet, "/api/v1/reports/summary", nil)

	var result map[string]any
	if err := json.Unmarshal(resp, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	printJSON(result)
}

func doRequest(method, path string, body io.Reader) []byte {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(data))
		os.Exit(1)
	}

	return data
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to render response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
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
