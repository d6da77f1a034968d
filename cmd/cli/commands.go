package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	startUsername string
	startPassword string
	startDate     string
	startHours    []string
	startCourt    string
	startTest     bool
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().StringVar(&startUsername, "username", "", "Account username (falls back to the server's base config)")
	startCmd.Flags().StringVar(&startPassword, "password", "", "Account password (falls back to the server's base config)")
	startCmd.Flags().StringVar(&startDate, "date", "", "Target reservation date (YYYY-MM-DD)")
	startCmd.Flags().StringSliceVar(&startHours, "hour", nil, "Preferred hour, repeatable up to three times")
	startCmd.Flags().StringVar(&startCourt, "court", "", "Preferred court identifier")
	startCmd.Flags().BoolVar(&startTest, "test", false, "Run immediately in test mode")
	startCmd.MarkFlagRequired("date")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Schedule a booking run for a target date",
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]any{
			"username":        startUsername,
			"password":        startPassword,
			"dateMethod":      "specific",
			"reservationDate": startDate,
			"preferredCourt":  startCourt,
			"testMode":        startTest,
		}
		for i, hour := range startHours {
			if i > 2 {
				break
			}
			payload[fmt.Sprintf("preferredHour%d", i+1)] = hour
		}
		return performPostRequest("/start", payload)
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string, payload any) error {
	url := host + endpoint
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
