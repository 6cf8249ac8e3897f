package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/quietmind/recall/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service status",
	Long:  `Query the running service's health endpoint and print the result.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	url := fmt.Sprintf("http://%s:%d/health", cfg.Server.Host, cfg.Server.Port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		fmt.Println("Status: stopped")
		return nil
	}
	defer resp.Body.Close()

	var health struct {
		Status      string  `json:"status"`
		Initialized bool    `json:"initialized"`
		Degraded    bool    `json:"degraded"`
		Uptime      float64 `json:"uptime_seconds"`
		Pool        *struct {
			TotalConns    int32 `json:"total_conns"`
			AcquiredConns int32 `json:"acquired_conns"`
			IdleConns     int32 `json:"idle_conns"`
			MaxConns      int32 `json:"max_conns"`
		} `json:"pool"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("failed to parse health response: %w", err)
	}

	fmt.Printf("Status: %s\n", health.Status)
	fmt.Printf("Uptime: %s\n", formatDuration(time.Duration(health.Uptime)*time.Second))
	if health.Degraded {
		fmt.Println("Storage: in-memory fallback (not durable)")
	} else if health.Pool != nil {
		fmt.Printf("Storage: database pool %d/%d acquired, %d idle\n",
			health.Pool.AcquiredConns, health.Pool.MaxConns, health.Pool.IdleConns)
	}

	return nil
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
