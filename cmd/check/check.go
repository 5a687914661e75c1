// Package check reports whether the current month's export has arrived.
package check

import (
	"context"
	"fmt"
	"io"
	"time"

	"fjacquet/budget-csv/cmd/root"
	"fjacquet/budget-csv/internal/container"
	"fjacquet/budget-csv/internal/notify"
	"fjacquet/budget-csv/internal/scanner"

	"github.com/spf13/cobra"
)

var (
	folder       string
	notifyResult bool
)

// Cmd represents the check command
var Cmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the current month's export exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := Run(cmd.Context(), root.GetContainer(), folder, time.Now(), notifyResult, cmd.OutOrStdout())
		return err
	},
}

func init() {
	Cmd.Flags().StringVar(&folder, "folder", "", "Folder holding the monthly exports (default from config)")
	Cmd.Flags().BoolVar(&notifyResult, "notify", true, "Post the result to Discord")
}

// Message is the status line for the export of now's month.
func Message(now time.Time, found bool) string {
	state := "was not found"
	if found {
		state = "was found"
	}
	return fmt.Sprintf("The CSV file for month: %s and year: %d %s.", now.Month(), now.Year(), state)
}

// Run looks for the export of now's month, prints the status and optionally
// posts it.
func Run(ctx context.Context, c *container.Container, dir string, now time.Time, post bool, out io.Writer) (bool, error) {
	if c == nil {
		return false, fmt.Errorf("application not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s := c.GetScanner()
	if dir != "" {
		s = scanner.NewMonthScanner(dir, c.GetLogger())
	}
	found, err := s.HasMonthFile(now)
	if err != nil {
		return false, err
	}

	msg := Message(now, found)
	if post {
		if err := c.GetNotifier().Post(ctx, notify.Message{Content: msg}); err != nil {
			c.GetLogger().WithError(err).Error("Failed to send Discord notification")
		}
	}
	_, err = fmt.Fprintln(out, msg)
	return found, err
}
