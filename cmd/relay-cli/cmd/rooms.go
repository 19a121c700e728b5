package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/nfrund/roomrelay/internal/domain"
	"github.com/nfrund/roomrelay/internal/rooms"
)

var (
	roomsAddr    string
	roomsTimeout time.Duration
)

// roomsCmd represents the rooms command
var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List active rooms and their members",
	Long: `List every room that currently has at least one member.

Examples:
  relay-cli rooms                               # Query http://localhost:3000
  relay-cli rooms --addr http://relay:8080      # Query another server`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), roomsTimeout)
		defer cancel()

		summaries, err := fetchRooms(ctx, roomsAddr)
		if err != nil {
			return err
		}
		printRooms(cmd.OutOrStdout(), summaries)
		return nil
	},
}

func init() {
	roomsCmd.Flags().StringVar(&roomsAddr, "addr", "http://localhost:3000", "Base URL of the relay server")
	roomsCmd.Flags().DurationVar(&roomsTimeout, "timeout", 5*time.Second, "Request timeout")
	rootCmd.AddCommand(roomsCmd)
}

func fetchRooms(ctx context.Context, addr string) ([]rooms.Summary, error) {
	url := strings.TrimRight(addr, "/") + "/api/rooms"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query %s: unexpected status %s", url, resp.Status)
	}

	var summaries []rooms.Summary
	if err := json.NewDecoder(resp.Body).Decode(&summaries); err != nil {
		return nil, fmt.Errorf("decode rooms: %w", err)
	}
	return summaries, nil
}

func printRooms(w io.Writer, summaries []rooms.Summary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, color.New(color.FgYellow).Render("No active rooms."))
		return
	}

	fmt.Fprintln(w, color.New(color.BgBlack, color.FgGreen).Render(fmt.Sprintf("%d active room(s)", len(summaries))))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Room", "Members", "Users"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, s := range summaries {
		names := lo.Map(s.Users, func(u domain.User, _ int) string { return u.Username })
		table.Append([]string{s.Room, strconv.Itoa(len(s.Users)), strings.Join(names, ", ")})
	}
	table.Render()
}
