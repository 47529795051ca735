package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalambet/slaymom/internal/broadcast"
	"github.com/kalambet/slaymom/internal/chat"
	"github.com/kalambet/slaymom/internal/config"
	"github.com/kalambet/slaymom/internal/profile"
	"github.com/kalambet/slaymom/internal/storage"
)

// userArg accepts a bare ID or a pasted mention.
func userArg(s string) (string, error) {
	id, ok := chat.ParseMention(s)
	if !ok {
		return "", fmt.Errorf("invalid user %q: want a numeric ID or <@id> mention", s)
	}
	return id, nil
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect or remove member profiles",
}

var profileShowCmd = &cobra.Command{
	Use:   "show <user>",
	Short: "Show a member's profile as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := userArg(args[0])
		if err != nil {
			return err
		}
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		return showProfile(cmd.Context(), client, os.Stdout, id)
	},
}

var profileForgetCmd = &cobra.Command{
	Use:   "forget <user>",
	Short: "Delete a member's profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := userArg(args[0])
		if err != nil {
			return err
		}
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		if err := forgetProfile(cmd.Context(), client, id); err != nil {
			return err
		}
		printSuccess("Profile %s deleted", id)
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileForgetCmd)
}

func showProfile(ctx context.Context, c *apiClient, w io.Writer, userID string) error {
	resp, err := c.get(ctx, "/profiles/"+url.PathEscape(userID))
	if err != nil {
		return err
	}
	var p profile.Profile
	if err := decodeJSON(resp, &p); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

func forgetProfile(ctx context.Context, c *apiClient, userID string) error {
	resp, err := c.delete(ctx, "/profiles/"+url.PathEscape(userID))
	if err != nil {
		return err
	}
	var out map[string]string
	return decodeJSON(resp, &out)
}

// --- warnings ---

var warningsCmd = &cobra.Command{
	Use:   "warnings <user>",
	Short: "List moderator warnings for a member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := userArg(args[0])
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		return listWarnings(cmd.Context(), client, os.Stdout, id, limit)
	},
}

func init() {
	warningsCmd.Flags().Int("limit", 20, "maximum number of warnings to list")
}

func listWarnings(ctx context.Context, c *apiClient, w io.Writer, userID string, limit int) error {
	path := fmt.Sprintf("/profiles/%s/warnings?limit=%d", url.PathEscape(userID), limit)
	resp, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	var ws []storage.Warning
	if err := decodeJSON(resp, &ws); err != nil {
		return err
	}
	if len(ws) == 0 {
		fmt.Fprintln(w, "No warnings.")
		return nil
	}
	for _, wr := range ws {
		reason := wr.Reason
		if reason == "" {
			reason = "(no reason)"
		}
		fmt.Fprintf(w, "%s  by %s  %s\n", wr.CreatedAt.Local().Format(time.DateTime), wr.ModeratorID, reason)
	}
	return nil
}

// --- data ---

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Export or import all member profiles",
}

var dataExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all profiles as user_data.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		var w io.Writer = os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			w = f
		}

		n, err := exportData(cmd.Context(), client, w)
		if err != nil {
			return err
		}
		if output != "" {
			printSuccess("Exported %d profiles to %s", n, output)
		}
		return nil
	},
}

var dataImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all profiles with the contents of a user_data.json file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer f.Close()

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		n, err := importData(cmd.Context(), client, f)
		if err != nil {
			return err
		}
		printSuccess("Imported %d profiles", n)
		return nil
	},
}

func init() {
	dataExportCmd.Flags().String("output", "", "output file path (default: stdout)")
	dataCmd.AddCommand(dataExportCmd)
	dataCmd.AddCommand(dataImportCmd)
}

func exportData(ctx context.Context, c *apiClient, w io.Writer) (int, error) {
	resp, err := c.get(ctx, "/export")
	if err != nil {
		return 0, err
	}
	var all map[string]profile.Profile
	if err := decodeJSON(resp, &all); err != nil {
		return 0, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(all); err != nil {
		return 0, fmt.Errorf("writing export: %w", err)
	}
	return len(all), nil
}

func importData(ctx context.Context, c *apiClient, r io.Reader) (int, error) {
	var all map[string]profile.Profile
	if err := json.NewDecoder(r).Decode(&all); err != nil {
		return 0, fmt.Errorf("parsing profiles: %w", err)
	}
	resp, err := c.put(ctx, "/import", all)
	if err != nil {
		return 0, err
	}
	var out map[string]string
	if err := decodeJSON(resp, &out); err != nil {
		return 0, err
	}
	return len(all), nil
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s  %s\n", colorize(colorBold, k.Key), k.Value, colorize(colorCyan, "$"+k.EnvVar))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) != 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		keys := config.ValidKeys()
		sort.Strings(keys)
		return keys, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.SetKey(key, value); err != nil {
			return err
		}
		printSuccess("Set %s = %s", key, value)
		printWarning("restart slaymom for the change to take effect")
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a stored value and fall back to the default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}
		printSuccess("Unset %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}

// --- schedule ---

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print when the next daily affirmation goes out",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return printSchedule(os.Stdout, cfg, time.Now())
	},
}

func printSchedule(w io.Writer, cfg config.Config, now time.Time) error {
	at, err := broadcast.ParseTimeOfDay(cfg.Affirmation.Time)
	if err != nil {
		return err
	}
	next := broadcast.NextFire(now, at)
	target := "to channel " + cfg.Affirmation.ChannelID
	if cfg.Affirmation.ChannelID == "" {
		target = "to subscribers by DM only (affirmation.channel_id is not set)"
	}
	fmt.Fprintf(w, "Next affirmation: %s (in %s) %s\n",
		next.Format(time.RFC1123), next.Sub(now).Round(time.Minute), target)
	return nil
}
