package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Juggy247/Security-Scanner-Project/registry"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Manage the risk registries (TLDs, brands, keywords, blacklist)",
}

var addedBy string

var addTLDCmd = &cobra.Command{
	Use:   "add-tld TLD",
	Short: "Add a suspicious TLD",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		risk, _ := cmd.Flags().GetString("risk")
		reason, _ := cmd.Flags().GetString("reason")
		now := time.Now().UTC()
		return store.AddTLD(cmd.Context(), registry.TLDEntry{
			TLD:       args[0],
			RiskLevel: risk,
			Reason:    reason,
			AddedBy:   addedBy,
			AddedAt:   now,
			UpdatedAt: now,
			Active:    true,
		})
	},
}

var listTLDsCmd = &cobra.Command{
	Use:   "list-tlds",
	Short: "List active suspicious TLDs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		tlds, err := store.SuspiciousTLDs(cmd.Context())
		if err != nil {
			return err
		}
		for _, tld := range tlds {
			entry, err := store.TLDDetails(cmd.Context(), tld)
			if err != nil {
				return err
			}
			if entry == nil {
				continue
			}
			fmt.Printf("%-8s %-10s %s\n", entry.TLD, entry.RiskLevel, entry.Reason)
		}
		return nil
	},
}

var addBrandCmd = &cobra.Command{
	Use:   "add-brand NAME",
	Short: "Add a protected brand name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		category, _ := cmd.Flags().GetString("category")
		now := time.Now().UTC()
		return store.AddBrand(cmd.Context(), registry.BrandEntry{
			Name:      args[0],
			Category:  category,
			AddedBy:   addedBy,
			AddedAt:   now,
			UpdatedAt: now,
			Active:    true,
		})
	},
}

var addKeywordCmd = &cobra.Command{
	Use:   "add-keyword KEYWORD",
	Short: "Add a phishing keyword",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		category, _ := cmd.Flags().GetString("category")
		risk, _ := cmd.Flags().GetString("risk")
		now := time.Now().UTC()
		return store.AddKeyword(cmd.Context(), registry.KeywordEntry{
			Keyword:   args[0],
			Category:  category,
			RiskLevel: risk,
			AddedAt:   now,
			UpdatedAt: now,
			Active:    true,
		})
	},
}

var addBlacklistCmd = &cobra.Command{
	Use:   "add-blacklist DOMAIN",
	Short: "Blacklist a domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		source, _ := cmd.Flags().GetString("source")
		reason, _ := cmd.Flags().GetString("reason")
		now := time.Now().UTC()
		return store.AddBlacklisted(cmd.Context(), registry.BlacklistEntry{
			Domain:    args[0],
			Source:    source,
			Reason:    reason,
			AddedBy:   addedBy,
			AddedAt:   now,
			UpdatedAt: now,
			Active:    true,
		})
	},
}

var updateTLDCmd = &cobra.Command{
	Use:   "update-tld TLD",
	Short: "Update or deactivate a suspicious TLD",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		var u registry.TLDUpdate
		if cmd.Flags().Changed("risk") {
			risk, _ := cmd.Flags().GetString("risk")
			u.RiskLevel = &risk
		}
		if cmd.Flags().Changed("reason") {
			reason, _ := cmd.Flags().GetString("reason")
			u.Reason = &reason
		}
		if cmd.Flags().Changed("active") {
			active, _ := cmd.Flags().GetBool("active")
			u.Active = &active
		}
		return store.UpdateTLD(cmd.Context(), args[0], u)
	},
}

var removeTLDCmd = &cobra.Command{
	Use:   "remove-tld TLD",
	Short: "Remove a suspicious TLD",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()
		return store.RemoveTLD(cmd.Context(), args[0])
	},
}

var removeBlacklistCmd = &cobra.Command{
	Use:   "remove-blacklist DOMAIN",
	Short: "Remove a domain from the blacklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()
		return store.RemoveBlacklisted(cmd.Context(), args[0])
	},
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Bulk-load registry entries from a JSON seed file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := registry.Import(cmd.Context(), store, data)
		if err != nil {
			return err
		}
		color.Green("added %d, skipped %d existing, %d errors",
			stats.Added, stats.Skipped, stats.Errors)
		if stats.Errors > 0 {
			return fmt.Errorf("%d entries failed to import", stats.Errors)
		}
		return nil
	},
}

func init() {
	registryCmd.PersistentFlags().StringVar(&addedBy, "added-by", "cli", "who is making the change")

	addTLDCmd.Flags().String("risk", "medium", "risk level (low|medium|high|critical)")
	addTLDCmd.Flags().String("reason", "", "why this TLD is suspicious")
	updateTLDCmd.Flags().String("risk", "", "new risk level")
	updateTLDCmd.Flags().String("reason", "", "new reason")
	updateTLDCmd.Flags().Bool("active", true, "activate or deactivate the entry")
	addBrandCmd.Flags().String("category", "other", "brand category")
	addKeywordCmd.Flags().String("category", "other", "keyword category")
	addKeywordCmd.Flags().String("risk", "medium", "risk level (low|medium|high|critical)")
	addBlacklistCmd.Flags().String("source", "manual", "where the listing came from")
	addBlacklistCmd.Flags().String("reason", "", "why this domain is blacklisted")

	registryCmd.AddCommand(addTLDCmd)
	registryCmd.AddCommand(updateTLDCmd)
	registryCmd.AddCommand(removeTLDCmd)
	registryCmd.AddCommand(listTLDsCmd)
	registryCmd.AddCommand(removeBlacklistCmd)
	registryCmd.AddCommand(addBrandCmd)
	registryCmd.AddCommand(addKeywordCmd)
	registryCmd.AddCommand(addBlacklistCmd)
	registryCmd.AddCommand(importCmd)
}
