package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/partstream/fitment/internal/store"
)

var (
	listPattern  string
	listSortBy   string
	listDesc     bool
	exportOutput string
)

// mappingsCmd groups the mapping table commands
var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "Manage vehicle phrase mapping rules",
	Long: `Manage the configurable rules that translate free-text vehicle phrases
into canonical (make, vehicle code, model) identities.

When multiple active patterns match a phrase, the highest priority wins;
ties break by earliest-created rule.`,
}

var mappingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List mapping rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		d, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer d.Close()

		mappings, err := d.Mappings.List(ctx, store.ListOptions{
			PatternFilter: listPattern,
			SortBy:        listSortBy,
			Descending:    listDesc,
		})
		if err != nil {
			return err
		}

		fmt.Printf("%-6s %-24s %-6s %-10s %-12s %-16s %s\n",
			"ID", "PATTERN", "REGEX", "PRIORITY", "MAKE", "MODEL", "ACTIVE")
		for _, m := range mappings {
			fmt.Printf("%-6d %-24s %-6t %-10d %-12s %-16s %t\n",
				m.ID, m.Pattern, m.IsRegex, m.Priority, m.Canonical.Make, m.Canonical.Model, m.Active)
		}
		return nil
	},
}

var mappingsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Bulk import mapping rules from a YAML payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read payload: %w", err)
		}

		payload, err := store.DecodeMappingPayload(data)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		d, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer d.Close()

		count, err := d.Mappings.Import(ctx, payload)
		if err != nil {
			return err
		}

		fmt.Printf("Imported %d mapping rules\n", count)
		return nil
	},
}

var mappingsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export mapping rules as a YAML payload",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		d, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer d.Close()

		mappings, err := d.Mappings.List(ctx, store.ListOptions{SortBy: "priority", Descending: true})
		if err != nil {
			return err
		}

		data, err := store.EncodeMappingPayload(mappings)
		if err != nil {
			return err
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0644); err != nil {
				return fmt.Errorf("write payload: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Exported %d mapping rules to %s\n", len(mappings), exportOutput)
			return nil
		}

		fmt.Print(string(data))
		return nil
	},
}

var mappingsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a mapping rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int64
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid mapping id %q", args[0])
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		d, err := openStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Mappings.Delete(ctx, id); err != nil {
			return err
		}

		fmt.Printf("Deleted mapping %d\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mappingsCmd)
	mappingsCmd.AddCommand(mappingsListCmd)
	mappingsCmd.AddCommand(mappingsImportCmd)
	mappingsCmd.AddCommand(mappingsExportCmd)
	mappingsCmd.AddCommand(mappingsDeleteCmd)

	mappingsListCmd.Flags().StringVar(&listPattern, "pattern", "", "filter by pattern substring")
	mappingsListCmd.Flags().StringVar(&listSortBy, "sort", "id", "sort by: id, priority, pattern")
	mappingsListCmd.Flags().BoolVar(&listDesc, "desc", false, "sort descending")
	mappingsExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write payload to file instead of stdout")
}
