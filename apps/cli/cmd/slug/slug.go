package slugcmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zenGate-Global/pwa-studio/platform/go/tenant"
)

// Command prints the tenant slug a store name publishes under.
func Command() *cobra.Command {
	var alphabet string
	var maxLength int

	cmd := &cobra.Command{
		Use:   "slug <store name>",
		Short: "Print the tenant slug derived from a store name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := tenant.ParseAlphabet(alphabet)
			if err != nil {
				return err
			}
			slug, err := tenant.Slugify(strings.Join(args, " "), tenant.SlugOptions{Alphabet: a, MaxLength: maxLength})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), slug)
			return nil
		},
	}

	cmd.Flags().StringVar(&alphabet, "alphabet", string(tenant.AlphabetHyphenated), "slug alphabet (hyphenated or compact)")
	cmd.Flags().IntVar(&maxLength, "max-length", tenant.DefaultMaxLength, "maximum slug length")
	return cmd
}
