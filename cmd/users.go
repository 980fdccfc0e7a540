package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/frahmantamala/vortex-demo/internal/user"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List the demo accounts",
	Long:  `Print the built-in demo users and their credentials. They are public and exist only for local testing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		seeds := user.DemoSeeds()
		// hashing proves the seeds are valid without paying the configured cost
		if _, err := user.NewStore(seeds, bcrypt.MinCost); err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tEMAIL\tPASSWORD\tROLE\tGROUPS\tADMIN SCOPES")
		for _, s := range seeds {
			groups := make([]string, 0, len(s.Groups))
			for _, g := range s.Groups {
				groups = append(groups, g.Type+"/"+g.ID)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				s.ID, s.Email, s.Password, s.Role,
				strings.Join(groups, ","), strings.Join(s.AdminScopes, ","))
		}
		return w.Flush()
	},
}
