package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/vortex-demo/internal/auth"
	"github.com/frahmantamala/vortex-demo/internal/database"
	"github.com/frahmantamala/vortex-demo/internal/session"
	"github.com/frahmantamala/vortex-demo/internal/user"
	"github.com/frahmantamala/vortex-demo/internal/vortex"
	vortexPostgres "github.com/frahmantamala/vortex-demo/internal/vortex/postgres"
	"github.com/spf13/cobra"
)

var sampleTargets = []vortex.Target{
	{Type: vortex.IdentifierEmail, Value: "newhire@example.com"},
	{Type: vortex.IdentifierUsername, Value: "contractor"},
	{Type: vortex.IdentifierPhone, Value: "+15555550100"},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample invitations",
	Long:  `Seed pending invitations from the demo admin into every group the admin belongs to.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		lg := initLogger(cfg)

		conn, err := database.Open(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer conn.Close()

		if _, err := database.Migrate(ctx, conn, cfg.Database.Driver); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
		gdb, err := database.Gorm(conn, cfg.Database.Driver, lg)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		store, err := user.NewStore(user.DemoSeeds(), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to build credential store: %v", err)
		}
		admin, ok := store.FindByID("1")
		if !ok {
			log.Fatal("demo admin user is missing")
		}
		claims := session.ClaimsFromUser(admin)
		inviter := auth.VortexIdentity(&claims)

		svc := vortex.NewService(vortexPostgres.NewInvitationRepository(gdb), nil, lg)

		for _, group := range inviter.Groups {
			if clearData {
				revoked, err := svc.RevokeGroup(ctx, inviter, group.Type, group.ID)
				if err != nil {
					log.Fatalf("failed to clear invitations for %s/%s: %v", group.Type, group.ID, err)
				}
				fmt.Printf("Revoked %d pending invitations in %s/%s\n", revoked, group.Type, group.ID)
			}

			for _, target := range sampleTargets {
				inv, created, err := svc.EnsurePending(ctx, inviter, target, group)
				if err != nil {
					log.Fatalf("failed to seed invitation for %s: %v", target.Value, err)
				}
				if created {
					fmt.Printf("Seeded invitation %s: %s %s -> %s/%s\n", inv.ID, target.Type, target.Value, group.Type, group.ID)
				} else {
					fmt.Printf("Invitation for %s already pending in %s/%s\n", target.Value, group.Type, group.ID)
				}
			}
		}

		fmt.Println("Invitations seeded successfully")
	},
}
