package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/frahmantamala/vortex-demo/internal"
	"github.com/frahmantamala/vortex-demo/internal/database"
	invitationDatamodel "github.com/frahmantamala/vortex-demo/internal/core/datamodel/invitation"
	"github.com/frahmantamala/vortex-demo/pkg/logger"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDatabase(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Database Suite")
}

func memoryConfig() internal.DatabaseConfig {
	// one long-lived connection keeps the in-memory database alive
	return internal.DatabaseConfig{
		Driver:       internal.DriverSQLite,
		Source:       ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
}

var _ = Describe("Database", func() {
	var (
		ctx  context.Context
		conn *sqlx.DB
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		conn, err = database.Open(ctx, memoryConfig())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(conn.Close)
	})

	It("maps configured drivers to sql drivers", func() {
		Expect(database.SQLDriver(internal.DriverPostgres)).To(Equal("pgx"))
		Expect(database.SQLDriver(internal.DriverSQLite)).To(Equal("sqlite3"))
		_, err := database.SQLDriver("oracle")
		Expect(err).To(HaveOccurred())
	})

	It("refuses unknown drivers", func() {
		_, err := database.Open(ctx, internal.DatabaseConfig{Driver: "oracle", Source: "x"})
		Expect(err).To(MatchError(ContainSubstring("unsupported database driver")))
	})

	It("applies and rolls back the embedded migrations", func() {
		versions, err := database.Migrate(ctx, conn, internal.DriverSQLite)
		Expect(err).NotTo(HaveOccurred())
		Expect(versions).To(Equal([]int64{1, 2}))

		version, err := database.Version(ctx, conn, internal.DriverSQLite)
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(int64(2)))

		var tables int
		Expect(conn.GetContext(ctx, &tables, `SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'invitations'`)).To(Succeed())
		Expect(tables).To(Equal(1))

		again, err := database.Migrate(ctx, conn, internal.DriverSQLite)
		Expect(err).NotTo(HaveOccurred())
		Expect(again).To(BeEmpty())

		rolled, err := database.Rollback(ctx, conn, internal.DriverSQLite)
		Expect(err).NotTo(HaveOccurred())
		Expect(rolled).To(Equal(int64(2)))
	})

	It("shares the pool with gorm on the migrated schema", func() {
		_, err := database.Migrate(ctx, conn, internal.DriverSQLite)
		Expect(err).NotTo(HaveOccurred())

		gdb, err := database.Gorm(conn, internal.DriverSQLite, logger.Discard())
		Expect(err).NotTo(HaveOccurred())

		now := time.Now().UTC()
		Expect(gdb.Create(&invitationDatamodel.Invitation{
			ID:          "inv-1",
			TargetType:  "email",
			TargetValue: "user@example.com",
			GroupType:   "team",
			GroupID:     "team-1",
			InviterID:   "1",
			Status:      "pending",
			CreatedAt:   now,
			UpdatedAt:   now,
		}).Error).To(Succeed())

		var count int
		Expect(conn.GetContext(ctx, &count, `SELECT count(*) FROM invitations`)).To(Succeed())
		Expect(count).To(Equal(1))
	})

	It("enforces the status constraint", func() {
		_, err := database.Migrate(ctx, conn, internal.DriverSQLite)
		Expect(err).NotTo(HaveOccurred())

		_, err = conn.ExecContext(ctx, `INSERT INTO invitations
			(id, target_type, target_value, group_type, group_id, inviter_id, status, created_at, updated_at)
			VALUES ('x', 'email', 'a@example.com', 'team', 'team-1', '1', 'archived', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
		Expect(err).To(HaveOccurred())
	})
})
