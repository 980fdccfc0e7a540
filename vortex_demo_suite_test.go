package main_test

import (
	"strings"
	"testing"

	"github.com/frahmantamala/vortex-demo/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"
)

func TestVortexDemo(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "VortexDemo Suite")
}

var _ = Describe("config.yml", func() {
	It("loads into a valid development configuration", func() {
		v := viper.New()
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		Expect(v.ReadInConfig()).To(Succeed())

		var cfg internal.Config
		Expect(v.Unmarshal(&cfg)).To(Succeed())
		cfg.SetDefaults()

		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.IsProduction()).To(BeFalse())
		Expect(cfg.Server.Port).To(Equal(3000))
		Expect(cfg.Database.Driver).To(Equal(internal.DriverSQLite))
		Expect(cfg.Security.SessionTTL.Hours()).To(BeNumerically("==", 24))
		Expect(cfg.Vortex.BasePath).To(Equal("/api/vortex"))
	})
})
