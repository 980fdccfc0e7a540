package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/frahmantamala/vortex-demo/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

var _ = Describe("Logger", func() {
	It("should write JSON in production", func() {
		buf := &bytes.Buffer{}
		logger.InitWithOptions(logger.Options{Env: "production", Output: buf})

		logger.LoggerWrapper().Info("hello", "key", "value")

		var entry map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &entry)).To(Succeed())
		Expect(entry["msg"]).To(Equal("hello"))
		Expect(entry["key"]).To(Equal("value"))
	})

	It("should honour an explicit level", func() {
		buf := &bytes.Buffer{}
		logger.InitWithOptions(logger.Options{Env: "development", Level: "warn", Output: buf})

		logger.LoggerWrapper().Info("dropped")
		Expect(buf.Len()).To(BeZero())

		logger.LoggerWrapper().Warn("kept")
		Expect(buf.String()).To(ContainSubstring("kept"))
	})

	It("should parse levels", func() {
		Expect(logger.ParseLevel("DEBUG")).To(Equal(slog.LevelDebug))
		Expect(logger.ParseLevel("warning")).To(Equal(slog.LevelWarn))
		Expect(logger.ParseLevel("error")).To(Equal(slog.LevelError))
		Expect(logger.ParseLevel("bogus")).To(Equal(slog.LevelInfo))
	})

	It("should carry fields through the context", func() {
		buf := &bytes.Buffer{}
		base := slog.New(slog.NewJSONHandler(buf, nil))

		ctx := logger.Into(context.Background(), base)
		ctx = logger.With(ctx, "request_id", "abc")
		logger.From(ctx).Info("scoped")

		var entry map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &entry)).To(Succeed())
		Expect(entry["request_id"]).To(Equal("abc"))
	})

	It("should fall back to the process logger", func() {
		Expect(logger.From(context.Background())).NotTo(BeNil())
	})
})
