package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/agent-gateway/pkg/logger"
)

var _ = Describe("Logger", func() {
	Describe("New", func() {
		It("should create logger with info level", func() {
			log := logger.New("info", false, "dev")
			Expect(log).NotTo(BeNil())
		})

		It("should default to info for invalid level", func() {
			log := logger.New("invalid", false, "dev")
			Expect(log.Enabled(context.Background(), slog.LevelInfo)).To(BeTrue())
			Expect(log.Enabled(context.Background(), slog.LevelDebug)).To(BeFalse())
		})

		It("should respect debug level", func() {
			log := logger.New("debug", false, "dev")

			Expect(log.Enabled(context.Background(), slog.LevelDebug)).To(BeTrue())
			Expect(log.Enabled(context.Background(), slog.LevelInfo)).To(BeTrue())
		})

		It("should respect warn level", func() {
			log := logger.New("warn", false, "dev")

			Expect(log.Enabled(context.Background(), slog.LevelInfo)).To(BeFalse())
			Expect(log.Enabled(context.Background(), slog.LevelWarn)).To(BeTrue())
		})

		It("should respect error level", func() {
			log := logger.New("error", false, "dev")

			Expect(log.Enabled(context.Background(), slog.LevelWarn)).To(BeFalse())
			Expect(log.Enabled(context.Background(), slog.LevelError)).To(BeTrue())
		})
	})

	Describe("output format", func() {
		var buf *bytes.Buffer

		BeforeEach(func() {
			buf = &bytes.Buffer{}
		})

		It("should write JSON with the environment attribute in prod", func() {
			log := logger.New("info", false, "prod", logger.WithOutput(buf))
			log.Info("dispatched", slog.String("agent", "AutoGen"))

			var record map[string]any
			Expect(json.Unmarshal(buf.Bytes(), &record)).To(Succeed())
			Expect(record["msg"]).To(Equal("dispatched"))
			Expect(record["environment"]).To(Equal("prod"))
			Expect(record["agent"]).To(Equal("AutoGen"))
		})

		It("should write text outside prod", func() {
			log := logger.New("info", false, "dev", logger.WithOutput(buf))
			log.Info("dispatched")

			Expect(buf.String()).To(ContainSubstring("msg=dispatched"))
			Expect(buf.String()).To(ContainSubstring("environment=dev"))
		})
	})

	Describe("WithFile", func() {
		It("should mirror records into the log file", func() {
			dir := GinkgoT().TempDir()
			path := filepath.Join(dir, "gateway.log")
			buf := &bytes.Buffer{}

			log := logger.New("info", false, "dev",
				logger.WithOutput(buf),
				logger.WithFile(logger.FileOptions{Path: path, MaxSizeMB: 1}),
			)
			log.Info("mirrored")

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("mirrored"))
			Expect(buf.String()).To(ContainSubstring("mirrored"))
		})
	})
})
