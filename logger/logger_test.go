package logger_test

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/relloyd/psvexport/logger"
)

var _ = Describe("Logger", func() {
	log := logger.NewLogger("test-service", "debug", true)

	parse := func(b *bytes.Buffer) map[string]interface{} {
		var actual map[string]interface{}
		Expect(json.Unmarshal(b.Bytes(), &actual)).To(Succeed())
		return actual
	}

	It("Should have `test-service` as service name", func() {
		logOutput := bytes.NewBufferString("")
		log.SetOutput(logOutput)
		log.Info("Testing")
		Expect(parse(logOutput)["service"]).To(Equal("test-service"))
	})

	It("Should have info as log level", func() {
		logOutput := bytes.NewBufferString("")
		log.SetOutput(logOutput)
		log.Info("Testing")
		Expect(parse(logOutput)["level"]).To(Equal("info"))
	})

	It("Should have warning as log level", func() {
		logOutput := bytes.NewBufferString("")
		log.SetOutput(logOutput)
		log.Warn("Testing")
		Expect(parse(logOutput)["level"]).To(Equal("warning"))
	})

	It("Should have error as log level with a stack trace", func() {
		logOutput := bytes.NewBufferString("")
		log.SetOutput(logOutput)
		log.Error("Testing")
		actual := parse(logOutput)
		Expect(actual["level"]).To(Equal("error"))
		Expect(actual["stackTrace"]).ToNot(BeNil())
	})

	It("Should have `Testing` as msg", func() {
		logOutput := bytes.NewBufferString("")
		log.SetOutput(logOutput)
		log.Info("Testing")
		Expect(parse(logOutput)["msg"]).To(Equal("Testing"))
	})

	It("Should carry fields added by WithField", func() {
		logOutput := bytes.NewBufferString("")
		log.SetOutput(logOutput)
		log.WithField("dataset", "orders").Info("Testing")
		actual := parse(logOutput)
		Expect(actual["dataset"]).To(Equal("orders"))
		Expect(actual["service"]).To(Equal("test-service"))
	})

	It("Should write to a dated log file in the log directory", func() {
		dir, err := ioutil.TempDir("", "px-log-")
		Expect(err).ToNot(HaveOccurred())
		defer os.RemoveAll(dir)
		now := time.Date(2020, 2, 28, 0, 0, 0, 0, time.UTC)
		l, err := logger.NewLoggerWithLogDir("px-test", "info", false, dir, now)
		Expect(err).ToNot(HaveOccurred())
		l.Info("to file")
		Expect(l.Close()).To(Succeed())
		b, err := ioutil.ReadFile(filepath.Join(dir, "px-test_20200228.log"))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(b)).To(ContainSubstring("to file"))
	})
})
