package cliconfig_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/codequest/cmd/codequest/cliconfig"
)

var _ = Describe("ResolveConfigPath", func() {
	BeforeEach(func() {
		GinkgoT().Setenv("HOME", GinkgoT().TempDir())
		GinkgoT().Setenv(cliconfig.EnvConfigPath, "")
	})

	It("prefers the flag value", func() {
		GinkgoT().Setenv(cliconfig.EnvConfigPath, "/from/env.toml")

		path, err := cliconfig.ResolveConfigPath("/from/flag.toml")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/from/flag.toml"))
	})

	It("falls back to the environment", func() {
		GinkgoT().Setenv(cliconfig.EnvConfigPath, "/from/env.toml")

		path, err := cliconfig.ResolveConfigPath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/from/env.toml"))
	})

	It("uses the home config when present", func() {
		home := os.Getenv("HOME")
		Expect(os.MkdirAll(filepath.Join(home, ".codequest"), 0o755)).To(Succeed())
		want := filepath.Join(home, ".codequest", "config.toml")
		Expect(os.WriteFile(want, []byte(""), 0o600)).To(Succeed())

		path, err := cliconfig.ResolveConfigPath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(want))
	})

	It("returns an empty path when nothing is configured", func() {
		path, err := cliconfig.ResolveConfigPath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(BeEmpty())
	})
})

var _ = Describe("Flags", func() {
	BeforeEach(func() {
		GinkgoT().Setenv("HOME", GinkgoT().TempDir())
		GinkgoT().Setenv(cliconfig.EnvConfigPath, "")
	})

	newCmd := func(flags *cliconfig.Flags) *cobra.Command {
		cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
		flags.Register(cmd)
		return cmd
	}

	It("overrides config values with flags that were set", func() {
		path := filepath.Join(GinkgoT().TempDir(), "config.toml")
		Expect(os.WriteFile(path, []byte("[ollama]\nmodel = \"from-file\"\nurl = \"http://file:11434\"\n"), 0o600)).To(Succeed())

		flags := &cliconfig.Flags{}
		cmd := newCmd(flags)
		Expect(cmd.ParseFlags([]string{"--config", path, "--model", "from-flag"})).To(Succeed())

		cfg, err := flags.Load(cmd)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Ollama.Model).To(Equal("from-flag"))
		Expect(cfg.Ollama.URL).To(Equal("http://file:11434"))
	})

	It("rejects an empty override", func() {
		flags := &cliconfig.Flags{}
		cmd := newCmd(flags)
		Expect(cmd.ParseFlags([]string{"--model", ""})).To(Succeed())

		_, err := flags.Load(cmd)
		Expect(err).To(MatchError(ContainSubstring("ollama.model")))
	})
})
