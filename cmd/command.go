// Package cmd implements the operator CLI. Every subcommand performs one
// privileged request: authenticate through the authorization gate, open a
// fresh directory session, run the operation, close the session.
package cmd

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/helpdeskops/adconsole/pkg/debug"
	"github.com/helpdeskops/adconsole/pkg/directory"
	"github.com/helpdeskops/adconsole/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "adconsole",
	Short: "adconsole - Active Directory account administration",
	Long: `adconsole authenticates an operator against Active Directory, verifies
membership in the required administrative group (including nested membership),
and performs account lifecycle operations: create, search, reset password,
enable and disable.`,
	PersistentPreRun: initializeRuntime,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	viper.SetEnvPrefix("ADCONSOLE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	pf := rootCmd.PersistentFlags()
	pf.String("host", "", "Directory server host")
	pf.Int("port", 0, "Directory server port (default 389, or 636 with --ldaps)")
	pf.Bool("ldaps", false, "Connect over TLS from the start")
	pf.Bool("start-tls", true, "Upgrade the connection with StartTLS before binding")
	pf.Bool("insecure-skip-verify", true, "Skip TLS certificate validation (matches legacy posture; disable in hardened deployments)")
	pf.String("netbios-domain", "", "NetBIOS domain for simple binds (DOMAIN\\login)")
	pf.String("upn-suffix", "", "UPN suffix for new accounts (login@suffix)")
	pf.String("search-base", "", "Base DN for subtree searches")
	pf.String("required-group", "", "DN of the administrative group operators must belong to")
	pf.Duration("timeout", directory.DefaultTimeout, "Directory operation timeout")
	pf.String("user", "", "Operator login name (or ADCONSOLE_USER)")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.Int("debug-port", 0, "Debug HTTP port for metrics and pprof (0 disables)")
}

func initializeRuntime(cmd *cobra.Command, args []string) {
	f := NewFlagLoader(cmd)

	if level, err := zerolog.ParseLevel(f.String("log-level")); err == nil && level != zerolog.NoLevel {
		logger.SetLevel(level)
	}

	if err := directory.RegisterMetrics(debug.Registry()); err != nil {
		log.Debug().Err(err).Msg("Failed to register directory metrics")
	}

	if port := f.Int("debug-port"); port > 0 {
		go func() {
			addr := fmt.Sprintf(":%d", port)
			if err := http.ListenAndServe(addr, debug.GetMux()); err != nil {
				log.Warn().Err(err).Msg("Debug server stopped")
			}
		}()
		debug.SetReady()
	}
}

func Execute() {
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// dirTimeout is a safety net; commands also pass the configured timeout into
// the directory layer.
const dirTimeout = 30 * time.Second
