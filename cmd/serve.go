//
// See the file COPYRIGHT for copyright information.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package cmd

import (
	"context"
	"fmt"
	"github.com/ade-scheduler/adecal/api"
	"github.com/ade-scheduler/adecal/conf"
	"github.com/ade-scheduler/adecal/lib/log"
	"github.com/spf13/cobra"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	envfileFlagName    = "envfile"
	envFileDefaultName = ".env"

	printConfigFlagName = "print-config"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Launch the adecal server",
	Long: "Launch the adecal server\n\n" +
		"Configuration will be read from the env file, and can be overridden by environment variables.",
	Run: runServer,
}

func runServer(cmd *cobra.Command, args []string) {
	cfg := mustInitConfig(envFilename)
	os.Exit(runServerInternal(context.Background(), cfg, printConfig, make(chan string, 1)))
}

// runServerInternal starts the server and blocks until it is terminated.
//
// The supplied channel will be provided with the address of the server at the time when
// the server is started and ready to accept connections.
func runServerInternal(
	ctx context.Context, unvalidatedCfg *conf.AppConfig,
	printConfig bool, listeningAddr chan<- string,
) (exitCode int) {
	must(unvalidatedCfg.Validate())
	cfg := unvalidatedCfg

	configureLogger(cfg)

	if printConfig {
		stderrPrintf("Here's the final redacted configuration:\n\n%v\n\n", cfg.PrintRedacted())
	}

	tz, err := cfg.Calendar.Location()
	must(err)
	d, err := newDeps(ctx, cfg)
	must(err)
	if d.warmer != nil {
		d.warmer.Start()
		slog.Info("Token warmer started", "schedule", cfg.TokenCache.WarmSchedule)
	}

	notifyCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)

	mux := api.AddToMux(http.NewServeMux(), cfg, d.resolver, tz)

	s := &http.Server{
		Handler:     mux,
		ReadTimeout: 30 * time.Second,
		// Room for the slowest upstream round trips on top of the request timeout.
		WriteTimeout:   cfg.Core.RequestTimeout + 30*time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	addr := fmt.Sprintf("%v:%v", cfg.Core.Host, cfg.Core.Port)
	listener, err := net.Listen("tcp", addr)
	must(err)
	addr = fmt.Sprintf("%v:%v", cfg.Core.Host, listener.Addr().(*net.TCPAddr).Port)

	go func() {
		err := s.Serve(listener)
		slog.Error("Serve", "err", err)
	}()

	slog.Info("adecal server is ready for connections", "addr", addr)
	slog.Info(fmt.Sprintf("Try http://%v/adecal/api/calendar/LEPL1104", addr))

	listeningAddr <- addr
	close(listeningAddr)
	// The goroutine will hang here until the NotifyContext is done
	<-notifyCtx.Done()
	stop()
	slog.Error("Shutting down gracefully, press Ctrl+C again to force")

	// Tell the server to shut down, giving it this much time to do so gracefully.
	// Don't parent this ctx on the notifyCtx, because it's already done.
	timeoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	err = s.Shutdown(timeoutCtx)
	slog.Error("Server shut down", "err", err)
	d.close(timeoutCtx)
	return 69
}

func configureLogger(cfg *conf.AppConfig) {
	var logLevel slog.Level
	must(logLevel.UnmarshalText([]byte(cfg.Core.LogLevel)))
	logger := slog.New(
		log.NewHandler(
			&slog.HandlerOptions{Level: logLevel},
		),
	)
	slog.SetDefault(logger)
}

var (
	envFilename string
	printConfig bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&printConfig, printConfigFlagName, true,
		"Whether to print the redacted configuration on server startup")
}

// must logs an error and panics. This should only be done for
// startup errors, not after the server is up and running.
func must(err error) {
	if err != nil {
		panic("got a startup error: " + err.Error())
	}
}

func stderrPrintf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
}
