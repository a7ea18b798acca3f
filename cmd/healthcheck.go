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
	"github.com/spf13/cobra"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

var healthCheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Perform a health check against an adecal server",
	Long:  "Perform a health check against an adecal server",
	Run:   runHealthCheck,
}

var serverURL string

// exit is overridable for tests.
var exit = os.Exit

func init() {
	rootCmd.AddCommand(healthCheckCmd)

	healthCheckCmd.Flags().StringVar(&serverURL, "server_url", "", "The server URL and port of an adecal server")
	_ = healthCheckCmd.MarkFlagRequired("server_url")
}

func runHealthCheck(cmd *cobra.Command, args []string) {
	exit(runHealthCheckInternal(cmd.Context(), serverURL))
}

func runHealthCheckInternal(ctx context.Context, serverURL string) (exitCode int) {
	client := http.Client{Timeout: time.Second * 5}

	pingURL, err := url.JoinPath(serverURL, "adecal/api/ping")
	if err != nil {
		fmt.Println("bad server URL:", err) //nolint:forbidigo
		return 2
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pingURL, nil)
	if err != nil {
		fmt.Println("failed to build request:", err) //nolint:forbidigo
		return 2
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Println("server unreachable:", err) //nolint:forbidigo
		return 4
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		fmt.Println("failed to read response:", err) //nolint:forbidigo
		return 4
	}

	if resp.StatusCode != http.StatusOK {
		fmt.Println("wanted status code 200, got", resp.StatusCode) //nolint:forbidigo
		return 5
	}
	if strings.TrimSpace(string(body)) != "ack" {
		fmt.Printf("wanted response of 'ack', got '%v'\n", string(body)) //nolint:forbidigo
		return 6
	}
	fmt.Println("OK") //nolint:forbidigo
	return 0
}
