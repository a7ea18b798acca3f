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
	"encoding/json"
	"fmt"
	"github.com/ade-scheduler/adecal/conf"
	"github.com/ade-scheduler/adecal/ics"
	"github.com/spf13/cobra"
	"io"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup CODE...",
	Short: "Print the calendar of one or more course codes",
	Long: "Look the course codes up once, using the same configuration as the server,\n" +
		"and print the activities as JSON, or as an iCalendar feed with --ics.",
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

var lookupICS bool

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().BoolVar(&lookupICS, "ics", false, "Print an iCalendar feed rather than JSON")
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg := mustInitConfig(envFilename)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("[Validate]: %w", err)
	}
	configureLogger(cfg)
	return lookup(cmd.Context(), cfg, args, lookupICS, cmd.OutOrStdout())
}

func lookup(ctx context.Context, cfg *conf.AppConfig, codes []string, asICS bool, out io.Writer) error {
	d, err := newDeps(ctx, cfg)
	if err != nil {
		return fmt.Errorf("[newDeps]: %w", err)
	}
	defer d.close(ctx)

	activities, err := d.resolver.ResolveMany(ctx, codes)
	if err != nil {
		return fmt.Errorf("[ResolveMany]: %w", err)
	}

	if asICS {
		tz, err := cfg.Calendar.Location()
		if err != nil {
			return fmt.Errorf("[Location]: %w", err)
		}
		cal := ics.Export(activities, ics.Options{
			ProdID:   cfg.Calendar.ProdID,
			Location: tz,
		})
		_, err = io.WriteString(out, ics.Serialize(cal))
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err = enc.Encode(activities); err != nil {
		return fmt.Errorf("[Encode]: %w", err)
	}
	return nil
}
