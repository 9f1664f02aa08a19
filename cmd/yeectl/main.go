// Package main provides yeectl, a command-line client for a local gateway.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/urmzd/yeehome/pkg/app"
	"github.com/urmzd/yeehome/pkg/command"
	"github.com/urmzd/yeehome/pkg/config"
	"github.com/urmzd/yeehome/pkg/gateway"
	"github.com/urmzd/yeehome/pkg/logging"
	"github.com/urmzd/yeehome/pkg/topology"
)

var version = "dev"

func main() {
	var configPath, host string

	rootCmd := &cobra.Command{
		Use:           "yeectl",
		Short:         "Discover and control a smart-home gateway on the LAN",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "yeehome.yaml", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&host, "host", "", "Gateway address, skips discovery")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if host != "" {
			cfg.Gateway.Host = host
		}
		logging.Setup(cfg.Logging, os.Stderr)
		return cfg, nil
	}

	// connected runs fn with an open gateway session.
	connected := func(ctx context.Context, fn func(*app.App) error) error {
		cfg, err := load()
		if err != nil {
			return err
		}
		a, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.Connect(ctx); err != nil {
			return err
		}
		return fn(a)
	}

	discoverCmd := &cobra.Command{
		Use:   "discover",
		Short: "List gateways answering the discovery broadcast",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			infos, err := gateway.DiscoverAll(cmd.Context(), gateway.DiscoverOptions{
				BroadcastAddress: cfg.Gateway.BroadcastAddress,
				Timeout:          cfg.Gateway.DiscoveryTimeoutDuration(),
			})
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Println("No gateway answered.")
				return nil
			}
			for _, info := range infos {
				printGatewayInfo(os.Stdout, info)
			}
			return nil
		},
	}

	topologyCmd := &cobra.Command{
		Use:   "topology",
		Short: "Print the gateway topology",
		RunE: func(cmd *cobra.Command, args []string) error {
			cached, _ := cmd.Flags().GetBool("cached")
			asJSON, _ := cmd.Flags().GetBool("json")

			show := func(nodes []topology.NodeInfo) error {
				if asJSON {
					return printJSON(nodes)
				}
				fmt.Println(topology.Describe(nodes))
				return nil
			}

			if cached {
				cfg, err := load()
				if err != nil {
					return err
				}
				a, err := app.New(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer a.Close()
				nodes, err := a.Controller.CachedTopology(cmd.Context())
				if err != nil {
					return err
				}
				return show(nodes)
			}

			return connected(cmd.Context(), func(a *app.App) error {
				nodes, err := a.Controller.Topology(cmd.Context())
				if err != nil {
					return err
				}
				return show(nodes)
			})
		},
	}
	topologyCmd.Flags().Bool("cached", false, "Read the stored snapshot without contacting the gateway")
	topologyCmd.Flags().Bool("json", false, "Print nodes as JSON")

	var intent command.Intent
	var params []string
	execCmd := &cobra.Command{
		Use:   "exec",
		Short: "Execute an intent",
		Long: `Execute an intent given as flags or as raw model output.

  yeectl exec --domain light --name 客厅灯 --action turn_on
  yeectl exec --text '{"domain":"scene","name":"回家模式","action":"execute"}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if text, _ := cmd.Flags().GetString("text"); text != "" {
				extracted, err := command.ExtractIntent(text)
				if err != nil {
					return err
				}
				intent = *extracted
			}
			parsed, err := parseParams(params)
			if err != nil {
				return err
			}
			if len(parsed) > 0 {
				intent.Parameters = parsed
			}

			return connected(cmd.Context(), func(a *app.App) error {
				res, err := a.Controller.Execute(cmd.Context(), intent)
				if err != nil {
					return err
				}
				fmt.Println(res.Message)
				return nil
			})
		},
	}
	execCmd.Flags().StringVar(&intent.Domain, "domain", "", "Intent domain ("+strings.Join(command.Domains(), ", ")+")")
	execCmd.Flags().StringVar(&intent.Name, "name", "", "Device, scene or room name")
	execCmd.Flags().StringVar(&intent.Action, "action", "", "turn_on, turn_off or a custom action")
	execCmd.Flags().StringVar(&intent.Location, "location", "", `Room scope, "all" for every room`)
	execCmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Extra property as key=value, repeatable")
	execCmd.Flags().String("text", "", "Raw model output to extract the intent from")

	rootCmd.AddCommand(discoverCmd, topologyCmd, execCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// parseParams turns key=value pairs into intent parameters. Numbers and
// booleans keep their type.
func parseParams(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q, want key=value", p)
		}
		switch {
		case v == "true" || v == "false":
			out[k] = v == "true"
		default:
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				out[k] = n
			} else {
				out[k] = v
			}
		}
	}
	return out, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// printGatewayInfo writes the gateway address and its announced fields in
// key order.
func printGatewayInfo(w io.Writer, info gateway.Info) {
	fmt.Fprintf(w, "%s\n", info.Address())
	keys := make([]string, 0, len(info.Fields))
	for k := range info.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-10s %s\n", k+":", info.Fields[k])
	}
}
