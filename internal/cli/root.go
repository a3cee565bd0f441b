package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// buildRootCmd is a convenience for help-only fallbacks.
func buildRootCmd() *cobra.Command { return buildRootCmdWith(DefaultConfig()) }

// buildRootCmdWith constructs the Cobra command tree wired to the fn* actions.
func buildRootCmdWith(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "nimctl",
		Short:         "Manage a local NIM inference server and its LoRA adapters",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags -> Config
	var configFile string
	root.PersistentFlags().StringVar(&configFile, "config", envStr("NIMCTL_CONFIG", ""), "Config file (json|yaml|toml)")
	root.PersistentFlags().String("log-level", cfg.LogLvl, "Log level: debug|info|warn|error|off (defaults NIMCTL_LOG_LEVEL or info)")
	root.PersistentFlags().String("log-file", cfg.LogFile, "Also write logs to this file, rotated")
	root.PersistentFlags().String("image", cfg.Image, "NIM container image")
	root.PersistentFlags().String("container", cfg.Container, "Container name")
	root.PersistentFlags().Int("port", cfg.Port, "Published host port")
	root.PersistentFlags().String("base-url", cfg.BaseURL, "Talk to this URL instead of the managed container")
	root.PersistentFlags().String("env-file", cfg.EnvFile, "Credentials file to load")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			if err := cfg.ApplyFile(configFile); err != nil {
				return err
			}
		}
		flags := cmd.InheritedFlags()
		if cmd == root {
			flags = cmd.Flags()
		}
		if f := flags.Lookup("log-level"); f != nil && f.Changed {
			cfg.LogLvl = f.Value.String()
		}
		if f := flags.Lookup("log-file"); f != nil && f.Changed {
			cfg.LogFile = f.Value.String()
		}
		if f := flags.Lookup("image"); f != nil && f.Changed {
			cfg.Image = f.Value.String()
		}
		if f := flags.Lookup("container"); f != nil && f.Changed {
			cfg.Container = f.Value.String()
		}
		if f := flags.Lookup("port"); f != nil && f.Changed {
			var n int
			_, _ = fmt.Sscanf(f.Value.String(), "%d", &n)
			if n != 0 {
				cfg.Port = n
			}
		}
		if f := flags.Lookup("base-url"); f != nil && f.Changed {
			cfg.BaseURL = f.Value.String()
		}
		if f := flags.Lookup("env-file"); f != nil && f.Changed {
			cfg.EnvFile = f.Value.String()
		}
		setupLogging(cfg.LogLvl, cfg.LogFile)
		return nil
	}

	// env group
	envCmd := &cobra.Command{Use: "env", Short: "Credential handling", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("env requires a subcommand: check")
	}}
	var envOverride bool
	envCheckCmd := &cobra.Command{Use: "check", Short: "Load the .env file and report which credentials are set", Example: "  nimctl env check\n  nimctl env check --override", RunE: func(cmd *cobra.Command, args []string) error {
		return fnEnvCheck(cfg, envOverride)
	}}
	envCheckCmd.Flags().BoolVar(&envOverride, "override", false, "Let .env values replace already-set environment variables")
	envCmd.AddCommand(envCheckCmd)
	root.AddCommand(envCmd)

	// server group
	serverCmd := &cobra.Command{Use: "server", Short: "Manage the inference container", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("server requires a subcommand: login|pull|start|wait|stop|status|logs")
	}}
	serverLoginCmd := &cobra.Command{Use: "login", Short: "Authenticate docker against nvcr.io with NGC_API_KEY", RunE: func(cmd *cobra.Command, args []string) error {
		return fnServerLogin(cmd.Context(), cfg)
	}}
	serverPullCmd := &cobra.Command{Use: "pull", Short: "Download the server image ahead of time", RunE: func(cmd *cobra.Command, args []string) error {
		return fnServerPull(cmd.Context(), cfg)
	}}
	var startNoWait bool
	var startTimeout time.Duration
	serverStartCmd := &cobra.Command{Use: "start", Short: "Launch the container and wait until it serves traffic", Example: "  nimctl server start\n  nimctl server start --no-wait", RunE: func(cmd *cobra.Command, args []string) error {
		return fnServerStart(cmd.Context(), cfg, !startNoWait, startTimeout)
	}}
	serverStartCmd.Flags().BoolVar(&startNoWait, "no-wait", false, "Return immediately instead of waiting for readiness")
	serverStartCmd.Flags().DurationVar(&startTimeout, "timeout", 15*time.Minute, "How long to wait for readiness")
	var waitTimeout time.Duration
	serverWaitCmd := &cobra.Command{Use: "wait", Short: "Block until /v1/health/ready returns 200", RunE: func(cmd *cobra.Command, args []string) error {
		return fnServerWait(cmd.Context(), cfg, waitTimeout)
	}}
	serverWaitCmd.Flags().DurationVar(&waitTimeout, "timeout", 15*time.Minute, "How long to wait for readiness")
	var stopRemove, stopVolumes bool
	serverStopCmd := &cobra.Command{Use: "stop", Short: "Stop the container", Example: "  nimctl server stop\n  nimctl server stop --rm --volumes", RunE: func(cmd *cobra.Command, args []string) error {
		return fnServerStop(cmd.Context(), cfg, stopRemove, stopVolumes)
	}}
	serverStopCmd.Flags().BoolVar(&stopRemove, "rm", false, "Also remove the container")
	serverStopCmd.Flags().BoolVar(&stopVolumes, "volumes", false, "With --rm, also remove the cache and adapter volumes")
	serverStatusCmd := &cobra.Command{Use: "status", Short: "Show container state and API readiness", RunE: func(cmd *cobra.Command, args []string) error {
		st, err := fnServerStatus(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		fmt.Printf("container: %s\n", st.Container)
		fmt.Printf("state:     %s\n", st.State)
		if st.IPAddress != "" {
			fmt.Printf("ip:        %s\n", st.IPAddress)
		}
		fmt.Printf("url:       %s\n", st.BaseURL)
		fmt.Printf("ready:     %v\n", st.Ready)
		for _, m := range st.Models {
			fmt.Printf("model:     %s\n", m.ID)
		}
		return nil
	}}
	var logsTail int
	serverLogsCmd := &cobra.Command{Use: "logs", Short: "Print recent container logs", RunE: func(cmd *cobra.Command, args []string) error {
		return fnServerLogs(cmd.Context(), cfg, logsTail)
	}}
	serverLogsCmd.Flags().IntVar(&logsTail, "tail", 100, "Number of trailing lines")
	serverCmd.AddCommand(serverLoginCmd, serverPullCmd, serverStartCmd, serverWaitCmd, serverStopCmd, serverStatusCmd, serverLogsCmd)
	root.AddCommand(serverCmd)

	// models group
	modelsCmd := &cobra.Command{Use: "models", Short: "Query the server model registry", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("models requires a subcommand: list")
	}}
	modelsListCmd := &cobra.Command{Use: "list", Short: "List models the server currently routes", RunE: func(cmd *cobra.Command, args []string) error {
		return fnModelsList(cmd.Context(), cfg)
	}}
	modelsCmd.AddCommand(modelsListCmd)
	root.AddCommand(modelsCmd)

	// chat
	var chatOpts chatOptions
	chatCmd := &cobra.Command{Use: "chat <prompt>", Short: "Send a chat completion to the server", Example: "  nimctl chat \"Write a limerick about GPUs\"\n  nimctl chat --stream --model my-lora \"Summarize this\"\n  nimctl chat --hosted \"Compare against the cloud endpoint\"", Args: cobra.MinimumNArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		prompt := args[0]
		for _, a := range args[1:] {
			prompt += " " + a
		}
		return fnChat(cmd.Context(), cfg, chatOpts, prompt)
	}}
	chatCmd.Flags().StringVar(&chatOpts.Model, "model", "", "Model or adapter to route to (default: configured, else first listed)")
	chatCmd.Flags().StringVar(&chatOpts.System, "system", "", "System message")
	chatCmd.Flags().IntVar(&chatOpts.MaxTokens, "max-tokens", 256, "Completion token cap")
	chatCmd.Flags().Float64Var(&chatOpts.Temperature, "temperature", 0.2, "Sampling temperature")
	chatCmd.Flags().Float64Var(&chatOpts.TopP, "top-p", 0.7, "Nucleus sampling mass")
	chatCmd.Flags().BoolVar(&chatOpts.Stream, "stream", false, "Print tokens as they arrive")
	chatCmd.Flags().BoolVar(&chatOpts.Hosted, "hosted", false, "Use the hosted NVIDIA endpoint with NVIDIA_API_KEY")
	root.AddCommand(chatCmd)

	// adapter group
	adapterCmd := &cobra.Command{Use: "adapter", Short: "Manage LoRA adapters in the shared volume", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("adapter requires a subcommand: deploy|list|remove|watch")
	}}
	var deployCkpt, deployName string
	var deployWait bool
	var deployTimeout time.Duration
	adapterDeployCmd := &cobra.Command{Use: "deploy", Short: "Copy the newest checkpoint into the adapter volume", Example: "  nimctl adapter deploy\n  nimctl adapter deploy --checkpoint ~/results/run7/checkpoints/last.nemo --name run7 --wait", RunE: func(cmd *cobra.Command, args []string) error {
		return fnAdapterDeploy(cmd.Context(), cfg, deployCkpt, deployName, deployWait, deployTimeout)
	}}
	adapterDeployCmd.Flags().StringVar(&deployCkpt, "checkpoint", "", "Checkpoint file or glob (default: configured glob)")
	adapterDeployCmd.Flags().StringVar(&deployName, "name", "", "Adapter name (default: derived from the checkpoint file)")
	adapterDeployCmd.Flags().BoolVar(&deployWait, "wait", false, "Wait until the server lists the adapter")
	adapterDeployCmd.Flags().DurationVar(&deployTimeout, "timeout", 5*time.Minute, "How long to wait with --wait")
	adapterListCmd := &cobra.Command{Use: "list", Short: "List deployed adapters and whether the server loaded them", RunE: func(cmd *cobra.Command, args []string) error {
		return fnAdapterList(cmd.Context(), cfg)
	}}
	adapterRemoveCmd := &cobra.Command{Use: "remove <name>", Short: "Delete an adapter from the volume", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		return fnAdapterRemove(cmd.Context(), cfg, args[0])
	}}
	var watchDir, watchPattern string
	var watchSettle time.Duration
	adapterWatchCmd := &cobra.Command{Use: "watch <dir>", Short: "Auto-deploy checkpoints as a training job writes them", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		watchDir = args[0]
		return fnAdapterWatch(cmd.Context(), cfg, watchDir, watchPattern, watchSettle)
	}}
	adapterWatchCmd.Flags().StringVar(&watchPattern, "pattern", "*.nemo", "Filename pattern to deploy")
	adapterWatchCmd.Flags().DurationVar(&watchSettle, "settle", 10*time.Second, "Quiet period before a file counts as fully written")
	adapterCmd.AddCommand(adapterDeployCmd, adapterListCmd, adapterRemoveCmd, adapterWatchCmd)
	root.AddCommand(adapterCmd)

	// proxy
	var proxyAddr string
	var proxyCORS bool
	var proxyOrigins []string
	proxyCmd := &cobra.Command{Use: "proxy", Short: "Serve an observability proxy in front of the server", Example: "  nimctl proxy --addr :8800\n  nimctl proxy --cors --cors-origin http://localhost:3000", RunE: func(cmd *cobra.Command, args []string) error {
		return fnProxyServe(cmd.Context(), cfg, proxyAddr, proxyCORS, proxyOrigins)
	}}
	proxyCmd.Flags().StringVar(&proxyAddr, "addr", envStr("NIMCTL_PROXY_ADDR", ":8800"), "Listen address")
	proxyCmd.Flags().BoolVar(&proxyCORS, "cors", envBool("NIMCTL_PROXY_CORS", false), "Enable CORS")
	proxyCmd.Flags().StringSliceVar(&proxyOrigins, "cors-origin", nil, "Allowed CORS origins (repeatable; default *)")
	root.AddCommand(proxyCmd)

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(os.Stdout, true) }})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenPowerShellCompletionWithDesc(os.Stdout) }})
	root.AddCommand(completionCmd)

	return root
}

// MainWithArgs is a testable variant of Main that accepts args explicitly.
// It returns an exit code (0 for success, non-zero on error).
func MainWithArgs(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := buildRootCmdWith(DefaultConfig())
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}

// Main returns an exit code for use by cmd/nimctl.
func Main() int { return MainWithArgs(os.Args[1:]) }
