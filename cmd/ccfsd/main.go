package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccfs/ccfs/pkg/cluster"
	"github.com/ccfs/ccfs/pkg/collector"
	"github.com/ccfs/ccfs/pkg/config"
	"github.com/ccfs/ccfs/pkg/gateway"
	"github.com/ccfs/ccfs/pkg/liveness"
	"github.com/ccfs/ccfs/pkg/log"
	"github.com/ccfs/ccfs/pkg/metrics"
	"github.com/ccfs/ccfs/pkg/raftnode"
	"github.com/ccfs/ccfs/pkg/replication"
	"github.com/ccfs/ccfs/pkg/snapshotjob"
)

var (
	// Version is set via ldflags at build time.
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ccfsd",
	Short: "CCFS coordinator — the Raft-replicated metadata plane for a chunked file store",
	Long: `ccfsd runs one coordinator of a CCFS cluster: the namespace tree,
file index and chunk index, replicated across coordinators with Raft,
and exported over HTTP for chunk servers and clients to talk to.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("ccfsd version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, BuildTime))
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON instead of console-formatted text")
	cobra.OnInitialize(initLogging)

	serveCmd.Flags().String("config", "", "path to the coordinator's YAML config file (required)")
	serveCmd.Flags().String("node-id", "", "Raft server ID for this node (defaults to config's server_id)")
	serveCmd.Flags().String("raft-bind-addr", "", "bind address for the Raft transport (defaults to host with port+1)")
	serveCmd.Flags().String("data-dir", "./data", "directory for Raft's log, stable store and snapshots")
	serveCmd.Flags().Bool("bootstrap", false, "bootstrap a brand new single-node cluster")
	serveCmd.Flags().String("join", "", "address of an existing coordinator's /raft/ws endpoint to announce to")
	_ = serveCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(serveCmd)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOutput, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{Level: log.Level(level), JSONOutput: jsonOutput})
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run this coordinator",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		nodeID, _ := cmd.Flags().GetString("node-id")
		raftBindAddr, _ := cmd.Flags().GetString("raft-bind-addr")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		bootstrap, _ := cmd.Flags().GetBool("bootstrap")
		joinAddr, _ := cmd.Flags().GetString("join")

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if nodeID == "" {
			nodeID = cfg.ServerID
		}
		if raftBindAddr == "" {
			raftBindAddr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port+1)
		}

		logger := log.WithNodeID(nodeID)
		logger.Info().Str("gateway_addr", cfg.Address()).Str("raft_addr", raftBindAddr).Msg("starting ccfsd")
		metrics.SetVersion(Version)

		node, err := raftnode.New(raftnode.Config{
			NodeID:   nodeID,
			BindAddr: raftBindAddr,
			DataDir:  dataDir,
		})
		if err != nil {
			return fmt.Errorf("create raft node: %w", err)
		}

		if bootstrap {
			if err := node.Bootstrap(); err != nil {
				return fmt.Errorf("bootstrap cluster: %w", err)
			}
			metrics.RegisterComponent("raft", true, "bootstrapped")
		} else {
			if err := node.Join(); err != nil {
				return fmt.Errorf("join cluster: %w", err)
			}
			metrics.RegisterComponent("raft", false, "waiting to be added as voter")
		}

		clusterRegistry := cluster.NewRegistry(nodeID, raftBindAddr, cfg.Address(), node.AddVoter)
		if joinAddr != "" {
			wsURL := "ws://" + joinAddr + "/raft/ws"
			if _, err := cluster.Announce(wsURL, clusterRegistry, raftBindAddr, cfg.Address()); err != nil {
				logger.Warn().Err(err).Str("join_addr", joinAddr).Msg("failed to announce to cluster directory")
			}
		}

		livenessRegistry := liveness.NewRegistry()
		metrics.RegisterComponent("liveness", true, "ready")

		snapJob := snapshotjob.New(node.FSM(), cfg.SnapshotDirPath, cfg.SnapshotFileName, time.Duration(cfg.SnapshotInterval)*time.Second)
		snapJob.Start()

		replicationCtrl := replication.NewController(node.FSM(), livenessRegistry)
		replicationCtrl.Interval = time.Duration(cfg.ReplicationInterval) * time.Second
		replicationCtrl.Start()

		metricsCollector := collector.New(node, livenessRegistry)
		metricsCollector.Start()

		gw := gateway.New(node, livenessRegistry, clusterRegistry)
		httpServer := &http.Server{Addr: cfg.Address(), Handler: gw.Router()}

		errCh := make(chan error, 1)
		go func() {
			logger.Info().Str("addr", cfg.Address()).Msg("gateway listening")
			metrics.RegisterComponent("gateway", true, "ready")
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			logger.Info().Msg("shutting down")
		case err := <-errCh:
			logger.Error().Err(err).Msg("gateway failed")
		}

		replicationCtrl.Stop()
		snapJob.Stop()
		metricsCollector.Stop()
		_ = httpServer.Close()
		if err := node.Shutdown(); err != nil {
			return fmt.Errorf("shutdown raft node: %w", err)
		}
		logger.Info().Msg("shutdown complete")
		return nil
	},
}
