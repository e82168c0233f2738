// Command pongserver runs the authoritative Pong match server: TLS-terminated WebSocket
// transport, hello/auth handshake, match-making, and a fixed-tick game state machine, with
// results persisted to PostgreSQL.
package main

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/transcendence/pongserv/config"
	"github.com/transcendence/pongserv/internal/accept"
	"github.com/transcendence/pongserv/internal/logging"
	"github.com/transcendence/pongserv/internal/serverrun"
	"github.com/transcendence/pongserv/internal/store"
	"github.com/transcendence/pongserv/internal/tlsconfig"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()
	var consoleChannel string

	cmd := &cobra.Command{
		Use:   "pongserver tls_private_key tls_certificate",
		Short: "Authoritative server for matched and local 1v1 Pong games",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.TLSPrivateKeyPath = args[0]
			cfg.TLSCertificatePath = args[1]
			switch consoleChannel {
			case "out":
				cfg.ConsoleChannel = config.ConsoleChannelOut
			case "err":
				cfg.ConsoleChannel = config.ConsoleChannelErr
			default:
				return fmt.Errorf("invalid --console-channel %q, must be out or err", consoleChannel)
			}
			return run(cfg)
		},
	}

	cmd.Flags().Uint16VarP(&cfg.Port, "port", "p", cfg.Port, "port number to bind the listening socket on")
	cmd.Flags().StringVarP(&cfg.SocketPath, "socket-path", "s", cfg.SocketPath, "path of the PostgreSQL socket used to connect to the database engine")
	cmd.Flags().StringVarP(&cfg.LogFolder, "log-folder", "l", cfg.LogFolder, "folder logs are written to; created if missing")
	cmd.Flags().StringVarP(&consoleChannel, "console-channel", "c", string(cfg.ConsoleChannel), "where printed logging is sent: out or err")
	return cmd
}

func run(cfg *config.Config) error {
	logs, err := logging.Setup(cfg.LogFolder, cfg.ConsoleChannel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error while configuring logging: %v\n", err)
		return err
	}
	logger := logs.Base()

	tlsConfig, err := tlsconfig.Load(cfg.TLSPrivateKeyPath, cfg.TLSCertificatePath)
	if err != nil {
		logger.Error().Err(err).Msg("error while creating a TLS config for the server")
		return err
	}

	ctx := context.Background()
	db, err := store.Connect(ctx, cfg.SocketPath)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to the database")
		return err
	}
	defer db.Close()

	listenAddr := &net.TCPAddr{IP: net.IPv4zero, Port: int(cfg.Port)}
	listener, err := net.ListenTCP("tcp", listenAddr)
	if err != nil {
		logger.Error().Err(err).Str("address", listenAddr.String()).Msg("failed to bind to the listen address")
		return err
	}
	logger.Info().Str("address", listenAddr.String()).Msg("server started, listening")

	generator := accept.NewGenerator(listener, tlsConfig, logs.Component("accept"), logs.Component("tls"), logs.Component("transport"))
	return serverrun.Run(listener, generator, db, logs)
}
