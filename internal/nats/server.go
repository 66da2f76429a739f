package nats

import (
	"errors"
	"time"

	"github.com/mark3labs/stepform/internal/logger"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	readyTimeout    = 4 * time.Second
	drainTimeout    = 2 * time.Second
	shutdownTimeout = 5 * time.Second
)

// StartEmbeddedNATS starts an in-process NATS server with JetStream enabled,
// storing its files under dataDir. The server does not listen on any port.
func StartEmbeddedNATS(dataDir string) (*server.Server, error) {
	logger.Debug("Starting embedded NATS server with data dir: %s", dataDir)

	ns, err := server.NewServer(&server.Options{
		JetStream:  true,
		StoreDir:   dataDir,
		DontListen: true,
		NoSigs:     true,
	})
	if err != nil {
		logger.Error("Failed to create NATS server: %v", err)
		return nil, err
	}

	go ns.Start()

	if !ns.ReadyForConnections(readyTimeout) {
		logger.Error("NATS server failed to start within %s", readyTimeout)
		ns.Shutdown()
		return nil, errors.New("nats server failed to start within timeout")
	}

	logger.Debug("NATS server ready for connections")
	return ns, nil
}

// ConnectInProcess opens a connection that talks to ns without a socket.
func ConnectInProcess(ns *server.Server) (*nats.Conn, error) {
	conn, err := nats.Connect("", nats.InProcessServer(ns))
	if err != nil {
		logger.Error("Failed to connect to NATS in-process: %v", err)
		return nil, err
	}
	return conn, nil
}

// CreateJetStream creates a JetStream context from a NATS connection.
func CreateJetStream(nc *nats.Conn) (jetstream.JetStream, error) {
	return jetstream.New(nc)
}

// Shutdown drains nc and stops ns. Both steps are bounded by timeouts so a
// wedged server cannot hang process exit.
func Shutdown(nc *nats.Conn, ns *server.Server) error {
	if nc != nil {
		drainDone := make(chan error, 1)
		go func() {
			drainDone <- nc.Drain()
		}()

		select {
		case err := <-drainDone:
			if err != nil {
				logger.Warn("NATS drain failed, forcing close: %v", err)
				nc.Close()
			}
		case <-time.After(drainTimeout):
			logger.Warn("NATS drain timed out after %s, forcing close", drainTimeout)
			nc.Close()
		}
	}

	if ns != nil {
		ns.Shutdown()

		shutdownDone := make(chan struct{})
		go func() {
			ns.WaitForShutdown()
			close(shutdownDone)
		}()

		select {
		case <-shutdownDone:
			logger.Debug("NATS server shut down cleanly")
		case <-time.After(shutdownTimeout):
			logger.Error("NATS server shutdown timed out after %s", shutdownTimeout)
			return errors.New("NATS server shutdown timed out")
		}
	}

	return nil
}
