package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/evstack/zerog-da/test/testdisperser"
)

const (
	defaultHost = "localhost"
	defaultPort = "51001"
)

func main() {
	var (
		host          string
		port          string
		listenAll     bool
		maxBlobSize   uint64
		confirmAfter  int
		finalizeAfter int
		epoch         uint32
		quorumID      uint32
	)
	flag.StringVar(&port, "port", defaultPort, "listening port")
	flag.StringVar(&host, "host", defaultHost, "listening address")
	flag.BoolVar(&listenAll, "listen-all", false, "listen on all network interfaces (0.0.0.0) instead of just localhost")
	flag.Uint64Var(&maxBlobSize, "max-blob-size", testdisperser.DefaultMaxBlobSize, "maximum blob size in bytes")
	flag.IntVar(&confirmAfter, "confirm-after", 2, "status queries answered with PROCESSING before a blob is confirmed")
	flag.IntVar(&finalizeAfter, "finalize-after", 0, "status queries answered with CONFIRMED before a blob is finalized (0 never finalizes)")
	flag.Uint32Var(&epoch, "epoch", 1, "epoch reported in blob headers")
	flag.Uint32Var(&quorumID, "quorum-id", 0, "quorum id reported in blob headers")
	flag.Parse()

	if listenAll {
		host = "0.0.0.0"
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Str("component", "local-disperser").Logger()

	disp := testdisperser.New(
		testdisperser.WithMaxBlobSize(maxBlobSize),
		testdisperser.WithConfirmAfter(confirmAfter),
		testdisperser.WithFinalizeAfter(finalizeAfter),
		testdisperser.WithEpoch(epoch),
		testdisperser.WithQuorumID(quorumID),
	)

	addr := net.JoinHostPort(host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error().Err(err).Str("addr", addr).Msg("failed to listen")
		os.Exit(1)
	}

	srv := newServer(logger, disp)

	logger.Info().Str("addr", ln.Addr().String()).Uint64("maxBlobSize", maxBlobSize).
		Int("confirmAfter", confirmAfter).Int("finalizeAfter", finalizeAfter).Msg("Listening on")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, srv, ln); err != nil {
		logger.Error().Err(err).Msg("disperser stopped")
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, "\nShutting down.")
}

// run serves until ctx is cancelled, then stops the server gracefully.
func run(ctx context.Context, srv *grpc.Server, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		srv.GracefulStop()
		return nil
	})
	return g.Wait()
}
