// novad runs the token node behind an HTTP surface. State lives in memory by
// default; point it at PostgreSQL for a durable single-node deployment.
package main

import (
	"context"
	"errors"
	"flag"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"nova_token/contract"
	"nova_token/host"
	"nova_token/server"
	"nova_token/statepg"
)

func main() {
	// .env is optional; flags and real env win over it.
	_ = godotenv.Load()

	var (
		listen      = flag.String("listen", envOr("NOVA_LISTEN", ":8080"), "HTTP listen address")
		databaseURL = flag.String("database-url", envOr("NOVA_DATABASE_URL", ""), "PostgreSQL URL for durable state (empty = in-memory)")
		owner       = flag.String("owner", envOr("NOVA_OWNER", "owner.nova"), "admin account")
		team        = flag.String("team", envOr("NOVA_TEAM", "team.nova"), "team vesting account")
		faucet      = flag.String("faucet", envOr("NOVA_FAUCET", ""), "comma-separated accounts to pre-fund with native currency")
		faucetUnits = flag.Int64("faucet-units", 1_000_000, "native whole units per pre-funded account")
		logLevel    = flag.String("log-level", envOr("NOVA_LOG_LEVEL", "info"), "logrus level")
	)
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(*logLevel); err == nil {
		log.SetLevel(lvl)
	}

	metrics := server.NewMetrics(prometheus.DefaultRegisterer)
	feed := server.NewFeed(log,
		func() { metrics.EventsEmitted.Inc() },
		func(delta int) { metrics.FeedClients.Add(float64(delta)) },
	)

	opts := []host.NodeOption{host.WithEventSink(feed)}
	if *databaseURL != "" {
		store, err := statepg.New(context.Background(), *databaseURL, log)
		if err != nil {
			log.WithError(err).Fatal("open state database")
		}
		defer store.Close()
		opts = append(opts, host.WithState(store))
		log.Info("using postgres-backed state")
	}
	node := host.NewNode(opts...)

	ownerAddr := contract.Address(*owner)
	teamAddr := contract.Address(*team)
	err := node.Call(ownerAddr, func(c *contract.Contract, ctx contract.CallCtx) error {
		return c.Initialize(ctx, ownerAddr, teamAddr)
	})
	switch {
	case err == nil:
		log.WithFields(logrus.Fields{"owner": *owner, "team": *team}).Info("contract initialized")
	case errors.Is(err, contract.ErrAlreadyInitialized):
		log.Info("resuming initialized contract state")
	default:
		log.WithError(err).Fatal("initialize contract")
	}

	if *faucet != "" {
		amount := new(big.Int).Mul(big.NewInt(*faucetUnits), contract.Unit)
		for _, acct := range strings.Split(*faucet, ",") {
			acct = strings.TrimSpace(acct)
			if acct == "" {
				continue
			}
			node.Bank().Deposit(contract.Address(acct), amount)
			log.WithField("account", acct).Info("faucet funded")
		}
	}

	srv := &http.Server{
		Addr:              *listen,
		Handler:           server.New(node, log, metrics, feed),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("listen", *listen).Info("http server up")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
