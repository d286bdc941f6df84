// Command nullcached runs the RESP2 cache server: it wires a core.Store
// to a server.Server, flag-configured, with graceful shutdown.
package main

import (
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nullcache/nullcache/core"
	"github.com/nullcache/nullcache/internal/log"
	"github.com/nullcache/nullcache/persist"
	"github.com/nullcache/nullcache/server"
)

func main() {
	var (
		host, dataDir               string
		port                        int
		sweepIntervalSeconds        int
		snapshotIntervalSeconds     int
		quiet, verbose, veryVerbose bool
	)

	flag.StringVar(&host, "h", "", "The listening host.")
	flag.IntVar(&port, "p", 6380, "The listening port.")
	flag.IntVar(&sweepIntervalSeconds, "e", 100, "Active expiration sweep interval in seconds.")
	flag.IntVar(&snapshotIntervalSeconds, "m", 600, "Snapshot interval in seconds.")
	flag.StringVar(&dataDir, "d", "", "Data dir for snapshots. Empty means memory-only, no persistence.")
	flag.BoolVar(&verbose, "v", false, "Enable verbose logging.")
	flag.BoolVar(&quiet, "q", false, "Quiet logging. Totally silent.")
	flag.BoolVar(&veryVerbose, "vv", false, "Enable very verbose logging.")
	flag.Parse()

	switch {
	case veryVerbose:
		log.SetLevel(log.DEBUG)
	case verbose:
		log.SetLevel(log.INFO)
	case quiet:
		log.SetLevel(-1)
	default:
		log.SetLevel(log.NOTICE)
	}

	store := core.New()

	snapshotPath := ""
	if dataDir != "" {
		snapshotPath = filepath.Join(dataDir, "nullcache.snapshot")
		if err := persist.Load(store, snapshotPath); err != nil {
			log.Critical(err.Error())
			os.Exit(1)
		}
	}

	dispatcher := server.NewDispatcher(store)
	srv := server.New(host, port, dispatcher)

	stopChan := make(chan struct{})
	go runSweeper(store, time.Duration(sweepIntervalSeconds)*time.Second, stopChan)
	if snapshotPath != "" {
		go runSnapshotter(store, snapshotPath, time.Duration(snapshotIntervalSeconds)*time.Second, stopChan)
	}

	go handleSignals(srv, store, snapshotPath, stopChan)

	log.Infof("nullcache ready to serve at %s:%d", host, port)
	if err := srv.ListenAndServe(); err != nil {
		log.Critical(err.Error())
		os.Exit(1)
	}
}

func runSweeper(store *core.Store, interval time.Duration, stopChan chan struct{}) {
	tick := time.Tick(interval)
	for {
		select {
		case <-stopChan:
			return
		case <-tick:
			count := store.EvictExpired()
			log.Debugf("evicted %d expired keys", count)
		}
	}
}

func runSnapshotter(store *core.Store, path string, interval time.Duration, stopChan chan struct{}) {
	tick := time.Tick(interval)
	for {
		select {
		case <-stopChan:
			return
		case <-tick:
			if err := persist.Save(store, path); err != nil {
				log.Errorf("snapshot failed: %s", err)
			}
		}
	}
}

func handleSignals(srv *server.Server, store *core.Store, snapshotPath string, stopChan chan struct{}) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	<-sigs
	log.Info("shutting down nullcache...")
	close(stopChan)

	if snapshotPath != "" {
		if err := persist.Save(store, snapshotPath); err != nil {
			log.Errorf("final snapshot failed: %s", err)
		}
	}

	if err := srv.Shutdown(); err != nil {
		log.Errorf("shutdown error: %s", err)
	}
	log.Info("goodbye!")
}
