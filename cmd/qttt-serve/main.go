// Command qttt-serve serves a browser UI to play tic-tac-toe against an
// agent trained with qttt-train.
package main

import (
	"bufio"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/timpalpant/go-qlearn"
	"github.com/timpalpant/go-qlearn/internal/config"
	"github.com/timpalpant/go-qlearn/web"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		glog.Fatal(err)
	}

	addr := flag.String("addr", cfg.Addr, "Listen address")
	tablePath := flag.String("table", cfg.Table, "Path of a table saved by qttt-train")
	seed := flag.Int64("seed", cfg.Seed, "Random seed for tie-breaking (0 = time-based)")
	flag.Set("logtostderr", "true")
	flag.Parse()

	table, err := loadTable(*tablePath)
	if err != nil {
		glog.Fatal(err)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	server := web.NewServer(table, *seed)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	glog.Infof("Serving on http://%s", *addr)
	if err := srv.ListenAndServe(); err != nil {
		glog.Fatal(err)
	}
}

func loadTable(path string) (*qlearn.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := qlearn.LoadTable(bufio.NewReader(f))
	return table, errors.WithMessagef(err, "failed to load table from %s", path)
}
