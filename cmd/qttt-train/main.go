// Command qttt-train trains a Q-learning agent to play tic-tac-toe through a
// curriculum of opponents, then saves its table and a report of the run.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/timpalpant/go-qlearn"
	"github.com/timpalpant/go-qlearn/chart"
	"github.com/timpalpant/go-qlearn/episodelog"
	"github.com/timpalpant/go-qlearn/internal/config"
	"github.com/timpalpant/go-qlearn/ldbstore"
	"github.com/timpalpant/go-qlearn/opponent"
	"github.com/timpalpant/go-qlearn/play"
	"github.com/timpalpant/go-qlearn/tictactoe"
	"github.com/timpalpant/go-qlearn/tree"
)

type stage struct {
	name     string
	opponent qlearn.Opponent
	exploit  bool
}

type stageResults struct {
	name    string
	results *qlearn.Results
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		glog.Fatal(err)
	}

	episodes := flag.Int("episodes", cfg.Episodes, "Number of episodes per curriculum stage")
	seed := flag.Int64("seed", cfg.Seed, "Random seed (0 = time-based)")
	tablePath := flag.String("table", cfg.Table, "Output path of the trained table")
	outDir := flag.String("out_dir", cfg.OutDir, "Directory for episode logs and charts")
	ldbPath := flag.String("ldb", "", "If set, also export the table to a LevelDB database at this path")
	perfect := flag.Bool("perfect", false, "Add a final stage against a perfect opponent")
	logEpisodes := flag.Bool("log_episodes", true, "Write every episode to a parquet file")
	every := flag.Int("every", 1000, "Episodes per point of the reported win rate")
	playAfter := flag.Bool("play", false, "Play against the agent in the terminal after training")
	flag.Float64Var(&cfg.Params.LearningRate, "learning_rate", cfg.Params.LearningRate, "Learning rate")
	flag.Float64Var(&cfg.Params.DiscountFactor, "discount_factor", cfg.Params.DiscountFactor, "Discount factor")
	flag.Float64Var(&cfg.Params.ExplorationRate, "exploration_rate", cfg.Params.ExplorationRate, "Initial exploration rate")
	flag.Float64Var(&cfg.Params.ExplorationDecay, "exploration_decay", cfg.Params.ExplorationDecay, "Exploration decay per episode")
	flag.Float64Var(&cfg.Params.ExplorationMin, "exploration_min", cfg.Params.ExplorationMin, "Minimum exploration rate")
	flag.Set("logtostderr", "true")
	flag.Parse()

	cfg.Episodes = *episodes
	if err := cfg.Validate(); err != nil {
		glog.Fatal(err)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))
	runID := uuid.New()
	glog.Infof("Run %v: seed %d, params %+v, rewards %+v", runID, *seed, cfg.Params, cfg.Rewards)

	table := qlearn.NewTable()
	learner, err := qlearn.NewAgent(table, cfg.Params, rng)
	if err != nil {
		glog.Fatal(err)
	}

	stages := []stage{
		{name: "random", opponent: opponent.NewRandom(rng)},
		{name: "heuristic", opponent: opponent.NewHeuristic(qlearn.OpponentSeat, rng)},
		{name: "exploit-heuristic", opponent: opponent.NewHeuristic(qlearn.OpponentSeat, rng), exploit: true},
	}
	if *perfect {
		stages = append(stages, stage{
			name:     "exploit-perfect",
			opponent: opponent.NewPerfect(qlearn.OpponentSeat, rng),
			exploit:  true,
		})
	}

	trainer, err := qlearn.NewTrainer(stages[0].opponent, learner, cfg.Rewards, rng)
	if err != nil {
		glog.Fatal(err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		glog.Fatal(err)
	}

	var episodeLog *episodelog.Writer
	current := stages[0].name
	if *logEpisodes {
		path := filepath.Join(*outDir, fmt.Sprintf("episodes_%v.parquet", runID))
		if episodeLog, err = episodelog.NewWriter(path, runID); err != nil {
			glog.Fatal(err)
		}

		trainer.OnEpisode(func(ep *qlearn.Episode) {
			if err := episodeLog.Write(current, ep); err != nil {
				glog.Fatal(err)
			}
		})
	}

	var all []stageResults
	for _, st := range stages {
		current = st.name
		trainer.SetOpponent(st.opponent)
		if st.exploit {
			learner.Exploit()
		}

		glog.Infof("Starting training against %s opponent...", st.name)
		results, err := trainer.Train(cfg.Episodes)
		if err != nil {
			glog.Fatal(err)
		}

		glog.Infof("Training against %s completed: %v", st.name, results)
		all = append(all, stageResults{st.name, results})
	}

	if episodeLog != nil {
		if _, err := episodeLog.Close(); err != nil {
			glog.Fatal(err)
		}
	}

	for _, sr := range all {
		summarize(sr.name, sr.results, *every)
	}

	cov := measureCoverage(table)
	glog.Infof("Reachable positions: %d (%d final), learner decision states: %d",
		cov.positions, cov.terminal, cov.decisions)
	glog.Infof("Reachable learner states never updated: %d of %d", cov.neverUpdated, cov.decisions)

	if err := save(table, *tablePath, *ldbPath, *rdbPath, *outDir, runID); err != nil {
		glog.Fatal(err)
	}

	var series []chart.Series
	for _, sr := range all {
		series = append(series, chart.NonLossSeries(sr.name, sr.results, *every))
	}
	chartPath := filepath.Join(*outDir, fmt.Sprintf("training_%v.html", runID))
	if err := chart.WriteFile(chartPath, "Non-loss rate per stage", series...); err != nil {
		glog.Fatal(err)
	}
	glog.Infof("Wrote chart to %s", chartPath)

	if *playAfter {
		err := playLoop(table, rng)
		if err != nil && err != io.EOF && errors.Cause(err) != play.ErrQuit {
			glog.Fatal(err)
		}
	}
}

// coverage describes how much of the reachable game the learner has seen.
type coverage struct {
	positions    int
	terminal     int
	decisions    int
	neverUpdated int
}

func measureCoverage(table *qlearn.Table) coverage {
	roots := []tree.Node{tree.Root(qlearn.OpponentSeat), tree.Root(qlearn.LearnerSeat)}
	decisions := tree.DecisionStates(qlearn.LearnerSeat, roots...)
	cov := coverage{
		positions: tree.CountPositions(roots...),
		terminal:  tree.CountTerminalPositions(roots...),
		decisions: len(decisions),
	}

	for _, s := range decisions {
		if table.NumUpdates(s) == 0 {
			cov.neverUpdated++
		}
	}

	return cov
}

func summarize(name string, results *qlearn.Results, every int) {
	glog.Infof("[%s] %v", name, results)
	glog.Infof("[%s] Non-loss rate over the last 100 games: %.1f%%", name, 100*results.NonLossRate(100))
	glog.Infof("[%s] Illegal moves in the last 100 games: %.0f", name, 100*results.IllegalRate(100))

	var rates []string
	for _, r := range results.NonLossRateEvery(every) {
		rates = append(rates, fmt.Sprintf("%.1f%%", 100*r))
	}
	glog.Infof("[%s] Non-loss rate every %d games: %s", name, every, strings.Join(rates, " "))
}

func save(table *qlearn.Table, tablePath, ldbPath, rdbPath, outDir string, runID uuid.UUID) error {
	f, err := os.Create(tablePath)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	if err := table.MarshalTo(w); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to save table to %s", tablePath)
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}
	glog.Infof("Saved table to %s", tablePath)

	snap, err := table.Snapshot()
	if err != nil {
		return err
	}

	snapPath := filepath.Join(outDir, fmt.Sprintf("table_%v.parquet", runID))
	if err := episodelog.WriteTable(snapPath, runID, snap); err != nil {
		return err
	}
	glog.Infof("Wrote %d updated states to %s", tictactoe.NumStates-snap.Untouched(), snapPath)

	if err := exportLevelDB(ldbPath, snap); err != nil {
		return err
	}

	return exportRocksDB(rdbPath, snap)
}

func exportLevelDB(path string, snap qlearn.Snapshot) error {
	if path == "" {
		return nil
	}

	ldb, err := ldbstore.New(path, &opt.Options{})
	if err != nil {
		return err
	}
	defer ldb.Close()

	if err := ldb.Import(snap); err != nil {
		return err
	}

	glog.Infof("Exported table to LevelDB database %s", path)
	return nil
}

func playLoop(table qlearn.ValueTable, rng *rand.Rand) error {
	agent := qlearn.NewGreedy(table, qlearn.LearnerSeat, rng)
	human := play.NewHuman(os.Stdin, os.Stdout, true)
	fmt.Println("Play a game against the agent")
	for {
		humanStarts, err := human.Confirm("Do you want to start?")
		if err != nil {
			return err
		}

		starter := qlearn.LearnerSeat
		if humanStarts {
			starter = qlearn.OpponentSeat
		}

		session := play.NewSession(agent, qlearn.OpponentSeat, starter)
		if err := play.Run(session, human); err != nil {
			return err
		}
	}
}
