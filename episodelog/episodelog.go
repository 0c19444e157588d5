// Package episodelog exports training episodes and Q-value tables to
// parquet files for offline analysis.
package episodelog

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
	"github.com/pkg/errors"

	"github.com/timpalpant/go-qlearn"
)

// EpisodeRow is one training episode.
//
// Moves holds the cells marked in order, and Players the seat
// (1 or 2) that marked each of them.
type EpisodeRow struct {
	RunID           string  `parquet:"run_id,dict"`
	Stage           string  `parquet:"stage,dict"`
	Episode         int64   `parquet:"episode"`
	Starter         int32   `parquet:"starter"`
	Players         []int32 `parquet:"players"`
	Moves           []int32 `parquet:"moves"`
	FinalState      string  `parquet:"final_state"`
	Outcome         string  `parquet:"outcome,dict"`
	ExplorationRate float64 `parquet:"exploration_rate"`
}

// TableRow is the content of one state of a Q-value table.
type TableRow struct {
	RunID   string    `parquet:"run_id,dict"`
	State   string    `parquet:"state"`
	Values  []float64 `parquet:"values"`
	Updates int32     `parquet:"updates"`
}

// NewRow converts an episode played in the given training stage.
func NewRow(runID uuid.UUID, stage string, ep *qlearn.Episode) EpisodeRow {
	row := EpisodeRow{
		RunID:           runID.String(),
		Stage:           stage,
		Episode:         int64(ep.Index),
		Starter:         int32(ep.Starter),
		Players:         make([]int32, len(ep.Plies)),
		Moves:           make([]int32, len(ep.Plies)),
		FinalState:      ep.Final.Key(),
		Outcome:         ep.Outcome.String(),
		ExplorationRate: ep.ExplorationRate,
	}

	for i, ply := range ep.Plies {
		row.Players[i] = int32(ply.Player)
		row.Moves[i] = int32(ply.Action)
	}

	return row
}

// Writer streams episode rows to a parquet file. Rows are written to a
// temporary file that is moved into place when the Writer is closed.
type Writer struct {
	runID   uuid.UUID
	tmpPath string
	outPath string

	file   *os.File
	writer *parquet.GenericWriter[EpisodeRow]
	rows   int
	err    error
}

// NewWriter creates a Writer for the run identified by runID.
func NewWriter(outPath string, runID uuid.UUID) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "create output dir")
	}

	tmpPath := outPath + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "open tmp parquet")
	}

	w := parquet.NewGenericWriter[EpisodeRow](f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedDefault}))
	w.SetKeyValueMetadata("schema", "episode_v1")
	w.SetKeyValueMetadata("run_id", runID.String())

	return &Writer{
		runID:   runID,
		tmpPath: tmpPath,
		outPath: outPath,
		file:    f,
		writer:  w,
	}, nil
}

// RunID returns the identifier written in every row.
func (w *Writer) RunID() uuid.UUID {
	return w.runID
}

// Write appends one episode.
func (w *Writer) Write(stage string, ep *qlearn.Episode) error {
	if w.writer == nil {
		return errors.New("episode writer is closed")
	}

	if _, err := w.writer.Write([]EpisodeRow{NewRow(w.runID, stage, ep)}); err != nil {
		return errors.Wrap(err, "write parquet")
	}

	w.rows++
	return nil
}

// Hook returns a qlearn.EpisodeHook recording every episode under stage.
// The first write error is kept and returned by Close.
func (w *Writer) Hook(stage string) qlearn.EpisodeHook {
	return func(ep *qlearn.Episode) {
		if w.err != nil {
			return
		}

		if err := w.Write(stage, ep); err != nil {
			glog.Errorf("Failed to log episode %d: %v", ep.Index, err)
			w.err = err
		}
	}
}

// Close flushes the file and moves it to its final path.
// It returns the number of rows written.
func (w *Writer) Close() (int, error) {
	if w.writer == nil {
		return w.rows, w.err
	}

	closeErr := w.writer.Close()
	w.writer = nil
	_ = w.file.Sync()
	fileErr := w.file.Close()
	if closeErr != nil {
		return 0, errors.Wrap(closeErr, "close parquet writer")
	}

	if fileErr != nil {
		return 0, errors.Wrap(fileErr, "close parquet file")
	}

	if err := os.Rename(w.tmpPath, w.outPath); err != nil {
		return 0, errors.Wrap(err, "rename parquet")
	}

	glog.Infof("Wrote %d episodes to %s", w.rows, w.outPath)
	return w.rows, w.err
}

// WriteTable writes the states of snap that were updated at least once,
// in state order.
func WriteTable(outPath string, runID uuid.UUID, snap qlearn.Snapshot) error {
	rows := make([]TableRow, 0, len(snap))
	for key, e := range snap {
		if e.Updates == 0 {
			continue
		}

		rows = append(rows, TableRow{
			RunID:   runID.String(),
			State:   key,
			Values:  append([]float64(nil), e.Values[:]...),
			Updates: int32(e.Updates),
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].State < rows[j].State })

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return errors.Wrap(err, "create output dir")
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)
	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedDefault}),
		parquet.KeyValueMetadata("schema", "table_v1"),
	); err != nil {
		return errors.Wrap(err, "write parquet")
	}

	return errors.Wrap(os.Rename(tmpPath, outPath), "rename parquet")
}

// ReadEpisodes reads all rows of an episode file.
func ReadEpisodes(path string) ([]EpisodeRow, error) {
	return readAll[EpisodeRow](path)
}

// ReadTable reads all rows of a table file.
func ReadTable(path string) ([]TableRow, error) {
	return readAll[TableRow](path)
}

func readAll[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, errors.Wrapf(err, "open parquet %s", path)
	}

	reader := parquet.NewGenericReader[T](pf)
	defer reader.Close()

	rows := make([]T, reader.NumRows())
	total := 0
	for total < len(rows) {
		n, err := reader.Read(rows[total:])
		total += n
		if err == io.EOF || n == 0 {
			break
		} else if err != nil {
			return nil, err
		}
	}

	return rows[:total], nil
}

// Snapshot rebuilds a table snapshot from the rows of a table file.
func Snapshot(rows []TableRow) (qlearn.Snapshot, error) {
	snap := make(qlearn.Snapshot, len(rows))
	for _, row := range rows {
		var e qlearn.Entry
		if len(row.Values) != len(e.Values) {
			return nil, errors.Errorf("state %s has %d values", row.State, len(row.Values))
		}

		copy(e.Values[:], row.Values)
		e.Updates = int(row.Updates)
		snap[row.State] = e
	}

	return snap, nil
}
