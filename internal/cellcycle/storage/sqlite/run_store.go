package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/cellcycle/internal/cellcycle/phase"
	"github.com/banshee-data/cellcycle/internal/cellcycle/phasetable"
	"github.com/banshee-data/cellcycle/internal/cellcycle/pipeline"
	"github.com/banshee-data/cellcycle/internal/cellcycle/resolve"
	"github.com/banshee-data/cellcycle/internal/timeutil"
)

// Run modes.
const (
	ModePredicted   = "predicted"
	ModeGroundTruth = "ground-truth"
)

// Diagnostic kinds stored in run_diagnostics.
const (
	KindMitosisWithoutS = "mitosis_without_s"
	KindNumerousChanges = "numerous_changes"
	KindArrestCandidate = "arrest_candidate"
)

// Run describes one persisted resolution run.
type Run struct {
	RunID       string
	CreatedAt   time.Time
	InputPath   string
	Mode        string
	Params      resolve.Params
	G2Threshold *float64
	TrackCount  int
	Notes       string
}

// RunStore provides persistence for resolution runs.
type RunStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db, clock: timeutil.RealClock{}}
}

// SetClock replaces the clock used to stamp new runs.
func (s *RunStore) SetClock(c timeutil.Clock) {
	s.clock = c
}

// InsertRun stores run together with the frames, phase records and
// diagnostics of res in one transaction. An empty RunID is replaced by a
// new UUID and a zero CreatedAt by the current time.
func (s *RunStore) InsertRun(run *Run, res *pipeline.Result) (err error) {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.clock.Now()
	}
	if run.Mode == "" {
		run.Mode = ModePredicted
	}
	run.TrackCount = countTracks(res.Tracks)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert run: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.Exec(`
		INSERT INTO runs (
			run_id, created_at, input_path, mode,
			min_g, min_s, min_m, min_track, max_change_fraction,
			g2_threshold, track_count, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.RunID, run.CreatedAt.UnixNano(), nullString(run.InputPath), run.Mode,
		run.Params.MinG, run.Params.MinS, run.Params.MinM, run.Params.MinTrack, run.Params.MaxChangeFraction,
		nullFloat64(run.G2Threshold), run.TrackCount, nullString(run.Notes),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if err = insertFrames(tx, run.RunID, res.Tracks); err != nil {
		return err
	}
	if err = insertPhaseRecords(tx, run.RunID, res.Phases); err != nil {
		return err
	}
	if err = insertDiagnostics(tx, run.RunID, res.Diagnostics); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

func insertFrames(tx *sql.Tx, runID string, rows []phase.ResolvedRow) error {
	stmt, err := tx.Prepare(`
		INSERT INTO resolved_frames (
			run_id, track_id, frame, parent_track_id, lineage_id,
			predicted_class, resolved_class, prob_g1g2, prob_s, prob_m,
			mean_intensity, background_mean, emerging, major_axis, minor_axis,
			continuous_label
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare frame insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		predicted := r.PredictedClass.String()
		if r.Emerging && r.PredictedClass == phase.Undetermined {
			predicted = phase.LabelEmerging
		}
		_, err := stmt.Exec(
			runID, r.TrackID, r.Frame, r.ParentTrackID, r.LineageID,
			predicted, r.Label(),
			r.Probabilities[phase.ColG1G2], r.Probabilities[phase.ColS], r.Probabilities[phase.ColM],
			r.MeanIntensity, r.BackgroundMean, r.Emerging, r.MajorAxis, r.MinorAxis,
			r.ContinuousLabel,
		)
		if err != nil {
			return fmt.Errorf("insert frame %d of track %d: %w", r.Frame, r.TrackID, err)
		}
	}
	return nil
}

func insertPhaseRecords(tx *sql.Tx, runID string, records []phasetable.Record) error {
	stmt, err := tx.Prepare(`
		INSERT INTO phase_records (
			run_id, track_id, lineage_type, length, arrest,
			g1, s, g2, m, parent, imprecise_exit
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare phase record insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			runID, r.Track, string(r.Type), r.Length, nullInt(r.Arrest),
			nullDuration(r.G1), nullDuration(r.S), nullDuration(r.G2), nullInt(r.M),
			r.Parent, r.ImpreciseExit,
		)
		if err != nil {
			return fmt.Errorf("insert phase record %d: %w", r.Track, err)
		}
	}
	return nil
}

func insertDiagnostics(tx *sql.Tx, runID string, d resolve.Diagnostics) error {
	kinds := []struct {
		kind string
		ids  []int
	}{
		{KindMitosisWithoutS, d.MitosisWithoutS},
		{KindNumerousChanges, d.NumerousChanges},
		{KindArrestCandidate, d.ArrestCandidates},
	}
	for _, k := range kinds {
		for _, id := range k.ids {
			if _, err := tx.Exec(`INSERT INTO run_diagnostics (run_id, kind, track_id) VALUES (?, ?, ?)`,
				runID, k.kind, id); err != nil {
				return fmt.Errorf("insert diagnostic %s %d: %w", k.kind, id, err)
			}
		}
	}
	return nil
}

const runColumns = `
	run_id, created_at, input_path, mode,
	min_g, min_s, min_m, min_track, max_change_fraction,
	g2_threshold, track_count, notes`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	r := &Run{}
	var createdAt int64
	var inputPath, notes sql.NullString
	var threshold sql.NullFloat64
	err := sc.Scan(
		&r.RunID, &createdAt, &inputPath, &r.Mode,
		&r.Params.MinG, &r.Params.MinS, &r.Params.MinM, &r.Params.MinTrack, &r.Params.MaxChangeFraction,
		&threshold, &r.TrackCount, &notes,
	)
	if err != nil {
		return nil, err
	}
	r.CreatedAt = time.Unix(0, createdAt)
	if inputPath.Valid {
		r.InputPath = inputPath.String
	}
	if notes.Valid {
		r.Notes = notes.String
	}
	if threshold.Valid {
		v := threshold.Float64
		r.G2Threshold = &v
	}
	return r, nil
}

// GetRun returns a run by id, or sql.ErrNoRows.
func (s *RunStore) GetRun(runID string) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// ListRuns returns all runs, newest first.
func (s *RunStore) ListRuns() ([]*Run, error) {
	rows, err := s.db.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// PhaseRecords returns the phase table of a run ordered by track id.
func (s *RunStore) PhaseRecords(runID string) ([]phasetable.Record, error) {
	rows, err := s.db.Query(`
		SELECT track_id, lineage_type, length, arrest, g1, s, g2, m, parent, imprecise_exit
		FROM phase_records
		WHERE run_id = ?
		ORDER BY track_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list phase records: %w", err)
	}
	defer rows.Close()

	var out []phasetable.Record
	for rows.Next() {
		var r phasetable.Record
		var lineageType string
		var arrest, m sql.NullInt64
		var g1, sp, g2 sql.NullString
		if err := rows.Scan(&r.Track, &lineageType, &r.Length, &arrest, &g1, &sp, &g2, &m, &r.Parent, &r.ImpreciseExit); err != nil {
			return nil, fmt.Errorf("scan phase record: %w", err)
		}
		r.Type = phasetable.LineageType(lineageType)
		r.Arrest = intFromNull(arrest)
		r.M = intFromNull(m)
		if r.G1, err = durationFromNull(g1); err != nil {
			return nil, err
		}
		if r.S, err = durationFromNull(sp); err != nil {
			return nil, err
		}
		if r.G2, err = durationFromNull(g2); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ResolvedFrames returns the resolved frames of one track ordered by frame.
func (s *RunStore) ResolvedFrames(runID string, trackID int) ([]phase.ResolvedRow, error) {
	rows, err := s.db.Query(`
		SELECT track_id, frame, parent_track_id, lineage_id,
		       predicted_class, resolved_class, prob_g1g2, prob_s, prob_m,
		       mean_intensity, background_mean, emerging, major_axis, minor_axis,
		       continuous_label
		FROM resolved_frames
		WHERE run_id = ? AND track_id = ?
		ORDER BY frame
	`, runID, trackID)
	if err != nil {
		return nil, fmt.Errorf("list resolved frames: %w", err)
	}
	defer rows.Close()

	var out []phase.ResolvedRow
	for rows.Next() {
		var r phase.ResolvedRow
		var predicted, resolved string
		if err := rows.Scan(
			&r.TrackID, &r.Frame, &r.ParentTrackID, &r.LineageID,
			&predicted, &resolved,
			&r.Probabilities[phase.ColG1G2], &r.Probabilities[phase.ColS], &r.Probabilities[phase.ColM],
			&r.MeanIntensity, &r.BackgroundMean, &r.Emerging, &r.MajorAxis, &r.MinorAxis,
			&r.ContinuousLabel,
		); err != nil {
			return nil, fmt.Errorf("scan resolved frame: %w", err)
		}
		if r.PredictedClass, _, err = phase.ParseClass(predicted); err != nil {
			return nil, err
		}
		if r.Resolved, r.EmergingLabel, err = phase.ParseClass(resolved); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Diagnostics returns the inspection lists recorded for a run.
func (s *RunStore) Diagnostics(runID string) (resolve.Diagnostics, error) {
	rows, err := s.db.Query(`
		SELECT kind, track_id FROM run_diagnostics
		WHERE run_id = ?
		ORDER BY kind, track_id
	`, runID)
	if err != nil {
		return resolve.Diagnostics{}, fmt.Errorf("list diagnostics: %w", err)
	}
	defer rows.Close()

	var d resolve.Diagnostics
	for rows.Next() {
		var kind string
		var id int
		if err := rows.Scan(&kind, &id); err != nil {
			return resolve.Diagnostics{}, fmt.Errorf("scan diagnostic: %w", err)
		}
		switch kind {
		case KindMitosisWithoutS:
			d.MitosisWithoutS = append(d.MitosisWithoutS, id)
		case KindNumerousChanges:
			d.NumerousChanges = append(d.NumerousChanges, id)
		case KindArrestCandidate:
			d.ArrestCandidates = append(d.ArrestCandidates, id)
		}
	}
	return d, rows.Err()
}

// DeleteRun removes a run and, by cascade, everything recorded for it.
func (s *RunStore) DeleteRun(runID string) error {
	res, err := s.db.Exec(`DELETE FROM runs WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func countTracks(rows []phase.ResolvedRow) int {
	seen := make(map[int]struct{})
	for _, r := range rows {
		seen[r.TrackID] = struct{}{}
	}
	return len(seen)
}
