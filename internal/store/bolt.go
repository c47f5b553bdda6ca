package store

import (
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/litkg/kgctl/internal/model"
)

const (
	boltBucketRuns = "runs" // key: run UID -> Run JSON
	boltBucketEnvs = "envs" // key: env name -> EnvRecord JSON
	boltBucketApp  = "app"  // key: "state" -> AppState JSON
)

const appStateKey = "state"

// Bolt is the bbolt-backed Store implementation.
type Bolt struct {
	db *bbolt.DB
}

// New opens (or creates) the state database at path and ensures the
// buckets exist.
func New(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range []string{boltBucketRuns, boltBucketEnvs, boltBucketApp} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return err
			}
		}

		return nil
	}); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &Bolt{db: db}, nil
}

func (b *Bolt) Ping() error {
	return b.db.View(func(tx *bbolt.Tx) error {
		return nil
	})
}

func (b *Bolt) Close() error {
	return b.db.Close()
}

// SaveRun stores a run record, assigning a UID when missing.
func (b *Bolt) SaveRun(run *model.Run) error {
	if run == nil {
		return errors.New("run is required")
	}

	if run.UID == "" {
		run.UID = uuid.New().String()
	}

	data, err := json.Marshal(run)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		runs := tx.Bucket([]byte(boltBucketRuns))

		return runs.Put([]byte(run.UID), data)
	})
}

// GetRun returns the run with the given UID, or nil when absent.
func (b *Bolt) GetRun(uid string) (*model.Run, error) {
	var run *model.Run

	err := b.db.View(func(tx *bbolt.Tx) error {
		runs := tx.Bucket([]byte(boltBucketRuns))

		v := runs.Get([]byte(uid))
		if v == nil {
			return nil
		}

		var r model.Run
		if err := json.Unmarshal(v, &r); err != nil {
			return err
		}

		run = &r

		return nil
	})

	return run, err
}

// ListRuns returns runs newest first. kind filters when non-empty; limit
// caps the result when positive.
func (b *Bolt) ListRuns(kind model.RunKind, limit int) ([]model.Run, error) {
	var out []model.Run

	err := b.db.View(func(tx *bbolt.Tx) error {
		runs := tx.Bucket([]byte(boltBucketRuns))

		return runs.ForEach(func(k, v []byte) error {
			var r model.Run

			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}

			if kind != "" && r.Kind != kind {
				return nil
			}

			out = append(out, r)

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

// SaveEnvRecord stores the provisioning record for an environment.
func (b *Bolt) SaveEnvRecord(rec *model.EnvRecord) error {
	if rec == nil || rec.Name == "" {
		return errors.New("environment record with a name is required")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		envs := tx.Bucket([]byte(boltBucketEnvs))

		return envs.Put([]byte(rec.Name), data)
	})
}

// GetEnvRecord returns the record for an environment name, or nil.
func (b *Bolt) GetEnvRecord(name string) (*model.EnvRecord, error) {
	var rec *model.EnvRecord

	err := b.db.View(func(tx *bbolt.Tx) error {
		envs := tx.Bucket([]byte(boltBucketEnvs))

		v := envs.Get([]byte(name))
		if v == nil {
			return nil
		}

		var r model.EnvRecord
		if err := json.Unmarshal(v, &r); err != nil {
			return err
		}

		rec = &r

		return nil
	})

	return rec, err
}

// SaveAppState stores the most recent launch state.
func (b *Bolt) SaveAppState(state *model.AppState) error {
	if state == nil {
		return errors.New("app state is required")
	}

	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		app := tx.Bucket([]byte(boltBucketApp))

		return app.Put([]byte(appStateKey), data)
	})
}

// GetAppState returns the most recent launch state, or nil.
func (b *Bolt) GetAppState() (*model.AppState, error) {
	var state *model.AppState

	err := b.db.View(func(tx *bbolt.Tx) error {
		app := tx.Bucket([]byte(boltBucketApp))

		v := app.Get([]byte(appStateKey))
		if v == nil {
			return nil
		}

		var s model.AppState
		if err := json.Unmarshal(v, &s); err != nil {
			return err
		}

		state = &s

		return nil
	})

	return state, err
}
