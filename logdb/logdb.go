// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/thor"
)

// LogDB is the sqlite backed store of ledger events.
type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmtCache     *stmtCache
}

// New create or open log db at given path.
func New(path string) (*LogDB, error) {
	return open(path, path+"?_journal=wal")
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return open(":memory:", ":memory:")
}

func open(path, dsn string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			_ = db.Close()
		}
	}()

	// an in-memory db lives in a single connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		stmtCache:     newStmtCache(db),
	}, nil
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// FilterEvents returns the events selected by the filter. A nil filter selects all events in ascending order.
func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT seq, name, subject, data FROM event ORDER BY seq ASC")
	}

	var (
		args  []any
		query = "SELECT seq, name, subject, data FROM event WHERE 1"
	)

	if filter.Range != nil {
		if filter.Range.From > filter.Range.To {
			return nil, nil
		}
		query += " AND seq >= ?"
		args = append(args, newSequence(filter.Range.From, 0))
		if filter.Range.To < math.MaxUint32 {
			query += " AND seq < ?"
			args = append(args, newSequence(filter.Range.To+1, 0))
		}
	}

	if len(filter.CriteriaSet) > 0 {
		query += " AND ("
		for i, c := range filter.CriteriaSet {
			cond, cargs := c.toWhereCondition()
			if i > 0 {
				query += " OR "
			}
			query += "(" + cond + ")"
			args = append(args, cargs...)
		}
		query += ")"
	}

	if filter.Order == DESC {
		query += " ORDER BY seq DESC"
	} else {
		query += " ORDER BY seq ASC"
	}

	if filter.Options != nil {
		query += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	} else {
		filter.Options = &Options{}
	}

	metricsHandleEventsFilter(filter)

	return db.queryEvents(ctx, query, args...)
}

func (c *EventCriteria) toWhereCondition() (string, []any) {
	cond := "1"
	var args []any
	if c.Name != nil {
		cond += " AND name = ?"
		args = append(args, *c.Name)
	}
	if c.Subject != nil {
		cond += " AND subject = ?"
		args = append(args, c.Subject.Bytes())
	}
	return cond, args
}

func (db *LogDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var (
			seq     sequence
			name    string
			subject []byte
			data    []byte
		)
		if err := rows.Scan(&seq, &name, &subject, &data); err != nil {
			return nil, err
		}
		events = append(events, &Event{
			Round:   seq.Round(),
			Index:   seq.Index(),
			Name:    name,
			Subject: thor.BytesToAddress(subject),
			Data:    data,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// NewestRound returns the round of the newest stored event.
func (db *LogDB) NewestRound() (uint32, bool, error) {
	seq, ok, err := db.newestSequence()
	if err != nil || !ok {
		return 0, ok, err
	}
	return seq.Round(), true, nil
}

func (db *LogDB) newestSequence() (sequence, bool, error) {
	var seq sequence
	if err := db.stmtCache.MustPrepare("SELECT seq FROM event ORDER BY seq DESC LIMIT 1").QueryRow().Scan(&seq); err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, err
	}
	return seq, true, nil
}

// NewWriter creates a log writer.
func (db *LogDB) NewWriter() *Writer {
	return &Writer{db: db}
}

// Writer buffers events until Commit writes them in one transaction.
type Writer struct {
	db     *LogDB
	events []*Event
}

// Write appends events emitted in the given round and assigns their position.
// Indexes continue from the newest stored or pending event of that round.
func (w *Writer) Write(round uint64, events []*Event) error {
	if round > math.MaxUint32 {
		return fmt.Errorf("round %d out of range", round)
	}
	r := uint32(round)

	next, err := w.nextIndex(r)
	if err != nil {
		return err
	}
	for _, ev := range events {
		ev.Round = r
		ev.Index = next
		w.events = append(w.events, ev)
		next++
	}
	return nil
}

func (w *Writer) nextIndex(round uint32) (uint32, error) {
	if len(w.events) > 0 {
		last := w.events[len(w.events)-1]
		if last.Round > round {
			return 0, fmt.Errorf("round %d behind pending round %d", round, last.Round)
		}
		if last.Round == round {
			return last.Index + 1, nil
		}
		return 0, nil
	}
	seq, ok, err := w.db.newestSequence()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	if seq.Round() > round {
		return 0, fmt.Errorf("round %d behind stored round %d", round, seq.Round())
	}
	if seq.Round() == round {
		return seq.Index() + 1, nil
	}
	return 0, nil
}

// Commit writes buffered events.
func (w *Writer) Commit() (err error) {
	if len(w.events) == 0 {
		return nil
	}
	tx, err := w.db.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare("INSERT INTO event(seq, name, subject, data) VALUES(?,?,?,?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range w.events {
		if _, err = stmt.Exec(newSequence(ev.Round, ev.Index), ev.Name, ev.Subject.Bytes(), ev.Data); err != nil {
			return errors.Wrapf(err, "insert event %s", ev.Name)
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	w.events = w.events[:0]
	return nil
}

// Rollback drops buffered events.
func (w *Writer) Rollback() {
	w.events = w.events[:0]
}

// Len returns the number of buffered events.
func (w *Writer) Len() int {
	return len(w.events)
}
