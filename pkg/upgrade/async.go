// SPDX-License-Identifier: Apache-2.0

package upgrade

import (
	"context"
	"database/sql"

	"github.com/mshamis85/pgupgrader/pkg/options"
	"github.com/mshamis85/pgupgrader/pkg/upgradeerrors"
)

// pump dedicates a single *sql.Conn to a single goroutine that drains jobs
// off a channel, one at a time, so the run keeps its single-connection,
// sequential semantics even when the caller only holds the result channel.
type pump struct {
	conn *sql.Conn
	jobs chan func()
	done chan struct{}
}

func newPump(conn *sql.Conn) *pump {
	p := &pump{
		conn: conn,
		jobs: make(chan func()),
		done: make(chan struct{}),
	}
	go p.loop()
	return p
}

func (p *pump) loop() {
	defer close(p.done)
	for job := range p.jobs {
		job()
	}
}

func (p *pump) submit(job func()) {
	p.jobs <- job
}

func (p *pump) close() {
	close(p.jobs)
	<-p.done
}

// ApplyAsync runs the upgrade on a dedicated goroutine and returns
// immediately with a channel that receives exactly one value: the result of
// the run, or nil on success. The caller retains ownership of db and must
// not use it concurrently from other goroutines for the duration of the
// run.
func ApplyAsync(ctx context.Context, db *sql.DB, upgradersDir string, opts options.Options, logger Logger) <-chan error {
	result := make(chan error, 1)

	go func() {
		defer close(result)

		conn, err := db.Conn(ctx)
		if err != nil {
			result <- &upgradeerrors.ConnectionError{Reason: "failed to acquire connection", Err: err}
			return
		}
		defer conn.Close()

		p := newPump(conn)
		defer p.close()

		var runErr error
		done := make(chan struct{})
		p.submit(func() {
			runErr = Apply(ctx, conn, upgradersDir, opts, logger)
			close(done)
		})
		<-done

		result <- runErr
	}()

	return result
}
