package sigkat

import (
	"context"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mahdiidarabi/sigkat/internal/ecsig"
	"github.com/mahdiidarabi/sigkat/internal/errors"
	"github.com/mahdiidarabi/sigkat/pkg/vectors"
)

// Client provides a high-level API for conformance runs over vector files.
type Client struct {
	parser    vectors.VectorParser
	workers   int
	logger    zerolog.Logger
	mutations bool
	nonces    ecsig.NonceSource
}

// NewClient creates a new client with default settings: parser chosen by
// file extension, one worker per CPU, mutation checks on, RFC 6979 nonces,
// and no logging.
func NewClient() *Client {
	return &Client{
		workers:   runtime.NumCPU(),
		logger:    zerolog.Nop(),
		mutations: true,
		nonces:    ecsig.RFC6979{},
	}
}

// WithParser forces one parser for every source instead of choosing by
// extension.
func (c *Client) WithParser(parser vectors.VectorParser) *Client {
	c.parser = parser
	return c
}

// WithWorkers sets the number of concurrent checks (0 = one per CPU).
func (c *Client) WithWorkers(n int) *Client {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	c.workers = n
	return c
}

// WithLogger sets the logger used for progress and per-failure messages.
func (c *Client) WithLogger(logger zerolog.Logger) *Client {
	c.logger = logger
	return c
}

// WithMutations enables or disables the single-byte corruption checks on
// valid ECDSA vectors.
func (c *Client) WithMutations(enabled bool) *Client {
	c.mutations = enabled
	return c
}

// WithNonceSource sets the ECDSA nonce source used by Soak. Run never signs
// ECDSA, since vectors carry no private scalar.
func (c *Client) WithNonceSource(nonces ecsig.NonceSource) *Client {
	c.nonces = nonces
	return c
}

// Run loads every source and checks every vector in it.
//
// Args:
//   - ctx: Context for cancellation; checks already dispatched finish.
//   - sources: Paths to vector files (JSON, YAML or CSV).
//
// Returns:
//   - The report, whose Err method says whether the run conformed. The
//     returned error is only set when ctx is cancelled.
func (c *Client) Run(ctx context.Context, sources ...string) (*Report, error) {
	started := time.Now()
	var tasks []task
	for _, source := range sources {
		col, err := c.load(source)
		if err != nil {
			c.logger.Warn().Err(err).Str("source", source).Msg("failed to load vectors")
			tasks = append(tasks, failed(Outcome{Source: source, Index: -1, Kind: KindSource}, CheckLoad, err))
			continue
		}
		c.logger.Debug().Str("source", source).Int("rsa", len(col.RSA)).Int("ecdsa", len(col.ECDSA)).Msg("loaded vectors")
		tasks = append(tasks, c.plan(source, col)...)
	}
	return c.execute(ctx, started, tasks)
}

// RunCollection checks an in-memory collection. Use this when vectors come
// from somewhere other than a file; source labels the outcomes.
func (c *Client) RunCollection(ctx context.Context, source string, col *vectors.Collection) (*Report, error) {
	return c.execute(ctx, time.Now(), c.plan(source, col))
}

func (c *Client) load(source string) (*vectors.Collection, error) {
	if c.parser != nil {
		return c.parser.ParseVectors(source)
	}
	return vectors.Load(source)
}

func (c *Client) plan(source string, col *vectors.Collection) []task {
	var tasks []task
	for i := range col.RSA {
		tasks = append(tasks, planRSA(source, i, &col.RSA[i])...)
	}
	for i := range col.ECDSA {
		tasks = append(tasks, planECDSA(source, i, &col.ECDSA[i], c.mutations)...)
	}
	return tasks
}

func (c *Client) execute(ctx context.Context, started time.Time, tasks []task) (*Report, error) {
	report := &Report{
		RunID:    uuid.New(),
		Started:  started,
		Outcomes: make([]Outcome, len(tasks)),
	}
	log := c.logger.With().Str("run_id", report.RunID.String()).Logger()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, t := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			o := t.outcome
			o.Passed, o.Reason = t.run()
			report.Outcomes[i] = o
			if !o.Passed {
				log.Debug().Str("source", o.Source).Str("kind", string(o.Kind)).Int("index", o.Index).
					Str("check", string(o.Check)).Str("reason", o.Reason).Msg("check failed")
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "conformance run cancelled")
	}

	report.Duration = time.Since(started)
	log.Info().Int("checks", len(report.Outcomes)).Int("passed", report.Passed()).
		Dur("duration", report.Duration).Msg("conformance run finished")
	return report, nil
}
