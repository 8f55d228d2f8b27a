package sigkat

import (
	"context"
	"crypto/rand"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mahdiidarabi/sigkat/internal/curve"
	"github.com/mahdiidarabi/sigkat/internal/digest"
	"github.com/mahdiidarabi/sigkat/internal/ecsig"
	"github.com/mahdiidarabi/sigkat/internal/errors"
	"github.com/mahdiidarabi/sigkat/internal/rsasig"
)

// SoakConfig configures a fresh-key round-trip sampling run.
type SoakConfig struct {
	// Trials is the number of sign/verify round trips per algorithm.
	Trials int

	// RSABits is the modulus size of the generated RSA keys (0 = skip RSA).
	RSABits int

	// Curve names the ECDSA curve ("" = skip ECDSA).
	Curve string

	// NumWorkers controls parallelization (0 = auto-detect)
	NumWorkers int

	// KeyReuse is how many consecutive trials share one RSA key on a worker.
	// RSA key generation dominates the run time otherwise.
	KeyReuse int
}

// DefaultSoakConfig returns the configuration used by `sigkat soak`.
func DefaultSoakConfig() SoakConfig {
	return SoakConfig{
		Trials:     10000,
		RSABits:    2048,
		Curve:      curve.P384().Name,
		NumWorkers: 0, // Auto-detect
		KeyReuse:   100,
	}
}

// SoakResult summarizes a soak run.
type SoakResult struct {
	Trials       int64         `json:"trials"`
	Failures     int64         `json:"failures"`
	FirstFailure string        `json:"first_failure,omitempty"`
	Elapsed      time.Duration `json:"elapsed"`
}

// Err returns ErrConformanceFailed when any trial failed.
func (r *SoakResult) Err() error {
	if r.Failures == 0 {
		return nil
	}
	return errors.Wrapf(errors.ErrConformanceFailed, "%d of %d round trips failed, first: %s", r.Failures, r.Trials, r.FirstFailure)
}

// soakWorker holds per-worker key material.
type soakWorker struct {
	cfg    SoakConfig
	nonces ecsig.NonceSource
	ec     *curve.Params

	rsaPub  *rsasig.PublicKey
	rsaPriv *rsasig.PrivateKey
	rsaUses int
}

// Soak signs random digests with freshly generated keys and checks that each
// signature verifies and that a tampered digest does not. Trials are spread
// over a pool of workers fed through a channel.
func (c *Client) Soak(ctx context.Context, cfg SoakConfig) (*SoakResult, error) {
	if cfg.Trials <= 0 {
		return nil, errors.Invalidf(errors.ErrInvalidConfig, "soak needs a positive trial count, got %d", cfg.Trials)
	}
	if cfg.RSABits < 0 {
		return nil, errors.Invalidf(errors.ErrInvalidConfig, "negative RSA modulus size %d", cfg.RSABits)
	}
	if cfg.RSABits == 0 && cfg.Curve == "" {
		return nil, errors.Invalidf(errors.ErrInvalidConfig, "soak needs RSA bits or a curve")
	}
	var ec *curve.Params
	if cfg.Curve != "" {
		var err error
		if ec, err = curve.Lookup(cfg.Curve); err != nil {
			return nil, err
		}
	}
	numWorkers := cfg.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if cfg.KeyReuse <= 0 {
		cfg.KeyReuse = 1
	}

	c.logger.Info().Int("trials", cfg.Trials).Int("rsa_bits", cfg.RSABits).Str("curve", cfg.Curve).
		Int("workers", numWorkers).Msg("starting soak run")
	started := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workChan := make(chan int, numWorkers*10)
	var (
		tested, failures   int64
		firstOnce, errOnce sync.Once
		firstFailure       string
		fatal              error
	)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w := &soakWorker{cfg: cfg, nonces: c.nonces, ec: ec}
			for {
				select {
				case <-ctx.Done():
					return
				case trial, ok := <-workChan:
					if !ok {
						return
					}
					reason, err := w.trial(trial)
					if err != nil {
						errOnce.Do(func() { fatal = errors.Wrapf(err, "worker %d trial %d", workerID, trial) })
						cancel()
						return
					}
					if reason != "" {
						atomic.AddInt64(&failures, 1)
						firstOnce.Do(func() { firstFailure = reason })
						c.logger.Warn().Int("trial", trial).Str("reason", reason).Msg("round trip failed")
					}
					if n := atomic.AddInt64(&tested, 1); n%1000 == 0 {
						c.logger.Debug().Int64("tested", n).Msg("soak progress")
					}
				}
			}
		}(i)
	}

	go func() {
		defer close(workChan)
		for trial := 0; trial < cfg.Trials; trial++ {
			select {
			case <-ctx.Done():
				return
			case workChan <- trial:
			}
		}
	}()

	wg.Wait()
	if fatal != nil {
		return nil, fatal
	}
	if err := ctx.Err(); err != nil && atomic.LoadInt64(&tested) < int64(cfg.Trials) {
		return nil, errors.Wrap(err, "soak run cancelled")
	}

	result := &SoakResult{
		Trials:       atomic.LoadInt64(&tested),
		Failures:     atomic.LoadInt64(&failures),
		FirstFailure: firstFailure,
		Elapsed:      time.Since(started),
	}
	c.logger.Info().Int64("trials", result.Trials).Int64("failures", result.Failures).
		Dur("elapsed", result.Elapsed).Msg("soak run finished")
	return result, nil
}

// trial runs one RSA and one ECDSA round trip. It returns a non-empty reason
// for a conformance failure and an error only when key generation or
// randomness fails.
func (w *soakWorker) trial(n int) (string, error) {
	alg := digest.Algorithms[n%len(digest.Algorithms)]
	d := make([]byte, alg.Size())
	if _, err := rand.Read(d); err != nil {
		return "", err
	}
	// ECDSA only reads the leftmost bitlen(n) bits of the digest, so the
	// flipped byte stays within the first 16 bytes for every curve.
	tampered := append([]byte(nil), d...)
	tampered[n%16] ^= 0x01

	if w.cfg.RSABits > 0 {
		if w.rsaPriv == nil || w.rsaUses >= w.cfg.KeyReuse {
			pub, priv, err := rsasig.GenerateKey(rand.Reader, w.cfg.RSABits)
			if err != nil {
				return "", err
			}
			w.rsaPub, w.rsaPriv, w.rsaUses = pub, priv, 0
		}
		w.rsaUses++

		sig, err := rsasig.Sign(w.rsaPriv, alg, d)
		if err != nil {
			return fmt.Sprintf("trial %d: rsa sign: %v", n, err), nil
		}
		if rej := rsasig.Check(w.rsaPub, alg, d, sig); rej != nil {
			return fmt.Sprintf("trial %d: rsa verify: %s", n, rej.Reason), nil
		}
		if rsasig.Verify(w.rsaPub, alg, tampered, sig) {
			return fmt.Sprintf("trial %d: rsa verified a tampered digest", n), nil
		}
	}

	if w.ec != nil {
		priv, err := ecsig.GenerateKey(w.ec, rand.Reader)
		if err != nil {
			return "", err
		}
		sig, err := ecsig.Sign(priv, d, w.nonces)
		if err != nil {
			return fmt.Sprintf("trial %d: ecdsa sign: %v", n, err), nil
		}
		if !ecsig.Verify(priv.Public(), d, sig.R, sig.S) {
			return fmt.Sprintf("trial %d: ecdsa signature does not verify", n), nil
		}
		if ecsig.Verify(priv.Public(), tampered, sig.R, sig.S) {
			return fmt.Sprintf("trial %d: ecdsa verified a tampered digest", n), nil
		}
	}
	return "", nil
}
