// Package sigkat runs known-answer conformance checks for the RSA PKCS#1 v1.5
// and ECDSA primitives against versioned test-vector files.
//
// # Quick Start
//
//	import "github.com/mahdiidarabi/sigkat/pkg/sigkat"
//
//	client := sigkat.NewClient()
//
//	report, err := client.Run(ctx, "fixtures/rsa_pkcs1v15.json", "fixtures/ecdsa_p384.json")
//	if err != nil {
//	    log.Fatal(err) // cancelled
//	}
//	report.WriteText(os.Stdout, false)
//	if err := report.Err(); err != nil {
//	    os.Exit(1)
//	}
//
// # Checks
//
// Every RSA vector is verified, and re-signed when it carries the private
// exponent: PKCS#1 v1.5 is deterministic, so the signature must match byte
// for byte. Every ECDSA vector is verified against its expected result, and
// valid ones are corrupted in r, s and m to confirm the corruption is caught.
// A vector that fails validation yields one failing "validate" outcome; a
// file that cannot be parsed yields one failing "load" outcome. Neither stops
// the run.
//
// # Round-trip sampling
//
// Soak signs random digests with freshly generated keys:
//
//	cfg := sigkat.DefaultSoakConfig()
//	cfg.Trials = 1000
//	result, err := sigkat.NewClient().WithNonceSource(ecsig.RandomNonces{}).Soak(ctx, cfg)
package sigkat
