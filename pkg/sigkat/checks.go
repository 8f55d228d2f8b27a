package sigkat

import (
	"fmt"

	"github.com/mahdiidarabi/sigkat/internal/digest"
	"github.com/mahdiidarabi/sigkat/internal/rsasig"
	"github.com/mahdiidarabi/sigkat/pkg/vectors"
)

// task evaluates one check. Tasks are planned up front so each writes into
// its own slot of the report.
type task struct {
	outcome Outcome
	run     func() (bool, string)
}

// planRSA lists the checks for one RSA vector: verify, then sign-compare when
// the vector carries d.
func planRSA(source string, i int, v *vectors.RSAVector) []task {
	base := Outcome{Source: source, Index: i, Kind: KindRSA}
	if err := v.Validate(); err != nil {
		return []task{failed(base, CheckValidate, err)}
	}

	tasks := []task{{outcome: with(base, CheckVerify), run: func() (bool, string) {
		pub, alg, err := rsaInputs(v)
		if err != nil {
			return false, err.Error()
		}
		if rej := rsasig.Check(pub, alg, v.Digest, v.Signature); rej != nil {
			return false, rej.Reason
		}
		return true, ""
	}}}

	if v.HasPrivateKey() {
		tasks = append(tasks, task{outcome: with(base, CheckSign), run: func() (bool, string) {
			priv, err := v.PrivateKey()
			if err != nil {
				return false, err.Error()
			}
			alg, err := v.Algorithm()
			if err != nil {
				return false, err.Error()
			}
			sig, err := rsasig.Sign(priv, alg, v.Digest)
			if err != nil {
				return false, err.Error()
			}
			if at := firstDiff(sig, v.Signature); at >= 0 {
				return false, fmt.Sprintf("signature differs from expected at byte %d", at)
			}
			return true, ""
		}})
	}
	return tasks
}

func rsaInputs(v *vectors.RSAVector) (*rsasig.PublicKey, digest.Algorithm, error) {
	pub, err := v.PublicKey()
	if err != nil {
		return nil, 0, err
	}
	alg, err := v.Algorithm()
	if err != nil {
		return nil, 0, err
	}
	return pub, alg, nil
}

// planECDSA lists the checks for one ECDSA vector: verify against the
// expected result and, for valid vectors with mutations enabled, one
// single-byte corruption each of r, s and m that must not verify.
func planECDSA(source string, i int, v *vectors.ECDSAVector, mutations bool) []task {
	base := Outcome{Source: source, Index: i, Kind: KindECDSA}
	if err := v.Validate(); err != nil {
		return []task{failed(base, CheckValidate, err)}
	}

	tasks := []task{{outcome: with(base, CheckVerify), run: func() (bool, string) {
		got := v.Verify()
		switch {
		case got == v.Result:
			return true, ""
		case got:
			return false, "signature verified, expected rejection"
		default:
			return false, "signature rejected, expected valid"
		}
	}}}

	if !mutations || !v.Result {
		return tasks
	}
	mutants := []struct {
		check  Check
		mutate func(m *vectors.ECDSAVector)
	}{
		{CheckMutateR, func(m *vectors.ECDSAVector) { m.R = flipBit(m.R, len(m.R)-1) }},
		{CheckMutateS, func(m *vectors.ECDSAVector) { m.S = flipBit(m.S, len(m.S)-1) }},
		{CheckMutateM, func(m *vectors.ECDSAVector) { m.M = flipBit(m.M, 0) }}, // digest bits past bitlen(n) are ignored
	}
	for _, mu := range mutants {
		tasks = append(tasks, task{outcome: with(base, mu.check), run: func() (bool, string) {
			m := *v
			mu.mutate(&m)
			if m.Verify() {
				return false, "corrupted signature still verifies"
			}
			return true, ""
		}})
	}
	return tasks
}

func with(o Outcome, c Check) Outcome {
	o.Check = c
	return o
}

func failed(o Outcome, c Check, err error) task {
	o.Check = c
	return task{outcome: o, run: func() (bool, string) { return false, err.Error() }}
}

// flipBit returns a copy of b with the low bit of byte i flipped.
func flipBit(b []byte, i int) []byte {
	out := append([]byte(nil), b...)
	if i >= 0 && i < len(out) {
		out[i] ^= 0x01
	}
	return out
}

func firstDiff(a, b []byte) int {
	if len(a) != len(b) {
		return min(len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return -1
}
