package vectors

import (
	"fmt"
	"sort"
)

// Summary counts the vectors of a collection by shape.
type Summary struct {
	RSA          int            `json:"rsa"`
	RSASigning   int            `json:"rsa_signing"`
	ECDSA        int            `json:"ecdsa"`
	ECDSAInvalid int            `json:"ecdsa_expected_invalid"`
	ByShape      map[string]int `json:"by_shape"`
}

// Summarize tallies c. Vectors whose hash or curve cannot be resolved are
// counted under "unknown".
func (c *Collection) Summarize() Summary {
	s := Summary{ByShape: map[string]int{}}
	for i := range c.RSA {
		v := &c.RSA[i]
		s.RSA++
		if v.HasPrivateKey() {
			s.RSASigning++
		}
		hash := "unknown"
		if alg, err := v.Algorithm(); err == nil {
			hash = alg.String()
		}
		s.ByShape[fmt.Sprintf("RSA-%d/%s", v.Key.MBits, hash)]++
	}
	for i := range c.ECDSA {
		v := &c.ECDSA[i]
		s.ECDSA++
		if !v.Result {
			s.ECDSAInvalid++
		}
		name := "unknown"
		if cp, err := v.CurveParams(); err == nil {
			name = cp.Name
		}
		hash := "unknown"
		if alg, err := v.Algorithm(); err == nil {
			hash = alg.String()
		}
		s.ByShape[fmt.Sprintf("ECDSA-%s/%s", name, hash)]++
	}
	return s
}

// Shapes returns the keys of ByShape in sorted order.
func (s Summary) Shapes() []string {
	keys := make([]string, 0, len(s.ByShape))
	for k := range s.ByShape {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
