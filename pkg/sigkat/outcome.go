package sigkat

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/mahdiidarabi/sigkat/internal/errors"
)

// Kind names the vector family an outcome belongs to.
type Kind string

const (
	KindSource Kind = "source" // the file itself could not be loaded
	KindRSA    Kind = "rsa"
	KindECDSA  Kind = "ecdsa"
)

// Check names the property an outcome tested.
type Check string

const (
	CheckLoad     Check = "load"
	CheckValidate Check = "validate"
	CheckVerify   Check = "verify"
	CheckSign     Check = "sign"
	CheckMutateR  Check = "mutate-r"
	CheckMutateS  Check = "mutate-s"
	CheckMutateM  Check = "mutate-m"
)

// Outcome is the result of one check against one vector.
type Outcome struct {
	Source string `json:"source"`
	Index  int    `json:"index"`
	Kind   Kind   `json:"kind"`
	Check  Check  `json:"check"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

func (o Outcome) String() string {
	status := "PASS"
	if !o.Passed {
		status = "FAIL"
	}
	s := fmt.Sprintf("[%s] %s %s #%d %s", status, o.Source, o.Kind, o.Index, o.Check)
	if o.Reason != "" {
		s += ": " + o.Reason
	}
	return s
}

// Report aggregates the outcomes of a run, ordered by source (in the order
// given to Run), then kind (RSA before ECDSA), vector index, and check.
type Report struct {
	RunID    uuid.UUID     `json:"run_id"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Outcomes []Outcome     `json:"outcomes"`
}

// Passed returns the number of passing outcomes.
func (r *Report) Passed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Passed {
			n++
		}
	}
	return n
}

// Failures returns the failing outcomes in report order.
func (r *Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.Passed {
			out = append(out, o)
		}
	}
	return out
}

// Err returns nil when every outcome passed and an error wrapping
// ErrConformanceFailed otherwise.
func (r *Report) Err() error {
	failed := len(r.Failures())
	if failed == 0 {
		return nil
	}
	return errors.Wrapf(errors.ErrConformanceFailed, "%d of %d checks failed", failed, len(r.Outcomes))
}

// WriteText writes one line per outcome (failures only unless verbose)
// followed by a summary line.
func (r *Report) WriteText(w io.Writer, verbose bool) error {
	for _, o := range r.Outcomes {
		if !verbose && o.Passed {
			continue
		}
		if _, err := fmt.Fprintln(w, o.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "run %s: %d passed, %d failed, %d total in %s\n",
		r.RunID, r.Passed(), len(r.Outcomes)-r.Passed(), len(r.Outcomes), r.Duration.Round(time.Millisecond))
	return err
}

// WriteJSON writes the report as an indented JSON document.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
