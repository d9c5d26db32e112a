package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ExperimentID identifies an experiment inside one extraction result. The
// extraction service emits integers, other producers may emit strings, so
// both JSON forms decode into the same comparable value.
type ExperimentID string

func NewExperimentID(n int) ExperimentID {
	return ExperimentID(strconv.Itoa(n))
}

func (id ExperimentID) String() string { return string(id) }

func (id ExperimentID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *ExperimentID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("experiment id is required")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode experiment id: %w", err)
		}
		*id = ExperimentID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode experiment id: %w", err)
	}
	*id = canonicalNumberID(n)
	return nil
}

// canonicalNumberID maps integral numbers written as 1, 1.0 or 1e0 to the
// same id. Fractions and integers beyond float64 precision keep their text.
func canonicalNumberID(n json.Number) ExperimentID {
	if i, err := n.Int64(); err == nil {
		return ExperimentID(strconv.FormatInt(i, 10))
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > maxExactInteger {
		return ExperimentID(n.String())
	}
	return ExperimentID(strconv.FormatInt(int64(f), 10))
}

const maxExactInteger = 1 << 53

type Experiment struct {
	ID      ExperimentID `json:"id"`
	Title   string       `json:"title"`
	Preview string       `json:"preview"`
	Text    string       `json:"text"`
}

// Report is the generated write-up for one experiment. It has no identity of
// its own and is only meaningful next to the selection that produced it.
type Report struct {
	Procedure string `json:"procedure"`
	Theory    string `json:"theory"`
	Safety    string `json:"safety"`
}

// FindExperiment returns the experiment with the given id, if present.
func FindExperiment(experiments []Experiment, id ExperimentID) (Experiment, bool) {
	for _, exp := range experiments {
		if exp.ID == id {
			return exp, true
		}
	}
	return Experiment{}, false
}
