package classes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gojek/heimdall/v7"

	"github.com/ritmofit/cupos/pkg/request/httpclient"
)

// Client reads the upstream class catalog
type Client struct {
	client   heimdall.Doer
	baseURL  string
	apiToken string
}

// Config holds the connection settings of the catalog API
type Config struct {
	BaseURL    string                             `mapstructure:"baseURL"`
	APIToken   string                             `mapstructure:"apiToken"`
	RetryCount int                                `mapstructure:"retryCount"`
	ConnPool   httpclient.ConnectionPoolConfig    `mapstructure:"connectionPool"`
	Hystrix    httpclient.HystrixResiliencyConfig `mapstructure:"hystrix"`
}

// ClassID accepts both string and numeric ids; numbers are kept in base 10
type ClassID string

func (id *ClassID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ClassID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("class id must be a string or a number: %s", string(b))
	}
	if i, err := n.Int64(); err == nil {
		*id = ClassID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = ClassID(n.String())
	return nil
}

// Class is one scheduled class of the catalog.
// Capacity and CurrentEnrollment are nil when the upstream has no live counts.
type Class struct {
	ID                ClassID `json:"id"`
	Name              string  `json:"nombre"`
	Discipline        string  `json:"disciplina,omitempty"`
	Site              string  `json:"sede,omitempty"`
	Instructor        string  `json:"profesor,omitempty"`
	StartsAt          string  `json:"fecha,omitempty"`
	DurationMinutes   int     `json:"duracion,omitempty"`
	Capacity          *int    `json:"cupo,omitempty"`
	CurrentEnrollment *int    `json:"inscriptos,omitempty"`
}

// Available returns the free seats when both counts are known
func (c Class) Available() (int, bool) {
	if c.Capacity == nil || c.CurrentEnrollment == nil {
		return 0, false
	}
	if free := *c.Capacity - *c.CurrentEnrollment; free > 0 {
		return free, true
	}
	return 0, true
}
