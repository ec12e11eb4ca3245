package grafana

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

// Series holds the numeric samples of one query, oldest first. Null and
// non-numeric samples are dropped.
type Series struct {
	Values []float64
}

// Latest returns the newest sample.
func (s *Series) Latest() (float64, bool) {
	if s == nil || len(s.Values) == 0 {
		return 0, false
	}
	return s.Values[len(s.Values)-1], true
}

// Max returns the largest sample, or 0 for an empty series.
func (s *Series) Max() float64 {
	if s == nil || len(s.Values) == 0 {
		return 0
	}
	return lo.Max(s.Values)
}

// valuesPath is the sample column of the first frame: values[0] holds the
// timestamps and values[1] the readings.
const valuesPath = "results.A.frames.0.data.values.1"

func parseSeries(body []byte) (*Series, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("grafana returned invalid JSON")
	}
	if errMsg := gjson.GetBytes(body, "results.A.error"); errMsg.Exists() {
		return nil, fmt.Errorf("grafana query error: %s", errMsg.String())
	}

	series := &Series{}
	gjson.GetBytes(body, valuesPath).ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.Number {
			series.Values = append(series.Values, v.Float())
		}
		return true
	})
	return series, nil
}

// parseHostNames collects the host part of every frame name. Zabbix frames
// are named "<host>: <item>".
func parseHostNames(body []byte) []string {
	var hosts []string
	gjson.GetBytes(body, "results.A.frames").ForEach(func(_, frame gjson.Result) bool {
		name := frame.Get("schema.name").String()
		if name == "" {
			name = frame.Get("name").String()
		}
		if host, _, _ := strings.Cut(name, ":"); strings.TrimSpace(host) != "" {
			hosts = append(hosts, strings.TrimSpace(host))
		}
		return true
	})
	return lo.Uniq(hosts)
}
