package monitoring

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/sarchlab/axiconnect/fifo"
)

type bufferRsp struct {
	Buffer string `json:"buffer"`
	Level  int    `json:"level"`
	Cap    int    `json:"cap"`
}

// bufferQuery selects a page of buffers, fullest first. A zero limit means no
// limit.
type bufferQuery struct {
	byLevel bool
	limit   int
	offset  int
}

func parseBufferQuery(r *http.Request) (bufferQuery, error) {
	var q bufferQuery

	values := r.URL.Query()

	switch values.Get("sort") {
	case "", "percent":
	case "level":
		q.byLevel = true
	default:
		return q, fmt.Errorf("sort must be level or percent, got %q",
			values.Get("sort"))
	}

	for key, dst := range map[string]*int{
		"limit":  &q.limit,
		"offset": &q.offset,
	} {
		s := values.Get(key)
		if s == "" {
			continue
		}

		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, fmt.Errorf("%s must be a non-negative integer, got %q",
				key, s)
		}

		*dst = n
	}

	return q, nil
}

func fullness(b fifo.Occupancy) float64 {
	if b.Capacity() == 0 {
		return 0
	}

	return float64(b.Size()) / float64(b.Capacity())
}

func (q bufferQuery) apply(buffers []fifo.Occupancy) []bufferRsp {
	rows := make([]bufferRsp, len(buffers))
	pct := make(map[string]float64, len(buffers))

	for i, b := range buffers {
		rows[i] = bufferRsp{Buffer: b.Name(), Level: b.Size(), Cap: b.Capacity()}
		pct[b.Name()] = fullness(b)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		pa, pb := pct[a.Buffer], pct[b.Buffer]

		if q.byLevel && a.Level != b.Level {
			return a.Level > b.Level
		}

		if pa != pb {
			return pa > pb
		}

		return a.Level > b.Level
	})

	start := min(q.offset, len(rows))
	end := len(rows)

	if q.limit > 0 {
		end = min(start+q.limit, end)
	}

	return rows[start:end]
}
