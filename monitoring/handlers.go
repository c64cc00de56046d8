package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/axiconnect/sim/hardware"
)

// apiFunc is a handler that reports failures as errors. A statusError picks
// the response code; any other error is a 500.
type apiFunc func(w http.ResponseWriter, r *http.Request) error

func (f apiFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := f(w, r)
	if err == nil {
		return
	}

	code := http.StatusInternalServerError

	var se statusError
	if errors.As(err, &se) {
		code = se.code
	}

	http.Error(w, err.Error(), code)
}

type statusError struct {
	code int
	err  error
}

func (e statusError) Error() string { return e.err.Error() }
func (e statusError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return statusError{code: http.StatusBadRequest, err: err}
}

func notFound(format string, args ...any) error {
	return statusError{
		code: http.StatusNotFound,
		err:  fmt.Errorf(format, args...),
	}
}

func writeJSON(w http.ResponseWriter, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(data)

	return err
}

type nowRsp struct {
	Cycle uint64  `json:"cycle"`
	Now   float64 `json:"now"`
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) error {
	var rsp nowRsp

	_ = m.inspect(func() error {
		rsp = nowRsp{Cycle: m.domain.Cycle(), Now: m.domain.Now()}
		return nil
	})

	return writeJSON(w, rsp)
}

func (m *Monitor) pause(w http.ResponseWriter, _ *http.Request) error {
	m.pauseMu.Lock()
	m.userPaused = true
	m.domain.Engine().Pause()
	m.pauseMu.Unlock()

	return writeJSON(w, map[string]bool{"paused": true})
}

func (m *Monitor) resume(w http.ResponseWriter, _ *http.Request) error {
	m.pauseMu.Lock()
	m.userPaused = false
	m.domain.Engine().Continue()
	m.pauseMu.Unlock()

	return writeJSON(w, map[string]bool{"paused": false})
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, m.order)
}

func (m *Monitor) lookup(r *http.Request) (hardware.Component, error) {
	name := mux.Vars(r)["name"]

	c, ok := m.components[name]
	if !ok {
		return nil, notFound("no component named %q", name)
	}

	return c, nil
}

func (m *Monitor) component(w http.ResponseWriter, r *http.Request) error {
	c, err := m.lookup(r)
	if err != nil {
		return err
	}

	s := goseth.NewSerializer()
	s.SetRoot(c)
	s.SetMaxDepth(1)

	return m.inspect(func() error { return s.Serialize(w) })
}

// field serializes one field of a component. Nested fields are separated by
// dots, as in "buf.Elements".
func (m *Monitor) field(w http.ResponseWriter, r *http.Request) error {
	c, err := m.lookup(r)
	if err != nil {
		return err
	}

	s := goseth.NewSerializer()
	s.SetRoot(c)
	s.SetMaxDepth(1)

	path := strings.Split(mux.Vars(r)["field"], ".")

	return m.inspect(func() error {
		if err := s.SetEntryPoint(path); err != nil {
			return badRequest(err)
		}

		return s.Serialize(w)
	})
}

func (m *Monitor) listBuffers(w http.ResponseWriter, r *http.Request) error {
	q, err := parseBufferQuery(r)
	if err != nil {
		return badRequest(err)
	}

	var rsp []bufferRsp

	_ = m.inspect(func() error {
		rsp = q.apply(m.buffers)
		return nil
	})

	return writeJSON(w, rsp)
}

func (m *Monitor) listProgress(w http.ResponseWriter, _ *http.Request) error {
	m.barsMu.Lock()
	defer m.barsMu.Unlock()

	if m.bars == nil {
		return writeJSON(w, []*ProgressBar{})
	}

	return writeJSON(w, m.bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) resource(w http.ResponseWriter, _ *http.Request) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	cpu, err := proc.CPUPercent()
	if err != nil {
		return err
	}

	mem, err := proc.MemoryInfo()
	if err != nil {
		return err
	}

	return writeJSON(w, resourceRsp{CPUPercent: cpu, MemorySize: mem.RSS})
}

// profile samples the CPU for ?seconds=N seconds, one by default.
func (m *Monitor) profile(w http.ResponseWriter, r *http.Request) error {
	seconds := 1

	if s := r.URL.Query().Get("seconds"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 60 {
			return badRequest(fmt.Errorf("seconds must be in 1..60, got %q", s))
		}

		seconds = n
	}

	var buf bytes.Buffer
	if err := pprof.StartCPUProfile(&buf); err != nil {
		return statusError{code: http.StatusConflict, err: err}
	}

	time.Sleep(time.Duration(seconds) * time.Second)
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		return err
	}

	return writeJSON(w, prof)
}
