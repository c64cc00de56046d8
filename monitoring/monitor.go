// Package monitoring serves a running simulation over HTTP, so that it can be
// inspected and paused from outside.
package monitoring

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/sarchlab/axiconnect/fifo"
	"github.com/sarchlab/axiconnect/sim/hardware"
	"github.com/sarchlab/axiconnect/sim/id"
)

// Monitor collects the components and buffers of a clock domain and exposes
// them through a JSON API.
type Monitor struct {
	domain     *hardware.Domain
	components map[string]hardware.Component
	order      []string
	buffers    []fifo.Occupancy
	port       int

	// pauseMu orders pause requests with inspections. userPaused is set
	// while /api/pause holds the engine.
	pauseMu    sync.Mutex
	userPaused bool

	barsMu sync.Mutex
	bars   []*ProgressBar
}

// NewMonitor creates a Monitor with nothing registered.
func NewMonitor() *Monitor {
	return &Monitor{components: make(map[string]hardware.Component)}
}

// WithPortNumber sets the port to listen on. Zero and privileged ports
// select a free port.
func (m *Monitor) WithPortNumber(port int) *Monitor {
	if port > 0 && port < 1024 {
		log.Printf("monitor: port %d is privileged, using a free port", port)
		port = 0
	}

	m.port = port

	return m
}

// RegisterDomain registers a clock domain with all of its components.
func (m *Monitor) RegisterDomain(d *hardware.Domain) {
	m.domain = d

	for _, c := range d.Components() {
		m.RegisterComponent(c)
	}
}

// RegisterComponent registers a component. A component that is a buffer, or
// that exposes one through a Buffer method, also registers that buffer.
func (m *Monitor) RegisterComponent(c hardware.Component) {
	if _, dup := m.components[c.Name()]; !dup {
		m.order = append(m.order, c.Name())
	}

	m.components[c.Name()] = c

	if b := bufferOf(c); b != nil {
		m.RegisterBuffer(b)
	}
}

func bufferOf(c hardware.Component) fifo.Occupancy {
	if b, ok := c.(fifo.Occupancy); ok {
		return b
	}

	method := reflect.ValueOf(c).MethodByName("Buffer")
	if !method.IsValid() {
		return nil
	}

	t := method.Type()
	if t.NumIn() != 0 || t.NumOut() != 1 {
		return nil
	}

	b, _ := method.Call(nil)[0].Interface().(fifo.Occupancy)

	return b
}

// RegisterBuffer adds a buffer to the occupancy listing.
func (m *Monitor) RegisterBuffer(b fifo.Occupancy) {
	m.buffers = append(m.buffers, b)
}

// inspect runs f with the engine held between events, so that f reads a
// consistent model. An engine paused through the API stays paused.
func (m *Monitor) inspect(f func() error) error {
	m.pauseMu.Lock()
	defer m.pauseMu.Unlock()

	if m.domain == nil || m.userPaused {
		return f()
	}

	e := m.domain.Engine()
	e.Pause()
	defer e.Continue()

	return f()
}

// CreateProgressBar starts tracking a run of total cycles.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        id.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.barsMu.Lock()
	m.bars = append(m.bars, bar)
	m.barsMu.Unlock()

	return bar
}

// CompleteProgressBar stops tracking a bar.
func (m *Monitor) CompleteProgressBar(bar *ProgressBar) {
	m.barsMu.Lock()
	defer m.barsMu.Unlock()

	for i, b := range m.bars {
		if b == bar {
			m.bars = append(m.bars[:i:i], m.bars[i+1:]...)
			return
		}
	}
}

// Router returns the routes of the monitoring API.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.Handle("/now", apiFunc(m.now)).Methods(http.MethodGet)
	api.Handle("/pause", apiFunc(m.pause)).
		Methods(http.MethodGet, http.MethodPost)
	api.Handle("/continue", apiFunc(m.resume)).
		Methods(http.MethodGet, http.MethodPost)
	api.Handle("/components", apiFunc(m.listComponents)).
		Methods(http.MethodGet)
	api.Handle("/components/{name}", apiFunc(m.component)).
		Methods(http.MethodGet)
	api.Handle("/components/{name}/fields/{field}", apiFunc(m.field)).
		Methods(http.MethodGet)
	api.Handle("/buffers", apiFunc(m.listBuffers)).Methods(http.MethodGet)
	api.Handle("/progress", apiFunc(m.listProgress)).Methods(http.MethodGet)
	api.Handle("/resource", apiFunc(m.resource)).Methods(http.MethodGet)
	api.Handle("/profile", apiFunc(m.profile)).Methods(http.MethodGet)

	r.Handle("/", apiFunc(func(w http.ResponseWriter, _ *http.Request) error {
		return writeJSON(w, routeList(api))
	}))

	return r
}

func routeList(r *mux.Router) []string {
	var paths []string

	_ = r.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		if tpl, err := route.GetPathTemplate(); err == nil {
			paths = append(paths, tpl)
		}

		return nil
	})

	return paths
}

// StartServer listens in the background and returns the URL of the server.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(m.port))
	if err != nil {
		return "", fmt.Errorf("monitor: listen: %w", err)
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	log.Printf("monitor: serving %s", url)

	server := &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			log.Panicf("monitor: %v", err)
		}
	}()

	return url, nil
}
