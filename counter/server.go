package counter

import (
	"errors"
	"io"
	"net/http"

	"github.com/delaneyj/signalgraph/counter/templates"
	"github.com/delaneyj/signalgraph/host"
	"github.com/delaneyj/signalgraph/reactive"
	"github.com/delaneyj/signalgraph/view"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/bytebufferpool"
)

// Server exposes an App over HTTP. Every access to the graph goes through
// the host loop; committed fragments are served straight from the surface.
type Server struct {
	loop    *host.Loop
	app     *App
	surface *view.MemorySurface
}

func NewServer(loop *host.Loop, app *App, surface *view.MemorySurface) *Server {
	return &Server{loop: loop, app: app, surface: surface}
}

// Routes returns the router. /metrics is only mounted when gatherer is set.
func (s *Server) Routes(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/counter", s.page)
	r.Post("/counter/click", s.click)
	r.Get("/counter/fragments/{name}", s.fragment)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	err := s.loop.Post(r.Context(), func(rs *reactive.System) error {
		return s.app.Page(buf)
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.B)
}

// click answers with the new button plus an out of band swap for the double
// fragment, so both are current in the browser after one round trip.
func (s *Server) click(w http.ResponseWriter, r *http.Request) {
	err := s.loop.Post(r.Context(), func(rs *reactive.System) error {
		if err := s.app.Click(); err != nil {
			return err
		}
		// no-op inside the per-event batch; under a frame policy it commits
		// the fragments before the response is written
		return rs.Flush()
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	button, _ := s.surface.Fragment(ButtonFragment)
	double, _ := s.surface.Fragment(DoubleFragment)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, button)
	templates.WriteSwapDouble(w, double)
}

func (s *Server) fragment(w http.ResponseWriter, r *http.Request) {
	out, ok := s.surface.Fragment(chi.URLParam(r, "name"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, out)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, host.ErrStopped) {
		code = http.StatusServiceUnavailable
	}
	http.Error(w, err.Error(), code)
}
