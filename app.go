package main

import (
	"context"
	"net/http"
	"net/http/httputil"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/labkit/correlation"

	"github.com/UtsavBalar1231/website/internal/cachestore"
	"github.com/UtsavBalar1231/website/internal/classify"
	"github.com/UtsavBalar1231/website/internal/config"
	"github.com/UtsavBalar1231/website/internal/control"
	"github.com/UtsavBalar1231/website/internal/httperrors"
	"github.com/UtsavBalar1231/website/internal/lifecycle"
	"github.com/UtsavBalar1231/website/internal/logging"
	"github.com/UtsavBalar1231/website/internal/middleware"
	"github.com/UtsavBalar1231/website/internal/push"
	"github.com/UtsavBalar1231/website/internal/strategy"
	"github.com/UtsavBalar1231/website/internal/upstream"
	"github.com/UtsavBalar1231/website/metrics"
)

type theApp struct {
	config      *config.Config
	registry    *cachestore.Registry
	classifier  *classify.Classifier
	strategies  map[classify.Category]strategy.Strategy
	revalidator *strategy.Revalidator
	lifecycle   *lifecycle.Controller
	proxy       *httputil.ReverseProxy
	hub         *push.Hub

	customHeaders http.Header

	// claimed flips to 1 when the lifecycle controller claims clients for
	// this generation; until then every request is passed through
	// untouched, as if a previous worker version were still in control.
	claimed int32
}

func newApp(cfg *config.Config) (*theApp, error) {
	classifier, err := classify.New(cfg.Cache.PrecachePaths, cfg.Cache.RuntimePatterns)
	if err != nil {
		return nil, err
	}

	customHeaders, err := middleware.ParseHeaderString(cfg.General.CustomHeaders)
	if err != nil {
		return nil, err
	}

	registry, err := cachestore.Open(cachestore.Options{
		Path:       cfg.Cache.DBPath,
		HotExpiry:  cfg.Cache.HotCacheExpiry,
		HotCleanup: cfg.Cache.HotCacheCleanup,
	})
	if err != nil {
		return nil, err
	}

	static, err := registry.Open(cfg.Cache.StaticStoreName())
	if err != nil {
		registry.Close()
		return nil, err
	}

	runtime, err := registry.Open(cfg.Cache.RuntimeStoreName())
	if err != nil {
		registry.Close()
		return nil, err
	}

	client := upstream.NewClient(cfg.Upstream)
	revalidator := strategy.NewRevalidator(client, cfg.Cache)
	stores := strategy.Stores{Static: static, Runtime: runtime}

	proxy := httputil.NewSingleHostReverseProxy(cfg.Upstream.Origin)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		httperrors.Serve502WithRequest(w, r, "passthrough to origin failed", err)
	}

	a := &theApp{
		config:        cfg,
		registry:      registry,
		classifier:    classifier,
		strategies:    strategy.NewTable(stores, client, revalidator),
		revalidator:   revalidator,
		proxy:         proxy,
		hub:           push.NewHub(),
		customHeaders: customHeaders,
	}

	a.lifecycle = lifecycle.NewController(cfg.Cache, registry, client, a.claim)

	return a, nil
}

func (a *theApp) claim() {
	atomic.StoreInt32(&a.claimed, 1)
}

func (a *theApp) isClaimed() bool {
	return atomic.LoadInt32(&a.claimed) == 1
}

// serveRequest is the interception path: classify, then dispatch to the
// category's strategy. Bypassed requests, and every request seen before this
// generation has claimed its clients, go straight to the origin.
func (a *theApp) serveRequest(w http.ResponseWriter, r *http.Request) {
	began := time.Now()

	category := a.classifier.Classify(r)
	metrics.RequestsTotal.WithLabelValues(category.String()).Inc()

	middleware.AddCustomHeaders(w, a.customHeaders)

	if category == classify.Bypass || !a.isClaimed() {
		a.proxy.ServeHTTP(w, r)
		return
	}

	a.strategies[category].Serve(w, r)

	metrics.ServingTime.Observe(time.Since(began).Seconds())
}

func (a *theApp) serveStatus(w http.ResponseWriter, _ *http.Request) {
	if a.lifecycle.State() != lifecycle.StateActive {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// buildHandler assembles the worker's routing: the message channel and push
// endpoints are mounted under /_worker/, everything else is intercepted site
// traffic.
func (a *theApp) buildHandler() (http.Handler, error) {
	router := mux.NewRouter()

	workerCORS := cors.New(cors.Options{
		AllowedOrigins: []string{a.config.Upstream.Origin.String()},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})

	router.Handle("/_worker/message", workerCORS.Handler(control.NewHandler(a.lifecycle))).Methods(http.MethodPost, http.MethodOptions)
	router.Handle("/_worker/push", workerCORS.Handler(http.HandlerFunc(a.hub.ServePush))).Methods(http.MethodPost, http.MethodOptions)
	router.Handle("/_worker/notifications", workerCORS.Handler(http.HandlerFunc(a.hub.ServeSubscribe))).Methods(http.MethodGet, http.MethodOptions)
	router.Handle("/_worker/click", workerCORS.Handler(http.HandlerFunc(push.ServeClick))).Methods(http.MethodPost, http.MethodOptions)

	if path := a.config.General.StatusPath; path != "" {
		router.HandleFunc(path, a.serveStatus).Methods(http.MethodGet)
	}

	router.PathPrefix("/").HandlerFunc(a.serveRequest)

	var handler http.Handler = router

	handler, err := logging.AccessLogger(handler, a.config.Log.Format, nil)
	if err != nil {
		return nil, err
	}

	correlationOpts := []correlation.InboundHandlerOption{
		correlation.WithSetResponseHeader(),
	}
	if a.config.General.PropagateCorrelationID {
		correlationOpts = append(correlationOpts, correlation.WithPropagation())
	}

	return correlation.InjectCorrelationID(handler, correlationOpts...), nil
}

// Run installs and activates the cache generation, then serves until the
// context is cancelled. An install failure is fatal: the previous worker
// version (if any) stays in control and this process exits.
func (a *theApp) Run(ctx context.Context) error {
	if err := a.lifecycle.Run(ctx); err != nil {
		return err
	}

	handler, err := a.buildHandler()
	if err != nil {
		return err
	}

	var servers []*http.Server

	for _, addr := range a.config.ListenHTTPStrings.Split() {
		server := &http.Server{Addr: addr, Handler: handler}
		servers = append(servers, server)

		go func(server *http.Server) {
			log.WithField("listener", server.Addr).Info("worker listening")

			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Fatal("listener failed")
			}
		}(server)
	}

	if addr := a.config.General.MetricsAddress; addr != "" {
		metricsServer := &http.Server{Addr: addr, Handler: promhttp.Handler()}
		servers = append(servers, metricsServer)

		go func() {
			log.WithField("listener", addr).Info("metrics listening")

			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("metrics listener failed")
			}
		}()
	}

	<-ctx.Done()

	return a.shutdown(servers)
}

func (a *theApp) shutdown(servers []*http.Server) error {
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.General.ServerShutdownTimeout)
	defer cancel()

	var result *multierror.Error

	for _, server := range servers {
		if err := server.Shutdown(shutdownCtx); err != nil {
			result = multierror.Append(result, err)
		}
	}

	// drain detached revalidations before closing the store they write to
	a.revalidator.Wait()

	if err := a.registry.Close(); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}
