package aggregator

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/R3E-Network/service_layer/internal/aggregator/state"
)

// Service wires the Scanner, Retriever, Pricer, Hydrator, and Applier
// workers into one ingestion pipeline over the shared materialized
// State, and owns the HTTP/SSE server that exposes it. Modeled on
// services/indexer.Service.
type Service struct {
	cfg   *Config
	state *state.State

	eventLog  *EventLog
	rpc       *RPCClient
	scanner   *Scanner
	retriever *Retriever
	pricer    *Pricer
	hydrator  *Hydrator
	applier   *Applier
	server    *Server

	// hotListMirror is nil unless cfg.RedisURL is set.
	hotListMirror *HotListMirror

	// audit is nil unless cfg.PostgresDSN is set.
	audit *AuditStore

	log *logrus.Entry

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewService builds a Service from cfg. The durable event log is opened
// and replayed into a fresh State before NewService returns, so Start
// never blocks on startup replay.
func NewService(cfg *Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	eventsPath := filepath.Join(cfg.DataDir, "events.jsonl")
	eventLog, err := OpenEventLog(eventsPath)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}

	st := state.New()

	rpc, err := NewRPCClient(cfg.RPCURL, 0, cfg.RequestTimeout)
	if err != nil {
		eventLog.Close()
		return nil, fmt.Errorf("create rpc client: %w", err)
	}

	// The Scanner emits raw signature batches; the Retriever, Pricer,
	// and Hydrator all emit decodedEvent onto this one shared channel,
	// which the Applier fans in and merges, mirroring the original's
	// single mpsc::Receiver<Vec<Event>>.
	signatures := make(chan []string, 64)
	decoded := make(chan decodedEvent, 4096)

	scanner := NewScanner(rpc, cfg.ProgramID, cfg.DataDir, signatures, cfg.ScanInterval)
	retriever := NewRetriever(rpc, cfg.ProgramID, signatures, decoded, cfg.RetryInterval)
	pricer := NewPricer(cfg.PriceAPIURL, decoded, cfg.SolPriceInterval)
	metadata := NewMetadataClient(cfg.RequestTimeout)
	hydrator := NewHydrator(st.HydrationRequests(), metadata, decoded)

	applier, err := NewApplier(st, eventLog, eventsPath, cfg.DataDir, decoded)
	if err != nil {
		eventLog.Close()
		return nil, fmt.Errorf("create applier: %w", err)
	}

	var hotListMirror *HotListMirror
	if cfg.RedisURL != "" {
		hotListMirror, err = NewHotListMirror(cfg.RedisURL)
		if err != nil {
			eventLog.Close()
			return nil, fmt.Errorf("create hot list mirror: %w", err)
		}
	}

	var audit *AuditStore
	if cfg.PostgresDSN != "" {
		audit, err = OpenAuditStore(cfg.PostgresDSN)
		if err != nil {
			eventLog.Close()
			return nil, fmt.Errorf("open audit store: %w", err)
		}
		applier.WithAuditStore(audit)
	}

	return &Service{
		cfg:           cfg,
		state:         st,
		eventLog:      eventLog,
		rpc:           rpc,
		scanner:       scanner,
		retriever:     retriever,
		pricer:        pricer,
		hydrator:      hydrator,
		applier:       applier,
		hotListMirror: hotListMirror,
		audit:         audit,
		server:        NewServer(st, cfg.ListenAddr),
		log:           logrus.WithField("component", "aggregator-service"),
	}, nil
}

// Start launches every worker goroutine plus the periodic hot-list
// refresher and the HTTP server, all under one cancelable context.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("service already running")
	}

	s.log.WithField("program_id", s.cfg.ProgramID).Info("starting aggregator")

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, fn := range []func(context.Context){
		s.scanner.Run,
		s.retriever.Run,
		s.pricer.Run,
		s.hydrator.Run,
		s.applier.Run,
		s.refreshHotListLoop,
	} {
		s.wg.Add(1)
		go func(run func(context.Context)) {
			defer s.wg.Done()
			run(runCtx)
		}(fn)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.Run(runCtx); err != nil {
			s.log.WithError(err).Error("http server exited")
		}
	}()

	s.running = true
	return nil
}

func (s *Service) refreshHotListLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.HotListInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.state.RefreshHotList(uint64(time.Now().Unix()))
			if s.hotListMirror != nil {
				s.hotListMirror.Publish(ctx, s.state.HotAssets(100, 0))
			}
		}
	}
}

// Stop cancels every worker, waits for them to exit, and closes the
// event log.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.log.Info("stopping aggregator")
	s.cancel()
	s.wg.Wait()

	s.running = false
	if s.hotListMirror != nil {
		if err := s.hotListMirror.Close(); err != nil {
			s.log.WithError(err).Error("close hot list mirror")
		}
	}
	if s.audit != nil {
		if err := s.audit.Close(); err != nil {
			s.log.WithError(err).Error("close audit store")
		}
	}
	return s.eventLog.Close()
}

// State exposes the materialized view for callers embedding the service
// (e.g. tests, or a combined binary serving multiple subsystems).
func (s *Service) State() *state.State {
	return s.state
}
