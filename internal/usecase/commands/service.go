package commands

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"simplix/internal/domain"
)

const defaultTargetRange = 10

type Config struct {
	// Coordinator is built from Workers and QueueSize when nil.
	Coordinator *Coordinator
	Workers     int
	QueueSize   int

	Logger     Logger
	Actors     domain.ActorDirectory
	Scopes     domain.ScopeDirectory
	Formatter  domain.TextFormatter
	Items      domain.ItemStore
	Attributes domain.AttributeStore
	// Events receives one record per dispatched line. Optional.
	Events domain.CommandRecordPublisher

	// TargetRange is how far debug blockInfo looks.
	TargetRange int
	Now         func() time.Time
}

// Service is the single entry point for raw command lines.
type Service struct {
	cfg         Config
	registry    *Registry
	coordinator *Coordinator
	pipeline    *Pipeline
	logger      Logger
	now         func() time.Time

	mu      sync.RWMutex
	started bool
	stopped bool
}

func NewService(cfg Config) (*Service, error) {
	if cfg.Actors == nil || cfg.Scopes == nil {
		return nil, fmt.Errorf("commands: actor and scope directories are required")
	}
	if cfg.Items == nil || cfg.Attributes == nil {
		return nil, fmt.Errorf("commands: item and attribute stores are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.TargetRange <= 0 {
		cfg.TargetRange = defaultTargetRange
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	coordinator := cfg.Coordinator
	if coordinator == nil {
		coordinator = NewCoordinator(cfg.Workers, cfg.QueueSize, cfg.Logger)
	}
	return &Service{
		cfg:         cfg,
		registry:    NewRegistry(),
		coordinator: coordinator,
		pipeline:    NewPipeline(cfg.Formatter, cfg.Logger),
		logger:      cfg.Logger,
		now:         cfg.Now,
	}, nil
}

func (s *Service) Registry() *Registry { return s.registry }

// Register adds a command next to the built-in ones. Only valid before Start.
func (s *Service) Register(def Definition) error {
	return s.registry.Register(def)
}

// Start registers the built-in commands, freezes the registry and starts the
// coordinator. A name collision aborts startup.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	if s.stopped {
		return ErrCoordinatorStopped
	}
	b := &builtins{
		actors:      s.cfg.Actors,
		scopes:      s.cfg.Scopes,
		items:       s.cfg.Items,
		attributes:  s.cfg.Attributes,
		logger:      s.logger,
		targetRange: s.cfg.TargetRange,
	}
	if err := b.register(s.registry); err != nil {
		return fmt.Errorf("commands: register builtins: %w", err)
	}
	s.registry.Freeze()
	s.coordinator.Start(ctx)
	s.started = true
	s.logger.Printf("commands: started with %d commands", len(s.registry.Definitions()))
	return nil
}

func (s *Service) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()
	s.coordinator.Stop()
}

type Result struct {
	ID string

	done    chan struct{}
	err     error
	outcome domain.CommandOutcome
}

func newResult() *Result {
	return &Result{ID: uuid.NewString(), done: make(chan struct{})}
}

func (r *Result) complete(err error) {
	r.err = err
	r.outcome = outcomeOf(err)
	close(r.done)
}

func (r *Result) Done() <-chan struct{} { return r.done }

func (r *Result) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err is only meaningful after Done is closed.
func (r *Result) Err() error { return r.err }

func (r *Result) Outcome() domain.CommandOutcome { return r.outcome }

// Dispatch parses and checks line on the calling goroutine and hands the
// handler to the coordinator. Every failure is reported to the issuer once.
func (s *Service) Dispatch(ctx context.Context, issuer domain.Issuer, line string) *Result {
	res := newResult()
	def, err := s.prepare(ctx, issuer, line, res)
	if err != nil {
		s.finish(ctx, issuer, def, line, res, err)
	}
	return res
}

func (s *Service) prepare(ctx context.Context, issuer domain.Issuer, line string, res *Result) (*Definition, error) {
	s.mu.RLock()
	ready := s.started && !s.stopped
	s.mu.RUnlock()
	if !ready {
		return nil, Fail("Commands are not available right now.")
	}

	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil, InvalidSyntax("empty command")
	}

	match := s.registry.Resolve(tokens)
	if match.IsGroup() {
		return nil, InvalidSyntax("%s needs a subcommand: %s", strings.Join(match.Path, " "), strings.Join(match.Children, ", "))
	}
	if !match.Found() {
		return nil, InvalidSyntax("unknown command %q%s", tokens[0], suggestionSuffix(s.registry.Suggest(tokens[0])))
	}
	def := match.Definition

	if err := checkSender(issuer, def); err != nil {
		return def, err
	}

	p := &parser{ctx: ctx, actors: s.cfg.Actors, scopes: s.cfg.Scopes}
	args, flags, err := p.parse(def, tokens[match.Consumed:])
	if err != nil {
		return def, err
	}
	if err := checkFlags(issuer, def, flags); err != nil {
		return def, err
	}

	c := &Context{
		ID:        res.ID,
		Issuer:    issuer,
		Command:   def,
		Line:      line,
		args:      args,
		flags:     flags,
		formatter: s.cfg.Formatter,
	}
	err = s.coordinator.Submit(func(taskCtx context.Context) {
		s.finish(taskCtx, issuer, def, line, res, s.invoke(taskCtx, c))
	})
	switch {
	case errors.Is(err, ErrCoordinatorBusy):
		return def, Fail("The server is busy, try again shortly.")
	case errors.Is(err, ErrCoordinatorStopped):
		return def, Fail("Commands are not available right now.")
	case err != nil:
		return def, ExecutionFailure(err)
	}
	return def, nil
}

// invoke is the execution boundary: handler errors outside the closed set and
// panics become execution failures carrying a stack.
func (s *Service) invoke(ctx context.Context, c *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ExecutionFailure(errors.Errorf("panic in %s: %v", c.Command.Name, r))
		}
	}()
	if err := c.Command.Handler(ctx, c); err != nil {
		var cmdErr *Error
		if errors.As(err, &cmdErr) {
			return cmdErr
		}
		return ExecutionFailure(errors.WithStack(err))
	}
	return nil
}

func (s *Service) finish(ctx context.Context, issuer domain.Issuer, def *Definition, line string, res *Result, err error) {
	record := domain.CommandRecord{
		ID:        res.ID,
		Issuer:    issuerName(issuer),
		Line:      line,
		CreatedAt: s.now().UTC(),
	}
	if def != nil {
		record.Command = def.Name
	}
	if err != nil {
		shown := s.pipeline.Report(ctx, issuer, def, err)
		record.Detail = shown.Message
	}
	record.Outcome = outcomeOf(err)
	if s.cfg.Events != nil {
		s.cfg.Events.PublishCommandRecord(ctx, record)
	}
	res.complete(err)
}
