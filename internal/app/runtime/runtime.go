package runtime

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"golang.org/x/sync/errgroup"

	"simplix/internal/app/events"
	"simplix/internal/domain"
	"simplix/internal/infrastructure/config"
	sqlitestorage "simplix/internal/infrastructure/persistence/sqlite"
	"simplix/internal/infrastructure/world"
	ws "simplix/internal/interface/api/ws"
	"simplix/internal/interface/outs"
	"simplix/internal/usecase/audit"
	"simplix/internal/usecase/commands"
	"simplix/internal/usecase/handle_message"
)

const fallbackScope = "overworld"

type Options struct {
	// Config is loaded from the environment when nil.
	Config *config.Config
	// ConsoleIn is read line by line as console commands when the config
	// enables the console.
	ConsoleIn  io.Reader
	ConsoleOut io.Writer
	// Headless skips the WebSocket server.
	Headless bool
}

type Runtime struct {
	store        *sqlitestorage.Store
	world        *world.World
	router       *outs.Router
	bus          *events.Bus
	commandSvc   *commands.Service
	interactor   *handle_message.Interactor
	console      *world.Console
	wsServer     *ws.Server
	cancel       context.CancelFunc
	cancelServer context.CancelFunc
	group        *errgroup.Group
	started      bool
}

func Start(ctx context.Context, opts Options) (*Runtime, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	store, err := sqlitestorage.NewStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	router := outs.NewRouter()
	w := world.New(router)
	if err := seedWorld(ctx, cfg.WorldFile, w, store); err != nil {
		store.Close()
		return nil, err
	}

	bus := events.NewBus()
	commandSvc, err := commands.NewService(commands.Config{
		Workers:     cfg.Workers,
		QueueSize:   cfg.QueueSize,
		Logger:      log.Default(),
		Actors:      w,
		Scopes:      w,
		Formatter:   world.MarkupFormatter{},
		Items:       store,
		Attributes:  store,
		Events:      events.NewCommandPublisher(bus),
		TargetRange: cfg.TargetRange,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("commands: %w", err)
	}
	if err := commandSvc.Start(ctx); err != nil {
		store.Close()
		return nil, err
	}

	// only Stop ends the background components, so records are flushed first
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	serverCtx, cancelServer := context.WithCancel(runCtx)
	group, groupCtx := errgroup.WithContext(runCtx)

	consoleOut := opts.ConsoleOut
	if consoleOut == nil {
		consoleOut = os.Stdout
	}

	run := &Runtime{
		store:        store,
		world:        w,
		router:       router,
		bus:          bus,
		commandSvc:   commandSvc,
		interactor:   handle_message.NewInteractor(commandSvc),
		console:      world.NewConsole(consoleOut),
		cancel:       cancel,
		cancelServer: cancelServer,
		group:        group,
	}

	recorder := audit.NewRecorder(store, log.Default())
	group.Go(func() error {
		return recorder.Run(groupCtx, bus)
	})

	if !opts.Headless {
		wsServer := ws.NewServer(ws.Config{
			Addr:     cfg.WSAddr,
			Rate:     cfg.CommandRate,
			Burst:    cfg.CommandBurst,
			Lobby:    w,
			Sessions: router,
			Catalog:  commandSvc,
			Log:      store,
		})
		wsServer.SetHandler(func(ctx context.Context, issuer domain.Issuer, text string) {
			run.interactor.Handle(ctx, issuer, text)
		})
		run.wsServer = wsServer
		group.Go(func() error {
			if err := wsServer.Start(serverCtx); err != nil {
				return fmt.Errorf("ws server: %w", err)
			}
			return nil
		})
	}

	// stdin reads cannot be interrupted, so the console loop stays outside the group.
	if cfg.Console && opts.ConsoleIn != nil {
		go run.readConsole(serverCtx, opts.ConsoleIn)
	}

	run.started = true
	log.Printf("runtime: started (%d commands)", len(commandSvc.Catalog()))
	return run, nil
}

// seedWorld applies the YAML seed. A missing seed file leaves a single empty
// scope so the server stays usable.
func seedWorld(ctx context.Context, path string, w *world.World, store world.StateStore) error {
	seed, err := world.LoadSeed(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("runtime: no world seed at %s, starting with an empty %s", path, fallbackScope)
		w.AddScope(domain.Scope{Name: fallbackScope, Biome: "plains"})
		return nil
	}
	if err != nil {
		return err
	}
	if err := seed.Apply(ctx, w, store); err != nil {
		return fmt.Errorf("seed world: %w", err)
	}
	return nil
}

func (r *Runtime) readConsole(ctx context.Context, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		r.interactor.Handle(ctx, r.console, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		log.Printf("runtime: console read: %v", err)
	}
}

// Exec runs one line as the console and waits for its outcome. The outcome
// is empty when ctx ends first.
func (r *Runtime) Exec(ctx context.Context, line string) (domain.CommandOutcome, error) {
	res := r.interactor.Handle(ctx, r.console, line)
	if res == nil {
		return "", fmt.Errorf("runtime: empty command line")
	}
	if err := res.Wait(ctx); err != nil {
		return res.Outcome(), err
	}
	return res.Outcome(), nil
}

// Wait blocks until a background component fails or the runtime stops.
func (r *Runtime) Wait() error {
	return r.group.Wait()
}

// Stop closes the server, drains in-flight commands and flushes the audit log
// before closing the store.
func (r *Runtime) Stop() error {
	if r == nil || !r.started {
		return nil
	}
	r.started = false
	r.cancelServer()
	r.commandSvc.Stop()
	r.bus.Close()
	err := r.group.Wait()
	r.cancel()
	if closeErr := r.store.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func (r *Runtime) CommandService() *commands.Service { return r.commandSvc }

func (r *Runtime) World() *world.World { return r.world }
