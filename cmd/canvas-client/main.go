package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/docopt/docopt-go"

	"github.com/weiawesome/wes-io-canvas/internal/canvas"
	"github.com/weiawesome/wes-io-canvas/internal/client"
	"github.com/weiawesome/wes-io-canvas/internal/config"
	"github.com/weiawesome/wes-io-canvas/internal/domain"
	"github.com/weiawesome/wes-io-canvas/internal/idgen"
	"github.com/weiawesome/wes-io-canvas/internal/interaction"
	"github.com/weiawesome/wes-io-canvas/internal/protocol"
	"github.com/weiawesome/wes-io-canvas/internal/store"
	"github.com/weiawesome/wes-io-canvas/internal/syncchannel"
	"github.com/weiawesome/wes-io-canvas/internal/viewport"
	"github.com/weiawesome/wes-io-canvas/pkg/log"
)

const CanvasClientVersion = "0.1.0"

const usage = `Canvas client.

Opens a board, hydrates it from the gateway and follows live changes.
Without --board a new board is created.

Usage:
    canvas-client watch [--board=<board_id>] [--title=<title>] [--npub=<npub>] [--config=<dir>]
    canvas-client place [--board=<board_id>] [--title=<title>] [--npub=<npub>] [--config=<dir>]
        --x=<x> --y=<y>
        [--join_timeout=<duration>]
    canvas-client -h | --help
    canvas-client --version

Options:
    -h --help                   Show this screen.
    --version                   Show version.
    --board=<board_id>          Board to open.
    --title=<title>             Title of a newly created board [default: Untitled board].
    --npub=<npub>               Identity forwarded with joinBoard and cursor moves.
    --config=<dir>              Directory holding canvas-client.yaml [default: ./config].
    --x=<x>                     Board x of the note to place.
    --y=<y>                     Board y of the note to place.
    --join_timeout=<duration>   How long to wait for the join [default: 5s].`

func main() {
	opts, err := docopt.ParseArgs(usage, os.Args[1:], CanvasClientVersion)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	dir, _ := opts.String("--config")
	cfg, err := config.LoadClient(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}
	log.Init(cfg.Log.Logger("canvas-client"))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if watch, _ := opts.Bool("watch"); watch {
		err = runWatch(ctx, cfg, opts)
	} else if place, _ := opts.Bool("place"); place {
		err = runPlace(ctx, cfg, opts)
	}
	if err != nil && ctx.Err() == nil {
		l := log.L()
		l.Error().Err(err).Msg("canvas-client failed")
		os.Exit(1)
	}
}

// session is one open board: hydrated store, live channel and engine.
type session struct {
	board   *domain.Board
	store   *store.ElementStore
	channel *syncchannel.Channel
	engine  *canvas.Engine
	deletes chan []string
}

func open(ctx context.Context, cfg *config.Client, opts docopt.Opts) (*session, error) {
	l := log.L()

	gateway := client.NewGatewayClient(cfg.Gateway.URL, cfg.Gateway.Timeout, time.Minute)
	boardID, _ := opts.String("--board")
	title, _ := opts.String("--title")

	board, err := canvas.NewResolver(gateway).Resolve(ctx, boardID, title)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve board: %w", err)
	}
	l.Info().Str(log.FieldBoardID, board.ID).Str("title", board.Title).Msg("board opened")

	var user *domain.Identity
	if npub, _ := opts.String("--npub"); npub != "" {
		user = &domain.Identity{Npub: npub}
	}

	s := &session{
		board:   board,
		store:   store.New(),
		deletes: make(chan []string, 16),
	}

	s.channel = syncchannel.New(syncchannel.Config{
		URL:              cfg.Server.WSURL,
		BoardID:          board.ID,
		User:             user,
		ThrottleInterval: cfg.Sync.ThrottleInterval,
		BackoffBase:      cfg.Sync.BackoffBase,
		BackoffMax:       cfg.Sync.BackoffMax,
	}, syncchannel.NewWebsocketDialer(cfg.Server.HandshakeTimeout), s.store,
		syncchannel.WithOnMessage(s.logRemote),
	)
	s.engine = canvas.NewEngine(board.ID, s.channel, gateway)

	if err := s.engine.Hydrate(ctx, s.store); err != nil {
		return nil, fmt.Errorf("failed to hydrate board: %w", err)
	}

	go func() {
		if err := s.channel.Run(ctx); err != nil && ctx.Err() == nil {
			l.Error().Err(err).Msg("sync channel stopped")
		}
	}()
	return s, nil
}

// logRemote runs on the channel's read goroutine, after the store has
// been updated.
func (s *session) logRemote(msg protocol.Message) {
	l := log.L()
	switch m := msg.(type) {
	case *protocol.JoinAck:
		l.Info().Str(log.FieldBoardID, m.BoardID).Int("elements", s.store.Len()).Msg("joined board")
	case *protocol.ElementUpdate:
		l.Info().Str(log.FieldElementID, m.Element.ID).Float64("x", m.Element.X).Float64("y", m.Element.Y).Msg("peer updated element")
	case *protocol.ElementsUpdate:
		l.Info().Int("count", len(m.Elements)).Msg("peer updated elements")
	case *protocol.ElementsDelete:
		l.Info().Strs("ids", m.IDs).Msg("peer deleted elements")
		select {
		case s.deletes <- m.IDs:
		default:
		}
	case *protocol.CursorMove:
		npub := ""
		if m.User != nil {
			npub = m.User.Npub
		}
		l.Debug().Str("npub", npub).Float64("x", m.Point.X).Float64("y", m.Point.Y).Msg("peer cursor")
	}
}

func (s *session) waitJoined(ctx context.Context, timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()

	for !s.channel.Joined() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("not joined within %s", timeout)
		case <-tick.C:
		}
	}
	return nil
}

func newController(cfg *config.Client, s *session) (*interaction.Controller, error) {
	ids, err := idgen.New(cfg.Interaction.IDFormat)
	if err != nil {
		return nil, err
	}
	return interaction.New(interaction.Config{
		DragThresholdPx:    cfg.Interaction.DragThresholdPx,
		HandleRadiusPx:     cfg.Interaction.HandleRadiusPx,
		MinElementSize:     cfg.Interaction.MinElementSize,
		DefaultElementSize: cfg.Interaction.DefaultElementSize,
		ZoomStep:           cfg.Interaction.ZoomStep,
	}, s.store, s.engine, idgen.Must(ids)), nil
}

func runWatch(ctx context.Context, cfg *config.Client, opts docopt.Opts) error {
	s, err := open(ctx, cfg, opts)
	if err != nil {
		return err
	}
	ctl, err := newController(cfg, s)
	if err != nil {
		return err
	}

	// The controller is only touched from this goroutine.
	for {
		select {
		case <-ctx.Done():
			s.engine.Wait()
			return nil
		case ids := <-s.deletes:
			ctl.Forget(ids)
		}
	}
}

func runPlace(ctx context.Context, cfg *config.Client, opts docopt.Opts) error {
	x, err := floatOpt(opts, "--x")
	if err != nil {
		return err
	}
	y, err := floatOpt(opts, "--y")
	if err != nil {
		return err
	}
	timeoutStr, _ := opts.String("--join_timeout")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return fmt.Errorf("invalid --join_timeout: %w", err)
	}

	s, err := open(ctx, cfg, opts)
	if err != nil {
		return err
	}
	if err := s.waitJoined(ctx, timeout); err != nil {
		return err
	}

	ctl, err := newController(cfg, s)
	if err != nil {
		return err
	}
	before := s.store.Len()
	screen := viewport.BoardToScreen(ctl.Camera(), domain.Point{X: x, Y: y})
	press := interaction.PointerEvent{PointerID: 1, Button: interaction.ButtonLeft, Screen: screen}
	ctl.PointerDown(press)
	ctl.PointerUp(press)
	s.engine.Wait()

	l := log.L()
	els := s.store.All()
	if len(els) == before {
		l.Warn().Float64("x", x).Float64("y", y).Msg("point is covered by an element, nothing placed")
		return nil
	}
	placed := els[len(els)-1]
	l.Info().Str(log.FieldBoardID, s.board.ID).Str(log.FieldElementID, placed.ID).Float64("x", placed.X).Float64("y", placed.Y).Msg("note placed")
	// Give the write pump a moment to flush before the process exits.
	time.Sleep(100 * time.Millisecond)
	return nil
}

func floatOpt(opts docopt.Opts, key string) (float64, error) {
	s, err := opts.String(key)
	if err != nil {
		return 0, fmt.Errorf("missing %s", key)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
