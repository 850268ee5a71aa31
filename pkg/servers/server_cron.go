package servers

import (
	"context"

	"github.com/qmdx00/lifecycle"
	"github.com/rs/zerolog/log"
)

// cronServer drives the periodic snapshot flush, a safety net on top of the
// save-after-every-mutation contract.
type cronServer struct {
	ctx          context.Context //nolint:containedctx
	name         string
	closeChannel chan struct{}
	internal     CronRunner
}

func BuildCronServer(runner CronRunner) (string, Server) {
	return "cron-server", NewCronServer(runner)
}

func NewCronServer(runner CronRunner) lifecycle.Server {
	return &cronServer{
		name:         "cron-server",
		closeChannel: make(chan struct{}),
		internal:     runner,
	}
}

func (server *cronServer) Run(ctx context.Context) error {
	log.Ctx(ctx).Info().Str("stage", "startup").Str("component", server.name).Msg("starting up")

	server.ctx = ctx

	server.internal.Start()
	<-server.closeChannel

	return nil
}

func (server *cronServer) Stop(ctx context.Context) error {
	log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", server.name).Msg("stopping")
	defer log.Ctx(ctx).Info().Str("stage", "shut down").Str("component", server.name).Msg("stopped")

	stopped := server.internal.Stop()

	select {
	case <-stopped.Done():
	case <-ctx.Done():
		log.Ctx(ctx).Warn().Str("component", server.name).Msg("running jobs did not finish in time")
	}

	close(server.closeChannel)

	return nil
}
