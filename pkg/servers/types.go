package servers

import (
	"context"
	"net/http"

	"github.com/qmdx00/lifecycle"
	"github.com/robfig/cron/v3"
)

var (
	_ Server = (*httpServer)(nil)
	_ Server = (*tcpServer)(nil)
	_ Server = (*cronServer)(nil)
	_ Server = (*baseServer)(nil)
)

type Server interface {
	lifecycle.Server
}

var (
	_ CronRunner = (*cron.Cron)(nil)
)

// CronRunner is the slice of robfig/cron the cron server drives.
type CronRunner interface {
	Start()
	Stop() context.Context
}

// Executor runs one protocol line to completion and persists the current
// snapshot on demand. The core scheduler satisfies it.
type Executor interface {
	Execute(ctx context.Context, line string) []string
	Flush(ctx context.Context) error
}

//

var (
	_ Application = (*lifecycle.App)(nil)
)

type Application interface {
	ID() string
	Name() string
	Version() string
	Metadata() map[string]string
	Attach(name string, server lifecycle.Server)
	Run() error
}

//

var (
	_ BuildHttpServerFn = BuildHttpServer
	_ BuildTcpServerFn  = BuildTcpServer
)

type BuildHttpServerFn func(name string, server *http.Server) (string, Server)

type BuildTcpServerFn func(address string, executor Executor) (string, Server)
