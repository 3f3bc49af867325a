package main

import (
	"time"

	"github.com/lixenwraith/rotlog"
	"github.com/lixenwraith/rotlog/compat"
	"github.com/panjf2000/gnet/v2"
)

// Example gnet event handler
type echoServer struct {
	gnet.BuiltinEventEngine
}

func (es *echoServer) OnTraffic(c gnet.Conn) gnet.Action {
	buf, _ := c.Next(-1)
	c.Write(buf)
	return gnet.None
}

func main() {
	logger, err := rotlog.NewBuilder().
		FilePattern("/var/log/gnet/{date: yyyy-MM-dd}_{count}.log").
		Policies("daily: 00:00", "size: 50MB").
		LevelString("debug").
		Format("json").
		Build()
	if err != nil {
		panic(err)
	}
	defer logger.Shutdown(2 * time.Second)

	// Records carry the "gnet" tag; Fatalf flushes before exiting
	gnetAdapter := compat.NewGnetAdapter(logger)

	// Configure gnet server with the logger
	err = gnet.Run(
		&echoServer{},
		"tcp://127.0.0.1:9000",
		gnet.WithMulticore(true),
		gnet.WithLogger(gnetAdapter),
		gnet.WithReusePort(true),
	)
	if err != nil {
		panic(err)
	}
}
