// Command supervisor is a thin CLI wrapper around the orchestrator: it
// wires the built-in workers and default rule set, runs one query through
// service.RunStream, and prints the resulting stream events as JSON lines.
// Grounded on goadesign-goa-ai's example/cmd/assistant/main.go flag/logger
// wiring style, simplified from an HTTP/gRPC server to a one-shot CLI.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"goa.design/clue/log"

	"github.com/supervisorrt/orchestrator/capability/chatmodel"
	"github.com/supervisorrt/orchestrator/capability/chatmodel/anthropicadapter"
	"github.com/supervisorrt/orchestrator/capability/embedder"
	"github.com/supervisorrt/orchestrator/config"
	"github.com/supervisorrt/orchestrator/graph"
	"github.com/supervisorrt/orchestrator/perf"
	"github.com/supervisorrt/orchestrator/registry"
	"github.com/supervisorrt/orchestrator/service"
	"github.com/supervisorrt/orchestrator/state"
	"github.com/supervisorrt/orchestrator/supervisor"
	"github.com/supervisorrt/orchestrator/toolsource"
	"github.com/supervisorrt/orchestrator/worker"
)

func main() {
	var (
		messageF = flag.String("message", "", "user message to run through the supervisor")
		threadF  = flag.String("thread", "cli", "thread id for checkpointing")
		dbgF     = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx := log.Context(context.Background(), log.WithFormat(format))
	if *dbgF {
		ctx = log.Context(ctx, log.WithDebug())
	}

	if *messageF == "" {
		log.Fatal(ctx, fmt.Errorf("missing required -message flag"))
	}

	cfg := config.Load()
	model := anthropicadapter.New(os.Getenv("ANTHROPIC_API_KEY"), "claude-sonnet-4-5")
	tools := toolsource.NewStatic()

	reg := registry.New()
	registerBuiltins(reg, model, tools)

	sup := supervisor.New(reg, model, cfg.Supervisor)
	workerNodes := make(map[string]graph.NodeFunc, len(reg.Snapshot()))
	for _, entry := range reg.Snapshot() {
		w := entry.Worker.(worker.Worker)
		workerNodes[w.Name()] = w.Execute
	}
	g := graph.New(sup.Execute, workerNodes)

	rules := perf.NewRuleEngine()
	cache := perf.NewSemanticCache(nil, embedder.NewHashProjection(64))
	layer := perf.NewLayer(rules, cache)
	layer.Enable.SemanticCache = cfg.EnableSemanticCache
	layer.Enable.RuleEngine = cfg.EnableRuleEngine

	svc := service.New(layer, g, nil)

	uc := state.NewUserContext()
	err := svc.RunStream(ctx, *messageF, *threadF, uc, func(ev service.Event) {
		line, marshalErr := json.Marshal(ev)
		if marshalErr != nil {
			log.Error(ctx, marshalErr)
			return
		}
		fmt.Fprintf(os.Stdout, "data: %s\n\n", line)
	})
	if err != nil {
		log.Fatal(ctx, err)
	}
}

func registerBuiltins(reg *registry.Registry, model chatmodel.Model, tools *toolsource.Static) {
	researcher := &worker.Researcher{Model: model, Tools: tools}
	analyst := &worker.Analyst{Model: model}
	writer := &worker.Writer{Model: model}
	general := worker.NewGeneral(model, tools)

	_ = reg.Register(registry.Entry{Name: researcher.Name(), Description: "Researches facts and current information.", Priority: 10, Worker: worker.Worker(researcher)}, false)
	_ = reg.Register(registry.Entry{Name: analyst.Name(), Description: analyst.Description(), Priority: 10, Worker: worker.Worker(analyst)}, false)
	_ = reg.Register(registry.Entry{Name: writer.Name(), Description: "Writes the final, consolidated answer.", Priority: 5, Worker: worker.Worker(writer)}, false)
	_ = reg.Register(registry.Entry{Name: general.Name(), Description: "General-purpose fallback for anything not covered above.", Priority: 1, Worker: worker.Worker(general)}, false)
}
