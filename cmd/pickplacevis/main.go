// Command pickplacevis runs a scenario and replays it in a GUI.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/unit"

	"github.com/elektrokombinacija/pickplace/internal/config"
	"github.com/elektrokombinacija/pickplace/internal/scenario"
	"github.com/elektrokombinacija/pickplace/internal/sim"
	"github.com/elektrokombinacija/pickplace/internal/vis"
)

func main() {
	configPath := flag.String("config", "scenario.yaml", "Scenario file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	inst, err := scenario.Build(cfg)
	if err != nil {
		log.Fatal(err)
	}
	sc, err := scenario.SimConfig(cfg, inst, nil)
	if err != nil {
		log.Fatal(err)
	}
	// Unreachable stations should still leave something to replay
	sc.SkipUnreachable = true
	res, err := sim.RunSimulation(context.Background(), sc)
	if err != nil {
		log.Fatal(err)
	}

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title("Pick/Place Visualizer"),
			app.Size(unit.Dp(1400), unit.Dp(900)),
		)

		application := vis.NewApp(inst, res)
		if err := application.Run(window); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}
